package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"

	"inkdeck/internal/drag"
)

const (
	// listTop is the first screen line of the row list (title + blank).
	listTop = 2
	// chromeLines is listTop plus the two bottom lines (zone/help, status).
	chromeLines = 4
)

func (m *deckModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n\n")

	listW := m.listWidth()
	height := m.listHeight()
	lines := make([]string, 0, height)
	for i := m.offset; i < len(m.rows) && len(lines) < height; i++ {
		lines = append(lines, m.renderRow(m.rows[i], listW))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	left := strings.Join(lines, "\n")

	if m.showPreview && listW < m.width {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderPreview(m.width-listW)))
	} else {
		b.WriteString(left)
	}
	b.WriteString("\n")
	b.WriteString(m.bottomLine())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *deckModel) titleLine() string {
	parts := []string{"inkdeck", "sort:" + string(m.sortMode)}
	if m.kindFilter != "" {
		parts = append(parts, "kind:"+m.kindFilter)
	}
	if strings.TrimSpace(m.textFilter) != "" {
		parts = append(parts, "filter:"+m.textFilter)
	}
	line := strings.Join(parts, "  ")
	return truncate.StringWithTail(line, uint(m.width), "…")
}

func (m *deckModel) renderRow(r deckRow, width int) string {
	switch r.kind {
	case rowFolderHeader:
		glyph := "▸"
		label := fmt.Sprintf("%s %s (%d)", glyph, r.folderName, r.count)
		line := xansi.Truncate(label, width, "…")
		if m.isDropCandidate(r.folderID) {
			return styleDropTarget().Render(line)
		}
		return styleFolderHeader(r.folderColor).Render(line)

	case rowFragment:
		label := "  " + r.fragment.Title
		if k := strings.TrimSpace(r.fragment.Kind); k != "" && m.kindFilter == "" {
			label += "  " + styleMuted().Render("["+k+"]")
		}
		line := xansi.Truncate(label, width, "…")
		if m.session.Kind() == drag.KindFragment && m.session.DraggedID() == r.fragment.ID {
			return styleDragged().Render(line)
		}
		if r.fragment.ID == m.selected {
			return styleSelected().Render(line)
		}
		return line
	}
	return ""
}

func (m *deckModel) isDropCandidate(folderID *string) bool {
	id, ok := m.resolver.Current()
	if !ok {
		return false
	}
	if id == nil || folderID == nil {
		return id == nil && folderID == nil
	}
	return *id == *folderID
}

func (m *deckModel) renderPreview(width int) string {
	f, ok := m.selectedFragment()
	if !ok {
		return ""
	}
	return renderMarkdown(f.Body, width-2)
}

func (m *deckModel) bottomLine() string {
	if m.session.Kind() == drag.KindFragment {
		label := xansi.Truncate("  ⌦ drop here to archive", m.width, "…")
		return styleArchiveZone(m.session.ArchiveArmed()).Render(label)
	}
	if m.inputMode != inputNone {
		return m.input.View()
	}
	help := "j/k select  J/K move  drag: hold+move  s sort  tab kind  / filter  n/r/d folder  p preview  y copy  q quit"
	return styleMuted().Render(truncate.StringWithTail(help, uint(m.width), "…"))
}

func (m *deckModel) statusLine() string {
	return styleMuted().Render(truncate.StringWithTail(m.status, uint(m.width), "…"))
}
