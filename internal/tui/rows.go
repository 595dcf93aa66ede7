package tui

import (
	"strings"

	"inkdeck/internal/drag"
	"inkdeck/internal/group"
	"inkdeck/internal/model"
	"inkdeck/internal/order"
)

type rowKind int

const (
	rowFolderHeader rowKind = iota
	rowFragment
)

// deckRow is one rendered line of the deck list, carrying enough to resolve
// a pointer event back onto the model.
type deckRow struct {
	kind rowKind

	// Header rows. folderID is nil for the uncategorized header.
	folderID    *string
	folderName  string
	folderColor string
	count       int

	// Fragment rows. fragIndex is the position within the visible fragment
	// sequence (the drag coordinate space).
	fragment  model.Fragment
	fragIndex int
}

// visibleFragments applies the kind filter, the archived filter and the text
// filter, then sorts for the active mode.
func (m *deckModel) visibleFragments() []model.Fragment {
	var out []model.Fragment
	filter := strings.ToLower(strings.TrimSpace(m.textFilter))
	for _, f := range m.co.Fragments() {
		if f.Archived {
			continue
		}
		if m.kindFilter != "" && f.Kind != m.kindFilter {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(f.Title), filter) {
			continue
		}
		out = append(out, f)
	}
	order.SortFragments(out, m.sortMode)
	return out
}

// rebuildRows recomputes the flattened row list, the visible fragment
// sequence, and the folder sequence. During a drag the live projection from
// the session replaces the committed order.
func (m *deckModel) rebuildRows() {
	frags := m.visibleFragments()
	folders := m.co.Folders()
	order.SortFolders(folders)

	opts := group.Options{KeepEmptyFolderID: m.justCreatedFolderID}
	switch m.session.Kind() {
	case drag.KindFragment:
		frags = arrangeFragments(frags, m.session.Live())
	case drag.KindFolder:
		opts.FolderOrder = m.session.Live()
	}

	groups := group.Build(frags, folders, opts)

	m.rows = m.rows[:0]
	m.visibleSeq = m.visibleSeq[:0]
	m.folderSeq = order.FolderIDs(folders)

	for _, g := range groups {
		hdr := deckRow{kind: rowFolderHeader, count: len(g.Fragments)}
		if g.Folder != nil {
			id := g.Folder.ID
			hdr.folderID = &id
			hdr.folderName = g.Folder.Name
			hdr.folderColor = g.Folder.Color
		} else {
			hdr.folderName = "Uncategorized"
		}
		m.rows = append(m.rows, hdr)
		for _, f := range g.Fragments {
			m.rows = append(m.rows, deckRow{
				kind:      rowFragment,
				fragment:  f,
				fragIndex: len(m.visibleSeq),
			})
			m.visibleSeq = append(m.visibleSeq, f.ID)
		}
	}

	if m.selected != "" && indexOfID(m.visibleSeq, m.selected) < 0 {
		m.selected = ""
	}
	if m.selected == "" && len(m.visibleSeq) > 0 {
		m.selected = m.visibleSeq[0]
	}
	m.clampOffset()
}

// arrangeFragments reorders frags to match the live id sequence. Ids the
// sequence doesn't know keep their position at the end (a refresh can race a
// drag; never drop a fragment from view).
func arrangeFragments(frags []model.Fragment, live []string) []model.Fragment {
	if len(live) == 0 {
		return frags
	}
	byID := make(map[string]model.Fragment, len(frags))
	for _, f := range frags {
		byID[f.ID] = f
	}
	out := make([]model.Fragment, 0, len(frags))
	seen := make(map[string]bool, len(live))
	for _, id := range live {
		if f, ok := byID[id]; ok {
			out = append(out, f)
			seen[id] = true
		}
	}
	for _, f := range frags {
		if !seen[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

func indexOfID(seq []string, id string) int {
	for i, v := range seq {
		if v == id {
			return i
		}
	}
	return -1
}

func (m *deckModel) selectedFragment() (model.Fragment, bool) {
	for _, r := range m.rows {
		if r.kind == rowFragment && r.fragment.ID == m.selected {
			return r.fragment, true
		}
	}
	return model.Fragment{}, false
}

// listHeight is the number of rows visible between the chrome lines.
func (m *deckModel) listHeight() int {
	h := m.height - chromeLines
	if h < 1 {
		h = 1
	}
	return h
}

func (m *deckModel) clampOffset() {
	maxOffset := len(m.rows) - m.listHeight()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// rowAt maps a screen y coordinate to a deck row, accounting for the header
// chrome and the scroll offset.
func (m *deckModel) rowAt(y int) (deckRow, int, bool) {
	idx := y - listTop + m.offset
	if idx < 0 || idx >= len(m.rows) {
		return deckRow{}, -1, false
	}
	return m.rows[idx], idx, true
}

// headerRect is the hit rectangle of a header row for the drop resolver.
func (m *deckModel) headerRect(rowIdx int) drag.Rect {
	return drag.Rect{X: 0, Y: rowIdx - m.offset + listTop, W: m.listWidth(), H: 1}
}

// listWidth is the columns the list occupies; the preview pane takes the
// remainder.
func (m *deckModel) listWidth() int {
	if !m.showPreview {
		return m.width
	}
	w := m.width / 2
	if w < 20 {
		w = m.width
	}
	return w
}

// archiveZoneY is the screen line of the drag-to-archive zone, shown only
// while a fragment drag is active.
func (m *deckModel) archiveZoneY() int {
	return m.height - 2
}
