package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"inkdeck/internal/config"
	"inkdeck/internal/drag"
	"inkdeck/internal/model"
	"inkdeck/internal/remote"
	deksync "inkdeck/internal/sync"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputFilter
	inputCreateFolder
	inputRenameFolder
)

type mutationDoneMsg struct {
	mut *deksync.Mutation
	err error
}

// deckModel is the long-lived controller for one deck screen. Drag state
// lives in explicit session/resolver fields rather than scattered cells so
// async callbacks always see current values.
type deckModel struct {
	dir      string
	co       *deksync.Coordinator
	settings config.Settings

	width  int
	height int
	offset int

	sortMode   model.SortMode
	kindFilter string
	textFilter string

	input          textinput.Model
	inputMode      inputMode
	renameFolderID string

	session  drag.Session
	resolver drag.Resolver

	rows       []deckRow
	visibleSeq []string
	folderSeq  []string

	selected            string // selected fragment id
	justCreatedFolderID string
	showPreview         bool
	status              string
}

func newDeckModel(dir string, co *deksync.Coordinator, settings config.Settings) *deckModel {
	st := config.LoadState(dir)

	in := textinput.New()
	in.CharLimit = 120

	m := &deckModel{
		dir:         dir,
		co:          co,
		settings:    settings,
		sortMode:    settings.SortMode(),
		input:       in,
		selected:    st.SelectedFragmentID,
		kindFilter:  st.Kind,
		showPreview: st.ShowPreview,
	}
	if s := model.SortMode(strings.TrimSpace(st.Sort)); s.Valid() {
		m.sortMode = s
	}
	m.session.Gate = func(drag.Kind) bool { return m.canDrag() }
	m.rebuildRows()
	return m
}

// canDrag reports whether manual reordering is allowed right now. A
// comparator sort has no manual order to edit, and a live text filter
// changes index membership underneath a drag.
func (m *deckModel) canDrag() bool {
	return m.sortMode == model.SortManual && strings.TrimSpace(m.textFilter) == "" && m.inputMode == inputNone
}

func (m *deckModel) Init() tea.Cmd {
	return nil
}

func (m *deckModel) saveState() {
	_ = config.SaveState(m.dir, config.State{
		SelectedFragmentID: m.selected,
		Kind:               m.kindFilter,
		Sort:               string(m.sortMode),
		ShowPreview:        m.showPreview,
	})
}

// Run starts the interactive deck TUI.
func Run(dir string, settings config.Settings) error {
	applyColorProfilePreference(strings.TrimSpace(settings.Appearance))

	co := deksync.NewCoordinator(remote.SQLiteStore{Dir: dir}, deksync.NewCache())
	if err := co.Refresh(context.Background()); err != nil {
		return err
	}

	m := newDeckModel(dir, co, settings)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	m.saveState()
	return err
}
