package tui

import (
	"context"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"inkdeck/internal/drag"
	"inkdeck/internal/model"
	deksync "inkdeck/internal/sync"
)

func (m *deckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case tea.MouseMsg:
		return m, m.reduceMouse(msg)

	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m, m.reduceInputKey(msg)
		}
		return m, m.reduceKey(msg)

	case mutationDoneMsg:
		if err := m.co.Settle(context.Background(), msg.mut, msg.err); err != nil {
			// Rollback already happened inside Settle; this is a notice,
			// not a crash.
			m.status = "change failed, rolled back: " + err.Error()
		}
		m.rebuildRows()
		return m, nil
	}
	return m, nil
}

func (m *deckModel) reduceKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.saveState()
		return tea.Quit

	case "up", "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)

	case "K", "shift+up":
		return m.moveSelectedFragment(-1)
	case "J", "shift+down":
		return m.moveSelectedFragment(1)

	case "s":
		m.cycleSortMode()
	case "tab":
		m.cycleKindFilter()
	case "p":
		m.showPreview = !m.showPreview
		m.rebuildRows()
	case "y":
		if f, ok := m.selectedFragment(); ok {
			if err := copyToClipboard(f.Body); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "copied " + f.ID
			}
		}

	case "/":
		m.inputMode = inputFilter
		m.input.Placeholder = "filter titles"
		m.input.SetValue(m.textFilter)
		m.input.Focus()
	case "esc":
		if m.textFilter != "" {
			m.textFilter = ""
			m.rebuildRows()
		}

	case "n":
		m.inputMode = inputCreateFolder
		m.input.Placeholder = "new folder name"
		m.input.SetValue("")
		m.input.Focus()
	case "r":
		if folder, ok := m.folderOfSelected(); ok {
			m.inputMode = inputRenameFolder
			m.renameFolderID = folder.ID
			m.input.Placeholder = "rename folder"
			m.input.SetValue(folder.Name)
			m.input.Focus()
		} else {
			m.status = "selected fragment is uncategorized"
		}
	case "d":
		if folder, ok := m.folderOfSelected(); ok {
			if err := m.co.DeleteFolder(context.Background(), folder.ID); err != nil {
				m.status = "delete failed: " + err.Error()
			} else {
				m.status = "deleted folder " + folder.Name
				if m.justCreatedFolderID == folder.ID {
					m.justCreatedFolderID = ""
				}
			}
			m.rebuildRows()
		} else {
			m.status = "selected fragment is uncategorized"
		}
	}
	return nil
}

func (m *deckModel) reduceInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if m.inputMode == inputFilter {
			m.textFilter = ""
		}
		m.closeInput()
		m.rebuildRows()
		return nil
	case "enter":
		return m.commitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.inputMode == inputFilter {
		m.textFilter = m.input.Value()
		m.rebuildRows()
	}
	return cmd
}

func (m *deckModel) commitInput() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	mode := m.inputMode
	m.closeInput()

	switch mode {
	case inputFilter:
		m.textFilter = value
	case inputCreateFolder:
		if value == "" {
			break
		}
		f, err := m.co.CreateFolder(context.Background(), value, "")
		if err != nil {
			m.status = "create failed: " + err.Error()
			break
		}
		// Keep the empty folder visible so it can serve as a drop target.
		m.justCreatedFolderID = f.ID
		m.status = "created folder " + f.Name
	case inputRenameFolder:
		if value == "" || m.renameFolderID == "" {
			break
		}
		if err := m.co.RenameFolder(context.Background(), m.renameFolderID, value); err != nil {
			m.status = "rename failed: " + err.Error()
		} else {
			m.status = "renamed folder"
		}
	}
	m.renameFolderID = ""
	m.rebuildRows()
	return nil
}

func (m *deckModel) closeInput() {
	m.inputMode = inputNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *deckModel) reduceMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.offset--
		m.clampOffset()
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.offset++
		m.clampOffset()

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.reduceLeftPress(msg.X, msg.Y)

	case msg.Action == tea.MouseActionMotion:
		if m.session.Active() {
			m.reduceDragMotion(msg.X, msg.Y)
			m.rebuildRows()
		}

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease:
		if m.session.Active() {
			return m.reduceDragRelease()
		}
	}
	return nil
}

func (m *deckModel) reduceLeftPress(x, y int) {
	if x >= m.listWidth() {
		return
	}
	r, _, ok := m.rowAt(y)
	if !ok {
		return
	}
	switch r.kind {
	case rowFragment:
		m.selected = r.fragment.ID
		// The gesture owns the pointer from here; a refused begin (second
		// gesture, comparator sort, live filter) leaves this a plain click.
		if m.session.Begin(drag.KindFragment, r.fragment.ID, m.visibleSeq) {
			m.resolver.Arm(drag.KindFragment)
		}
	case rowFolderHeader:
		if r.folderID == nil {
			return // the uncategorized header is not draggable
		}
		m.session.Begin(drag.KindFolder, *r.folderID, m.folderSeq)
	}
}

func (m *deckModel) reduceDragMotion(x, y int) {
	switch m.session.Kind() {
	case drag.KindFragment:
		if y == m.archiveZoneY() {
			m.session.ArmArchive()
			return
		}
		m.session.DisarmArchive()
		if x < m.listWidth() {
			if r, idx, ok := m.rowAt(y); ok {
				switch r.kind {
				case rowFragment:
					m.session.EnterIndex(r.fragIndex)
				case rowFolderHeader:
					m.resolver.Enter(r.folderID, m.headerRect(idx))
				}
			}
		}
		// Leave must see every pointer position, including the preview
		// pane: a candidate acquired over a header would otherwise survive
		// the pointer wandering off the list.
		m.resolver.Leave(x, y)
		if id, ok := m.resolver.Current(); ok {
			m.session.EnterFolder(id)
		} else {
			m.session.ClearFolderTarget()
		}

	case drag.KindFolder:
		r, _, ok := m.rowAt(y)
		if !ok || r.kind != rowFolderHeader || r.folderID == nil {
			return
		}
		m.session.EnterIndex(indexOfID(m.session.Live(), *r.folderID))
	}
}

func (m *deckModel) reduceDragRelease() tea.Cmd {
	intent := m.session.End()
	m.resolver.Disarm()
	cmd := m.dispatch(intent)
	m.rebuildRows()
	return cmd
}

// dispatch converts a finished gesture's intent into an optimistic mutation
// and the command that runs its remote half.
func (m *deckModel) dispatch(intent drag.Intent) tea.Cmd {
	var mut *deksync.Mutation
	switch intent.Kind {
	case drag.IntentReorder:
		mut = m.co.ReorderFragments(intent.Seq)
	case drag.IntentReorderFolders:
		mut = m.co.ReorderFolders(intent.Seq)
	case drag.IntentReassign:
		mut = m.co.Reassign(intent.FragmentID, intent.FolderID)
		if intent.FolderID != nil && *intent.FolderID == m.justCreatedFolderID {
			m.justCreatedFolderID = ""
		}
	case drag.IntentArchive:
		mut = m.co.Archive(intent.FragmentID)
		m.status = "archived " + intent.FragmentID
	default:
		return nil
	}
	if mut == nil {
		return nil
	}
	return func() tea.Msg {
		return mutationDoneMsg{mut: mut, err: mut.Call(context.Background())}
	}
}

func (m *deckModel) moveSelection(delta int) {
	idx := indexOfID(m.visibleSeq, m.selected)
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.visibleSeq)-1 {
		idx = len(m.visibleSeq) - 1
	}
	if idx >= 0 && idx < len(m.visibleSeq) {
		m.selected = m.visibleSeq[idx]
	}
	m.scrollSelectionIntoView()
}

// moveSelectedFragment is the keyboard path through the same gesture
// machinery as a pointer drag: begin, one enter, end.
func (m *deckModel) moveSelectedFragment(delta int) tea.Cmd {
	idx := indexOfID(m.visibleSeq, m.selected)
	if idx < 0 {
		return nil
	}
	if !m.session.Begin(drag.KindFragment, m.selected, m.visibleSeq) {
		m.status = "reordering needs manual sort and no filter"
		return nil
	}
	m.session.EnterIndex(idx + delta)
	intent := m.session.End()
	cmd := m.dispatch(intent)
	m.rebuildRows()
	m.scrollSelectionIntoView()
	return cmd
}

func (m *deckModel) scrollSelectionIntoView() {
	rowIdx := -1
	for i, r := range m.rows {
		if r.kind == rowFragment && r.fragment.ID == m.selected {
			rowIdx = i
			break
		}
	}
	if rowIdx < 0 {
		return
	}
	if rowIdx < m.offset {
		m.offset = rowIdx
	}
	if rowIdx >= m.offset+m.listHeight() {
		m.offset = rowIdx - m.listHeight() + 1
	}
	m.clampOffset()
}

func (m *deckModel) cycleSortMode() {
	modes := []model.SortMode{model.SortManual, model.SortName, model.SortNewest, model.SortOldest}
	for i, mode := range modes {
		if mode == m.sortMode {
			m.sortMode = modes[(i+1)%len(modes)]
			break
		}
	}
	m.status = "sort: " + string(m.sortMode)
	m.rebuildRows()
}

func (m *deckModel) cycleKindFilter() {
	kinds := map[string]bool{}
	for _, f := range m.co.Fragments() {
		if k := strings.TrimSpace(f.Kind); k != "" {
			kinds[k] = true
		}
	}
	ordered := make([]string, 0, len(kinds)+1)
	ordered = append(ordered, "") // all kinds
	keys := make([]string, 0, len(kinds))
	for k := range kinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered = append(ordered, keys...)

	for i, k := range ordered {
		if k == m.kindFilter {
			m.kindFilter = ordered[(i+1)%len(ordered)]
			break
		}
	}
	m.rebuildRows()
}

func (m *deckModel) folderOfSelected() (model.Folder, bool) {
	f, ok := m.selectedFragment()
	if !ok || f.FolderID == nil {
		return model.Folder{}, false
	}
	for _, folder := range m.co.Folders() {
		if folder.ID == *f.FolderID {
			return folder, true
		}
	}
	return model.Folder{}, false
}
