// Package drag implements the pointer-gesture state machine for manual
// reordering: one session per pointer-down-to-pointer-up gesture, a live
// projection of the reordered sequence while the pointer moves, and a single
// intent emitted when the gesture ends.
package drag

import (
	"strings"

	"inkdeck/internal/order"
)

// Kind is what the gesture is moving.
type Kind int

const (
	KindNone Kind = iota
	KindFragment
	KindFolder
)

// IntentKind discriminates the single outcome of a finished gesture.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentReorder
	IntentReorderFolders
	IntentReassign
	IntentArchive
)

// Intent is the outbound mutation request a gesture resolves to. At most one
// intent is emitted per gesture.
type Intent struct {
	Kind IntentKind

	// Seq is the final view sequence for IntentReorder and
	// IntentReorderFolders. The session only sees id positions; the caller
	// plans the rank payload against the stored ranks it holds.
	Seq []string

	// FragmentID is set for IntentReassign and IntentArchive.
	FragmentID string

	// FolderID is the reassign target; nil means uncategorized.
	FolderID *string
}

// Session tracks one in-progress drag. The zero value is an idle session.
//
// Session methods never panic on bad input: they degrade to no-ops, since
// they sit directly behind pointer-event handlers.
type Session struct {
	// Gate, when set, is consulted before a gesture starts. The TUI uses it
	// to refuse drags while a comparator sort or a text filter is active.
	Gate func(Kind) bool

	kind         Kind
	draggedID    string
	originIndex  int
	snapshot     []string
	live         []string
	targetSet    bool
	targetFolder *string
	archiveArmed bool
}

func (s *Session) Active() bool       { return s.kind != KindNone }
func (s *Session) Kind() Kind         { return s.kind }
func (s *Session) DraggedID() string  { return s.draggedID }
func (s *Session) OriginIndex() int   { return s.originIndex }
func (s *Session) ArchiveArmed() bool { return s.archiveArmed }

// Live returns a copy of the current live sequence, or nil when idle.
func (s *Session) Live() []string { return order.Snapshot(s.live) }

// DropTarget reports the current folder candidate. ok is false when no
// folder header is the candidate; a nil id with ok=true is uncategorized.
func (s *Session) DropTarget() (id *string, ok bool) {
	return s.targetFolder, s.targetSet
}

// Begin starts a gesture over the given id sequence. It reports false and
// leaves any active session untouched when a gesture of either kind is
// already in progress, when the gate refuses, or when id is not in seq.
// The first gesture owns the pointer.
func (s *Session) Begin(kind Kind, id string, seq []string) bool {
	if s.kind != KindNone {
		return false
	}
	if kind != KindFragment && kind != KindFolder {
		return false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if s.Gate != nil && !s.Gate(kind) {
		return false
	}
	idx := indexOf(seq, id)
	if idx < 0 {
		return false
	}
	s.kind = kind
	s.draggedID = id
	s.originIndex = idx
	s.snapshot = order.Snapshot(seq)
	s.live = order.Snapshot(seq)
	s.targetSet = false
	s.targetFolder = nil
	s.archiveArmed = false
	return true
}

// EnterIndex moves the dragged id to index i of the live sequence: splice
// out, splice in. Repeated enters at the same index are no-ops, and the
// sequence never loses or duplicates an id. Entering a row also clears any
// folder drop target, since the pointer is over the list region now.
func (s *Session) EnterIndex(i int) {
	if s.kind == KindNone {
		return
	}
	s.targetSet = false
	s.targetFolder = nil

	cur := indexOf(s.live, s.draggedID)
	if cur < 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.live)-1 {
		i = len(s.live) - 1
	}
	if i == cur {
		return
	}
	next := make([]string, 0, len(s.live))
	next = append(next, s.live[:cur]...)
	next = append(next, s.live[cur+1:]...)
	next = append(next[:i], append([]string{s.draggedID}, next[i:]...)...)
	s.live = next
}

// EnterFolder marks a folder header (nil = uncategorized) as the drop
// candidate. Only fragment drags have folder targets; the live order is left
// alone — a cross-folder drop never reorders.
func (s *Session) EnterFolder(id *string) {
	if s.kind != KindFragment {
		return
	}
	s.targetSet = true
	s.targetFolder = id
}

// ClearFolderTarget drops the folder candidate (pointer left the header).
func (s *Session) ClearFolderTarget() {
	s.targetSet = false
	s.targetFolder = nil
}

// ArmArchive marks the gesture as hovering the archive zone; End will emit
// an archive intent instead of a reorder or reassign.
func (s *Session) ArmArchive() {
	if s.kind != KindFragment {
		return
	}
	s.archiveArmed = true
}

func (s *Session) DisarmArchive() { s.archiveArmed = false }

// End finishes the gesture and returns its single intent:
//
//   - archive zone armed → Archive, everything else discarded
//   - folder candidate set → Reassign, the live order is discarded
//   - otherwise → the reordered sequence, or nothing for a no-op drag
//
// The session always returns to idle.
func (s *Session) End() Intent {
	defer s.reset()

	if s.kind == KindNone {
		return Intent{}
	}
	if s.archiveArmed && s.kind == KindFragment {
		return Intent{Kind: IntentArchive, FragmentID: s.draggedID}
	}
	if s.targetSet && s.kind == KindFragment {
		return Intent{Kind: IntentReassign, FragmentID: s.draggedID, FolderID: s.targetFolder}
	}
	if order.Equal(s.snapshot, s.live) {
		return Intent{}
	}
	if s.kind == KindFolder {
		return Intent{Kind: IntentReorderFolders, Seq: order.Snapshot(s.live)}
	}
	return Intent{Kind: IntentReorder, Seq: order.Snapshot(s.live)}
}

func (s *Session) reset() {
	s.kind = KindNone
	s.draggedID = ""
	s.originIndex = 0
	s.snapshot = nil
	s.live = nil
	s.targetSet = false
	s.targetFolder = nil
	s.archiveArmed = false
}

func indexOf(seq []string, id string) int {
	for i, v := range seq {
		if v == id {
			return i
		}
	}
	return -1
}
