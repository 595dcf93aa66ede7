package order

import (
	"sort"
	"strings"
	"time"

	"inkdeck/internal/model"
)

// RankUpdate is one (id, rank) pair of a reorder intent. A reorder mutation
// carries exactly the updates whose rank actually changed.
type RankUpdate struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

// SortFragments sorts frags in place for the given mode.
//
// Every mode breaks ties on CreatedAt and then ID so that fragments with
// equal keys keep a stable relative order across calls.
func SortFragments(frags []model.Fragment, mode model.SortMode) {
	sort.SliceStable(frags, func(i, j int) bool {
		return compareFragments(frags[i], frags[j], mode) < 0
	})
}

func compareFragments(a, b model.Fragment, mode model.SortMode) int {
	switch mode {
	case model.SortName:
		ta := strings.ToLower(strings.TrimSpace(a.Title))
		tb := strings.ToLower(strings.TrimSpace(b.Title))
		if ta != tb {
			if ta < tb {
				return -1
			}
			return 1
		}
	case model.SortNewest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if a.CreatedAt.After(b.CreatedAt) {
				return -1
			}
			return 1
		}
	case model.SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if a.CreatedAt.Before(b.CreatedAt) {
				return -1
			}
			return 1
		}
	default: // manual
		if a.Rank != b.Rank {
			if a.Rank < b.Rank {
				return -1
			}
			return 1
		}
	}
	return compareCreatedID(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
}

// SortFolders sorts folders in place by rank, with CreatedAt then ID
// tie-breaks, matching the fragment ordering rules.
func SortFolders(folders []model.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return compareCreatedID(a.CreatedAt, a.ID, b.CreatedAt, b.ID) < 0
	})
}

func compareCreatedID(aAt time.Time, aID string, bAt time.Time, bID string) int {
	if aAt.Before(bAt) {
		return -1
	}
	if aAt.After(bAt) {
		return 1
	}
	if aID < bID {
		return -1
	}
	if aID > bID {
		return 1
	}
	return 0
}

// IDs returns the id sequence of frags in their current slice order.
func IDs(frags []model.Fragment) []string {
	out := make([]string, 0, len(frags))
	for i := range frags {
		out = append(out, frags[i].ID)
	}
	return out
}

// FolderIDs returns the id sequence of folders in their current slice order.
func FolderIDs(folders []model.Folder) []string {
	out := make([]string, 0, len(folders))
	for i := range folders {
		out = append(out, folders[i].ID)
	}
	return out
}

// Snapshot returns an independent copy of seq, safe to keep for rollback
// while the original keeps mutating.
func Snapshot(seq []string) []string {
	if seq == nil {
		return nil
	}
	out := make([]string, len(seq))
	copy(out, seq)
	return out
}

// Equal reports whether two id sequences are identical. Callers use it to
// detect no-op drags before planning a payload.
func Equal(prev, next []string) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i] != next[i] {
			return false
		}
	}
	return true
}

// PlanReorder computes the reorder payload for committing next as the new
// manual order of a view: the target rank of each id in next is its dense
// index (0, 1, 2, ...), and the payload carries exactly the ids whose stored
// rank differs from that target.
//
// Planning against stored ranks matters: a view's committed ranks are not
// necessarily 0-based or contiguous (fragments of another kind may hold the
// low ranks, archived fragments leave gaps). A payload derived from
// positions alone would leave an unmoved fragment's stale rank in place and
// let it sort past the rewritten ones. Fragments not named by next are
// untouched.
func PlanReorder(frags []model.Fragment, next []string) []RankUpdate {
	stored := make(map[string]int, len(frags))
	for i := range frags {
		stored[frags[i].ID] = frags[i].Rank
	}
	var out []RankUpdate
	for i, id := range next {
		if r, ok := stored[id]; ok && r != i {
			out = append(out, RankUpdate{ID: id, Rank: i})
		}
	}
	return out
}

// PlanFolderReorder is PlanReorder over the folder list.
func PlanFolderReorder(folders []model.Folder, next []string) []RankUpdate {
	stored := make(map[string]int, len(folders))
	for i := range folders {
		stored[folders[i].ID] = folders[i].Rank
	}
	var out []RankUpdate
	for i, id := range next {
		if r, ok := stored[id]; ok && r != i {
			out = append(out, RankUpdate{ID: id, Rank: i})
		}
	}
	return out
}

// ApplyReorder rewrites the ranks of the fragments named by seq as dense
// increasing integers (0, 1, 2, ...) in seq order. Fragments not in seq
// (e.g. another kind, or archived) keep their existing rank, so reordering
// one view never disturbs the others.
func ApplyReorder(frags []model.Fragment, seq []string) {
	rank := make(map[string]int, len(seq))
	for i, id := range seq {
		rank[id] = i
	}
	for i := range frags {
		if r, ok := rank[frags[i].ID]; ok {
			frags[i].Rank = r
		}
	}
}

// ApplyRankUpdates patches fragment ranks from a reorder payload. Unknown
// ids are ignored.
func ApplyRankUpdates(frags []model.Fragment, updates []RankUpdate) {
	if len(updates) == 0 {
		return
	}
	rank := make(map[string]int, len(updates))
	for _, u := range updates {
		rank[u.ID] = u.Rank
	}
	for i := range frags {
		if r, ok := rank[frags[i].ID]; ok {
			frags[i].Rank = r
		}
	}
}

// ApplyFolderRankUpdates patches folder ranks from a container-reorder
// payload. Unknown ids are ignored.
func ApplyFolderRankUpdates(folders []model.Folder, updates []RankUpdate) {
	if len(updates) == 0 {
		return
	}
	rank := make(map[string]int, len(updates))
	for _, u := range updates {
		rank[u.ID] = u.Rank
	}
	for i := range folders {
		if r, ok := rank[folders[i].ID]; ok {
			folders[i].Rank = r
		}
	}
}
