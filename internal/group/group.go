// Package group builds the folder-partitioned view of a fragment deck.
//
// Build is a pure function: for identical inputs it returns identical
// grouping and ordering, so repeated renders never jitter.
package group

import (
	"sort"
	"strings"

	"inkdeck/internal/model"
	"inkdeck/internal/order"
)

// Group is one displayed bucket. Folder is nil for the uncategorized
// pseudo-folder, which is never persisted.
type Group struct {
	Folder    *model.Folder
	Fragments []model.Fragment
}

type Options struct {
	// FolderOrder, when non-empty, overrides folder ordering with a live
	// drag projection (a full id sequence). Folders missing from the
	// projection sort after it in their own rank order.
	FolderOrder []string

	// KeepEmptyFolderID keeps a just-created empty folder visible so it can
	// serve as a drop target before anything lands in it.
	KeepEmptyFolderID string
}

// Build buckets frags under folders. Fragments keep their incoming relative
// order (callers sort first); folders sort by rank unless a live projection
// is supplied. A fragment assigned to a folder that no longer exists lands
// in uncategorized. Empty folders are dropped, except the just-created one.
// The uncategorized bucket appears last, whenever it is non-empty or any
// folder group is shown.
func Build(frags []model.Fragment, folders []model.Folder, opts Options) []Group {
	sorted := make([]model.Folder, len(folders))
	copy(sorted, folders)
	if len(opts.FolderOrder) > 0 {
		projection := make(map[string]int, len(opts.FolderOrder))
		for i, id := range opts.FolderOrder {
			projection[id] = i
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			pi, iok := projection[sorted[i].ID]
			pj, jok := projection[sorted[j].ID]
			if iok && jok {
				return pi < pj
			}
			if iok != jok {
				return iok
			}
			if sorted[i].Rank != sorted[j].Rank {
				return sorted[i].Rank < sorted[j].Rank
			}
			return sorted[i].ID < sorted[j].ID
		})
	} else {
		order.SortFolders(sorted)
	}

	buckets := make(map[string][]model.Fragment, len(sorted))
	var loose []model.Fragment
	for _, f := range frags {
		id := model.ResolveFolderID(f, sorted)
		if id == nil {
			loose = append(loose, f)
			continue
		}
		buckets[*id] = append(buckets[*id], f)
	}

	keep := strings.TrimSpace(opts.KeepEmptyFolderID)
	out := make([]Group, 0, len(sorted)+1)
	for i := range sorted {
		fr := buckets[sorted[i].ID]
		if len(fr) == 0 && sorted[i].ID != keep {
			continue
		}
		folder := sorted[i]
		out = append(out, Group{Folder: &folder, Fragments: fr})
	}

	if len(loose) > 0 || len(out) > 0 {
		out = append(out, Group{Fragments: loose})
	}
	return out
}
