package sync

import (
	"context"
	"strings"

	"inkdeck/internal/model"
	"inkdeck/internal/order"
	"inkdeck/internal/remote"
)

// Cache keys for the two replicated collections.
const (
	KeyFragments = "fragments"
	KeyFolders   = "folders"
)

// Coordinator wraps remote mutations with the optimistic protocol:
//
//  1. snapshot the affected cache keys
//  2. patch the cache synchronously (the view updates with zero latency)
//  3. run the remote call (asynchronously, via Mutation.Call)
//  4. Settle: success refreshes the affected keys from the authority,
//     failure restores the snapshots
//
// A mutation started while another is in flight snapshots the
// already-optimistic state. If the earlier mutation then fails, its rollback
// also discards the later change; the authoritative refresh after every
// success is what bounds that window. Mutations are deliberately not
// serialized per collection.
type Coordinator struct {
	remote remote.Store
	cache  *Cache
}

func NewCoordinator(r remote.Store, c *Cache) *Coordinator {
	if c == nil {
		c = NewCache()
	}
	return &Coordinator{remote: r, cache: c}
}

func (c *Coordinator) Cache() *Cache { return c.cache }

// Mutation is one in-flight optimistic write: the pending remote call plus
// the snapshots needed to undo its local patch.
type Mutation struct {
	Name string

	snapshots []Snapshot
	call      func(context.Context) error
}

// Call runs the remote side of the mutation. It is safe to run off the
// event loop; Settle must then run back on it.
func (m *Mutation) Call(ctx context.Context) error {
	if m == nil || m.call == nil {
		return nil
	}
	return m.call(ctx)
}

// Settle finishes a mutation with the outcome of its remote call. On
// failure the pre-mutation snapshots are restored and the error is returned
// for surfacing as a notice; the cache is then structurally identical to the
// state before the optimistic patch. On success the affected keys are
// invalidated and re-fetched so the authoritative state supersedes the
// optimistic one.
func (c *Coordinator) Settle(ctx context.Context, m *Mutation, callErr error) error {
	if m == nil {
		return nil
	}
	if callErr != nil {
		for _, s := range m.snapshots {
			c.cache.Restore(s)
		}
		return callErr
	}
	affected := map[string]bool{}
	for _, s := range m.snapshots {
		affected[s.Key()] = true
	}
	c.cache.Invalidate(func(key string) bool { return affected[key] })
	return c.refresh(ctx, func(key string) bool { return affected[key] })
}

// Refresh re-fetches every collection from the authority.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.refresh(ctx, nil)
}

func (c *Coordinator) refresh(ctx context.Context, pred func(key string) bool) error {
	if pred == nil || pred(KeyFragments) {
		frags, err := c.remote.Fragments(ctx)
		if err != nil {
			return err
		}
		c.cache.Put(KeyFragments, frags)
	}
	if pred == nil || pred(KeyFolders) {
		folders, err := c.remote.Folders(ctx)
		if err != nil {
			return err
		}
		c.cache.Put(KeyFolders, folders)
	}
	return nil
}

// Fragments returns a copy of the cached fragment replica.
func (c *Coordinator) Fragments() []model.Fragment {
	v, ok := c.cache.Get(KeyFragments)
	if !ok {
		return nil
	}
	frags, _ := v.([]model.Fragment)
	out := make([]model.Fragment, len(frags))
	copy(out, frags)
	return out
}

// Folders returns a copy of the cached folder replica.
func (c *Coordinator) Folders() []model.Folder {
	v, ok := c.cache.Get(KeyFolders)
	if !ok {
		return nil
	}
	folders, _ := v.([]model.Folder)
	out := make([]model.Folder, len(folders))
	copy(out, folders)
	return out
}

// ReorderFragments starts an optimistic commit of seq as the new manual
// order of a view. The rank payload is planned against the cached ranks
// (dense targets over seq vs what each fragment currently holds), so sparse
// or offset committed ranks are rewritten rather than left to sort an
// unmoved fragment out of place.
func (c *Coordinator) ReorderFragments(seq []string) *Mutation {
	frags := c.Fragments()
	updates := order.PlanReorder(frags, seq)
	if len(updates) == 0 {
		return nil
	}
	snap := c.cache.Snapshot(KeyFragments)
	order.ApplyRankUpdates(frags, updates)
	c.cache.Put(KeyFragments, frags)
	return &Mutation{
		Name:      "reorder",
		snapshots: []Snapshot{snap},
		call: func(ctx context.Context) error {
			return c.remote.ReorderFragments(ctx, updates)
		},
	}
}

// ReorderFolders starts an optimistic folder-order commit of seq.
func (c *Coordinator) ReorderFolders(seq []string) *Mutation {
	folders := c.Folders()
	updates := order.PlanFolderReorder(folders, seq)
	if len(updates) == 0 {
		return nil
	}
	snap := c.cache.Snapshot(KeyFolders)
	order.ApplyFolderRankUpdates(folders, updates)
	c.cache.Put(KeyFolders, folders)
	return &Mutation{
		Name:      "reorder-folders",
		snapshots: []Snapshot{snap},
		call: func(ctx context.Context) error {
			return c.remote.ReorderFolders(ctx, updates)
		},
	}
}

// Reassign starts an optimistic folder reassignment. The fragment's rank is
// untouched; only its membership changes.
func (c *Coordinator) Reassign(fragmentID string, folderID *string) *Mutation {
	fragmentID = strings.TrimSpace(fragmentID)
	if fragmentID == "" {
		return nil
	}
	snap := c.cache.Snapshot(KeyFragments)
	frags := c.Fragments()
	for i := range frags {
		if frags[i].ID == fragmentID {
			frags[i].FolderID = folderID
			break
		}
	}
	c.cache.Put(KeyFragments, frags)
	return &Mutation{
		Name:      "reassign",
		snapshots: []Snapshot{snap},
		call: func(ctx context.Context) error {
			return c.remote.Reassign(ctx, fragmentID, folderID)
		},
	}
}

// Archive starts an optimistic archive (the drag-to-archive-zone shortcut).
func (c *Coordinator) Archive(fragmentID string) *Mutation {
	fragmentID = strings.TrimSpace(fragmentID)
	if fragmentID == "" {
		return nil
	}
	snap := c.cache.Snapshot(KeyFragments)
	frags := c.Fragments()
	for i := range frags {
		if frags[i].ID == fragmentID {
			frags[i].Archived = true
			break
		}
	}
	c.cache.Put(KeyFragments, frags)
	return &Mutation{
		Name:      "archive",
		snapshots: []Snapshot{snap},
		call: func(ctx context.Context) error {
			return c.remote.Archive(ctx, fragmentID)
		},
	}
}

// Folder CRUD is not optimistic: these are plain authority calls followed
// by a refresh. DeleteFolder refreshes both replicas since it can orphan
// fragment assignments.

func (c *Coordinator) CreateFolder(ctx context.Context, name, color string) (model.Folder, error) {
	f, err := c.remote.CreateFolder(ctx, name, color)
	if err != nil {
		return model.Folder{}, err
	}
	return f, c.refresh(ctx, func(key string) bool { return key == KeyFolders })
}

func (c *Coordinator) RenameFolder(ctx context.Context, id, name string) error {
	if err := c.remote.RenameFolder(ctx, id, name); err != nil {
		return err
	}
	return c.refresh(ctx, func(key string) bool { return key == KeyFolders })
}

func (c *Coordinator) DeleteFolder(ctx context.Context, id string) error {
	if err := c.remote.DeleteFolder(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}
