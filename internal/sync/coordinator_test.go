package sync

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"inkdeck/internal/model"
	"inkdeck/internal/order"
)

// fakeStore is an in-memory authority with injectable mutation failures.
type fakeStore struct {
	frags   []model.Fragment
	folders []model.Folder

	failReorder  error
	failReassign error
	failArchive  error
}

func (s *fakeStore) Fragments(ctx context.Context) ([]model.Fragment, error) {
	out := make([]model.Fragment, len(s.frags))
	copy(out, s.frags)
	return out, nil
}

func (s *fakeStore) Folders(ctx context.Context) ([]model.Folder, error) {
	out := make([]model.Folder, len(s.folders))
	copy(out, s.folders)
	return out, nil
}

func (s *fakeStore) ReorderFragments(ctx context.Context, updates []order.RankUpdate) error {
	if s.failReorder != nil {
		return s.failReorder
	}
	order.ApplyRankUpdates(s.frags, updates)
	return nil
}

func (s *fakeStore) ReorderFolders(ctx context.Context, updates []order.RankUpdate) error {
	if s.failReorder != nil {
		return s.failReorder
	}
	order.ApplyFolderRankUpdates(s.folders, updates)
	return nil
}

func (s *fakeStore) Reassign(ctx context.Context, fragmentID string, folderID *string) error {
	if s.failReassign != nil {
		return s.failReassign
	}
	for i := range s.frags {
		if s.frags[i].ID == fragmentID {
			s.frags[i].FolderID = folderID
		}
	}
	return nil
}

func (s *fakeStore) Archive(ctx context.Context, fragmentID string) error {
	if s.failArchive != nil {
		return s.failArchive
	}
	for i := range s.frags {
		if s.frags[i].ID == fragmentID {
			s.frags[i].Archived = true
		}
	}
	return nil
}

func (s *fakeStore) CreateFragment(ctx context.Context, f model.Fragment) (model.Fragment, error) {
	s.frags = append(s.frags, f)
	return f, nil
}

func (s *fakeStore) CreateFolder(ctx context.Context, name, color string) (model.Folder, error) {
	f := model.Folder{ID: "fold-" + name, Name: name, Color: color, Rank: len(s.folders)}
	s.folders = append(s.folders, f)
	return f, nil
}

func (s *fakeStore) RenameFolder(ctx context.Context, id, name string) error {
	for i := range s.folders {
		if s.folders[i].ID == id {
			s.folders[i].Name = name
		}
	}
	return nil
}

func (s *fakeStore) DeleteFolder(ctx context.Context, id string) error {
	keep := s.folders[:0]
	for _, f := range s.folders {
		if f.ID != id {
			keep = append(keep, f)
		}
	}
	s.folders = keep
	return nil
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeStore) {
	t.Helper()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{
		frags: []model.Fragment{
			{ID: "frag-a", Title: "a", Rank: 0, CreatedAt: base},
			{ID: "frag-b", Title: "b", Rank: 1, CreatedAt: base},
			{ID: "frag-c", Title: "c", Rank: 2, CreatedAt: base},
		},
		folders: []model.Folder{
			{ID: "fold-1", Name: "Act I", Rank: 0, CreatedAt: base},
		},
	}
	c := NewCoordinator(store, NewCache())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return c, store
}

func rankOf(frags []model.Fragment, id string) int {
	for _, f := range frags {
		if f.ID == id {
			return f.Rank
		}
	}
	return -1
}

func TestOptimisticReorderAppliesImmediately(t *testing.T) {
	c, _ := newTestCoordinator(t)

	m := c.ReorderFragments([]string{"frag-b", "frag-c", "frag-a"})
	if m == nil {
		t.Fatalf("expected a mutation")
	}

	// Before the remote call even runs, the replica shows the new order.
	if got := rankOf(c.Fragments(), "frag-a"); got != 2 {
		t.Fatalf("optimistic rank of frag-a = %d", got)
	}
}

func TestSettleSuccessAdoptsAuthoritativeState(t *testing.T) {
	c, store := newTestCoordinator(t)
	ctx := context.Background()

	m := c.ReorderFragments([]string{"frag-c", "frag-b", "frag-a"})
	if err := c.Settle(ctx, m, m.Call(ctx)); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	authoritative, _ := store.Fragments(ctx)
	if !reflect.DeepEqual(c.Fragments(), authoritative) {
		t.Fatalf("cache diverged from authority:\n%+v\n%+v", c.Fragments(), authoritative)
	}
	if c.Cache().IsStale(KeyFragments) {
		t.Fatalf("fragments still stale after refresh")
	}
}

func TestSettleFailureRollsBackToSnapshot(t *testing.T) {
	c, store := newTestCoordinator(t)
	ctx := context.Background()

	before := c.Fragments()
	store.failReorder = errors.New("remote store unavailable")

	m := c.ReorderFragments([]string{"frag-b", "frag-c", "frag-a"})
	if got := rankOf(c.Fragments(), "frag-a"); got != 2 {
		t.Fatalf("optimistic write missing, rank = %d", got)
	}

	err := c.Settle(ctx, m, m.Call(ctx))
	if err == nil {
		t.Fatalf("expected settle to surface the failure")
	}
	if !reflect.DeepEqual(c.Fragments(), before) {
		t.Fatalf("rollback mismatch:\n%+v\n%+v", c.Fragments(), before)
	}
}

func TestReassignOptimisticAndRolledBack(t *testing.T) {
	c, store := newTestCoordinator(t)
	ctx := context.Background()

	target := "fold-1"
	m := c.Reassign("frag-b", &target)
	frags := c.Fragments()
	if got := frags[1].FolderID; got == nil || *got != "fold-1" {
		t.Fatalf("optimistic reassign missing: %+v", frags[1])
	}
	// Rank untouched by a cross-folder drop.
	if frags[1].Rank != 1 {
		t.Fatalf("reassign changed rank: %d", frags[1].Rank)
	}
	if err := c.Settle(ctx, m, m.Call(ctx)); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	store.failReassign = errors.New("boom")
	m = c.Reassign("frag-b", nil)
	if err := c.Settle(ctx, m, m.Call(ctx)); err == nil {
		t.Fatalf("expected failure")
	}
	frags = c.Fragments()
	if got := frags[1].FolderID; got == nil || *got != "fold-1" {
		t.Fatalf("rollback lost the assignment: %+v", frags[1])
	}
}

func TestArchiveOptimistic(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	m := c.Archive("frag-c")
	if !c.Fragments()[2].Archived {
		t.Fatalf("optimistic archive missing")
	}
	if err := c.Settle(ctx, m, m.Call(ctx)); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if !c.Fragments()[2].Archived {
		t.Fatalf("archive lost after refresh")
	}
}

// An early failure rolling back over a later success is the accepted
// tradeoff of not serializing mutations: the rollback restores a snapshot
// taken before the later mutation, discarding it locally until the next
// refresh.
func TestOverlappingRollbackDiscardsLaterWrite(t *testing.T) {
	c, store := newTestCoordinator(t)
	ctx := context.Background()

	store.failReorder = errors.New("slow failure")
	first := c.ReorderFragments([]string{"frag-b", "frag-c", "frag-a"})
	firstErr := first.Call(ctx)

	// Second drag starts before the first settles: its snapshot is the
	// already-optimistic state.
	target := "fold-1"
	second := c.Reassign("frag-c", &target)
	if err := c.Settle(ctx, second, second.Call(ctx)); err != nil {
		t.Fatalf("second settle: %v", err)
	}

	if err := c.Settle(ctx, first, firstErr); err == nil {
		t.Fatalf("expected first settle to fail")
	}

	// The rollback predates the second mutation, so the local reassign is
	// gone even though the authority has it.
	frags := c.Fragments()
	if frags[2].FolderID != nil {
		t.Fatalf("rollback kept the later write: %+v", frags[2])
	}
	authoritative, _ := store.Fragments(ctx)
	if authoritative[2].FolderID == nil {
		t.Fatalf("authority lost the successful reassign")
	}

	// The next refresh reconverges.
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := c.Fragments()[2].FolderID; got == nil || *got != "fold-1" {
		t.Fatalf("refresh did not reconverge: %+v", c.Fragments()[2])
	}
}

// Committing a view whose stored ranks are offset must rewrite the unmoved
// fragment too: its stale rank would otherwise sort it behind the pair that
// got fresh low ranks.
func TestReorderPlansAgainstStoredRanks(t *testing.T) {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{
		frags: []model.Fragment{
			{ID: "frag-x", Title: "x", Rank: 5, CreatedAt: base},
			{ID: "frag-y", Title: "y", Rank: 6, CreatedAt: base.Add(time.Minute)},
			{ID: "frag-z", Title: "z", Rank: 7, CreatedAt: base.Add(2 * time.Minute)},
		},
	}
	c := NewCoordinator(store, NewCache())
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	m := c.ReorderFragments([]string{"frag-x", "frag-z", "frag-y"})
	if err := c.Settle(ctx, m, m.Call(ctx)); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	authoritative, _ := store.Fragments(ctx)
	order.SortFragments(authoritative, model.SortManual)
	got := order.IDs(authoritative)
	want := []string{"frag-x", "frag-z", "frag-y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("committed order = %v, want %v", got, want)
	}
	if r := rankOf(authoritative, "frag-x"); r != 0 {
		t.Fatalf("unmoved fragment kept stale rank %d, want 0", r)
	}
}

func TestEmptyPayloadsProduceNoMutation(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if m := c.ReorderFragments(nil); m != nil {
		t.Fatalf("empty reorder produced a mutation")
	}
	if m := c.ReorderFragments([]string{"frag-a", "frag-b", "frag-c"}); m != nil {
		t.Fatalf("unchanged dense order produced a mutation")
	}
	if m := c.Reassign("  ", nil); m != nil {
		t.Fatalf("blank reassign produced a mutation")
	}
	if err := c.Settle(context.Background(), nil, nil); err != nil {
		t.Fatalf("nil mutation settle: %v", err)
	}
}
