package remote

import (
	"context"
	"errors"
	"testing"

	"inkdeck/internal/model"
	"inkdeck/internal/order"
)

func newTestStore(t *testing.T) SQLiteStore {
	t.Helper()
	return SQLiteStore{Dir: t.TempDir()}
}

func seedFragments(t *testing.T, s SQLiteStore, titles ...string) []model.Fragment {
	t.Helper()
	ctx := context.Background()
	out := make([]model.Fragment, 0, len(titles))
	for _, title := range titles {
		f, err := s.CreateFragment(ctx, model.Fragment{Title: title, Kind: "scene"})
		if err != nil {
			t.Fatalf("CreateFragment(%s): %v", title, err)
		}
		out = append(out, f)
	}
	return out
}

func TestSQLiteCreateAssignsTrailingRanks(t *testing.T) {
	s := newTestStore(t)
	seedFragments(t, s, "one", "two", "three")

	frags, err := s.Fragments(context.Background())
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("got %d fragments", len(frags))
	}
	for i, f := range frags {
		if f.Rank != i {
			t.Fatalf("fragment %d rank = %d", i, f.Rank)
		}
	}
}

func TestSQLiteReorderFragments(t *testing.T) {
	s := newTestStore(t)
	created := seedFragments(t, s, "one", "two", "three")
	ctx := context.Background()

	err := s.ReorderFragments(ctx, []order.RankUpdate{
		{ID: created[2].ID, Rank: 0},
		{ID: created[0].ID, Rank: 1},
		{ID: created[1].ID, Rank: 2},
	})
	if err != nil {
		t.Fatalf("ReorderFragments: %v", err)
	}

	frags, err := s.Fragments(ctx)
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	if frags[0].ID != created[2].ID || frags[1].ID != created[0].ID {
		t.Fatalf("order after reorder: %s, %s, %s", frags[0].Title, frags[1].Title, frags[2].Title)
	}
}

func TestSQLiteReorderUnknownIDRollsBack(t *testing.T) {
	s := newTestStore(t)
	created := seedFragments(t, s, "one", "two")
	ctx := context.Background()

	err := s.ReorderFragments(ctx, []order.RankUpdate{
		{ID: created[0].ID, Rank: 1},
		{ID: "frag-missing", Rank: 0},
	})
	var nf NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	// The whole batch is a transaction: the first update must not stick.
	frags, err := s.Fragments(ctx)
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	if frags[0].ID != created[0].ID {
		t.Fatalf("partial reorder leaked: %+v", frags)
	}
}

func TestSQLiteReassignAndDanglingFolder(t *testing.T) {
	s := newTestStore(t)
	created := seedFragments(t, s, "one")
	ctx := context.Background()

	folder, err := s.CreateFolder(ctx, "Act I", "62")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := s.Reassign(ctx, created[0].ID, &folder.ID); err != nil {
		t.Fatalf("Reassign: %v", err)
	}

	frags, _ := s.Fragments(ctx)
	if frags[0].FolderID == nil || *frags[0].FolderID != folder.ID {
		t.Fatalf("assignment not stored: %+v", frags[0])
	}

	// Deleting the folder leaves the reference dangling; readers resolve it
	// to uncategorized.
	if err := s.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	frags, _ = s.Fragments(ctx)
	folders, _ := s.Folders(ctx)
	if got := model.ResolveFolderID(frags[0], folders); got != nil {
		t.Fatalf("dangling assignment resolved to %v", *got)
	}

	// Back to uncategorized explicitly.
	if err := s.Reassign(ctx, created[0].ID, nil); err != nil {
		t.Fatalf("Reassign(nil): %v", err)
	}
	frags, _ = s.Fragments(ctx)
	if frags[0].FolderID != nil {
		t.Fatalf("expected nil folder, got %v", *frags[0].FolderID)
	}
}

func TestSQLiteReassignToMissingFolder(t *testing.T) {
	s := newTestStore(t)
	created := seedFragments(t, s, "one")

	target := "fold-missing"
	err := s.Reassign(context.Background(), created[0].ID, &target)
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "folder" {
		t.Fatalf("expected folder NotFoundError, got %v", err)
	}
}

func TestSQLiteArchive(t *testing.T) {
	s := newTestStore(t)
	created := seedFragments(t, s, "one")
	ctx := context.Background()

	if err := s.Archive(ctx, created[0].ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	frags, _ := s.Fragments(ctx)
	if !frags[0].Archived {
		t.Fatalf("fragment not archived")
	}

	if err := s.Archive(ctx, "frag-missing"); err == nil {
		t.Fatalf("expected error for missing fragment")
	}
}

func TestSQLiteFolderCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateFolder(ctx, "Drafts", "")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	b, err := s.CreateFolder(ctx, "Research", "105")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if b.Rank <= a.Rank {
		t.Fatalf("folder ranks not increasing: %d, %d", a.Rank, b.Rank)
	}

	if err := s.RenameFolder(ctx, a.ID, "Act I"); err != nil {
		t.Fatalf("RenameFolder: %v", err)
	}
	if err := s.ReorderFolders(ctx, []order.RankUpdate{{ID: b.ID, Rank: 0}, {ID: a.ID, Rank: 1}}); err != nil {
		t.Fatalf("ReorderFolders: %v", err)
	}

	folders, err := s.Folders(ctx)
	if err != nil {
		t.Fatalf("Folders: %v", err)
	}
	if len(folders) != 2 || folders[0].ID != b.ID || folders[1].Name != "Act I" {
		t.Fatalf("folders = %+v", folders)
	}
}
