// Package remote defines the contract with the store that owns fragments
// and folders. The in-memory view layers on top of it and only ever holds a
// read replica; every mutation below corresponds to exactly one call.
package remote

import (
	"context"
	"fmt"

	"inkdeck/internal/model"
	"inkdeck/internal/order"
)

// Store is the remote authority. Implementations must treat every mutation
// as atomic: a failed call leaves the authoritative state unchanged.
type Store interface {
	Fragments(ctx context.Context) ([]model.Fragment, error)
	Folders(ctx context.Context) ([]model.Folder, error)

	// ReorderFragments applies a batched rank update (one drag's diff).
	ReorderFragments(ctx context.Context, updates []order.RankUpdate) error

	// ReorderFolders applies a batched folder rank update.
	ReorderFolders(ctx context.Context, updates []order.RankUpdate) error

	// Reassign moves a fragment into folderID (nil = uncategorized). The
	// fragment's rank is left untouched.
	Reassign(ctx context.Context, fragmentID string, folderID *string) error

	Archive(ctx context.Context, fragmentID string) error

	CreateFragment(ctx context.Context, f model.Fragment) (model.Fragment, error)
	CreateFolder(ctx context.Context, name, color string) (model.Folder, error)
	RenameFolder(ctx context.Context, id, name string) error
	DeleteFolder(ctx context.Context, id string) error
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
