package model

import "time"

// SortMode selects how the deck orders fragments. Only SortManual
// participates in drag reordering; the comparator modes are read-only.
type SortMode string

const (
	SortManual SortMode = "manual"
	SortName   SortMode = "name"
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
)

func (m SortMode) Valid() bool {
	switch m {
	case SortManual, SortName, SortNewest, SortOldest:
		return true
	}
	return false
}

type Fragment struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	Title string `json:"title"`
	Body  string `json:"body,omitempty"`

	// Rank is the manual-order position. Ranks are not necessarily
	// contiguous; reorders rewrite them densely per view.
	Rank int `json:"rank"`

	// FolderID is nil for uncategorized. It may point at a folder that no
	// longer exists; readers must treat that as uncategorized.
	FolderID *string `json:"folderId,omitempty"`

	Archived bool `json:"archived"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`

	// Color is an optional tag (a lipgloss-compatible color string).
	Color string `json:"color,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// ResolveFolderID maps a fragment's folder reference against the known
// folder set: a missing or dangling reference resolves to nil (uncategorized).
func ResolveFolderID(f Fragment, folders []Folder) *string {
	if f.FolderID == nil {
		return nil
	}
	for i := range folders {
		if folders[i].ID == *f.FolderID {
			return f.FolderID
		}
	}
	return nil
}
