package remote

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkdeck/internal/model"
	"inkdeck/internal/order"

	_ "modernc.org/sqlite"
)

const dbFileName = "deck.sqlite"

// SQLiteStore is the shipped authority: a workspace-local SQLite database.
// It plays the "remote store" role of the sync protocol; from the view's
// perspective it is simply the side that can fail and must be re-fetched.
type SQLiteStore struct {
	Dir string
}

func (s SQLiteStore) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s SQLiteStore) path() string {
	return filepath.Join(s.Dir, dbFileName)
}

func (s SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when a CLI runs next to the TUI.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := s.migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s SQLiteStore) migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fragments (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			rank INTEGER NOT NULL DEFAULT 0,
			folder_id TEXT,
			archived INTEGER NOT NULL DEFAULT 0,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_rank ON fragments(rank);`,
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			rank INTEGER NOT NULL DEFAULT 0,
			color TEXT NOT NULL DEFAULT '',
			created_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s SQLiteStore) Fragments(ctx context.Context) ([]model.Fragment, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, kind, title, body, rank, folder_id, archived, created_at_unixms, updated_at_unixms FROM fragments ORDER BY rank, created_at_unixms, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Fragment
	for rows.Next() {
		var f model.Fragment
		var folderID sql.NullString
		var archived int
		var createdMS, updatedMS int64
		if err := rows.Scan(&f.ID, &f.Kind, &f.Title, &f.Body, &f.Rank, &folderID, &archived, &createdMS, &updatedMS); err != nil {
			return nil, err
		}
		if folderID.Valid {
			v := folderID.String
			f.FolderID = &v
		}
		f.Archived = archived != 0
		f.CreatedAt = time.UnixMilli(createdMS).UTC()
		f.UpdatedAt = time.UnixMilli(updatedMS).UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s SQLiteStore) Folders(ctx context.Context) ([]model.Folder, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, name, rank, color, created_at_unixms FROM folders ORDER BY rank, created_at_unixms, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Folder
	for rows.Next() {
		var f model.Folder
		var createdMS int64
		if err := rows.Scan(&f.ID, &f.Name, &f.Rank, &f.Color, &createdMS); err != nil {
			return nil, err
		}
		f.CreatedAt = time.UnixMilli(createdMS).UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s SQLiteStore) ReorderFragments(ctx context.Context, updates []order.RankUpdate) error {
	return s.applyRanks(ctx, "fragments", "fragment", updates, true)
}

func (s SQLiteStore) ReorderFolders(ctx context.Context, updates []order.RankUpdate) error {
	return s.applyRanks(ctx, "folders", "folder", updates, false)
}

func (s SQLiteStore) applyRanks(ctx context.Context, table, kind string, updates []order.RankUpdate, touchUpdated bool) error {
	if len(updates) == 0 {
		return nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, u := range updates {
		id := strings.TrimSpace(u.ID)
		if id == "" {
			continue
		}
		var res sql.Result
		if touchUpdated {
			res, err = tx.ExecContext(ctx, `UPDATE `+table+` SET rank = ?, updated_at_unixms = ? WHERE id = ?`, u.Rank, now, id)
		} else {
			res, err = tx.ExecContext(ctx, `UPDATE `+table+` SET rank = ? WHERE id = ?`, u.Rank, id)
		}
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return NotFoundError{Kind: kind, ID: id}
		}
	}
	return tx.Commit()
}

func (s SQLiteStore) Reassign(ctx context.Context, fragmentID string, folderID *string) error {
	fragmentID = strings.TrimSpace(fragmentID)
	if fragmentID == "" {
		return errors.New("missing fragment id")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if folderID != nil {
		var exists int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM folders WHERE id = ?`, *folderID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return NotFoundError{Kind: "folder", ID: *folderID}
		}
	}

	var target sql.NullString
	if folderID != nil {
		target = sql.NullString{String: *folderID, Valid: true}
	}
	res, err := db.ExecContext(ctx, `UPDATE fragments SET folder_id = ?, updated_at_unixms = ? WHERE id = ?`, target, time.Now().UnixMilli(), fragmentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "fragment", ID: fragmentID}
	}
	return nil
}

func (s SQLiteStore) Archive(ctx context.Context, fragmentID string) error {
	fragmentID = strings.TrimSpace(fragmentID)
	if fragmentID == "" {
		return errors.New("missing fragment id")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `UPDATE fragments SET archived = 1, updated_at_unixms = ? WHERE id = ?`, time.Now().UnixMilli(), fragmentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "fragment", ID: fragmentID}
	}
	return nil
}

func (s SQLiteStore) CreateFragment(ctx context.Context, f model.Fragment) (model.Fragment, error) {
	db, err := s.open(ctx)
	if err != nil {
		return model.Fragment{}, err
	}
	defer db.Close()

	if strings.TrimSpace(f.ID) == "" {
		id, err := newRandomID("frag")
		if err != nil {
			return model.Fragment{}, err
		}
		f.ID = id
	}
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	// New fragments land at the end of the deck.
	if f.Rank == 0 {
		var maxRank sql.NullInt64
		if err := db.QueryRowContext(ctx, `SELECT MAX(rank) FROM fragments`).Scan(&maxRank); err != nil {
			return model.Fragment{}, err
		}
		if maxRank.Valid {
			f.Rank = int(maxRank.Int64) + 1
		}
	}

	var folderID sql.NullString
	if f.FolderID != nil {
		folderID = sql.NullString{String: *f.FolderID, Valid: true}
	}
	archived := 0
	if f.Archived {
		archived = 1
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO fragments (id, kind, title, body, rank, folder_id, archived, created_at_unixms, updated_at_unixms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, strings.TrimSpace(f.Kind), strings.TrimSpace(f.Title), f.Body, f.Rank, folderID, archived, f.CreatedAt.UnixMilli(), f.UpdatedAt.UnixMilli())
	if err != nil {
		return model.Fragment{}, err
	}
	return f, nil
}

func (s SQLiteStore) CreateFolder(ctx context.Context, name, color string) (model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Folder{}, errors.New("missing folder name")
	}
	db, err := s.open(ctx)
	if err != nil {
		return model.Folder{}, err
	}
	defer db.Close()

	id, err := newRandomID("fold")
	if err != nil {
		return model.Folder{}, err
	}
	var maxRank sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(rank) FROM folders`).Scan(&maxRank); err != nil {
		return model.Folder{}, err
	}
	rank := 0
	if maxRank.Valid {
		rank = int(maxRank.Int64) + 1
	}
	f := model.Folder{
		ID:        id,
		Name:      name,
		Rank:      rank,
		Color:     strings.TrimSpace(color),
		CreatedAt: time.Now().UTC(),
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO folders (id, name, rank, color, created_at_unixms) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Rank, f.Color, f.CreatedAt.UnixMilli())
	if err != nil {
		return model.Folder{}, err
	}
	return f, nil
}

func (s SQLiteStore) RenameFolder(ctx context.Context, id, name string) error {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return errors.New("missing folder id or name")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `UPDATE folders SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "folder", ID: id}
	}
	return nil
}

// DeleteFolder removes the folder only. Fragments that pointed at it keep
// their dangling reference and resolve to uncategorized on read.
func (s SQLiteStore) DeleteFolder(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("missing folder id")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "folder", ID: id}
	}
	return nil
}

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}
