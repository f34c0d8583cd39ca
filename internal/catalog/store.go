package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mloc-go/internal/config"
	"mloc-go/internal/database"
	"mloc-go/internal/database/migrations"
)

// Store is the sqlite-backed file catalog written by scans of a live
// filesystem. It is a peer of the binary database reader and shares no data
// with it: the catalog never contains decoded mlocate records and the reader
// never queries the catalog.
type Store struct {
	db   *sql.DB
	path string // database file path; ":memory:" for the memory type
}

// FileRow is one cataloged filesystem entry.
type FileRow struct {
	Path  string
	Name  string
	IsDir bool
	Size  int64
	MTime float64 // seconds since epoch, fractional
}

// Scan records one catalog update run.
type Scan struct {
	ID         string
	Root       string
	FileCount  int64
	DirCount   int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

// NewStoreFromConfig opens (and migrates) a catalog store based on the
// catalog config type.
func NewStoreFromConfig(cfg config.CatalogConfig, hostID string) (*Store, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite catalog")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, hostID+".db")
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}

	db, err := database.OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		if err := migrations.MigrateUp(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating catalog schema: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// NewStore wraps an existing connection. The schema must already be applied.
func NewStore(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path}
}

// Path returns the location of the backing database file.
func (s *Store) Path() string { return s.path }

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// BeginScan clears the catalog and records the start of an update run.
// A scan replaces the previous catalog contents wholesale, matching the
// rebuild-from-scratch behavior of updatedb.
func (s *Store) BeginScan(root string) (*Scan, error) {
	scan := &Scan{
		ID:        uuid.New().String(),
		Root:      root,
		StartedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting scan transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		return nil, fmt.Errorf("clearing catalog: %w", err)
	}
	_, err = tx.Exec(
		"INSERT INTO scans (id, root, started_at) VALUES (?, ?, ?)",
		scan.ID, scan.Root, scan.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing scan transaction: %w", err)
	}
	return scan, nil
}

// FinishScan stores the final counts and completion time of a scan.
func (s *Store) FinishScan(id string, files, dirs int64) error {
	_, err := s.db.Exec(
		"UPDATE scans SET file_count = ?, dir_count = ?, finished_at = ? WHERE id = ?",
		files, dirs, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("finishing scan: %w", err)
	}
	return nil
}

// InsertBatch writes a batch of rows in one transaction.
func (s *Store) InsertBatch(rows []FileRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO files (path, name, is_dir, size, mtime) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		isDir := 0
		if r.IsDir {
			isDir = 1
		}
		if _, err := stmt.Exec(r.Path, r.Name, isDir, r.Size, r.MTime); err != nil {
			return fmt.Errorf("inserting %s: %w", r.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert transaction: %w", err)
	}
	return nil
}

// substringSearch pushes a plain substring query down to SQL LIKE.
func (s *Store) substringSearch(pattern string, ignoreCase, basename bool, limit int) ([]string, error) {
	column := "path"
	if basename {
		column = "name"
	}

	query := fmt.Sprintf("SELECT path FROM files WHERE %s LIKE ? ORDER BY id", column)
	if ignoreCase {
		query = fmt.Sprintf("SELECT path FROM files WHERE LOWER(%s) LIKE LOWER(?) ORDER BY id", column)
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, "%"+pattern+"%")
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// eachRow streams path/name pairs in insertion order until fn returns false.
func (s *Store) eachRow(fn func(path, name string) bool) error {
	rows, err := s.db.Query("SELECT path, name FROM files ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path, name string
		if err := rows.Scan(&path, &name); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		if !fn(path, name) {
			return nil
		}
	}
	return rows.Err()
}

// LastScan returns the most recent scan, or nil if the catalog has never
// been updated.
func (s *Store) LastScan() (*Scan, error) {
	row := s.db.QueryRow(`
		SELECT id, root, file_count, dir_count, started_at, finished_at
		FROM scans ORDER BY started_at DESC LIMIT 1`)

	var scan Scan
	err := row.Scan(&scan.ID, &scan.Root, &scan.FileCount, &scan.DirCount, &scan.StartedAt, &scan.FinishedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("loading last scan: %w", err)
	}
	return &scan, nil
}
