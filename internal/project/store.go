// Package project persists named working images together with their undo
// and redo stacks in a SQLite database.
package project

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/texturemixer/internal/history"
	"github.com/example/texturemixer/internal/pixbuf"
)

// ErrNotFound reports a project name with no stored project.
var ErrNotFound = errors.New("project not found")

// Project is a saved working image and its history.
type Project struct {
	Name    string
	Image   *pixbuf.Buffer
	History history.Record
	Updated time.Time
}

// Info summarises a stored project without decoding its snapshots.
type Info struct {
	Name    string
	Width   int
	Height  int
	Undo    int
	Redo    int
	Updated time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    name TEXT PRIMARY KEY,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    updated INTEGER NOT NULL          -- UnixNano
);

CREATE TABLE IF NOT EXISTS snapshots (
    project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
    stack TEXT NOT NULL,              -- image, undo or redo
    position INTEGER NOT NULL,
    data BLOB NOT NULL,
    PRIMARY KEY (project, stack, position)
);
`

const (
	stackImage = "image"
	stackUndo  = "undo"
	stackRedo  = "redo"
)

// Store is a project database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create project directory: %w", err)
		}
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open project database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect project database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create project schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save writes p under p.Name, replacing any project with that name.
func (s *Store) Save(p Project) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return errors.New("project name is empty")
	}
	if p.Image == nil {
		return fmt.Errorf("project %q: %w", name, pixbuf.ErrInvalidSize)
	}
	if len(p.History.Undo) == 0 {
		return fmt.Errorf("project %q: %w", name, history.ErrEmptyRecord)
	}

	type row struct {
		stack string
		pos   int
		data  []byte
	}
	var rows []row
	add := func(stack string, bufs ...*pixbuf.Buffer) error {
		for i, b := range bufs {
			data, err := encodeSnapshot(b)
			if err != nil {
				return fmt.Errorf("project %q %s %d: %w", name, stack, i, err)
			}
			rows = append(rows, row{stack, i, data})
		}
		return nil
	}
	if err := add(stackImage, p.Image); err != nil {
		return err
	}
	if err := add(stackUndo, p.History.Undo...); err != nil {
		return err
	}
	if err := add(stackRedo, p.History.Redo...); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE project = ?`, name); err != nil {
		return fmt.Errorf("clear project %q: %w", name, err)
	}
	_, err = tx.Exec(`
		INSERT INTO projects (name, width, height, updated) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET width = excluded.width, height = excluded.height, updated = excluded.updated`,
		name, p.Image.Width(), p.Image.Height(), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("save project %q: %w", name, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO snapshots (project, stack, position, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshots: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(name, r.stack, r.pos, r.data); err != nil {
			return fmt.Errorf("save project %q %s %d: %w", name, r.stack, r.pos, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit project %q: %w", name, err)
	}
	return nil
}

// Load reads the project called name.
func (s *Store) Load(name string) (Project, error) {
	p := Project{Name: name}
	var updated int64
	err := s.db.QueryRow(`SELECT updated FROM projects WHERE name = ?`, name).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Project{}, fmt.Errorf("load project %q: %w", name, err)
	}
	p.Updated = time.Unix(0, updated)

	rows, err := s.db.Query(`SELECT stack, position, data FROM snapshots WHERE project = ? ORDER BY stack, position`, name)
	if err != nil {
		return Project{}, fmt.Errorf("load project %q: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			stack string
			pos   int
			data  []byte
		)
		if err := rows.Scan(&stack, &pos, &data); err != nil {
			return Project{}, fmt.Errorf("load project %q: %w", name, err)
		}
		b, err := decodeSnapshot(data)
		if err != nil {
			return Project{}, fmt.Errorf("load project %q %s %d: %w", name, stack, pos, err)
		}
		switch stack {
		case stackImage:
			p.Image = b
		case stackUndo:
			p.History.Undo = append(p.History.Undo, b)
		case stackRedo:
			p.History.Redo = append(p.History.Redo, b)
		}
	}
	if err := rows.Err(); err != nil {
		return Project{}, fmt.Errorf("load project %q: %w", name, err)
	}
	if len(p.History.Undo) == 0 {
		return Project{}, fmt.Errorf("load project %q: %w", name, history.ErrEmptyRecord)
	}
	return p, nil
}

// List returns every stored project ordered by name.
func (s *Store) List() ([]Info, error) {
	rows, err := s.db.Query(`
		SELECT p.name, p.width, p.height, p.updated,
		       COALESCE(SUM(s.stack = 'undo'), 0), COALESCE(SUM(s.stack = 'redo'), 0)
		FROM projects p LEFT JOIN snapshots s ON s.project = p.name
		GROUP BY p.name ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var out []Info
	for rows.Next() {
		var (
			info    Info
			updated int64
		)
		if err := rows.Scan(&info.Name, &info.Width, &info.Height, &updated, &info.Undo, &info.Redo); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		info.Updated = time.Unix(0, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the project called name.
func (s *Store) Delete(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM snapshots WHERE project = ?`, name); err != nil {
		return fmt.Errorf("delete project %q: %w", name, err)
	}
	res, err := tx.Exec(`DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete project %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return tx.Commit()
}
