package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Repository defines project persistence operations.
type Repository interface {
	GetByName(ctx context.Context, name string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Save(ctx context.Context, p *Project) error
	Rename(ctx context.Context, from, to string) error
	Delete(ctx context.Context, name string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a SQLite-backed project repository. The
// projects table must already exist.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// GetByName returns the project stored under name.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Project, error) {
	const query = `SELECT id, name, netlist, element_count, created_at, updated_at
		FROM projects WHERE name = ?`
	row := r.db.QueryRowContext(ctx, query, name)

	p, err := scanProject(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning project %s: %w", name, err)
	}
	return p, nil
}

// List returns all projects, most recently updated first, without their
// netlist text.
func (r *SQLiteRepository) List(ctx context.Context) ([]Project, error) {
	const query = `SELECT id, name, '', element_count, created_at, updated_at
		FROM projects ORDER BY updated_at DESC, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}
	return projects, nil
}

// Save inserts p, or replaces the netlist of the project with the same name.
// On return p carries the stored id and timestamps.
func (r *SQLiteRepository) Save(ctx context.Context, p *Project) error {
	name, err := ValidateName(p.Name)
	if err != nil {
		return err
	}
	p.Name = name
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now().UTC()

	const query = `INSERT INTO projects (id, name, netlist, element_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			netlist = excluded.netlist,
			element_count = excluded.element_count,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Netlist, p.ElementCount, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("saving project %s: %w", p.Name, err)
	}

	stored, err := r.GetByName(ctx, p.Name)
	if err != nil {
		return err
	}
	p.ID = stored.ID
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

// Rename moves the project named from to the name to.
func (r *SQLiteRepository) Rename(ctx context.Context, from, to string) error {
	to, err := ValidateName(to)
	if err != nil {
		return err
	}

	const query = `UPDATE projects SET name = ?, updated_at = ? WHERE name = ?`
	res, err := r.db.ExecContext(ctx, query, to, formatTime(r.now().UTC()), from)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", ErrProjectExists, to)
		}
		return fmt.Errorf("renaming project %s: %w", from, err)
	}
	return requireRow(res, from)
}

// Delete removes the project named name.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", name, err)
	}
	return requireRow(res, name)
}

func requireRow(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return nil
}

// scanProject reads one projects row through scan, which is either
// (*sql.Row).Scan or (*sql.Rows).Scan.
func scanProject(scan func(dest ...any) error) (*Project, error) {
	var p Project
	var createdAt, updatedAt string
	if err := scan(&p.ID, &p.Name, &p.Netlist, &p.ElementCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// parseTime returns the zero time for unparseable values.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
