package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// MigrationsFS holds the migration scripts. The migrations package sets it
// from its embedded files on import; tests substitute an fstest.MapFS.
var MigrationsFS fs.FS

// MigrationsDir is the directory inside MigrationsFS holding the scripts.
var MigrationsDir = "."

// Migration errors.
var (
	// ErrMigrationChanged means an applied script no longer matches the
	// checksum recorded when it ran.
	ErrMigrationChanged = errors.New("applied migration has changed")

	// ErrMigrationUnknown means the database records a migration this
	// binary does not ship, usually because a newer release ran against it.
	ErrMigrationUnknown = errors.New("database has an unknown migration")

	// ErrNoDownMigration means a rollback reached a migration without a
	// down script.
	ErrNoDownMigration = errors.New("migration has no down script")

	// ErrMigrationFile means a script is misnamed or duplicated.
	ErrMigrationFile = errors.New("invalid migration file")
)

// Migration is one versioned schema change, read from a pair of files
// named YYYYMMDD_HHMMSS_name.up.sql and YYYYMMDD_HHMMSS_name.down.sql.
type Migration struct {
	Version  string
	Name     string
	Up       string
	Down     string
	Checksum string
}

// MigrationStatus reports one known or recorded migration.
type MigrationStatus struct {
	Version   string    `json:"version"`
	Name      string    `json:"name"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitzero"`
}

type appliedMigration struct {
	name      string
	checksum  string
	appliedAt time.Time
}

// Migrate applies every pending migration in version order, each in its own
// transaction. A failure leaves earlier migrations committed, so re-running
// after a fix resumes where it stopped. Migrate refuses to run when an
// applied script was edited or the database is ahead of the binary.
func (db *DB) Migrate(ctx context.Context) error {
	all, applied, err := db.migrationState(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]Migration, len(all))
	for _, m := range all {
		known[m.Version] = m
	}
	for version, rec := range applied {
		m, ok := known[version]
		if !ok {
			return fmt.Errorf("%w: %s (%s)", ErrMigrationUnknown, version, rec.name)
		}
		if rec.checksum != m.Checksum {
			return fmt.Errorf("%w: %s (%s)", ErrMigrationChanged, version, m.Name)
		}
	}

	for _, m := range all {
		if _, done := applied[m.Version]; done {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// MigrateDown rolls back up to steps of the most recently applied
// migrations, newest first, and returns how many were rolled back.
func (db *DB) MigrateDown(ctx context.Context, steps int) (int, error) {
	all, applied, err := db.migrationState(ctx)
	if err != nil {
		return 0, err
	}

	versions := make([]string, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	slices.Reverse(versions)

	done := 0
	for _, version := range versions {
		if done == steps {
			break
		}
		i := slices.IndexFunc(all, func(m Migration) bool { return m.Version == version })
		if i < 0 {
			return done, fmt.Errorf("%w: %s", ErrMigrationUnknown, version)
		}
		m := all[i]
		if strings.TrimSpace(m.Down) == "" {
			return done, fmt.Errorf("%w: %s (%s)", ErrNoDownMigration, m.Version, m.Name)
		}
		if err := db.revertMigration(ctx, m); err != nil {
			return done, fmt.Errorf("reverting migration %s (%s): %w", m.Version, m.Name, err)
		}
		done++
	}
	return done, nil
}

// MigrationStatus lists every migration the binary ships or the database
// records, in version order.
func (db *DB) MigrationStatus(ctx context.Context) ([]MigrationStatus, error) {
	all, applied, err := db.migrationState(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MigrationStatus, 0, len(all))
	for _, m := range all {
		st := MigrationStatus{Version: m.Version, Name: m.Name}
		if rec, ok := applied[m.Version]; ok {
			st.Applied = true
			st.AppliedAt = rec.appliedAt
			delete(applied, m.Version)
		}
		out = append(out, st)
	}
	for version, rec := range applied {
		out = append(out, MigrationStatus{
			Version:   version,
			Name:      rec.name,
			Applied:   true,
			AppliedAt: rec.appliedAt,
		})
	}
	slices.SortFunc(out, func(a, b MigrationStatus) int { return strings.Compare(a.Version, b.Version) })
	return out, nil
}

func (db *DB) migrationState(ctx context.Context) ([]Migration, map[string]appliedMigration, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		checksum   TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return nil, nil, fmt.Errorf("creating migrations table: %w", err)
	}

	all, err := LoadMigrations(MigrationsFS, MigrationsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading migrations: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version, name, checksum, applied_at FROM schema_migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]appliedMigration)
	for rows.Next() {
		var version, appliedAt string
		var rec appliedMigration
		if err := rows.Scan(&version, &rec.name, &rec.checksum, &appliedAt); err != nil {
			return nil, nil, fmt.Errorf("scanning migration row: %w", err)
		}
		if rec.appliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, nil, fmt.Errorf("parsing applied_at of %s: %w", version, err)
		}
		applied[version] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating migrations: %w", err)
	}
	return all, applied, nil
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("executing up script: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES (?, ?, ?, ?)",
			m.Version, m.Name, m.Checksum, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

func (db *DB) revertMigration(ctx context.Context, m Migration) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.Down); err != nil {
			return fmt.Errorf("executing down script: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version); err != nil {
			return fmt.Errorf("removing migration record: %w", err)
		}
		return nil
	})
}

// LoadMigrations reads the migration scripts in dir, sorted by version.
// Files not ending in .sql are ignored. A nil fsys has no migrations.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	if fsys == nil {
		return nil, nil
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	byVersion := make(map[string]*Migration)
	downs := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		version, name, up, err := ParseMigrationFilename(e.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}

		if !up {
			if _, dup := downs[version]; dup {
				return nil, fmt.Errorf("%w: two down scripts for %s", ErrMigrationFile, version)
			}
			downs[version] = string(body)
			continue
		}
		if _, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("%w: two up scripts for %s", ErrMigrationFile, version)
		}
		sum := sha256.Sum256(body)
		byVersion[version] = &Migration{
			Version:  version,
			Name:     name,
			Up:       string(body),
			Checksum: hex.EncodeToString(sum[:]),
		}
	}

	for version, down := range downs {
		m, ok := byVersion[version]
		if !ok {
			return nil, fmt.Errorf("%w: down script for %s has no up script", ErrMigrationFile, version)
		}
		m.Down = down
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return strings.Compare(a.Version, b.Version) })
	return out, nil
}

// ParseMigrationFilename splits "20261018_120000_projects.up.sql" into its
// version "20261018_120000", name "projects" and direction.
func ParseMigrationFilename(filename string) (version, name string, up bool, err error) {
	base, ok := strings.CutSuffix(filename, ".sql")
	if !ok {
		return "", "", false, fmt.Errorf("%w: %s is not a .sql file", ErrMigrationFile, filename)
	}
	switch {
	case strings.HasSuffix(base, ".up"):
		base, up = strings.TrimSuffix(base, ".up"), true
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", false, fmt.Errorf("%w: %s has no .up or .down suffix", ErrMigrationFile, filename)
	}

	parts := strings.SplitN(base, "_", 3)
	if len(parts) != 3 || !allDigits(parts[0], 8) || !allDigits(parts[1], 6) || parts[2] == "" {
		return "", "", false, fmt.Errorf("%w: %s is not named YYYYMMDD_HHMMSS_name", ErrMigrationFile, filename)
	}
	return parts[0] + "_" + parts[1], parts[2], up, nil
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
