// Package phmigrate applies versioned, one-directional SQL migrations and
// records them in a schema_migrations tracking table.
//
// Migrations are embedded in the binary (see embedded.go) and keyed by a
// timestamp-string version such as "20250101_120000". The runner works
// against any database/sql connection; placeholder style is configurable so
// tests can run against SQLite while production runs against Postgres.
package phmigrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// versionTableDDL is kept portable between Postgres and SQLite.
const versionTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version VARCHAR(50) PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    checksum VARCHAR(64),
    execution_time_ms INTEGER,
    description TEXT
)`

// Applied describes one migration applied during a run.
type Applied struct {
	Version         string `json:"version"`
	Description     string `json:"description"`
	ExecutionTimeMS int64  `json:"execution_time_ms"`
}

// Result summarizes a completed Up run.
type Result struct {
	Applied     []Applied `json:"applied_migrations"`
	TotalTimeMS int64     `json:"total_execution_time_ms"`
}

// Status reports the migration state of a database.
type Status struct {
	Total      int      `json:"total_migrations"`
	Applied    []string `json:"applied_migrations"`
	Pending    []string `json:"pending_migrations"`
	Mismatched []string `json:"checksum_mismatches,omitempty"`
}

// Placeholder renders the parameter placeholder for the n-th argument
// (1-based). The default renders Postgres-style "$n".
type Placeholder func(n int) string

// DollarPlaceholder is the Postgres placeholder style.
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// QuestionPlaceholder is the SQLite/MySQL placeholder style.
func QuestionPlaceholder(int) string { return "?" }

// Option configures a Runner.
type Option func(*Runner)

// WithPlaceholder sets the parameter placeholder style.
func WithPlaceholder(p Placeholder) Option {
	return func(r *Runner) { r.placeholder = p }
}

// WithMigrations replaces the embedded migration set. Used in tests.
func WithMigrations(ms []Migration) Option {
	return func(r *Runner) { r.migrations = ms }
}

// WithLogf sets a logging callback for progress output.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(r *Runner) { r.logf = logf }
}

// Runner applies migrations against a single database connection.
type Runner struct {
	db          *sql.DB
	migrations  []Migration
	placeholder Placeholder
	logf        func(format string, args ...any)
}

// NewRunner creates a Runner over the embedded migration set.
func NewRunner(db *sql.DB, opts ...Option) *Runner {
	r := &Runner{
		db:          db,
		migrations:  Embedded(),
		placeholder: DollarPlaceholder,
		logf:        func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureVersionTable creates the schema_migrations table if it doesn't exist.
func (r *Runner) EnsureVersionTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, versionTableDDL); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}
	return nil
}

// AppliedVersions returns the applied migration versions in version order.
func (r *Runner) AppliedVersions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query applied migrations")
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "failed to scan migration version")
		}
		versions = append(versions, v)
	}
	return versions, errors.Wrap(rows.Err(), "failed to read applied migrations")
}

// Pending returns the embedded migrations that have not been applied yet,
// in version order.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := r.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	appliedSet := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		appliedSet[v] = struct{}{}
	}

	var pending []Migration
	for _, m := range r.migrations {
		if _, ok := appliedSet[m.Version]; !ok {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Apply runs a single migration in a transaction and records it. Re-applying
// an already recorded version updates its row instead of failing.
func (r *Runner) Apply(ctx context.Context, m Migration) (int64, error) {
	r.logf("applying migration %s: %s", m.Version, m.Description)
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return 0, errors.Wrapf(err, "migration %s failed", m.Version)
	}

	elapsed := time.Since(start).Milliseconds()

	record := fmt.Sprintf(`
		INSERT INTO schema_migrations (version, checksum, execution_time_ms, description)
		VALUES (%s, %s, %s, %s)
		ON CONFLICT (version) DO UPDATE SET
			applied_at = CURRENT_TIMESTAMP,
			checksum = %s,
			execution_time_ms = %s`,
		r.placeholder(1), r.placeholder(2), r.placeholder(3), r.placeholder(4),
		r.placeholder(5), r.placeholder(6))

	checksum := m.Checksum()
	_, err = tx.ExecContext(ctx, record,
		m.Version, checksum, elapsed, m.Description, checksum, elapsed)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to record migration %s", m.Version)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrapf(err, "failed to commit migration %s", m.Version)
	}

	r.logf("migration %s applied in %dms", m.Version, elapsed)
	return elapsed, nil
}

// Up ensures the version table and applies all pending migrations in order.
// The first failure stops the run; earlier migrations stay committed.
func (r *Runner) Up(ctx context.Context) (*Result, error) {
	if err := r.EnsureVersionTable(ctx); err != nil {
		return nil, err
	}

	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		r.logf("no pending migrations")
		return &Result{}, nil
	}

	res := &Result{}
	for _, m := range pending {
		elapsed, err := r.Apply(ctx, m)
		if err != nil {
			return nil, err
		}
		res.Applied = append(res.Applied, Applied{
			Version:         m.Version,
			Description:     m.Description,
			ExecutionTimeMS: elapsed,
		})
		res.TotalTimeMS += elapsed
	}

	r.logf("applied %d migration(s) in %dms", len(res.Applied), res.TotalTimeMS)
	return res, nil
}

// Report ensures the version table and returns the migration status,
// including checksum drift between recorded and embedded migrations.
func (r *Runner) Report(ctx context.Context) (*Status, error) {
	if err := r.EnsureVersionTable(ctx); err != nil {
		return nil, err
	}

	applied, err := r.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Total:   len(r.migrations),
		Applied: applied,
	}
	for _, m := range pending {
		status.Pending = append(status.Pending, m.Version)
	}

	mismatched, err := r.checksumMismatches(ctx)
	if err != nil {
		return nil, err
	}
	status.Mismatched = mismatched

	return status, nil
}

func (r *Runner) checksumMismatches(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT version, checksum FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recorded checksums")
	}
	defer rows.Close()

	byVersion := make(map[string]string, len(r.migrations))
	for _, m := range r.migrations {
		byVersion[m.Version] = m.Checksum()
	}

	var mismatched []string
	for rows.Next() {
		var version string
		var checksum sql.NullString
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, errors.Wrap(err, "failed to scan recorded checksum")
		}
		want, known := byVersion[version]
		if known && checksum.Valid && checksum.String != want {
			mismatched = append(mismatched, version)
		}
	}
	return mismatched, errors.Wrap(rows.Err(), "failed to read recorded checksums")
}
