package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	// Import the Postgres driver.
	_ "github.com/lib/pq"

	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/internal/version"
	"github.com/shopmind/shopmind/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a Postgres database using the DSN from the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := DB{db: db, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate applies the embedded schema when the recorded schema version is
// older than the running binary's. The schema itself is idempotent, so
// re-running it after a partial failure is safe.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migration_history (
			version TEXT NOT NULL PRIMARY KEY,
			created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`); err != nil {
		return errors.Wrap(err, "failed to create migration_history table")
	}

	current := version.GetSchemaVersion(version.Version)
	var latest sql.NullString
	if err := d.db.QueryRowContext(ctx,
		"SELECT version FROM migration_history ORDER BY version DESC LIMIT 1",
	).Scan(&latest); err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "failed to read migration history")
	}

	if latest.Valid && !version.IsVersionGreaterThan(current+".0", latest.String+".0") {
		return nil
	}

	slog.Info("applying schema migration", "from", latest.String, "to", current)
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	if _, err := d.db.ExecContext(ctx,
		"INSERT INTO migration_history (version) VALUES ($1) ON CONFLICT (version) DO NOTHING", current,
	); err != nil {
		return errors.Wrap(err, "failed to record migration")
	}

	return nil
}

// placeholder returns the n-th positional placeholder, e.g. $3.
func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// placeholders returns a comma-joined list of n positional placeholders.
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}

// marshalJSON serializes a metadata/arguments map for a JSONB column.
// nil maps are stored as NULL.
func marshalJSON(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return string(buf), nil
}

// unmarshalJSON restores a map column scanned into a sql.NullString.
func unmarshalJSON(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return m, nil
}
