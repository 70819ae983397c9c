package state

import (
	"context"
	"fmt"
	"time"
)

// Release is one journal row: an image that was built, pushed and
// (possibly) described during a single run.
type Release struct {
	ID         int64
	RunID      string
	Registry   string
	ImageName  string
	Version    string
	Outcome    string // "released" or "degraded"
	Descriptor string // descriptor path, empty when the write failed
	CreatedAt  time.Time
}

const (
	OutcomeReleased = "released"
	OutcomeDegraded = "degraded"
)

// Journal records completed releases so `shipit history` can answer
// "what did we last push and when".
type Journal struct {
	db *DB
}

// NewJournal creates the journal and ensures the table exists.
func NewJournal(ctx context.Context, database *DB) (*Journal, error) {
	if database == nil {
		return nil, nil
	}
	j := &Journal{db: database}
	if err := j.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

// Close releases the underlying database handle. Safe on nil.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}

var defaultJournal *Journal

func DefaultJournal(ctx context.Context) (*Journal, error) {
	if defaultJournal == nil {
		db, err := OpenDefault(ctx)
		if err != nil {
			return nil, err
		}
		defaultJournal, err = NewJournal(ctx, db)
		if err != nil {
			return nil, err
		}
	}

	return defaultJournal, nil
}

func (j *Journal) ensureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS releases (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	registry   TEXT NOT NULL,
	image_name TEXT NOT NULL,
	version    TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	descriptor TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
`
	_, err := j.db.Raw().ExecContext(ctx, createTable)
	if err != nil {
		return fmt.Errorf("journal: ensure schema: %w", err)
	}
	return nil
}

// Append records a completed release.
func (j *Journal) Append(ctx context.Context, r Release) error {
	const stmt = `
INSERT INTO releases (run_id, registry, image_name, version, outcome, descriptor, created_at)
VALUES (?, ?, ?, ?, ?, ?, strftime('%s','now'));
`
	if _, err := j.db.Raw().ExecContext(ctx, stmt,
		r.RunID, r.Registry, r.ImageName, r.Version, r.Outcome, r.Descriptor); err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// Recent returns the newest releases first, at most limit rows.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Release, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
SELECT id, run_id, registry, image_name, version, outcome, descriptor, created_at
FROM releases
ORDER BY id DESC
LIMIT ?;
`
	rows, err := j.db.Raw().QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		var r Release
		var createdAtUnix int64
		if err := rows.Scan(&r.ID, &r.RunID, &r.Registry, &r.ImageName, &r.Version,
			&r.Outcome, &r.Descriptor, &createdAtUnix); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		r.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		releases = append(releases, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: rows: %w", err)
	}
	return releases, nil
}
