// Package store keeps a local history of AR resolutions: which mode a
// viewer element resolved to for a device profile, and the launch URL
// it produced.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

// Resolution is one recorded outcome. Page and ElementID are empty for
// direct CLI resolutions that never touched a page.
type Resolution struct {
	ID         int64
	OccurredAt time.Time
	Page       string
	ElementID  string
	Profile    string
	Mode       string
	LaunchURL  string
	Notes      string
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS resolutions (
  id          INTEGER PRIMARY KEY,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  page        TEXT,
  element_id  TEXT,
  profile     TEXT NOT NULL,
  mode        TEXT NOT NULL,
  launch_url  TEXT,
  notes       TEXT
);
CREATE INDEX IF NOT EXISTS idx_resolutions_time ON resolutions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_resolutions_page ON resolutions(page, occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// InsertResolutions records a batch in one transaction.
func (d *DB) InsertResolutions(ctx context.Context, resolutions []Resolution) error {
	if len(resolutions) == 0 {
		return nil
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, r := range resolutions {
		occurredAt := r.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = time.Now()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO resolutions(occurred_at, page, element_id, profile, mode, launch_url, notes) VALUES(?,?,?,?,?,?,?)`,
			occurredAt.UTC().Format("2006-01-02 15:04:05"),
			nullIfEmpty(r.Page), nullIfEmpty(r.ElementID), r.Profile, r.Mode,
			nullIfEmpty(r.LaunchURL), nullIfEmpty(r.Notes))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListOptions controls selection when listing resolutions.
type ListOptions struct {
	Limit   int
	Page    string
	Profile string
	Mode    string
}

// ListRecent returns the most recent resolutions matching the filters,
// newest first.
func (d *DB) ListRecent(ctx context.Context, opts ListOptions) ([]Resolution, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	if opts.Page != "" {
		where += " AND page LIKE ?"
		args = append(args, fmt.Sprintf("%%%s%%", opts.Page))
	}
	if opts.Profile != "" {
		where += " AND profile = ?"
		args = append(args, opts.Profile)
	}
	if opts.Mode != "" {
		where += " AND mode = ?"
		args = append(args, opts.Mode)
	}
	args = append(args, opts.Limit)

	q := "SELECT id, occurred_at, page, element_id, profile, mode, launch_url, notes FROM resolutions " + where + " ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resolutions := []Resolution{}
	for rows.Next() {
		var r Resolution
		var occurredAtStr string
		var page, elementID, launchURL, notes sql.NullString
		if err := rows.Scan(&r.ID, &occurredAtStr, &page, &elementID, &r.Profile, &r.Mode, &launchURL, &notes); err != nil {
			return nil, err
		}
		// Parse SQLite CURRENT_TIMESTAMP format
		// Try "2006-01-02 15:04:05" then RFC3339
		if t, perr := time.Parse("2006-01-02 15:04:05", occurredAtStr); perr == nil {
			r.OccurredAt = t
		} else if t2, perr2 := time.Parse(time.RFC3339, occurredAtStr); perr2 == nil {
			r.OccurredAt = t2
		} else {
			r.OccurredAt = time.Time{}
		}
		r.Page = page.String
		r.ElementID = elementID.String
		r.LaunchURL = launchURL.String
		r.Notes = notes.String
		resolutions = append(resolutions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resolutions, nil
}

type ModeStats struct {
	Mode            string
	ResolutionCount int
	PageCount       int
}

// Stats returns per-mode resolution counts, alphabetical by mode.
func (d *DB) Stats(ctx context.Context) ([]ModeStats, error) {
	query := `
		SELECT
			mode,
			COUNT(*),
			COUNT(DISTINCT page)
		FROM
			resolutions
		GROUP BY
			mode
		ORDER BY
			mode;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ModeStats
	for rows.Next() {
		var s ModeStats
		if err := rows.Scan(&s.Mode, &s.ResolutionCount, &s.PageCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
