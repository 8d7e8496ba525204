package backfill

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Journal is an append-only SQLite log of backfill outcomes. It exists
// for observability: tasks themselves are never persisted and failed
// replays are never retried from here.
type Journal struct {
	db *sql.DB
}

// Outcome is one journaled replay attempt.
type Outcome struct {
	ID        int64
	Service   string
	Artist    string
	TrackName string
	Album     string
	PlayedAt  int64
	Succeeded bool
	Error     string
	LoggedAt  time.Time
}

// OpenJournal opens (or creates) a journal at the given path. Use
// ":memory:" for tests.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps in-memory databases consistent and is plenty
	// for a single-worker queue
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS backfill_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			service TEXT NOT NULL,
			artist TEXT NOT NULL,
			track_name TEXT NOT NULL,
			album TEXT,
			played_at INTEGER NOT NULL,
			succeeded BOOLEAN NOT NULL,
			error TEXT,
			logged_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_backfill_logged_at ON backfill_log(logged_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends one replay outcome.
func (j *Journal) Record(ctx context.Context, task Task, outcome error) error {
	var playedAt int64
	if task.Track.PlayedAt != nil {
		playedAt = *task.Track.PlayedAt
	}

	errMsg := ""
	if outcome != nil {
		errMsg = outcome.Error()
	}

	query := `
		INSERT INTO backfill_log (service, artist, track_name, album, played_at, succeeded, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.ExecContext(ctx, query,
		task.Target,
		task.Track.Artist,
		task.Track.Name,
		task.Track.Album,
		playedAt,
		outcome == nil,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}

	return nil
}

// Counts returns the all-time succeeded/failed tallies.
func (j *Journal) Counts(ctx context.Context) (succeeded, failed int, err error) {
	query := `
		SELECT
			COUNT(CASE WHEN succeeded THEN 1 END),
			COUNT(CASE WHEN NOT succeeded THEN 1 END)
		FROM backfill_log
	`

	if err := j.db.QueryRowContext(ctx, query).Scan(&succeeded, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to count outcomes: %w", err)
	}

	return succeeded, failed, nil
}

// Recent returns the most recent outcomes, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Outcome, error) {
	query := `
		SELECT id, service, artist, track_name, album, played_at, succeeded, COALESCE(error, ''), logged_at
		FROM backfill_log
		ORDER BY logged_at DESC, id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := j.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		var loggedAt int64

		err := rows.Scan(
			&o.ID,
			&o.Service,
			&o.Artist,
			&o.TrackName,
			&o.Album,
			&o.PlayedAt,
			&o.Succeeded,
			&o.Error,
			&loggedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}

		o.LoggedAt = time.Unix(loggedAt, 0)
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcomes: %w", err)
	}

	return outcomes, nil
}

// Cleanup removes journal entries older than maxAge to prevent
// unbounded growth.
func (j *Journal) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := j.db.ExecContext(ctx, "DELETE FROM backfill_log WHERE logged_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup journal: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
