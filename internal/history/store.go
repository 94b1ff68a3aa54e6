package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"whisper-batch/internal/domain"
)

// DefaultFileName is the database file created under the app directory.
const DefaultFileName = "history.db"

// Filter narrows List results. Zero values match everything.
type Filter struct {
	RunID  string
	Status domain.TaskStatus
	Since  time.Time
	Limit  int
}

// Store persists task outcomes in SQLite.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		path TEXT NOT NULL,
		model TEXT NOT NULL,
		timestamps INTEGER NOT NULL,
		status TEXT NOT NULL,
		error_kind TEXT,
		message TEXT,
		output_path TEXT,
		audio_seconds REAL NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_finished ON outcomes(finished_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one outcome.
func (s *Store) Record(ctx context.Context, outcome domain.TaskOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, task_id, path, model, timestamps, status, error_kind,
			message, output_path, audio_seconds, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID,
		outcome.TaskID,
		outcome.Path,
		string(outcome.Model),
		outcome.Timestamps,
		string(outcome.Status),
		outcome.ErrorKind,
		outcome.Message,
		outcome.OutputPath,
		outcome.AudioSeconds,
		outcome.StartedAt.UTC(),
		outcome.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outcome for %s: %w", outcome.Path, err)
	}
	return nil
}

// List returns outcomes newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]domain.TaskOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT run_id, task_id, path, model, timestamps, status, error_kind, message,
		output_path, audio_seconds, started_at, finished_at FROM outcomes WHERE 1=1`
	var args []any

	if filter.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if !filter.Since.IsZero() {
		query += " AND finished_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	query += " ORDER BY finished_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []domain.TaskOutcome
	for rows.Next() {
		var (
			outcome                       domain.TaskOutcome
			model, status                 string
			errorKind, message, outputDst sql.NullString
		)
		if err := rows.Scan(
			&outcome.RunID,
			&outcome.TaskID,
			&outcome.Path,
			&model,
			&outcome.Timestamps,
			&status,
			&errorKind,
			&message,
			&outputDst,
			&outcome.AudioSeconds,
			&outcome.StartedAt,
			&outcome.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Model = domain.ModelID(model)
		outcome.Status = domain.TaskStatus(status)
		outcome.ErrorKind = errorKind.String
		outcome.Message = message.String
		outcome.OutputPath = outputDst.String
		out = append(out, outcome)
	}
	return out, rows.Err()
}

// Prune deletes outcomes finished before the cutoff and returns the count.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, "DELETE FROM outcomes WHERE finished_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune outcomes: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
