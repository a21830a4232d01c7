// Package store handles SQLite persistence of results and learner progress.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keytutor/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for typing results.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Migration error takes precedence.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			lesson_id TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			duration INTEGER NOT NULL,
			elapsed INTEGER NOT NULL,
			text_length INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS result_samples (
			result_id TEXT NOT NULL,
			second INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			PRIMARY KEY (result_id, second)
		);`,
		`CREATE TABLE IF NOT EXISTS completed_lessons (
			lesson_id TEXT PRIMARY KEY,
			completed_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS certificates (
			id TEXT PRIMARY KEY,
			user_name TEXT NOT NULL,
			course_name TEXT NOT NULL,
			completion_date TEXT NOT NULL,
			average_wpm INTEGER NOT NULL,
			average_accuracy INTEGER NOT NULL,
			issued_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a finished session with its progress samples. A
// missing id or creation time is filled in and the stored id returned.
func (s *Store) InsertResult(ctx context.Context, r model.Result) (id string, err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Insert error takes precedence.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (id, kind, lesson_id, wpm, accuracy, mistakes, duration, elapsed, text_length, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.LessonID, r.WPM, r.Accuracy, r.Mistakes, r.Duration, r.Elapsed, r.TextLength,
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert result: %w", err)
	}

	if len(r.Samples) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO result_samples (result_id, second, accuracy) VALUES (?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("failed to prepare sample insert: %w", err)
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				_ = cerr
			}
		}()
		for _, sample := range r.Samples {
			if _, err = stmt.ExecContext(ctx, r.ID, sample.Time, sample.Accuracy); err != nil {
				return "", fmt.Errorf("failed to insert sample: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit result: %w", err)
	}
	return r.ID, nil
}

// ListResults returns results in chronological order. Samples are not loaded.
func (s *Store) ListResults(ctx context.Context, filter model.ResultFilter) ([]model.Result, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	inner := fmt.Sprintf(`SELECT id, kind, lesson_id, wpm, accuracy, mistakes, duration, elapsed, text_length, created_at
		FROM results
		WHERE %s
		ORDER BY created_at DESC`, strings.Join(clauses, " AND "))
	if filter.Last > 0 {
		inner += " LIMIT ?"
		args = append(args, filter.Last)
	}
	query := fmt.Sprintf(`SELECT * FROM (%s) ORDER BY created_at ASC`, inner)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		var r model.Result
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Kind, &r.LessonID, &r.WPM, &r.Accuracy, &r.Mistakes,
			&r.Duration, &r.Elapsed, &r.TextLength, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse result time: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}

// ListSamples returns the per-second samples of one result.
func (s *Store) ListSamples(ctx context.Context, resultID string) ([]model.ProgressSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT second, accuracy FROM result_samples WHERE result_id = ? ORDER BY second ASC`, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var samples []model.ProgressSample
	for rows.Next() {
		var sample model.ProgressSample
		if err := rows.Scan(&sample.Time, &sample.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return samples, nil
}

// MarkLessonCompleted records a finished lesson. Repeats keep the first date.
func (s *Store) MarkLessonCompleted(ctx context.Context, lessonID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO completed_lessons (lesson_id, completed_at) VALUES (?, ?)`,
		lessonID, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to mark lesson completed: %w", err)
	}
	return nil
}

// CompletedLessons returns the set of completed lesson ids.
func (s *Store) CompletedLessons(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT lesson_id FROM completed_lessons`)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	done := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lesson id: %w", err)
		}
		done[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read completed lessons: %w", err)
	}
	return done, nil
}

// ResetProgress deletes all results, samples and completed lessons.
// Issued certificates are kept.
func (s *Store) ResetProgress(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				_ = rerr
			}
		}
	}()
	for _, table := range []string{"result_samples", "results", "completed_lessons"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

// InsertCertificate stores an issued certificate, assigning an id when missing.
func (s *Store) InsertCertificate(ctx context.Context, c model.Certificate) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO certificates (id, user_name, course_name, completion_date, average_wpm, average_accuracy, issued_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserName, c.CourseName,
		c.CompletionDate.UTC().Format(timeLayout),
		c.AverageWPM, c.AverageAccuracy,
		c.IssuedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert certificate: %w", err)
	}
	return c.ID, nil
}

// ListCertificates returns issued certificates, newest first.
func (s *Store) ListCertificates(ctx context.Context) ([]model.Certificate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_name, course_name, completion_date, average_wpm, average_accuracy, issued_at
		 FROM certificates ORDER BY issued_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var certs []model.Certificate
	for rows.Next() {
		var c model.Certificate
		var completed, issued string
		if err := rows.Scan(&c.ID, &c.UserName, &c.CourseName, &completed, &c.AverageWPM, &c.AverageAccuracy, &issued); err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		if c.CompletionDate, err = time.Parse(time.RFC3339Nano, completed); err != nil {
			return nil, fmt.Errorf("failed to parse completion date: %w", err)
		}
		if c.IssuedAt, err = time.Parse(time.RFC3339Nano, issued); err != nil {
			return nil, fmt.Errorf("failed to parse issue date: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read certificates: %w", err)
	}
	return certs, nil
}

// Progress assembles the sync snapshot: completed lessons, every result
// with its samples and the time of the latest result.
func (s *Store) Progress(ctx context.Context) (model.Progress, error) {
	done, err := s.CompletedLessons(ctx)
	if err != nil {
		return model.Progress{}, err
	}
	results, err := s.ListResults(ctx, model.ResultFilter{})
	if err != nil {
		return model.Progress{}, err
	}
	for i := range results {
		if results[i].Samples, err = s.ListSamples(ctx, results[i].ID); err != nil {
			return model.Progress{}, err
		}
	}

	p := model.Progress{CompletedLessons: make([]string, 0, len(done)), Results: results}
	for id := range done {
		p.CompletedLessons = append(p.CompletedLessons, id)
	}
	sort.Strings(p.CompletedLessons)
	if n := len(results); n > 0 {
		p.LastActivity = results[n-1].CreatedAt
	}
	return p, nil
}
