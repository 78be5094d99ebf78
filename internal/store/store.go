// Package store handles SQLite persistence of completed quiz sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tfquiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE sessions (
		id INTEGER PRIMARY KEY,
		uuid TEXT NOT NULL UNIQUE,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		type TEXT NOT NULL,
		max_count INTEGER NOT NULL,
		average REAL NOT NULL,
		label TEXT NOT NULL
	);
	CREATE TABLE session_answers (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		score REAL NOT NULL,
		PRIMARY KEY (session_id, position)
	);`,
	`CREATE INDEX idx_sessions_ended_at ON sessions(ended_at);`,
}

// timeLayout is fixed width so stored UTC timestamps sort and compare as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// Store wraps SQLite access for session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and brings its schema up to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if err := migrate(context.Background(), db); err != nil {
		// Best-effort close on migration failure.
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		err := withTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		// Best-effort rollback.
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// InsertSession stores a completed session and its answers.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	if len(rec.Answers) == 0 {
		return 0, fmt.Errorf("session %s has no answers", rec.UUID)
	}
	var id int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (uuid, started_at, ended_at, type, max_count, average, label)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.UUID, formatTime(rec.StartedAt), formatTime(rec.EndedAt),
			string(rec.Type), rec.MaxCount, rec.Average, rec.Label)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		for i, a := range rec.Answers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_answers (session_id, position, question, answer, score)
				 VALUES (?, ?, ?, ?, ?)`,
				id, i+1, a.Question, a.Answer, a.Score); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert session %s: %w", rec.UUID, err)
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by history config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionAggregate, error) {
	var where []string
	var args []any
	if cfg.Type != "" {
		where = append(where, "s.type = ?")
		args = append(args, cfg.Type)
	}
	if cfg.Since != nil {
		where = append(where, "s.ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := `SELECT s.id, s.uuid, s.ended_at, s.type, s.average, s.label, COUNT(a.position)
		FROM sessions s
		LEFT JOIN session_answers a ON a.session_id = s.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY s.id ORDER BY s.ended_at ASC, s.id ASC"

	return queryRows(ctx, s.db, query, args, func(sc scanner) (model.SessionAggregate, error) {
		var agg model.SessionAggregate
		var ended string
		if err := sc.Scan(&agg.SessionID, &agg.UUID, &ended, &agg.Type, &agg.Average, &agg.Label, &agg.Questions); err != nil {
			return agg, err
		}
		var err error
		agg.EndedAt, err = parseTime(ended)
		return agg, err
	})
}

// ListAnswers returns the stored answers of the given sessions in session and question order.
func (s *Store) ListAnswers(ctx context.Context, sessionIDs []int64) ([]model.AnswerRow, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}
	query := `SELECT a.session_id, s.ended_at, a.position, a.question, a.answer, a.score
		FROM session_answers a
		JOIN sessions s ON s.id = a.session_id
		WHERE a.session_id IN (?` + strings.Repeat(",?", len(sessionIDs)-1) + `)
		ORDER BY s.ended_at ASC, a.session_id ASC, a.position ASC`

	return queryRows(ctx, s.db, query, args, func(sc scanner) (model.AnswerRow, error) {
		var row model.AnswerRow
		var ended string
		if err := sc.Scan(&row.SessionID, &ended, &row.Position, &row.Question, &row.Answer, &row.Score); err != nil {
			return row, err
		}
		var err error
		row.EndedAt, err = parseTime(ended)
		return row, err
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func queryRows[T any](ctx context.Context, db *sql.DB, query string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		// Best-effort rows close.
		_ = rows.Close()
	}()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return out, nil
}
