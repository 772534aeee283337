// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package history archives terminal tasks in SQLite so past runs can be
// inspected and pruned independently of the in-process queue.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidekit/aide/pkg/core"
)

// Entry is one archived terminal task.
type Entry struct {
	TaskID     string
	TaskType   string
	Status     string
	Priority   string
	Attempts   int
	Intent     string
	Error      string
	Data       map[string]any
	Duration   time.Duration
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	TaskType string
	Status   string
	Limit    int
}

// Store persists task history in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a history database at path and ensures schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

// NewStore wraps an existing database handle and ensures schema.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureHistorySchema(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Record archives one terminal task with its result. Satisfies the
// orchestrator's HistoryRecorder.
func (s *Store) Record(ctx context.Context, task *core.Task, result *core.Result) error {
	var dataJSON string
	if result != nil && len(result.Data) > 0 {
		raw, err := json.Marshal(result.Data)
		if err != nil {
			return err
		}
		dataJSON = string(raw)
	}
	var errText string
	if result != nil && result.Err != nil {
		errText = result.Err.Error()
	}
	var intent string
	if task.Intent != nil {
		intent = task.Intent.Label
	}
	var durationMs int64
	if result != nil {
		durationMs = result.Duration.Milliseconds()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_history (
			task_id, task_type, status, priority, attempts, intent, error_text, data_json, duration_ms, created_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.Type,
		string(task.Status),
		task.Priority.String(),
		task.Attempts,
		intent,
		errText,
		dataJSON,
		durationMs,
		normalizeTime(task.CreatedAt),
		normalizeTime(task.FinishedAt),
	)
	return err
}

// List returns archived entries matching the filter, oldest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `
		SELECT task_id, task_type, status, priority, attempts, intent, error_text, data_json, duration_ms, created_at, finished_at
		FROM task_history
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.TaskType != "" {
		addFilter("task_type = ?", filter.TaskType)
	}
	if filter.Status != "" {
		addFilter("status = ?", filter.Status)
	}
	query += where + " ORDER BY created_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			dataJSON   string
			durationMs int64
			created    sql.NullTime
			finished   sql.NullTime
		)
		if err := rows.Scan(
			&entry.TaskID,
			&entry.TaskType,
			&entry.Status,
			&entry.Priority,
			&entry.Attempts,
			&entry.Intent,
			&entry.Error,
			&dataJSON,
			&durationMs,
			&created,
			&finished,
		); err != nil {
			return nil, err
		}
		if dataJSON != "" {
			var data map[string]any
			if err := json.Unmarshal([]byte(dataJSON), &data); err == nil {
				entry.Data = data
			}
		}
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		if created.Valid {
			entry.CreatedAt = created.Time
		}
		if finished.Valid {
			entry.FinishedAt = finished.Time
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Prune deletes entries that finished before now minus retention and
// returns the number removed.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM task_history WHERE finished_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func ensureHistorySchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS task_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			task_type TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			intent TEXT,
			error_text TEXT,
			data_json TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP,
			finished_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_task_history_type ON task_history(task_type);
		CREATE INDEX IF NOT EXISTS idx_task_history_status ON task_history(status);
		CREATE INDEX IF NOT EXISTS idx_task_history_finished ON task_history(finished_at);
	`)
	return err
}

func normalizeTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
