// Package storage persists synthesized plans in SQLite.
//
// The store keeps a plans header table and an ordered tasks table linked by
// plan id. Saves are idempotent by exact goal text: a goal that already has
// a stored plan is left untouched, duplicates are never inserted.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

// ErrPlanNotFound is returned when no stored plan matches the lookup.
var ErrPlanNotFound = errors.New("plan not found")

const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	goal       TEXT NOT NULL UNIQUE,
	owner      TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	plan_id      TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	task_name    TEXT NOT NULL,
	description  TEXT NOT NULL,
	duration     TEXT NOT NULL,
	dependencies TEXT NOT NULL,
	phase        TEXT NOT NULL,
	priority     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_plan_position ON tasks(plan_id, position);
`

// PlanRecord is a stored plan plus its ownership metadata.
type PlanRecord struct {
	planner.Plan
	Owner string `json:"owner,omitempty"`
}

// Store is a SQLite-backed plan persister. Safe for concurrent use; writes
// are serialized by database/sql's pool and SQLite's busy timeout.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if necessary) the plan database at path and applies
// the schema. Parent directories are created with owner-only permissions.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return nil, errors.New("database path must not be empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := "file:" + url.PathEscape(path) +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc's driver is single-writer; one connection avoids SQLITE_BUSY
	// churn under concurrent saves.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("plan database ready", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SavePlan stores plan for owner unless a plan for the exact same goal text
// already exists, in which case nothing is written and no error is returned.
// The header and task rows are inserted in one transaction.
func (s *Store) SavePlan(ctx context.Context, plan *planner.Plan, owner string) error {
	if plan == nil {
		return errors.New("nil plan")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM plans WHERE goal = ?`, plan.Goal).Scan(&existing)
	switch {
	case err == nil:
		s.logger.Debug("plan already stored for goal, skipping save",
			zap.String("plan_id", existing),
			zap.String("goal", plan.Goal))
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check existing plan: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plans (id, goal, owner, source, created_at) VALUES (?, ?, ?, ?, ?)`,
		plan.ID, plan.Goal, owner, string(plan.Source), plan.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert plan header: %w", err)
	}

	for i, task := range plan.Tasks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tasks (plan_id, position, task_name, description, duration, dependencies, phase, priority)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			plan.ID, i, task.TaskName, task.Description, task.Duration, task.Dependencies, task.Phase, task.Priority)
		if err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	s.logger.Info("plan stored",
		zap.String("plan_id", plan.ID),
		zap.Int("tasks", len(plan.Tasks)))
	return nil
}

// GetPlan fetches a stored plan by id.
func (s *Store) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	return s.getPlan(ctx, `SELECT id, goal, owner, source, created_at FROM plans WHERE id = ?`, id)
}

// GetPlanByGoal fetches a stored plan by exact goal text.
func (s *Store) GetPlanByGoal(ctx context.Context, goal string) (*PlanRecord, error) {
	return s.getPlan(ctx, `SELECT id, goal, owner, source, created_at FROM plans WHERE goal = ?`, goal)
}

func (s *Store) getPlan(ctx context.Context, query, arg string) (*PlanRecord, error) {
	record, err := scanPlanHeader(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}

	tasks, err := s.loadTasks(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	record.Tasks = tasks
	return record, nil
}

// ListPlans returns stored plans newest-first. limit is clamped to 1..100;
// a negative offset is treated as zero.
func (s *Store) ListPlans(ctx context.Context, limit, offset int) ([]*PlanRecord, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, goal, owner, source, created_at FROM plans ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	records := make([]*PlanRecord, 0, limit)
	for rows.Next() {
		record, err := scanPlanHeader(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	for _, record := range records {
		tasks, err := s.loadTasks(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		record.Tasks = tasks
	}

	return records, nil
}

func (s *Store) loadTasks(ctx context.Context, planID string) ([]planner.TaskBreakdown, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_name, description, duration, dependencies, phase, priority
		 FROM tasks WHERE plan_id = ? ORDER BY position`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("load tasks for %s: %w", planID, err)
	}
	defer rows.Close()

	var tasks []planner.TaskBreakdown
	for rows.Next() {
		var t planner.TaskBreakdown
		if err := rows.Scan(&t.TaskName, &t.Description, &t.Duration, &t.Dependencies, &t.Phase, &t.Priority); err != nil {
			return nil, fmt.Errorf("scan task for %s: %w", planID, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tasks for %s: %w", planID, err)
	}
	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlanHeader(row rowScanner) (*PlanRecord, error) {
	var record PlanRecord
	var source, createdAt string
	err := row.Scan(&record.ID, &record.Goal, &record.Owner, &source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	record.Source = planner.Source(source)
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse plan timestamp: %w", err)
	}
	record.CreatedAt = ts

	return &record, nil
}
