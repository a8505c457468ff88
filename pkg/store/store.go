// Package store persists workflow run history in a local SQLite database.
// The registry holds the audit replica; this store answers "what ran here"
// without a network.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"ensemble/pkg/logx"
	"ensemble/pkg/orchestrator"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS workflow_runs (
	workflow_id     TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	status          TEXT NOT NULL,
	total_tasks     INTEGER NOT NULL,
	completed_tasks INTEGER NOT NULL,
	failed_tasks    INTEGER NOT NULL,
	skipped_tasks   INTEGER NOT NULL,
	duration_ms     INTEGER NOT NULL,
	recorded_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS task_runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	workflow_id      TEXT NOT NULL REFERENCES workflow_runs(workflow_id) ON DELETE CASCADE,
	seq              INTEGER NOT NULL,
	registry_task_id TEXT,
	agent_id         TEXT NOT NULL,
	agent_name       TEXT NOT NULL,
	task_type        TEXT NOT NULL,
	success          INTEGER NOT NULL,
	error_message    TEXT,
	duration_ms      INTEGER NOT NULL,
	tokens_used      INTEGER NOT NULL,
	cost_usd         REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_runs_workflow ON task_runs(workflow_id);
`

// RunSummary is one row of run history.
type RunSummary struct {
	WorkflowID     string    `json:"workflow_id"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	FailedTasks    int       `json:"failed_tasks"`
	SkippedTasks   int       `json:"skipped_tasks"`
	DurationMS     int64     `json:"duration_ms"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// TaskRecord is one persisted task outcome.
type TaskRecord struct {
	WorkflowID     string  `json:"workflow_id"`
	Seq            int     `json:"seq"`
	RegistryTaskID string  `json:"registry_task_id,omitempty"`
	AgentID        string  `json:"agent_id"`
	AgentName      string  `json:"agent_name"`
	TaskType       string  `json:"task_type"`
	Success        bool    `json:"success"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	DurationMS     int64   `json:"duration_ms"`
	TokensUsed     int     `json:"tokens_used"`
	CostUSD        float64 `json:"cost_usd"`
}

// Totals aggregates accounting across all recorded runs.
type Totals struct {
	Workflows  int     `json:"workflows"`
	Tasks      int     `json:"tasks"`
	TokensUsed int     `json:"tokens_used"`
	CostUSD    float64 `json:"cost_usd"`
}

// Store is a single-writer SQLite store.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the history database at path. The parent
// directory is created too; the default path lives under a dot-directory that
// does not exist on a fresh project.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		path,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logx.NewLogger("store")}, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	var version int
	err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("unsupported history schema version %d", version)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// RecordOutcome persists one workflow outcome with its task outcomes.
// Re-recording the same workflow id replaces the previous run.
func (s *Store) RecordOutcome(ctx context.Context, outcome *orchestrator.WorkflowOutcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_runs WHERE workflow_id = ?`, outcome.WorkflowID); err != nil {
		return fmt.Errorf("failed to clear previous tasks: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO workflow_runs
			(workflow_id, name, status, total_tasks, completed_tasks, failed_tasks, skipped_tasks, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.WorkflowID, outcome.WorkflowName, outcome.Status,
		outcome.TotalTasks, outcome.CompletedTasks, outcome.FailedTasks, outcome.SkippedTasks,
		outcome.DurationMS, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert workflow run: %w", err)
	}

	for i, task := range outcome.Tasks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO task_runs
				(workflow_id, seq, registry_task_id, agent_id, agent_name, task_type, success, error_message, duration_ms, tokens_used, cost_usd)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			outcome.WorkflowID, i, task.TaskID, task.AgentID, task.AgentName, task.TaskType,
			task.Success, task.Error, task.DurationMS, task.TokensUsed, task.CostUSD,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Debug("recorded workflow %s (%d tasks)", outcome.WorkflowID, len(outcome.Tasks))
	return nil
}

// History returns the most recent runs, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT workflow_id, name, status, total_tasks, completed_tasks, failed_tasks, skipped_tasks, duration_ms, recorded_at
		FROM workflow_runs
		ORDER BY recorded_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(
			&run.WorkflowID, &run.Name, &run.Status,
			&run.TotalTasks, &run.CompletedTasks, &run.FailedTasks, &run.SkippedTasks,
			&run.DurationMS, &run.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return runs, nil
}

// Tasks returns the recorded task outcomes of one workflow in dispatch order.
func (s *Store) Tasks(ctx context.Context, workflowID string) ([]TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT workflow_id, seq, registry_task_id, agent_id, agent_name, task_type, success, error_message, duration_ms, tokens_used, cost_usd
		FROM task_runs
		WHERE workflow_id = ?
		ORDER BY seq`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRecord
	for rows.Next() {
		var task TaskRecord
		var registryID, errMsg sql.NullString
		if err := rows.Scan(
			&task.WorkflowID, &task.Seq, &registryID, &task.AgentID, &task.AgentName, &task.TaskType,
			&task.Success, &errMsg, &task.DurationMS, &task.TokensUsed, &task.CostUSD,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task.RegistryTaskID = registryID.String
		task.ErrorMessage = errMsg.String
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return tasks, nil
}

// AggregateTotals sums accounting across all recorded runs.
func (s *Store) AggregateTotals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM workflow_runs),
			COUNT(*),
			COALESCE(SUM(tokens_used), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM task_runs`).Scan(&t.Workflows, &t.Tasks, &t.TokensUsed, &t.CostUSD)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to aggregate totals: %w", err)
	}
	return t, nil
}
