// internal/pipeline/repository.go
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/retailpulse/forecast-engine/internal/repository/postgres"
)

const runSchema = `
CREATE TABLE IF NOT EXISTS training_runs (
	id             TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	models_trained INT NOT NULL DEFAULT 0,
	avg_accuracy   DOUBLE PRECISION NOT NULL DEFAULT 0,
	started_at     TIMESTAMPTZ NOT NULL,
	completed_at   TIMESTAMPTZ,
	error_message  TEXT NOT NULL DEFAULT ''
);
`

// RunStore persists training run state so operators can inspect past and
// in-flight retraining passes.
type RunStore interface {
	CreateRun(ctx context.Context, run *TrainingRun) error
	UpdateRun(ctx context.Context, run *TrainingRun) error
	GetRun(ctx context.Context, id string) (*TrainingRun, error)
	ListRuns(ctx context.Context, limit int) ([]TrainingRun, error)
}

// PostgresRunStore is the sqlx-backed RunStore.
type PostgresRunStore struct {
	db *postgres.DB
}

func NewPostgresRunStore(db *postgres.DB) *PostgresRunStore {
	return &PostgresRunStore{db: db}
}

// EnsureSchema creates the training_runs table if needed.
func (s *PostgresRunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, runSchema); err != nil {
		return fmt.Errorf("ensure run schema: %w", err)
	}
	return nil
}

func (s *PostgresRunStore) CreateRun(ctx context.Context, run *TrainingRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_runs (id, status, models_trained, avg_accuracy, started_at, completed_at, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Status, run.ModelsTrained, run.AvgAccuracy, run.StartedAt, run.CompletedAt, run.ErrorMessage)
	if err != nil {
		return fmt.Errorf("create training run: %w", err)
	}
	return nil
}

func (s *PostgresRunStore) UpdateRun(ctx context.Context, run *TrainingRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE training_runs
		SET status = $2, models_trained = $3, avg_accuracy = $4, completed_at = $5, error_message = $6
		WHERE id = $1`,
		run.ID, run.Status, run.ModelsTrained, run.AvgAccuracy, run.CompletedAt, run.ErrorMessage)
	if err != nil {
		return fmt.Errorf("update training run: %w", err)
	}
	return nil
}

func (s *PostgresRunStore) GetRun(ctx context.Context, id string) (*TrainingRun, error) {
	var run TrainingRun
	if err := s.db.GetContext(ctx, &run, `SELECT * FROM training_runs WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get training run: %w", err)
	}
	return &run, nil
}

func (s *PostgresRunStore) ListRuns(ctx context.Context, limit int) ([]TrainingRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []TrainingRun
	if err := s.db.SelectContext(ctx, &runs, `
		SELECT * FROM training_runs ORDER BY started_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("list training runs: %w", err)
	}
	return runs, nil
}

// MemoryRunStore keeps runs in memory for demo mode and tests.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]TrainingRun
	seq  []string
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]TrainingRun)}
}

func (s *MemoryRunStore) CreateRun(ctx context.Context, run *TrainingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	s.seq = append(s.seq, run.ID)
	return nil
}

func (s *MemoryRunStore) UpdateRun(ctx context.Context, run *TrainingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *MemoryRunStore) GetRun(ctx context.Context, id string) (*TrainingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("training run %q not found", id)
	}
	return &run, nil
}

func (s *MemoryRunStore) ListRuns(ctx context.Context, limit int) ([]TrainingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.seq) {
		limit = len(s.seq)
	}

	out := make([]TrainingRun, 0, limit)
	for i := len(s.seq) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[s.seq[i]])
	}
	return out, nil
}

var _ RunStore = (*PostgresRunStore)(nil)
var _ RunStore = (*MemoryRunStore)(nil)

// now is split out so tests can pin completion times if needed.
var now = time.Now
