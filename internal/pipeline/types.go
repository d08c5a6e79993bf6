// internal/pipeline/types.go
package pipeline

import (
	"time"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/ensemble"
)

// RunStatus represents the current state of a training run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// TrainingRun tracks a single execution of the model training / weight
// adaptation pipeline.
type TrainingRun struct {
	ID            string     `db:"id"`
	Status        RunStatus  `db:"status"`
	ModelsTrained int        `db:"models_trained"`
	AvgAccuracy   float64    `db:"avg_accuracy"`
	StartedAt     time.Time  `db:"started_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	ErrorMessage  string     `db:"error_message"`
}

// Config holds the knobs for one training pass.
type Config struct {
	Folds       int
	Holdout     float64
	WorkerCount int
	HistoryDays int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Folds:       5,
		Holdout:     0.2,
		WorkerCount: 4,
		HistoryDays: 180,
	}
}

// Report is the artifact persisted after a completed run.
type Report struct {
	RunID       string                  `json:"run_id"`
	StartedAt   time.Time               `json:"started_at"`
	CompletedAt time.Time               `json:"completed_at"`
	Models      []domain.AccuracyReport `json:"models"`
	Validation  []ComponentValidation   `json:"validation"`
	Weights     ensemble.Weights        `json:"weights"`
	AvgAccuracy float64                 `json:"avg_accuracy"`
}

// ComponentValidation is the per-component k-fold summary in the report.
type ComponentValidation struct {
	Component  string    `json:"component"`
	Accuracies []float64 `json:"fold_accuracies"`
	Mean       float64   `json:"mean"`
}
