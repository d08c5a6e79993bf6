// internal/forecast/model.go
package forecast

import (
	"context"
	"sync"
	"time"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// Input bundles everything a vertical model needs for one prediction.
type Input struct {
	Series      []domain.SalesObservation
	Factors     []domain.FactorSnapshot
	Horizon     int
	Criticality domain.Criticality
}

// Model is the strategy interface behind vertical demand forecasting.
// Implementations are pure given their input except for the training report,
// which is updated only by an explicit training pass.
type Model interface {
	Name() string

	// Predict returns a raw demand curve of exactly Horizon values, each >= 0.
	Predict(ctx context.Context, in Input) ([]float64, error)

	// Train backtests the model against the held-out tail of the series and
	// records the resulting accuracy report.
	Train(series []domain.SalesObservation, holdout float64) (domain.AccuracyReport, error)

	// Accuracy returns the last training report. ok is false when the model
	// has never been trained.
	Accuracy() (domain.AccuracyReport, bool)
}

// reportHolder stores the training report behind a mutex so concurrent
// forecast requests read a consistent snapshot.
type reportHolder struct {
	mu     sync.RWMutex
	report domain.AccuracyReport
	ok     bool
}

func (h *reportHolder) set(r domain.AccuracyReport) {
	h.mu.Lock()
	h.report = r
	h.ok = true
	h.mu.Unlock()
}

func (h *reportHolder) get() (domain.AccuracyReport, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report, h.ok
}

// Registry holds one model instance per vertical.
type Registry struct {
	temporal      *TemporalModel
	fashion       *FashionModel
	manufacturing *ManufacturingModel
}

// NewRegistry builds the default model set.
func NewRegistry() *Registry {
	return &Registry{
		temporal:      NewTemporalModel(),
		fashion:       NewFashionModel(),
		manufacturing: NewManufacturingModel(defaultMaintenanceInterval),
	}
}

// Select returns the model for a product vertical. GENERAL and unknown
// verticals use the temporal model.
func (r *Registry) Select(v domain.Vertical) Model {
	switch v {
	case domain.VerticalApparel:
		return r.fashion
	case domain.VerticalIndustrial:
		return r.manufacturing
	default:
		return r.temporal
	}
}

// All returns every registered model.
func (r *Registry) All() []Model {
	return []Model{r.temporal, r.fashion, r.manufacturing}
}

// Reports collects the training reports of all trained models.
func (r *Registry) Reports() []domain.AccuracyReport {
	var reports []domain.AccuracyReport
	for _, m := range r.All() {
		if rep, ok := m.Accuracy(); ok {
			reports = append(reports, rep)
		}
	}
	return reports
}

// trainOn is the shared backtest routine: fit on the leading portion,
// predict the held-out tail, score it and record the report.
func trainOn(m Model, name string, series []domain.SalesObservation, holdout float64, holder *reportHolder) (domain.AccuracyReport, error) {
	if len(series) < minTrainingObservations {
		return domain.AccuracyReport{}, domain.NewValidationError("series", "not enough history to train")
	}
	if holdout <= 0 || holdout >= 1 {
		holdout = 0.2
	}

	cut := int(float64(len(series)) * (1 - holdout))
	if cut < 2 {
		cut = 2
	}
	if cut >= len(series) {
		cut = len(series) - 1
	}
	train, test := series[:cut], series[cut:]

	predicted, err := m.Predict(context.Background(), Input{
		Series:  train,
		Horizon: len(test),
	})
	if err != nil {
		return domain.AccuracyReport{}, err
	}

	actual := make([]float64, len(test))
	for i, obs := range test {
		actual[i] = obs.Quantity
	}

	report := Score(name, actual, predicted)
	report.TrainedAt = time.Now().UTC()
	holder.set(report)
	return report, nil
}

const (
	minTrainingObservations    = 10
	defaultMaintenanceInterval = 30
)
