// internal/pipeline/trainer.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/ensemble"
	"github.com/retailpulse/forecast-engine/internal/external"
	"github.com/retailpulse/forecast-engine/internal/forecast"
	"github.com/retailpulse/forecast-engine/internal/repository"
	"github.com/retailpulse/forecast-engine/internal/storage"
)

// Trainer runs the periodic model training / backtest pass and then the
// ensemble weight update. Model backtests are independent pure functions
// over the same training set, so they run in parallel; the weight update
// waits for all of them (a join barrier).
type Trainer struct {
	cfg      Config
	registry *forecast.Registry
	products repository.ProductRepository
	runs     RunStore
	weights  *ensemble.Store
	reports  storage.ObjectStorage
}

func NewTrainer(cfg Config, registry *forecast.Registry, products repository.ProductRepository, runs RunStore, weights *ensemble.Store, reports storage.ObjectStorage) *Trainer {
	if cfg.Folds < 2 {
		cfg.Folds = DefaultConfig().Folds
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = DefaultConfig().HistoryDays
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig().WorkerCount
	}
	if cfg.Holdout <= 0 || cfg.Holdout >= 1 {
		cfg.Holdout = DefaultConfig().Holdout
	}
	if reports == nil {
		reports = storage.NoopStorage{}
	}
	return &Trainer{
		cfg:      cfg,
		registry: registry,
		products: products,
		runs:     runs,
		weights:  weights,
		reports:  reports,
	}
}

// Run executes one full training pass and returns the report.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	run := &TrainingRun{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		StartedAt: now().UTC(),
	}
	if err := t.runs.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	report, err := t.execute(ctx, run)
	if err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
		completed := now().UTC()
		run.CompletedAt = &completed
		if updateErr := t.runs.UpdateRun(ctx, run); updateErr != nil {
			log.Error().Err(updateErr).Str("run_id", run.ID).Msg("trainer: failed to mark run failed")
		}
		return nil, err
	}

	return report, nil
}

func (t *Trainer) execute(ctx context.Context, run *TrainingRun) (*Report, error) {
	run.Status = StatusProcessing
	if err := t.runs.UpdateRun(ctx, run); err != nil {
		return nil, err
	}

	verticalSeries, err := t.buildTrainingSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("build training series: %w", err)
	}

	// Train all vertical models in parallel. No ordering guarantee is
	// needed between them, only that all finish before the weight update.
	var (
		mu           sync.Mutex
		modelReports []domain.AccuracyReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.WorkerCount)

	for _, vertical := range []domain.Vertical{domain.VerticalGeneral, domain.VerticalApparel, domain.VerticalIndustrial} {
		series, ok := verticalSeries[vertical]
		if !ok || len(series) == 0 {
			log.Warn().Str("vertical", string(vertical)).Msg("trainer: no history for vertical, skipping")
			continue
		}
		model := t.registry.Select(vertical)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := model.Train(series, t.cfg.Holdout)
			if err != nil {
				return fmt.Errorf("train %s: %w", model.Name(), err)
			}
			mu.Lock()
			modelReports = append(modelReports, rep)
			mu.Unlock()
			log.Info().
				Str("model", model.Name()).
				Float64("mape", rep.MAPE).
				Float64("r2", rep.R2).
				Msg("trainer: model backtest complete")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(modelReports) == 0 {
		return nil, fmt.Errorf("no models could be trained")
	}
	sort.Slice(modelReports, func(i, j int) bool { return modelReports[i].Model < modelReports[j].Model })

	// Cross-validate the ensemble components, then adapt the weights.
	vertical, series := validationSeries(verticalSeries)
	validation, err := t.crossValidate(ctx, vertical, series)
	if err != nil {
		return nil, fmt.Errorf("cross validation: %w", err)
	}

	results := make([]ensemble.ValidationResult, len(validation))
	var accSum float64
	for i, v := range validation {
		results[i] = ensemble.ValidationResult{Component: v.Component, Accuracies: v.Accuracies}
		accSum += v.Mean
	}
	avgAccuracy := accSum / float64(len(validation))

	next, err := ensemble.Adapt(t.weights.Snapshot(), results)
	if err != nil {
		return nil, fmt.Errorf("adapt weights: %w", err)
	}
	t.weights.Replace(next)

	completed := now().UTC()
	run.Status = StatusCompleted
	run.ModelsTrained = len(modelReports)
	run.AvgAccuracy = avgAccuracy
	run.CompletedAt = &completed
	if err := t.runs.UpdateRun(ctx, run); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       run.ID,
		StartedAt:   run.StartedAt,
		CompletedAt: completed,
		Models:      modelReports,
		Validation:  validation,
		Weights:     t.weights.Snapshot(),
		AvgAccuracy: avgAccuracy,
	}
	t.archiveReport(ctx, report)

	log.Info().
		Str("run_id", run.ID).
		Int("models", run.ModelsTrained).
		Float64("avg_accuracy", avgAccuracy).
		Msg("trainer: run complete")

	return report, nil
}

// buildTrainingSeries pools per-product history into one representative
// series per vertical by averaging quantities date by date.
func (t *Trainer) buildTrainingSeries(ctx context.Context) (map[domain.Vertical][]domain.SalesObservation, error) {
	products, err := t.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products available for training")
	}

	type bucket struct {
		sum   map[time.Time]float64
		price map[time.Time]float64
		count map[time.Time]int
	}
	buckets := make(map[domain.Vertical]*bucket)

	for _, p := range products {
		series, err := t.products.GetSalesHistory(ctx, p.ID, t.cfg.HistoryDays)
		if err != nil {
			log.Warn().Err(err).Str("product_id", p.ID).Msg("trainer: skipping product history")
			continue
		}

		b, ok := buckets[p.Vertical]
		if !ok {
			b = &bucket{
				sum:   make(map[time.Time]float64),
				price: make(map[time.Time]float64),
				count: make(map[time.Time]int),
			}
			buckets[p.Vertical] = b
		}
		for _, obs := range series {
			day := obs.Date.Truncate(24 * time.Hour)
			b.sum[day] += obs.Quantity
			b.price[day] += obs.UnitPrice
			b.count[day]++
		}
	}

	out := make(map[domain.Vertical][]domain.SalesObservation, len(buckets))
	for vertical, b := range buckets {
		dates := make([]time.Time, 0, len(b.sum))
		for d := range b.sum {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		series := make([]domain.SalesObservation, 0, len(dates))
		for _, d := range dates {
			n := float64(b.count[d])
			series = append(series, domain.SalesObservation{
				Date:      d,
				Quantity:  b.sum[d] / n,
				UnitPrice: b.price[d] / n,
			})
		}
		out[vertical] = series
	}

	return out, nil
}

// validationSeries picks the pooled series the component validation runs
// on. The general vertical is preferred; catalogs without one use their
// longest series so the weight update still happens.
func validationSeries(pooled map[domain.Vertical][]domain.SalesObservation) (domain.Vertical, []domain.SalesObservation) {
	if s := pooled[domain.VerticalGeneral]; len(s) > 0 {
		return domain.VerticalGeneral, s
	}

	verticals := make([]domain.Vertical, 0, len(pooled))
	for v := range pooled {
		verticals = append(verticals, v)
	}
	sort.Slice(verticals, func(i, j int) bool { return verticals[i] < verticals[j] })

	var (
		best       domain.Vertical
		bestLength int
	)
	for _, v := range verticals {
		if len(pooled[v]) > bestLength {
			best = v
			bestLength = len(pooled[v])
		}
	}
	return best, pooled[best]
}

// crossValidate scores each ensemble component over k contiguous folds of
// the pooled series. Accuracy is 1 minus MAPE, floored at zero.
func (t *Trainer) crossValidate(ctx context.Context, vertical domain.Vertical, series []domain.SalesObservation) ([]ComponentValidation, error) {
	// The first fold must be long enough on its own to train on.
	if len(series) < t.cfg.Folds*10 {
		return nil, fmt.Errorf("not enough history for %d-fold validation", t.cfg.Folds)
	}

	model := t.registry.Select(vertical)
	foldSize := len(series) / t.cfg.Folds

	byComponent := map[string][]float64{
		ensemble.ComponentTemporal: nil,
		ensemble.ComponentExternal: nil,
		ensemble.ComponentProduct:  nil,
		ensemble.ComponentMarket:   nil,
	}

	// The first fold has no training prefix, so validation starts at the
	// second fold.
	for fold := 1; fold < t.cfg.Folds; fold++ {
		start := fold * foldSize
		end := start + foldSize
		if end > len(series) {
			end = len(series)
		}
		train, validate := series[:start], series[start:end]
		horizon := len(validate)

		actual := make([]float64, horizon)
		for i, obs := range validate {
			actual[i] = obs.Quantity
		}

		factors := external.FallbackSnapshots(validate[0].Date, validate[horizon-1].Date)

		temporal, err := model.Predict(ctx, forecast.Input{Series: train, Factors: factors, Horizon: horizon})
		if err != nil {
			return nil, err
		}

		curves := map[string][]float64{
			ensemble.ComponentTemporal: temporal,
			ensemble.ComponentExternal: ensemble.ExternalComponent(train, factors, horizon, func(f domain.FactorSnapshot) float64 {
				return external.ImpactScore(f, string(vertical))
			}),
			ensemble.ComponentProduct: ensemble.ProductComponent(train, horizon),
			ensemble.ComponentMarket:  ensemble.MarketComponent(train, factors, horizon),
		}

		for name, curve := range curves {
			score := forecast.Score(name, actual, curve)
			byComponent[name] = append(byComponent[name], forecast.AccuracyOf(score))
		}
	}

	names := make([]string, 0, len(byComponent))
	for name := range byComponent {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ComponentValidation, 0, len(names))
	for _, name := range names {
		accs := byComponent[name]
		mean := 0.0
		for _, a := range accs {
			mean += a
		}
		if len(accs) > 0 {
			mean /= float64(len(accs))
		}
		out = append(out, ComponentValidation{Component: name, Accuracies: accs, Mean: mean})
	}

	return out, nil
}

func (t *Trainer) archiveReport(ctx context.Context, report *Report) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("trainer: encode report failed")
		return
	}

	key := fmt.Sprintf("%s%s/%s.json", reportPrefix, report.CompletedAt.Format("2006-01-02"), report.RunID)
	if err := t.reports.UploadObject(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("trainer: report upload failed")
	}
}
