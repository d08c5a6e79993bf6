// internal/forecast/temporal.go
package forecast

import (
	"context"
	"math"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

const temporalSeasonPeriod = 10

// TemporalModel is the default demand model: base level plus a sinusoidal
// seasonal component, a linear trend and a small deterministic noise term.
// It serves the GENERAL vertical and any unrecognized one.
type TemporalModel struct {
	holder reportHolder
}

func NewTemporalModel() *TemporalModel {
	return &TemporalModel{}
}

func (m *TemporalModel) Name() string { return "temporal" }

func (m *TemporalModel) Predict(ctx context.Context, in Input) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Horizon <= 0 {
		return nil, domain.NewValidationError("horizon_days", "must be positive")
	}

	base := Baseline(in.Series)
	trend := TrendSlope(in.Series)
	rng := seriesRand(in.Series, m.Name())

	out := make([]float64, in.Horizon)
	for i := 0; i < in.Horizon; i++ {
		seasonal := 0.2 * base * math.Sin(2*math.Pi*float64(i)/temporalSeasonPeriod)
		noise := rng.NormFloat64() * 0.05 * base
		demand := base + seasonal + trend*float64(i) + noise
		demand *= factorAdjustment(in.Factors, i)
		out[i] = demand
	}

	return clampNonNegative(out), nil
}

func (m *TemporalModel) Train(series []domain.SalesObservation, holdout float64) (domain.AccuracyReport, error) {
	return trainOn(m, m.Name(), series, holdout, &m.holder)
}

func (m *TemporalModel) Accuracy() (domain.AccuracyReport, bool) {
	return m.holder.get()
}

// factorAdjustment nudges demand by the external signals available for a
// step. Missing snapshots leave demand unchanged.
func factorAdjustment(factors []domain.FactorSnapshot, step int) float64 {
	if step >= len(factors) {
		return 1.0
	}

	f := factors[step]
	score := 0.0

	// Warm days lift baseline retail demand, heavy rain suppresses it.
	score += (f.Temperature - 15.0) / 100.0
	if f.Precipitation > 10 {
		score -= 0.1
	}
	score += (f.SearchInterest - 0.5) * 0.2
	score += f.Sentiment * 0.1

	return impactMultiplier(score)
}
