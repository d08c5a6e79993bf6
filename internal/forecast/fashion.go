// internal/forecast/fashion.go
package forecast

import (
	"context"
	"math"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// LifecycleStage is where an apparel product sits on its demand curve.
type LifecycleStage string

const (
	StageIntroduction LifecycleStage = "introduction"
	StageGrowth       LifecycleStage = "growth"
	StageMaturity     LifecycleStage = "maturity"
	StageDecline      LifecycleStage = "decline"
)

const (
	fashionCyclePeriod    = 5
	fashionSeasonalPeriod = 12
)

// FashionModel captures apparel demand: a fast trend cycle, a monthly
// seasonal boost and a lifecycle stage multiplier inferred from the
// recent three-point trend slope.
type FashionModel struct {
	holder reportHolder
}

func NewFashionModel() *FashionModel {
	return &FashionModel{}
}

func (m *FashionModel) Name() string { return "fashion" }

func (m *FashionModel) Predict(ctx context.Context, in Input) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Horizon <= 0 {
		return nil, domain.NewValidationError("horizon_days", "must be positive")
	}

	base := Baseline(in.Series)
	stage := m.Stage(in.Series)
	rng := seriesRand(in.Series, m.Name())

	out := make([]float64, in.Horizon)
	for i := 0; i < in.Horizon; i++ {
		cycle := 0.25 * base * math.Cos(2*math.Pi*float64(i)/fashionCyclePeriod)
		seasonal := 0.15 * base * math.Sin(2*math.Pi*float64(i)/fashionSeasonalPeriod)
		noise := rng.NormFloat64() * 0.06 * base
		demand := base + cycle + seasonal + noise
		demand *= stageMultiplier(stage, i)
		demand *= factorAdjustment(in.Factors, i)
		out[i] = demand
	}

	return clampNonNegative(out), nil
}

// Stage infers the lifecycle stage from the slope of the last three
// observations relative to the baseline level.
func (m *FashionModel) Stage(series []domain.SalesObservation) LifecycleStage {
	base := Baseline(series)
	if base <= 0 {
		return StageIntroduction
	}

	rel := RecentSlope(series, 3) / base
	switch {
	case rel > 0.10:
		return StageIntroduction
	case rel > 0.02:
		return StageGrowth
	case rel >= -0.02:
		return StageMaturity
	default:
		return StageDecline
	}
}

// stageMultiplier scales demand by lifecycle stage: introduction starts at
// 0.8x and grows, growth keeps climbing from 1.0x, maturity holds flat and
// decline shrinks below 1.0x.
func stageMultiplier(stage LifecycleStage, step int) float64 {
	s := float64(step)
	switch stage {
	case StageIntroduction:
		return 0.8 * (1 + 0.02*s)
	case StageGrowth:
		return 1.0 * (1 + 0.01*s)
	case StageDecline:
		mult := 0.9 * (1 - 0.015*s)
		if mult < 0.4 {
			mult = 0.4
		}
		return mult
	default:
		return 1.0
	}
}

func (m *FashionModel) Train(series []domain.SalesObservation, holdout float64) (domain.AccuracyReport, error) {
	return trainOn(m, m.Name(), series, holdout, &m.holder)
}

func (m *FashionModel) Accuracy() (domain.AccuracyReport, bool) {
	return m.holder.get()
}
