// internal/forecast/manufacturing.go
package forecast

import (
	"context"
	"math"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

const (
	projectCyclePeriod    = 8
	maintenanceSpikeProb  = 0.10
	maintenanceSpikeUnits = 50.0
)

// ManufacturingModel captures industrial demand: a slow project cycle,
// occasional maintenance spikes, a criticality multiplier and a boost as
// the next scheduled maintenance window approaches.
type ManufacturingModel struct {
	maintenanceInterval int
	holder              reportHolder
}

// NewManufacturingModel builds the industrial model. interval is the
// scheduled maintenance cadence in days; values below 1 fall back to the
// default 30 day cycle.
func NewManufacturingModel(interval int) *ManufacturingModel {
	if interval < 1 {
		interval = defaultMaintenanceInterval
	}
	return &ManufacturingModel{maintenanceInterval: interval}
}

func (m *ManufacturingModel) Name() string { return "manufacturing" }

func (m *ManufacturingModel) Predict(ctx context.Context, in Input) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Horizon <= 0 {
		return nil, domain.NewValidationError("horizon_days", "must be positive")
	}

	base := Baseline(in.Series)
	rng := seriesRand(in.Series, m.Name())
	critical := in.Criticality.DemandMultiplier()

	out := make([]float64, in.Horizon)
	for i := 0; i < in.Horizon; i++ {
		cycle := 0.2 * base * math.Sin(2*math.Pi*float64(i)/projectCyclePeriod)
		noise := rng.NormFloat64() * 0.04 * base
		demand := base + cycle + noise

		if rng.Float64() < maintenanceSpikeProb {
			demand += maintenanceSpikeUnits
		}

		demand *= critical
		demand *= m.maintenanceProximity(i)
		demand *= factorAdjustment(in.Factors, i)
		out[i] = demand
	}

	return clampNonNegative(out), nil
}

// maintenanceProximity boosts demand as the next scheduled maintenance
// window approaches: 1.3x within 7 days, 1.1x within 14.
func (m *ManufacturingModel) maintenanceProximity(step int) float64 {
	daysUntil := m.maintenanceInterval - (step % m.maintenanceInterval)
	switch {
	case daysUntil <= 7:
		return 1.3
	case daysUntil <= 14:
		return 1.1
	default:
		return 1.0
	}
}

func (m *ManufacturingModel) Train(series []domain.SalesObservation, holdout float64) (domain.AccuracyReport, error) {
	return trainOn(m, m.Name(), series, holdout, &m.holder)
}

func (m *ManufacturingModel) Accuracy() (domain.AccuracyReport, bool) {
	return m.holder.get()
}
