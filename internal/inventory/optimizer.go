// internal/inventory/optimizer.go
package inventory

import (
	"fmt"
	"math"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// zTable maps target service levels to standard-normal quantiles. Exact
// table lookup, no interpolation; unknown levels use the 0.90 default.
var zTable = map[int]float64{
	80: 0.84,
	85: 1.04,
	90: 1.28,
	95: 1.65,
	99: 2.33,
}

const defaultZ = 1.28

// ZFactor resolves a service level in (0,1] to its z quantile. Only the
// five documented levels match; everything else gets the default rather
// than snapping to the nearest neighbor.
func ZFactor(serviceLevel float64) float64 {
	scaled := serviceLevel * 100
	for level, z := range zTable {
		if math.Abs(scaled-float64(level)) < 1e-6 {
			return z
		}
	}
	return defaultZ
}

// Input is everything one optimization run consumes.
type Input struct {
	ProductID      string
	CurrentStock   float64
	DemandForecast []domain.ForecastPoint
	LeadTimeDays   int
	ServiceLevel   float64
	HoldingCost    float64
	StockoutCost   float64
	OrderingCost   float64

	// LeadTimeVariability overrides the 0.1*lead_time default when
	// historical lead-time variance is available.
	LeadTimeVariability float64
}

// Optimizer converts a probabilistic forecast into a deterministic
// operational decision. Identical inputs always yield an identical
// recommendation.
type Optimizer struct {
	defaultOrderingCost float64
}

func NewOptimizer(defaultOrderingCost float64) *Optimizer {
	if defaultOrderingCost <= 0 {
		defaultOrderingCost = 50
	}
	return &Optimizer{defaultOrderingCost: defaultOrderingCost}
}

// Optimize runs the full safety stock / reorder point / EOQ computation
// and the decision state machine.
func (o *Optimizer) Optimize(in Input) (*domain.Recommendation, error) {
	if len(in.DemandForecast) == 0 {
		return nil, domain.NewValidationError("demand_forecast", "must not be empty")
	}
	if in.LeadTimeDays <= 0 {
		return nil, domain.NewValidationError("lead_time_days", "must be positive")
	}
	if in.CurrentStock < 0 {
		return nil, domain.NewValidationError("current_stock", "must not be negative")
	}
	if in.ServiceLevel <= 0 || in.ServiceLevel > 1 {
		return nil, domain.NewValidationError("service_level", "must be in (0,1]")
	}

	demandMean, demandStd := demandStats(in.DemandForecast)
	leadTime := float64(in.LeadTimeDays)

	ltVar := in.LeadTimeVariability
	if ltVar <= 0 {
		ltVar = 0.1 * leadTime
	}

	z := ZFactor(in.ServiceLevel)
	safetyStock := z * math.Sqrt(leadTime*demandStd*demandStd+demandMean*demandMean*ltVar*ltVar)
	reorderPoint := demandMean*leadTime + safetyStock

	orderingCost := in.OrderingCost
	if orderingCost <= 0 {
		orderingCost = o.defaultOrderingCost
	}
	eoq := economicOrderQuantity(in.DemandForecast, orderingCost, in.HoldingCost)

	risk := stockoutRisk(in.CurrentStock, demandMean, leadTime)
	excess := math.Max(0, in.CurrentStock-(safetyStock+demandMean*leadTime))

	rec := &domain.Recommendation{
		ProductID:    in.ProductID,
		SafetyStock:  safetyStock,
		ReorderPoint: reorderPoint,
		EOQ:          eoq,
		StockoutRisk: risk,
	}

	// Decision state machine, evaluated in priority order.
	switch {
	case in.CurrentStock <= reorderPoint:
		rec.Action = domain.ActionReorder
		rec.Quantity = eoq
		rec.Priority = domain.PriorityMedium
		if risk > 0.3 {
			rec.Priority = domain.PriorityHigh
		}
		rec.ExpectedImpact = domain.ExpectedImpact{
			CostSavings:             in.StockoutCost * demandMean * risk,
			ServiceLevelImprovement: risk * (1 - in.ServiceLevel),
			Description:             fmt.Sprintf("replenish %.0f units to cover lead-time demand", eoq),
		}
	case excess > 2*eoq:
		rec.Action = domain.ActionReduce
		rec.Quantity = math.Ceil(excess / 2)
		rec.Priority = domain.PriorityMedium
		rec.ExpectedImpact = domain.ExpectedImpact{
			CostSavings: in.HoldingCost * excess / 2,
			Description: fmt.Sprintf("carrying %.0f units above target, halving excess", excess),
		}
	case risk > 0.5:
		rec.Action = domain.ActionPromote
		rec.Priority = domain.PriorityHigh
		rec.ExpectedImpact = domain.ExpectedImpact{
			ServiceLevelImprovement: risk * 0.5,
			Description:             "stock position at risk, promote to steer demand",
		}
	default:
		rec.Action = domain.ActionMaintain
		rec.Priority = domain.PriorityLow
		rec.ExpectedImpact = domain.ExpectedImpact{
			Description: "stock position healthy",
		}
	}

	rec.Confidence = recommendationConfidence(in.DemandForecast)
	return rec, nil
}

func demandStats(forecast []domain.ForecastPoint) (mean, std float64) {
	n := float64(len(forecast))
	for _, p := range forecast {
		mean += p.PredictedQuantity
	}
	mean /= n

	var variance float64
	for _, p := range forecast {
		variance += (p.PredictedQuantity - mean) * (p.PredictedQuantity - mean)
	}
	variance /= n

	return mean, math.Sqrt(variance)
}

// economicOrderQuantity annualizes the horizon demand and applies the EOQ
// formula. Monthly-scale horizons are annualized by 12, anything else by
// calendar proportion. Returns 0 when holding cost is non-positive.
func economicOrderQuantity(forecast []domain.ForecastPoint, orderingCost, holdingCost float64) float64 {
	if holdingCost <= 0 {
		return 0
	}

	var horizonDemand float64
	for _, p := range forecast {
		horizonDemand += p.PredictedQuantity
	}

	horizon := len(forecast)
	var annualDemand float64
	if horizon >= 28 && horizon <= 31 {
		annualDemand = horizonDemand * 12
	} else {
		annualDemand = horizonDemand * 365 / float64(horizon)
	}

	return math.Sqrt(2 * annualDemand * orderingCost / holdingCost)
}

// stockoutRisk tiers the days-of-stock coverage against the lead time.
func stockoutRisk(currentStock, demandMean, leadTime float64) float64 {
	if demandMean <= 0 {
		return 0.2
	}

	daysOfStock := currentStock / demandMean
	switch {
	case daysOfStock <= leadTime:
		return 1.0
	case daysOfStock <= leadTime+7:
		return 0.7
	default:
		return 0.2
	}
}

// recommendationConfidence reflects how much the decision relied on sparse
// data: short horizons cut it down, otherwise it follows the forecast's
// own average confidence.
func recommendationConfidence(forecast []domain.ForecastPoint) float64 {
	var sum float64
	for _, p := range forecast {
		sum += p.Confidence
	}
	conf := sum / float64(len(forecast))

	if len(forecast) < 7 {
		conf *= 0.7
	}

	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}
