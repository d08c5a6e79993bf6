package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

func steadyForecast(days int, quantity float64) []domain.ForecastPoint {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.ForecastPoint, days)
	for i := range out {
		out[i] = domain.ForecastPoint{
			Date:              start.AddDate(0, 0, i),
			PredictedQuantity: quantity,
			Confidence:        0.9,
		}
	}
	return out
}

func TestZFactorTable(t *testing.T) {
	cases := []struct {
		serviceLevel float64
		want         float64
	}{
		{0.80, 0.84},
		{0.85, 1.04},
		{0.90, 1.28},
		{0.95, 1.65},
		{0.99, 2.33},
		{0.93, 1.28},  // not in the table, default
		{0.845, 1.28}, // near 0.85 but not documented, still default
		{0.86, 1.28},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ZFactor(tc.serviceLevel), "service level %.2f", tc.serviceLevel)
	}
}

func TestOptimizeValidation(t *testing.T) {
	opt := NewOptimizer(50)
	valid := Input{
		ProductID:      "SKU-0001",
		CurrentStock:   10,
		DemandForecast: steadyForecast(14, 2),
		LeadTimeDays:   7,
		ServiceLevel:   0.9,
		HoldingCost:    2,
	}

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"empty forecast", func(in *Input) { in.DemandForecast = nil }},
		{"zero lead time", func(in *Input) { in.LeadTimeDays = 0 }},
		{"negative stock", func(in *Input) { in.CurrentStock = -1 }},
		{"service level too high", func(in *Input) { in.ServiceLevel = 1.2 }},
		{"service level zero", func(in *Input) { in.ServiceLevel = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := opt.Optimize(in)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestOptimizeLowStockTriggersReorder(t *testing.T) {
	opt := NewOptimizer(50)

	rec, err := opt.Optimize(Input{
		ProductID:      "SKU-0001",
		CurrentStock:   5,
		DemandForecast: steadyForecast(30, 2),
		LeadTimeDays:   7,
		ServiceLevel:   0.9,
		HoldingCost:    2,
		StockoutCost:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ActionReorder, rec.Action)
	assert.Equal(t, domain.PriorityHigh, rec.Priority)
	assert.Equal(t, rec.EOQ, rec.Quantity)
	assert.Greater(t, rec.ReorderPoint, 5.0)
	assert.InDelta(t, 1.0, rec.StockoutRisk, 1e-9)
}

func TestOptimizeZeroExcessDoesNotReduce(t *testing.T) {
	opt := NewOptimizer(50)

	// safety = 1.65 * 3 * ltVar resolves to exactly 15, so excess is
	// 45 - (15 + 30) = 0 and the REDUCE branch must not fire.
	rec, err := opt.Optimize(Input{
		ProductID:           "SKU-0002",
		CurrentStock:        45,
		DemandForecast:      steadyForecast(30, 3),
		LeadTimeDays:        10,
		ServiceLevel:        0.95,
		HoldingCost:         2,
		LeadTimeVariability: 15.0 / (1.65 * 3.0),
	})
	require.NoError(t, err)

	assert.InDelta(t, 15.0, rec.SafetyStock, 1e-9)
	assert.InDelta(t, 45.0, rec.ReorderPoint, 1e-9)
	assert.NotEqual(t, domain.ActionReduce, rec.Action)
}

func TestOptimizeExcessStockTriggersReduce(t *testing.T) {
	opt := NewOptimizer(50)

	rec, err := opt.Optimize(Input{
		ProductID:      "SKU-0003",
		CurrentStock:   5000,
		DemandForecast: steadyForecast(30, 3),
		LeadTimeDays:   5,
		ServiceLevel:   0.9,
		HoldingCost:    20,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ActionReduce, rec.Action)
	assert.Greater(t, rec.Quantity, 0.0)
	assert.Greater(t, rec.ExpectedImpact.CostSavings, 0.0)
}

func TestOptimizeHealthyStockMaintains(t *testing.T) {
	opt := NewOptimizer(50)

	rec, err := opt.Optimize(Input{
		ProductID:      "SKU-0004",
		CurrentStock:   100,
		DemandForecast: steadyForecast(30, 3),
		LeadTimeDays:   5,
		ServiceLevel:   0.9,
		HoldingCost:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ActionMaintain, rec.Action)
	assert.Equal(t, domain.PriorityLow, rec.Priority)
}

func TestOptimizeZeroHoldingCostZeroesEOQ(t *testing.T) {
	opt := NewOptimizer(50)

	rec, err := opt.Optimize(Input{
		ProductID:      "SKU-0005",
		CurrentStock:   100,
		DemandForecast: steadyForecast(30, 3),
		LeadTimeDays:   5,
		ServiceLevel:   0.9,
		HoldingCost:    0,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, rec.EOQ)
	assert.GreaterOrEqual(t, rec.SafetyStock, 0.0)
	assert.GreaterOrEqual(t, rec.ReorderPoint, 0.0)
}

func TestOptimizeZeroEOQStillReducesExcess(t *testing.T) {
	opt := NewOptimizer(50)

	// holding cost 0 zeroes the EOQ, so any positive excess clears the
	// 2*EOQ threshold and must still land on REDUCE.
	rec, err := opt.Optimize(Input{
		ProductID:      "SKU-0008",
		CurrentStock:   100,
		DemandForecast: steadyForecast(30, 2),
		LeadTimeDays:   7,
		ServiceLevel:   0.9,
		HoldingCost:    0,
	})
	require.NoError(t, err)

	// safety = 1.28*sqrt(4*0.49) = 1.792, excess = 100 - (1.792+14).
	assert.Equal(t, 0.0, rec.EOQ)
	assert.Equal(t, domain.ActionReduce, rec.Action)
	assert.Equal(t, domain.PriorityMedium, rec.Priority)
	assert.Equal(t, 43.0, rec.Quantity)
}

func TestOptimizeIdempotent(t *testing.T) {
	opt := NewOptimizer(50)
	in := Input{
		ProductID:      "SKU-0006",
		CurrentStock:   25,
		DemandForecast: steadyForecast(30, 2.5),
		LeadTimeDays:   7,
		ServiceLevel:   0.95,
		HoldingCost:    3,
		StockoutCost:   12,
	}

	first, err := opt.Optimize(in)
	require.NoError(t, err)
	second, err := opt.Optimize(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimizeShortHorizonCutsConfidence(t *testing.T) {
	opt := NewOptimizer(50)

	short, err := opt.Optimize(Input{
		ProductID:      "SKU-0007",
		CurrentStock:   100,
		DemandForecast: steadyForecast(5, 3),
		LeadTimeDays:   5,
		ServiceLevel:   0.9,
		HoldingCost:    2,
	})
	require.NoError(t, err)

	long, err := opt.Optimize(Input{
		ProductID:      "SKU-0007",
		CurrentStock:   100,
		DemandForecast: steadyForecast(30, 3),
		LeadTimeDays:   5,
		ServiceLevel:   0.9,
		HoldingCost:    2,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.9*0.7, short.Confidence, 1e-9)
	assert.InDelta(t, 0.9, long.Confidence, 1e-9)
}
