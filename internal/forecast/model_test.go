package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

func makeSeries(quantities ...float64) []domain.SalesObservation {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]domain.SalesObservation, len(quantities))
	for i, q := range quantities {
		series[i] = domain.SalesObservation{
			Date:      start.AddDate(0, 0, i),
			Quantity:  q,
			UnitPrice: 25,
		}
	}
	return series
}

func flatSeries(n int, level float64) []domain.SalesObservation {
	quantities := make([]float64, n)
	for i := range quantities {
		quantities[i] = level
	}
	return makeSeries(quantities...)
}

func TestPredictHorizonLengthAndNonNegative(t *testing.T) {
	series := flatSeries(60, 12)
	registry := NewRegistry()

	for _, model := range registry.All() {
		out, err := model.Predict(context.Background(), Input{Series: series, Horizon: 30})
		require.NoError(t, err, model.Name())
		require.Len(t, out, 30, model.Name())
		for i, v := range out {
			assert.GreaterOrEqual(t, v, 0.0, "%s step %d", model.Name(), i)
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	series := makeSeries(10, 11, 9, 12, 14, 10, 13, 11, 12, 15, 13, 12)
	registry := NewRegistry()

	for _, model := range registry.All() {
		first, err := model.Predict(context.Background(), Input{Series: series, Horizon: 14})
		require.NoError(t, err)
		second, err := model.Predict(context.Background(), Input{Series: series, Horizon: 14})
		require.NoError(t, err)
		assert.Equal(t, first, second, "repeat predictions must match for %s", model.Name())
	}
}

func TestPredictRejectsBadHorizon(t *testing.T) {
	model := NewTemporalModel()
	_, err := model.Predict(context.Background(), Input{Series: flatSeries(30, 10), Horizon: 0})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestManufacturingCriticalityLiftsDemand(t *testing.T) {
	series := flatSeries(60, 20)
	model := NewManufacturingModel(defaultMaintenanceInterval)

	standard, err := model.Predict(context.Background(), Input{Series: series, Horizon: 14, Criticality: domain.CriticalityStandard})
	require.NoError(t, err)
	critical, err := model.Predict(context.Background(), Input{Series: series, Horizon: 14, Criticality: domain.CriticalityCritical})
	require.NoError(t, err)

	var sumStandard, sumCritical float64
	for i := range standard {
		sumStandard += standard[i]
		sumCritical += critical[i]
	}
	assert.Greater(t, sumCritical, sumStandard)
}

func TestFashionStage(t *testing.T) {
	base := make([]float64, 27)
	for i := range base {
		base[i] = 10
	}

	cases := []struct {
		name string
		tail []float64
		want LifecycleStage
	}{
		{"steep rise", []float64{10, 13, 16}, StageIntroduction},
		{"mild rise", []float64{10, 10.3, 10.6}, StageGrowth},
		{"flat", []float64{10, 10, 10}, StageMaturity},
		{"falling", []float64{10, 8, 6}, StageDecline},
	}

	model := NewFashionModel()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series := makeSeries(append(append([]float64{}, base...), tc.tail...)...)
			assert.Equal(t, tc.want, model.Stage(series))
		})
	}
}

func TestFashionStageEmptySeries(t *testing.T) {
	assert.Equal(t, StageIntroduction, NewFashionModel().Stage(nil))
}

func TestTrainRejectsShortSeries(t *testing.T) {
	model := NewTemporalModel()
	_, err := model.Train(flatSeries(5, 10), 0.2)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, trained := model.Accuracy()
	assert.False(t, trained)
}

func TestTrainRecordsAccuracy(t *testing.T) {
	model := NewTemporalModel()
	report, err := model.Train(flatSeries(60, 10), 0.2)
	require.NoError(t, err)

	assert.Equal(t, "temporal", report.Model)
	assert.Equal(t, 12, report.Samples)
	assert.GreaterOrEqual(t, report.MAPE, 0.0)
	assert.False(t, report.TrainedAt.IsZero())

	stored, trained := model.Accuracy()
	require.True(t, trained)
	assert.Equal(t, report, stored)
}

func TestRegistrySelect(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, "fashion", registry.Select(domain.VerticalApparel).Name())
	assert.Equal(t, "manufacturing", registry.Select(domain.VerticalIndustrial).Name())
	assert.Equal(t, "temporal", registry.Select(domain.VerticalGeneral).Name())
	assert.Equal(t, "temporal", registry.Select(domain.Vertical("SOMETHING_ELSE")).Name())
}

func TestRegistryReportsOnlyTrainedModels(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.Reports())

	_, err := registry.Select(domain.VerticalGeneral).Train(flatSeries(60, 10), 0.2)
	require.NoError(t, err)

	reports := registry.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "temporal", reports[0].Model)
}

func TestScorePerfectPrediction(t *testing.T) {
	actual := []float64{10, 12, 14, 16}
	report := Score("temporal", actual, []float64{10, 12, 14, 16})

	assert.InDelta(t, 0.0, report.MAPE, 1e-9)
	assert.InDelta(t, 0.0, report.MAE, 1e-9)
	assert.InDelta(t, 0.0, report.RMSE, 1e-9)
	assert.InDelta(t, 1.0, report.R2, 1e-9)
	assert.InDelta(t, 1.0, AccuracyOf(report), 1e-9)
}

func TestAccuracyOfClampsLargeErrors(t *testing.T) {
	report := domain.AccuracyReport{MAPE: 1.8}
	assert.Equal(t, 0.0, AccuracyOf(report))
}

func TestSyntheticGeneratorDeterministic(t *testing.T) {
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	a := NewSyntheticGenerator(7)
	b := NewSyntheticGenerator(7)

	catalogA := a.Catalog(10)
	catalogB := b.Catalog(10)
	require.Equal(t, catalogA, catalogB)

	historyA := a.History(catalogA[0], 90, end)
	historyB := b.History(catalogB[0], 90, end)
	assert.Equal(t, historyA, historyB)
	assert.Len(t, historyA, 90)
}
