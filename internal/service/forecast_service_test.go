package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/ensemble"
	"github.com/retailpulse/forecast-engine/internal/external"
	"github.com/retailpulse/forecast-engine/internal/forecast"
	"github.com/retailpulse/forecast-engine/internal/repository"
)

// fakeAdapter serves deterministic factor snapshots without any network.
type fakeAdapter struct {
	degraded bool
}

func (f *fakeAdapter) Fetch(ctx context.Context, location string, from, to time.Time) ([]domain.FactorSnapshot, error) {
	snapshots := external.FallbackSnapshots(from, to)
	if !f.degraded {
		for i := range snapshots {
			snapshots[i].Fallback = false
		}
	}
	return snapshots, nil
}

func (f *fakeAdapter) ImpactScore(snapshot domain.FactorSnapshot, category string) float64 {
	return external.ImpactScore(snapshot, category)
}

func newTestEngine(t *testing.T, trained bool, degraded bool) (*ForecastService, *repository.SyntheticRepository, *forecast.Registry) {
	t.Helper()

	repo := repository.NewSyntheticRepository(42, 12, 120)
	registry := forecast.NewRegistry()

	if trained {
		trainAll(t, repo, registry)
	}

	svc := NewForecastService(repo, registry, ensemble.NewStore(), &fakeAdapter{degraded: degraded}, nil, 365)
	return svc, repo, registry
}

func trainAll(t *testing.T, repo *repository.SyntheticRepository, registry *forecast.Registry) {
	t.Helper()
	ctx := context.Background()

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)

	trained := make(map[string]bool)
	for _, p := range products {
		model := registry.Select(p.Vertical)
		if trained[model.Name()] {
			continue
		}
		history, err := repo.GetSalesHistory(ctx, p.ID, 0)
		require.NoError(t, err)
		_, err = model.Train(history, 0.2)
		require.NoError(t, err)
		trained[model.Name()] = true
	}
}

func TestForecastValidation(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, false)
	ctx := context.Background()

	cases := []struct {
		name string
		req  ForecastRequest
	}{
		{"missing product", ForecastRequest{HorizonDays: 30}},
		{"zero horizon", ForecastRequest{ProductID: "SKU-0001"}},
		{"horizon too large", ForecastRequest{ProductID: "SKU-0001", HorizonDays: 9999}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Forecast(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestForecastUnknownProduct(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, false)

	_, err := svc.Forecast(context.Background(), ForecastRequest{ProductID: "SKU-9999", HorizonDays: 30})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestForecastUntrainedModel(t *testing.T) {
	svc, _, _ := newTestEngine(t, false, false)

	_, err := svc.Forecast(context.Background(), ForecastRequest{ProductID: "SKU-0001", HorizonDays: 30})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelNotTrained))
}

func TestForecastProducesFullHorizon(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, false)

	result, err := svc.Forecast(context.Background(), ForecastRequest{
		ProductID:   "SKU-0001",
		HorizonDays: 30,
		Location:    "jakarta",
	})
	require.NoError(t, err)

	assert.Equal(t, "SKU-0001", result.ProductID)
	require.Len(t, result.Forecast, 30)
	for _, p := range result.Forecast {
		assert.GreaterOrEqual(t, p.PredictedQuantity, 0.0)
		assert.GreaterOrEqual(t, p.Confidence, 0.5)
		assert.LessOrEqual(t, p.Confidence, 0.95)
	}

	assert.Equal(t, "temporal", result.ModelUsed)
	assert.GreaterOrEqual(t, result.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Accuracy, 1.0)
	assert.NotEmpty(t, result.Insights)
	assert.False(t, result.Degraded)
	assert.Nil(t, result.ExternalFactors)
}

func TestForecastVerticalOverrideSelectsModel(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, false)

	result, err := svc.Forecast(context.Background(), ForecastRequest{
		ProductID:   "SKU-0001",
		HorizonDays: 14,
		Vertical:    "apparel",
	})
	require.NoError(t, err)
	assert.Equal(t, "fashion", result.ModelUsed)
}

func TestForecastIncludesFactorsOnRequest(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, false)

	result, err := svc.Forecast(context.Background(), ForecastRequest{
		ProductID:              "SKU-0001",
		HorizonDays:            14,
		IncludeExternalFactors: true,
	})
	require.NoError(t, err)
	assert.Len(t, result.ExternalFactors, 14)
}

func TestForecastDegradedSignalsFlagged(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, true)

	result, err := svc.Forecast(context.Background(), ForecastRequest{
		ProductID:   "SKU-0001",
		HorizonDays: 14,
	})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	require.Len(t, result.Forecast, 14)

	found := false
	for _, insight := range result.Insights {
		if insight == "external signals unavailable, forecast uses fallback factors with reduced confidence" {
			found = true
		}
	}
	assert.True(t, found, "degraded runs must carry the fallback insight")
}

func TestForecastDeterministicForIdenticalRequests(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, false)
	req := ForecastRequest{ProductID: "SKU-0002", HorizonDays: 21, Location: "jakarta"}

	first, err := svc.Forecast(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Forecast(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Forecast, second.Forecast)
}

func TestModelAccuracyReports(t *testing.T) {
	svc, _, _ := newTestEngine(t, true, false)
	reports := svc.ModelAccuracy()
	assert.Len(t, reports, 3)
}
