// internal/service/forecast_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/retailpulse/forecast-engine/internal/cache"
	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/ensemble"
	"github.com/retailpulse/forecast-engine/internal/external"
	"github.com/retailpulse/forecast-engine/internal/forecast"
	"github.com/retailpulse/forecast-engine/internal/repository"
)

const historyWindowDays = 180

// ForecastRequest is the caller's contract for one forecast run. Vertical
// is optional and defaults to the product's own vertical.
type ForecastRequest struct {
	ProductID              string `json:"product_id"`
	HorizonDays            int    `json:"horizon_days"`
	IncludeExternalFactors bool   `json:"include_external_factors"`
	Location               string `json:"location"`
	Vertical               string `json:"vertical"`
}

// ForecastService runs the full per-request pipeline: history load,
// external signal fetch, per-model prediction, ensemble blend.
type ForecastService struct {
	products   repository.ProductRepository
	registry   *forecast.Registry
	weights    *ensemble.Store
	factors    external.Adapter
	cache      cache.ForecastCache
	maxHorizon int
}

func NewForecastService(products repository.ProductRepository, registry *forecast.Registry, weights *ensemble.Store, factors external.Adapter, cacheImpl cache.ForecastCache, maxHorizon int) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	if maxHorizon <= 0 {
		maxHorizon = 365
	}
	return &ForecastService{
		products:   products,
		registry:   registry,
		weights:    weights,
		factors:    factors,
		cache:      cacheImpl,
		maxHorizon: maxHorizon,
	}
}

// Forecast produces a blended demand forecast of exactly HorizonDays
// points. Upstream signal failures degrade the result instead of failing it.
func (s *ForecastService) Forecast(ctx context.Context, req ForecastRequest) (*domain.ForecastResult, error) {
	if req.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "must not be empty")
	}
	if req.HorizonDays <= 0 {
		return nil, domain.NewValidationError("horizon_days", "must be positive")
	}
	if req.HorizonDays > s.maxHorizon {
		return nil, domain.NewValidationError("horizon_days", fmt.Sprintf("must not exceed %d", s.maxHorizon))
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	vertical := product.Vertical
	if req.Vertical != "" {
		vertical = domain.ParseVertical(req.Vertical)
	}

	if cached, ok, err := s.cache.Get(ctx, req.ProductID, req.HorizonDays, vertical, req.Location, req.IncludeExternalFactors); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}

	model := s.registry.Select(vertical)
	if _, trained := model.Accuracy(); !trained {
		return nil, fmt.Errorf("model %s: %w", model.Name(), domain.ErrModelNotTrained)
	}

	history, err := s.products.GetSalesHistory(ctx, req.ProductID, historyWindowDays)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.NewValidationError("product_id", "no sales history available")
	}

	start := history[len(history)-1].Date.AddDate(0, 0, 1)
	end := start.AddDate(0, 0, req.HorizonDays-1)

	factors, degraded := s.fetchFactors(ctx, req.Location, start, end)

	temporal, err := model.Predict(ctx, forecast.Input{
		Series:      history,
		Factors:     factors,
		Horizon:     req.HorizonDays,
		Criticality: product.Criticality,
	})
	if err != nil {
		return nil, err
	}

	category := string(vertical)
	components := map[string][]float64{
		ensemble.ComponentTemporal: temporal,
		ensemble.ComponentExternal: ensemble.ExternalComponent(history, factors, req.HorizonDays, func(f domain.FactorSnapshot) float64 {
			return s.factors.ImpactScore(f, category)
		}),
		ensemble.ComponentProduct: ensemble.ProductComponent(history, req.HorizonDays),
		ensemble.ComponentMarket:  ensemble.MarketComponent(history, factors, req.HorizonDays),
	}

	points, err := ensemble.Blend(components, s.weights.Snapshot(), start, req.HorizonDays)
	if err != nil {
		return nil, err
	}

	report, _ := model.Accuracy()
	result := &domain.ForecastResult{
		ProductID: req.ProductID,
		Forecast:  points,
		ModelUsed: model.Name(),
		Accuracy:  forecast.AccuracyOf(report),
		MAPE:      report.MAPE,
		Insights:  s.buildInsights(history, factors, points, vertical, category, degraded),
		Degraded:  degraded,
	}
	if req.IncludeExternalFactors {
		result.ExternalFactors = factors
	}

	if err := s.cache.Set(ctx, req.ProductID, req.HorizonDays, vertical, req.Location, req.IncludeExternalFactors, result); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}

	return result, nil
}

// fetchFactors pulls external signals, falling back to the deterministic
// defaults when the adapter cannot deliver.
func (s *ForecastService) fetchFactors(ctx context.Context, location string, from, to time.Time) ([]domain.FactorSnapshot, bool) {
	factors, err := s.factors.Fetch(ctx, location, from, to)
	if err != nil {
		log.Warn().Err(err).Str("location", location).Msg("forecast: factor fetch failed, using fallback")
		return external.FallbackSnapshots(from, to), true
	}

	for _, f := range factors {
		if f.Fallback {
			return factors, true
		}
	}
	return factors, false
}

// ModelAccuracy returns the training reports of every trained model.
func (s *ForecastService) ModelAccuracy() []domain.AccuracyReport {
	return s.registry.Reports()
}

func (s *ForecastService) buildInsights(history []domain.SalesObservation, factors []domain.FactorSnapshot, points []domain.ForecastPoint, vertical domain.Vertical, category string, degraded bool) []string {
	insights := make([]string, 0, 4)

	slope := forecast.TrendSlope(history)
	base := forecast.Baseline(history)
	switch {
	case base > 0 && slope > 0.01*base:
		insights = append(insights, "demand trend rising over the recent history window")
	case base > 0 && slope < -0.01*base:
		insights = append(insights, "demand trend declining over the recent history window")
	default:
		insights = append(insights, "demand trend stable over the recent history window")
	}

	if vertical == domain.VerticalApparel {
		stage := forecast.NewFashionModel().Stage(history)
		insights = append(insights, fmt.Sprintf("product lifecycle stage: %s", stage))
	}

	if len(factors) > 0 {
		impact := s.factors.ImpactScore(factors[0], category)
		switch {
		case impact > 0.1:
			insights = append(insights, "external conditions currently favor demand")
		case impact < -0.1:
			insights = append(insights, "external conditions currently suppress demand")
		}
	}

	if degraded {
		insights = append(insights, "external signals unavailable, forecast uses fallback factors with reduced confidence")
	}

	if len(points) > 0 && points[len(points)-1].Confidence <= 0.55 {
		insights = append(insights, "confidence decays toward the end of the horizon, treat tail estimates as indicative")
	}

	return insights
}
