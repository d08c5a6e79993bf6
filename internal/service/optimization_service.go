// internal/service/optimization_service.go
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/forecast"
	"github.com/retailpulse/forecast-engine/internal/inventory"
	"github.com/retailpulse/forecast-engine/internal/repository"
)

// OptimizationRequest carries one replenishment decision request. The
// caller either posts its own demand forecast or sets HorizonDays to have
// the engine forecast internally.
type OptimizationRequest struct {
	ProductID      string                 `json:"product_id"`
	CurrentStock   float64                `json:"current_stock"`
	LeadTimeDays   int                    `json:"lead_time_days"`
	ServiceLevel   float64                `json:"service_level"`
	HoldingCost    float64                `json:"holding_cost"`
	StockoutCost   float64                `json:"stockout_cost"`
	OrderingCost   float64                `json:"ordering_cost"`
	DemandForecast []domain.ForecastPoint `json:"demand_forecast"`
	HorizonDays    int                    `json:"horizon_days"`
	Location       string                 `json:"location"`
}

// OptimizationService validates requests, sources the demand forecast and
// runs the deterministic optimizer.
type OptimizationService struct {
	products            repository.ProductRepository
	forecasts           *ForecastService
	registry            *forecast.Registry
	optimizer           *inventory.Optimizer
	defaultServiceLevel float64
}

func NewOptimizationService(products repository.ProductRepository, forecasts *ForecastService, registry *forecast.Registry, optimizer *inventory.Optimizer, defaultServiceLevel float64) *OptimizationService {
	if defaultServiceLevel <= 0 || defaultServiceLevel > 1 {
		defaultServiceLevel = 0.90
	}
	return &OptimizationService{
		products:            products,
		forecasts:           forecasts,
		registry:            registry,
		optimizer:           optimizer,
		defaultServiceLevel: defaultServiceLevel,
	}
}

// Optimize turns a demand forecast and stock position into a
// recommendation. Identical requests always produce identical output.
func (s *OptimizationService) Optimize(ctx context.Context, req OptimizationRequest) (*domain.Recommendation, error) {
	if req.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "must not be empty")
	}

	serviceLevel := req.ServiceLevel
	if serviceLevel == 0 {
		serviceLevel = s.defaultServiceLevel
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		// Unknown products are still optimizable when the caller supplies
		// the forecast and cost inputs itself.
		product = nil
		log.Debug().Str("product_id", req.ProductID).Msg("optimize: product not in catalog, using request inputs only")
	}

	demand := req.DemandForecast
	if len(demand) == 0 {
		if req.HorizonDays <= 0 {
			return nil, domain.NewValidationError("demand_forecast", "must not be empty")
		}
		if product == nil {
			return nil, domain.NewNotFoundError("product", req.ProductID)
		}

		model := s.registry.Select(product.Vertical)
		if _, trained := model.Accuracy(); !trained {
			return nil, fmt.Errorf("model %s: %w", model.Name(), domain.ErrModelNotTrained)
		}

		result, err := s.forecasts.Forecast(ctx, ForecastRequest{
			ProductID:   req.ProductID,
			HorizonDays: req.HorizonDays,
			Location:    req.Location,
		})
		if err != nil {
			return nil, err
		}
		demand = result.Forecast
	}

	leadTime := req.LeadTimeDays
	holdingCost := req.HoldingCost
	if product != nil {
		if leadTime <= 0 {
			leadTime = product.LeadTimeDays
		}
		if holdingCost <= 0 {
			holdingCost = product.UnitCost * product.HoldingCostRate
		}
	}

	return s.optimizer.Optimize(inventory.Input{
		ProductID:      req.ProductID,
		CurrentStock:   req.CurrentStock,
		DemandForecast: demand,
		LeadTimeDays:   leadTime,
		ServiceLevel:   serviceLevel,
		HoldingCost:    holdingCost,
		StockoutCost:   req.StockoutCost,
		OrderingCost:   req.OrderingCost,
	})
}
