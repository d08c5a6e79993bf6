// internal/service/catalog_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/inventory"
	"github.com/retailpulse/forecast-engine/internal/repository"
)

// CatalogEntryRequest is one posted catalog row for ABC classification.
type CatalogEntryRequest struct {
	ProductID   string  `json:"product_id"`
	AnnualValue float64 `json:"annual_value"`
}

// CatalogService runs ABC value analysis, either over a posted catalog or
// over the products the repository knows about.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// ClassifyCatalog classifies a catalog the caller posts directly.
func (s *CatalogService) ClassifyCatalog(entries []CatalogEntryRequest) (*domain.ABCResult, error) {
	catalog := make([]inventory.CatalogEntry, len(entries))
	for i, e := range entries {
		if e.ProductID == "" {
			return nil, domain.NewValidationError("product_id", "must not be empty")
		}
		catalog[i] = inventory.CatalogEntry{ProductID: e.ProductID, AnnualValue: e.AnnualValue}
	}
	return inventory.ClassifyABC(catalog)
}

// ClassifyProducts derives annual values from stored sales history and
// classifies the whole known catalog.
func (s *CatalogService) ClassifyProducts(ctx context.Context) (*domain.ABCResult, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.NewNotFoundError("catalog", "products")
	}

	catalog := make([]inventory.CatalogEntry, 0, len(products))
	for _, p := range products {
		series, err := s.products.GetSalesHistory(ctx, p.ID, 0)
		if err != nil {
			log.Warn().Err(err).Str("product_id", p.ID).Msg("abc: skipping product without history")
			continue
		}
		catalog = append(catalog, inventory.CatalogEntry{
			ProductID:   p.ID,
			AnnualValue: inventory.AnnualValueOf(series),
		})
	}
	if len(catalog) == 0 {
		return nil, domain.NewNotFoundError("catalog", "sales history")
	}

	return inventory.ClassifyABC(catalog)
}
