// internal/repository/product_repository.go
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/forecast"
)

// ProductRepository supplies the engine's read model: product reference
// data and historical sales series.
type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetSalesHistory(ctx context.Context, productID string, days int) ([]domain.SalesObservation, error)
	SaveProduct(ctx context.Context, p domain.Product) error
	SaveSalesHistory(ctx context.Context, productID string, series []domain.SalesObservation) error
}

// SyntheticRepository is an in-memory product store pre-populated from the
// seeded synthetic generator. It backs demo deployments and tests where no
// postgres is available.
type SyntheticRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	history  map[string][]domain.SalesObservation
	order    []string
}

// NewSyntheticRepository generates n products with historyDays of sales
// each. The same seed always yields the same catalog.
func NewSyntheticRepository(seed int64, n, historyDays int) *SyntheticRepository {
	gen := forecast.NewSyntheticGenerator(seed)
	repo := &SyntheticRepository{
		products: make(map[string]domain.Product),
		history:  make(map[string][]domain.SalesObservation),
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	for _, p := range gen.Catalog(n) {
		repo.products[p.ID] = p
		repo.history[p.ID] = gen.History(p, historyDays, end)
		repo.order = append(repo.order, p.ID)
	}
	return repo
}

func (r *SyntheticRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("product", id)
	}
	return &p, nil
}

func (r *SyntheticRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.products[id])
	}
	return out, nil
}

func (r *SyntheticRepository) GetSalesHistory(ctx context.Context, productID string, days int) ([]domain.SalesObservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	series, ok := r.history[productID]
	if !ok {
		return nil, domain.NewNotFoundError("product", productID)
	}
	if days > 0 && len(series) > days {
		series = series[len(series)-days:]
	}

	out := make([]domain.SalesObservation, len(series))
	copy(out, series)
	return out, nil
}

func (r *SyntheticRepository) SaveProduct(ctx context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.products[p.ID] = p
	return nil
}

func (r *SyntheticRepository) SaveSalesHistory(ctx context.Context, productID string, series []domain.SalesObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[productID]; !ok {
		return domain.NewNotFoundError("product", productID)
	}

	merged := append([]domain.SalesObservation(nil), series...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	r.history[productID] = merged
	return nil
}
