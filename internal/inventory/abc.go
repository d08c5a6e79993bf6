// internal/inventory/abc.go
package inventory

import (
	"sort"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// ABC cumulative value boundaries: A up to 80%, B up to 95%, C the rest.
const (
	classABoundary = 0.80
	classBBoundary = 0.95
)

// CatalogEntry is one product with its annual value contribution
// (typically price times annual quantity).
type CatalogEntry struct {
	ProductID   string
	AnnualValue float64
}

// ClassifyABC partitions a catalog into A/B/C tiers by cumulative value
// share. The sort is stable: ties keep their original catalog order. Every
// input appears exactly once in the output.
func ClassifyABC(catalog []CatalogEntry) (*domain.ABCResult, error) {
	if len(catalog) == 0 {
		return nil, domain.NewValidationError("catalog", "must not be empty")
	}

	ranked := make([]CatalogEntry, len(catalog))
	copy(ranked, catalog)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AnnualValue > ranked[j].AnnualValue
	})

	var total float64
	for _, e := range ranked {
		if e.AnnualValue < 0 {
			return nil, domain.NewValidationError("annual_value", "must not be negative")
		}
		total += e.AnnualValue
	}

	result := &domain.ABCResult{
		Items:      make([]domain.ABCItem, 0, len(ranked)),
		TotalValue: total,
	}

	cumulative := 0.0
	for _, e := range ranked {
		share := 0.0
		if total > 0 {
			share = e.AnnualValue / total
		}
		cumulative += share

		class := domain.ClassC
		switch {
		case total == 0:
			// A zero-value catalog has nothing worth prioritizing.
			class = domain.ClassC
		case cumulative <= classABoundary:
			class = domain.ClassA
		case cumulative <= classBBoundary:
			class = domain.ClassB
		}

		switch class {
		case domain.ClassA:
			result.CountA++
		case domain.ClassB:
			result.CountB++
		default:
			result.CountC++
		}

		result.Items = append(result.Items, domain.ABCItem{
			ProductID:       e.ProductID,
			AnnualValue:     e.AnnualValue,
			ValueShare:      share,
			CumulativeShare: cumulative,
			Class:           class,
		})
	}

	return result, nil
}

// AnnualValueOf derives a product's annual value from its sales history:
// revenue over the observed window scaled to a full year.
func AnnualValueOf(series []domain.SalesObservation) float64 {
	if len(series) == 0 {
		return 0
	}

	var revenue float64
	for _, obs := range series {
		revenue += obs.Quantity * obs.UnitPrice
	}

	days := series[len(series)-1].Date.Sub(series[0].Date).Hours()/24 + 1
	if days < 1 {
		days = float64(len(series))
	}
	return revenue * 365 / days
}
