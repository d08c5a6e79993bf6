// internal/forecast/synthetic.go
package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// SyntheticGenerator produces reproducible demo catalogs and sales history.
// All randomness flows through the explicitly seeded generator so seeds and
// tests are deterministic.
type SyntheticGenerator struct {
	rng *rand.Rand
}

func NewSyntheticGenerator(seed int64) *SyntheticGenerator {
	return &SyntheticGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Catalog generates n products spread across the three verticals.
func (g *SyntheticGenerator) Catalog(n int) []domain.Product {
	verticals := []domain.Vertical{domain.VerticalGeneral, domain.VerticalApparel, domain.VerticalIndustrial}
	criticalities := []domain.Criticality{domain.CriticalityStandard, domain.CriticalityImportant, domain.CriticalityCritical}

	created := time.Now().UTC().Truncate(24 * time.Hour)
	products := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		v := verticals[i%len(verticals)]
		products = append(products, domain.Product{
			ID:              fmt.Sprintf("SKU-%04d", i+1),
			Name:            fmt.Sprintf("Product %04d", i+1),
			Vertical:        v,
			Criticality:     criticalities[g.rng.Intn(len(criticalities))],
			LeadTimeDays:    3 + g.rng.Intn(18),
			UnitCost:        5 + g.rng.Float64()*95,
			HoldingCostRate: 0.1 + g.rng.Float64()*0.2,
			CreatedAt:       created,
		})
	}
	return products
}

// History generates days of daily sales for a product, shaped by its
// vertical so the matching model has signal to pick up.
func (g *SyntheticGenerator) History(p domain.Product, days int, end time.Time) []domain.SalesObservation {
	base := 20 + g.rng.Float64()*80
	trend := (g.rng.Float64() - 0.3) * 0.2
	price := p.UnitCost * (1.2 + g.rng.Float64()*0.8)

	series := make([]domain.SalesObservation, 0, days)
	for i := 0; i < days; i++ {
		t := float64(i)
		qty := base + trend*t

		switch p.Vertical {
		case domain.VerticalApparel:
			qty += 0.25 * base * math.Cos(2*math.Pi*t/fashionCyclePeriod)
			qty += 0.15 * base * math.Sin(2*math.Pi*t/fashionSeasonalPeriod)
		case domain.VerticalIndustrial:
			qty += 0.2 * base * math.Sin(2*math.Pi*t/projectCyclePeriod)
			if g.rng.Float64() < maintenanceSpikeProb {
				qty += maintenanceSpikeUnits
			}
		default:
			qty += 0.2 * base * math.Sin(2*math.Pi*t/temporalSeasonPeriod)
		}

		qty += g.rng.NormFloat64() * 0.08 * base
		if qty < 0 {
			qty = 0
		}

		series = append(series, domain.SalesObservation{
			Date:      end.AddDate(0, 0, i-days+1),
			Quantity:  math.Round(qty),
			UnitPrice: price,
		})
	}
	return series
}
