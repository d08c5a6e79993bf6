// internal/domain/models.go
package domain

import "time"

// SalesObservation is a single day of sales history for one product.
// Sequences are chronological with no duplicate dates per product.
type SalesObservation struct {
	Date      time.Time `json:"date" db:"sale_date"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
}

// Product is the immutable reference data for one optimization run.
type Product struct {
	ID              string      `json:"id" db:"id"`
	Name            string      `json:"name" db:"name"`
	Vertical        Vertical    `json:"vertical" db:"vertical"`
	Criticality     Criticality `json:"criticality" db:"criticality"`
	LeadTimeDays    int         `json:"lead_time_days" db:"lead_time_days"`
	UnitCost        float64     `json:"unit_cost" db:"unit_cost"`
	HoldingCostRate float64     `json:"holding_cost_rate" db:"holding_cost_rate"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// FactorSnapshot carries the external signals for one forecast date.
// It is never nil: when upstream data is unavailable the adapter substitutes
// deterministic defaults and sets Fallback.
type FactorSnapshot struct {
	Date           time.Time `json:"date"`
	Temperature    float64   `json:"temperature"`
	Precipitation  float64   `json:"precipitation"`
	GDPGrowth      float64   `json:"gdp_growth"`
	Inflation      float64   `json:"inflation"`
	Unemployment   float64   `json:"unemployment"`
	SearchInterest float64   `json:"search_interest"`
	Sentiment      float64   `json:"sentiment"`
	Fallback       bool      `json:"fallback"`
}

// ForecastPoint is one step of a blended forecast. Immutable once emitted.
type ForecastPoint struct {
	Date              time.Time `json:"date"`
	PredictedQuantity float64   `json:"predicted_quantity"`
	Confidence        float64   `json:"confidence"`
	LowerBound        float64   `json:"lower_bound"`
	UpperBound        float64   `json:"upper_bound"`
}

// Action is the operational decision attached to a recommendation.
type Action string

const (
	ActionReorder     Action = "REORDER"
	ActionReduce      Action = "REDUCE"
	ActionMaintain    Action = "MAINTAIN"
	ActionPromote     Action = "PROMOTE"
	ActionDiscontinue Action = "DISCONTINUE"
)

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ExpectedImpact estimates the effect of following a recommendation.
type ExpectedImpact struct {
	CostSavings             float64 `json:"cost_savings"`
	ServiceLevelImprovement float64 `json:"service_level_improvement"`
	Description             string  `json:"description,omitempty"`
}

// Recommendation is the output of one inventory optimization run.
// It is stateless: recomputed per request, never mutated.
type Recommendation struct {
	ProductID      string         `json:"product_id,omitempty"`
	Action         Action         `json:"action"`
	Quantity       float64        `json:"quantity,omitempty"`
	Priority       Priority       `json:"priority"`
	Confidence     float64        `json:"confidence"`
	SafetyStock    float64        `json:"safety_stock"`
	ReorderPoint   float64        `json:"reorder_point"`
	EOQ            float64        `json:"eoq"`
	StockoutRisk   float64        `json:"stockout_risk"`
	ExpectedImpact ExpectedImpact `json:"expected_impact"`
}

// ABCClass is the value tier assigned by ABC analysis.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// ABCItem is one catalog entry ranked by annual value contribution.
type ABCItem struct {
	ProductID       string   `json:"product_id"`
	AnnualValue     float64  `json:"annual_value"`
	ValueShare      float64  `json:"value_share"`
	CumulativeShare float64  `json:"cumulative_share"`
	Class           ABCClass `json:"class"`
}

// ABCResult partitions a full catalog into the three value tiers.
type ABCResult struct {
	Items      []ABCItem `json:"items"`
	CountA     int       `json:"count_a"`
	CountB     int       `json:"count_b"`
	CountC     int       `json:"count_c"`
	TotalValue float64   `json:"total_value"`
}

// AccuracyReport summarises a model's held-out backtest performance.
type AccuracyReport struct {
	Model     string    `json:"model"`
	R2        float64   `json:"r2"`
	MAPE      float64   `json:"mape"`
	MAE       float64   `json:"mae"`
	RMSE      float64   `json:"rmse"`
	Samples   int       `json:"samples"`
	TrainedAt time.Time `json:"trained_at"`
}
