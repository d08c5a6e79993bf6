package domain

// ForecastResult is the narrow result contract published back to callers.
type ForecastResult struct {
	ProductID       string           `json:"product_id"`
	Forecast        []ForecastPoint  `json:"forecast"`
	ModelUsed       string           `json:"model_used"`
	Accuracy        float64          `json:"accuracy"`
	MAPE            float64          `json:"mape"`
	Insights        []string         `json:"insights"`
	ExternalFactors []FactorSnapshot `json:"external_factors,omitempty"`

	// Degraded marks a success produced from fallback external signals.
	// Callers can tell it apart from both failure and full-confidence output.
	Degraded bool `json:"degraded"`
}
