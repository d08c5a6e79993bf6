package domain

import "strings"

// Vertical is the product vertical driving forecast model selection.
type Vertical string

const (
	VerticalIndustrial Vertical = "INDUSTRIAL"
	VerticalApparel    Vertical = "APPAREL"
	VerticalGeneral    Vertical = "GENERAL"
)

// Criticality ranks how operationally important a product is.
type Criticality string

const (
	CriticalityCritical  Criticality = "critical"
	CriticalityImportant Criticality = "important"
	CriticalityStandard  Criticality = "standard"
)

var verticalLabels = map[string]Vertical{
	"industrial":    VerticalIndustrial,
	"manufacturing": VerticalIndustrial,
	"apparel":       VerticalApparel,
	"fashion":       VerticalApparel,
	"general":       VerticalGeneral,
	"retail":        VerticalGeneral,
}

// ParseVertical returns the vertical for a given label (case-insensitive).
// Unknown or empty labels fall back to GENERAL.
func ParseVertical(label string) Vertical {
	if v, ok := verticalLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return v
	}

	return VerticalGeneral
}

// ParseCriticality returns the criticality for a given label (case-insensitive).
func ParseCriticality(label string) Criticality {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "critical":
		return CriticalityCritical
	case "important":
		return CriticalityImportant
	default:
		return CriticalityStandard
	}
}

// DemandMultiplier is the demand uplift applied by the manufacturing model.
func (c Criticality) DemandMultiplier() float64 {
	switch c {
	case CriticalityCritical:
		return 1.2
	case CriticalityImportant:
		return 1.1
	default:
		return 1.0
	}
}
