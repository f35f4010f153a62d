package roi

import (
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
)

// Metrics is the ROI report for one project. Field names are persisted by
// callers and must stay stable.
type Metrics struct {
	TotalInvestment            float64                   `json:"totalInvestment"`
	TotalMonetaryValue         float64                   `json:"totalMonetaryValue"`
	TotalAnnualMonetaryValue   float64                   `json:"totalAnnualMonetaryValue"`
	TotalFinancialEffects      float64                   `json:"totalFinancialEffects"`
	TotalRedistributionEffects float64                   `json:"totalRedistributionEffects"`
	TotalQualitativeEffects    float64                   `json:"totalQualitativeEffects"`
	EconomicROI                float64                   `json:"economicROI"`
	QualitativeROI             float64                   `json:"qualitativeROI"`
	CombinedROI                float64                   `json:"combinedROI"`
	PaybackPeriod              float64                   `json:"paybackPeriod"`
	FinancialEffects           []ValuedEffect            `json:"financialEffects"`
	RedistributionEffects      []ValuedEffect            `json:"redistributionEffects"`
	QualitativeEffects         []QualitativeEffect       `json:"qualitativeEffects"`
	DimensionBreakdown         map[string]DimensionValue `json:"dimensionBreakdown"`
	Summary                    Summary                   `json:"summary"`
}

// ValuedEffect is one financial or redistribution effect after valuation.
type ValuedEffect struct {
	ValueDimension     string          `json:"valueDimension"`
	ValueUnit          model.ValueUnit `json:"valueUnit"`
	AnnualValue        float64         `json:"annualValue"`
	AnnualizationYears float64         `json:"annualizationYears"`
	TotalValue         float64         `json:"totalValue"`
}

// QualitativeEffect is one rated effect after valuation.
type QualitativeEffect struct {
	ValueDimension        string   `json:"valueDimension"`
	Factor                string   `json:"factor"`
	CurrentRating         float64  `json:"currentRating"`
	TargetRating          float64  `json:"targetRating"`
	Improvement           float64  `json:"improvement"`
	ImprovementPercentage float64  `json:"improvementPercentage"`
	AnnualizationYears    float64  `json:"annualizationYears"`
	MonetaryEstimate      *float64 `json:"monetaryEstimate,omitempty"`
	TotalValue            float64  `json:"totalValue"`
}

// DimensionValue aggregates the effects reported under one value dimension.
type DimensionValue struct {
	TotalValue     float64 `json:"totalValue"`
	QualitativeROI float64 `json:"qualitativeROI"`
	EffectCount    int     `json:"effectCount"`
}

// Summary gives counts and ROI bounds at a glance.
type Summary struct {
	TotalEffects        int      `json:"totalEffects"`
	QualitativeCount    int      `json:"qualitativeCount"`
	FinancialCount      int      `json:"financialCount"`
	RedistributionCount int      `json:"redistributionCount"`
	DimensionCount      int      `json:"dimensionCount"`
	Dimensions          []string `json:"dimensions"`
	HighestROI          float64  `json:"highestROI"`
	LowestROI           float64  `json:"lowestROI"`
}

// Empty returns all-zero metrics with non-nil collections.
func Empty() Metrics {
	return Metrics{
		FinancialEffects:      []ValuedEffect{},
		RedistributionEffects: []ValuedEffect{},
		QualitativeEffects:    []QualitativeEffect{},
		DimensionBreakdown:    map[string]DimensionValue{},
		Summary:               Summary{Dimensions: []string{}},
	}
}
