package scaling

import (
	"strings"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/roi"
)

// Mode selects how each additional adopting organization is priced.
type Mode string

const (
	ModeHoursPerOrg        Mode = "hours_per_org"
	ModeCostPerOrg         Mode = "cost_per_org"
	ModeEconomiesOfScale   Mode = "economies_of_scale"
	ModeComplexityIncrease Mode = "complexity_increase"
)

// UnmarshalText normalizes the mode token. Hyphens are accepted for
// underscores.
func (m *Mode) UnmarshalText(text []byte) error {
	token := strings.ToLower(strings.TrimSpace(string(text)))
	*m = Mode(strings.ReplaceAll(token, "-", "_"))
	return nil
}

// Driver names the metric used to normalize benefit per organization.
type Driver string

const (
	DriverPopulation Driver = "population"
	DriverUsers      Driver = "users"
)

// UnmarshalText normalizes the driver token.
func (d *Driver) UnmarshalText(text []byte) error {
	*d = Driver(strings.ToLower(strings.TrimSpace(string(text))))
	return nil
}

// Input is the scaling configuration supplied by the caller.
type Input struct {
	Orgs                   model.Number   `json:"orgs" yaml:"orgs" validate:"gte=1,lte=10000"`
	AdoptionRatePct        model.Number   `json:"adoptionRatePct" yaml:"adoptionRatePct" validate:"gte=0,lte=100"`
	ScalabilityCoefficient *model.Number  `json:"scalabilityCoefficient,omitempty" yaml:"scalabilityCoefficient" validate:"omitempty,gte=0,lte=1"`
	Replication            Replication    `json:"replication" yaml:"replication"`
	Normalization          *Normalization `json:"normalization,omitempty" yaml:"normalization" validate:"omitempty"`
	Validation             *Limits        `json:"validation,omitempty" yaml:"validation" validate:"omitempty"`
}

// Replication carries the parameters of every replication mode. Only the
// fields used by Mode are read.
type Replication struct {
	Mode                  Mode         `json:"mode" yaml:"mode" validate:"omitempty,oneof=hours_per_org cost_per_org economies_of_scale complexity_increase"`
	HoursPerOrg           model.Number `json:"hoursPerOrg" yaml:"hoursPerOrg" validate:"gte=0"`
	HourlyRate            model.Number `json:"hourlyRate" yaml:"hourlyRate" validate:"gte=0"`
	CostPerOrg            model.Number `json:"costPerOrg" yaml:"costPerOrg" validate:"gte=0"`
	BaseCostPerOrg        model.Number `json:"baseCostPerOrg" yaml:"baseCostPerOrg" validate:"gte=0"`
	ScaleDiscountPct      model.Number `json:"scaleDiscountPct" yaml:"scaleDiscountPct" validate:"gte=0"`
	MinCostPerOrg         model.Number `json:"minCostPerOrg" yaml:"minCostPerOrg" validate:"gte=0"`
	ComplexityIncreasePct model.Number `json:"complexityIncreasePct" yaml:"complexityIncreasePct" validate:"gte=0"`
}

// Normalization rescales benefit per organization by a driver metric ratio.
type Normalization struct {
	Enabled      model.Flag    `json:"enabled" yaml:"enabled"`
	DriverType   Driver        `json:"driverType" yaml:"driverType" validate:"omitempty,oneof=population users"`
	BaseMetric   model.Number  `json:"baseMetric" yaml:"baseMetric"`
	TargetMetric model.Number  `json:"targetMetric" yaml:"targetMetric"`
	Exponent     *model.Number `json:"exponent,omitempty" yaml:"exponent"`
}

// Limits overrides the validation caps.
type Limits struct {
	MaxROI        model.Number `json:"maxROI" yaml:"maxROI" validate:"gte=0"`
	MinCostPerOrg model.Number `json:"minCostPerOrg" yaml:"minCostPerOrg" validate:"gte=0"`
}

// Result is the projected multi-organization impact.
type Result struct {
	BaseROI            roi.Metrics                `json:"baseROI"`
	Scaling            Resolved                   `json:"scaling"`
	KPIs               KPIs                       `json:"kpis"`
	DimensionBreakdown map[string]ScaledDimension `json:"dimensionBreakdown"`
	Validation         Validation                 `json:"validation"`
}

// Resolved records the parameters the engine actually used after defaults
// and clamping.
type Resolved struct {
	Orgs                   int     `json:"orgs"`
	AdoptionRate           float64 `json:"adoptionRate"`
	AdoptedOrgs            int     `json:"adoptedOrgs"`
	ScalabilityCoefficient float64 `json:"scalabilityCoefficient"`
	ReplicationMode        Mode    `json:"replicationMode"`
	BaseInvestment         float64 `json:"baseInvestment"`
	ReplicationCost        float64 `json:"replicationCost"`
	NormalizationApplied   bool    `json:"normalizationApplied"`
	NormalizationRatio     float64 `json:"normalizationRatio"`
	NormalizationExponent  float64 `json:"normalizationExponent"`
	NormalizationFactor    float64 `json:"normalizationFactor"`
	ImplementationYears    int     `json:"implementationYears"`
	MaxROI                 float64 `json:"maxROI"`
	MinCostPerOrg          float64 `json:"minCostPerOrg"`
}

// KPIs are the headline figures of a scaled projection.
type KPIs struct {
	TotalBenefit  float64 `json:"totalBenefit"`
	TotalCost     float64 `json:"totalCost"`
	EconomicROI   float64 `json:"economicROI"`
	PaybackYears  float64 `json:"paybackYears"`
	BenefitPerOrg float64 `json:"benefitPerOrg"`
}

// ScaledDimension is a base dimension scaled by the benefit ratio.
type ScaledDimension struct {
	BaseValue      float64 `json:"baseValue"`
	TotalValue     float64 `json:"totalValue"`
	QualitativeROI float64 `json:"qualitativeROI"`
	EffectCount    int     `json:"effectCount"`
}

// Validation holds realism checks on the projection.
type Validation struct {
	CostPerOrg    float64  `json:"costPerOrg"`
	BenefitPerOrg float64  `json:"benefitPerOrg"`
	IsRealistic   bool     `json:"isRealistic"`
	ROIClamped    bool     `json:"roiClamped"`
	Warnings      []string `json:"warnings"`
}
