// Package scaling projects a project's ROI onto many adopting organizations.
//
// The projection models diminishing returns per adopter, four ways of
// pricing replication, optional benefit normalization by a driver metric,
// and heuristic realism checks. Every division is guarded so that finite
// input always yields finite output.
package scaling

import (
	"fmt"
	"math"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/constants"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/finance"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/mathutil"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/roi"
	"go.uber.org/zap"
)

// Defaults are the caps applied when the input carries no validation block.
type Defaults struct {
	MaxROI        float64
	MinCostPerOrg float64
}

// DefaultLimits returns the built-in caps.
func DefaultLimits() Defaults {
	return Defaults{MaxROI: constants.DefaultMaxROI, MinCostPerOrg: constants.DefaultMinCostPerOrg}
}

// ComputeScaledImpact projects base onto the organizations described by
// input using the built-in caps. costEntries and budget are only consulted
// when base carries no positive investment.
func ComputeScaledImpact(base roi.Metrics, costEntries []model.CostEntry, budget interface{}, input Input) Result {
	return compute(base, costEntries, budget, input, DefaultLimits())
}

func compute(base roi.Metrics, costEntries []model.CostEntry, budget interface{}, input Input, defaults Defaults) Result {
	resolved := resolve(input, defaults)

	baseInvestment := finiteOrZero(base.TotalInvestment)
	if baseInvestment <= 0 {
		baseInvestment = finance.TotalInvestment(costEntries, budget)
	}
	resolved.BaseInvestment = baseInvestment

	// Step 2: benefit per organization, optionally normalized.
	benefitPerOrg := finiteOrZero(base.TotalMonetaryValue)
	resolved.NormalizationFactor = 1
	if ratio, exponent, ok := normalization(input.Normalization); ok {
		resolved.NormalizationApplied = true
		resolved.NormalizationRatio = ratio
		resolved.NormalizationExponent = exponent
		resolved.NormalizationFactor = math.Pow(ratio, exponent)
		benefitPerOrg *= resolved.NormalizationFactor
	}

	// Step 3: diminishing returns per incremental adopter.
	totalBenefit := benefitPerOrg * geometricSum(resolved.ScalabilityCoefficient, resolved.AdoptedOrgs)

	// Step 4: organization #1 carries the real investment.
	replication := replicationCost(input.Replication, resolved.ReplicationMode, resolved.AdoptedOrgs-1, resolved.MinCostPerOrg)
	resolved.ReplicationCost = replication
	totalCost := baseInvestment + replication

	// Step 5
	economicROI := 0.0
	if totalCost > 0 {
		economicROI = (totalBenefit - totalCost) / totalCost * constants.PercentageMultiplier
	}
	clamped := mathutil.Clamp(economicROI, -resolved.MaxROI, resolved.MaxROI)
	roiClamped := clamped != economicROI
	economicROI = clamped

	// Step 6
	payback, years := paybackYears(base, resolved.AdoptedOrgs, totalBenefit, totalCost)
	resolved.ImplementationYears = years

	// Step 7
	benefitRatio := mathutil.SafeDivide(totalBenefit, base.TotalMonetaryValue)
	breakdown := make(map[string]ScaledDimension, len(base.DimensionBreakdown))
	for name, dim := range base.DimensionBreakdown {
		breakdown[name] = ScaledDimension{
			BaseValue:      dim.TotalValue,
			TotalValue:     dim.TotalValue * benefitRatio,
			QualitativeROI: dim.QualitativeROI,
			EffectCount:    dim.EffectCount,
		}
	}

	// Step 8
	validation := Validation{
		CostPerOrg:    mathutil.SafeDivide(totalCost, float64(resolved.AdoptedOrgs)),
		BenefitPerOrg: mathutil.SafeDivide(totalBenefit, float64(resolved.AdoptedOrgs)),
		IsRealistic:   economicROI < resolved.MaxROI && payback < constants.MaxPaybackYears,
		ROIClamped:    roiClamped,
	}
	validation.Warnings = warnings(resolved, validation, economicROI, payback)

	return Result{
		BaseROI: base,
		Scaling: resolved,
		KPIs: KPIs{
			TotalBenefit:  totalBenefit,
			TotalCost:     totalCost,
			EconomicROI:   economicROI,
			PaybackYears:  payback,
			BenefitPerOrg: benefitPerOrg,
		},
		DimensionBreakdown: breakdown,
		Validation:         validation,
	}
}

// resolve applies defaults and clamps to the raw input (step 1). Orgs is
// floored into [1, MaxOrgs]. The scalability coefficient defaults to 1 and is
// clamped to [0, 1].
func resolve(input Input, defaults Defaults) Resolved {
	orgs := int(mathutil.Clamp(math.Floor(finiteOrZero(input.Orgs.Float())), 1, constants.MaxOrgs))

	rate := mathutil.Clamp(finiteOrZero(input.AdoptionRatePct.Float())/constants.PercentageMultiplier, 0, 1)
	adopted := 0
	if rate > 0 {
		adopted = int(math.Round(float64(orgs) * rate))
		if adopted < 1 {
			adopted = 1
		}
		if adopted > orgs {
			adopted = orgs
		}
	}

	coefficient := constants.DefaultScalabilityCoefficient
	if input.ScalabilityCoefficient != nil && mathutil.Finite(input.ScalabilityCoefficient.Float()) {
		coefficient = mathutil.Clamp(input.ScalabilityCoefficient.Float(), 0, 1)
	}

	maxROI, minCost := defaults.MaxROI, defaults.MinCostPerOrg
	if input.Validation != nil {
		if v := finiteOrZero(input.Validation.MaxROI.Float()); v > 0 {
			maxROI = v
		}
		if v := finiteOrZero(input.Validation.MinCostPerOrg.Float()); v > 0 {
			minCost = v
		}
	}
	if maxROI <= 0 {
		maxROI = constants.DefaultMaxROI
	}
	if minCost < 0 {
		minCost = 0
	}

	return Resolved{
		Orgs:                   orgs,
		AdoptionRate:           rate,
		AdoptedOrgs:            adopted,
		ScalabilityCoefficient: coefficient,
		ReplicationMode:        input.Replication.Mode,
		MaxROI:                 maxROI,
		MinCostPerOrg:          minCost,
	}
}

// normalization returns the clamped metric ratio and the effective exponent.
// It reports false when normalization is disabled or invalid.
func normalization(n *Normalization) (ratio, exponent float64, ok bool) {
	if n == nil || !n.Enabled.Bool() {
		return 0, 0, false
	}
	baseMetric := finiteOrZero(n.BaseMetric.Float())
	if baseMetric <= 0 {
		return 0, 0, false
	}

	ratio = mathutil.Clamp(finiteOrZero(n.TargetMetric.Float())/baseMetric,
		constants.NormalizationRatioMin, constants.NormalizationRatioMax)

	exponent = 1
	if n.Exponent != nil {
		exponent = finiteOrZero(n.Exponent.Float())
	}
	exponent = mathutil.Clamp(exponent, constants.NormalizationExponentMin, constants.NormalizationExponentMax)

	switch n.DriverType {
	case DriverPopulation:
		if ratio > constants.PopulationDampingRatio {
			exponent = math.Min(exponent, constants.PopulationExponentCap)
		}
	case DriverUsers:
		if ratio > constants.UsersDampingRatio {
			exponent = math.Max(exponent, constants.UsersExponentFloor)
		}
	default:
	}
	return ratio, exponent, true
}

// geometricSum returns 1 + s + s² + ... over n terms.
func geometricSum(s float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if s == 1 {
		return float64(n)
	}
	return (1 - math.Pow(s, float64(n))) / (1 - s)
}

// replicationCost prices the n organizations after the first. Every per-org
// cost is floored; the sums are closed-form in n.
func replicationCost(r Replication, mode Mode, n int, floor float64) float64 {
	if n <= 0 {
		return 0
	}
	switch mode {
	case ModeHoursPerOrg:
		return flooredLinearSum(finiteOrZero(r.HoursPerOrg.Float()*r.HourlyRate.Float()), 0, floor, n)
	case ModeCostPerOrg:
		return flooredLinearSum(finiteOrZero(r.CostPerOrg.Float()), 0, floor, n)
	case ModeEconomiesOfScale:
		// max(min, base·max(0, 1-disc·step)) collapses to one linear term
		// floored at max(min, 0) when base is positive.
		minCost := math.Max(floor, math.Max(0, finiteOrZero(r.MinCostPerOrg.Float())))
		base := finiteOrZero(r.BaseCostPerOrg.Float())
		if base <= 0 {
			return float64(n) * minCost
		}
		return flooredLinearSum(base, finiteOrZero(-base*r.ScaleDiscountPct.Float()), minCost, n)
	case ModeComplexityIncrease:
		base := finiteOrZero(r.BaseCostPerOrg.Float())
		return flooredLinearSum(base, finiteOrZero(base*r.ComplexityIncreasePct.Float()), floor, n)
	default:
		return float64(n) * math.Max(floor, 0)
	}
}

// flooredLinearSum returns Σ max(floor, a+d·k) for k in [0, n).
func flooredLinearSum(a, d, floor float64, n int) float64 {
	last := float64(n - 1)
	lo, hi := 0.0, last
	switch {
	case d == 0:
		if a < floor {
			return float64(n) * floor
		}
		return float64(n) * a
	case d > 0:
		lo = mathutil.Clamp(math.Ceil((floor-a)/d), 0, last+1)
	default:
		hi = mathutil.Clamp(math.Floor((a-floor)/-d), -1, last)
	}

	count := hi - lo + 1
	if count <= 0 {
		return float64(n) * floor
	}
	above := count*a + d*(lo+hi)*count/2
	return above + (float64(n)-count)*floor
}

// paybackYears estimates the scaled payback period and the rollout length
// it assumed. The result never exceeds MaxPaybackYears.
func paybackYears(base roi.Metrics, adopted int, totalBenefit, totalCost float64) (float64, int) {
	payback := 0.0
	years := 0

	switch {
	case base.PaybackPeriod > 0 && base.TotalInvestment > 0:
		baseAnnual := base.TotalAnnualMonetaryValue
		if baseAnnual <= 0 {
			baseAnnual = base.TotalInvestment / base.PaybackPeriod
		}
		scaledAnnual := baseAnnual * mathutil.SafeDivide(totalBenefit, base.TotalMonetaryValue)

		if adopted > 0 {
			years = int(math.Ceil(float64(adopted) / constants.OrgsPerRolloutYear))
			average := scaledAnnual * rolloutShare(adopted, years)
			if average > 0 && totalCost > 0 {
				payback = totalCost / average
			}
		}
	case totalBenefit > totalCost && totalCost > 0:
		payback = totalCost / (totalBenefit / constants.EvenRealizationYears)
	default:
	}

	return math.Min(payback, constants.MaxPaybackYears), years
}

// rolloutShare is the mean over years of min(5k, adopted)/adopted, k = 1..years.
func rolloutShare(adopted, years int) float64 {
	if adopted <= 0 || years <= 0 {
		return 0
	}
	full := adopted / constants.OrgsPerRolloutYear
	if full > years {
		full = years
	}
	// Years 1..full ramp linearly; the rest run at full adoption.
	ramp := float64(constants.OrgsPerRolloutYear) * float64(full) * float64(full+1) / 2 / float64(adopted)
	return (ramp + float64(years-full)) / float64(years)
}

// warnings lists the heuristic findings in a fixed order.
func warnings(resolved Resolved, v Validation, economicROI, payback float64) []string {
	out := []string{}
	if v.ROIClamped {
		out = append(out, fmt.Sprintf("economic ROI clamped to ±%.0f%%", resolved.MaxROI))
	}
	if economicROI > constants.WarnROIThreshold {
		out = append(out, fmt.Sprintf("economic ROI of %.0f%% exceeds %.0f%%; verify benefit estimates", economicROI, constants.WarnROIThreshold))
	}
	if payback > constants.WarnPaybackYears {
		out = append(out, fmt.Sprintf("payback period of %.1f years exceeds %.0f years", payback, constants.WarnPaybackYears))
	}
	if resolved.NormalizationApplied && resolved.NormalizationRatio > constants.WarnNormalizationRatio {
		out = append(out, fmt.Sprintf("normalization ratio %.1f exceeds %.0f; benefit per organization may be overstated", resolved.NormalizationRatio, constants.WarnNormalizationRatio))
	}
	if resolved.AdoptedOrgs > 0 && v.CostPerOrg < constants.DefaultMinCostPerOrg {
		out = append(out, fmt.Sprintf("cost per organization %.0f is below %.0f", v.CostPerOrg, constants.DefaultMinCostPerOrg))
	}
	if resolved.Orgs > constants.WarnOrgCount {
		out = append(out, fmt.Sprintf("rollout to %d organizations exceeds %d; consider a phased estimate", resolved.Orgs, constants.WarnOrgCount))
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if !mathutil.Finite(v) {
		return 0
	}
	return v
}

// Engine runs projections with configured caps and logs each run.
type Engine struct {
	logger   *zap.Logger
	defaults Defaults
}

// NewEngine creates a scaling engine. Non-positive caps fall back to the
// built-in defaults.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger, defaults Defaults) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.MaxROI <= 0 {
		defaults.MaxROI = constants.DefaultMaxROI
	}
	if defaults.MinCostPerOrg <= 0 {
		defaults.MinCostPerOrg = constants.DefaultMinCostPerOrg
	}
	return &Engine{logger: logger, defaults: defaults}
}

// Compute projects base onto the organizations described by input.
func (e *Engine) Compute(base roi.Metrics, costEntries []model.CostEntry, budget interface{}, input Input) Result {
	result := compute(base, costEntries, budget, input, e.defaults)

	e.logger.Debug("scaled impact computed",
		zap.String("op", "scaling.Compute"),
		zap.Int("orgs", result.Scaling.Orgs),
		zap.Int("adopted", result.Scaling.AdoptedOrgs),
		zap.String("mode", string(result.Scaling.ReplicationMode)),
		zap.Float64("totalBenefit", result.KPIs.TotalBenefit),
		zap.Float64("totalCost", result.KPIs.TotalCost),
		zap.Float64("economicROI", result.KPIs.EconomicROI),
	)
	for _, w := range result.Validation.Warnings {
		e.logger.Info("scaled impact warning",
			zap.String("op", "scaling.Compute"),
			zap.String("warning", w),
		)
	}
	return result
}
