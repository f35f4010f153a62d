// Package roi aggregates valued effects into a project ROI report.
package roi

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/finance"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/mathutil"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"go.uber.org/zap"
)

var (
	// ErrAggregation is returned when aggregation fails on malformed input.
	ErrAggregation = errors.New("roi aggregation failed")

	// ErrInvalidInvestment is returned for a NaN or infinite investment.
	ErrInvalidInvestment = errors.New("invalid total investment")
)

// Calculate builds the ROI report for a project's effect entries. A failure
// anywhere in the aggregation is returned as an error wrapping
// ErrAggregation together with empty metrics.
func Calculate(entries []model.EffectEntry, totalInvestment float64) (metrics Metrics, err error) {
	if !mathutil.Finite(totalInvestment) {
		return Empty(), fmt.Errorf("%w: %v", ErrInvalidInvestment, totalInvestment)
	}

	defer func() {
		if r := recover(); r != nil {
			metrics = Empty()
			err = fmt.Errorf("%w: %v", ErrAggregation, r)
		}
	}()

	metrics = aggregate(entries, totalInvestment)
	if !mathutil.Finite(metrics.TotalMonetaryValue) || !mathutil.Finite(metrics.TotalAnnualMonetaryValue) {
		return Empty(), fmt.Errorf("%w: non-finite monetary value", ErrAggregation)
	}
	return metrics, nil
}

// CalculateROI is Calculate with every error flattened to empty metrics.
// Callers cannot tell "no effects" apart from "bad input"; use Calculate
// when the difference matters.
func CalculateROI(entries []model.EffectEntry, totalInvestment float64) Metrics {
	metrics, err := Calculate(entries, totalInvestment)
	if err != nil {
		return Empty()
	}
	return metrics
}

func aggregate(entries []model.EffectEntry, totalInvestment float64) Metrics {
	m := Empty()
	m.TotalInvestment = totalInvestment

	for _, entry := range entries {
		qualitative := entry.CountsQualitative()
		quantitative := entry.CountsQuantitative()
		if !qualitative && !quantitative {
			continue
		}

		dimension := strings.TrimSpace(entry.ValueDimension)
		dim := m.DimensionBreakdown[dimension]
		dim.EffectCount++
		m.Summary.TotalEffects++

		if qualitative {
			q := *entry.QualitativeDetails
			effect := QualitativeEffect{
				ValueDimension:        dimension,
				Factor:                q.Factor,
				CurrentRating:         model.Value(q.CurrentRating),
				TargetRating:          model.Value(q.TargetRating),
				Improvement:           q.Improvement(),
				ImprovementPercentage: q.ImprovementPercentage(),
				AnnualizationYears:    q.Years(),
			}
			if q.MonetaryEstimate != nil {
				estimate := model.Value(q.MonetaryEstimate)
				effect.MonetaryEstimate = &estimate
				effect.TotalValue = estimate * effect.AnnualizationYears

				m.TotalMonetaryValue += effect.TotalValue
				m.TotalAnnualMonetaryValue += estimate
				m.TotalQualitativeEffects += effect.TotalValue
				dim.TotalValue += effect.TotalValue
			}
			// Last write wins when a dimension recurs.
			dim.QualitativeROI = effect.ImprovementPercentage

			m.QualitativeEffects = append(m.QualitativeEffects, effect)
			m.Summary.QualitativeCount++
		}

		if quantitative {
			q := *entry.QuantitativeDetails
			switch q.EffectType {
			case model.EffectTypeFinancial:
				details := *q.FinancialDetails
				annual, total := finance.FinancialTotal(details)
				m.FinancialEffects = append(m.FinancialEffects, ValuedEffect{
					ValueDimension:     dimension,
					ValueUnit:          details.ValueUnit,
					AnnualValue:        annual,
					AnnualizationYears: details.Years(),
					TotalValue:         total,
				})
				m.TotalFinancialEffects += total
				m.TotalMonetaryValue += total
				m.TotalAnnualMonetaryValue += annual
				dim.TotalValue += total
				m.Summary.FinancialCount++
			case model.EffectTypeRedistribution:
				details := *q.RedistributionDetails
				annual, total := finance.RedistributionTotal(details)
				m.RedistributionEffects = append(m.RedistributionEffects, ValuedEffect{
					ValueDimension:     dimension,
					ValueUnit:          details.ValueUnit,
					AnnualValue:        annual,
					AnnualizationYears: details.Years(),
					TotalValue:         total,
				})
				m.TotalRedistributionEffects += total
				m.TotalMonetaryValue += total
				m.TotalAnnualMonetaryValue += annual
				dim.TotalValue += total
				m.Summary.RedistributionCount++
			default:
			}
		}

		m.DimensionBreakdown[dimension] = dim
	}

	m.EconomicROI = economicROI(m.TotalMonetaryValue, totalInvestment)
	m.QualitativeROI = qualitativeROI(m.DimensionBreakdown)
	m.CombinedROI = combinedROI(m.EconomicROI, m.QualitativeROI)
	if m.TotalAnnualMonetaryValue > 0 && totalInvestment > 0 {
		m.PaybackPeriod = totalInvestment / m.TotalAnnualMonetaryValue
	}

	m.Summary.Dimensions = sortedDimensions(m.DimensionBreakdown)
	m.Summary.DimensionCount = len(m.Summary.Dimensions)
	m.Summary.HighestROI = math.Max(m.EconomicROI, math.Max(m.QualitativeROI, m.CombinedROI))
	m.Summary.LowestROI = math.Min(m.EconomicROI, math.Min(m.QualitativeROI, m.CombinedROI))

	return m
}

func economicROI(value, investment float64) float64 {
	if investment <= 0 {
		return 0
	}
	return (value - investment) / investment * 100
}

// qualitativeROI averages the positive per-dimension qualitative ROIs.
// Dimensions are visited in sorted order so the float sum is reproducible.
func qualitativeROI(breakdown map[string]DimensionValue) float64 {
	var positives []float64
	for _, dimension := range sortedDimensions(breakdown) {
		if v := breakdown[dimension].QualitativeROI; v > 0 {
			positives = append(positives, v)
		}
	}
	return mathutil.Mean(positives)
}

func combinedROI(economic, qualitative float64) float64 {
	switch {
	case economic > 0 && qualitative > 0:
		return (economic + qualitative) / 2
	case economic != 0:
		return economic
	default:
		return qualitative
	}
}

func sortedDimensions(breakdown map[string]DimensionValue) []string {
	dimensions := make([]string, 0, len(breakdown))
	for dimension := range breakdown {
		dimensions = append(dimensions, dimension)
	}
	sort.Strings(dimensions)
	return dimensions
}

// Aggregator wraps Calculate with logging and a strict/fail-safe switch.
type Aggregator struct {
	logger *zap.Logger
	strict bool
}

// NewAggregator creates an aggregator. With strict unset, failures are
// logged and flattened to empty metrics.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewAggregator(logger *zap.Logger, strict bool) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger, strict: strict}
}

// Aggregate computes the ROI report for entries against totalInvestment.
func (a *Aggregator) Aggregate(entries []model.EffectEntry, totalInvestment float64) (Metrics, error) {
	metrics, err := Calculate(entries, totalInvestment)
	if err != nil {
		a.logger.Warn("roi aggregation failed",
			zap.String("op", "roi.Aggregate"),
			zap.Bool("strict", a.strict),
			zap.Int("entries", len(entries)),
			zap.Error(err),
		)
		if a.strict {
			return metrics, err
		}
		return Empty(), nil
	}

	a.logger.Debug("roi aggregated",
		zap.String("op", "roi.Aggregate"),
		zap.Int("entries", len(entries)),
		zap.Int("counted", metrics.Summary.TotalEffects),
		zap.Float64("totalMonetaryValue", metrics.TotalMonetaryValue),
		zap.Float64("economicROI", metrics.EconomicROI),
	)
	return metrics, nil
}
