// Package testutil provides common fixtures for testing.
package testutil

import (
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
)

// FinancialHoursEffect builds a financial effect valued in hours.
func FinancialHoursEffect(dimension string, hours, hourlyRate float64, scale string, years float64) model.EffectEntry {
	return model.EffectEntry{
		ValueDimension:  dimension,
		HasQuantitative: true,
		QuantitativeDetails: &model.QuantitativeDetails{
			EffectType: model.EffectTypeFinancial,
			FinancialDetails: &model.FinancialDetails{
				ValueUnit:          model.ValueUnitHours,
				AnnualizationYears: model.Number(years),
				HoursDetails: &model.FinancialHours{
					Hours:      model.Number(hours),
					HourlyRate: model.Number(hourlyRate),
					Timescale:  scale,
				},
			},
		},
	}
}

// FinancialCurrencyEffect builds a financial effect valued as a plain amount.
func FinancialCurrencyEffect(dimension string, amount float64, scale string, years float64) model.EffectEntry {
	return model.EffectEntry{
		ValueDimension:  dimension,
		HasQuantitative: true,
		QuantitativeDetails: &model.QuantitativeDetails{
			EffectType: model.EffectTypeFinancial,
			FinancialDetails: &model.FinancialDetails{
				ValueUnit:          model.ValueUnitCurrency,
				AnnualizationYears: model.Number(years),
				CurrencyDetails: &model.FinancialCurrency{
					Amount:    model.Number(amount),
					Timescale: scale,
				},
			},
		},
	}
}

// RedistributionHoursEffect builds a before/after time saving expressed per person.
func RedistributionHoursEffect(dimension string, currentPerPerson, newPerPerson, people, hourlyRate float64, scale string) model.EffectEntry {
	return model.EffectEntry{
		ValueDimension:  dimension,
		HasQuantitative: true,
		QuantitativeDetails: &model.QuantitativeDetails{
			EffectType: model.EffectTypeRedistribution,
			RedistributionDetails: &model.RedistributionDetails{
				ValueUnit: model.ValueUnitHours,
				HoursDetails: &model.RedistributionHours{
					CurrentTimePerPerson: model.Number(currentPerPerson),
					NewTimePerPerson:     model.Number(newPerPerson),
					AffectedPeople:       model.Number(people),
					HourlyRate:           model.Number(hourlyRate),
					Timescale:            scale,
				},
			},
		},
	}
}

// QualitativeEffect builds a rated effect. A nil estimate leaves
// monetaryEstimate unset.
func QualitativeEffect(dimension string, current, target float64, estimate *float64, years float64) model.EffectEntry {
	details := &model.QualitativeDetails{
		Factor:             dimension,
		CurrentRating:      model.Ptr(current),
		TargetRating:       model.Ptr(target),
		AnnualizationYears: model.Number(years),
	}
	if estimate != nil {
		details.MonetaryEstimate = model.Ptr(*estimate)
	}
	return model.EffectEntry{
		ValueDimension:     dimension,
		HasQualitative:     true,
		QualitativeDetails: details,
	}
}

// FixedCost builds a fixed-amount cost entry.
func FixedCost(amount float64) model.CostEntry {
	return model.CostEntry{
		CostUnit:    model.CostUnitFixed,
		CostDetails: model.CostDetails{Fixed: &model.FixedCost{FixedAmount: model.Number(amount)}},
	}
}

// HoursCost builds an hours x rate cost entry.
func HoursCost(hours, hourlyRate float64) model.CostEntry {
	return model.CostEntry{
		CostUnit: model.CostUnitHours,
		CostDetails: model.CostDetails{Hours: &model.HoursCost{
			Hours:      model.Number(hours),
			HourlyRate: model.Number(hourlyRate),
		}},
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
