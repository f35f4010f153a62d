package finance

import (
	"math"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/mathutil"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/timescale"
)

// AnnualValue converts an absolute (financial) effect into a yearly value.
func AnnualValue(details model.FinancialDetails) float64 {
	switch details.ValueUnit {
	case model.ValueUnitHours:
		d := details.HoursDetails
		if d == nil {
			return 0
		}
		// The explicit total wins over the per-person breakdown here.
		// SavedAmount deliberately resolves hours the other way round.
		hours := d.Hours.Float()
		if hours == 0 {
			hours = d.TimePerPerson.Float() * d.AffectedPeople.Float()
		}
		return hours * d.HourlyRate.Float() * timescale.Multiplier(d.Timescale)
	case model.ValueUnitCurrency:
		d := details.CurrencyDetails
		if d == nil {
			return 0
		}
		return currencyValue(d.Amount.Float(), d.Timescale)
	case model.ValueUnitPercentage:
		d := details.PercentageDetails
		if d == nil {
			return 0
		}
		return mathutil.ApplyPercentage(d.BaseValue.Float(), d.Percentage.Float()) * timescale.Multiplier(d.Timescale)
	case model.ValueUnitCount:
		d := details.CountDetails
		if d == nil {
			return 0
		}
		return d.Count.Float() * d.ValuePerUnit.Float() * timescale.Multiplier(d.Timescale)
	case model.ValueUnitOther:
		d := details.OtherDetails
		if d == nil {
			return 0
		}
		return d.Amount.Float() * d.ValuePerUnit.Float() * timescale.Multiplier(d.Timescale)
	default:
		return 0
	}
}

// FinancialTotal returns the annual value and the lifetime value
// (annual x annualizationYears) of a financial effect.
func FinancialTotal(details model.FinancialDetails) (annual, total float64) {
	annual = AnnualValue(details)
	return annual, annual * details.Years()
}

// SavedAmount converts a before/after (redistribution) effect into the
// yearly value of the difference.
func SavedAmount(details model.RedistributionDetails) float64 {
	switch details.ValueUnit {
	case model.ValueUnitHours:
		d := details.HoursDetails
		if d == nil {
			return 0
		}
		current := resolveHours(d.CurrentTimePerPerson, d.AffectedPeople, d.CurrentHours)
		next := resolveHours(d.NewTimePerPerson, d.AffectedPeople, d.NewHours)
		return (current - next) * d.HourlyRate.Float() * timescale.Multiplier(d.Timescale)
	case model.ValueUnitCurrency:
		d := details.CurrencyDetails
		if d == nil {
			return 0
		}
		return currencyValue(d.CurrentAmount.Float()-d.NewAmount.Float(), d.Timescale)
	case model.ValueUnitPercentage:
		d := details.PercentageDetails
		if d == nil {
			return 0
		}
		delta := d.CurrentPercentage.Float() - d.NewPercentage.Float()
		return mathutil.ApplyPercentage(d.BaseValue.Float(), delta) * timescale.Multiplier(d.Timescale)
	case model.ValueUnitCount:
		d := details.CountDetails
		if d == nil {
			return 0
		}
		return (d.CurrentCount.Float() - d.NewCount.Float()) * d.ValuePerUnit.Float() * timescale.Multiplier(d.Timescale)
	case model.ValueUnitOther:
		d := details.OtherDetails
		if d == nil {
			return 0
		}
		return (d.CurrentValue.Float() - d.NewValue.Float()) * d.ValuePerUnit.Float() * timescale.Multiplier(d.Timescale)
	default:
		return 0
	}
}

// RedistributionTotal returns the annual saving and the lifetime saving of a
// redistribution effect.
func RedistributionTotal(details model.RedistributionDetails) (annual, total float64) {
	annual = SavedAmount(details)
	return annual, annual * details.Years()
}

// resolveHours prefers perPerson x people when both are set and falls back
// to the explicit total otherwise.
func resolveHours(perPerson, people, explicit model.Number) float64 {
	if perPerson != 0 && people != 0 {
		return perPerson.Float() * people.Float()
	}
	return explicit.Float()
}

// currencyValue annualizes an amount, except one-time amounts which are
// taken as-is.
func currencyValue(amount float64, scale string) float64 {
	if timescale.IsOneTime(scale) {
		return amount
	}
	return amount * timescale.Multiplier(scale)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
