// Package finance converts cost and effect records into monetary values.
package finance

import (
	"encoding/json"
	"strings"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
)

// TotalInvestment sums itemized cost entries. When there are no entries the
// budget fallback (a string or a number) is parsed instead. Entries always
// take precedence, even when their sum is smaller than the budget.
func TotalInvestment(entries []model.CostEntry, budgetFallback interface{}) float64 {
	if len(entries) == 0 {
		return ParseBudget(budgetFallback)
	}

	total := 0.0
	for _, entry := range entries {
		total += EntryCost(entry)
	}
	return total
}

// EntryCost prices a single cost entry by its unit. Unrecognized units and
// missing detail records contribute 0.
func EntryCost(entry model.CostEntry) float64 {
	details := entry.CostDetails
	switch entry.CostUnit {
	case model.CostUnitHours:
		if details.Hours == nil {
			return 0
		}
		return details.Hours.Hours.Float() * details.Hours.HourlyRate.Float()
	case model.CostUnitFixed:
		if details.Fixed == nil {
			return 0
		}
		return details.Fixed.FixedAmount.Float()
	case model.CostUnitMonthly:
		if details.Monthly == nil {
			return 0
		}
		return details.Monthly.MonthlyAmount.Float() * details.Monthly.MonthlyDuration.Float()
	case model.CostUnitYearly:
		if details.Yearly == nil {
			return 0
		}
		return details.Yearly.YearlyAmount.Float() * details.Yearly.YearlyDuration.Float()
	default:
		return 0
	}
}

// ParseBudget converts a stored budget value to a float. Absent or
// unparsable values yield 0.
func ParseBudget(budget interface{}) float64 {
	switch v := budget.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case model.Number:
		return finiteOrZero(v.Float())
	case *model.Number:
		return finiteOrZero(model.Value(v))
	case json.Number:
		return model.ParseAmount(v.String())
	case string:
		return model.ParseAmount(v)
	case *string:
		if v == nil {
			return 0
		}
		return model.ParseAmount(*v)
	case []byte:
		return model.ParseAmount(strings.Trim(string(v), `"`))
	default:
		return 0
	}
}
