package finance

import (
	"encoding/json"
	"testing"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualValue(t *testing.T) {
	tests := []struct {
		name     string
		details  model.FinancialDetails
		expected float64
	}{
		{
			name: "Hours explicit total per month",
			details: model.FinancialDetails{
				ValueUnit:    model.ValueUnitHours,
				HoursDetails: &model.FinancialHours{Hours: 100, HourlyRate: 500, Timescale: "per_month"},
			},
			expected: 600000,
		},
		{
			name: "Hours explicit total wins over per-person",
			details: model.FinancialDetails{
				ValueUnit: model.ValueUnitHours,
				HoursDetails: &model.FinancialHours{
					Hours: 10, TimePerPerson: 2, AffectedPeople: 100, HourlyRate: 100, Timescale: "per_year",
				},
			},
			expected: 1000,
		},
		{
			name: "Hours per-person fallback",
			details: model.FinancialDetails{
				ValueUnit: model.ValueUnitHours,
				HoursDetails: &model.FinancialHours{
					TimePerPerson: 2, AffectedPeople: 100, HourlyRate: 100, Timescale: "per_year",
				},
			},
			expected: 20000,
		},
		{
			name: "Currency per year is unscaled",
			details: model.FinancialDetails{
				ValueUnit:       model.ValueUnitCurrency,
				CurrencyDetails: &model.FinancialCurrency{Amount: 45000, Timescale: "per_year"},
			},
			expected: 45000,
		},
		{
			name: "Currency one time is raw amount",
			details: model.FinancialDetails{
				ValueUnit:       model.ValueUnitCurrency,
				CurrencyDetails: &model.FinancialCurrency{Amount: 45000, Timescale: "one_time"},
			},
			expected: 45000,
		},
		{
			name: "Currency per week",
			details: model.FinancialDetails{
				ValueUnit:       model.ValueUnitCurrency,
				CurrencyDetails: &model.FinancialCurrency{Amount: 1000, Timescale: "per_week"},
			},
			expected: 47000,
		},
		{
			name: "Percentage",
			details: model.FinancialDetails{
				ValueUnit:         model.ValueUnitPercentage,
				PercentageDetails: &model.FinancialPercentage{Percentage: 10, BaseValue: 200000, Timescale: "per_year"},
			},
			expected: 20000,
		},
		{
			name: "Percentage per month",
			details: model.FinancialDetails{
				ValueUnit:         model.ValueUnitPercentage,
				PercentageDetails: &model.FinancialPercentage{Percentage: 2.5, BaseValue: 80000, Timescale: "per_month"},
			},
			expected: 24000,
		},
		{
			name: "Count per day",
			details: model.FinancialDetails{
				ValueUnit:    model.ValueUnitCount,
				CountDetails: &model.FinancialCount{Count: 2, ValuePerUnit: 50, Timescale: "day"},
			},
			expected: 23500,
		},
		{
			name: "Other per hour",
			details: model.FinancialDetails{
				ValueUnit:    model.ValueUnitOther,
				OtherDetails: &model.FinancialOther{Amount: 1, ValuePerUnit: 10, Timescale: "hour"},
			},
			expected: 18800,
		},
		{
			name:     "Unknown unit",
			details:  model.FinancialDetails{ValueUnit: "liters"},
			expected: 0,
		},
		{
			name:     "Missing sub-record",
			details:  model.FinancialDetails{ValueUnit: model.ValueUnitCount},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AnnualValue(tt.details), 1e-6)
		})
	}
}

func TestFinancialTotalScenarioA(t *testing.T) {
	details := model.FinancialDetails{
		ValueUnit:          model.ValueUnitHours,
		AnnualizationYears: 1,
		HoursDetails:       &model.FinancialHours{Hours: 100, HourlyRate: 500, Timescale: "per_month"},
	}

	annual, total := FinancialTotal(details)
	assert.Equal(t, 600000.0, annual)
	assert.Equal(t, 600000.0, total)

	details.AnnualizationYears = 3
	_, total = FinancialTotal(details)
	assert.Equal(t, 1800000.0, total)

	details.AnnualizationYears = 0
	_, total = FinancialTotal(details)
	assert.Equal(t, 600000.0, total, "annualizationYears defaults to 1")
}

func TestSavedAmount(t *testing.T) {
	tests := []struct {
		name     string
		details  model.RedistributionDetails
		expected float64
	}{
		{
			name: "Hours per person per week",
			details: model.RedistributionDetails{
				ValueUnit: model.ValueUnitHours,
				HoursDetails: &model.RedistributionHours{
					CurrentTimePerPerson: 40, NewTimePerPerson: 39, AffectedPeople: 30,
					HourlyRate: 500, Timescale: "per_week",
				},
			},
			expected: 705000,
		},
		{
			name: "Hours per-person wins over explicit totals",
			details: model.RedistributionDetails{
				ValueUnit: model.ValueUnitHours,
				HoursDetails: &model.RedistributionHours{
					CurrentTimePerPerson: 4, NewTimePerPerson: 2, AffectedPeople: 10,
					CurrentHours: 1000, NewHours: 0, HourlyRate: 100, Timescale: "per_year",
				},
			},
			expected: 2000,
		},
		{
			name: "Hours explicit fallback",
			details: model.RedistributionDetails{
				ValueUnit: model.ValueUnitHours,
				HoursDetails: &model.RedistributionHours{
					CurrentHours: 300, NewHours: 100, HourlyRate: 100, Timescale: "per_year",
				},
			},
			expected: 20000,
		},
		{
			name: "Currency per month",
			details: model.RedistributionDetails{
				ValueUnit:       model.ValueUnitCurrency,
				CurrencyDetails: &model.RedistributionCurrency{CurrentAmount: 10000, NewAmount: 7000, Timescale: "per_month"},
			},
			expected: 36000,
		},
		{
			name: "Currency one time",
			details: model.RedistributionDetails{
				ValueUnit:       model.ValueUnitCurrency,
				CurrencyDetails: &model.RedistributionCurrency{CurrentAmount: 10000, NewAmount: 7000, Timescale: "one_time"},
			},
			expected: 3000,
		},
		{
			name: "Percentage",
			details: model.RedistributionDetails{
				ValueUnit: model.ValueUnitPercentage,
				PercentageDetails: &model.RedistributionPercentage{
					CurrentPercentage: 20, NewPercentage: 15, BaseValue: 100000, Timescale: "per_year",
				},
			},
			expected: 5000,
		},
		{
			name: "Percentage increase per month",
			details: model.RedistributionDetails{
				ValueUnit: model.ValueUnitPercentage,
				PercentageDetails: &model.RedistributionPercentage{
					CurrentPercentage: 10, NewPercentage: 12.5, BaseValue: 40000, Timescale: "per_month",
				},
			},
			expected: -12000,
		},
		{
			name: "Count",
			details: model.RedistributionDetails{
				ValueUnit:    model.ValueUnitCount,
				CountDetails: &model.RedistributionCount{CurrentCount: 120, NewCount: 100, ValuePerUnit: 250, Timescale: "per_month"},
			},
			expected: 60000,
		},
		{
			name: "Other",
			details: model.RedistributionDetails{
				ValueUnit:    model.ValueUnitOther,
				OtherDetails: &model.RedistributionOther{CurrentValue: 5, NewValue: 3, ValuePerUnit: 1000, Timescale: "per_year"},
			},
			expected: 2000,
		},
		{
			name: "Negative saving when new exceeds current",
			details: model.RedistributionDetails{
				ValueUnit:    model.ValueUnitCount,
				CountDetails: &model.RedistributionCount{CurrentCount: 1, NewCount: 3, ValuePerUnit: 10, Timescale: "per_year"},
			},
			expected: -20,
		},
		{
			name:     "Unknown unit",
			details:  model.RedistributionDetails{ValueUnit: ""},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SavedAmount(tt.details), 1e-6)
		})
	}
}

// The week factor is 47 working weeks. A 52-week year would give 780000 for
// the same scenario.
func TestSavedAmountScenarioBPinsWeekMultiplier(t *testing.T) {
	raw := `{
		"valueUnit": "hours",
		"annualizationYears": "2",
		"hoursDetails": {
			"currentTimePerPerson": "40",
			"newTimePerPerson": 39,
			"affectedPeople": 30,
			"hourlyRate": 500,
			"timescale": "per_week"
		}
	}`
	var details model.RedistributionDetails
	require.NoError(t, json.Unmarshal([]byte(raw), &details))

	annual, total := RedistributionTotal(details)
	assert.Equal(t, 705000.0, annual)
	assert.NotEqual(t, 780000.0, annual)
	assert.Equal(t, 1410000.0, total)
}
