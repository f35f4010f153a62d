package roi

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCalculateScenarioA(t *testing.T) {
	entries := []model.EffectEntry{testutil.FinancialHoursEffect("Tid", 100, 500, "per_month", 1)}

	m, err := Calculate(entries, 50000)
	require.NoError(t, err)

	assert.Equal(t, 600000.0, m.TotalMonetaryValue)
	assert.Equal(t, 600000.0, m.TotalFinancialEffects)
	assert.Equal(t, 600000.0, m.TotalAnnualMonetaryValue)
	assert.InDelta(t, 1100.0, m.EconomicROI, 1e-9)
	assert.InDelta(t, 1100.0, m.CombinedROI, 1e-9)
	assert.Equal(t, 0.0, m.QualitativeROI)
	assert.InDelta(t, 50000.0/600000.0, m.PaybackPeriod, 1e-12)
	require.Len(t, m.FinancialEffects, 1)
	assert.Equal(t, model.ValueUnitHours, m.FinancialEffects[0].ValueUnit)
	assert.Equal(t, 1, m.Summary.FinancialCount)
	assert.Equal(t, []string{"Tid"}, m.Summary.Dimensions)
	assert.Equal(t, 1100.0, math.Round(m.Summary.HighestROI))
	assert.Equal(t, 0.0, m.Summary.LowestROI)
}

func TestCalculateMixedEffects(t *testing.T) {
	entries := []model.EffectEntry{
		testutil.FinancialCurrencyEffect("Kostnad", 100000, "per_year", 2),
		testutil.RedistributionHoursEffect("Tid", 40, 39, 30, 500, "per_week"),
		testutil.QualitativeEffect("Kvalitet", 2, 4, testutil.Float(10000), 3),
	}

	m, err := Calculate(entries, 100000)
	require.NoError(t, err)

	assert.Equal(t, 200000.0, m.TotalFinancialEffects)
	assert.Equal(t, 705000.0, m.TotalRedistributionEffects)
	assert.Equal(t, 30000.0, m.TotalQualitativeEffects)
	assert.Equal(t, 935000.0, m.TotalMonetaryValue)
	assert.Equal(t, 100000.0+705000.0+10000.0, m.TotalAnnualMonetaryValue)
	assert.InDelta(t, 835.0, m.EconomicROI, 1e-9)
	assert.InDelta(t, 100.0, m.QualitativeROI, 1e-9)
	assert.InDelta(t, 467.5, m.CombinedROI, 1e-9)
	assert.InDelta(t, 835.0, m.Summary.HighestROI, 1e-9)
	assert.InDelta(t, 100.0, m.Summary.LowestROI, 1e-9)

	assert.Equal(t, 3, m.Summary.TotalEffects)
	assert.Equal(t, 3, m.Summary.DimensionCount)
	assert.Equal(t, []string{"Kostnad", "Kvalitet", "Tid"}, m.Summary.Dimensions)
	require.Len(t, m.QualitativeEffects, 1)
	assert.Equal(t, 2.0, m.QualitativeEffects[0].Improvement)
	require.NotNil(t, m.QualitativeEffects[0].MonetaryEstimate)
	assert.Equal(t, 10000.0, *m.QualitativeEffects[0].MonetaryEstimate)
}

func TestCalculateDimensionQualitativeROILastWriteWins(t *testing.T) {
	entries := []model.EffectEntry{
		testutil.QualitativeEffect("Kvalitet", 2, 4, nil, 1),
		testutil.QualitativeEffect("Kvalitet", 4, 5, nil, 1),
	}

	m, err := Calculate(entries, 0)
	require.NoError(t, err)

	dim := m.DimensionBreakdown["Kvalitet"]
	assert.Equal(t, 2, dim.EffectCount)
	assert.InDelta(t, 25.0, dim.QualitativeROI, 1e-9)
	assert.InDelta(t, 25.0, m.QualitativeROI, 1e-9)
	assert.InDelta(t, 25.0, m.CombinedROI, 1e-9)
	assert.Equal(t, 0.0, m.EconomicROI)
	assert.Equal(t, 0.0, m.TotalMonetaryValue)
}

func TestCalculateQualitativeROIIgnoresNonPositiveDimensions(t *testing.T) {
	entries := []model.EffectEntry{
		testutil.QualitativeEffect("A", 2, 4, nil, 1),
		testutil.QualitativeEffect("B", 4, 2, nil, 1),
		testutil.QualitativeEffect("C", 0, 3, nil, 1),
	}

	m, err := Calculate(entries, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, m.QualitativeROI, 1e-9)
}

func TestCombinedROI(t *testing.T) {
	tests := []struct {
		name                  string
		economic, qualitative float64
		expected              float64
	}{
		{"Both positive", 200, 100, 150},
		{"Economic negative", -50, 100, -50},
		{"Economic zero", 0, 40, 40},
		{"Both zero", 0, 0, 0},
		{"Qualitative zero", 80, 0, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, combinedROI(tt.economic, tt.qualitative))
		})
	}
}

func TestCalculateSkipsUncountedEntries(t *testing.T) {
	flagOff := testutil.FinancialHoursEffect("Tid", 100, 500, "per_month", 1)
	flagOff.HasQuantitative = false

	unpopulated := model.EffectEntry{
		ValueDimension:  "Tom",
		HasQualitative:  true,
		HasQuantitative: true,
		QualitativeDetails: &model.QualitativeDetails{
			Factor: " ",
		},
	}

	m, err := Calculate([]model.EffectEntry{flagOff, unpopulated}, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Summary.TotalEffects)
	assert.Empty(t, m.DimensionBreakdown)
	assert.Equal(t, -100.0, m.EconomicROI)
	assert.Equal(t, 0.0, m.PaybackPeriod)
}

func TestCalculateNoInvestment(t *testing.T) {
	entries := []model.EffectEntry{testutil.FinancialCurrencyEffect("Kostnad", 5000, "per_year", 1)}

	m, err := Calculate(entries, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.EconomicROI)
	assert.Equal(t, 0.0, m.PaybackPeriod)
	assert.Equal(t, 5000.0, m.TotalMonetaryValue)
}

func TestCalculateInvalidInvestment(t *testing.T) {
	for _, inv := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		m, err := Calculate(nil, inv)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInvestment))
		assert.Equal(t, Empty(), m)
	}
}

func TestCalculateNonFiniteValueIsAggregationError(t *testing.T) {
	entry := testutil.QualitativeEffect("Kvalitet", 2, 4, testutil.Float(math.Inf(1)), 1)

	m, err := Calculate([]model.EffectEntry{entry}, 1000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAggregation))
	assert.Equal(t, Empty(), m)

	assert.Equal(t, Empty(), CalculateROI([]model.EffectEntry{entry}, 1000))
}

func TestCalculateROIFailSafe(t *testing.T) {
	assert.Equal(t, Empty(), CalculateROI(nil, math.NaN()))

	entries := []model.EffectEntry{testutil.FinancialHoursEffect("Tid", 100, 500, "per_month", 1)}
	assert.InDelta(t, 1100.0, CalculateROI(entries, 50000).EconomicROI, 1e-9)
}

func TestCalculateEmpty(t *testing.T) {
	m, err := Calculate(nil, 50000)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, m.TotalInvestment)
	assert.Equal(t, -100.0, m.EconomicROI)
	assert.NotNil(t, m.FinancialEffects)
	assert.NotNil(t, m.Summary.Dimensions)

	body, err := json.Marshal(Empty())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"financialEffects":[]`)
	assert.Contains(t, string(body), `"dimensionBreakdown":{}`)
}

func TestCalculateFromStoredJSON(t *testing.T) {
	raw := `{"effectDetails":[
		{"valueDimension":"Tid","hasQuantitative":"true","quantitativeDetails":{
			"effectType":"Financial",
			"financialDetails":{"valueUnit":"hours","annualizationYears":1,
				"hoursDetails":{"hours":"100","hourlyRate":500,"timescale":"per_month"}}}},
		{"valueDimension":"Kvalitet","hasQualitative":1,"qualitativeDetails":{
			"factor":"Nöjdhet","currentRating":"2","targetRating":3}}
	]}`
	entries, err := model.DecodeEffectEntries([]byte(raw))
	require.NoError(t, err)

	m, err := Calculate(entries, 50000)
	require.NoError(t, err)
	assert.Equal(t, 600000.0, m.TotalMonetaryValue)
	assert.InDelta(t, 50.0, m.QualitativeROI, 1e-9)
	assert.InDelta(t, (1100.0+50.0)/2, m.CombinedROI, 1e-9)
}

func TestAggregator(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	entries := []model.EffectEntry{testutil.FinancialHoursEffect("Tid", 100, 500, "per_month", 1)}

	strict := NewAggregator(logger, true)
	_, err := strict.Aggregate(entries, math.NaN())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInvestment))

	lenient := NewAggregator(logger, false)
	m, err := lenient.Aggregate(entries, math.Inf(1))
	require.NoError(t, err)
	assert.Equal(t, Empty(), m)

	m, err = lenient.Aggregate(entries, 50000)
	require.NoError(t, err)
	assert.InDelta(t, 1100.0, m.EconomicROI, 1e-9)

	assert.Equal(t, 2, logs.FilterMessage("roi aggregation failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("roi aggregated").Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "roi.Aggregate", entry.ContextMap()["op"])
	}

	assert.NotNil(t, NewAggregator(nil, false).logger)
}
