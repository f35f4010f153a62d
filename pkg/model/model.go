// Package model defines the cost and effect records attached to a project.
//
// These shapes are persisted untyped inside JSON columns, so the JSON field
// names and nesting here are the storage format and must not change.
package model

import (
	"strings"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/constants"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/mathutil"
)

// CostUnit selects which CostDetails sub-record prices a cost entry.
type CostUnit string

const (
	CostUnitHours   CostUnit = "hours"
	CostUnitFixed   CostUnit = "fixed"
	CostUnitMonthly CostUnit = "monthly"
	CostUnitYearly  CostUnit = "yearly"
)

// UnmarshalText normalizes the unit token.
func (u *CostUnit) UnmarshalText(text []byte) error {
	*u = CostUnit(normalizeToken(string(text)))
	return nil
}

// ValueUnit selects which unit-specific sub-record values an effect.
type ValueUnit string

const (
	ValueUnitHours      ValueUnit = "hours"
	ValueUnitCurrency   ValueUnit = "currency"
	ValueUnitPercentage ValueUnit = "percentage"
	ValueUnitCount      ValueUnit = "count"
	ValueUnitOther      ValueUnit = "other"
)

// UnmarshalText normalizes the unit token.
func (u *ValueUnit) UnmarshalText(text []byte) error {
	*u = ValueUnit(normalizeToken(string(text)))
	return nil
}

// EffectType selects between an absolute and a before/after effect.
type EffectType string

const (
	EffectTypeFinancial      EffectType = "financial"
	EffectTypeRedistribution EffectType = "redistribution"
)

// UnmarshalText normalizes the effect type token.
func (e *EffectType) UnmarshalText(text []byte) error {
	*e = EffectType(normalizeToken(string(text)))
	return nil
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CostEntry is one line item of actual spend.
type CostEntry struct {
	CostUnit    CostUnit    `json:"costUnit"`
	CostDetails CostDetails `json:"costDetails"`
}

// CostDetails holds the unit-specific pricing of a CostEntry. Only the
// record matching CostUnit is read.
type CostDetails struct {
	Hours   *HoursCost   `json:"hours,omitempty"`
	Fixed   *FixedCost   `json:"fixed,omitempty"`
	Monthly *MonthlyCost `json:"monthly,omitempty"`
	Yearly  *YearlyCost  `json:"yearly,omitempty"`
}

type HoursCost struct {
	Hours      Number `json:"hours"`
	HourlyRate Number `json:"hourlyRate"`
}

type FixedCost struct {
	FixedAmount Number `json:"fixedAmount"`
}

type MonthlyCost struct {
	MonthlyAmount   Number `json:"monthlyAmount"`
	MonthlyDuration Number `json:"monthlyDuration"`
}

type YearlyCost struct {
	YearlyAmount   Number `json:"yearlyAmount"`
	YearlyDuration Number `json:"yearlyDuration"`
}

// EffectEntry is one reported outcome of a project.
type EffectEntry struct {
	ValueDimension      string               `json:"valueDimension"`
	HasQualitative      Flag                 `json:"hasQualitative"`
	HasQuantitative     Flag                 `json:"hasQuantitative"`
	QualitativeDetails  *QualitativeDetails  `json:"qualitativeDetails,omitempty"`
	QuantitativeDetails *QuantitativeDetails `json:"quantitativeDetails,omitempty"`
}

// CountsQualitative reports whether the entry contributes a qualitative effect.
func (e EffectEntry) CountsQualitative() bool {
	return e.HasQualitative.Bool() && e.QualitativeDetails.Populated()
}

// CountsQuantitative reports whether the entry contributes a quantitative effect.
func (e EffectEntry) CountsQuantitative() bool {
	return e.HasQuantitative.Bool() && e.QuantitativeDetails.Populated()
}

// Counts reports whether the entry takes part in aggregation at all.
func (e EffectEntry) Counts() bool {
	return e.CountsQualitative() || e.CountsQuantitative()
}

// QualitativeDetails rates a non-monetary effect on a before/after scale.
type QualitativeDetails struct {
	Factor             string  `json:"factor"`
	CurrentRating      *Number `json:"currentRating,omitempty"`
	TargetRating       *Number `json:"targetRating,omitempty"`
	AnnualizationYears Number  `json:"annualizationYears"`
	MonetaryEstimate   *Number `json:"monetaryEstimate,omitempty"`
}

// Populated reports whether factor and both ratings are present.
func (q *QualitativeDetails) Populated() bool {
	return q != nil && strings.TrimSpace(q.Factor) != "" && q.CurrentRating != nil && q.TargetRating != nil
}

// Improvement is targetRating - currentRating.
func (q QualitativeDetails) Improvement() float64 {
	return Value(q.TargetRating) - Value(q.CurrentRating)
}

// ImprovementPercentage is the improvement relative to currentRating, in
// percent. A zero currentRating yields 0.
func (q QualitativeDetails) ImprovementPercentage() float64 {
	return mathutil.CalculatePercentage(q.Improvement(), Value(q.CurrentRating))
}

// Years returns annualizationYears, defaulting to 1.
func (q QualitativeDetails) Years() float64 {
	return years(q.AnnualizationYears)
}

// QuantitativeDetails carries exactly one of FinancialDetails or
// RedistributionDetails, selected by EffectType.
type QuantitativeDetails struct {
	EffectType            EffectType             `json:"effectType"`
	FinancialDetails      *FinancialDetails      `json:"financialDetails,omitempty"`
	RedistributionDetails *RedistributionDetails `json:"redistributionDetails,omitempty"`
}

// Populated reports whether the record matching EffectType is non-empty.
func (q *QuantitativeDetails) Populated() bool {
	if q == nil {
		return false
	}
	switch q.EffectType {
	case EffectTypeFinancial:
		return !q.FinancialDetails.Empty()
	case EffectTypeRedistribution:
		return !q.RedistributionDetails.Empty()
	default:
		return false
	}
}

// FinancialDetails values an absolute effect. ValueUnit selects the
// sub-record that is read.
type FinancialDetails struct {
	ValueUnit          ValueUnit            `json:"valueUnit"`
	AnnualizationYears Number               `json:"annualizationYears"`
	HoursDetails       *FinancialHours      `json:"hoursDetails,omitempty"`
	CurrencyDetails    *FinancialCurrency   `json:"currencyDetails,omitempty"`
	PercentageDetails  *FinancialPercentage `json:"percentageDetails,omitempty"`
	CountDetails       *FinancialCount      `json:"countDetails,omitempty"`
	OtherDetails       *FinancialOther      `json:"otherDetails,omitempty"`
}

// Empty reports whether the record carries nothing to value.
func (d *FinancialDetails) Empty() bool {
	return d == nil || (d.ValueUnit == "" && d.HoursDetails == nil && d.CurrencyDetails == nil &&
		d.PercentageDetails == nil && d.CountDetails == nil && d.OtherDetails == nil)
}

// Years returns annualizationYears, defaulting to 1.
func (d FinancialDetails) Years() float64 {
	return years(d.AnnualizationYears)
}

type FinancialHours struct {
	Hours          Number `json:"hours"`
	TimePerPerson  Number `json:"timePerPerson"`
	AffectedPeople Number `json:"affectedPeople"`
	HourlyRate     Number `json:"hourlyRate"`
	Timescale      string `json:"timescale"`
}

type FinancialCurrency struct {
	Amount    Number `json:"amount"`
	Timescale string `json:"timescale"`
}

type FinancialPercentage struct {
	Percentage Number `json:"percentage"`
	BaseValue  Number `json:"baseValue"`
	Timescale  string `json:"timescale"`
}

type FinancialCount struct {
	Count        Number `json:"count"`
	ValuePerUnit Number `json:"valuePerUnit"`
	Timescale    string `json:"timescale"`
}

type FinancialOther struct {
	Amount       Number `json:"amount"`
	ValuePerUnit Number `json:"valuePerUnit"`
	Timescale    string `json:"timescale"`
}

// RedistributionDetails values a before/after effect; the delta between
// the current and new quantity is the saving.
type RedistributionDetails struct {
	ValueUnit          ValueUnit                 `json:"valueUnit"`
	AnnualizationYears Number                    `json:"annualizationYears"`
	HoursDetails       *RedistributionHours      `json:"hoursDetails,omitempty"`
	CurrencyDetails    *RedistributionCurrency   `json:"currencyDetails,omitempty"`
	PercentageDetails  *RedistributionPercentage `json:"percentageDetails,omitempty"`
	CountDetails       *RedistributionCount      `json:"countDetails,omitempty"`
	OtherDetails       *RedistributionOther      `json:"otherDetails,omitempty"`
}

// Empty reports whether the record carries nothing to value.
func (d *RedistributionDetails) Empty() bool {
	return d == nil || (d.ValueUnit == "" && d.HoursDetails == nil && d.CurrencyDetails == nil &&
		d.PercentageDetails == nil && d.CountDetails == nil && d.OtherDetails == nil)
}

// Years returns annualizationYears, defaulting to 1.
func (d RedistributionDetails) Years() float64 {
	return years(d.AnnualizationYears)
}

type RedistributionHours struct {
	CurrentTimePerPerson Number `json:"currentTimePerPerson"`
	NewTimePerPerson     Number `json:"newTimePerPerson"`
	AffectedPeople       Number `json:"affectedPeople"`
	CurrentHours         Number `json:"currentHours"`
	NewHours             Number `json:"newHours"`
	HourlyRate           Number `json:"hourlyRate"`
	Timescale            string `json:"timescale"`
}

type RedistributionCurrency struct {
	CurrentAmount Number `json:"currentAmount"`
	NewAmount     Number `json:"newAmount"`
	Timescale     string `json:"timescale"`
}

type RedistributionPercentage struct {
	CurrentPercentage Number `json:"currentPercentage"`
	NewPercentage     Number `json:"newPercentage"`
	BaseValue         Number `json:"baseValue"`
	Timescale         string `json:"timescale"`
}

type RedistributionCount struct {
	CurrentCount Number `json:"currentCount"`
	NewCount     Number `json:"newCount"`
	ValuePerUnit Number `json:"valuePerUnit"`
	Timescale    string `json:"timescale"`
}

type RedistributionOther struct {
	CurrentValue Number `json:"currentValue"`
	NewValue     Number `json:"newValue"`
	ValuePerUnit Number `json:"valuePerUnit"`
	Timescale    string `json:"timescale"`
}

func years(n Number) float64 {
	if n <= 0 {
		return constants.DefaultAnnualizationYears
	}
	return float64(n)
}
