// Package constants provides shared constants for the impact valuation engine.
package constants

// Annualization factors. These are the only annualization constants in the
// module; every value computation goes through pkg/timescale.
const (
	// HoursPerYear is the number of working hours in a year
	HoursPerYear = 1880

	// DaysPerYear is the number of working days in a year
	DaysPerYear = 235

	// WeeksPerYear is the number of working weeks in a year
	WeeksPerYear = 47

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Financial constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultAnnualizationYears is used when an effect omits annualizationYears
	DefaultAnnualizationYears = 1.0
)

// Scaling defaults and heuristic thresholds
const (
	// DefaultScalabilityCoefficient disables diminishing returns
	DefaultScalabilityCoefficient = 1.0

	// DefaultMaxROI bounds the scaled economic ROI in both directions (percent)
	DefaultMaxROI = 1000.0

	// DefaultMinCostPerOrg floors every replication cost per organization
	DefaultMinCostPerOrg = 50000.0

	// MaxPaybackYears caps the scaled payback period
	MaxPaybackYears = 20.0

	// OrgsPerRolloutYear is the assumed number of new adopters per year
	OrgsPerRolloutYear = 5

	// MaxOrgs bounds the number of organizations a projection accepts
	MaxOrgs = 10000

	// EvenRealizationYears is used for payback when no base payback exists
	EvenRealizationYears = 3.0

	// NormalizationRatioMin and NormalizationRatioMax bound targetMetric/baseMetric
	NormalizationRatioMin = 0.1
	NormalizationRatioMax = 10.0

	// NormalizationExponentMin and NormalizationExponentMax bound the exponent
	NormalizationExponentMin = 0.5
	NormalizationExponentMax = 1.5

	// PopulationDampingRatio and PopulationExponentCap dampen large population ratios
	PopulationDampingRatio = 5.0
	PopulationExponentCap  = 0.8

	// UsersDampingRatio and UsersExponentFloor keep user-driven scaling near linear
	UsersDampingRatio  = 3.0
	UsersExponentFloor = 0.9

	// WarnROIThreshold triggers a high-ROI warning (percent)
	WarnROIThreshold = 500.0

	// WarnPaybackYears triggers a long-payback warning
	WarnPaybackYears = 10.0

	// WarnNormalizationRatio triggers a large-normalization warning
	WarnNormalizationRatio = 5.0

	// WarnOrgCount triggers a large-rollout warning
	WarnOrgCount = 50
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. IMPACT_SERVER_ADDRESS
	EnvPrefix = "IMPACT"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultReadTimeoutSeconds and DefaultWriteTimeoutSeconds bound request handling
	DefaultReadTimeoutSeconds  = 15
	DefaultWriteTimeoutSeconds = 15

	// DefaultRateLimitRequests per DefaultRateLimitWindowSeconds per client IP
	DefaultRateLimitRequests      = 120
	DefaultRateLimitWindowSeconds = 60

	// DefaultDatabaseDriver and DefaultDatabaseDSN select the project store
	DefaultDatabaseDriver = "sqlite"
	DefaultDatabaseDSN    = "impact.db"
)

// ScaledImpactMetadataKey is the effects_data key holding saved scaling analyses.
const ScaledImpactMetadataKey = "scaledImpact"
