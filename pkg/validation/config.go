// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
)

// ValidateDatabaseDriver checks that the project store driver is supported.
func ValidateDatabaseDriver(driver string) error {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "postgres":
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q (expected sqlite or postgres)", driver)
	}
}

// ValidateValuationLimits reports caps that will be replaced by defaults.
func ValidateValuationLimits(maxROI, minCostPerOrg float64) []string {
	var warnings []string

	if maxROI <= 0 {
		warnings = append(warnings, fmt.Sprintf("Valuation maxROI %.0f is not positive - the default cap applies", maxROI))
	}
	if minCostPerOrg < 0 {
		warnings = append(warnings, fmt.Sprintf("Valuation minCostPerOrg %.0f is negative - the default floor applies", minCostPerOrg))
	}

	return warnings
}

// ConfigValidator holds the configuration values that are checked for
// problems that do not prevent startup.
type ConfigValidator struct {
	Server    ServerSettings
	Database  DatabaseSettings
	Valuation ValuationSettings
}

type ServerSettings struct {
	Address           string
	CORSOrigins       []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   int
}

type DatabaseSettings struct {
	Driver string
	DSN    string
}

type ValuationSettings struct {
	MaxROI        float64
	MinCostPerOrg float64
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if strings.TrimSpace(cv.Server.Address) == "" {
		warnings = append(warnings, "Server address is empty - the default address is used")
	}

	for _, origin := range cv.Server.CORSOrigins {
		if origin == "*" {
			warnings = append(warnings, "CORS allows every origin")
			break
		}
	}

	if cv.Server.RateLimitEnabled && (cv.Server.RateLimitRequests <= 0 || cv.Server.RateLimitWindow <= 0) {
		warnings = append(warnings, fmt.Sprintf("Rate limit of %d requests per %ds is not positive - the default limit applies",
			cv.Server.RateLimitRequests, cv.Server.RateLimitWindow))
	}

	if err := ValidateDatabaseDriver(cv.Database.Driver); err != nil {
		warnings = append(warnings, err.Error())
	}
	if strings.TrimSpace(cv.Database.DSN) == "" {
		warnings = append(warnings, "Database DSN is empty - the default DSN is used")
	}

	warnings = append(warnings, ValidateValuationLimits(cv.Valuation.MaxROI, cv.Valuation.MinCostPerOrg)...)

	return warnings
}
