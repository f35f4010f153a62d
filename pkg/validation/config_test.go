package validation

import (
	"strings"
	"testing"
)

func TestValidateDatabaseDriver(t *testing.T) {
	tests := []struct {
		driver    string
		expectErr bool
	}{
		{"sqlite", false},
		{"postgres", false},
		{" Postgres ", false},
		{"mysql", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			err := ValidateDatabaseDriver(tt.driver)
			if (err != nil) != tt.expectErr {
				t.Errorf("ValidateDatabaseDriver(%q) error = %v, expectErr %v", tt.driver, err, tt.expectErr)
			}
		})
	}
}

func TestValidateValuationLimits(t *testing.T) {
	if warnings := ValidateValuationLimits(1000, 50000); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if warnings := ValidateValuationLimits(1000, 0); len(warnings) != 0 {
		t.Errorf("zero floor should be accepted, got %v", warnings)
	}

	warnings := ValidateValuationLimits(0, -1)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "maxROI") || !strings.Contains(warnings[1], "minCostPerOrg") {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestConfigValidatorValidateAll(t *testing.T) {
	valid := ConfigValidator{
		Server: ServerSettings{
			Address:           ":8080",
			CORSOrigins:       []string{"https://portal.example.se"},
			RateLimitEnabled:  true,
			RateLimitRequests: 120,
			RateLimitWindow:   60,
		},
		Database:  DatabaseSettings{Driver: "sqlite", DSN: "impact.db"},
		Valuation: ValuationSettings{MaxROI: 1000, MinCostPerOrg: 50000},
	}
	if warnings := valid.ValidateAll(); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	tests := []struct {
		name   string
		mutate func(cv *ConfigValidator)
		want   string
	}{
		{"Empty address", func(cv *ConfigValidator) { cv.Server.Address = "" }, "address"},
		{"Wildcard CORS", func(cv *ConfigValidator) { cv.Server.CORSOrigins = []string{"*"} }, "every origin"},
		{"Zero rate limit", func(cv *ConfigValidator) { cv.Server.RateLimitRequests = 0 }, "the default limit applies"},
		{"Zero rate limit window", func(cv *ConfigValidator) { cv.Server.RateLimitWindow = 0 }, "per 0s is not positive - the default limit applies"},
		{"Unknown driver", func(cv *ConfigValidator) { cv.Database.Driver = "oracle" }, "unsupported database driver"},
		{"Empty DSN", func(cv *ConfigValidator) { cv.Database.DSN = "" }, "DSN"},
		{"Non-positive max ROI", func(cv *ConfigValidator) { cv.Valuation.MaxROI = -5 }, "maxROI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := valid
			cv.Server.CORSOrigins = append([]string(nil), valid.Server.CORSOrigins...)
			tt.mutate(&cv)

			warnings := cv.ValidateAll()
			if len(warnings) != 1 {
				t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
			}
			if !strings.Contains(warnings[0], tt.want) {
				t.Errorf("warning %q does not contain %q", warnings[0], tt.want)
			}
		})
	}

	disabled := valid
	disabled.Server.RateLimitEnabled = false
	disabled.Server.RateLimitRequests = 0
	if warnings := disabled.ValidateAll(); len(warnings) != 0 {
		t.Errorf("disabled rate limit should not warn, got %v", warnings)
	}
}
