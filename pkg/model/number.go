package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that decodes from either a JSON number or a numeric
// string. Stored effect and cost records carry form input verbatim, so both
// shapes occur in practice. Anything that does not parse decodes to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = 0
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = Number(ParseAmount(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		// booleans, objects and arrays in a numeric slot count as zero
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Float returns the value as a float64.
func (n Number) Float() float64 {
	return float64(n)
}

// Value dereferences an optional Number, treating nil as zero.
func Value(n *Number) float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

// Ptr returns a pointer to a Number holding v.
func Ptr(v float64) *Number {
	n := Number(v)
	return &n
}

// ParseAmount parses free-form numeric input such as "1 250 000 kr",
// "12,5" or "1,000.50". Unparsable input yields 0.
func ParseAmount(s string) float64 {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"sek", "kr", ":-"} {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, suffix))
	}
	if cleaned == "" {
		return 0
	}

	cleaned = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "").Replace(cleaned)

	commas := strings.Count(cleaned, ",")
	switch {
	case commas > 0 && strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case commas == 1 && len(cleaned)-strings.Index(cleaned, ",")-1 <= 2:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case commas > 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Flag is a bool that decodes from a JSON boolean or the strings
// "true"/"false".
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*f = false
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(s))
		*f = Flag(err == nil && parsed)
	case trimmed[0] == 't' || trimmed[0] == 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*f = Flag(b)
	default:
		var num float64
		if err := json.Unmarshal(trimmed, &num); err != nil {
			*f = false
			return nil
		}
		*f = Flag(num != 0)
	}
	return nil
}

// Bool returns the flag as a bool.
func (f Flag) Bool() bool {
	return bool(f)
}
