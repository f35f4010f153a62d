package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeCostEntries reads the cost_data column. Older rows hold a bare array
// of entries; newer rows wrap it as {"costEntries": [...]} or
// {"actualCostDetails": {"costEntries": [...]}}.
func DecodeCostEntries(raw []byte) ([]CostEntry, error) {
	trimmed := bytes.TrimSpace(raw)
	if isEmptyJSON(trimmed) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var entries []CostEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode cost entries: %w", err)
		}
		return entries, nil
	}

	var wrapped struct {
		CostEntries       []CostEntry `json:"costEntries"`
		ActualCostDetails *struct {
			CostEntries []CostEntry `json:"costEntries"`
		} `json:"actualCostDetails"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode cost data: %w", err)
	}
	if len(wrapped.CostEntries) > 0 {
		return wrapped.CostEntries, nil
	}
	if wrapped.ActualCostDetails != nil {
		return wrapped.ActualCostDetails.CostEntries, nil
	}
	return nil, nil
}

// DecodeEffectEntries reads the effects_data column, either a bare array of
// entries or an object with an "effectDetails" array next to other metadata.
func DecodeEffectEntries(raw []byte) ([]EffectEntry, error) {
	trimmed := bytes.TrimSpace(raw)
	if isEmptyJSON(trimmed) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var entries []EffectEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode effect entries: %w", err)
		}
		return entries, nil
	}

	var wrapped struct {
		EffectDetails []EffectEntry `json:"effectDetails"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode effects data: %w", err)
	}
	return wrapped.EffectDetails, nil
}

// MergeMetadata sets key to value inside the JSON object raw and returns the
// re-encoded object. All other keys keep their original encoding. A bare
// array is moved under "effectDetails" so the entries survive the merge.
func MergeMetadata(raw []byte, key string, value interface{}) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	fields := make(map[string]json.RawMessage)

	switch {
	case isEmptyJSON(trimmed):
	case trimmed[0] == '[':
		fields["effectDetails"] = json.RawMessage(trimmed)
	default:
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode metadata object: %w", err)
		}
		if fields == nil {
			fields = make(map[string]json.RawMessage)
		}
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	fields[key] = encoded

	return json.Marshal(fields)
}

func isEmptyJSON(b []byte) bool {
	return len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("{}"))
}
