package rules

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// ConditionKind tags the supported trigger condition variants.
type ConditionKind string

const (
	// KindProjectID requires the lead to be linked to a specific project.
	KindProjectID ConditionKind = "project_id"
	// KindEventField requires an event_data sub-path to equal a value.
	KindEventField ConditionKind = "event_field"
)

// Condition is one parsed trigger condition. Path is only set for
// event_field conditions and is relative to the event payload.
type Condition struct {
	Kind  ConditionKind `json:"kind"`
	Path  string        `json:"path,omitempty"`
	Value interface{}   `json:"value"`
}

// rawCondition is the stored wire form: {"field": "...", "value": ...}.
type rawCondition struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

const eventDataPrefix = "event_data."

// ParseConditions decodes stored trigger_conditions into the tagged
// union. Empty, null or object-shaped payloads (the inactivity template
// form) parse to no conditions. Unknown fields are rejected so that a
// typo in a template fails loudly at the store boundary instead of
// silently matching everything.
func ParseConditions(raw []byte) ([]Condition, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" {
		return nil, nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		// Object form carries scanner settings (inactivity_levels), not
		// per-event conditions.
		return nil, nil
	}

	var rawConds []rawCondition
	if err := json.Unmarshal(raw, &rawConds); err != nil {
		return nil, fmt.Errorf("failed to parse trigger conditions: %w", err)
	}

	conditions := make([]Condition, 0, len(rawConds))
	for _, rc := range rawConds {
		switch {
		case rc.Field == "project_id":
			conditions = append(conditions, Condition{Kind: KindProjectID, Value: rc.Value})
		case strings.HasPrefix(rc.Field, eventDataPrefix):
			conditions = append(conditions, Condition{
				Kind:  KindEventField,
				Path:  strings.TrimPrefix(rc.Field, eventDataPrefix),
				Value: rc.Value,
			})
		default:
			return nil, fmt.Errorf("unknown condition field %q", rc.Field)
		}
	}
	return conditions, nil
}

// ParseInactivityLevels decodes the object-form trigger_conditions used
// by inactivity templates. An absent or empty list means the template
// matches every tier.
func ParseInactivityLevels(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var obj struct {
		InactivityLevels []string `json:"inactivity_levels"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj.InactivityLevels
}

// Evaluate checks every condition against the lead's project links and
// the triggering event payload. All conditions must pass; no conditions
// always passes.
func Evaluate(conditions []Condition, leadProjectIDs []uuid.UUID, eventData map[string]interface{}) bool {
	for _, cond := range conditions {
		switch cond.Kind {
		case KindProjectID:
			if !matchesProject(cond.Value, leadProjectIDs) {
				return false
			}
		case KindEventField:
			value, ok := lookupPath(eventData, cond.Path)
			// Strict equality, no coercion.
			if !ok || !reflect.DeepEqual(value, cond.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchesProject(value interface{}, projectIDs []uuid.UUID) bool {
	want, ok := value.(string)
	if !ok {
		return false
	}
	for _, id := range projectIDs {
		if id.String() == want {
			return true
		}
	}
	return false
}

// lookupPath resolves a dotted sub-path against a decoded JSON object.
func lookupPath(data map[string]interface{}, path string) (interface{}, bool) {
	if data == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current interface{} = data
	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
