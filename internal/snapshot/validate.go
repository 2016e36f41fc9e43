package snapshot

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of shape validation. Problems are returned as
// structured data, never raised: the host decides whether to block a sync
// or proceed with a repaired snapshot.
type Result struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// requiredCollections must be present for a snapshot to be valid.
var requiredCollections = []string{"logs", "todos", "categories"}

// collectionFields is every field that must be array-typed when present.
var collectionFields = []string{
	"logs",
	"todos",
	"categories",
	"todoCategories",
	"scopes",
	"goals",
	"autoLinkRules",
}

// Validate checks the shape of a decoded snapshot object. Missing required
// collections are errors; null or missing optional collections and absent
// version/timestamp are warnings, recoverable via Repair.
func Validate(data map[string]any) *Result {
	r := &Result{Errors: []string{}, Warnings: []string{}}

	if data == nil {
		r.Errors = append(r.Errors, "snapshot is missing or not an object")
		return r
	}

	for _, field := range requiredCollections {
		v, present := data[field]
		switch {
		case !present:
			r.Errors = append(r.Errors, fmt.Sprintf("missing required collection: %s", field))
		case v == nil:
			r.Warnings = append(r.Warnings, fmt.Sprintf("collection %s is null, treated as empty", field))
		}
	}

	for _, field := range collectionFields {
		if v, present := data[field]; present && v != nil {
			if _, ok := v.([]any); !ok {
				r.Errors = append(r.Errors, fmt.Sprintf("collection %s is not an array", field))
			}
		}
	}

	if v, present := data["version"]; !present || v == nil || v == "" {
		r.Warnings = append(r.Warnings, "missing version")
	}
	switch v, present := data["timestamp"]; {
	case !present || v == nil:
		r.Warnings = append(r.Warnings, "missing timestamp")
	default:
		if _, ok := v.(float64); !ok {
			r.Warnings = append(r.Warnings, "timestamp is not a number")
		}
	}

	// volume warnings, advisory only
	if logs, ok := data["logs"].([]any); ok {
		if len(logs) == 0 {
			r.Warnings = append(r.Warnings, "log collection is empty")
		} else if len(logs) > 100000 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("log collection is very large (%d records)", len(logs)))
		}
	}
	if todos, ok := data["todos"].([]any); ok && len(todos) > 10000 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("todo collection is very large (%d records)", len(todos)))
	}

	r.IsValid = len(r.Errors) == 0
	return r
}

// ValidateBytes validates raw snapshot bytes (e.g. a downloaded blob).
func ValidateBytes(data []byte) *Result {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return &Result{
			Errors:   []string{fmt.Sprintf("snapshot is not valid JSON: %v", err)},
			Warnings: []string{},
		}
	}
	return Validate(obj)
}
