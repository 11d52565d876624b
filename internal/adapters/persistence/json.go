package persistence

import (
	"encoding/json"
	"fmt"
)

// marshalOptional converts an optional payload to its JSONB string
// form. Nil payloads stay NULL in the column.
func marshalOptional[T any](v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	s := string(raw)
	return &s, nil
}

// unmarshalOptional parses an optional JSONB column back into its
// payload type. NULL and empty columns come back as nil.
func unmarshalOptional[T any](s *string) (*T, error) {
	if s == nil || *s == "" || *s == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(*s), &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &v, nil
}

// marshalSlice converts a slice payload to its JSONB string form,
// defaulting to the empty array for nil slices.
func marshalSlice[T any](v []T) (string, error) {
	if v == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return string(raw), nil
}

// unmarshalSlice parses a JSONB array column, treating NULL and empty
// as the empty slice.
func unmarshalSlice[T any](s string) ([]T, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var v []T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return v, nil
}
