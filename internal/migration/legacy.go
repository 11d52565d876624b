// Package migration is the one-shot offline job that rebuilds legacy v1
// records into canonical shipments. It reads the legacy_entities interop
// table, assembles one shipment per AFCQ- quotation, re-keys workflow and
// file rows, and marks consumed records superseded so a second run writes
// nothing.
package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Legacy entity kinds mirrored into the interop table. Names match the
// source system's entity model.
const (
	kindQuotation        = "Quotation"
	kindShipmentOrder    = "ShipmentOrder"
	kindQuotationFreight = "QuotationFreight"
	kindQuotationFCL     = "QuotationFCL"
	kindQuotationLCL     = "QuotationLCL"
	kindQuotationAir     = "QuotationAir"
)

// doc is a tolerant view over one legacy payload. V1 stored fields with
// mixed types (bool as int, numbers as strings, nested entities), so the
// assembly code reads through accessors instead of typed structs.
type doc map[string]any

func decodeDoc(data json.RawMessage) (doc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var d doc
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("invalid legacy payload: %w", err)
	}
	return d, nil
}

func (d doc) has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d[key]
	return ok
}

// str returns the field as a string, rendering numbers and ignoring
// everything else.
func (d doc) str(key string) string {
	if d == nil {
		return ""
	}
	switch v := d[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// integer returns the field as an int, accepting numbers and numeric
// strings. Missing or unparseable values yield 0.
func (d doc) integer(key string) int {
	if d == nil {
		return 0
	}
	switch v := d[key].(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case string:
		var n json.Number = json.Number(v)
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// float returns the field as a float64, accepting numbers and numeric
// strings.
func (d doc) float(key string) float64 {
	if d == nil {
		return 0
	}
	switch v := d[key].(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		var n json.Number = json.Number(v)
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return 0
}

// boolean is truthy for true, non-zero numbers, and the string "true".
func (d doc) boolean(key string) bool {
	if d == nil {
		return false
	}
	switch v := d[key].(type) {
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case string:
		return v == "true"
	}
	return false
}

// child returns a nested entity, or nil when absent or not an object.
func (d doc) child(key string) doc {
	if d == nil {
		return nil
	}
	if m, ok := d[key].(map[string]any); ok {
		return doc(m)
	}
	return nil
}

// list returns a nested array of entities, dropping non-object elements.
func (d doc) list(key string) []doc {
	if d == nil {
		return nil
	}
	raw, ok := d[key].([]any)
	if !ok {
		return nil
	}
	items := make([]doc, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			items = append(items, doc(m))
		}
	}
	return items
}
