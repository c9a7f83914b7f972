// ABOUTME: Record is the JSON-object payload exchanged with the backend for every resource kind.
// ABOUTME: Typed accessors tolerate missing keys and JSON nulls so callers can read partial records.
package client

import "fmt"

// Record is a string-keyed JSON object.
type Record map[string]any

// String returns the value under key as a string; "" if missing or null.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Map returns the value under key as a nested object, or nil.
func (r Record) Map(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

// Records returns the value under key as a list of objects. Non-object
// entries are skipped.
func (r Record) Records(key string) []Record {
	items, _ := r[key].([]any)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Strings returns the value under key as a list of strings. Objects in the
// list contribute their "id" field, so both ["a"] and [{"id": "a"}] work.
func (r Record) Strings(key string) []string {
	items, _ := r[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if id := Record(v).String("id"); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// ID is shorthand for r.String("id").
func (r Record) ID() string {
	return r.String("id")
}
