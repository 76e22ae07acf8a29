package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FilterAll is the filter value that means "do not filter".
const FilterAll = "all"

// Record is a business entity passed through untouched (patient, doctor,
// booking...). The console only reads a handful of display fields.
type Record map[string]any

// ID returns the record identifier, accepting both _id and id.
func (r Record) ID() string {
	for _, k := range []string{"_id", "id"} {
		if v, ok := r[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// String renders the value under key for display. Missing keys yield "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		// populated references, e.g. booking.patient
		for _, k := range []string{"name", "title", "email"} {
			if s, ok := x[k].(string); ok {
				return s
			}
		}
		return Record(x).ID()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return strings.Trim(string(b), `"`)
	}
}

// PageOf is the paginated data part of a list response.
type PageOf[T any] struct {
	Docs       []T `json:"docs"`
	TotalDocs  int `json:"totalDocs"`
	TotalPages int `json:"totalPages"`
	Limit      int `json:"limit"`
	Page       int `json:"page"`
}

type Page = PageOf[Record]

// Stats is a flat bag of counters returned by the stats and dashboard
// endpoints.
type Stats map[string]any

// Number returns the numeric value under key, or 0.
func (s Stats) Number(key string) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// Query is the composed list request.
type Query struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Params builds the JSON body sent to a list endpoint. Empty search and
// filters set to FilterAll are omitted.
func (q Query) Params() map[string]any {
	p := map[string]any{
		"page":  q.Page,
		"limit": q.Limit,
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		p["search"] = s
	}
	for name, value := range q.Filters {
		if value == "" || value == FilterAll {
			continue
		}
		p[name] = value
	}
	return p
}

// Clone returns a copy of q whose filter map is not shared.
func (q Query) Clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = v
		}
	}
	return out
}
