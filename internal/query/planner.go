// Package query decodes HTTP parameters into an InputQuery, resolves
// which index aliases to search, and composes a backend-agnostic
// query.Plan that Encode serializes to the backend's JSON query DSL.
package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// InputQuery is the autocomplete request shape, bound from query
// parameters with gorilla/schema struct tags.
type InputQuery struct {
	Q          string   `schema:"q"`
	Lat        *float64 `schema:"lat"`
	Lon        *float64 `schema:"lon"`
	Limit      int      `schema:"limit"`
	Offset     int      `schema:"offset"`
	Shape      string   `schema:"shape"` // raw GeoJSON polygon, optional
	Type       []string `schema:"type"`
	PTDataset  []string `schema:"pt_dataset"`
	POIDataset []string `schema:"poi_dataset"`
	ZoneType   []string `schema:"zone_type"`
}

// ReverseQuery is the reverse-geocode request shape.
type ReverseQuery struct {
	Lat float64 `schema:"lat"`
	Lon float64 `schema:"lon"`
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ParseInputQuery decodes and validates an autocomplete request's query
// parameters. q must be nonempty after trimming.
func ParseInputQuery(values url.Values) (*InputQuery, error) {
	iq := &InputQuery{Limit: defaultLimit}
	if err := decoder.Decode(iq, values); err != nil {
		return nil, fmt.Errorf("query: invalid parameters: %w", err)
	}
	iq.Q = strings.TrimSpace(iq.Q)
	if iq.Q == "" {
		return nil, fmt.Errorf("query: q is required")
	}
	if values.Has("limit") {
		if iq.Limit <= 0 || iq.Limit > maxLimit {
			return nil, fmt.Errorf("query: limit must be between 1 and %d", maxLimit)
		}
	}
	if iq.Offset < 0 {
		iq.Offset = 0
	}
	if iq.Lat != nil && (*iq.Lat < -90 || *iq.Lat > 90) {
		return nil, fmt.Errorf("query: lat out of range")
	}
	if iq.Lon != nil && (*iq.Lon < -180 || *iq.Lon > 180) {
		return nil, fmt.Errorf("query: lon out of range")
	}
	return iq, nil
}

// ParseReverseQuery decodes and validates a reverse-geocode request.
func ParseReverseQuery(values url.Values) (*ReverseQuery, error) {
	rq := &ReverseQuery{}
	if err := decoder.Decode(rq, values); err != nil {
		return nil, fmt.Errorf("query: invalid parameters: %w", err)
	}
	if rq.Lat < -90 || rq.Lat > 90 {
		return nil, fmt.Errorf("query: lat out of range")
	}
	if rq.Lon < -180 || rq.Lon > 180 {
		return nil, fmt.Errorf("query: lon out of range")
	}
	return rq, nil
}

// typeToAlias maps a requested document type filter to the type alias
// suffix (root_{type}).
var typeToAlias = map[string]string{
	"house":                     "addr",
	"street":                    "street",
	"zone":                      "admin",
	"poi":                       "poi",
	"stop_area":                 "stop",
	"public_transport:stop_area": "stop",
}

// defaultTypes is the full set searched when no type filter is given.
var defaultTypes = []string{"addr", "street", "admin", "poi", "stop"}

// ResolveIndices decides which alias names the search should target: the
// dataset aliases when pt_dataset/poi_dataset narrow the request, the
// type aliases otherwise.
func ResolveIndices(root string, iq *InputQuery) []string {
	kinds := resolveKinds(iq.Type)
	var indices []string
	for _, kind := range kinds {
		if kind == "stop" && len(iq.PTDataset) > 0 {
			for _, ds := range iq.PTDataset {
				indices = append(indices, fmt.Sprintf("%s_%s_%s", root, kind, ds))
			}
			continue
		}
		if kind == "poi" && len(iq.POIDataset) > 0 {
			for _, ds := range iq.POIDataset {
				indices = append(indices, fmt.Sprintf("%s_%s_%s", root, kind, ds))
			}
			continue
		}
		indices = append(indices, fmt.Sprintf("%s_%s", root, kind))
	}
	return indices
}

func resolveKinds(requested []string) []string {
	if len(requested) == 0 {
		return defaultTypes
	}
	seen := map[string]bool{}
	var kinds []string
	for _, t := range requested {
		kind, ok := typeToAlias[t]
		if !ok || seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return defaultTypes
	}
	return kinds
}
