package query

import (
	"net/url"
	"testing"
)

func TestParseInputQueryRejectsEmptyQ(t *testing.T) {
	v := url.Values{"q": {"   "}}
	if _, err := ParseInputQuery(v); err == nil {
		t.Fatal("expected error for blank q")
	}
}

func TestParseInputQueryRejectsLimitAboveMax(t *testing.T) {
	v := url.Values{"q": {"paris"}, "limit": {"10000"}}
	if _, err := ParseInputQuery(v); err == nil {
		t.Fatal("expected error for limit above max")
	}
}

func TestParseInputQueryRejectsZeroLimit(t *testing.T) {
	v := url.Values{"q": {"paris"}, "limit": {"0"}}
	if _, err := ParseInputQuery(v); err == nil {
		t.Fatal("expected error for limit=0")
	}
}

func TestParseInputQueryRejectsOutOfRangeFocusPoint(t *testing.T) {
	v := url.Values{"q": {"paris"}, "lat": {"200"}, "lon": {"0"}}
	if _, err := ParseInputQuery(v); err == nil {
		t.Fatal("expected error for lat out of range")
	}
}

func TestParseInputQueryDefaultsLimit(t *testing.T) {
	v := url.Values{"q": {"paris"}}
	iq, err := ParseInputQuery(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iq.Limit != defaultLimit {
		t.Fatalf("expected default limit %d, got %d", defaultLimit, iq.Limit)
	}
}

func TestParseReverseQueryRejectsOutOfRangeLat(t *testing.T) {
	v := url.Values{"lat": {"95"}, "lon": {"2"}}
	if _, err := ParseReverseQuery(v); err == nil {
		t.Fatal("expected error for lat out of range")
	}
}

func TestResolveIndicesUsesDatasetAliasForPTDataset(t *testing.T) {
	iq := &InputQuery{Type: []string{"stop_area"}, PTDataset: []string{"idfm"}}
	indices := ResolveIndices("munin", iq)
	if len(indices) != 1 || indices[0] != "munin_stop_idfm" {
		t.Fatalf("unexpected indices: %+v", indices)
	}
}

func TestResolveIndicesDefaultsToAllTypes(t *testing.T) {
	iq := &InputQuery{}
	indices := ResolveIndices("munin", iq)
	if len(indices) != 5 {
		t.Fatalf("expected 5 default type indices, got %+v", indices)
	}
}

func TestBuildPlanIncludesGeoDecayOnlyWithFocus(t *testing.T) {
	iq := &InputQuery{Q: "paris", Limit: 10}
	p := BuildPlan("munin", iq)
	if p.Score.Geo != nil {
		t.Fatal("expected no geo decay without lat/lon focus")
	}
	lat, lon := 48.85, 2.35
	iq2 := &InputQuery{Q: "paris", Limit: 10, Lat: &lat, Lon: &lon}
	p2 := BuildPlan("munin", iq2)
	if p2.Score.Geo == nil {
		t.Fatal("expected geo decay with lat/lon focus")
	}
}

func TestEncodeReversePlanUsesDistanceSort(t *testing.T) {
	p := BuildReversePlan("munin", &ReverseQuery{Lat: 48.85, Lon: 2.35})
	body := Encode(p)
	if _, ok := body["sort"]; !ok {
		t.Fatal("expected sort key for reverse-geocode plan")
	}
}

func TestEncodeAppliesShapeFilter(t *testing.T) {
	iq := &InputQuery{Q: "paris", Limit: 10, Shape: `{"type":"Polygon"}`}
	p := BuildPlan("munin", iq)
	body := Encode(p)
	q, ok := body["query"].(map[string]any)
	if !ok {
		t.Fatalf("expected query map, got %T", body["query"])
	}
	boolClause, ok := q["bool"].(map[string]any)
	if !ok {
		t.Fatalf("expected bool clause when a filter is present, got %+v", q)
	}
	filters, ok := boolClause["filter"].([]any)
	if !ok || len(filters) != 1 {
		t.Fatalf("expected 1 filter, got %+v", boolClause["filter"])
	}
}
