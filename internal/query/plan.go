package query

// Plan is a backend-agnostic intermediate query AST. It keeps ranking
// decisions (text clause weighting, geo-decay, per-type boost) out of the
// JSON encoder, so changing the backend's query DSL never touches
// planning logic. Scoring weights are tunables, not fixed constants.
type Plan struct {
	Indices []string
	Size    int
	From    int

	Text   *TextClause
	Score  *ScoreClause
	Filter *FilterClause

	// SortByDistance, when set, replaces relevance scoring with a
	// distance sort anchored at the given point (reverse-geocode plan).
	SortByDistance *GeoPoint
}

// GeoPoint is a WGS84 focus point used for geo-decay scoring or distance
// sort.
type GeoPoint struct {
	Lat, Lon float64
}

// TextClause matches free text against label/name/house_number/zip_codes
// with three match strategies of differing boost.
type TextClause struct {
	Query         string
	Fields        []string
	PhraseBoost   float64
	PrefixBoost   float64
	FuzzyBoost    float64
}

// ScoreClause is the function_score composition: a multiplicative weight
// prior, an optional Gaussian geo-decay, and a per-type boost table.
type ScoreClause struct {
	WeightField string
	Geo         *GeoDecay
	TypeBoost   map[string]float64
}

// GeoDecay anchors a Gaussian decay function on coord.
type GeoDecay struct {
	Field  string
	Origin GeoPoint
	ScaleKm float64
	OffsetKm float64
}

// FilterClause narrows the hit set without affecting score.
type FilterClause struct {
	ShapeGeoJSON string
	ZoneTypes    []string
	POITypes     []string
}

// DefaultTypeBoost sets the default per-type ordering: house > street >
// stop > poi > admin. Overridable by callers.
func DefaultTypeBoost() map[string]float64 {
	return map[string]float64{
		"addr":   5,
		"street": 4,
		"stop":   3,
		"poi":    2,
		"admin":  1,
	}
}

// BuildPlan composes the backend-agnostic search plan from a validated
// InputQuery: a text clause, function_score weighting, and a filter
// clause.
func BuildPlan(root string, iq *InputQuery) *Plan {
	p := &Plan{
		Indices: ResolveIndices(root, iq),
		Size:    iq.Limit,
		From:    iq.Offset,
		Text: &TextClause{
			Query:       iq.Q,
			Fields:      []string{"label", "name", "house_number", "zip_codes"},
			PhraseBoost: 3.0,
			PrefixBoost: 2.0,
			FuzzyBoost:  1.0,
		},
		Score: &ScoreClause{
			WeightField: "weight",
			TypeBoost:   DefaultTypeBoost(),
		},
		Filter: &FilterClause{
			ShapeGeoJSON: iq.Shape,
			ZoneTypes:    iq.ZoneType,
		},
	}
	if iq.Lat != nil && iq.Lon != nil {
		p.Score.Geo = &GeoDecay{
			Field:    "coord",
			Origin:   GeoPoint{Lat: *iq.Lat, Lon: *iq.Lon},
			ScaleKm:  50,
			OffsetKm: 0,
		}
	}
	return p
}

// BuildReversePlan composes the reverse-geocode plan: a single
// sort-by-distance search across the addr/street/admin aliases that
// returns the one nearest hit (size 1 in total, not per type).
func BuildReversePlan(root string, rq *ReverseQuery) *Plan {
	var indices []string
	for _, kind := range []string{"addr", "street", "admin"} {
		indices = append(indices, root+"_"+kind)
	}
	return &Plan{
		Indices:        indices,
		Size:           1,
		SortByDistance: &GeoPoint{Lat: rq.Lat, Lon: rq.Lon},
	}
}
