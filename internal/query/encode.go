package query

import "strconv"

// Encode serializes a Plan into the backend's function_score query DSL as
// a plain map, ready to hand to backend.Client.Search. Keeping this
// separate from Plan itself is what lets ranking-weight decisions live in
// planning code while the wire shape stays swappable.
func Encode(p *Plan) map[string]any {
	body := map[string]any{
		"size": p.Size,
		"from": p.From,
	}

	if p.SortByDistance != nil {
		body["sort"] = []any{
			map[string]any{
				"_geo_distance": map[string]any{
					"coord": map[string]any{"lat": p.SortByDistance.Lat, "lon": p.SortByDistance.Lon},
					"order": "asc",
					"unit":  "m",
				},
			},
		}
		body["query"] = map[string]any{"match_all": map[string]any{}}
		return body
	}

	textShould := []any{
		map[string]any{
			"multi_match": map[string]any{
				"query":  p.Text.Query,
				"fields": p.Text.Fields,
				"type":   "phrase",
				"boost":  p.Text.PhraseBoost,
			},
		},
		map[string]any{
			"multi_match": map[string]any{
				"query":  p.Text.Query,
				"fields": p.Text.Fields,
				"type":   "phrase_prefix",
				"boost":  p.Text.PrefixBoost,
			},
		},
		map[string]any{
			"multi_match": map[string]any{
				"query":     p.Text.Query,
				"fields":    p.Text.Fields,
				"fuzziness": "AUTO",
				"boost":     p.Text.FuzzyBoost,
			},
		},
	}
	textQuery := map[string]any{
		"bool": map[string]any{
			"should":               textShould,
			"minimum_should_match": 1,
		},
	}

	functions := []any{
		map[string]any{
			"field_value_factor": map[string]any{
				"field":   p.Score.WeightField,
				"missing": 0,
			},
		},
	}
	if p.Score.Geo != nil {
		functions = append(functions, map[string]any{
			"gauss": map[string]any{
				p.Score.Geo.Field: map[string]any{
					"origin": map[string]any{"lat": p.Score.Geo.Origin.Lat, "lon": p.Score.Geo.Origin.Lon},
					"scale":  kmString(p.Score.Geo.ScaleKm),
					"offset": kmString(p.Score.Geo.OffsetKm),
				},
			},
		})
	}
	for typ, boost := range p.Score.TypeBoost {
		functions = append(functions, map[string]any{
			"filter": map[string]any{"term": map[string]any{"type": typ}},
			"weight": boost,
		})
	}

	scored := map[string]any{
		"function_score": map[string]any{
			"query":     textQuery,
			"functions": functions,
			"score_mode": "multiply",
			"boost_mode": "multiply",
		},
	}

	var filters []any
	if p.Filter != nil {
		if p.Filter.ShapeGeoJSON != "" {
			filters = append(filters, map[string]any{
				"geo_shape": map[string]any{
					"boundary": map[string]any{"relation": "intersects", "shape": p.Filter.ShapeGeoJSON},
				},
			})
		}
		if len(p.Filter.ZoneTypes) > 0 {
			filters = append(filters, map[string]any{"terms": map[string]any{"zone_type": p.Filter.ZoneTypes}})
		}
		if len(p.Filter.POITypes) > 0 {
			filters = append(filters, map[string]any{"terms": map[string]any{"poi_type.id": p.Filter.POITypes}})
		}
	}

	if len(filters) == 0 {
		body["query"] = scored
		return body
	}
	body["query"] = map[string]any{
		"bool": map[string]any{
			"must":   []any{scored},
			"filter": filters,
		},
	}
	return body
}

func kmString(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64) + "km"
}
