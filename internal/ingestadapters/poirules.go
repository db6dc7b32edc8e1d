package ingestadapters

import "mimirsbrunn/internal/model"

// poiRule maps one OSM tag key/value pair to a Poi category. The table is
// closed: unmatched tags simply produce no POI rather than falling back
// to a generic catch-all type.
type poiRule struct {
	key, value string
	poiType    model.PoiType
}

var poiRuleTable = []poiRule{
	{"amenity", "restaurant", model.PoiType{ID: "poi_type:amenity:restaurant", Name: "restaurant"}},
	{"amenity", "cafe", model.PoiType{ID: "poi_type:amenity:cafe", Name: "cafe"}},
	{"amenity", "bar", model.PoiType{ID: "poi_type:amenity:bar", Name: "bar"}},
	{"amenity", "pharmacy", model.PoiType{ID: "poi_type:amenity:pharmacy", Name: "pharmacy"}},
	{"amenity", "hospital", model.PoiType{ID: "poi_type:amenity:hospital", Name: "hospital"}},
	{"amenity", "school", model.PoiType{ID: "poi_type:amenity:school", Name: "school"}},
	{"amenity", "bank", model.PoiType{ID: "poi_type:amenity:bank", Name: "bank"}},
	{"amenity", "fuel", model.PoiType{ID: "poi_type:amenity:fuel", Name: "fuel_station"}},
	{"shop", "supermarket", model.PoiType{ID: "poi_type:shop:supermarket", Name: "supermarket"}},
	{"shop", "bakery", model.PoiType{ID: "poi_type:shop:bakery", Name: "bakery"}},
	{"tourism", "hotel", model.PoiType{ID: "poi_type:tourism:hotel", Name: "hotel"}},
	{"tourism", "museum", model.PoiType{ID: "poi_type:tourism:museum", Name: "museum"}},
	{"leisure", "park", model.PoiType{ID: "poi_type:leisure:park", Name: "park"}},
	{"railway", "station", model.PoiType{ID: "poi_type:railway:station", Name: "railway_station"}},
}

// resolvePoiType looks up the first matching rule against tags, or returns
// (_, false) when no configured rule matches.
func resolvePoiType(tags map[string]string) (model.PoiType, bool) {
	for _, rule := range poiRuleTable {
		if v, ok := tags[rule.key]; ok && v == rule.value {
			return rule.poiType, true
		}
	}
	return model.PoiType{}, false
}
