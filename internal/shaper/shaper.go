// Package shaper maps backend hits to GeocodeJSON features, preserving
// hit order, and assembles the final FeatureCollection with a
// geocoding.version stamp and query echo.
package shaper

import (
	"sort"

	"mimirsbrunn/internal/model"
)

// Version is the GeocodeJSON schema version this shaper emits.
const Version = "0.1.0"

// docTypeFor maps a Kind to the GeocodeJSON properties.geocoding.type
// vocabulary (house|street|zone|poi|stop).
func docTypeFor(k model.Kind) string {
	switch k {
	case model.KindAddr:
		return "house"
	case model.KindStreet:
		return "street"
	case model.KindAdmin:
		return "zone"
	case model.KindPoi:
		return "poi"
	case model.KindStop:
		return "stop"
	default:
		return string(k)
	}
}

// Feature is one GeocodeJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties FeatureProps   `json:"properties"`
}

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type FeatureProps struct {
	Geocoding Geocoding `json:"geocoding"`
}

type Geocoding struct {
	Type        string           `json:"type"`
	Label       string           `json:"label"`
	Name        string           `json:"name"`
	HouseNumber string           `json:"housenumber,omitempty"`
	Street      string           `json:"street,omitempty"`
	Postcode    string           `json:"postcode,omitempty"`
	City        string           `json:"city,omitempty"`
	Admin       []model.AdminRef `json:"admin,omitempty"`
	ID          string           `json:"id"`
}

// FeatureCollection is the /autocomplete and /reverse response envelope.
type FeatureCollection struct {
	Type      string        `json:"type"`
	Geocoding QueryEcho     `json:"geocoding"`
	Features  []Feature     `json:"features"`
}

type QueryEcho struct {
	Version string `json:"version"`
	Query   string `json:"query,omitempty"`
}

// ShapeDocument maps one document to a GeocodeJSON feature, preserving the
// caller's supplied order.
func ShapeDocument(doc model.Document) Feature {
	coord := doc.DocCoord()
	g := Geocoding{
		Type: docTypeFor(doc.DocKind()),
		ID:   doc.DocID(),
	}
	switch d := doc.(type) {
	case *model.Admin:
		g.Label = d.Label
		g.Name = d.Name
	case *model.Street:
		g.Label = d.Label
		g.Name = d.Name
		g.Admin = d.AdministrativeRegions
	case *model.Addr:
		g.Label = d.Label
		g.Name = d.Name
		g.HouseNumber = d.HouseNumber
		g.Street = d.Street.StreetName
		g.Admin = d.AdministrativeRegions
		if len(d.ZipCodes) > 0 {
			g.Postcode = d.ZipCodes[0]
		}
		g.City = cityName(d.AdministrativeRegions)
	case *model.Poi:
		g.Label = d.Label
		g.Name = d.Name
		g.Admin = d.AdministrativeRegions
		g.City = cityName(d.AdministrativeRegions)
	case *model.Stop:
		g.Label = d.Label
		g.Name = d.Name
		g.Admin = d.AdministrativeRegions
		g.City = cityName(d.AdministrativeRegions)
	}
	return Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "Point", Coordinates: [2]float64{coord.Lon, coord.Lat}},
		Properties: FeatureProps{Geocoding: g},
	}
}

func cityName(admins []model.AdminRef) string {
	for _, a := range admins {
		if a.ZoneType == model.ZoneCity {
			return a.Name
		}
	}
	return ""
}

// Shape assembles the final FeatureCollection, preserving hit order.
func Shape(query string, docs []model.Document) *FeatureCollection {
	features := make([]Feature, 0, len(docs))
	for _, d := range docs {
		features = append(features, ShapeDocument(d))
	}
	return &FeatureCollection{
		Type:      "FeatureCollection",
		Geocoding: QueryEcho{Version: Version, Query: query},
		Features:  features,
	}
}

// reverseKindRank orders coincident reverse-geocode hits house before
// street before zone.
var reverseKindRank = map[model.Kind]int{
	model.KindAddr:   0,
	model.KindStreet: 1,
	model.KindAdmin:  2,
	model.KindStop:   3,
	model.KindPoi:    4,
}

// OrderReverse sorts candidate hits for a reverse-geocode response by kind
// alone: house, street, zone, stop, then poi, keeping the incoming order
// within a kind. It does not compare distances to the query point, so a
// farther house still sorts ahead of a nearer street. The slice is sorted
// in place and returned.
func OrderReverse(docs []model.Document) []model.Document {
	rank := func(d model.Document) int {
		r, ok := reverseKindRank[d.DocKind()]
		if !ok {
			return len(reverseKindRank)
		}
		return r
	}
	sort.SliceStable(docs, func(i, j int) bool { return rank(docs[i]) < rank(docs[j]) })
	return docs
}
