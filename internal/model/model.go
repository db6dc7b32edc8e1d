// Package model defines the unified geographic document schema shared by
// every ingest adapter and by the query engine: Admin, Street, Addr, Poi and
// Stop all embed Common and are distinguished by a Kind discriminator so the
// result shaper can dispatch without type assertions scattered across the
// codebase.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Kind tags which variant a Document carries. Mirrors the backend's type
// alias segment (root_{type}).
type Kind string

const (
	KindAdmin  Kind = "admin"
	KindStreet Kind = "street"
	KindAddr   Kind = "addr"
	KindPoi    Kind = "poi"
	KindStop   Kind = "stop"
)

// ZoneType enumerates the administrative levels a Admin document may carry.
type ZoneType string

const (
	ZoneCountry     ZoneType = "country"
	ZoneState       ZoneType = "state"
	ZoneRegion      ZoneType = "region"
	ZoneDepartment  ZoneType = "department"
	ZoneCity        ZoneType = "city"
	ZoneCityDistrict ZoneType = "city_district"
	ZoneSuburb      ZoneType = "suburb"
)

// Coord is a WGS84 point. The zero value is the point (0, 0); use NewCoord
// to construct a range- and finiteness-checked value.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewCoord validates and returns a Coord, or an error if the point is not a
// finite WGS84 coordinate.
func NewCoord(lat, lon float64) (Coord, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return Coord{}, errors.New("model: coord is not finite")
	}
	if lat < -90 || lat > 90 {
		return Coord{}, fmt.Errorf("model: lat %.6f out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return Coord{}, fmt.Errorf("model: lon %.6f out of range", lon)
	}
	return Coord{Lat: lat, Lon: lon}, nil
}

// Ring is a closed sequence of points; the first and last point need not be
// repeated. A polygon's Rings[0] is its outer boundary, the rest are holes.
type Ring []Coord

// Polygon is one part of a (multi)polygon boundary.
type Polygon struct {
	Rings [][]Coord `json:"rings"`
}

// AdminRef is the flattened, non-cyclic snapshot of an ancestor Admin
// embedded inside every document's administrative_regions list (Design
// Note 1: no live references, to keep serialization join-free).
type AdminRef struct {
	ID       string   `json:"id"`
	Level    int      `json:"level"`
	Name     string   `json:"name"`
	ZoneType ZoneType `json:"zone_type"`
	ZipCodes []string `json:"zip_codes,omitempty"`
}

// Common holds the fields shared by every indexed document kind.
type Common struct {
	ID                    string     `json:"id"`
	Label                 string     `json:"label"`
	Name                  string     `json:"name"`
	Coord                 Coord      `json:"coord"`
	ZipCodes              []string   `json:"zip_codes,omitempty"`
	Weight                float64    `json:"weight"`
	AdministrativeRegions []AdminRef `json:"administrative_regions,omitempty"`
	Kind                  Kind       `json:"type"`

	// Dataset/Version are optional provenance fields. No constructor or
	// ingest path in this module sets them; they stay empty unless a
	// caller fills them in.
	Dataset string    `json:"dataset,omitempty"`
	Version time.Time `json:"version,omitempty"`
}

func validateCommon(id, label string, coord Coord, weight float64) error {
	if id == "" {
		return errors.New("model: id must not be empty")
	}
	if label == "" {
		return errors.New("model: label must not be empty")
	}
	if weight < 0 {
		return errors.New("model: weight must be nonnegative")
	}
	if _, err := NewCoord(coord.Lat, coord.Lon); err != nil {
		return err
	}
	return nil
}

// Admin is an administrative region: country down to suburb.
type Admin struct {
	Common
	Level    int       `json:"level"`
	ZoneType ZoneType  `json:"zone_type"`
	Insee    string    `json:"insee,omitempty"`
	Boundary []Polygon `json:"boundary,omitempty"`
}

// NewAdmin builds an Admin from the given coord verbatim; it does not
// derive one from boundary. Callers that only have a boundary (e.g. the
// OSM adapter) compute a representative coord themselves before calling
// NewAdmin.
func NewAdmin(id, name string, level int, zoneType ZoneType, coord Coord, boundary []Polygon, weight float64) (*Admin, error) {
	label := name
	if err := validateCommon(id, label, coord, weight); err != nil {
		return nil, err
	}
	if level <= 0 {
		return nil, errors.New("model: admin level must be positive")
	}
	a := &Admin{
		Common: Common{
			ID: id, Label: label, Name: name, Coord: coord, Weight: weight, Kind: KindAdmin,
		},
		Level:    level,
		ZoneType: zoneType,
		Boundary: boundary,
	}
	return a, nil
}

// Ref returns the flattened ancestor reference used by descendants'
// administrative_regions list.
func (a *Admin) Ref() AdminRef {
	return AdminRef{ID: a.ID, Level: a.Level, Name: a.Name, ZoneType: a.ZoneType, ZipCodes: a.ZipCodes}
}

// Street is a named way attached to zero or more admins.
type Street struct {
	Common
	StreetName string `json:"street_name"`
}

// NewStreet builds a Street document. admins finest-level-first.
func NewStreet(id, streetName string, coord Coord, admins []AdminRef, weight float64) (*Street, error) {
	label := streetName
	if err := validateCommon(id, label, coord, weight); err != nil {
		return nil, err
	}
	return &Street{
		Common: Common{
			ID: id, Label: label, Name: streetName, Coord: coord, Weight: weight,
			AdministrativeRegions: admins, Kind: KindStreet,
		},
		StreetName: streetName,
	}, nil
}

// Addr is a house-numbered point on a street.
type Addr struct {
	Common
	HouseNumber string `json:"house_number"`
	Street      Street `json:"street"`
}

// cityOf returns the City-level admin name from a finest-first admin chain,
// used to compose an Addr's label. When the chain has no city it returns
// the last (coarsest) admin's name, and "" for an empty chain.
func cityOf(admins []AdminRef) string {
	for _, a := range admins {
		if a.ZoneType == ZoneCity {
			return a.Name
		}
	}
	if len(admins) > 0 {
		return admins[len(admins)-1].Name
	}
	return ""
}

// ComposeAddrLabel builds "{house_number} {street_name} ({city})" and is
// idempotent: composing from its own output's parts yields the same
// label again.
func ComposeAddrLabel(houseNumber, streetName, city string) string {
	if city == "" {
		return fmt.Sprintf("%s %s", houseNumber, streetName)
	}
	return fmt.Sprintf("%s %s (%s)", houseNumber, streetName, city)
}

// NewAddr builds an Addr document with a composed label.
func NewAddr(id, houseNumber string, street Street, coord Coord, zipCodes []string, weight float64) (*Addr, error) {
	city := cityOf(street.AdministrativeRegions)
	label := ComposeAddrLabel(houseNumber, street.StreetName, city)
	if err := validateCommon(id, label, coord, weight); err != nil {
		return nil, err
	}
	return &Addr{
		Common: Common{
			ID: id, Label: label, Name: street.StreetName, Coord: coord, ZipCodes: zipCodes,
			Weight: weight, AdministrativeRegions: street.AdministrativeRegions, Kind: KindAddr,
		},
		HouseNumber: houseNumber,
		Street:      street,
	}, nil
}

// PoiType identifies a point-of-interest category from a closed catalog.
type PoiType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Poi is a point of interest with free-form properties.
type Poi struct {
	Common
	PoiType    PoiType           `json:"poi_type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// NewPoi builds a Poi document.
func NewPoi(id, name string, poiType PoiType, coord Coord, admins []AdminRef, props map[string]string, weight float64) (*Poi, error) {
	if err := validateCommon(id, name, coord, weight); err != nil {
		return nil, err
	}
	return &Poi{
		Common: Common{
			ID: id, Label: name, Name: name, Coord: coord, Weight: weight,
			AdministrativeRegions: admins, Kind: KindPoi,
		},
		PoiType:    poiType,
		Properties: props,
	}, nil
}

// Stop is a public-transport stop area.
type Stop struct {
	Common
	CommercialModes []string `json:"commercial_modes,omitempty"`
	PhysicalModes   []string `json:"physical_modes,omitempty"`
	Codes           map[string]string `json:"codes,omitempty"`
	Lines           []string `json:"lines,omitempty"`
}

// NewStop builds a Stop document, identified by its stop_area id.
func NewStop(id, name string, coord Coord, admins []AdminRef, weight float64) (*Stop, error) {
	if err := validateCommon(id, name, coord, weight); err != nil {
		return nil, err
	}
	return &Stop{
		Common: Common{
			ID: id, Label: name, Name: name, Coord: coord, Weight: weight,
			AdministrativeRegions: admins, Kind: KindStop,
		},
	}, nil
}

// Document is implemented by every document kind; it lets ingest adapters
// and the bulk loader operate on a single stream type without reflection.
type Document interface {
	DocID() string
	DocKind() Kind
	DocCoord() Coord
}

func (a *Admin) DocID() string    { return a.ID }
func (a *Admin) DocKind() Kind    { return KindAdmin }
func (a *Admin) DocCoord() Coord  { return a.Coord }

func (s *Street) DocID() string   { return s.ID }
func (s *Street) DocKind() Kind   { return KindStreet }
func (s *Street) DocCoord() Coord { return s.Coord }

func (a *Addr) DocID() string     { return a.ID }
func (a *Addr) DocKind() Kind     { return KindAddr }
func (a *Addr) DocCoord() Coord   { return a.Coord }

func (p *Poi) DocID() string      { return p.ID }
func (p *Poi) DocKind() Kind      { return KindPoi }
func (p *Poi) DocCoord() Coord    { return p.Coord }

func (s *Stop) DocID() string     { return s.ID }
func (s *Stop) DocKind() Kind     { return KindStop }
func (s *Stop) DocCoord() Coord   { return s.Coord }

// DecodeDocument hydrates a Document from a backend hit's raw _source,
// dispatching on the "type" discriminator written by Common.Kind.
func DecodeDocument(raw []byte) (Document, error) {
	var probe struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("model: decode type discriminator: %w", err)
	}
	switch probe.Type {
	case KindAdmin:
		var d Admin
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case KindStreet:
		var d Street
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case KindAddr:
		var d Addr
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case KindPoi:
		var d Poi
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case KindStop:
		var d Stop
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("model: unknown document type %q", probe.Type)
	}
}
