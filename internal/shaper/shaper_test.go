package shaper

import (
	"testing"

	"mimirsbrunn/internal/model"
)

func mustAddr(t *testing.T) *model.Addr {
	t.Helper()
	coord, _ := model.NewCoord(48.85, 2.35)
	street, _ := model.NewStreet("street:1", "avenue de Segur", coord, []model.AdminRef{
		{ID: "admin:paris", Name: "Paris", ZoneType: model.ZoneCity},
	}, 1.0)
	addr, err := model.NewAddr("addr:1", "20", *street, coord, []string{"75007"}, 1.0)
	if err != nil {
		t.Fatalf("NewAddr: %v", err)
	}
	return addr
}

func TestShapeDocumentMapsAddrFields(t *testing.T) {
	f := ShapeDocument(mustAddr(t))
	if f.Properties.Geocoding.Type != "house" {
		t.Fatalf("unexpected type: %q", f.Properties.Geocoding.Type)
	}
	if f.Properties.Geocoding.HouseNumber != "20" {
		t.Fatalf("unexpected house number: %q", f.Properties.Geocoding.HouseNumber)
	}
	if f.Properties.Geocoding.Postcode != "75007" {
		t.Fatalf("unexpected postcode: %q", f.Properties.Geocoding.Postcode)
	}
	if f.Properties.Geocoding.City != "Paris" {
		t.Fatalf("unexpected city: %q", f.Properties.Geocoding.City)
	}
	if f.Geometry.Coordinates != [2]float64{2.35, 48.85} {
		t.Fatalf("unexpected coordinates: %+v", f.Geometry.Coordinates)
	}
}

func TestShapePreservesHitOrder(t *testing.T) {
	coord, _ := model.NewCoord(0, 0)
	a1, _ := model.NewPoi("poi:1", "A", model.PoiType{ID: "x", Name: "x"}, coord, nil, nil, 1.0)
	a2, _ := model.NewPoi("poi:2", "B", model.PoiType{ID: "x", Name: "x"}, coord, nil, nil, 1.0)
	fc := Shape("test", []model.Document{a2, a1})
	if fc.Features[0].Properties.Geocoding.ID != "poi:2" || fc.Features[1].Properties.Geocoding.ID != "poi:1" {
		t.Fatalf("expected hit order preserved, got %+v", fc.Features)
	}
}

func TestOrderReversePutsHouseBeforeStreetBeforeZone(t *testing.T) {
	coord, _ := model.NewCoord(0, 0)
	admin, _ := model.NewAdmin("admin:1", "Zone", 8, model.ZoneCity, coord, nil, 1.0)
	street, _ := model.NewStreet("street:1", "Street", coord, nil, 1.0)
	addrStreet, _ := model.NewStreet("street:2", "Street2", coord, nil, 1.0)
	addr, _ := model.NewAddr("addr:1", "1", *addrStreet, coord, nil, 1.0)

	docs := OrderReverse([]model.Document{admin, street, addr})
	if docs[0].DocKind() != model.KindAddr || docs[1].DocKind() != model.KindStreet || docs[2].DocKind() != model.KindAdmin {
		kinds := make([]model.Kind, len(docs))
		for i, d := range docs {
			kinds[i] = d.DocKind()
		}
		t.Fatalf("unexpected order: %+v", kinds)
	}
}
