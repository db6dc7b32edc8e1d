package ingestadapters

import (
	"context"
	"testing"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/model"
)

func TestBanoOAComposesLabelFromSyntheticCity(t *testing.T) {
	rows := []BanoRow{
		{ID: "1", HouseNumber: "20", StreetName: "avenue de Segur", City: "Paris", ZipCode: "75007", Coord: model.Coord{Lat: 48.85, Lon: 2.30}},
	}
	gf := geofinder.New() // empty: no admin chain, City must come from the row
	docs := drain(BanoOA(context.Background(), rows, gf))

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	addr, ok := docs[0].(*model.Addr)
	if !ok {
		t.Fatalf("expected *model.Addr, got %T", docs[0])
	}
	if addr.Label != "20 avenue de Segur (Paris)" {
		t.Fatalf("unexpected label: %q", addr.Label)
	}
}
