package ingestadapters

import (
	"context"
	"sort"
	"testing"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/model"
)

func TestNTFSAggregatesStopPointsIntoStopArea(t *testing.T) {
	areas := []NTFSStopArea{
		{
			ID: "SA:1", Name: "Gare Test", Coord: model.Coord{Lat: 48.8, Lon: 2.3},
			StopPoints: []NTFSStopPoint{
				{ID: "SP:1", CommercialModes: []string{"Bus"}, PhysicalModes: []string{"Bus"}, Lines: []string{"L1"}, Codes: map[string]string{"gtfs": "A"}},
				{ID: "SP:2", CommercialModes: []string{"Bus"}, PhysicalModes: []string{"Tramway"}, Lines: []string{"L2"}, Codes: map[string]string{"external": "B"}},
			},
		},
	}
	gf := geofinder.New()
	docs := drain(NTFS(context.Background(), areas, gf))
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	stop, ok := docs[0].(*model.Stop)
	if !ok {
		t.Fatalf("expected *model.Stop, got %T", docs[0])
	}
	sort.Strings(stop.Lines)
	if len(stop.Lines) != 2 || stop.Lines[0] != "L1" || stop.Lines[1] != "L2" {
		t.Fatalf("unexpected lines: %+v", stop.Lines)
	}
	if len(stop.CommercialModes) != 1 {
		t.Fatalf("expected deduplicated commercial modes, got %+v", stop.CommercialModes)
	}
	if stop.Codes["gtfs"] != "A" || stop.Codes["external"] != "B" {
		t.Fatalf("unexpected codes: %+v", stop.Codes)
	}
}
