package ingestadapters

import (
	"context"
	"testing"

	"mimirsbrunn/internal/geofinder"
	"mimirsbrunn/internal/model"
)

func drain(ch <-chan model.Document) []model.Document {
	var docs []model.Document
	for d := range ch {
		docs = append(docs, d)
	}
	return docs
}

func squareRing(minLat, minLon, maxLat, maxLon float64) model.Polygon {
	return model.Polygon{Rings: [][]model.Coord{{
		{Lat: minLat, Lon: minLon}, {Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon}, {Lat: maxLat, Lon: minLon}, {Lat: minLat, Lon: minLon},
	}}}
}

func TestOSMEmitsAdminsBeforeWaysAndNodes(t *testing.T) {
	relations := []OSMRelation{
		{ID: 1, Tags: map[string]string{"admin_level": "8", "name": "Paris"}, Boundary: []model.Polygon{squareRing(48, 2, 49, 3)}},
	}
	n1 := OSMNode{ID: 10, Coord: model.Coord{Lat: 48.5, Lon: 2.5}, Tags: map[string]string{"name": "rue de test", "amenity": ""}}
	n2 := OSMNode{ID: 11, Coord: model.Coord{Lat: 48.5, Lon: 2.5}}
	ways := []OSMWay{
		{ID: 100, Tags: map[string]string{"name": "rue de test"}, Nodes: []OSMNode{n1, n2}},
	}
	nodes := []OSMNode{
		{ID: 20, Coord: model.Coord{Lat: 48.5, Lon: 2.5}, Tags: map[string]string{"amenity": "cafe", "name": "Cafe du Coin"}},
	}

	cfg := OSMConfig{AdminLevels: []int{8}, ImportAdmin: true, ImportWay: true, ImportPoi: true}
	docs := drain(OSM(context.Background(), relations, ways, nodes, nil, cfg))

	if len(docs) < 3 {
		t.Fatalf("expected at least 3 documents, got %d", len(docs))
	}
	if docs[0].DocKind() != model.KindAdmin {
		t.Fatalf("expected admin first, got %v", docs[0].DocKind())
	}
}

func TestOSMWayPoiTakesPrecedenceOverStreet(t *testing.T) {
	ways := []OSMWay{
		{ID: 200, Tags: map[string]string{"amenity": "hospital", "name": "Hopital Test"}, Nodes: []OSMNode{
			{ID: 1, Coord: model.Coord{Lat: 10, Lon: 10}},
		}},
	}
	gf := geofinder.New()
	docs := drain(OSM(context.Background(), nil, ways, nil, gf, OSMConfig{ImportWay: true}))
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].DocKind() != model.KindPoi {
		t.Fatalf("expected poi, got %v", docs[0].DocKind())
	}
}

func TestResolvePoiTypeUnmatchedTagsYieldNothing(t *testing.T) {
	if _, ok := resolvePoiType(map[string]string{"highway": "residential"}); ok {
		t.Fatal("expected no match for unmatched tag")
	}
	if _, ok := resolvePoiType(map[string]string{"amenity": "restaurant"}); !ok {
		t.Fatal("expected match for configured tag")
	}
}
