package config

import "testing"

func TestParseIngestFlagsDefaultsLevels(t *testing.T) {
	ing := ParseIngestFlags([]string{"mimir-osm", "--input", "france.osm.pbf", "--dataset", "france"})
	if len(ing.Levels) != 4 || ing.Levels[0] != 2 {
		t.Fatalf("expected default admin levels, got %+v", ing.Levels)
	}
	if ing.NbThreads != 4 {
		t.Fatalf("expected default nb-threads 4, got %d", ing.NbThreads)
	}
}

func TestParseIngestFlagsAcceptsRepeatedLevel(t *testing.T) {
	ing := ParseIngestFlags([]string{"mimir-osm", "--input", "x", "--dataset", "d", "--level", "8", "--level", "10"})
	if len(ing.Levels) != 2 || ing.Levels[0] != 8 || ing.Levels[1] != 10 {
		t.Fatalf("unexpected levels: %+v", ing.Levels)
	}
}

func TestParseIngestFlagsHonorsConnectionString(t *testing.T) {
	ing := ParseIngestFlags([]string{"mimir-osm", "--input", "x", "--dataset", "d", "--connection-string", "http://backend:9200"})
	if ing.BackendURL != "http://backend:9200" {
		t.Fatalf("unexpected backend url: %q", ing.BackendURL)
	}
}
