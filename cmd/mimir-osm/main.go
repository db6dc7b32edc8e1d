// Command mimir-osm ingests an OSM extract (already decoded into typed
// relation/way/node records by an external PBF reader — this binary
// starts from that typed representation, not the raw .osm.pbf file) into
// the search backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/bulk"
	"mimirsbrunn/internal/config"
	"mimirsbrunn/internal/ingestadapters"
	"mimirsbrunn/internal/ingestrun"
	"mimirsbrunn/internal/logger"
)

// inputDoc is the on-disk shape this command reads: a PBF reader library
// would normally hand these records to the process in memory; here they
// come from a JSON file to keep the parser boundary explicit.
type inputDoc struct {
	Relations []ingestadapters.OSMRelation `json:"relations"`
	Ways      []ingestadapters.OSMWay      `json:"ways"`
	Nodes     []ingestadapters.OSMNode     `json:"nodes"`
}

func main() {
	config.Load()
	l := logger.Setup()
	ing := config.ParseIngestFlags(os.Args)

	f, err := os.Open(ing.Input)
	if err != nil {
		l.Error("input_open_error", "err", err)
		os.Exit(1)
	}
	defer f.Close()
	var in inputDoc
	if err := json.NewDecoder(f).Decode(&in); err != nil {
		l.Error("input_decode_error", "err", err)
		os.Exit(1)
	}

	b := backend.New(ing.BackendURL, &http.Client{})
	ctx := context.Background()
	cfg := ingestadapters.OSMConfig{
		AdminLevels: ing.Levels,
		ImportAdmin: ing.ImportAdmin,
		ImportWay:   ing.ImportWay,
		ImportPoi:   ing.ImportPoi,
	}
	docs := ingestadapters.OSM(ctx, in.Relations, in.Ways, in.Nodes, nil, cfg)

	run := &ingestrun.Run{
		Backend:        b,
		Root:           "munin",
		Dataset:        ing.Dataset,
		Shards:         ing.Shards,
		Replicas:       ing.Replicas,
		BulkConfig:     bulk.Config{Parallelism: ing.NbThreads},
		ErrorThreshold: ing.ErrorThreshold,
	}
	report, err := run.Execute(ctx, docs)
	if err != nil {
		l.Error("ingest_failed", "err", err, "aborted", report.Aborted)
		var setupErr *ingestrun.SetupError
		if errors.As(err, &setupErr) {
			os.Exit(2)
		}
		os.Exit(3)
	}
	l.Info("ingest_complete", "indexed", report.Indexed)
}
