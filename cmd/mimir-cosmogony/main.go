// Command mimir-cosmogony ingests a cosmogony-built administrative
// hierarchy (already decoded into typed zone records, not the raw
// cosmogony binary file) into the search backend.
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

type inputDoc struct {
	Zones []ingestadapters.CosmogonyZone `json:"zones"`
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
	docs, _ := ingestadapters.Cosmogony(ctx, in.Zones)

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
