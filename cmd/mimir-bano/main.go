// Command mimir-bano ingests a BANO/OpenAddresses extract (already
// decoded into typed address rows, not the raw CSV file) into the search
// backend.
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
	Rows []ingestadapters.BanoRow `json:"rows"`
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

	gf, err := ingestadapters.LoadGeofinderSnapshot(ing.AdminSnapshot)
	if err != nil {
		l.Error("admin_snapshot_error", "err", err)
		os.Exit(1)
	}

	b := backend.New(ing.BackendURL, &http.Client{})
	ctx := context.Background()
	docs := ingestadapters.BanoOA(ctx, in.Rows, gf)

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
