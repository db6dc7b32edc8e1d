// Command mimir-reaper deletes concrete indices that match this module's
// naming grammar but are no longer referenced by any alias — indices a
// prior ingest's Cleanup step failed to remove.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/config"
	"mimirsbrunn/internal/indexmgr"
	"mimirsbrunn/internal/logger"
)

func main() {
	config.Load()
	l := logger.Setup()

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	root := fs.String("root", "munin", "index root namespace to reap")
	connStr := fs.String("connection-string", os.Getenv("BACKEND_URL"), "backend base URL")
	_ = fs.Parse(os.Args[1:])

	backendURL := *connStr
	if backendURL == "" {
		backendURL = "http://localhost:9200"
	}
	b := backend.New(backendURL, &http.Client{})
	ctx := context.Background()

	all, err := b.ListIndices(ctx)
	if err != nil {
		l.Error("list_indices_error", "err", err)
		os.Exit(1)
	}
	deleted, err := indexmgr.Reap(ctx, b, *root, all)
	if err != nil {
		l.Error("reap_error", "err", err)
		os.Exit(1)
	}
	l.Info("reap_complete", "deleted", deleted)
}
