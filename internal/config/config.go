// Package config is the ambient configuration layer shared by every
// binary in this module: environment variables (optionally loaded from a
// .env file via godotenv) for daemon configuration, plus a CLI flag
// surface for the batch ingest commands.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads ".env" and "data/env/.env" if present. Missing files are not
// an error: env vars set by the process's environment always take
// precedence over either file.
func Load() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Server holds the query-engine daemon's configuration (cmd/bragi).
type Server struct {
	Addr            string
	BackendURL      string
	RequestTimeout  time.Duration
	IndexRoot       string
	RateLimitQPS    float64
	RateLimitOn     bool
}

// ServerFromEnv reads BRAGI_ADDR, BACKEND_URL, REQUEST_TIMEOUT_MS,
// INDEX_ROOT, RATE_LIMIT_ENABLED and RATE_LIMIT_QPS.
func ServerFromEnv() Server {
	return Server{
		Addr:           envOr("BRAGI_ADDR", ":4000"),
		BackendURL:     envOr("BACKEND_URL", "http://localhost:9200"),
		RequestTimeout: envDurationMs("REQUEST_TIMEOUT_MS", 5*time.Second),
		IndexRoot:      envOr("INDEX_ROOT", "munin"),
		RateLimitOn:    os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:   envFloat("RATE_LIMIT_QPS", 50),
	}
}

// Ingest holds the shared configuration every ingest CLI (mimir-osm,
// mimir-cosmogony, mimir-bano, mimir-ntfs) builds from flags and env.
type Ingest struct {
	Input            string
	Dataset          string
	BackendURL       string
	NbThreads        int
	Levels           []int
	ImportWay        bool
	ImportAdmin      bool
	ImportPoi        bool
	Shards           int
	Replicas         int
	AdminSnapshot    string
	ErrorThreshold   int
}

// ParseIngestFlags parses the ingest CLIs' shared flag surface: --input,
// --dataset, --connection-string, --nb-threads, --level (repeatable),
// --import-way/--import-admin/--import-poi. It exits the process with
// status 2 on a flag-parsing error, matching the standard library flag
// package's own convention, and with status 2 when a required flag is
// missing.
func ParseIngestFlags(args []string) Ingest {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	input := fs.String("input", "", "path to the source data file or directory (required)")
	dataset := fs.String("dataset", "", "dataset identifier, e.g. france, idfm (required)")
	connStr := fs.String("connection-string", "", "backend base URL (defaults to BACKEND_URL env var)")
	nbThreads := fs.Int("nb-threads", 4, "bulk loader worker pool size")
	importWay := fs.Bool("import-way", true, "import OSM ways as streets/POIs")
	importAdmin := fs.Bool("import-admin", true, "import administrative regions")
	importPoi := fs.Bool("import-poi", true, "import points of interest")
	shards := fs.Int("shards", 1, "backend index shard count")
	replicas := fs.Int("replicas", 0, "backend index replica count")
	adminSnapshot := fs.String("admin-snapshot", "", "path to a JSON admin-zone snapshot used to attach administrative regions (bano/ntfs adapters)")
	errorThreshold := fs.Int("error-threshold", 0, "max per-kind item errors tolerated before that kind's ingest is aborted")
	var levels levelList
	fs.Var(&levels, "level", "OSM admin_level to import (repeatable)")

	_ = fs.Parse(args[1:])

	if *input == "" || *dataset == "" {
		fs.Usage()
		os.Exit(2)
	}
	backend := *connStr
	if backend == "" {
		backend = envOr("BACKEND_URL", "http://localhost:9200")
	}
	lv := []int(levels)
	if len(lv) == 0 {
		lv = []int{2, 4, 6, 8}
	}
	return Ingest{
		Input:       *input,
		Dataset:     *dataset,
		BackendURL:  backend,
		NbThreads:   *nbThreads,
		Levels:      lv,
		ImportWay:   *importWay,
		ImportAdmin: *importAdmin,
		ImportPoi:   *importPoi,
		Shards:      *shards,
		Replicas:    *replicas,
		AdminSnapshot: *adminSnapshot,
		ErrorThreshold: *errorThreshold,
	}
}

// levelList implements flag.Value to accept --level repeatedly.
type levelList []int

func (l *levelList) String() string {
	if l == nil {
		return ""
	}
	s := ""
	for i, v := range *l {
		if i > 0 {
			s += ","
		}
		s += strconv.Itoa(v)
	}
	return s
}

func (l *levelList) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*l = append(*l, n)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDurationMs(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}
