// Package httpapi registers the query engine's HTTP surface:
// /autocomplete, /reverse, /features/{id} and /status, as one ServeMux
// built by a single BuildRoutes constructor and mounted by the entry
// point.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/cache"
	"mimirsbrunn/internal/indexmgr"
	"mimirsbrunn/internal/metrics"
	"mimirsbrunn/internal/model"
	"mimirsbrunn/internal/query"
	"mimirsbrunn/internal/shaper"
)

// problem is a minimal RFC7807-shaped error body.
type problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("content-type", "application/problem+json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{Status: status, Title: title, Detail: detail})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}

// searchResponse is the subset of the backend's _search response body this
// package cares about.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeHits(raw json.RawMessage) ([]model.Document, error) {
	var sr searchResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return nil, err
	}
	docs := make([]model.Document, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		d, err := model.DecodeDocument(h.Source)
		if err != nil {
			continue
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// BuildRoutes wires the Query Planner, Backend Adapter, Result Shaper and
// cache into one ServeMux.
func BuildRoutes(b *backend.Client, c *cache.Cache, indexRoot string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/autocomplete", func(w http.ResponseWriter, r *http.Request) {
		iq, err := query.ParseInputQuery(r.URL.Query())
		if err != nil {
			metrics.QueryRequestsTotal.WithLabelValues("autocomplete").Inc()
			writeProblem(w, http.StatusBadRequest, "invalid_query", err.Error())
			return
		}
		metrics.QueryRequestsTotal.WithLabelValues("autocomplete").Inc()
		t0 := time.Now()
		defer func() {
			metrics.QueryDurationMs.WithLabelValues("autocomplete").Observe(float64(time.Since(t0).Milliseconds()))
		}()

		cacheKey := "autocomplete:" + r.URL.RawQuery
		var fc shaper.FeatureCollection
		if c.Get(r.Context(), cacheKey, &fc) {
			writeJSON(w, fc)
			return
		}

		indices := query.ResolveIndices(indexRoot, iq)
		plan := query.BuildPlan(indexRoot, iq)
		raw, err := b.Search(r.Context(), strings.Join(indices, ","), query.Encode(plan))
		if err != nil {
			writeProblem(w, http.StatusBadGateway, "backend_error", err.Error())
			return
		}
		docs, err := decodeHits(raw)
		if err != nil {
			writeProblem(w, http.StatusBadGateway, "backend_decode_error", err.Error())
			return
		}
		if len(docs) == 0 {
			metrics.QueryEmptyResultsTotal.WithLabelValues("autocomplete").Inc()
		}
		result := shaper.Shape(iq.Q, docs)
		c.Set(r.Context(), cacheKey, result)
		writeJSON(w, result)
	})

	mux.HandleFunc("/reverse", func(w http.ResponseWriter, r *http.Request) {
		rq, err := query.ParseReverseQuery(r.URL.Query())
		if err != nil {
			metrics.QueryRequestsTotal.WithLabelValues("reverse").Inc()
			writeProblem(w, http.StatusBadRequest, "invalid_query", err.Error())
			return
		}
		metrics.QueryRequestsTotal.WithLabelValues("reverse").Inc()
		t0 := time.Now()
		defer func() {
			metrics.QueryDurationMs.WithLabelValues("reverse").Observe(float64(time.Since(t0).Milliseconds()))
		}()

		plan := query.BuildReversePlan(indexRoot, rq)
		indices := []string{
			indexmgr.TypeAlias(indexRoot, "addr"),
			indexmgr.TypeAlias(indexRoot, "street"),
			indexmgr.TypeAlias(indexRoot, "admin"),
		}
		raw, err := b.Search(r.Context(), strings.Join(indices, ","), query.Encode(plan))
		if err != nil {
			writeProblem(w, http.StatusBadGateway, "backend_error", err.Error())
			return
		}
		docs, err := decodeHits(raw)
		if err != nil {
			writeProblem(w, http.StatusBadGateway, "backend_decode_error", err.Error())
			return
		}
		docs = shaper.OrderReverse(docs)
		if len(docs) == 0 {
			metrics.QueryEmptyResultsTotal.WithLabelValues("reverse").Inc()
		}
		writeJSON(w, shaper.Shape("", docs))
	})

	mux.HandleFunc("/features/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/features/")
		if id == "" {
			writeProblem(w, http.StatusBadRequest, "missing_id", "")
			return
		}
		metrics.QueryRequestsTotal.WithLabelValues("features").Inc()
		body := map[string]any{"query": map[string]any{"term": map[string]any{"id": id}}, "size": 1}
		raw, err := b.Search(r.Context(), indexRoot+"_*", body)
		if err != nil {
			writeProblem(w, http.StatusBadGateway, "backend_error", err.Error())
			return
		}
		docs, err := decodeHits(raw)
		if err != nil || len(docs) == 0 {
			writeProblem(w, http.StatusNotFound, "not_found", id)
			return
		}
		writeJSON(w, shaper.Shape("", docs))
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "ok", "version": shaper.Version})
	})

	return mux
}
