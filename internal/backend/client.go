// Package backend is a thin net/http/JSON client over the search
// backend's HTTP API. It intentionally avoids an official search-engine
// client library: see DESIGN.md for why raw JSON over net/http was
// chosen here instead.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/metrics"
)

// Client talks to one search backend cluster over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client. baseURL is the backend's root URL, e.g.
// "http://localhost:9200". httpClient may be nil, in which case a client
// with a 30s timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, newError(op, ClassPermanent, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	t0 := time.Now()
	metrics.BackendRequestsTotal.WithLabelValues(op).Inc()
	resp, err := c.http.Do(req)
	metrics.BackendDurationMs.WithLabelValues(op).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.BackendErrorsTotal.WithLabelValues(op, string(ClassTransient)).Inc()
		logger.L().Error("backend_request_error", "op", op, "err", err)
		return nil, newError(op, classify(err, 0), err)
	}
	if resp.StatusCode >= 400 {
		class := classify(nil, resp.StatusCode)
		metrics.BackendErrorsTotal.WithLabelValues(op, string(class)).Inc()
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.L().Error("backend_response_error", "op", op, "status", resp.StatusCode, "body", string(b))
		return nil, newError(op, class, fmt.Errorf("status %d: %s", resp.StatusCode, string(b)))
	}
	return resp, nil
}

// CreateIndex creates a concrete index with the given mapping body for
// kind and the given shard/replica counts.
func (c *Client) CreateIndex(ctx context.Context, name, kind string, shards, replicas int) error {
	mapping := mappingFor(kind)
	settings := fmt.Sprintf(settingsTemplate, shards, replicas)
	var settingsDoc map[string]any
	if err := json.Unmarshal([]byte(settings), &settingsDoc); err != nil {
		return newError("create_index", ClassPermanent, err)
	}
	body := settingsDoc
	if mapping != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(mapping), &m); err != nil {
			return newError("create_index", ClassPermanent, err)
		}
		body["mappings"] = m
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return newError("create_index", ClassPermanent, err)
	}
	resp, err := c.do(ctx, "create_index", http.MethodPut, "/"+url.PathEscape(name), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// DeleteIndex removes a concrete index.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	resp, err := c.do(ctx, "delete_index", http.MethodDelete, "/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// Refresh forces a refresh on the named index, making recently bulk-loaded
// documents visible to search.
func (c *Client) Refresh(ctx context.Context, name string) error {
	resp, err := c.do(ctx, "refresh", http.MethodPost, "/"+url.PathEscape(name)+"/_refresh", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// AliasAction is one step of an atomic _aliases batch: the alias cutover
// during Publish is always a single call carrying every add/remove pair.
type AliasAction struct {
	Add    *AliasRef `json:"add,omitempty"`
	Remove *AliasRef `json:"remove,omitempty"`
}

type AliasRef struct {
	Index string `json:"index"`
	Alias string `json:"alias"`
}

// UpdateAliases submits a batch of alias actions atomically.
func (c *Client) UpdateAliases(ctx context.Context, actions []AliasAction) error {
	buf, err := json.Marshal(map[string]any{"actions": actions})
	if err != nil {
		return newError("update_aliases", ClassPermanent, err)
	}
	resp, err := c.do(ctx, "update_aliases", http.MethodPost, "/_aliases", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// ListAliases returns every concrete index currently behind alias.
func (c *Client) ListAliases(ctx context.Context, alias string) ([]string, error) {
	resp, err := c.do(ctx, "list_aliases", http.MethodGet, "/_alias/"+url.PathEscape(alias), nil)
	if err != nil {
		if be, ok := err.(*Error); ok && strings.Contains(be.Error(), "status 404") {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()
	var out map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newError("list_aliases", ClassPermanent, err)
	}
	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	return names, nil
}

// AliasesOf returns the alias names currently pointing at a concrete
// index, or nil if the index has none (or does not exist).
func (c *Client) AliasesOf(ctx context.Context, index string) ([]string, error) {
	resp, err := c.do(ctx, "aliases_of", http.MethodGet, "/"+url.PathEscape(index)+"/_alias", nil)
	if err != nil {
		if be, ok := err.(*Error); ok && strings.Contains(be.Error(), "status 404") {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()
	var out map[string]struct {
		Aliases map[string]json.RawMessage `json:"aliases"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newError("aliases_of", ClassPermanent, err)
	}
	entry, ok := out[index]
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(entry.Aliases))
	for name := range entry.Aliases {
		names = append(names, name)
	}
	return names, nil
}

// ListIndices returns the name of every concrete index the backend knows
// about, for operator tooling (the Index Reaper) that needs to scan for
// dangling indices rather than look one up by alias.
func (c *Client) ListIndices(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, "list_indices", http.MethodGet, "/_aliases", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newError("list_indices", ClassPermanent, err)
	}
	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	return names, nil
}

// BulkItem is one document to index in a Bulk call.
type BulkItem struct {
	Index string
	ID    string
	Doc   any
}

// BulkResult reports per-item outcomes from a Bulk call.
type BulkResult struct {
	Took   int
	Errors bool
	Items  []BulkItemResult
}

type BulkItemResult struct {
	ID     string
	Status int
	Error  string
}

// Bulk submits a batch of index actions using the NDJSON bulk wire format
// (action line + source line, repeated).
func (c *Client) Bulk(ctx context.Context, items []BulkItem) (*BulkResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, it := range items {
		action := map[string]any{"index": map[string]any{"_index": it.Index, "_id": it.ID}}
		if err := enc.Encode(action); err != nil {
			return nil, newError("bulk", ClassPermanent, err)
		}
		if err := enc.Encode(it.Doc); err != nil {
			return nil, newError("bulk", ClassPermanent, err)
		}
	}
	resp, err := c.do(ctx, "bulk", http.MethodPost, "/_bulk", &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw struct {
		Took   int  `json:"took"`
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, newError("bulk", ClassPermanent, err)
	}
	out := &BulkResult{Took: raw.Took, Errors: raw.Errors}
	for _, it := range raw.Items {
		out.Items = append(out.Items, BulkItemResult{ID: it.Index.ID, Status: it.Index.Status, Error: it.Index.Error.Reason})
	}
	return out, nil
}

// Search runs a raw query body against one or more indices/aliases and
// returns the decoded response body for the query package to interpret.
func (c *Client) Search(ctx context.Context, index string, query any) (json.RawMessage, error) {
	buf, err := json.Marshal(query)
	if err != nil {
		return nil, newError("search", ClassPermanent, err)
	}
	resp, err := c.do(ctx, "search", http.MethodPost, "/"+url.PathEscape(index)+"/_search", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError("search", ClassPermanent, err)
	}
	return raw, nil
}
