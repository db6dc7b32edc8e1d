package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"mimirsbrunn/internal/backend"
	"mimirsbrunn/internal/cache"
)

func fakeBackendServer(t *testing.T, source map[string]any) *httptest.Server {
	t.Helper()
	raw, err := json.Marshal(source)
	if err != nil {
		t.Fatalf("marshal source: %v", err)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"hits": map[string]any{
				"hits": []map[string]any{
					{"_source": json.RawMessage(raw)},
				},
			},
		}
		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestAutocompleteRejectsEmptyQuery(t *testing.T) {
	srv := fakeBackendServer(t, map[string]any{"type": "admin", "id": "admin:1", "label": "Paris"})
	defer srv.Close()
	b := backend.New(srv.URL, nil)
	mux := BuildRoutes(b, &cache.Cache{}, "munin")

	req := httptest.NewRequest(http.MethodGet, "/autocomplete?"+url.Values{}.Encode(), nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty q, got %d", rr.Code)
	}
}

func TestAutocompleteShapesBackendHits(t *testing.T) {
	srv := fakeBackendServer(t, map[string]any{"type": "admin", "id": "admin:1", "label": "Paris", "name": "Paris", "coord": map[string]any{"lat": 48.85, "lon": 2.35}, "weight": 1.0, "level": 8, "zone_type": "city"})
	defer srv.Close()
	b := backend.New(srv.URL, nil)
	mux := BuildRoutes(b, &cache.Cache{}, "munin")

	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=paris", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	features, ok := body["features"].([]any)
	if !ok || len(features) != 1 {
		t.Fatalf("expected 1 feature, got %+v", body)
	}
}

func TestAutocompleteRejectsOutOfRangeFocusPoint(t *testing.T) {
	srv := fakeBackendServer(t, map[string]any{"type": "admin", "id": "admin:1", "label": "Paris"})
	defer srv.Close()
	b := backend.New(srv.URL, nil)
	mux := BuildRoutes(b, &cache.Cache{}, "munin")

	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=x&lat=200&lon=0", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range focus point, got %d", rr.Code)
	}
}

func TestReverseRejectsOutOfRangeCoords(t *testing.T) {
	srv := fakeBackendServer(t, map[string]any{"type": "admin", "id": "admin:1", "label": "Paris"})
	defer srv.Close()
	b := backend.New(srv.URL, nil)
	mux := BuildRoutes(b, &cache.Cache{}, "munin")

	req := httptest.NewRequest(http.MethodGet, "/reverse?lat=999&lon=2", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestStatusReportsOK(t *testing.T) {
	mux := BuildRoutes(backend.New("http://unused", nil), &cache.Cache{}, "munin")
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
