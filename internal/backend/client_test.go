package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateIndexSendsMappingForKind(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/addr_2024" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if err := c.CreateIndex(context.Background(), "addr_2024", "addr", 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotBody["mappings"]; !ok {
		t.Fatalf("expected mappings in request body, got %+v", gotBody)
	}
}

func TestUpdateAliasesIsAtomicBatch(t *testing.T) {
	var gotActions []AliasAction
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Actions []AliasAction `json:"actions"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotActions = body.Actions
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.UpdateAliases(context.Background(), []AliasAction{
		{Remove: &AliasRef{Index: "addr_2023", Alias: "addr"}},
		{Add: &AliasRef{Index: "addr_2024", Alias: "addr"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotActions) != 2 {
		t.Fatalf("expected 2 actions in one call, got %d", len(gotActions))
	}
}

func TestBulkEncodesActionAndSourceLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"took":1,"errors":false,"items":[{"index":{"_id":"a1","status":201}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	res, err := c.Bulk(context.Background(), []BulkItem{{Index: "addr_2024", ID: "a1", Doc: map[string]string{"id": "a1"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Errors || len(res.Items) != 1 || res.Items[0].Status != 201 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRequestErrorsAreClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.Refresh(context.Background(), "addr_2024")
	if err == nil {
		t.Fatal("expected error")
	}
	be, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if be.Class != ClassPermanent {
		t.Fatalf("expected permanent class for 400, got %v", be.Class)
	}
}

func TestListAliasesReturns404AsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	names, err := c.ListAliases(context.Background(), "addr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names != nil {
		t.Fatalf("expected nil names on 404, got %+v", names)
	}
}

func TestAliasesOfParsesNestedAliasObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"addr_addr_fr_20240101T000000":{"aliases":{"addr":{},"addr_fr":{}}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	names, err := c.AliasesOf(context.Background(), "addr_addr_fr_20240101T000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 aliases, got %+v", names)
	}
}

func TestListIndicesReturnsEveryKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"munin_addr_fr_20240101T000000":{"aliases":{}},"munin_admin_fr_20240101T000000":{"aliases":{}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	names, err := c.ListIndices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 indices, got %+v", names)
	}
}
