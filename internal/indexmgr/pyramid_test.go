package indexmgr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mimirsbrunn/internal/backend"
)

func TestConcreteNameMatchesNamingGrammar(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 30, 15, 0, time.UTC)
	name := ConcreteName("munin", "addr", "fr", at)
	if name != "munin_addr_fr_20240305T093015" {
		t.Fatalf("unexpected concrete name: %q", name)
	}
}

func TestValidDatasetRejectsUppercase(t *testing.T) {
	if ValidDataset("FR") {
		t.Fatal("expected uppercase dataset to be rejected")
	}
	if !ValidDataset("fr-oa_2024") {
		t.Fatal("expected lowercase/dash/underscore dataset to be accepted")
	}
}

// fakeBackend simulates enough of the search backend's HTTP surface to
// drive a Pyramid through Init -> Loading -> Ready -> Publish -> Cleanup.
func fakeBackend(t *testing.T) (*backend.Client, *httptest.Server, *[]backend.AliasAction) {
	t.Helper()
	var publishedActions []backend.AliasAction
	mux := http.NewServeMux()
	mux.HandleFunc("/_aliases", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Actions []backend.AliasAction `json:"actions"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		publishedActions = body.Actions
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			// list_aliases / aliases_of: no prior targets in this test.
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
	srv := httptest.NewServer(mux)
	return backend.New(srv.URL, nil), srv, &publishedActions
}

func TestPyramidHappyPathPublishesThenCleansUp(t *testing.T) {
	b, srv, actions := fakeBackend(t)
	defer srv.Close()

	p, err := NewPyramid(b, "munin", "addr", "fr")
	if err != nil {
		t.Fatalf("NewPyramid: %v", err)
	}
	ctx := context.Background()

	if err := p.Init(ctx, 1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.State() != StateLoading {
		t.Fatalf("expected StateLoading after Init, got %s", p.State())
	}
	if err := p.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if err := p.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(*actions) == 0 {
		t.Fatal("expected a non-empty atomic alias batch")
	}
	for i, a := range *actions {
		if a.Remove != nil {
			t.Fatalf("expected adds before removes, found remove at index %d with no prior targets", i)
		}
	}
	p.Cleanup(ctx)
	if p.State() != StateDone {
		t.Fatalf("expected StateDone after Cleanup, got %s", p.State())
	}
}

func TestNewPyramidRejectsInvalidDataset(t *testing.T) {
	b := backend.New("http://unused.invalid", nil)
	if _, err := NewPyramid(b, "munin", "addr", "FR Data"); err == nil {
		t.Fatal("expected error for invalid dataset")
	}
}

func TestAbortDeletesNewIndexAndLeavesAliases(t *testing.T) {
	b, srv, actions := fakeBackend(t)
	defer srv.Close()

	p, _ := NewPyramid(b, "munin", "addr", "fr")
	ctx := context.Background()
	if err := p.Init(ctx, 1, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Abort(ctx); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if p.State() != StateAborting {
		t.Fatalf("expected StateAborting, got %s", p.State())
	}
	if len(*actions) != 0 {
		t.Fatalf("expected no alias actions on abort, got %+v", *actions)
	}
}
