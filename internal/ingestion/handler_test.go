package ingestion

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()

	store := &fakeStore{}
	sys := newTestSystem(store, &fakeNormalization{}, &fakeSink{})

	mux := http.NewServeMux()
	routes.Register(mux, NewHandler(sys, slog.New(slog.DiscardHandler)).Routes())

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func TestIngestEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	body := `[{"trade_id":"TRD-1","action":"NEWT","asset_class":"IR",
		"effective_date":"2024-01-15","termination_date":"2025-01-15",
		"notional_amount":1000000,"notional_currency":"USD",
		"party_a_lei":"LEIREPORTING00000001","party_b_lei":"LEIOTHERPARTY0000002"}]`

	resp, err := http.Post(server.URL+"/ingest", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != "success" || result.ReceivedCount != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(store.created) != 1 {
		t.Errorf("persisted = %d, want 1", len(store.created))
	}
}

func TestGetRecordEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	body := `[{"trade_id":"TRD-9","action":"NEWT","notional_amount":"500000","notional_currency":"EUR"}]`
	resp, err := http.Post(server.URL+"/ingest", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	if len(store.created) != 1 {
		t.Fatalf("persisted = %d, want 1", len(store.created))
	}

	resp, err = http.Get(server.URL + "/records/" + store.created[0].ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rec struct {
		ID      string          `json:"id"`
		Payload json.RawMessage `json:"payload"`
		Status  string          `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ID != store.created[0].ID.String() {
		t.Errorf("id = %q", rec.ID)
	}
	if len(rec.Payload) == 0 {
		t.Error("stored payload must round-trip")
	}
}

func TestGetRecordEndpointUnknownID(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/records/b7f3a4c8-0000-4000-8000-000000000000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetRecordEndpointMalformedID(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/records/not-a-uuid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIngestEndpointRejectsEmptyBatch(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/ingest", "application/json", strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIngestEndpointRejectsMalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/ingest", "application/json", strings.NewReader(`{not json`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
