package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"fizzworks/internal/game"
)

func newTestServer(t *testing.T) (*httptest.Server, *game.Service) {
	t.Helper()
	cat := game.NewCatalog()
	svc := game.NewService(game.NewState(cat), cat, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)), rand.New(rand.NewSource(1)))
	srv := httptest.NewServer(New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).Handler())
	t.Cleanup(srv.Close)
	return srv, svc
}

func postJSON(t *testing.T, url string, body any, idemKey string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGetState(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	view := decodeBody[game.StateView](t, resp)
	if view.CashMicros != game.StarterCashMicros {
		t.Fatalf("cash = %d", view.CashMicros)
	}
	if len(view.Flavors) != 4 {
		t.Fatalf("flavors = %d", len(view.Flavors))
	}
}

func TestGetMarket(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/market")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	view := decodeBody[game.MarketView](t, resp)
	if len(view.Channels) != 4 {
		t.Fatalf("channels = %d", len(view.Channels))
	}
	if view.RivalsActive || len(view.Rivals) != 0 {
		t.Fatal("fresh game should have no active rivals")
	}
}

func TestBuySuppliesIntent(t *testing.T) {
	srv, svc := newTestServer(t)
	resp := postJSON(t, srv.URL+"/v1/supplies/buy", map[string]any{"kind": "preforms", "quantity": 100}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decodeBody[struct {
		OK    bool           `json:"ok"`
		State game.StateView `json:"state"`
	}](t, resp)
	if !out.OK {
		t.Fatal("ok = false")
	}
	if out.State.Inventory.Preforms != 600 {
		t.Fatalf("preforms = %d, want 600", out.State.Inventory.Preforms)
	}
	if got := svc.Snapshot().Inventory.Preforms; got != 600 {
		t.Fatalf("service preforms = %d", got)
	}
}

func TestIntentErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
	}{
		{"unknown supply", "/v1/supplies/buy", map[string]any{"kind": "glitter", "quantity": 5}, http.StatusNotFound},
		{"bad quantity", "/v1/supplies/buy", map[string]any{"kind": "labels", "quantity": -1}, http.StatusBadRequest},
		{"unaffordable", "/v1/supplies/buy", map[string]any{"kind": "preforms", "quantity": 1_000_000}, http.StatusPaymentRequired},
		{"locked flavor", "/v1/flavor/activate", map[string]any{"flavor_id": "lime"}, http.StatusConflict},
		{"unknown upgrade", "/v1/upgrades/buy", map[string]any{"upgrade_id": "time_machine"}, http.StatusNotFound},
		{"prereq missing", "/v1/upgrades/buy", map[string]any{"upgrade_id": "line_3"}, http.StatusConflict},
		{"bad price", "/v1/flavor/price", map[string]any{"price_micros": 0}, http.StatusBadRequest},
		{"no reward", "/v1/missions/claim", map[string]any{}, http.StatusConflict},
		{"prestige early", "/v1/prestige/reset", map[string]any{}, http.StatusConflict},
		{"node unaffordable", "/v1/prestige/nodes/buy", map[string]any{"node_id": "legacy_storage"}, http.StatusPaymentRequired},
	}
	for _, tc := range tests {
		resp := postJSON(t, srv.URL+tc.path, tc.body, "")
		resp.Body.Close()
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.name, resp.StatusCode, tc.status)
		}
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/v1/supplies/buy", map[string]any{"kind": "labels", "quantity": 1, "bogus": true}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIdempotencyKeyReplays(t *testing.T) {
	srv, svc := newTestServer(t)
	key := "test-key-1"

	first := postJSON(t, srv.URL+"/v1/supplies/buy", map[string]any{"kind": "labels", "quantity": 10}, key)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d", first.StatusCode)
	}
	firstOut := decodeBody[struct {
		State game.StateView `json:"state"`
	}](t, first)

	second := postJSON(t, srv.URL+"/v1/supplies/buy", map[string]any{"kind": "labels", "quantity": 10}, key)
	if second.StatusCode != http.StatusOK {
		t.Fatalf("replay status = %d", second.StatusCode)
	}
	secondOut := decodeBody[struct {
		State game.StateView `json:"state"`
	}](t, second)

	if firstOut.State.Inventory.Labels != secondOut.State.Inventory.Labels {
		t.Fatal("replay returned a different snapshot")
	}
	// The mutation must have applied exactly once.
	if got := svc.Snapshot().Inventory.Labels; got != 510 {
		t.Fatalf("labels = %d, want 510", got)
	}
}

func TestHardResetRestartsGame(t *testing.T) {
	srv, svc := newTestServer(t)
	resp := postJSON(t, srv.URL+"/v1/supplies/buy", map[string]any{"kind": "labels", "quantity": 10}, "")
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/v1/reset", map[string]any{}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}
	st := svc.Snapshot()
	if st.Inventory.Labels != 500 || st.CashMicros != game.StarterCashMicros {
		t.Fatalf("state not reset: %+v", st.Inventory)
	}
}

func TestJournalEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	// A hard reset writes a journal entry.
	resp := postJSON(t, srv.URL+"/v1/reset", map[string]any{}, "")
	resp.Body.Close()

	getResp, err := http.Get(srv.URL + "/v1/journal?limit=5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	out := decodeBody[struct {
		Entries []game.JournalEntry `json:"entries"`
	}](t, getResp)
	if len(out.Entries) == 0 {
		t.Fatal("journal empty after reset")
	}
}
