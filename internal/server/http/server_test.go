package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/cuidd/internal/config"
	"github.com/rzbill/cuidd/internal/ledger"
	"github.com/rzbill/cuidd/internal/runtime"
	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
	"github.com/rzbill/cuidd/pkg/cuid"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	return New(rt, logger)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func mintOne(t *testing.T, s *Server, kind string) ledger.Record {
	t.Helper()
	w := do(t, s, http.MethodPost, "/v1/ids/mint", `{"kind":"`+kind+`","label":"from-test"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("mint status: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		IDs []ledger.Record `json:"ids"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.IDs) != 1 {
		t.Fatalf("want 1 id, got %d", len(resp.IDs))
	}
	return resp.IDs[0]
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/v1/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id: %q", got)
	}
}

func TestMintAndInspect(t *testing.T) {
	s := newTestServer(t)
	rec := mintOne(t, s, "todo")
	if !cuid.Valid(rec.ID) || rec.Label != "from-test" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	w := do(t, s, http.MethodGet, "/v1/ids/inspect?id="+rec.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("inspect status: %d", w.Code)
	}
	var info struct {
		Known bool       `json:"known"`
		Parts cuid.Parts `json:"parts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !info.Known || info.Parts.TimestampMs != rec.IssuedAtMs {
		t.Fatalf("unexpected inspection: %+v", info)
	}
}

func TestMintErrors(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"body", http.MethodPost, "{", http.StatusBadRequest},
		{"invalid kind", http.MethodPost, `{"kind":"Not Valid"}`, http.StatusBadRequest},
		{"unknown kind", http.MethodPost, `{"kind":"spaceship"}`, http.StatusForbidden},
		{"too many", http.MethodPost, `{"kind":"todo","count":100000}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, s, tc.method, "/v1/ids/mint", tc.body); w.Code != tc.want {
				t.Fatalf("status: %d want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestGenerateHandler(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/v1/ids/generate?count=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var resp struct {
		IDs []string `json:"ids"`
	}
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.IDs) != 3 {
		t.Fatalf("ids: %v", resp.IDs)
	}
	if w := do(t, s, http.MethodGet, "/v1/ids/generate?count=x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad count status: %d", w.Code)
	}
}

func TestListAndRevoke(t *testing.T) {
	s := newTestServer(t)
	a := mintOne(t, s, "note")
	b := mintOne(t, s, "note")

	w := do(t, s, http.MethodGet, "/v1/ids/list?kind=note&limit=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status: %d", w.Code)
	}
	var page struct {
		Items     []ledger.Record `json:"items"`
		NextAfter string          `json:"next_after"`
	}
	_ = json.NewDecoder(w.Body).Decode(&page)
	if len(page.Items) != 1 || page.Items[0].ID != a.ID || page.NextAfter != a.ID {
		t.Fatalf("unexpected page: %+v", page)
	}

	if w := do(t, s, http.MethodDelete, "/v1/ids/revoke?id="+a.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("revoke status: %d", w.Code)
	}
	if w := do(t, s, http.MethodDelete, "/v1/ids/revoke?id="+a.ID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("second revoke status: %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/v1/ids/list?kind=note", "")
	_ = json.NewDecoder(w.Body).Decode(&page)
	if len(page.Items) != 1 || page.Items[0].ID != b.ID {
		t.Fatalf("after revoke: %+v", page)
	}

	if w := do(t, s, http.MethodGet, "/v1/ids/list?filter=counter%20%2B", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status: %d", w.Code)
	}
}

func TestEventsHandler(t *testing.T) {
	s := newTestServer(t)
	a := mintOne(t, s, "pokemon")
	if w := do(t, s, http.MethodDelete, "/v1/ids/revoke?id="+a.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("revoke status: %d", w.Code)
	}

	w := do(t, s, http.MethodGet, "/v1/events", "")
	if w.Code != http.StatusOK {
		t.Fatalf("events status: %d", w.Code)
	}
	var page struct {
		Items []struct {
			Seq    uint64   `json:"seq"`
			Action string   `json:"action"`
			IDs    []string `json:"ids"`
		} `json:"items"`
	}
	_ = json.NewDecoder(w.Body).Decode(&page)
	if len(page.Items) != 2 || page.Items[0].Action != "mint" || page.Items[1].Action != "revoke" || page.Items[1].IDs[0] != a.ID {
		t.Fatalf("unexpected events: %+v", page)
	}

	w = do(t, s, http.MethodGet, "/v1/events?after=1", "")
	_ = json.NewDecoder(w.Body).Decode(&page)
	if len(page.Items) != 1 || page.Items[0].Seq != 2 {
		t.Fatalf("after=1: %+v", page)
	}

	if w := do(t, s, http.MethodGet, "/v1/events?after=-1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad after status: %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/v1/events", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("post status: %d", w.Code)
	}
}

func TestKindsHandler(t *testing.T) {
	s := newTestServer(t)
	mintOne(t, s, "pokemon")
	w := do(t, s, http.MethodGet, "/v1/kinds", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var resp struct {
		Kinds []ledger.KindMeta `json:"kinds"`
	}
	_ = json.NewDecoder(w.Body).Decode(&resp)
	found := false
	for _, k := range resp.Kinds {
		if k.Name == "pokemon" && k.Issued == 1 {
			found = true
		}
	}
	if !found || len(resp.Kinds) != 9 {
		t.Fatalf("unexpected kinds: %+v", resp.Kinds)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodOptions, "/v1/ids/mint", "")
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: %d %v", w.Code, w.Header())
	}
}
