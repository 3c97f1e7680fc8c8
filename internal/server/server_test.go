package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hazz-dev/stackmon/internal/probe"
	"github.com/hazz-dev/stackmon/internal/report"
	"github.com/hazz-dev/stackmon/internal/server"
)

// mockRunner returns canned results and records what it was asked.
type mockRunner struct {
	lastPort  int
	lastURL   string
	lastBatch []probe.Request
}

func (m *mockRunner) CheckPort(_ context.Context, host string, port int, timeout time.Duration) probe.Result {
	m.lastPort = port
	return probe.Result{
		Name:         "Port 5432 Service Check",
		Status:       probe.StatusOpen,
		ResponseTime: 5 * time.Millisecond,
		CheckedAt:    time.Now(),
	}
}

func (m *mockRunner) CheckHTTP(_ context.Context, url string, timeout time.Duration, expectedStatus int, method string) probe.Result {
	m.lastURL = url
	return probe.Result{
		Name:      "HTTP Service: " + url,
		Status:    probe.StatusDown,
		Error:     "connection failed - service unreachable",
		CheckedAt: time.Now(),
	}
}

func (m *mockRunner) CheckBatch(_ context.Context, reqs []probe.Request) report.Report {
	m.lastBatch = reqs
	results := make([]probe.Result, len(reqs))
	for i, r := range reqs {
		results[i] = probe.Result{Name: r.DisplayName(), Status: probe.StatusUp, CheckedAt: time.Now()}
	}
	return report.Summarize(results)
}

// mockStore serves canned history.
type mockStore struct {
	history map[string][]probe.Result
	uptime  map[string]float64
}

func (m *mockStore) History(name string, limit int) []probe.Result {
	entries := m.history[name]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

func (m *mockStore) UptimePercent(name string, window time.Duration) float64 {
	return m.uptime[name]
}

func (m *mockStore) ServiceNames() []string {
	names := make([]string, 0, len(m.history))
	for name := range m.history {
		names = append(names, name)
	}
	return names
}

// mockLive serves a canned report.
type mockLive struct {
	rep report.Report
	ok  bool
}

func (m *mockLive) Latest() (report.Report, bool) {
	return m.rep, m.ok
}

func newTestServer(runner *mockRunner, store *mockStore, live server.LiveSource) *server.Server {
	if runner == nil {
		runner = &mockRunner{}
	}
	if store == nil {
		store = &mockStore{}
	}
	return server.New(runner, store, live, nil)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	w := doRequest(t, s.Router(), "GET", "/api/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	decodeJSON(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestCheckPort(t *testing.T) {
	runner := &mockRunner{}
	s := newTestServer(runner, nil, nil)

	w := doRequest(t, s.Router(), "POST", "/api/checks/port", `{"host":"localhost","port":5432,"timeout":2.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if runner.lastPort != 5432 {
		t.Errorf("expected port 5432 passed through, got %d", runner.lastPort)
	}

	var resp struct {
		Data probe.Result `json:"data"`
	}
	decodeJSON(t, w, &resp)
	if resp.Data.Status != probe.StatusOpen {
		t.Errorf("expected open result, got %q", resp.Data.Status)
	}
}

func TestCheckPort_BadBody(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	w := doRequest(t, s.Router(), "POST", "/api/checks/port", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCheckHTTP(t *testing.T) {
	runner := &mockRunner{}
	s := newTestServer(runner, nil, nil)

	w := doRequest(t, s.Router(), "POST", "/api/checks/http", `{"url":"http://localhost:9999","timeout":0.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if runner.lastURL != "http://localhost:9999" {
		t.Errorf("expected url passed through, got %q", runner.lastURL)
	}

	var resp struct {
		Data probe.Result `json:"data"`
	}
	decodeJSON(t, w, &resp)
	if resp.Data.Status != probe.StatusDown || resp.Data.Error == "" {
		t.Errorf("expected down result with error, got %+v", resp.Data)
	}
}

func TestCheckBatch(t *testing.T) {
	runner := &mockRunner{}
	s := newTestServer(runner, nil, nil)

	body := `{"checks":[
		{"type":"port","host":"localhost","port":5432},
		{"type":"http","url":"http://localhost:8000"}
	]}`
	w := doRequest(t, s.Router(), "POST", "/api/checks/batch", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(runner.lastBatch) != 2 {
		t.Fatalf("expected 2 requests dispatched, got %d", len(runner.lastBatch))
	}
	if runner.lastBatch[0].Kind != probe.KindPort || runner.lastBatch[1].Kind != probe.KindHTTP {
		t.Errorf("unexpected dispatched kinds: %+v", runner.lastBatch)
	}

	var resp struct {
		Data report.Report `json:"data"`
	}
	decodeJSON(t, w, &resp)
	if resp.Data.OverallStatus != "healthy" {
		t.Errorf("expected healthy batch, got %q", resp.Data.OverallStatus)
	}
	if resp.Data.Stats.Total != 2 {
		t.Errorf("expected 2 results, got %d", resp.Data.Stats.Total)
	}
}

func TestServiceHistory(t *testing.T) {
	store := &mockStore{
		history: map[string][]probe.Result{
			"api": {
				{Name: "api", Status: probe.StatusUp, CheckedAt: time.Now().Add(-time.Minute)},
				{Name: "api", Status: probe.StatusDown, CheckedAt: time.Now()},
			},
		},
	}
	s := newTestServer(nil, store, nil)

	w := doRequest(t, s.Router(), "GET", "/api/services/api/history?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []probe.Result `json:"data"`
	}
	decodeJSON(t, w, &resp)
	if len(resp.Data) != 2 {
		t.Errorf("expected 2 entries, got %d", len(resp.Data))
	}
}

func TestServiceUptime(t *testing.T) {
	store := &mockStore{uptime: map[string]float64{"api": 87.5}}
	s := newTestServer(nil, store, nil)

	w := doRequest(t, s.Router(), "GET", "/api/services/api/uptime?hours=12", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Name          string  `json:"name"`
			UptimePercent float64 `json:"uptime_percent"`
		} `json:"data"`
	}
	decodeJSON(t, w, &resp)
	if resp.Data.Name != "api" || resp.Data.UptimePercent != 87.5 {
		t.Errorf("unexpected uptime response: %+v", resp.Data)
	}
}

func TestListServices(t *testing.T) {
	store := &mockStore{
		history: map[string][]probe.Result{
			"api": {{Name: "api", Status: probe.StatusUp, CheckedAt: time.Now()}},
		},
		uptime: map[string]float64{"api": 100},
	}
	s := newTestServer(nil, store, nil)

	w := doRequest(t, s.Router(), "GET", "/api/services", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []struct {
			Name          string  `json:"name"`
			Status        string  `json:"status"`
			UptimePercent float64 `json:"uptime_percent"`
		} `json:"data"`
	}
	decodeJSON(t, w, &resp)
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 service, got %d", len(resp.Data))
	}
	if resp.Data[0].Name != "api" || resp.Data[0].Status != "up" {
		t.Errorf("unexpected service summary: %+v", resp.Data[0])
	}
}

func TestLive_UnavailableWithoutMonitor(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	w := doRequest(t, s.Router(), "GET", "/api/live", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a monitor, got %d", w.Code)
	}
}
