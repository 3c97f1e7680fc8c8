package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hazz-dev/stackmon/internal/probe"
	"github.com/hazz-dev/stackmon/internal/report"
)

// Runner defines the check operations the server needs. Satisfied by
// dispatch.Dispatcher.
type Runner interface {
	CheckPort(ctx context.Context, host string, port int, timeout time.Duration) probe.Result
	CheckHTTP(ctx context.Context, url string, timeout time.Duration, expectedStatus int, method string) probe.Result
	CheckBatch(ctx context.Context, reqs []probe.Request) report.Report
}

// HistoryStore defines the read operations the server needs. Satisfied by
// history.Store.
type HistoryStore interface {
	History(name string, limit int) []probe.Result
	UptimePercent(name string, window time.Duration) float64
	ServiceNames() []string
}

// LiveSource supplies the latest batch report for the live feed.
type LiveSource interface {
	Latest() (report.Report, bool)
}

// Server holds the chi router and its dependencies.
type Server struct {
	runner Runner
	store  HistoryStore
	live   LiveSource
	router chi.Router
	logger *slog.Logger
}

// New creates a Server and registers all routes. live may be nil when no
// periodic monitor is running. Pass nil logger to use the default logger.
func New(runner Runner, store HistoryStore, live LiveSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		runner: runner,
		store:  store,
		live:   live,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.registerRoutes()
	return s
}

// Router returns the chi router (for mounting or testing).
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(s.requestLogger)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/checks/port", s.handleCheckPort)
	r.Post("/api/checks/http", s.handleCheckHTTP)
	r.Post("/api/checks/batch", s.handleCheckBatch)
	r.Get("/api/services", s.handleListServices)
	r.Get("/api/services/{name}/history", s.handleServiceHistory)
	r.Get("/api/services/{name}/uptime", s.handleServiceUptime)
	r.Get("/api/live", s.handleLive)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// --- Response helpers ---

type envelope struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: msg})
}

// --- Wire types ---

// checkRequest is one check descriptor as received over the API. Timeout
// is in seconds, matching the serialized result shape.
type checkRequest struct {
	Type           string  `json:"type"`
	Name           string  `json:"name"`
	Host           string  `json:"host"`
	Port           int     `json:"port"`
	URL            string  `json:"url"`
	Timeout        float64 `json:"timeout"`
	ExpectedStatus int     `json:"expected_status"`
	Method         string  `json:"method"`
}

func (c checkRequest) toProbeRequest() probe.Request {
	return probe.Request{
		Kind:           probe.Kind(c.Type),
		Name:           c.Name,
		Host:           c.Host,
		Port:           c.Port,
		URL:            c.URL,
		Timeout:        secondsToDuration(c.Timeout),
		ExpectedStatus: c.ExpectedStatus,
		Method:         c.Method,
	}
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleCheckPort(w http.ResponseWriter, r *http.Request) {
	var body checkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result := s.runner.CheckPort(r.Context(), body.Host, body.Port, secondsToDuration(body.Timeout))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckHTTP(w http.ResponseWriter, r *http.Request) {
	var body checkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result := s.runner.CheckHTTP(r.Context(), body.URL, secondsToDuration(body.Timeout), body.ExpectedStatus, body.Method)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Checks []checkRequest `json:"checks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reqs := make([]probe.Request, len(body.Checks))
	for i, c := range body.Checks {
		reqs[i] = c.toProbeRequest()
	}

	rep := s.runner.CheckBatch(r.Context(), reqs)
	writeJSON(w, http.StatusOK, rep)
}

type serviceSummary struct {
	Name       string        `json:"name"`
	Status     probe.Status  `json:"status"`
	UptimePct  float64       `json:"uptime_percent"`
	LastResult *probe.Result `json:"last_result"`
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	names := s.store.ServiceNames()
	summaries := make([]serviceSummary, 0, len(names))
	for _, name := range names {
		sum := serviceSummary{Name: name, Status: probe.StatusUnknown}
		if recent := s.store.History(name, 1); len(recent) > 0 {
			last := recent[len(recent)-1]
			sum.Status = last.Status
			sum.LastResult = &last
		}
		sum.UptimePct = s.store.UptimePercent(name, 0)
		summaries = append(summaries, sum)
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleServiceHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	limit := queryInt(r, "limit", 0)
	writeJSON(w, http.StatusOK, s.store.History(name, limit))
}

func (s *Server) handleServiceUptime(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	hours := queryInt(r, "hours", 0)
	pct := s.store.UptimePercent(name, time.Duration(hours)*time.Hour)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":           name,
		"uptime_percent": pct,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
