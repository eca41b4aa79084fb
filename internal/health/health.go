// Package health serves the liveness and readiness probes for the bandly
// metrics server.
//
// /healthz reports liveness and always answers 200: a process that can serve
// HTTP is alive. /readyz runs every registered dependency check concurrently
// and answers 503 unless all of them pass. The JSON body carries a per-check
// verdict and latency, so a failing probe names the dependency that broke
// instead of a bare status code.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// defaultTimeout bounds a single readiness check. Probes fire every few
// seconds, so a stuck dependency has to fail fast rather than pile up
// goroutines behind it.
const defaultTimeout = 5 * time.Second

// Check probes one dependency. It must respect ctx cancellation and return
// nil when the dependency can serve traffic.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// checkResult is the per-dependency entry in the readiness response.
type checkResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// response is the JSON body for both probes.
type response struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks,omitempty"`
}

// Handler serves the two probe endpoints. The check list is fixed at
// construction, so a Handler is safe for concurrent use.
type Handler struct {
	timeout time.Duration
	checks  []namedCheck
}

// Option configures a Handler.
type Option func(*Handler)

// WithTimeout overrides the per-check deadline.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// WithCheck registers a named dependency check. All checks run concurrently
// on every /readyz request.
func WithCheck(name string, c Check) Option {
	return func(h *Handler) {
		h.checks = append(h.checks, namedCheck{name: name, check: c})
	}
}

// New builds a Handler from the given options.
func New(opts ...Option) *Handler {
	h := &Handler{timeout: defaultTimeout}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// Readyz is the readiness probe. Checks run concurrently, each under its own
// deadline derived from the request context, and the slowest check bounds the
// response time instead of the sum.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	results := make([]checkResult, len(h.checks))

	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
			defer cancel()

			start := time.Now()
			err := c.check(ctx)
			res := checkResult{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status = "fail"
				res.Error = err.Error()
			}
			results[i] = res
		}()
	}
	wg.Wait()

	resp := response{Status: "ok", Checks: make(map[string]checkResult, len(h.checks))}
	status := http.StatusOK
	for i, c := range h.checks {
		resp.Checks[c.name] = results[i]
		if results[i].Status != "ok" {
			resp.Status = "fail"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// Register adds the probe routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// writeJSON encodes v with the given status code. On encoding failure it
// falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
