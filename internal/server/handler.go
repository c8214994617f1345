package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/wlsexporter/wlsexporter/internal/config"
	"github.com/wlsexporter/wlsexporter/internal/exporter"
	"github.com/wlsexporter/wlsexporter/internal/query"
	"github.com/wlsexporter/wlsexporter/internal/scraper"
)

// maxConfigBody caps PUT /configuration request bodies.
const maxConfigBody = 1 << 20

// ScrapeFunc fetches samples for the given configuration. The default
// implementation queries the management REST endpoint; tests substitute a
// canned function.
type ScrapeFunc func(ctx context.Context, cfg *config.ExporterConfig) ([]query.Sample, error)

// Handler is the exporter's HTTP surface: the metrics endpoint, a
// diagnostics page, and the configuration update endpoint.
//
// The live config is guarded by an RWMutex: Append/Replace mutate the
// config in place, so updates and scrapes of one instance must not
// interleave.
type Handler struct {
	mu     sync.RWMutex
	cfg    *config.ExporterConfig
	scrape ScrapeFunc
	mux    *http.ServeMux
}

// New creates a Handler serving cfg. A nil scrape uses the live
// management-REST scraper.
func New(cfg *config.ExporterConfig, scrape ScrapeFunc) *Handler {
	if scrape == nil {
		scrape = liveScrape
	}
	h := &Handler{cfg: cfg, scrape: scrape, mux: http.NewServeMux()}

	h.mux.HandleFunc("/metrics", h.metrics)
	h.mux.HandleFunc("/configuration", h.configuration)
	h.mux.HandleFunc("/", h.index)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// liveScrape builds a management-REST client for cfg's destination and
// runs its query list.
func liveScrape(ctx context.Context, cfg *config.ExporterConfig) ([]query.Sample, error) {
	return scraper.New(cfg).Scrape(ctx, cfg.Queries())
}

// Config returns the live configuration. The caller must not mutate it.
func (h *Handler) Config() *config.ExporterConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Update swaps in a fresh configuration wholesale, replacing destination
// fields and queries alike. Used by the config file watcher.
func (h *Handler) Update(cfg *config.ExporterConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
}

// --- route handlers ---------------------------------------------------------

// metrics serves GET /metrics — scrape every query and render the samples
// as Prometheus text exposition. The read lock is held across the scrape
// so a concurrent configuration update cannot mutate the query list
// mid-walk.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		textErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	samples, err := h.scrape(r.Context(), h.cfg)
	if err != nil {
		slog.Error("server: scrape failed", "err", err)
		textErr(w, http.StatusInternalServerError, fmt.Sprintf("scrape failed: %v", err))
		return
	}

	out, err := exporter.Render(samples)
	if err != nil {
		slog.Error("server: render failed", "err", err)
		textErr(w, http.StatusInternalServerError, fmt.Sprintf("render failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType)
	w.Write(out) //nolint:errcheck
}

// configuration serves PUT /configuration?effect=append|replace — load the
// YAML body as a configuration and combine its queries with the live ones.
// The effect defaults to replace; the live destination fields are never
// touched by either effect.
func (h *Handler) configuration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBody))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	update, err := config.LoadConfig(body)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	effect := r.URL.Query().Get("effect")
	if effect == "" {
		effect = "replace"
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch effect {
	case "append":
		h.cfg.Append(update)
	case "replace":
		h.cfg.Replace(update)
	default:
		jsonErr(w, http.StatusBadRequest, fmt.Sprintf("unknown effect %q", effect))
		return
	}

	slog.Info("server: configuration updated", "effect", effect, "queries", len(h.cfg.Queries()))
	jsonResp(w, http.StatusOK, configResponse{Effect: effect, Queries: len(h.cfg.Queries())})
}

// index serves GET / — a plain-text diagnostics page showing the live
// configuration in its document form.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		textErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		textErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "wlsexporter\n\nMetrics are served on /metrics.\n\nCurrent configuration:\n%s", h.cfg)
}

// --- helpers ----------------------------------------------------------------

// configResponse is the JSON body returned by a successful PUT /configuration.
type configResponse struct {
	Effect  string `json:"effect"`
	Queries int    `json:"queries"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func textErr(w http.ResponseWriter, code int, msg string) {
	http.Error(w, msg, code)
}
