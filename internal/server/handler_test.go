package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wlsexporter/wlsexporter/internal/config"
	"github.com/wlsexporter/wlsexporter/internal/query"
	"github.com/wlsexporter/wlsexporter/internal/server"
)

const baseYAML = `
host: somehost
port: 3456
queries:
- applicationRuntimes:
    key: name
    componentRuntimes:
      key: name
      values: [openSessionsCurrentCount]
`

const extraYAML = `
host: otherhost
port: 9876
queries:
- applicationRuntimes:
    key: name
    workManagerRuntimes:
      key: applicationName
      values: [pendingRequests]
`

// --- test helpers -----------------------------------------------------------

func newHandler(t *testing.T, doc string, scrape server.ScrapeFunc) *server.Handler {
	t.Helper()
	cfg, err := config.LoadConfig([]byte(doc))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return server.New(cfg, scrape)
}

func fixedSamples(samples ...query.Sample) server.ScrapeFunc {
	return func(ctx context.Context, cfg *config.ExporterConfig) ([]query.Sample, error) {
		return samples, nil
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

// --- /metrics ---------------------------------------------------------------

func TestMetrics_RendersSamples(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples(
		query.Sample{Name: "openSessionsCurrentCount",
			Labels: map[string]string{"name": "myapp"}, Value: 5},
	))
	rr := do(t, h, http.MethodGet, "/metrics", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `openSessionsCurrentCount{name="myapp"} 5`) {
		t.Errorf("body missing sample:\n%s", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("content type: got %q", ct)
	}
}

func TestMetrics_ScrapeErrorIs500(t *testing.T) {
	h := newHandler(t, baseYAML, func(ctx context.Context, cfg *config.ExporterConfig) ([]query.Sample, error) {
		return nil, errors.New("connection refused")
	})
	rr := do(t, h, http.MethodGet, "/metrics", "")

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}

func TestMetrics_MethodGuard(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodPost, "/metrics", "")

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}

// --- /configuration ---------------------------------------------------------

func TestConfiguration_Append(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodPut, "/configuration?effect=append", extraYAML)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}

	cfg := h.Config()
	if len(cfg.Queries()) != 2 {
		t.Fatalf("queries: got %d, want 2", len(cfg.Queries()))
	}
	// The appended config's destination must not leak into the live one.
	if cfg.Host() != "somehost" || cfg.Port() != 3456 {
		t.Errorf("destination changed: %s:%d", cfg.Host(), cfg.Port())
	}
	if got := cfg.Queries()[1].NestedNames(); len(got) != 1 || got[0] != "workManagerRuntimes" {
		t.Errorf("query[1] nested: got %v", got)
	}
}

func TestConfiguration_ReplaceIsDefaultEffect(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodPut, "/configuration", extraYAML)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	cfg := h.Config()
	if len(cfg.Queries()) != 1 {
		t.Fatalf("queries: got %d, want 1", len(cfg.Queries()))
	}
	if got := cfg.Queries()[0].NestedNames(); len(got) != 1 || got[0] != "workManagerRuntimes" {
		t.Errorf("query[0] nested: got %v", got)
	}
	if cfg.Host() != "somehost" {
		t.Errorf("host changed: %q", cfg.Host())
	}
}

func TestConfiguration_InvalidYAMLIs400(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodPut, "/configuration", "startDelaySeconds: abc\n")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if msg, _ := resp["error"].(string); !strings.Contains(msg, "startDelaySeconds") {
		t.Errorf("error message: got %q, want mention of startDelaySeconds", msg)
	}
	// A rejected update must leave the live config untouched.
	if len(h.Config().Queries()) != 1 {
		t.Errorf("queries after rejected update: got %d, want 1", len(h.Config().Queries()))
	}
}

func TestConfiguration_UnknownEffectIs400(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodPut, "/configuration?effect=merge", extraYAML)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestConfiguration_MethodGuard(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodGet, "/configuration", "")

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}

// --- / ----------------------------------------------------------------------

func TestIndex_ShowsConfiguration(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodGet, "/", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"host: somehost", "port: 3456", "applicationRuntimes"} {
		if !strings.Contains(body, want) {
			t.Errorf("diagnostics page missing %q:\n%s", want, body)
		}
	}
}

func TestIndex_UnknownPathIs404(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())
	rr := do(t, h, http.MethodGet, "/nope", "")

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

// --- Update -----------------------------------------------------------------

func TestUpdate_SwapsWholeConfig(t *testing.T) {
	h := newHandler(t, baseYAML, fixedSamples())

	fresh, err := config.LoadConfig([]byte(extraYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	h.Update(fresh)

	cfg := h.Config()
	if cfg.Host() != "otherhost" || cfg.Port() != 9876 {
		t.Errorf("destination: got %s:%d, want otherhost:9876", cfg.Host(), cfg.Port())
	}
}
