package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"drama-gateway-go/pkg/appctx"
	"drama-gateway-go/pkg/cache"
	"drama-gateway-go/pkg/config"
	"drama-gateway-go/pkg/logging"
	"drama-gateway-go/pkg/scraper"
)

// newTestRouter wires handlers against a scraper whose upstream is the given
// test server URL.
func newTestRouter(upstream string) chi.Router {
	log := logging.New("error", false, io.Discard)
	cfg := &config.Config{
		UpstreamBaseURL: upstream,
		UpstreamLang:    "id",
		FetchRetries:    1,
		FetchTimeout:    5 * time.Second,
		ProbeTimeout:    2 * time.Second,
		CacheTTL:        time.Minute,
		StreamTTL:       time.Minute,
		BaseURL:         "http://localhost:7860",
	}
	ctx := appctx.New(cfg, log)
	store := cache.NewMemory(64)
	ctx.WithCache(store)
	ctx.WithScraper(scraper.New(&http.Client{}, store, cfg, log))

	r := chi.NewRouter()
	NewHandlers(ctx).RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router chi.Router, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, body
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	// Validation must reject before any upstream request happens, so an
	// unreachable upstream is fine here.
	router := newTestRouter("http://127.0.0.1:1")

	rec, body := doRequest(t, router, "/api/search")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if body["success"] != false {
		t.Error("success = true for invalid request")
	}
	if body["message"] == "" {
		t.Error("message missing from error envelope")
	}
}

func TestHandleDramas_InvalidPage(t *testing.T) {
	router := newTestRouter("http://127.0.0.1:1")

	rec, _ := doRequest(t, router, "/api/dramas?page=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec, _ = doRequest(t, router, "/api/dramas?page=0")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for page=0 = %d, want 400", rec.Code)
	}
}

func TestHandleStream_InvalidEpisode(t *testing.T) {
	router := newTestRouter("http://127.0.0.1:1")

	rec, _ := doRequest(t, router, "/api/stream/lost-love?ep=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter("http://127.0.0.1:1")

	rec, body := doRequest(t, router, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if body["success"] != true {
		t.Error("success = false for health check")
	}
	if body["timestamp"] == "" {
		t.Error("timestamp missing from envelope")
	}
}

func TestHandleDrama_NotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	rec, body := doRequest(t, router, "/api/drama/no-such-drama")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	msg, _ := body["message"].(string)
	if msg == "" {
		t.Fatal("message missing from not-found envelope")
	}
}

func TestHandleHome_DegradesToEmpty(t *testing.T) {
	// Upstream serves only errors; home must still answer 200 with empty
	// aggregate data rather than failing.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	rec, body := doRequest(t, router, "/api/home")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if body["success"] != true {
		t.Error("success = false, want degraded success")
	}
	if body["source"] != "none" {
		t.Errorf("source = %v, want none", body["source"])
	}

	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("data missing from envelope")
	}
	if dramas, ok := data["allDramas"].([]any); !ok || len(dramas) != 0 {
		t.Errorf("allDramas = %v, want empty array", data["allDramas"])
	}
}

func TestHandleHome_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/home" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"hot":[{"title":"Lost Love","id":"d1"}]}}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	rec, body := doRequest(t, router, "/api/home")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["source"] != "api:GET /api/home" {
		t.Errorf("source = %v, want api:GET /api/home", body["source"])
	}
	if body["cached"] != false {
		t.Error("first request reported cached = true")
	}

	_, body = doRequest(t, router, "/api/home")
	if body["cached"] != true {
		t.Error("second request reported cached = false, want true")
	}
}

func TestHandleIndex(t *testing.T) {
	router := newTestRouter("http://127.0.0.1:1")

	rec, body := doRequest(t, router, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("data missing from envelope")
	}
	if _, ok := data["endpoints"]; !ok {
		t.Error("endpoint listing missing")
	}
}
