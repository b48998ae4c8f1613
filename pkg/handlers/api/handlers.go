// Package api provides HTTP handlers for the gateway API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"drama-gateway-go/pkg/appctx"
	"drama-gateway-go/pkg/logging"
	"drama-gateway-go/pkg/scraper"
)

// Handlers contains all API handlers.
type Handlers struct {
	ctx *appctx.Context
	log *logging.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctx *appctx.Context) *Handlers {
	return &Handlers{
		ctx: ctx,
		log: ctx.Log.WithComponent("api"),
	}
}

// RegisterRoutes registers all API routes.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/healthz", h.handleHealth)
	r.Get("/api/info", h.handleInfo)

	r.Get("/api/home", h.handleHome)
	r.Get("/api/dramas", h.handleDramas)
	r.Get("/api/drama/{slug}", h.handleDrama)
	r.Get("/api/stream/{slug}", h.handleStream)
	r.Get("/api/search", h.handleSearch)
}

// envelope is the uniform response wrapper for every API result.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Cached    bool   `json:"cached"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source,omitempty"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, env envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.log.Error("response encode failed", "error", err)
	}
}

func (h *Handlers) ok(w http.ResponseWriter, data any, cached bool, source string) {
	h.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Cached:  cached,
		Source:  source,
	})
}

func (h *Handlers) fail(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, envelope{Success: false, Message: message})
}

// failFrom maps a scrape error onto an HTTP status: missing data is 404,
// upstream trouble is 502, anything else is 500.
func (h *Handlers) failFrom(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, scraper.ErrNoData) {
		h.fail(w, http.StatusNotFound, notFoundMsg)
		return
	}
	var ue *scraper.UpstreamError
	if errors.As(err, &ue) {
		h.log.Warn("upstream failure", "error", ue)
		h.fail(w, http.StatusBadGateway, "upstream site unavailable")
		return
	}
	h.log.Error("request failed", "error", err)
	h.fail(w, http.StatusInternalServerError, "internal error")
}

// handleIndex lists the available endpoints.
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.ok(w, map[string]any{
		"name": "drama-gateway",
		"endpoints": []string{
			"GET /api/home",
			"GET /api/dramas?page=1&category=",
			"GET /api/drama/{slug}",
			"GET /api/stream/{slug}?ep=1",
			"GET /api/search?q=&page=1",
		},
	}, false, "")
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.ok(w, map[string]string{"status": "ok"}, false, "")
}

// handleInfo reports runtime configuration that is safe to expose.
func (h *Handlers) handleInfo(w http.ResponseWriter, r *http.Request) {
	h.ok(w, map[string]any{
		"upstream":      h.ctx.Config.UpstreamBaseURL,
		"language":      h.ctx.Config.UpstreamLang,
		"cacheTTL":      h.ctx.Config.CacheTTL.String(),
		"streamTTL":     h.ctx.Config.StreamTTL.String(),
		"authenticated": h.ctx.Config.APIPassword != "",
	}, false, "")
}

// handleHome serves aggregate home page data. It never fails hard: when
// every extraction tier is down it degrades to an empty result.
func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	home, cached, err := h.ctx.Scraper.Home(r.Context())
	if err != nil {
		h.log.Warn("home scrape failed, serving empty result", "error", err)
		h.ok(w, scraper.EmptyHome(), false, "none")
		return
	}
	h.ok(w, home, cached, home.Source)
}

func (h *Handlers) handleDramas(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	category := r.URL.Query().Get("category")

	list, cached, err := h.ctx.Scraper.Dramas(r.Context(), page, category)
	if err != nil {
		h.failFrom(w, err, "no dramas found")
		return
	}
	h.ok(w, list, cached, list.Source)
}

func (h *Handlers) handleDrama(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		h.fail(w, http.StatusBadRequest, "missing drama slug")
		return
	}

	result, cached, err := h.ctx.Scraper.Detail(r.Context(), slug)
	if err != nil {
		h.failFrom(w, err, fmt.Sprintf("drama %q not found", slug))
		return
	}
	h.ok(w, result.Detail, cached, result.Source)
}

func (h *Handlers) handleStream(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		h.fail(w, http.StatusBadRequest, "missing drama slug")
		return
	}
	episode, err := queryInt(r, "ep", 1)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "ep must be a positive integer")
		return
	}

	result, cached, err := h.ctx.Scraper.Stream(r.Context(), slug, episode)
	if err != nil {
		h.failFrom(w, err, fmt.Sprintf("no streams found for %q episode %d", slug, episode))
		return
	}
	h.ok(w, result.Stream, cached, result.Source)
}

func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.fail(w, http.StatusBadRequest, "missing search query")
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	result, cached, err := h.ctx.Scraper.Search(r.Context(), query, page)
	if err != nil {
		h.failFrom(w, err, "no results")
		return
	}
	h.ok(w, result, cached, result.Source)
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return n, nil
}
