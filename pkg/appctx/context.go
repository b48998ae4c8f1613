// Package appctx provides the application context that holds all runtime dependencies.
package appctx

import (
	"fmt"

	"drama-gateway-go/pkg/cache"
	"drama-gateway-go/pkg/config"
	"drama-gateway-go/pkg/logging"
	"drama-gateway-go/pkg/scraper"
)

// Context holds all application runtime dependencies.
// Pass this single struct to components instead of individual parameters.
type Context struct {
	Config  *config.Config
	Log     *logging.Logger
	Scraper *scraper.Scraper
	Cache   cache.Store
	BaseURL string
}

// New creates a new application context.
func New(cfg *config.Config, log *logging.Logger) *Context {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	return &Context{
		Config:  cfg,
		Log:     log,
		BaseURL: baseURL,
	}
}

// WithScraper sets the scraper.
func (c *Context) WithScraper(s *scraper.Scraper) *Context {
	c.Scraper = s
	return c
}

// WithCache sets the cache store.
func (c *Context) WithCache(store cache.Store) *Context {
	c.Cache = store
	return c
}
