// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port         int
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Authentication
	APIPassword string

	// Upstream site
	UpstreamBaseURL string
	UpstreamLang    string

	// Fetch behavior
	FetchTimeout time.Duration
	FetchRetries int
	ProbeTimeout time.Duration

	// Cache
	CacheTTL      time.Duration
	StreamTTL     time.Duration
	CacheCapacity int
	RedisURL      string

	// Pre-warm schedule (cron expression, empty disables)
	PrewarmSchedule string

	// Proxy settings
	GlobalProxies   []string
	TransportRoutes []TransportRoute
	BrowserTLSHosts []string

	// Logging
	LogLevel string
	LogJSON  bool
}

// TransportRoute defines URL-specific proxy routing.
type TransportRoute struct {
	URLPattern string
	Proxy      string
	DisableSSL bool
	Direct     bool // If true, bypass global proxy and connect directly
}

// HomeURL returns the language-scoped home page of the upstream site.
func (c *Config) HomeURL() string {
	return c.UpstreamBaseURL + "/" + c.UpstreamLang
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	port := getEnvInt("PORT", 7860)
	cfg := &Config{
		Port:            port,
		BaseURL:         getEnvString("BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		APIPassword:     os.Getenv("API_PASSWORD"),
		UpstreamBaseURL: strings.TrimSuffix(getEnvString("UPSTREAM_BASE_URL", "https://www.goodshort.com"), "/"),
		UpstreamLang:    getEnvString("UPSTREAM_LANG", "id"),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchRetries:    getEnvInt("FETCH_RETRIES", 3),
		ProbeTimeout:    getEnvDuration("PROBE_TIMEOUT", 8*time.Second),
		CacheTTL:        getEnvDuration("CACHE_TTL", 300*time.Second),
		StreamTTL:       getEnvDuration("STREAM_TTL", 120*time.Second),
		CacheCapacity:   getEnvInt("CACHE_CAPACITY", 500),
		RedisURL:        os.Getenv("REDIS_URL"),
		PrewarmSchedule: os.Getenv("PREWARM_SCHEDULE"),
		GlobalProxies:   getEnvStringSlice("GLOBAL_PROXIES", nil),
		BrowserTLSHosts: getEnvStringSlice("BROWSER_TLS_HOSTS", nil),
		LogLevel:        getEnvString("LOG_LEVEL", "info"),
		LogJSON:         getEnvBool("LOG_JSON", false),
	}

	cfg.TransportRoutes = parseTransportRoutes(os.Getenv("TRANSPORT_ROUTES"))

	// Legacy single proxy support
	if globalProxy := os.Getenv("GLOBAL_PROXY"); globalProxy != "" && len(cfg.GlobalProxies) == 0 {
		cfg.GlobalProxies = []string{globalProxy}
	}

	return cfg
}

// parseTransportRoutes parses the TRANSPORT_ROUTES env var.
// Format: {URL=pattern, PROXY=url, DISABLE_SSL=true}, {URL=pattern2}
func parseTransportRoutes(s string) []TransportRoute {
	if s == "" {
		return nil
	}

	var routes []TransportRoute
	s = strings.TrimSpace(s)

	parts := strings.Split(s, "}, {")
	for _, part := range parts {
		part = strings.Trim(part, "{} ")
		if part == "" {
			continue
		}

		route := TransportRoute{}
		fields := strings.Split(part, ", ")
		for _, field := range fields {
			kv := strings.SplitN(field, "=", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])

			switch strings.ToUpper(key) {
			case "URL":
				route.URLPattern = value
			case "PROXY":
				route.Proxy = value
			case "DISABLE_SSL":
				route.DisableSSL = strings.ToLower(value) == "true"
			case "DIRECT":
				route.Direct = strings.ToLower(value) == "true"
			}
		}
		if route.URLPattern != "" {
			routes = append(routes, route)
		}
	}

	return routes
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return strings.ToLower(val) == "true" || val == "1"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Plain integers are treated as seconds
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultVal
}
