package config

import (
	"testing"
	"time"
)

func TestParseTransportRoutes(t *testing.T) {
	routes := parseTransportRoutes("{URL=cdn.example.com, PROXY=socks5://p:1080, DISABLE_SSL=true}, {URL=other.com, DIRECT=true}")

	if len(routes) != 2 {
		t.Fatalf("parsed %d routes, want 2", len(routes))
	}
	if routes[0].URLPattern != "cdn.example.com" || routes[0].Proxy != "socks5://p:1080" || !routes[0].DisableSSL {
		t.Errorf("first route = %+v", routes[0])
	}
	if routes[1].URLPattern != "other.com" || !routes[1].Direct {
		t.Errorf("second route = %+v", routes[1])
	}
}

func TestParseTransportRoutes_Empty(t *testing.T) {
	if routes := parseTransportRoutes(""); routes != nil {
		t.Errorf("parseTransportRoutes(\"\") = %v, want nil", routes)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_SECS", "90")
	if d := getEnvDuration("TEST_DURATION_SECS", time.Minute); d != 90*time.Second {
		t.Errorf("plain integer duration = %v, want 90s", d)
	}

	t.Setenv("TEST_DURATION_GO", "2m30s")
	if d := getEnvDuration("TEST_DURATION_GO", time.Minute); d != 2*time.Minute+30*time.Second {
		t.Errorf("go-syntax duration = %v, want 2m30s", d)
	}

	if d := getEnvDuration("TEST_DURATION_UNSET", time.Minute); d != time.Minute {
		t.Errorf("unset duration = %v, want default", d)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 7860 {
		t.Errorf("Port = %d, want 7860", cfg.Port)
	}
	if cfg.UpstreamBaseURL == "" {
		t.Error("UpstreamBaseURL empty, want default")
	}
	if cfg.HomeURL() != cfg.UpstreamBaseURL+"/"+cfg.UpstreamLang {
		t.Errorf("HomeURL() = %q", cfg.HomeURL())
	}
	if cfg.CacheTTL <= 0 || cfg.StreamTTL <= 0 {
		t.Error("cache TTLs must default to positive values")
	}
}
