package httpclient

import (
	"testing"

	"drama-gateway-go/pkg/config"
	"drama-gateway-go/pkg/logging"
)

func TestGetClientForURL(t *testing.T) {
	log := logging.New("debug", false, nil)

	tests := []struct {
		name          string
		cfg           *config.Config
		targetURL     string
		expectProxy   bool
		expectDefault bool
	}{
		{
			name: "uses global proxy when no transport routes match",
			cfg: &config.Config{
				GlobalProxies:   []string{"socks5://proxy.example.com:1080"},
				TransportRoutes: nil,
			},
			targetURL:     "https://www.goodshort.com/id",
			expectProxy:   true,
			expectDefault: false,
		},
		{
			name: "uses transport route when URL matches",
			cfg: &config.Config{
				GlobalProxies: []string{"socks5://global-proxy.example.com:1080"},
				TransportRoutes: []config.TransportRoute{
					{
						URLPattern: "cdn.specific.com",
						Proxy:      "socks5://specific-proxy.example.com:1080",
					},
				},
			},
			targetURL:     "https://cdn.specific.com/ep1/index.m3u8",
			expectProxy:   true,
			expectDefault: false,
		},
		{
			name: "uses default client when no proxy configured",
			cfg: &config.Config{
				GlobalProxies:   nil,
				TransportRoutes: nil,
			},
			targetURL:     "https://www.goodshort.com/id",
			expectProxy:   false,
			expectDefault: true,
		},
		{
			name: "transport route takes precedence over global proxy",
			cfg: &config.Config{
				GlobalProxies: []string{"socks5://global-proxy.example.com:1080"},
				TransportRoutes: []config.TransportRoute{
					{
						URLPattern: "specific-cdn.com",
						DisableSSL: true, // No proxy, just disable SSL
					},
				},
			},
			targetURL:     "https://specific-cdn.com/ep1/index.m3u8",
			expectProxy:   false, // Using insecure client, not proxy client
			expectDefault: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(tt.cfg, log)
			httpClient := client.getClientForURL(tt.targetURL)

			// Check if we got the default client or a proxy client
			isDefaultClient := httpClient == client.defaultClient

			if tt.expectDefault && !isDefaultClient {
				t.Error("expected default client but got a different client")
			}

			if !tt.expectDefault && isDefaultClient && (tt.expectProxy || len(tt.cfg.TransportRoutes) > 0) {
				t.Error("expected proxy/insecure client but got default client")
			}
		})
	}
}

func TestNeedsBrowserTLS(t *testing.T) {
	log := logging.New("debug", false, nil)
	client := New(&config.Config{
		BrowserTLSHosts: []string{"goodshort.com", "cdn.fingerprinted.net"},
	}, log)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.goodshort.com/id/drama/x", true},
		{"https://cdn.fingerprinted.net/ep1.m3u8", true},
		{"https://GOODSHORT.COM/id", true},
		{"https://other.example.com/page", false},
	}

	for _, tt := range tests {
		if got := client.needsBrowserTLS(tt.url); got != tt.want {
			t.Errorf("needsBrowserTLS(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestGetClientForURL_BrowserTLSWins(t *testing.T) {
	log := logging.New("debug", false, nil)
	client := New(&config.Config{
		GlobalProxies:   []string{"socks5://proxy.example.com:1080"},
		BrowserTLSHosts: []string{"goodshort.com"},
	}, log)

	got := client.getClientForURL("https://www.goodshort.com/id")
	if got != client.utlsClient {
		t.Error("fingerprinted host did not use the utls client")
	}
}
