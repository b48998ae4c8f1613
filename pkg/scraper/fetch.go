package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// pageHeaders imitate a navigating browser. The upstream site rejects
// requests without them.
func (s *Scraper) pageHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                browserUserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           s.acceptLanguage(),
		"Connection":                "keep-alive",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "max-age=0",
		"Referer":                   s.cfg.HomeURL(),
		"Origin":                    s.cfg.UpstreamBaseURL,
	}
}

// apiHeaders imitate the site's own XHR traffic.
func (s *Scraper) apiHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      browserUserAgent,
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": s.acceptLanguage(),
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
		"Referer":         s.cfg.HomeURL(),
		"Origin":          s.cfg.UpstreamBaseURL,
	}
}

func (s *Scraper) acceptLanguage() string {
	lang := s.cfg.UpstreamLang
	if lang == "" {
		return "en-US,en;q=0.9"
	}
	return lang + ";q=0.9,en-US;q=0.8,en;q=0.7"
}

// fetchHTML fetches a page that is expected to exist. Transient failures are
// retried with a short backoff; HTTP 404 is returned immediately since the
// page is genuinely absent.
func (s *Scraper) fetchHTML(ctx context.Context, url string) (string, error) {
	var lastErr error

	attempts := s.cfg.FetchRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &UpstreamError{URL: url, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", &UpstreamError{URL: url, Err: err}
		}
		for k, v := range s.pageHeaders() {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = &UpstreamError{URL: url, Err: err}
			s.log.Debug("page fetch failed", "url", url, "attempt", attempt+1, "error", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return "", &UpstreamError{URL: url, Status: resp.StatusCode}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = &UpstreamError{URL: url, Status: resp.StatusCode}
			s.log.Debug("page fetch returned non-2xx", "url", url, "status", resp.StatusCode, "attempt", attempt+1)
			continue
		}
		if readErr != nil {
			lastErr = &UpstreamError{URL: url, Err: readErr}
			continue
		}

		return string(body), nil
	}

	return "", lastErr
}

// fetchJSON issues a speculative API request: GET when body is nil, POST with
// a JSON body otherwise. Any failure (network error, non-2xx status, non-JSON
// content type, undecodable body) returns nil. Probing guessed endpoints
// fails constantly and must stay cheap and silent.
func (s *Scraper) fetchJSON(ctx context.Context, url string, body any) any {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil
		}
		method = http.MethodPost
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil
	}
	for k, v := range s.apiHeaders() {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
		return nil
	}

	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil
	}
	return data
}
