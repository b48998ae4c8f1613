// Package urlutil provides URL manipulation utilities that preserve original encoding.
package urlutil

import (
	"net/url"
	"strings"
)

// Absolutize normalizes a scraped URL to absolute form against a site origin.
// Protocol-relative "//host/x" becomes "https://host/x", root-relative "/x"
// is prefixed with the origin, and already-absolute URLs pass through.
// String manipulation is used instead of url.ResolveReference because Go
// re-encodes special characters, which breaks CDN URLs using parentheses
// or brackets.
func Absolutize(urlStr, baseOrigin string) string {
	urlStr = strings.TrimSpace(urlStr)
	switch {
	case urlStr == "":
		return ""
	case strings.HasPrefix(urlStr, "http://"), strings.HasPrefix(urlStr, "https://"):
		return urlStr
	case strings.HasPrefix(urlStr, "//"):
		return "https:" + urlStr
	case strings.HasPrefix(urlStr, "/"):
		return strings.TrimSuffix(baseOrigin, "/") + urlStr
	default:
		return strings.TrimSuffix(baseOrigin, "/") + "/" + urlStr
	}
}

// IsAbsolute reports whether a URL carries a scheme and host.
func IsAbsolute(urlStr string) bool {
	return strings.HasPrefix(urlStr, "http://") || strings.HasPrefix(urlStr, "https://")
}

// LastSegment returns the final non-empty path segment of a URL or path,
// with any query string stripped. Used to derive slugs from page URLs.
func LastSegment(urlStr string) string {
	if idx := strings.IndexAny(urlStr, "?#"); idx >= 0 {
		urlStr = urlStr[:idx]
	}
	urlStr = strings.TrimSuffix(urlStr, "/")
	if idx := strings.LastIndex(urlStr, "/"); idx >= 0 {
		return urlStr[idx+1:]
	}
	return urlStr
}

// GetSchemeHost extracts scheme://host from a URL.
func GetSchemeHost(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// GetDomain extracts the host from a URL.
func GetDomain(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return parsed.Host
}
