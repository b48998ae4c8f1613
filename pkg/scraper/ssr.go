package scraper

import (
	"encoding/json"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// SSR payload kinds. Callers use the kind to pick the right tree navigation.
const (
	payloadNextData    = "next_data"
	payloadWindowState = "window_state"
)

// ssrPayload is hydration state recovered from a server-rendered page.
type ssrPayload struct {
	Kind string
	Name string // identifier that held the state, e.g. __NUXT__
	Data any
}

// windowStateRes match inline assignments of serialized state to well-known
// globals. The right-hand side must parse as JSON to count; framework
// payloads that are JavaScript expressions rather than JSON are skipped.
var windowStateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?s)window\.(__NUXT__)\s*=\s*(.+?);?\s*$`),
	regexp.MustCompile(`(?s)window\.(__INITIAL_STATE__)\s*=\s*(\{.+?\});`),
	regexp.MustCompile(`(?s)window\.(__DATA__)\s*=\s*(\{.+?\});`),
	regexp.MustCompile(`(?s)window\.(__PRELOADED_STATE__)\s*=\s*(\{.+?\});`),
	regexp.MustCompile(`(?s)var\s+(pageData)\s*=\s*(\{.+?\});`),
	regexp.MustCompile(`(?s)var\s+(__data__)\s*=\s*(\{.+?\});`),
}

// extractSSRPayload pulls embedded hydration state out of a parsed page.
// Tried in order: a Next.js data script tag, then inline window assignments.
// Returns nil when the page carries neither; most pages won't, and that is
// not an error.
func extractSSRPayload(doc *goquery.Document) *ssrPayload {
	if raw := doc.Find("script#__NEXT_DATA__").First().Text(); raw != "" {
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			return &ssrPayload{Kind: payloadNextData, Name: "__NEXT_DATA__", Data: data}
		}
	}

	var found *ssrPayload
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if text == "" {
			return true
		}
		for _, re := range windowStateRes {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			var data any
			if err := json.Unmarshal([]byte(m[2]), &data); err != nil {
				continue
			}
			found = &ssrPayload{Kind: payloadWindowState, Name: m[1], Data: data}
			return false
		}
		return true
	})
	return found
}

// appData returns the application-level subtree of the payload. Next.js
// nests page data under props.pageProps; other kinds are used as-is.
func (p *ssrPayload) appData() any {
	if p == nil {
		return nil
	}
	if p.Kind == payloadNextData {
		if root, ok := p.Data.(map[string]any); ok {
			if props, ok := root["props"].(map[string]any); ok {
				if pageProps, ok := props["pageProps"].(map[string]any); ok {
					return pageProps
				}
				return props
			}
		}
	}
	return p.Data
}

// provenance returns the source tag for results built from this payload.
func (p *ssrPayload) provenance() string {
	if p.Kind == payloadNextData {
		return "ssr:next_data"
	}
	return "ssr:" + p.Name
}
