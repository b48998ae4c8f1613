package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse test html: %v", err)
	}
	return doc
}

func TestExtractSSRPayload_NextData(t *testing.T) {
	html := `<html><body>
		<script id="__NEXT_DATA__" type="application/json">
			{"props":{"pageProps":{"dramaList":[{"title":"A","id":1}]}},"page":"/"}
		</script>
	</body></html>`

	payload := extractSSRPayload(parseDoc(t, html))
	if payload == nil {
		t.Fatal("extractSSRPayload() = nil, want next_data payload")
	}
	if payload.Kind != payloadNextData {
		t.Errorf("Kind = %q, want %q", payload.Kind, payloadNextData)
	}
	if payload.provenance() != "ssr:next_data" {
		t.Errorf("provenance() = %q, want ssr:next_data", payload.provenance())
	}

	app, ok := payload.appData().(map[string]any)
	if !ok {
		t.Fatal("appData() is not an object")
	}
	if _, ok := app["dramaList"]; !ok {
		t.Error("appData() did not unwrap props.pageProps")
	}
}

func TestExtractSSRPayload_WindowState(t *testing.T) {
	html := `<html><body>
		<script>window.__NUXT__ = {"state":{"dramas":[{"title":"A","id":1}]}};</script>
	</body></html>`

	payload := extractSSRPayload(parseDoc(t, html))
	if payload == nil {
		t.Fatal("extractSSRPayload() = nil, want window state payload")
	}
	if payload.Kind != payloadWindowState {
		t.Errorf("Kind = %q, want %q", payload.Kind, payloadWindowState)
	}
	if payload.Name != "__NUXT__" {
		t.Errorf("Name = %q, want __NUXT__", payload.Name)
	}
	if payload.provenance() != "ssr:__NUXT__" {
		t.Errorf("provenance() = %q, want ssr:__NUXT__", payload.provenance())
	}
}

func TestExtractSSRPayload_SkipsNonJSONAssignments(t *testing.T) {
	// Function-call payloads are JavaScript, not JSON; they must be skipped.
	html := `<html><body>
		<script>window.__NUXT__ = (function(a){return {data:a}})(42);</script>
		<script>window.__INITIAL_STATE__ = {"list":[{"title":"B","id":2}]};</script>
	</body></html>`

	payload := extractSSRPayload(parseDoc(t, html))
	if payload == nil {
		t.Fatal("extractSSRPayload() = nil, want __INITIAL_STATE__ payload")
	}
	if payload.Name != "__INITIAL_STATE__" {
		t.Errorf("Name = %q, want __INITIAL_STATE__", payload.Name)
	}
}

func TestExtractSSRPayload_NoPayload(t *testing.T) {
	html := `<html><body><script>console.log("hi")</script></body></html>`
	if payload := extractSSRPayload(parseDoc(t, html)); payload != nil {
		t.Errorf("extractSSRPayload() = %+v, want nil", payload)
	}
}

func TestAppData_NonNextPassthrough(t *testing.T) {
	p := &ssrPayload{Kind: payloadWindowState, Name: "pageData", Data: map[string]any{"x": 1}}
	app, ok := p.appData().(map[string]any)
	if !ok || app["x"] != 1 {
		t.Errorf("appData() = %v, want original map", p.appData())
	}
}
