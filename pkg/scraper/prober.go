package scraper

import (
	"context"
	"fmt"
	"net/url"
)

// probeHit records which guessed endpoint produced a usable payload. The
// Endpoint string becomes part of the result's provenance tag.
type probeHit struct {
	Endpoint string
	Data     any
}

// defaultProbeBody is sent when an operation has no parameters of its own;
// most paginated upstream endpoints expect something like it.
var defaultProbeBody = map[string]any{"page": 1, "pageSize": 20}

// probe tries every candidate path for op in order. For each candidate and
// each parameter set it issues a GET with a querystring, then a POST with a
// JSON body, and short-circuits on the first payload that plausible accepts.
// Failures move straight to the next attempt; probing has no retries.
// Returns nil when every candidate is exhausted.
func (s *Scraper) probe(ctx context.Context, op operation, paramSets []map[string]any, plausible func(any) bool) *probeHit {
	if len(paramSets) == 0 {
		paramSets = []map[string]any{nil}
	}

	for _, path := range apiCandidates[op] {
		endpoint := s.cfg.UpstreamBaseURL + path

		for _, params := range paramSets {
			if ctx.Err() != nil {
				return nil
			}

			if data := s.fetchJSON(ctx, withQuery(endpoint, params), nil); data != nil && plausible(data) {
				s.log.Info("probe hit", "op", string(op), "endpoint", "GET "+path)
				return &probeHit{Endpoint: "GET " + path, Data: data}
			}

			body := params
			if body == nil {
				body = defaultProbeBody
			}
			if data := s.fetchJSON(ctx, endpoint, body); data != nil && plausible(data) {
				s.log.Info("probe hit", "op", string(op), "endpoint", "POST "+path)
				return &probeHit{Endpoint: "POST " + path, Data: data}
			}
		}
	}

	s.log.Debug("probe exhausted", "op", string(op))
	return nil
}

// withQuery appends params to endpoint as a querystring.
func withQuery(endpoint string, params map[string]any) string {
	if len(params) == 0 {
		return endpoint
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, fmt.Sprint(v))
	}
	return endpoint + "?" + q.Encode()
}

// hasRecordArrays accepts payloads containing at least one drama-like array.
func hasRecordArrays(data any) bool {
	return len(FindRecordArrays(data, 2)) > 0
}

// hasStreamStrings accepts payloads containing at least one playable URL.
func hasStreamStrings(data any) bool {
	return len(FindStreamStrings(data)) > 0
}

// hasDetailObject accepts payloads that look like a single drama record,
// directly or under a conventional data/result wrapper.
func hasDetailObject(data any) bool {
	obj, ok := data.(map[string]any)
	if !ok {
		return false
	}
	for _, candidate := range []any{obj["data"], obj["result"], obj} {
		if rec, ok := candidate.(map[string]any); ok {
			if _, ok := rec["title"]; ok {
				return true
			}
			if _, ok := rec["name"]; ok {
				return true
			}
		}
	}
	return false
}
