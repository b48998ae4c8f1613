package scraper

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return v
}

func TestFindRecordArrays(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		minHits int
		want    int // number of arrays found
	}{
		{
			name:    "top-level array",
			payload: `{"list":[{"title":"A","cover":"a.jpg"},{"title":"B","cover":"b.jpg"}]}`,
			minHits: 2,
			want:    1,
		},
		{
			name:    "deeply nested array",
			payload: `{"data":{"result":{"rows":[{"name":"A","id":1,"poster":"x"}]}}}`,
			minHits: 2,
			want:    1,
		},
		{
			name:    "too few indicator fields",
			payload: `{"list":[{"title":"A","duration":120}]}`,
			minHits: 2,
			want:    0,
		},
		{
			name:    "array of scalars ignored",
			payload: `{"tags":["romance","revenge"]}`,
			minHits: 2,
			want:    0,
		},
		{
			name:    "multiple qualifying arrays",
			payload: `{"hot":[{"title":"A","id":1}],"new":[{"title":"B","id":2}]}`,
			minHits: 2,
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindRecordArrays(decode(t, tt.payload), tt.minHits)
			if len(got) != tt.want {
				t.Errorf("FindRecordArrays() found %d arrays, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFindRecordArrays_Deterministic(t *testing.T) {
	payload := decode(t, `{"b":[{"title":"B","id":2}],"a":[{"title":"A","id":1}]}`)

	first := FindRecordArrays(payload, 2)
	for i := 0; i < 10; i++ {
		again := FindRecordArrays(payload, 2)
		if len(again) != len(first) {
			t.Fatalf("run %d found %d arrays, first run found %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j][0]["title"] != first[j][0]["title"] {
				t.Fatalf("run %d ordered arrays differently", i)
			}
		}
	}
	if first[0][0]["title"] != "A" {
		t.Errorf("first array title = %v, want A (sorted key order)", first[0][0]["title"])
	}
}

func TestFindEpisodeArrays(t *testing.T) {
	payload := decode(t, `{
		"data": {
			"episodeList": [{"number": 1}, {"number": 2}],
			"related": [{"title": "other"}]
		}
	}`)

	got := FindEpisodeArrays(payload)
	if len(got) != 1 {
		t.Fatalf("FindEpisodeArrays() found %d arrays, want 1", len(got))
	}
	if len(got[0]) != 2 {
		t.Errorf("episode array has %d entries, want 2", len(got[0]))
	}
}

func TestFindStreamStrings(t *testing.T) {
	payload := decode(t, `{
		"data": {
			"playUrl": "https://cdn.example.com/ep1/index.m3u8",
			"videoUrl": "https://video.example.com/ep1.mp4",
			"url": "https://example.com/about",
			"shareText": "https://cdn.example.com/other.m3u8"
		}
	}`)

	got := FindStreamStrings(payload)
	if len(got) != 2 {
		t.Fatalf("FindStreamStrings() = %v, want 2 URLs", got)
	}
	for _, u := range got {
		if u == "https://example.com/about" {
			t.Error("non-media URL under url key was accepted")
		}
		if u == "https://cdn.example.com/other.m3u8" {
			t.Error("media URL under unknown key was accepted")
		}
	}
}

func TestLooksLikeMediaURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/a/index.m3u8?sign=x", true},
		{"https://cdn.example.com/a/ep1.mp4", true},
		{"https://stream.example.com/live/1", true},
		{"https://cdn.example.com/play/abc", true},
		{"https://example.com/terms", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := looksLikeMediaURL(tt.url); got != tt.want {
			t.Errorf("looksLikeMediaURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestWalkValues_DepthBound(t *testing.T) {
	// Build nesting deeper than the walk bound; the walk must terminate and
	// skip the buried leaf.
	leaf := map[string]any{"playUrl": "https://cdn.example.com/deep.m3u8"}
	node := any(leaf)
	for i := 0; i < maxSearchDepth+5; i++ {
		node = map[string]any{"nested": node}
	}

	if got := FindStreamStrings(node); len(got) != 0 {
		t.Errorf("FindStreamStrings() past depth bound = %v, want none", got)
	}
}
