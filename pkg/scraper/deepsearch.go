package scraper

import (
	"sort"
	"strings"
)

// maxSearchDepth bounds recursion over unknown payloads. Hitting the bound
// terminates the walk quietly; it is not an error.
const maxSearchDepth = 15

// recordIndicators are field names that suggest an object is a drama record.
var recordIndicators = []string{
	"title", "name", "cover", "image", "poster", "id", "coverUrl", "drama_name",
}

// episodeArrayKeys are field names whose array value is taken as an episode
// list regardless of element shape.
var episodeArrayKeys = []string{
	"episodes", "episodeList", "episode_list", "videoList", "playlist",
}

// streamURLKeys are field names whose string value may be a playable URL.
var streamURLKeys = []string{
	"playUrl", "videoUrl", "streamUrl", "video_url", "play_url", "url", "src", "source",
}

// FindRecordArrays walks an arbitrary decoded JSON value and collects every
// array of objects whose first element shares at least minHits keys with the
// drama-record indicator set. The upstream schema is unknown and unstable;
// shape heuristics are the only available contract.
func FindRecordArrays(root any, minHits int) [][]map[string]any {
	var found [][]map[string]any
	walkValues(root, 0, func(key string, value any) {
		arr, ok := value.([]any)
		if !ok || len(arr) == 0 {
			return
		}
		first, ok := arr[0].(map[string]any)
		if !ok {
			return
		}
		hits := 0
		for _, ind := range recordIndicators {
			if _, ok := first[ind]; ok {
				hits++
			}
		}
		if hits < minHits {
			return
		}
		records := make([]map[string]any, 0, len(arr))
		for _, el := range arr {
			if rec, ok := el.(map[string]any); ok {
				records = append(records, rec)
			}
		}
		if len(records) > 0 {
			found = append(found, records)
		}
	})
	return found
}

// FindEpisodeArrays collects arrays stored under a known episode-list field
// name. Matching is by name only; episode records vary too much for shape
// heuristics.
func FindEpisodeArrays(root any) [][]any {
	var found [][]any
	walkValues(root, 0, func(key string, value any) {
		if !containsString(episodeArrayKeys, key) {
			return
		}
		if arr, ok := value.([]any); ok && len(arr) > 0 {
			found = append(found, arr)
		}
	})
	return found
}

// FindStreamStrings collects string leaves stored under a known stream-URL
// field name whose value passes the playable-media heuristic.
func FindStreamStrings(root any) []string {
	var found []string
	walkValues(root, 0, func(key string, value any) {
		str, ok := value.(string)
		if !ok {
			return
		}
		if containsString(streamURLKeys, key) && looksLikeMediaURL(str) {
			found = append(found, str)
		}
	})
	return found
}

// looksLikeMediaURL reports whether a string plausibly points at playable
// media.
func looksLikeMediaURL(s string) bool {
	lower := strings.ToLower(s)
	for _, ext := range []string{".m3u8", ".mp4", ".ts"} {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	for _, marker := range []string{"video", "stream", "play", "cdn"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// walkValues visits every field of every object in a decoded JSON tree, in
// sorted key order so that results are deterministic, recursing through
// arrays and nested objects up to maxSearchDepth.
func walkValues(node any, depth int, visit func(key string, value any)) {
	if depth > maxSearchDepth || node == nil {
		return
	}

	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			visit(k, v[k])
			walkValues(v[k], depth+1, visit)
		}
	case []any:
		for _, el := range v {
			walkValues(el, depth+1, visit)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, el := range list {
		if el == s {
			return true
		}
	}
	return false
}
