package scraper

import "regexp"

// operation names one category of upstream lookup. Each has its own ordered
// list of guessed API paths.
type operation string

const (
	opHome     operation = "home"
	opList     operation = "list"
	opDetail   operation = "detail"
	opEpisodes operation = "episodes"
	opStream   operation = "stream"
	opSearch   operation = "search"
)

// apiCandidates lists plausible upstream API paths per operation, most
// likely first. Versioned and unversioned variants are both present; the
// upstream app has rotated through several REST conventions.
var apiCandidates = map[operation][]string{
	opHome: {
		"/api/home",
		"/api/home/data",
		"/api/home/index",
		"/api/index",
		"/api/init",
		"/api/app/config",
	},
	opList: {
		"/api/drama/list",
		"/api/v1/drama/list",
		"/api/v1/video/list",
		"/api/short/list",
		"/api/series/list",
		"/api/v1/series",
		"/api/home/recommend",
		"/api/home/list",
		"/api/video/list",
		"/api/v2/drama/list",
	},
	opDetail: {
		"/api/drama/detail",
		"/api/v1/drama/detail",
		"/api/v1/video/detail",
		"/api/short/detail",
		"/api/series/detail",
	},
	opEpisodes: {
		"/api/drama/episodes",
		"/api/v1/drama/episodes",
		"/api/episode/list",
		"/api/v1/episode/list",
		"/api/video/episode",
	},
	opStream: {
		"/api/video/play",
		"/api/v1/video/play",
		"/api/episode/play",
		"/api/video/url",
		"/api/stream/url",
	},
	opSearch: {
		"/api/search",
		"/api/v1/search",
		"/api/drama/search",
		"/api/video/search",
	},
}

// dramaURLPatterns identify anchors that point at a drama page.
var dramaURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/drama/[\w-]+`),
	regexp.MustCompile(`/detail/[\w-]+`),
	regexp.MustCompile(`/series/[\w-]+`),
	regexp.MustCompile(`/video/[\w-]+`),
	regexp.MustCompile(`/play/[\w-]+`),
	regexp.MustCompile(`/short/[\w-]+`),
	regexp.MustCompile(`/watch/[\w-]+`),
	regexp.MustCompile(`/id/[\w-]+/[\w-]+`),
}

// excludedPathSegments filter navigational anchors out of card extraction.
var excludedPathSegments = []string{
	"login", "register", "signin", "signup", "about", "help",
	"privacy", "terms", "policy", "faq", "contact",
}

// episodeContainerSelectors locate the episode list in rendered HTML, most
// specific class pattern first.
var episodeContainerSelectors = []string{
	`[class*="episode-list"]`,
	`[class*="episode-wrap"]`,
	`[class*="ep-list"]`,
	`[class*="playlist"]`,
	`[class*="video-list"]`,
	`[class*="chapter-list"]`,
}

// sectionSelectors locate titled card groups on the home page.
var sectionSelectors = []string{
	"section",
	`[class*="section"]`,
	`[class*="module"]`,
	`[class*="block"]`,
	`[class*="swiper"]`,
}

// detailParamSets are the request-body variants tried when probing the
// drama-detail endpoints.
func detailParamSets(id string) []map[string]any {
	return []map[string]any{
		{"id": id},
		{"dramaId": id},
		{"slug": id},
		{"videoId": id},
	}
}

// streamParamSets are the request-body variants tried when probing the
// stream-resolution endpoints.
func streamParamSets(id string) []map[string]any {
	return []map[string]any{
		{"id": id},
		{"episodeId": id},
		{"videoId": id},
		{"vid": id},
	}
}

// searchParamSets are the request-body variants tried when probing the
// search endpoints.
func searchParamSets(query string, page int) []map[string]any {
	return []map[string]any{
		{"keyword": query, "page": page, "pageSize": 20},
		{"q": query, "page": page, "size": 20},
		{"search": query, "page": page},
		{"query": query, "page": page},
	}
}
