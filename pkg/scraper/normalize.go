package scraper

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"drama-gateway-go/pkg/types"
	"drama-gateway-go/pkg/urlutil"
)

// Field alias tables. Each logical field lists acceptable source names in
// priority order; the first present (and non-empty) wins. This single
// mapping is what lets all three extraction tiers converge on one schema.
var (
	idAliases          = []string{"id", "drama_id", "dramaId", "videoId", "video_id"}
	slugAliases        = []string{"slug", "id", "drama_id", "dramaId"}
	titleAliases       = []string{"title", "name", "drama_name", "dramaName"}
	coverAliases       = []string{"cover", "coverUrl", "cover_url", "image", "poster", "thumbnail"}
	pageURLAliases     = []string{"url", "detailUrl", "shareUrl", "link"}
	countAliases       = []string{"totalEpisodes", "episodeCount", "episode_count", "total", "chapterCount"}
	ratingAliases      = []string{"rating", "score"}
	genreAliases       = []string{"genre", "category", "categoryName", "tag"}
	viewsAliases       = []string{"views", "playCount", "play_count", "viewCount"}
	statusAliases      = []string{"status", "state"}
	descAliases        = []string{"description", "desc", "synopsis", "intro", "summary"}
	origTitleAliases   = []string{"originalTitle", "original_title"}
	langAliases        = []string{"language", "lang"}
	yearAliases        = []string{"year", "releaseYear", "release_year"}
	epNumberAliases    = []string{"number", "episode", "sort", "ep", "index", "episodeNo", "episode_no"}
	epTitleAliases     = []string{"title", "name", "episodeName"}
	epURLAliases       = []string{"url", "detailUrl", "playPageUrl", "link"}
	epStreamAliases    = []string{"streamUrl", "videoUrl", "playUrl", "video_url", "play_url"}
	epThumbAliases     = []string{"thumbnail", "cover", "image"}
	epDurationAliases  = []string{"duration", "time", "length"}
	vipSignalAliases   = []string{"isVip", "vip", "locked", "lock", "coin", "needCoin"}
	freeSignalAliases  = []string{"isFree", "free"}
	castAliases        = []string{"cast", "actors", "starring"}
	genreListAliases   = []string{"genres", "genreList", "tags", "categories"}
)

var digitsRe = regexp.MustCompile(`\d+`)

// toCard maps a raw record of unknown shape into a DramaCard. It always
// returns a value; records without a resolvable title are dropped by the
// caller, not here.
func (s *Scraper) toCard(rec map[string]any) types.DramaCard {
	id := pickString(rec, idAliases...)
	slug := pickString(rec, slugAliases...)
	if slug == "" {
		slug = id
	}

	pageURL := pickString(rec, pageURLAliases...)
	if pageURL == "" && slug != "" {
		pageURL = s.dramaPageURL(slug)
	}
	pageURL = urlutil.Absolutize(pageURL, s.cfg.UpstreamBaseURL)

	if id == "" {
		id = urlutil.LastSegment(pageURL)
	}

	return types.DramaCard{
		ID:           id,
		Slug:         slug,
		Title:        strings.TrimSpace(pickString(rec, titleAliases...)),
		Cover:        urlutil.Absolutize(pickString(rec, coverAliases...), s.cfg.UpstreamBaseURL),
		URL:          pageURL,
		EpisodeCount: pickInt(rec, countAliases...),
		Rating:       pickFloat(rec, ratingAliases...),
		Genre:        pickString(rec, genreAliases...),
		Views:        pickString(rec, viewsAliases...),
		Status:       pickString(rec, statusAliases...),
	}
}

// toEpisode maps a raw record into an Episode. Numbering priority: explicit
// field, then the first digit run in the title, then the positional index.
func (s *Scraper) toEpisode(rec map[string]any, index int) types.Episode {
	title := strings.TrimSpace(pickString(rec, epTitleAliases...))

	number := pickInt(rec, epNumberAliases...)
	if number <= 0 {
		if m := digitsRe.FindString(title); m != "" {
			number, _ = strconv.Atoi(m)
		}
	}
	if number <= 0 {
		number = index + 1
	}

	if title == "" {
		title = fmt.Sprintf("Episode %d", number)
	}

	vip := pickBool(rec, vipSignalAliases...)
	free := !vip
	if v, ok := lookupBool(rec, freeSignalAliases...); ok {
		free = v
	}

	return types.Episode{
		Number:    number,
		Title:     title,
		URL:       urlutil.Absolutize(pickString(rec, epURLAliases...), s.cfg.UpstreamBaseURL),
		StreamURL: pickString(rec, epStreamAliases...),
		Thumbnail: urlutil.Absolutize(pickString(rec, epThumbAliases...), s.cfg.UpstreamBaseURL),
		Duration:  pickString(rec, epDurationAliases...),
		IsFree:    free,
		IsVip:     vip,
	}
}

// toDetail maps a raw record into a DramaDetail, folding in episodes found
// anywhere beneath it.
func (s *Scraper) toDetail(rec map[string]any, slug string) types.DramaDetail {
	card := s.toCard(rec)
	if card.Slug == "" {
		card.Slug = slug
	}
	if card.ID == "" {
		card.ID = slug
	}
	if card.URL == "" {
		card.URL = s.dramaPageURL(slug)
	}

	detail := types.DramaDetail{
		DramaCard:     card,
		OriginalTitle: pickString(rec, origTitleAliases...),
		Description:   pickString(rec, descAliases...),
		GenreList:     pickStringList(rec, genreListAliases...),
		Language:      pickString(rec, langAliases...),
		Year:          pickString(rec, yearAliases...),
		Cast:          pickStringList(rec, castAliases...),
	}
	if detail.GenreList == nil {
		if g := card.Genre; g != "" {
			detail.GenreList = []string{g}
		} else {
			detail.GenreList = []string{}
		}
	}

	for _, arr := range FindEpisodeArrays(rec) {
		for i, el := range arr {
			if epRec, ok := el.(map[string]any); ok {
				detail.EpisodeList = append(detail.EpisodeList, s.toEpisode(epRec, i))
			}
		}
		break
	}

	finalizeDetail(&detail, card.EpisodeCount)
	return detail
}

// finalizeDetail enforces the detail invariants: episodes sorted ascending
// by number (stable, duplicates preserved), genre list de-duplicated in
// order, total derived from whichever count is larger.
func finalizeDetail(d *types.DramaDetail, reportedCount int) {
	sort.SliceStable(d.EpisodeList, func(i, j int) bool {
		return d.EpisodeList[i].Number < d.EpisodeList[j].Number
	})

	d.GenreList = dedupeStrings(d.GenreList)
	if d.EpisodeList == nil {
		d.EpisodeList = []types.Episode{}
	}

	d.TotalEpisodes = reportedCount
	if n := len(d.EpisodeList); n > d.TotalEpisodes {
		d.TotalEpisodes = n
	}
	d.EpisodeCount = d.TotalEpisodes
}

// classifyStreams turns raw URLs into typed variants: de-duplicated by URL,
// classified by extension, quality guessed from the URL text, HLS entries
// sorted first (stable).
func classifyStreams(urls []string) []types.StreamVariant {
	seen := make(map[string]bool)
	variants := make([]types.StreamVariant, 0, len(urls))

	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		variants = append(variants, types.StreamVariant{
			URL:     u,
			Type:    streamTypeOf(u),
			Quality: streamQualityOf(u),
		})
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Type == types.StreamTypeHLS && variants[j].Type != types.StreamTypeHLS
	})
	return variants
}

func streamTypeOf(u string) types.StreamType {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, ".m3u8"):
		return types.StreamTypeHLS
	case strings.Contains(lower, ".mp4"):
		return types.StreamTypeMP4
	default:
		return types.StreamTypeDASH
	}
}

func streamQualityOf(u string) string {
	switch {
	case strings.Contains(u, "1080"):
		return "1080p"
	case strings.Contains(u, "720"):
		return "720p"
	case strings.Contains(u, "480"):
		return "480p"
	default:
		return "auto"
	}
}

// dramaPageURL builds the canonical detail page URL for a slug.
func (s *Scraper) dramaPageURL(slug string) string {
	return fmt.Sprintf("%s/%s/drama/%s", s.cfg.UpstreamBaseURL, s.cfg.UpstreamLang, slug)
}

// ---- raw record field access ----

func pickString(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func pickFloat(rec map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case float64:
			if v > 0 {
				return v
			}
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f
			}
		}
	}
	return 0
}

func pickInt(rec map[string]any, keys ...string) int {
	return int(pickFloat(rec, keys...))
}

// pickBool treats any truthy value under the given keys as true.
func pickBool(rec map[string]any, keys ...string) bool {
	v, ok := lookupBool(rec, keys...)
	return ok && v
}

func lookupBool(rec map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case bool:
			return v, true
		case float64:
			return v != 0, true
		case string:
			if v != "" {
				return v != "0" && !strings.EqualFold(v, "false"), true
			}
		}
	}
	return false, false
}

func pickStringList(rec map[string]any, keys ...string) []string {
	for _, k := range keys {
		arr, ok := rec[k].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			if str, ok := el.(string); ok && strings.TrimSpace(str) != "" {
				out = append(out, strings.TrimSpace(str))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func dedupeStrings(list []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
