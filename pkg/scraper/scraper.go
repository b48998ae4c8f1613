// Package scraper implements the three-tier extraction core: guessed API
// endpoints first, embedded SSR hydration state second, HTML pattern
// parsing last. Every operation is fronted by the response cache and tags
// its result with the tier that produced it.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"drama-gateway-go/pkg/cache"
	"drama-gateway-go/pkg/config"
	"drama-gateway-go/pkg/logging"
	"drama-gateway-go/pkg/types"
	"drama-gateway-go/pkg/urlutil"
)

const listPageSize = 20

// Doer abstracts the HTTP client for testability.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Scraper is the extraction pipeline. It holds no per-request state; the
// injected cache store is the only thing shared across calls.
type Scraper struct {
	client Doer
	cache  cache.Store
	cfg    *config.Config
	log    *logging.Logger
}

// New creates a Scraper.
func New(client Doer, store cache.Store, cfg *config.Config, log *logging.Logger) *Scraper {
	return &Scraper{
		client: client,
		cache:  store,
		cfg:    cfg,
		log:    log.WithComponent("scraper"),
	}
}

// DetailResult pairs a drama detail with the tier that produced it.
type DetailResult struct {
	Detail types.DramaDetail `json:"detail"`
	Source string            `json:"source"`
}

// StreamResult pairs resolved streams with the tier that produced them.
type StreamResult struct {
	Stream types.StreamInfo `json:"stream"`
	Source string           `json:"source"`
}

// Home returns the aggregate home page data.
func (s *Scraper) Home(ctx context.Context) (types.HomeData, bool, error) {
	return cache.GetOrCompute(ctx, s.cache, "home", s.cfg.CacheTTL, s.scrapeHome)
}

// Dramas returns one page of the drama listing.
func (s *Scraper) Dramas(ctx context.Context, page int, category string) (types.DramaList, bool, error) {
	key := fmt.Sprintf("dramas:%d:%s", page, category)
	return cache.GetOrCompute(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (types.DramaList, error) {
		return s.scrapeDramas(ctx, page, category)
	})
}

// Detail returns the full record for one drama, or ErrNoData when no tier
// can resolve it.
func (s *Scraper) Detail(ctx context.Context, slug string) (DetailResult, bool, error) {
	key := "drama:" + slug
	return cache.GetOrCompute(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (DetailResult, error) {
		return s.scrapeDetail(ctx, slug)
	})
}

// Stream resolves playable URLs for one episode, or ErrNoData when nothing
// playable can be found.
func (s *Scraper) Stream(ctx context.Context, slug string, episode int) (StreamResult, bool, error) {
	key := fmt.Sprintf("stream:%s:%d", slug, episode)
	return cache.GetOrCompute(ctx, s.cache, key, s.cfg.StreamTTL, func(ctx context.Context) (StreamResult, error) {
		return s.scrapeStream(ctx, slug, episode)
	})
}

// Search returns dramas matching a query. The query must be validated by
// the caller before any upstream work is attempted.
func (s *Scraper) Search(ctx context.Context, query string, page int) (types.SearchResult, bool, error) {
	key := fmt.Sprintf("search:%s:%d", query, page)
	return cache.GetOrCompute(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (types.SearchResult, error) {
		return s.scrapeSearch(ctx, query, page)
	})
}

// ---- home ----

func (s *Scraper) scrapeHome(ctx context.Context) (types.HomeData, error) {
	// Tier 1: guessed API endpoints.
	if hit := s.probe(ctx, opHome, nil, hasRecordArrays); hit != nil {
		cards := s.cardsFromPayload(hit.Data)
		if len(cards) > 0 {
			home := emptyHome("api:" + hit.Endpoint)
			home.AllDramas = cards
			return home, nil
		}
	}

	// Tiers 2 and 3 both work from the rendered home page.
	html, err := s.fetchHTML(ctx, s.cfg.HomeURL())
	if err != nil {
		return types.HomeData{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.HomeData{}, err
	}

	if payload := extractSSRPayload(doc); payload != nil {
		cards := s.cardsFromPayload(payload.Data)
		if len(cards) > 0 {
			home := emptyHome(payload.provenance())
			home.AllDramas = cards
			home.Sections = s.sectionsFromAppData(payload.appData())
			if len(home.Sections) == 0 {
				home.Sections = orEmptySections(s.parseSectionsFromHTML(doc))
			}
			home.Banners = orEmptyBanners(s.parseBannersFromHTML(doc))
			home.Categories = orEmptyCategories(s.parseCategoriesFromHTML(doc))
			return home, nil
		}
	}

	home := emptyHome("html")
	home.AllDramas = dedupeCards(s.parseCardsFromHTML(doc))
	home.Sections = orEmptySections(s.parseSectionsFromHTML(doc))
	home.Banners = orEmptyBanners(s.parseBannersFromHTML(doc))
	home.Categories = orEmptyCategories(s.parseCategoriesFromHTML(doc))
	return home, nil
}

func emptyHome(source string) types.HomeData {
	return types.HomeData{
		Banners:    []types.Banner{},
		Sections:   []types.HomeSection{},
		Categories: []types.Category{},
		AllDramas:  []types.DramaCard{},
		Source:     source,
	}
}

// EmptyHome is the degraded result served when every tier fails; the home
// operation never reports not-found.
func EmptyHome() types.HomeData { return emptyHome("none") }

// cardsFromPayload normalizes every drama-like array found anywhere in a
// payload, dropping untitled records and duplicates.
func (s *Scraper) cardsFromPayload(data any) []types.DramaCard {
	var cards []types.DramaCard
	for _, arr := range FindRecordArrays(data, 2) {
		for _, rec := range arr {
			cards = append(cards, s.toCard(rec))
		}
	}
	return dedupeCards(cards)
}

// sectionsFromAppData builds home sections from top-level arrays of the
// SSR application state, titling each by its humanized field name.
func (s *Scraper) sectionsFromAppData(data any) []types.HomeSection {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}

	var sections []types.HomeSection
	for _, key := range sortedKeys(obj) {
		arrays := FindRecordArrays(map[string]any{key: obj[key]}, 2)
		if len(arrays) == 0 {
			continue
		}
		var dramas []types.DramaCard
		for _, rec := range arrays[0] {
			card := s.toCard(rec)
			if card.Title != "" {
				dramas = append(dramas, card)
			}
		}
		if len(dramas) > 0 {
			sections = append(sections, types.HomeSection{
				Title:  humanizeKey(key),
				Type:   "list",
				Dramas: dramas,
			})
		}
	}
	return sections
}

// ---- listing ----

func (s *Scraper) scrapeDramas(ctx context.Context, page int, category string) (types.DramaList, error) {
	params := map[string]any{"page": page, "pageSize": listPageSize, "size": listPageSize}
	if category != "" {
		params["category"] = category
	}

	for _, op := range []operation{opList, opHome} {
		hit := s.probe(ctx, op, []map[string]any{params}, hasRecordArrays)
		if hit == nil {
			continue
		}
		arrays := FindRecordArrays(hit.Data, 2)
		cards := make([]types.DramaCard, 0, len(arrays[0]))
		for _, rec := range arrays[0] {
			if card := s.toCard(rec); card.Title != "" {
				cards = append(cards, card)
			}
		}
		if len(cards) > 0 {
			return types.DramaList{
				Dramas:  cards,
				HasMore: len(cards) >= listPageSize,
				Source:  "api:" + hit.Endpoint,
			}, nil
		}
	}

	// Fallback: the home page is the only listing guaranteed to render.
	home, _, err := s.Home(ctx)
	if err != nil {
		return types.DramaList{}, err
	}
	return types.DramaList{
		Dramas:  home.AllDramas,
		HasMore: false,
		Source:  "homepage:" + home.Source,
	}, nil
}

// ---- detail ----

func (s *Scraper) scrapeDetail(ctx context.Context, slug string) (DetailResult, error) {
	pageURL := s.dramaPageURL(slug)
	if urlutil.IsAbsolute(slug) {
		pageURL = slug
		slug = urlutil.LastSegment(slug)
	}

	// Tier 1: detail endpoints with every known parameter spelling.
	if hit := s.probe(ctx, opDetail, detailParamSets(slug), hasDetailObject); hit != nil {
		if rec := unwrapRecord(hit.Data); rec != nil {
			detail := s.toDetail(rec, slug)
			if detail.Title != "" {
				if len(detail.EpisodeList) == 0 {
					s.probeEpisodes(ctx, slug, &detail)
				}
				return DetailResult{Detail: detail, Source: "api:" + hit.Endpoint}, nil
			}
		}
	}

	html, err := s.fetchHTML(ctx, pageURL)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.NotFound() {
			return DetailResult{}, ErrNoData
		}
		return DetailResult{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return DetailResult{}, err
	}

	// Tier 2: hydration state on the detail page.
	if payload := extractSSRPayload(doc); payload != nil {
		if rec := detailRecordFromAppData(payload.appData()); rec != nil {
			detail := s.toDetail(rec, slug)
			if detail.Title != "" {
				if len(detail.EpisodeList) == 0 {
					detail.EpisodeList = s.parseEpisodesFromHTML(doc)
					finalizeDetail(&detail, detail.TotalEpisodes)
				}
				return DetailResult{Detail: detail, Source: payload.provenance()}, nil
			}
		}
	}

	// Tier 3: DOM patterns.
	detail := s.parseDetailFromHTML(doc, slug)
	if detail.Title == "" {
		return DetailResult{}, ErrNoData
	}
	return DetailResult{Detail: detail, Source: "html"}, nil
}

// probeEpisodes fills an API-sourced detail whose payload lacked episodes by
// probing the episode-list endpoints.
func (s *Scraper) probeEpisodes(ctx context.Context, slug string, detail *types.DramaDetail) {
	hit := s.probe(ctx, opEpisodes, detailParamSets(slug), func(data any) bool {
		return len(FindEpisodeArrays(data)) > 0
	})
	if hit == nil {
		return
	}
	for _, arr := range FindEpisodeArrays(hit.Data) {
		for i, el := range arr {
			if rec, ok := el.(map[string]any); ok {
				detail.EpisodeList = append(detail.EpisodeList, s.toEpisode(rec, i))
			}
		}
		break
	}
	finalizeDetail(detail, detail.TotalEpisodes)
}

// detailRecordFromAppData digs the drama record out of SSR application
// state, trying the conventional wrapper keys before the state itself.
func detailRecordFromAppData(data any) map[string]any {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range []string{"dramaDetail", "drama", "detail", "videoDetail", "seriesDetail", "data"} {
		if rec, ok := obj[key].(map[string]any); ok && hasTitle(rec) {
			return rec
		}
	}
	if hasTitle(obj) {
		return obj
	}
	return nil
}

// ---- stream ----

func (s *Scraper) scrapeStream(ctx context.Context, slug string, episode int) (StreamResult, error) {
	episodeURL := s.dramaPageURL(slug)
	var urls []string

	// The cached detail usually knows the episode page, and sometimes the
	// stream itself.
	if result, _, err := s.Detail(ctx, slug); err == nil {
		for _, ep := range result.Detail.EpisodeList {
			if ep.Number != episode {
				continue
			}
			if ep.URL != "" {
				episodeURL = ep.URL
			}
			if ep.StreamURL != "" {
				urls = append(urls, ep.StreamURL)
			}
			break
		}
	}

	source := ""
	videoID := urlutil.LastSegment(episodeURL)

	// Tier 1: play/stream endpoints.
	if hit := s.probe(ctx, opStream, streamParamSets(videoID), hasStreamStrings); hit != nil {
		urls = append(urls, FindStreamStrings(hit.Data)...)
		source = "api:" + hit.Endpoint
	}

	// Tiers 2 and 3: the episode page itself.
	if html, err := s.fetchHTML(ctx, episodeURL); err == nil {
		if doc, derr := goquery.NewDocumentFromReader(strings.NewReader(html)); derr == nil {
			if payload := extractSSRPayload(doc); payload != nil {
				if found := FindStreamStrings(payload.Data); len(found) > 0 {
					urls = append(urls, found...)
					if source == "" {
						source = payload.provenance()
					}
				}
			}
		}
		if found := extractStreamURLsFromHTML(html); len(found) > 0 {
			urls = append(urls, found...)
			if source == "" {
				source = "html"
			}
		}
	} else {
		s.log.Debug("episode page fetch failed", "url", episodeURL, "error", err)
	}

	streams := classifyStreams(urls)
	if len(streams) == 0 {
		return StreamResult{}, ErrNoData
	}
	if source == "" {
		source = "detail"
	}

	return StreamResult{
		Stream: types.StreamInfo{EpisodeURL: episodeURL, Streams: streams},
		Source: source,
	}, nil
}

// ---- search ----

func (s *Scraper) scrapeSearch(ctx context.Context, query string, page int) (types.SearchResult, error) {
	result := types.SearchResult{Query: query, Page: page, Dramas: []types.DramaCard{}}

	// Tier 1: search endpoints with every known parameter spelling.
	if hit := s.probe(ctx, opSearch, searchParamSets(query, page), hasRecordArrays); hit != nil {
		arrays := FindRecordArrays(hit.Data, 2)
		for _, rec := range arrays[0] {
			if card := s.toCard(rec); card.Title != "" {
				result.Dramas = append(result.Dramas, card)
			}
		}
		result.Total = len(result.Dramas)
		result.Source = "api:" + hit.Endpoint
		return result, nil
	}

	// Tier 3: rendered search result pages. There is no SSR tier here; the
	// site's search pages render client-side when an API exists at all.
	searchPages := []string{
		fmt.Sprintf("%s/%s/search?q=%s", s.cfg.UpstreamBaseURL, s.cfg.UpstreamLang, url.QueryEscape(query)),
		fmt.Sprintf("%s/search?keyword=%s", s.cfg.UpstreamBaseURL, url.QueryEscape(query)),
		fmt.Sprintf("%s/%s/search/%s", s.cfg.UpstreamBaseURL, s.cfg.UpstreamLang, url.PathEscape(query)),
	}
	for _, pageURL := range searchPages {
		html, err := s.fetchHTML(ctx, pageURL)
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		if cards := dedupeCards(s.parseCardsFromHTML(doc)); len(cards) > 0 {
			result.Dramas = cards
			result.Total = len(cards)
			result.Source = "html"
			return result, nil
		}
	}

	result.Source = "html"
	return result, nil
}

// ---- shared helpers ----

// dedupeCards drops untitled records and de-duplicates by title+URL,
// preserving first-seen order.
func dedupeCards(cards []types.DramaCard) []types.DramaCard {
	seen := make(map[string]bool)
	out := make([]types.DramaCard, 0, len(cards))
	for _, c := range cards {
		if c.Title == "" {
			continue
		}
		key := c.Title + "|" + c.URL
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// unwrapRecord peels the conventional data/result wrapper off an API
// payload.
func unwrapRecord(data any) map[string]any {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range []string{"data", "result"} {
		if rec, ok := obj[key].(map[string]any); ok {
			return rec
		}
	}
	return obj
}

func hasTitle(rec map[string]any) bool {
	if t, ok := rec["title"].(string); ok && t != "" {
		return true
	}
	if t, ok := rec["name"].(string); ok && t != "" {
		return true
	}
	return false
}

// humanizeKey turns a camelCase or snake_case field name into a section
// heading.
func humanizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		if r == '_' {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orEmptySections(s []types.HomeSection) []types.HomeSection {
	if s == nil {
		return []types.HomeSection{}
	}
	return s
}

func orEmptyBanners(b []types.Banner) []types.Banner {
	if b == nil {
		return []types.Banner{}
	}
	return b
}

func orEmptyCategories(c []types.Category) []types.Category {
	if c == nil {
		return []types.Category{}
	}
	return c
}
