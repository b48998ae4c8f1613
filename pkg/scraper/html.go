package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"drama-gateway-go/pkg/types"
	"drama-gateway-go/pkg/urlutil"
)

var (
	m3u8URLRe = regexp.MustCompile(`https?://[^\s"'<>]+\.m3u8[^\s"'<>]*`)
	mp4URLRe  = regexp.MustCompile(`https?://[^\s"'<>]+\.mp4[^\s"'<>]*`)
	// key: "https://..." assignments inside inline scripts
	kvMediaURLRe = regexp.MustCompile(`(?i)(?:playUrl|videoUrl|streamUrl|video_url|play_url|src|source|url)\s*[=:]\s*["'](https?://[^"']+)["']`)

	episodeCountRe = regexp.MustCompile(`(?i)(\d+)\s*(?:ep\b|episode|集)`)
	floatRe        = regexp.MustCompile(`[\d.]+`)
	episodeTextRe  = regexp.MustCompile(`(?i)(?:episode|ep\.?\s*)\d+`)
	episodeHrefRe  = regexp.MustCompile(`(?i)/ep(?:isode)?/?\d+`)
)

// isDramaHref reports whether an anchor href looks like a drama page and is
// not a navigational path.
func isDramaHref(href string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	for _, seg := range excludedPathSegments {
		if strings.Contains(lower, "/"+seg) {
			return false
		}
	}
	for _, re := range dramaURLPatterns {
		if re.MatchString(href) {
			return true
		}
	}
	return false
}

// parseCardsFromHTML scans every anchor on the page and keeps those whose
// href has a drama URL shape. Title resolution priority: image alt text,
// then a heading or title-classed descendant, then the anchor's title
// attribute. Untitled candidates are discarded; results de-duplicate by
// absolute URL.
func (s *Scraper) parseCardsFromHTML(doc *goquery.Document) []types.DramaCard {
	var cards []types.DramaCard
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !isDramaHref(href) {
			return
		}

		fullURL := urlutil.Absolutize(href, s.cfg.UpstreamBaseURL)
		if seen[fullURL] {
			return
		}

		img := sel.Find("img").First()
		title := strings.TrimSpace(img.AttrOr("alt", ""))
		if title == "" {
			title = strings.TrimSpace(sel.Find(`h2, h3, h4, [class*="title"], [class*="name"]`).First().Text())
		}
		if title == "" {
			title = strings.TrimSpace(sel.AttrOr("title", ""))
		}
		if title == "" {
			return
		}

		cover := img.AttrOr("src", "")
		if cover == "" {
			cover = img.AttrOr("data-src", "")
		}
		if cover == "" {
			cover = img.AttrOr("data-lazy-src", "")
		}

		slug := urlutil.LastSegment(href)
		card := types.DramaCard{
			ID:    slug,
			Slug:  slug,
			Title: title,
			Cover: urlutil.Absolutize(cover, s.cfg.UpstreamBaseURL),
			URL:   fullURL,
		}

		if m := episodeCountRe.FindStringSubmatch(sel.Text()); m != nil {
			card.EpisodeCount, _ = strconv.Atoi(m[1])
		}
		if ratingText := sel.Find(`[class*="rating"], [class*="score"]`).First().Text(); ratingText != "" {
			if m := floatRe.FindString(ratingText); m != "" {
				card.Rating, _ = strconv.ParseFloat(m, 64)
			}
		}

		seen[fullURL] = true
		cards = append(cards, card)
	})

	return cards
}

// parseSectionsFromHTML extracts titled groups of drama cards. The first
// selector that yields any section wins.
func (s *Scraper) parseSectionsFromHTML(doc *goquery.Document) []types.HomeSection {
	for _, selector := range sectionSelectors {
		var sections []types.HomeSection

		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			title := strings.TrimSpace(sel.Find(`h2, h3, [class*="title"]`).First().Text())
			if title == "" {
				return
			}

			var dramas []types.DramaCard
			sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				if !isDramaHref(href) {
					return
				}
				img := a.Find("img").First()
				cardTitle := strings.TrimSpace(img.AttrOr("alt", ""))
				if cardTitle == "" {
					cardTitle = firstLine(a.Text())
				}
				if cardTitle == "" {
					return
				}
				slug := urlutil.LastSegment(href)
				dramas = append(dramas, types.DramaCard{
					ID:    slug,
					Slug:  slug,
					Title: cardTitle,
					Cover: urlutil.Absolutize(img.AttrOr("src", img.AttrOr("data-src", "")), s.cfg.UpstreamBaseURL),
					URL:   urlutil.Absolutize(href, s.cfg.UpstreamBaseURL),
				})
			})

			if len(dramas) > 0 {
				sections = append(sections, types.HomeSection{Title: title, Type: "horizontal", Dramas: dramas})
			}
		})

		if len(sections) > 0 {
			return sections
		}
	}
	return nil
}

// parseBannersFromHTML extracts carousel entries.
func (s *Scraper) parseBannersFromHTML(doc *goquery.Document) []types.Banner {
	var banners []types.Banner
	doc.Find(`[class*="banner"] a, [class*="swiper-slide"] a, [class*="carousel"] a`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		img := sel.Find("img").First()
		if href == "" || img.Length() == 0 {
			return
		}
		banners = append(banners, types.Banner{
			ID:    strconv.Itoa(len(banners)),
			Title: strings.TrimSpace(img.AttrOr("alt", "")),
			Image: urlutil.Absolutize(img.AttrOr("src", img.AttrOr("data-src", "")), s.cfg.UpstreamBaseURL),
			URL:   urlutil.Absolutize(href, s.cfg.UpstreamBaseURL),
		})
	})
	return banners
}

// parseCategoriesFromHTML collects genre/category navigation links.
func (s *Scraper) parseCategoriesFromHTML(doc *goquery.Document) []types.Category {
	var categories []types.Category
	seen := make(map[string]bool)

	doc.Find(`a[href*="category"], a[href*="genre"], [class*="category"] a, [class*="genre"] a, [class*="tag"] a`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if text == "" || href == "" || seen[text] {
			return
		}
		slug := urlutil.LastSegment(href)
		if slug == "" {
			slug = strings.ToLower(strings.ReplaceAll(text, " ", "-"))
		}
		seen[text] = true
		categories = append(categories, types.Category{
			ID:   slug,
			Name: text,
			Slug: slug,
		})
	})
	return categories
}

// parseEpisodesFromHTML walks known episode-container class patterns; within
// the first matching container every interactive child becomes one episode.
// VIP/lock/coin class markers negate isFree. When no container matches, a
// page-wide anchor scan for episode-looking links is the last resort.
func (s *Scraper) parseEpisodesFromHTML(doc *goquery.Document) []types.Episode {
	for _, selector := range episodeContainerSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		var episodes []types.Episode
		container.Find(`a[href], button, [role="button"], li`).Each(func(i int, sel *goquery.Selection) {
			episodes = append(episodes, s.episodeFromElement(sel, i))
		})
		if len(episodes) > 0 {
			return episodes
		}
	}

	var episodes []types.Episode
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if !episodeTextRe.MatchString(text) && !episodeHrefRe.MatchString(href) {
			return
		}
		episodes = append(episodes, s.episodeFromElement(sel, i))
	})
	return episodes
}

func (s *Scraper) episodeFromElement(sel *goquery.Selection, index int) types.Episode {
	text := strings.TrimSpace(sel.Text())

	number := 0
	if m := digitsRe.FindString(text); m != "" {
		number, _ = strconv.Atoi(m)
	}
	if number <= 0 {
		number = index + 1
	}

	title := text
	if title == "" {
		title = fmt.Sprintf("Episode %d", number)
	}

	locked := sel.Find(`[class*="vip"], [class*="lock"], [class*="coin"]`).Length() > 0
	vip := sel.Find(`[class*="vip"], [class*="lock"]`).Length() > 0

	return types.Episode{
		Number:    number,
		Title:     title,
		URL:       urlutil.Absolutize(sel.AttrOr("href", ""), s.cfg.UpstreamBaseURL),
		Thumbnail: urlutil.Absolutize(sel.Find("img").First().AttrOr("src", ""), s.cfg.UpstreamBaseURL),
		Duration:  strings.TrimSpace(sel.Find(`[class*="duration"], [class*="time"]`).First().Text()),
		IsFree:    !locked,
		IsVip:     vip,
	}
}

// parseDetailFromHTML resolves detail fields through fixed priority chains:
// meta tags first, then heading/class-pattern text.
func (s *Scraper) parseDetailFromHTML(doc *goquery.Document, slug string) types.DramaDetail {
	title := strings.TrimSpace(metaContent(doc, `meta[property="og:title"]`))
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	cover := metaContent(doc, `meta[property="og:image"]`)
	if cover == "" {
		cover = doc.Find(`[class*="cover"] img, [class*="poster"] img, [class*="banner"] img`).First().AttrOr("src", "")
	}

	description := metaContent(doc, `meta[property="og:description"]`)
	if description == "" {
		description = metaContent(doc, `meta[name="description"]`)
	}
	if description == "" {
		description = strings.TrimSpace(doc.Find(`[class*="desc"], [class*="synopsis"], [class*="summary"], [class*="intro"]`).First().Text())
	}

	var genres []string
	doc.Find(`[class*="genre"] a, [class*="tag"] a, [class*="category"] a`).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			genres = append(genres, text)
		}
	})

	var rating float64
	if text := doc.Find(`[class*="rating"], [class*="score"]`).First().Text(); text != "" {
		if m := floatRe.FindString(text); m != "" {
			rating, _ = strconv.ParseFloat(m, 64)
		}
	}

	var cast []string
	doc.Find(`[class*="cast"] a, [class*="actor"] a`).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			cast = append(cast, text)
		}
	})

	detail := types.DramaDetail{
		DramaCard: types.DramaCard{
			ID:     slug,
			Slug:   slug,
			Title:  title,
			Cover:  urlutil.Absolutize(cover, s.cfg.UpstreamBaseURL),
			URL:    s.dramaPageURL(slug),
			Rating: rating,
			Views:  strings.TrimSpace(doc.Find(`[class*="view"], [class*="play-count"]`).First().Text()),
			Status: statusFromText(doc.Find(`[class*="status"]`).First().Text()),
		},
		Description: description,
		GenreList:   genres,
		Cast:        dedupeStrings(cast),
		EpisodeList: s.parseEpisodesFromHTML(doc),
	}
	finalizeDetail(&detail, 0)
	return detail
}

// extractStreamURLsFromHTML regex-scans raw HTML, inline scripts included,
// for playable URLs. Key-value matches are filtered through the media-URL
// heuristic; protocol-relative results are absolutized.
func extractStreamURLsFromHTML(html string) []string {
	var urls []string
	urls = append(urls, m3u8URLRe.FindAllString(html, -1)...)
	urls = append(urls, mp4URLRe.FindAllString(html, -1)...)

	for _, m := range kvMediaURLRe.FindAllStringSubmatch(html, -1) {
		if looksLikeMediaURL(m[1]) {
			urls = append(urls, m[1])
		}
	}

	for i, u := range urls {
		if strings.HasPrefix(u, "//") {
			urls[i] = "https:" + u
		}
	}
	return urls
}

func metaContent(doc *goquery.Document, selector string) string {
	return doc.Find(selector).First().AttrOr("content", "")
}

func statusFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "completed") || strings.Contains(lower, "tamat") || strings.Contains(lower, "selesai"):
		return "completed"
	case strings.Contains(lower, "ongoing") || strings.Contains(lower, "berlangsung"):
		return "ongoing"
	default:
		return ""
	}
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
