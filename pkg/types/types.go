// Package types defines core domain types used throughout the application.
package types

// StreamType identifies the container/protocol of a playable URL.
type StreamType string

const (
	StreamTypeHLS  StreamType = "hls"
	StreamTypeMP4  StreamType = "mp4"
	StreamTypeDASH StreamType = "dash"
)

// DramaCard is the listing summary for a drama.
type DramaCard struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Cover        string  `json:"cover"`
	URL          string  `json:"url"`
	EpisodeCount int     `json:"episodeCount,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Genre        string  `json:"genre,omitempty"`
	Views        string  `json:"views,omitempty"`
	Status       string  `json:"status,omitempty"`
}

// DramaDetail is the full drama record including its episode list.
type DramaDetail struct {
	DramaCard
	OriginalTitle string    `json:"originalTitle,omitempty"`
	Description   string    `json:"description,omitempty"`
	GenreList     []string  `json:"genreList"`
	TotalEpisodes int       `json:"totalEpisodes"`
	Language      string    `json:"language,omitempty"`
	Year          string    `json:"year,omitempty"`
	Cast          []string  `json:"cast,omitempty"`
	EpisodeList   []Episode `json:"episodeList"`
}

// Episode is a single watchable entry within a drama.
type Episode struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	StreamURL string `json:"streamUrl,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  string `json:"duration,omitempty"`
	IsFree    bool   `json:"isFree"`
	IsVip     bool   `json:"isVip"`
}

// StreamVariant is one playable URL with its classification.
type StreamVariant struct {
	URL     string     `json:"url"`
	Type    StreamType `json:"type"`
	Quality string     `json:"quality"`
}

// StreamInfo is the resolved stream set for one episode page.
type StreamInfo struct {
	EpisodeURL string          `json:"episodeUrl"`
	Streams    []StreamVariant `json:"streams"`
}

// Banner is a promotional carousel entry on the home page.
type Banner struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

// HomeSection groups cards under a heading on the home page.
type HomeSection struct {
	Title  string      `json:"title"`
	Type   string      `json:"type"`
	Dramas []DramaCard `json:"dramas"`
}

// Category is a browsable genre/tag taken from navigation links.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// HomeData is the aggregate result of the home operation.
type HomeData struct {
	Banners    []Banner      `json:"banners"`
	Sections   []HomeSection `json:"sections"`
	Categories []Category    `json:"categories"`
	AllDramas  []DramaCard   `json:"allDramas"`
	Source     string        `json:"source"`
}

// DramaList is one page of the drama listing operation.
type DramaList struct {
	Dramas  []DramaCard `json:"dramas"`
	HasMore bool        `json:"hasMore"`
	Source  string      `json:"source"`
}

// SearchResult is the outcome of a search operation.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Dramas []DramaCard `json:"dramas"`
	Source string      `json:"source"`
}
