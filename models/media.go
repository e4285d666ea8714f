package models

// Basic structures for catalog items and categories.

// MediaItem is a single entry in the remote catalog. Items are immutable
// once fetched; an update replaces the whole value.
type MediaItem struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`               // movie | series
	URL      string            `json:"url,omitempty"`      // movies: playable URL
	Episodes map[string]string `json:"episodes,omitempty"` // series: episode id -> playable URL
	Info     *MediaInfo        `json:"info,omitempty"`
}

// MediaInfo is the optional enrichment block attached to a MediaItem.
type MediaInfo struct {
	Title          string       `json:"title,omitempty"`
	Poster         string       `json:"poster,omitempty"`
	Backdrop       string       `json:"backdrop,omitempty"`
	Year           string       `json:"year,omitempty"`
	Rating         float64      `json:"rating,omitempty"`
	Popularity     float64      `json:"popularity,omitempty"`
	Genres         []string     `json:"genres,omitempty"`
	Cast           []CastMember `json:"cast,omitempty"`
	RuntimeMinutes int          `json:"runtimeMinutes,omitempty"`
	Certification  string       `json:"certification,omitempty"`
	TMDBID         int64        `json:"tmdbId,omitempty"`
}

// CastMember identifies one cast entry by its external id.
type CastMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryState is a snapshot of one category's loading progress.
type CategoryState struct {
	LastPage  int  `json:"lastPage"`
	HasMore   bool `json:"hasMore"`
	ItemCount int  `json:"itemCount"`
}

// CatalogStatus represents the status of the catalog service.
type CatalogStatus struct {
	Loading    bool                     `json:"loading"`
	Hydrated   bool                     `json:"hydrated"`
	TotalItems int                      `json:"totalItems"`
	Categories map[string]CategoryState `json:"categories"`
}
