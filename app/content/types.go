package content

import (
	"time"
)

// AI-facing representation types

type Author struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type TaxonomyEntry struct {
	Taxonomy string   `json:"taxonomy"`
	Terms    []string `json:"terms"`
}

type MediaItem struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// EnrichedItem is the derived, immutable AI-facing view of one content
// record. It is the response body of the single/collection/batch
// endpoints and the sole input to the manifest projection.
type EnrichedItem struct {
	ID              int64                  `json:"id"`
	URL             string                 `json:"url"`
	CanonicalURL    string                 `json:"canonical_url"`
	Title           string                 `json:"title"`
	Summary         string                 `json:"summary"`
	SummaryStrategy string                 `json:"summary_strategy"`
	SummarySource   string                 `json:"summary_source"`
	Keywords        []string               `json:"keywords"`
	KeywordStrategy string                 `json:"keyword_strategy"`
	Audience        []string               `json:"audience"`
	Language        string                 `json:"language"`
	UpdatedAt       time.Time              `json:"updated_at"`
	PublishedAt     *time.Time             `json:"published_at"`
	Author          Author                 `json:"author"`
	Categories      []string               `json:"categories"`
	Tags            []string               `json:"tags"`
	Taxonomies      []TaxonomyEntry        `json:"taxonomies"`
	Images          []MediaItem            `json:"images"`
	Alternates      []Alternate            `json:"alternates"`
	Schema          map[string]interface{} `json:"schema"`
	ContentHash     string                 `json:"content_hash"`
	AIIndexable     bool                   `json:"ai_indexable"`
}

// Keyword strategy tags carried in keyword_strategy.
const (
	KeywordsDisabled = "disabled"
	KeywordsManual   = "manual"
	KeywordsTaxonomy = "taxonomy"
)
