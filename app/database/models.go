package database

import (
	"time"
)

// Content item statuses as written by the collaborator system.
const (
	StatusDraft     = "draft"
	StatusPublished = "publish"
	StatusTrashed   = "trash"
)

// Metadata keys carrying manual AI-facing overrides.
const (
	MetaSummary   = "ai_summary"
	MetaKeywords  = "ai_keywords"
	MetaAudience  = "ai_audience"
	MetaIndexable = "ai_indexable"
)

// MediaRef is an image attached to a content item.
type MediaRef struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Alt      string `json:"alt"`
	Featured bool   `json:"featured,omitempty"`
}

// ContentItem is a publishable unit of content owned by the
// collaborator system. This service only ever reads it.
type ContentItem struct {
	ID          int64
	Title       string
	Slug        string
	Body        string
	Excerpt     string
	Status      string
	Type        string
	AuthorName  string
	AuthorURL   string
	Language    string
	PublishedAt *time.Time
	ModifiedAt  time.Time
	Categories  []string
	Tags        []string
	Taxonomies  map[string][]string
	Media       []MediaRef
	Meta        map[string]string
	CreatedAt   time.Time
}

// Published reports whether the item is visible to consumers.
func (c *ContentItem) Published() bool {
	return c.Status == StatusPublished
}
