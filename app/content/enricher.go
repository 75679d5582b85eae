package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/aivex/ai-visibility/app/database"
	"github.com/aivex/ai-visibility/app/settings"
)

// Keyword list cap when keywords are collected from taxonomies.
const maxTaxonomyKeywords = 10

// Field delimiter for the content hash. Not expected in any field.
const hashDelimiter = "\x1f"

// Enricher assembles the full AI-facing representation of a content
// record.
type Enricher struct {
	summarizer *Summarizer
	hooks      *Hooks
}

func NewEnricher(hooks *Hooks) *Enricher {
	return &Enricher{
		summarizer: NewSummarizer(),
		hooks:      hooks,
	}
}

// Run builds the enriched item. Missing optional data (media, terms,
// manual fields) degrades to empty values, never an error.
func (e *Enricher) Run(item database.ContentItem, st settings.Settings) EnrichedItem {
	summary := e.summarizer.Run(item, st)
	keywords, keywordStrategy := deriveKeywords(item, st)
	audience := splitList(item.Meta[database.MetaAudience])
	lang := normalizeLanguage(item.Language, st.Language)
	url := permalink(item, st)

	enriched := EnrichedItem{
		ID:              item.ID,
		URL:             url,
		CanonicalURL:    url,
		Title:           item.Title,
		Summary:         summary.Text,
		SummaryStrategy: summary.Strategy,
		SummarySource:   summary.Source,
		Keywords:        keywords,
		KeywordStrategy: keywordStrategy,
		Audience:        audience,
		Language:        lang,
		UpdatedAt:       item.ModifiedAt.UTC(),
		PublishedAt:     item.PublishedAt,
		Author:          Author{Name: item.AuthorName, URL: item.AuthorURL},
		Categories:      emptyIfNil(item.Categories),
		Tags:            emptyIfNil(item.Tags),
		Taxonomies:      taxonomyEntries(item),
		Images:          mediaItems(item),
		Alternates:      []Alternate{{Hreflang: lang, Href: url}},
		ContentHash:     contentHash(item, summary.Text),
		AIIndexable:     indexable(item),
	}

	enriched.Schema = e.schemaObject(item, st, enriched)

	return e.hooks.ApplyPayload(enriched)
}

// contentHash digests modification time, summary and normalized body.
// It changes iff one of those three changes.
func contentHash(item database.ContentItem, summary string) string {
	parts := []string{
		item.ModifiedAt.UTC().Format(time.RFC3339),
		summary,
		NormalizeBody(item.Body),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, hashDelimiter)))
	return hex.EncodeToString(sum[:])
}

func deriveKeywords(item database.ContentItem, st settings.Settings) ([]string, string) {
	if !st.ExposeKeywords {
		return nil, KeywordsDisabled
	}

	if manual := splitList(item.Meta[database.MetaKeywords]); len(manual) > 0 {
		return manual, KeywordsManual
	}

	// Category and tag names first, then remaining taxonomies in a
	// stable order. Dedup is case-sensitive, first-seen wins.
	seen := make(map[string]bool)
	var keywords []string
	add := func(terms []string) {
		for _, term := range terms {
			term = strings.TrimSpace(term)
			if term == "" || seen[term] || len(keywords) >= maxTaxonomyKeywords {
				continue
			}
			seen[term] = true
			keywords = append(keywords, term)
		}
	}

	add(item.Categories)
	add(item.Tags)
	for _, taxonomy := range sortedKeys(item.Taxonomies) {
		add(item.Taxonomies[taxonomy])
	}

	return keywords, KeywordsTaxonomy
}

func (e *Enricher) schemaObject(item database.ContentItem, st settings.Settings, enriched EnrichedItem) map[string]interface{} {
	schemaType := e.hooks.ResolveSchemaType(item, "Article")

	schema := map[string]interface{}{
		"@context":     "https://schema.org",
		"@type":        schemaType,
		"url":          enriched.URL,
		"headline":     enriched.Title,
		"description":  enriched.Summary,
		"keywords":     strings.Join(enriched.Keywords, ", "),
		"dateModified": enriched.UpdatedAt.Format(time.RFC3339),
		"inLanguage":   enriched.Language,
		"author": map[string]interface{}{
			"@type": "Person",
			"name":  enriched.Author.Name,
			"url":   enriched.Author.URL,
		},
		"publisher": map[string]interface{}{
			"@type": "Organization",
			"name":  st.SiteName,
			"url":   st.SiteURL,
		},
	}

	if enriched.PublishedAt != nil {
		schema["datePublished"] = enriched.PublishedAt.UTC().Format(time.RFC3339)
	}

	if len(enriched.Audience) > 0 {
		audience := make([]map[string]interface{}, 0, len(enriched.Audience))
		for _, a := range enriched.Audience {
			audience = append(audience, map[string]interface{}{
				"@type":        "Audience",
				"audienceType": a,
			})
		}
		schema["audience"] = audience
	}

	return schema
}

func taxonomyEntries(item database.ContentItem) []TaxonomyEntry {
	entries := make([]TaxonomyEntry, 0, len(item.Taxonomies))
	for _, taxonomy := range sortedKeys(item.Taxonomies) {
		entries = append(entries, TaxonomyEntry{
			Taxonomy: taxonomy,
			Terms:    emptyIfNil(item.Taxonomies[taxonomy]),
		})
	}
	return entries
}

// mediaItems lists the featured image first, then the remaining
// attachments with duplicates of the featured image dropped.
func mediaItems(item database.ContentItem) []MediaItem {
	images := make([]MediaItem, 0, len(item.Media))

	var featured *database.MediaRef
	for i := range item.Media {
		if item.Media[i].Featured {
			featured = &item.Media[i]
			break
		}
	}

	if featured != nil {
		images = append(images, toMediaItem(*featured))
	}
	for _, m := range item.Media {
		if featured != nil && (m.ID == featured.ID || m.URL == featured.URL) {
			continue
		}
		images = append(images, toMediaItem(m))
	}

	return images
}

func toMediaItem(m database.MediaRef) MediaItem {
	return MediaItem{ID: m.ID, URL: m.URL, Width: m.Width, Height: m.Height, Alt: m.Alt}
}

func permalink(item database.ContentItem, st settings.Settings) string {
	base := strings.TrimRight(st.SiteURL, "/")
	if item.Slug != "" {
		return fmt.Sprintf("%s/%s", base, item.Slug)
	}
	return fmt.Sprintf("%s/%s/%d", base, item.Type, item.ID)
}

func normalizeLanguage(itemLang, siteLang string) string {
	for _, candidate := range []string{itemLang, siteLang} {
		if candidate == "" {
			continue
		}
		if tag, err := language.Parse(candidate); err == nil {
			return tag.String()
		}
	}
	return "en"
}

func indexable(item database.ContentItem) bool {
	switch strings.ToLower(strings.TrimSpace(item.Meta[database.MetaIndexable])) {
	case "false", "0", "no":
		return false
	}
	return true
}

func splitList(raw string) []string {
	values := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
