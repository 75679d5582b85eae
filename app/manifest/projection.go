package manifest

import (
	"github.com/aivex/ai-visibility/app/content"
)

// Project reduces an enriched item to the configured field subset. The
// id, url and title fields are always present regardless of
// configuration.
func Project(item content.EnrichedItem, fields []string) map[string]interface{} {
	projected := map[string]interface{}{
		"id":    item.ID,
		"url":   item.URL,
		"title": item.Title,
	}

	for _, field := range fields {
		switch field {
		case "summary":
			projected["summary"] = item.Summary
		case "summary_strategy":
			projected["summary_strategy"] = item.SummaryStrategy
		case "keywords":
			projected["keywords"] = item.Keywords
		case "audience":
			projected["audience"] = item.Audience
		case "language":
			projected["language"] = item.Language
		case "updated_at":
			projected["updated_at"] = item.UpdatedAt
		case "published_at":
			projected["published_at"] = item.PublishedAt
		case "author":
			projected["author"] = item.Author
		case "categories":
			projected["categories"] = item.Categories
		case "tags":
			projected["tags"] = item.Tags
		case "taxonomies":
			projected["taxonomies"] = item.Taxonomies
		case "images":
			projected["images"] = item.Images
		case "alternates":
			projected["alternates"] = item.Alternates
		case "schema":
			projected["schema"] = item.Schema
		case "content_hash":
			projected["content_hash"] = item.ContentHash
		case "ai_indexable":
			projected["ai_indexable"] = item.AIIndexable
		}
	}

	return projected
}
