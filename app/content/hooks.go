package content

import (
	"github.com/aivex/ai-visibility/app/database"
)

// Extension seams. Each hook takes and returns the same typed value,
// so registered transforms compose as a pipeline.

type SchemaTypeFunc func(item database.ContentItem, schemaType string) string

type PayloadTransform func(item EnrichedItem) EnrichedItem

type QueryTransform func(q database.ItemQuery) database.ItemQuery

// Hooks holds the registered transforms. Registration happens at
// wiring time, before any request is served; no locking needed after.
type Hooks struct {
	schemaType []SchemaTypeFunc
	payload    []PayloadTransform
	query      []QueryTransform
}

func NewHooks() *Hooks {
	return &Hooks{}
}

func (h *Hooks) OnSchemaType(f SchemaTypeFunc) {
	h.schemaType = append(h.schemaType, f)
}

func (h *Hooks) OnPayload(f PayloadTransform) {
	h.payload = append(h.payload, f)
}

func (h *Hooks) OnQuery(f QueryTransform) {
	h.query = append(h.query, f)
}

// ResolveSchemaType runs the schema-type pipeline over the default type.
func (h *Hooks) ResolveSchemaType(item database.ContentItem, schemaType string) string {
	if h == nil {
		return schemaType
	}
	for _, f := range h.schemaType {
		schemaType = f(item, schemaType)
	}
	return schemaType
}

// ApplyPayload runs the final-payload pipeline.
func (h *Hooks) ApplyPayload(item EnrichedItem) EnrichedItem {
	if h == nil {
		return item
	}
	for _, f := range h.payload {
		item = f(item)
	}
	return item
}

// ApplyQuery runs the query-arg pipeline.
func (h *Hooks) ApplyQuery(q database.ItemQuery) database.ItemQuery {
	if h == nil {
		return q
	}
	for _, f := range h.query {
		q = f(q)
	}
	return q
}
