package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aivex/ai-visibility/app/cache"
	"github.com/aivex/ai-visibility/app/cfg"
	"github.com/aivex/ai-visibility/app/content"
	"github.com/aivex/ai-visibility/app/database"
	"github.com/aivex/ai-visibility/app/manifest"
	"github.com/aivex/ai-visibility/app/ratelimit"
	"github.com/aivex/ai-visibility/app/settings"
	"github.com/aivex/ai-visibility/app/tasks"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

type Handler struct {
	repo      database.ContentRepository
	cache     cache.Cache
	enricher  *content.Enricher
	hooks     *content.Hooks
	limiter   *ratelimit.Limiter
	store     *settings.Store
	builder   *manifest.Builder
	scheduler tasks.TaskSchedulerInterface
}

func NewHandler(repo database.ContentRepository, c cache.Cache, enricher *content.Enricher,
	hooks *content.Hooks, limiter *ratelimit.Limiter, store *settings.Store,
	builder *manifest.Builder, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		repo:      repo,
		cache:     c,
		enricher:  enricher,
		hooks:     hooks,
		limiter:   limiter,
		store:     store,
		builder:   builder,
		scheduler: scheduler,
	}
}

// gate runs the rate limiter and the capability check, in that order.
// Rate limiting counts every gated request, including those a later
// permission check rejects.
func (h *Handler) gate(c *gin.Context, st settings.Settings) bool {
	result := h.limiter.Check(c.Request.UserAgent(), st)
	setRateHeaders(c, result)

	switch result.Outcome {
	case ratelimit.Forbidden:
		h.respondError(c, errForbidden("User agent is not allowed"))
		return false
	case ratelimit.Limited:
		h.respondError(c, errRateLimited("Rate limit exceeded, slow down"))
		return false
	}

	if !st.AllowPublicEndpoint && !hasReadCapability(c) {
		h.respondError(c, errForbidden("Read access required"))
		return false
	}

	return true
}

func (h *Handler) GetContentItem(c *gin.Context) {
	st := h.store.Get()
	if !h.gate(c, st) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		h.respondError(c, errNotFound("Content item not found"))
		return
	}

	enriched, apiErr := h.resolveItem(id, st)
	if apiErr != nil {
		h.respondError(c, *apiErr)
		return
	}

	etag := ComputeETag(enriched)
	setCacheHeaders(c, st, enriched.UpdatedAt, etag)

	if IsNotModified(RequestValidators(c), enriched.UpdatedAt, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	h.respondJSON(c, http.StatusOK, enriched)
}

func (h *Handler) GetContentList(c *gin.Context) {
	st := h.store.Get()
	if !h.gate(c, st) {
		return
	}

	page := parseClampedInt(c.Query("page"), 1, 1, 0)
	perPage := parseClampedInt(c.Query("per_page"), defaultPerPage, 1, maxPerPage)

	var changedSince *time.Time
	if raw := c.Query("changed_since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.respondError(c, errInvalidInput("changed_since must be an ISO 8601 timestamp"))
			return
		}
		changedSince = &ts
	}

	q := database.ItemQuery{
		Type: c.Query("type"),
		// Only published content is visible on the public surface.
		Status:       database.StatusPublished,
		Page:         page,
		PerPage:      perPage,
		ChangedSince: changedSince,
	}
	q = h.hooks.ApplyQuery(q)

	items, total, err := h.repo.ListItems(q)
	if err != nil {
		slog.Error("Database error", "operation", "list_items", "error", err)
		h.respondError(c, errInternal())
		return
	}

	resp := CollectionResponse{
		IDs:        make([]int64, 0, len(items)),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
		Items:      make([]content.EnrichedItem, 0, len(items)),
	}

	var latest time.Time
	for _, item := range items {
		enriched := h.enricher.Run(item, st)
		resp.IDs = append(resp.IDs, enriched.ID)
		resp.Items = append(resp.Items, enriched)
		if enriched.UpdatedAt.After(latest) {
			latest = enriched.UpdatedAt
		}
	}

	if len(items) == 0 {
		if known, err := h.repo.GetLatestModified(); err == nil && known != nil {
			latest = known.UTC()
		}
	}

	etag := ComputeETag(resp)
	setCacheHeaders(c, st, latest, etag)

	if len(items) == 0 && !latest.IsZero() && IsNotModified(RequestValidators(c), latest, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	h.respondJSON(c, http.StatusOK, resp)
}

func (h *Handler) BatchContent(c *gin.Context) {
	st := h.store.Get()
	if !h.gate(c, st) {
		return
	}

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errInvalidInput("Request body must be a JSON object with an ids array"))
		return
	}

	ids := dedupeIDs(req.IDs)
	if len(ids) == 0 {
		h.respondError(c, errInvalidInput("ids is required and must be non-empty"))
		return
	}

	items, err := h.repo.GetItemsByIDs(ids)
	if err != nil {
		slog.Error("Database error", "operation", "get_items_by_ids", "error", err)
		h.respondError(c, errInternal())
		return
	}

	resp := BatchResponse{
		IDs:   make([]int64, 0, len(items)),
		Items: make([]content.EnrichedItem, 0, len(items)),
	}

	var latest time.Time
	for _, item := range items {
		// Ids that resolve to non-published items are dropped, not errors.
		if !item.Published() {
			continue
		}
		enriched := h.enricher.Run(item, st)
		resp.IDs = append(resp.IDs, enriched.ID)
		resp.Items = append(resp.Items, enriched)
		if enriched.UpdatedAt.After(latest) {
			latest = enriched.UpdatedAt
		}
	}

	if len(resp.Items) == 0 {
		h.respondError(c, errNotFound("No content items found for the given ids"))
		return
	}

	etag := ComputeETag(resp)
	setCacheHeaders(c, st, latest, etag)

	c.JSON(http.StatusOK, resp)
}

// OptionsContent answers capability probes without touching the rate
// limiter, permissions or the repository.
func (h *Handler) OptionsContent(c *gin.Context) {
	c.Header("Allow", "GET, HEAD, OPTIONS")
	c.Status(http.StatusNoContent)
}

func (h *Handler) OptionsBatch(c *gin.Context) {
	c.Header("Allow", "POST, OPTIONS")
	c.Status(http.StatusNoContent)
}

// GetManifest streams the manifest file back at the well-known path.
func (h *Handler) GetManifest(c *gin.Context) {
	data, err := os.ReadFile(h.builder.Path())
	if err != nil {
		c.JSON(http.StatusNotFound, errNotFound("Manifest not generated yet"))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if count, err := h.repo.GetItemCount(); err == nil {
		health["published_items"] = count
	}

	_, err := os.Stat(h.builder.Path())
	health["manifest_present"] = err == nil

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIRegenerateManifest(c *gin.Context) {
	task := tasks.NewRegenerateManifestTask(h.builder, true)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing manifest task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue manifest task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Manifest regeneration enqueued",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

func (h *Handler) APIGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Get())
}

func (h *Handler) APIReloadSettings(c *gin.Context) {
	changed, err := h.store.Reload()
	if err != nil {
		slog.Error("Error reloading settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload settings",
			"details": err.Error(),
		})
		return
	}

	if changed {
		if err := h.scheduler.EnqueueTask(tasks.NewRegenerateManifestTask(h.builder, true)); err != nil {
			slog.Warn("Failed to enqueue manifest task after settings reload", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"changed": changed,
	})
}

// resolveItem loads one published item through the per-id enriched
// cache when caching is enabled.
func (h *Handler) resolveItem(id int64, st settings.Settings) (content.EnrichedItem, *APIError) {
	key := itemCacheKey(id)

	if st.EnableCache {
		if raw, ok, err := h.cache.Get(key); err == nil && ok {
			var cached content.EnrichedItem
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			// Stale or corrupt entry; fall through to the repository.
			h.cache.Delete(key)
		}
	}

	item, err := h.repo.GetItem(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_item", "id", id, "error", err)
		e := errInternal()
		return content.EnrichedItem{}, &e
	}
	if item == nil || !item.Published() {
		e := errNotFound("Content item not found")
		return content.EnrichedItem{}, &e
	}

	enriched := h.enricher.Run(*item, st)

	if st.EnableCache && st.CacheTTL > 0 {
		if err := h.cache.Set(key, enriched, time.Duration(st.CacheTTL)*time.Second); err != nil {
			slog.Warn("Failed to cache enriched item", "id", id, "error", err)
		}
	}

	return enriched, nil
}

// respondJSON suppresses the body for HEAD requests, leaving the
// headers identical to the equivalent GET.
func (h *Handler) respondJSON(c *gin.Context, status int, payload interface{}) {
	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

func (h *Handler) respondError(c *gin.Context, e APIError) {
	if c.Request.Method == http.MethodHead {
		c.AbortWithStatus(e.Status)
		return
	}
	c.AbortWithStatusJSON(e.Status, e)
}

func errInternal() APIError {
	return APIError{Code: "internal_error", Message: "Internal server error", Status: http.StatusInternalServerError}
}

// hasReadCapability is the binary read check: holding the configured
// API access key stands in for the collaborator's capability system.
func hasReadCapability(c *gin.Context) bool {
	accessKey := cfg.Get().APIAccessKey
	if accessKey == "" {
		return false
	}

	providedKey := c.GetHeader("X-API-Key")
	if providedKey == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			providedKey = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	return providedKey == accessKey
}

func itemCacheKey(id int64) string {
	return fmt.Sprintf("content:item:%d", id)
}

func parseClampedInt(raw string, fallback, min, max int) int {
	value := fallback
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			value = parsed
		}
	}
	if value < min {
		value = min
	}
	if max > 0 && value > max {
		value = max
	}
	return value
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	deduped := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id < 1 || seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	return deduped
}
