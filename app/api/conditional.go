package api

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aivex/ai-visibility/app/ratelimit"
	"github.com/aivex/ai-visibility/app/settings"
)

// Cache-Control max-age never drops below this, whatever cache_ttl says.
const minCacheMaxAge = 30

// ComputeETag returns the quoted hash of the payload's canonical JSON
// serialization, or "" for an absent payload.
func ComputeETag(payload interface{}) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("\"%x\"", sum[:16])
}

// Validators are the cache validators carried by a request.
type Validators struct {
	IfNoneMatch  string
	ChangedSince *time.Time
}

// RequestValidators extracts If-None-Match and If-Modified-Since /
// changed_since from the request. A changed_since query param wins
// over the header.
func RequestValidators(c *gin.Context) Validators {
	v := Validators{
		IfNoneMatch: strings.TrimSpace(c.GetHeader("If-None-Match")),
	}

	if raw := c.Query("changed_since"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			v.ChangedSince = &ts
		}
	} else if raw := c.GetHeader("If-Modified-Since"); raw != "" {
		if ts, err := http.ParseTime(raw); err == nil {
			v.ChangedSince = &ts
		}
	}

	return v
}

// IsNotModified decides whether the request can short-circuit to 304:
// either the presented ETag matches exactly, or nothing changed after
// the client's changed_since instant.
func IsNotModified(v Validators, latestModified time.Time, etag string) bool {
	if etag != "" && v.IfNoneMatch != "" && v.IfNoneMatch == etag {
		return true
	}
	if v.ChangedSince != nil && !latestModified.After(*v.ChangedSince) {
		return true
	}
	return false
}

// setCacheHeaders writes the caching headers carried by every served
// response.
func setCacheHeaders(c *gin.Context, st settings.Settings, latestModified time.Time, etag string) {
	maxAge := st.CacheTTL
	if maxAge < minCacheMaxAge {
		maxAge = minCacheMaxAge
	}

	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	if !latestModified.IsZero() {
		c.Header("Last-Modified", latestModified.UTC().Format(http.TimeFormat))
	}
	if etag != "" {
		c.Header("ETag", etag)
	}
}

// setRateHeaders writes the limiter's counters. Exempt requests carry
// no rate headers at all.
func setRateHeaders(c *gin.Context, r ratelimit.Result) {
	switch r.Outcome {
	case ratelimit.Allowed, ratelimit.Limited:
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", r.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", r.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", r.ResetAt.Unix()))
	}
	if r.Outcome == ratelimit.Limited {
		c.Header("Retry-After", fmt.Sprintf("%d", int(r.RetryAfter.Seconds())))
	}
}
