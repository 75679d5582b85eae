package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aivex/ai-visibility/app/ratelimit"
	"github.com/aivex/ai-visibility/app/settings"
)

func testContext(target string, headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c, w
}

func TestComputeETag(t *testing.T) {
	if got := ComputeETag(nil); got != "" {
		t.Errorf("Nil payload must yield an empty tag, got %q", got)
	}

	payload := map[string]string{"title": "hello"}
	first := ComputeETag(payload)
	second := ComputeETag(payload)

	if first == "" {
		t.Fatal("Expected a non-empty tag")
	}
	if first != second {
		t.Error("Equal payloads must yield equal tags")
	}
	if !strings.HasPrefix(first, "\"") || !strings.HasSuffix(first, "\"") {
		t.Errorf("Tag must be quoted, got %q", first)
	}

	if other := ComputeETag(map[string]string{"title": "changed"}); other == first {
		t.Error("Different payloads must yield different tags")
	}
}

func TestRequestValidators_QueryWinsOverHeader(t *testing.T) {
	c, _ := testContext("/content?changed_since=2024-01-15T00:00:00Z", map[string]string{
		"If-Modified-Since": "Mon, 01 Jan 2024 00:00:00 GMT",
	})

	v := RequestValidators(c)

	if v.ChangedSince == nil {
		t.Fatal("Expected a changed_since instant")
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !v.ChangedSince.Equal(want) {
		t.Errorf("Query param must win over the header, got %v", v.ChangedSince)
	}
}

func TestRequestValidators_HeaderFallback(t *testing.T) {
	c, _ := testContext("/content", map[string]string{
		"If-Modified-Since": "Mon, 01 Jan 2024 00:00:00 GMT",
	})

	v := RequestValidators(c)

	if v.ChangedSince == nil || v.ChangedSince.Year() != 2024 {
		t.Errorf("Expected the header instant, got %v", v.ChangedSince)
	}
}

func TestRequestValidators_TrimsIfNoneMatch(t *testing.T) {
	c, _ := testContext("/content", map[string]string{
		"If-None-Match": "  \"abc123\"  ",
	})

	v := RequestValidators(c)

	if v.IfNoneMatch != "\"abc123\"" {
		t.Errorf("Expected a trimmed tag, got %q", v.IfNoneMatch)
	}
}

func TestIsNotModified(t *testing.T) {
	modified := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := modified.Add(-time.Hour)
	after := modified.Add(time.Hour)

	if !IsNotModified(Validators{IfNoneMatch: "\"tag\""}, modified, "\"tag\"") {
		t.Error("A matching tag must short-circuit")
	}
	if IsNotModified(Validators{IfNoneMatch: "\"other\""}, modified, "\"tag\"") {
		t.Error("A mismatched tag must not short-circuit")
	}
	if IsNotModified(Validators{ChangedSince: &before}, modified, "") {
		t.Error("Content modified after the instant must be served")
	}
	if !IsNotModified(Validators{ChangedSince: &after}, modified, "") {
		t.Error("Content unchanged since the instant must short-circuit")
	}
	if !IsNotModified(Validators{ChangedSince: &modified}, modified, "") {
		t.Error("An exactly equal instant counts as unchanged")
	}
	if IsNotModified(Validators{}, modified, "\"tag\"") {
		t.Error("No validators means no short-circuit")
	}
}

func TestSetCacheHeaders_FloorsMaxAge(t *testing.T) {
	c, w := testContext("/content", nil)
	st := settings.Defaults()
	st.CacheTTL = 10

	setCacheHeaders(c, st, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "\"tag\"")

	if got := w.Header().Get("Cache-Control"); got != "public, max-age=30" {
		t.Errorf("Expected the max-age floor, got %q", got)
	}
	if got := w.Header().Get("ETag"); got != "\"tag\"" {
		t.Errorf("Unexpected ETag header: %q", got)
	}
	if got := w.Header().Get("Last-Modified"); got != "Fri, 01 Mar 2024 00:00:00 GMT" {
		t.Errorf("Unexpected Last-Modified header: %q", got)
	}
}

func TestSetCacheHeaders_UsesConfiguredTTL(t *testing.T) {
	c, w := testContext("/content", nil)
	st := settings.Defaults()
	st.CacheTTL = 600

	setCacheHeaders(c, st, time.Time{}, "")

	if got := w.Header().Get("Cache-Control"); got != "public, max-age=600" {
		t.Errorf("Expected the configured TTL, got %q", got)
	}
	if w.Header().Get("Last-Modified") != "" {
		t.Error("A zero modification time must not emit Last-Modified")
	}
}

func TestSetRateHeaders(t *testing.T) {
	c, w := testContext("/content", nil)
	setRateHeaders(c, ratelimit.Result{
		Outcome:   ratelimit.Allowed,
		Limit:     60,
		Remaining: 42,
		ResetAt:   time.Unix(1700000000, 0),
	})

	if got := w.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("Unexpected limit header: %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "42" {
		t.Errorf("Unexpected remaining header: %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Reset"); got != "1700000000" {
		t.Errorf("Unexpected reset header: %q", got)
	}
	if w.Header().Get("Retry-After") != "" {
		t.Error("Allowed responses must not carry Retry-After")
	}

	c2, w2 := testContext("/content", nil)
	setRateHeaders(c2, ratelimit.Result{
		Outcome:    ratelimit.Limited,
		Limit:      60,
		RetryAfter: 60 * time.Second,
	})

	if got := w2.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Limited responses must carry Retry-After, got %q", got)
	}

	c3, w3 := testContext("/content", nil)
	setRateHeaders(c3, ratelimit.Result{Outcome: ratelimit.Exempt})

	if w3.Header().Get("X-RateLimit-Limit") != "" {
		t.Error("Exempt responses must not carry rate headers")
	}
}
