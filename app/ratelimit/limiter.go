package ratelimit

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aivex/ai-visibility/app/cache"
	"github.com/aivex/ai-visibility/app/settings"
)

// Outcome tags a rate-limit decision. Checked once at the call site.
type Outcome int

const (
	// Allowed within the current window; counter headers apply.
	Allowed Outcome = iota
	// Exempt from counting (no client identity, or limiting disabled).
	Exempt
	// Forbidden by the user-agent allow-list.
	Forbidden
	// Limited: the window's counter is exhausted.
	Limited
)

type Result struct {
	Outcome    Outcome
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter is a fixed-window request counter backed by the shared
// cache. Windows roll per key: the TTL binds on a key's first hit and
// later hits never extend it.
type Limiter struct {
	cache cache.Cache
}

func NewLimiter(c cache.Cache) *Limiter {
	return &Limiter{cache: c}
}

// Check counts one request for the given client identity. The
// allow-list gate runs before the counter is touched, so rejected
// identities never consume window capacity.
func (l *Limiter) Check(identity string, st settings.Settings) Result {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Result{Outcome: Exempt}
	}

	if len(st.UserAgentWhitelist) > 0 && !matchesAny(identity, st.UserAgentWhitelist) {
		return Result{Outcome: Forbidden}
	}

	if st.RateLimit <= 0 {
		return Result{Outcome: Exempt}
	}

	window := time.Duration(st.RateWindow) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	count, resetAt, err := l.cache.Increment(identityKey(identity), window)
	if err != nil {
		// Advisory throttling only; a broken cache never blocks reads.
		slog.Warn("Rate limit counter unavailable", "error", err)
		return Result{Outcome: Exempt}
	}

	if count > int64(st.RateLimit) {
		return Result{
			Outcome:    Limited,
			Limit:      st.RateLimit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: window,
		}
	}

	remaining := st.RateLimit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Outcome:   Allowed,
		Limit:     st.RateLimit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

func identityKey(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return fmt.Sprintf("ratelimit:%x", sum[:8])
}

func matchesAny(identity string, patterns []string) bool {
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			slog.Warn("Invalid user agent whitelist pattern", "pattern", pattern, "error", err)
			continue
		}
		if re.MatchString(identity) {
			return true
		}
	}
	return false
}
