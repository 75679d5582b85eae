package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeSettings(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.yml"))

	if err := store.Load(); err != nil {
		t.Fatalf("A missing file must not be an error: %v", err)
	}

	st := store.Get()
	if st.DefaultSummaryLength != 120 {
		t.Errorf("Unexpected default summary length: %d", st.DefaultSummaryLength)
	}
	if st.SummaryStrategy != StrategyFallback {
		t.Errorf("Unexpected default strategy: %q", st.SummaryStrategy)
	}
	if !st.AllowPublicEndpoint {
		t.Error("The public endpoint defaults to enabled")
	}
}

func TestLoad_ParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	writeSettings(t, path, `
summary_strategy: excerpt
default_summary_length: 50
expose_keywords: false
rate_limit: 10
user_agent_whitelist:
  - gptbot
  - claudebot
manifest_fields:
  - summary
  - keywords
site_name: Example
`)

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	st := store.Get()
	if st.SummaryStrategy != StrategyExcerpt {
		t.Errorf("Unexpected strategy: %q", st.SummaryStrategy)
	}
	if st.DefaultSummaryLength != 50 {
		t.Errorf("Unexpected summary length: %d", st.DefaultSummaryLength)
	}
	if st.ExposeKeywords {
		t.Error("expose_keywords: false must stick")
	}
	if st.RateLimit != 10 {
		t.Errorf("Unexpected rate limit: %d", st.RateLimit)
	}
	if !reflect.DeepEqual(st.UserAgentWhitelist, []string{"gptbot", "claudebot"}) {
		t.Errorf("Unexpected whitelist: %v", st.UserAgentWhitelist)
	}
	if !reflect.DeepEqual(st.ManifestFields, []string{"summary", "keywords"}) {
		t.Errorf("Unexpected manifest fields: %v", st.ManifestFields)
	}
	// Unset keys keep their defaults.
	if st.CacheTTL != 300 {
		t.Errorf("Unexpected cache TTL: %d", st.CacheTTL)
	}
}

func TestLoad_UnknownStrategyDegradesToFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	writeSettings(t, path, "summary_strategy: telepathy\n")

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("An unknown strategy must not fail the file: %v", err)
	}
	if st := store.Get(); st.SummaryStrategy != StrategyFallback {
		t.Errorf("Expected fallback, got %q", st.SummaryStrategy)
	}
}

func TestLoad_RejectsNegativeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	writeSettings(t, path, "rate_limit: -5\n")

	store := NewStore(path)
	if err := store.Load(); err == nil {
		t.Error("Negative rate_limit must fail validation")
	}
}

func TestLoad_RejectsUnknownManifestField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	writeSettings(t, path, "manifest_fields:\n  - body_html\n")

	store := NewStore(path)
	if err := store.Load(); err == nil {
		t.Error("An unknown manifest field must fail validation")
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	writeSettings(t, path, "site_name: Before\n")

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Unchanged file, unchanged settings.
	changed, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if changed {
		t.Error("An untouched file must not report a change")
	}

	writeSettings(t, path, "site_name: After\n")
	// Force a distinct mtime; some filesystems are coarse.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	changed, err = store.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !changed {
		t.Error("A rewritten file must report a change")
	}
	if st := store.Get(); st.SiteName != "After" {
		t.Errorf("Expected the new value, got %q", st.SiteName)
	}
}

func TestReload_TouchedButIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	writeSettings(t, path, "site_name: Same\n")

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	changed, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if changed {
		t.Error("Identical content must not report a change, mtime moved or not")
	}
}

func TestFingerprint(t *testing.T) {
	a := Defaults()
	b := Defaults()

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Equal settings must share a fingerprint")
	}

	b.RateLimit = 999
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("Different settings must differ in fingerprint")
	}
}
