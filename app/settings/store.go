package settings

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store loads the settings file and hands out immutable snapshots.
type Store struct {
	path     string
	current  Settings
	fileTime int64
	mu       sync.RWMutex
}

func NewStore(path string) *Store {
	return &Store{
		path:    path,
		current: Defaults(),
	}
}

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		DefaultSummaryLength: 120,
		ExposeKeywords:       true,
		EnableCache:          true,
		CacheTTL:             300,
		AllowPublicEndpoint:  true,
		SummaryStrategy:      StrategyFallback,
		ManifestFields:       []string{"summary", "updated_at", "published_at", "language", "content_hash"},
		RateLimit:            60,
		RateWindow:           60,
		Language:             "en",
	}
}

// Load reads the settings file. A missing file is not an error; the
// defaults stay in effect.
func (s *Store) Load() error {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		slog.Debug("Settings file not found, using defaults", "path", s.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat settings file: %w", err)
	}

	parsed, err := parseFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = parsed
	s.fileTime = info.ModTime().UnixNano()

	slog.Debug("Settings loaded", "path", s.path,
		"summary_strategy", string(parsed.SummaryStrategy),
		"expose_keywords", parsed.ExposeKeywords,
		"rate_limit", parsed.RateLimit)

	return nil
}

// Reload re-reads the file if its modification time moved. Returns
// true when the effective settings changed.
func (s *Store) Reload() (bool, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat settings file: %w", err)
	}

	s.mu.RLock()
	unchanged := info.ModTime().UnixNano() == s.fileTime
	before := s.current.Fingerprint()
	s.mu.RUnlock()

	if unchanged {
		return false, nil
	}

	parsed, err := parseFile(s.path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.current = parsed
	s.fileTime = info.ModTime().UnixNano()
	s.mu.Unlock()

	return parsed.Fingerprint() != before, nil
}

// Get returns the current snapshot by value.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Fingerprint digests the snapshot for change detection.
func (st Settings) Fingerprint() string {
	data, _ := json.Marshal(st)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func parseFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	parsed := Defaults()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	if err := validate(&parsed); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}

	return parsed, nil
}

func validate(st *Settings) error {
	switch st.SummaryStrategy {
	case StrategyManual, StrategyExcerpt, StrategyFirstParagraph, StrategyFallback:
	case "":
		st.SummaryStrategy = StrategyFallback
	default:
		// Unrecognized strategies degrade to fallback rather than
		// failing the whole file.
		st.SummaryStrategy = StrategyFallback
	}

	nonNegativeFields := map[string]int{
		"default_summary_length": st.DefaultSummaryLength,
		"cache_ttl":              st.CacheTTL,
		"rate_limit":             st.RateLimit,
		"rate_window":            st.RateWindow,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	valid := make(map[string]bool, len(OptionalManifestFields))
	for _, f := range OptionalManifestFields {
		valid[f] = true
	}
	for i, f := range st.ManifestFields {
		if !valid[f] {
			return fmt.Errorf("invalid manifest field at index %d: %s", i, f)
		}
	}

	return nil
}
