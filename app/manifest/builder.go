package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aivex/ai-visibility/app/content"
	"github.com/aivex/ai-visibility/app/database"
	"github.com/aivex/ai-visibility/app/settings"
)

// FileName is the manifest artifact written into the public directory
// and served at the well-known path.
const FileName = "ai-manifest.json"

// The manifest snapshots at most this many items, most recently
// modified first.
const pageSize = 25

// Site describes the publishing site inside the manifest document.
type Site struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Language string `json:"language"`
}

// Document is the persisted manifest. Rebuilt wholesale on every
// trigger, never patched.
type Document struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Site        Site                     `json:"site"`
	Endpoint    string                   `json:"endpoint"`
	Items       []map[string]interface{} `json:"items"`
}

// Builder snapshots the published catalog into the manifest file. The
// manifest is a best-effort convenience artifact: storage failures are
// logged and swallowed, never surfaced to API callers.
type Builder struct {
	repo     database.ContentRepository
	enricher *content.Enricher
	store    *settings.Store
	dir      string
	endpoint string

	mu              sync.Mutex
	lastModified    time.Time
	lastFingerprint string
	built           bool
}

func NewBuilder(repo database.ContentRepository, enricher *content.Enricher,
	store *settings.Store, dir string, endpoint string) *Builder {
	return &Builder{
		repo:     repo,
		enricher: enricher,
		store:    store,
		dir:      dir,
		endpoint: endpoint,
	}
}

// Path returns the manifest file location.
func (b *Builder) Path() string {
	return filepath.Join(b.dir, FileName)
}

// EnsureExists builds the manifest only when the file is absent.
func (b *Builder) EnsureExists() {
	if _, err := os.Stat(b.Path()); err == nil {
		return
	}
	if err := b.Regenerate(); err != nil {
		slog.Warn("Initial manifest build failed", "error", err)
	}
}

// NeedsRebuild reports whether the catalog or the settings moved since
// the last successful build.
func (b *Builder) NeedsRebuild() (bool, error) {
	latest, err := b.repo.GetLatestModified()
	if err != nil {
		return false, fmt.Errorf("failed to check latest modification: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.built {
		return true, nil
	}
	if latest != nil && latest.After(b.lastModified) {
		return true, nil
	}
	return b.store.Get().Fingerprint() != b.lastFingerprint, nil
}

// Regenerate rebuilds the manifest wholesale and replaces the file
// atomically, so a concurrent reader never observes a partial
// document. Unwritable storage aborts silently.
func (b *Builder) Regenerate() error {
	st := b.store.Get()

	doc, latest, err := b.build(st)
	if err != nil {
		return err
	}

	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := b.write(data); err != nil {
		// Best-effort artifact: the live API stays the source of truth.
		slog.Warn("Manifest write skipped", "path", b.Path(), "error", err)
		return nil
	}

	b.mu.Lock()
	b.lastModified = latest
	b.lastFingerprint = st.Fingerprint()
	b.built = true
	b.mu.Unlock()

	slog.Debug("Manifest regenerated", "path", b.Path(), "items", len(doc.Items))

	return nil
}

func (b *Builder) build(st settings.Settings) (*Document, time.Time, error) {
	items, _, err := b.repo.ListItems(database.ItemQuery{
		Status:  database.StatusPublished,
		Page:    1,
		PerPage: pageSize,
	})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to list items for manifest: %w", err)
	}

	doc := &Document{
		GeneratedAt: time.Now().UTC(),
		Site: Site{
			Name:     st.SiteName,
			URL:      st.SiteURL,
			Language: st.Language,
		},
		Endpoint: b.endpoint,
		Items:    make([]map[string]interface{}, 0, len(items)),
	}

	var latest time.Time
	for _, item := range items {
		enriched := b.enricher.Run(item, st)
		doc.Items = append(doc.Items, Project(enriched, st.ManifestFields))
		if enriched.UpdatedAt.After(latest) {
			latest = enriched.UpdatedAt
		}
	}

	return doc, latest, nil
}

func (b *Builder) write(data []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}

	tmp := b.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, b.Path()); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}

// encode pretty-prints with slash characters left unescaped.
func encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
