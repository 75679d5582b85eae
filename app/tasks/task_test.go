package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aivex/ai-visibility/app/content"
	"github.com/aivex/ai-visibility/app/database"
	"github.com/aivex/ai-visibility/app/manifest"
	"github.com/aivex/ai-visibility/app/settings"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeRegenerateManifest)

	if task.ID == "" {
		t.Error("Expected a generated task id")
	}
	if task.Type != TaskTypeRegenerateManifest {
		t.Errorf("Unexpected type: %q", task.Type)
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Unexpected max retries: %d", task.MaxRetries)
	}
}

func TestTask_RetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeReloadSettings)

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be available", i+1)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Retries must stop at the maximum")
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Unexpected retry count: %d", task.GetRetryCount())
	}
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeReloadSettings)

	if task.GetDuration() != 0 {
		t.Error("An unstarted task has no duration")
	}

	task.Start()
	if task.GetDuration() < 0 {
		t.Error("A started task must report elapsed time")
	}
}

type emptyRepo struct{}

func (emptyRepo) GetItem(id int64) (*database.ContentItem, error) { return nil, nil }
func (emptyRepo) GetItemsByIDs(ids []int64) ([]database.ContentItem, error) {
	return nil, nil
}
func (emptyRepo) ListItems(q database.ItemQuery) ([]database.ContentItem, int, error) {
	return nil, 0, nil
}
func (emptyRepo) GetLatestModified() (*time.Time, error) { return nil, nil }
func (emptyRepo) GetItemCount() (int, error)             { return 0, nil }
func (emptyRepo) GetPublishedTypes() ([]string, error)   { return nil, nil }

func newTaskBuilder(t *testing.T) *manifest.Builder {
	t.Helper()
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.yml"))
	return manifest.NewBuilder(emptyRepo{}, content.NewEnricher(content.NewHooks()), store,
		t.TempDir(), "https://example.com/ai-visibility/v1/content")
}

func TestRegenerateManifestTask_SkipsWhenFresh(t *testing.T) {
	builder := newTaskBuilder(t)
	if err := builder.Regenerate(); err != nil {
		t.Fatalf("Initial build failed: %v", err)
	}
	info, err := os.Stat(builder.Path())
	if err != nil {
		t.Fatalf("Expected a manifest file: %v", err)
	}

	task := NewRegenerateManifestTask(builder, false)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	after, _ := os.Stat(builder.Path())
	if !after.ModTime().Equal(info.ModTime()) {
		t.Error("A fresh manifest must not be rewritten by a scheduled run")
	}
}

func TestRegenerateManifestTask_ForceRebuilds(t *testing.T) {
	builder := newTaskBuilder(t)

	task := NewRegenerateManifestTask(builder, true)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if _, err := os.Stat(builder.Path()); err != nil {
		t.Errorf("Expected a manifest file after a forced run: %v", err)
	}
}

func TestReloadSettingsTask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	store := settings.NewStore(path)

	task := NewReloadSettingsTask(store)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute with a missing file failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("site_name: Reloaded\n"), 0o644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if st := store.Get(); st.SiteName != "Reloaded" {
		t.Errorf("Expected reloaded settings, got %q", st.SiteName)
	}
}
