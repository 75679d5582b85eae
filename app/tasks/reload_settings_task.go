package tasks

import (
	"context"
	"log/slog"

	"github.com/aivex/ai-visibility/app/settings"
)

// ReloadSettingsTask re-reads the settings file when its modification
// time moved. A changed snapshot is picked up by the next manifest
// staleness check through the settings fingerprint.
type ReloadSettingsTask struct {
	Task
	store *settings.Store
}

func NewReloadSettingsTask(store *settings.Store) *ReloadSettingsTask {
	return &ReloadSettingsTask{
		Task:  NewTask(TaskTypeReloadSettings),
		store: store,
	}
}

func (t *ReloadSettingsTask) Execute(ctx context.Context) error {
	changed, err := t.store.Reload()
	if err != nil {
		return err
	}

	if changed {
		slog.Info("Settings reloaded", "task_id", t.ID)
	}

	return nil
}
