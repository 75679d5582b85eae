package tasks

import (
	"context"
	"log/slog"

	"github.com/aivex/ai-visibility/app/manifest"
)

// RegenerateManifestTask rebuilds the manifest snapshot. A scheduled
// run first checks whether the catalog or settings moved; an on-demand
// run (admin endpoint) forces the rebuild.
type RegenerateManifestTask struct {
	Task
	builder *manifest.Builder
	force   bool
}

func NewRegenerateManifestTask(builder *manifest.Builder, force bool) *RegenerateManifestTask {
	return &RegenerateManifestTask{
		Task:    NewTask(TaskTypeRegenerateManifest),
		builder: builder,
		force:   force,
	}
}

func (t *RegenerateManifestTask) Execute(ctx context.Context) error {
	if !t.force {
		stale, err := t.builder.NeedsRebuild()
		if err != nil {
			return err
		}
		if !stale {
			slog.Debug("Manifest up to date, skipping rebuild", "task_id", t.ID)
			return nil
		}
	}

	if err := t.builder.Regenerate(); err != nil {
		return err
	}

	slog.Debug("Manifest rebuild finished", "task_id", t.ID, "duration", t.GetDuration().String())

	return nil
}
