package hooks

import (
	"fmt"

	"github.com/devloop-cli/devloop/internal/checklist"
	"github.com/devloop-cli/devloop/internal/state"
)

// ProgressSyncOutput is the progress_sync response payload.
type ProgressSyncOutput struct {
	Status      string             `json:"status"`
	Changed     bool               `json:"changed"`
	CurrentTask string             `json:"current_task,omitempty"`
	Summary     *checklist.Summary `json:"summary,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	Reason      string             `json:"reason,omitempty"`
}

// progressSync reconciles the state record with the checklist. A sync
// that cannot run, because the checklist or the record is unreadable,
// is reported as skipped rather than failed: the next edit retriggers
// the hook anyway.
func (r *Runner) progressSync() ProgressSyncOutput {
	store := state.NewStore(r.proj.MemoryPath())
	sync := state.NewSynchronizer(r.proj, store, state.SyncOptions{
		MaxRetries: r.cfg.Sync.MaxRetries,
		Logger:     r.logger,
	})

	res, err := sync.Sync()
	if err != nil {
		return ProgressSyncOutput{
			Status: "skipped",
			Reason: err.Error(),
		}
	}
	var warnings []string
	for _, w := range res.Warnings {
		warnings = append(warnings, fmt.Sprintf("line %d: unrecognized marker: %s", w.Line, w.Text))
	}
	return ProgressSyncOutput{
		Status:      "ok",
		Changed:     res.Changed,
		CurrentTask: res.CurrentTaskID,
		Summary:     &res.Summary,
		Warnings:    warnings,
	}
}
