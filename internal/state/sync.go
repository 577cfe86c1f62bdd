package state

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devloop-cli/devloop/internal/checklist"
	"github.com/devloop-cli/devloop/internal/project"
)

// maxTaskNameLen bounds the name copied out of a checklist line.
const maxTaskNameLen = 100

// Synchronizer reconciles the on-disk checklist into the state record.
// It reads the checklist and rewrites derived state; it never writes
// the checklist document itself.
type Synchronizer struct {
	proj       project.Context
	store      *Store
	maxRetries int
	logger     *zap.Logger
}

// SyncOptions configures a Synchronizer. Zero values fall back to
// defaults.
type SyncOptions struct {
	MaxRetries int
	Logger     *zap.Logger
}

// NewSynchronizer creates a Synchronizer bound to a project.
func NewSynchronizer(proj project.Context, store *Store, opts SyncOptions) *Synchronizer {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Synchronizer{
		proj:       proj,
		store:      store,
		maxRetries: opts.MaxRetries,
		logger:     opts.Logger,
	}
}

// Result reports what one sync pass observed and did.
type Result struct {
	Changed       bool
	Summary       checklist.Summary
	Warnings      []checklist.Warning
	CurrentTaskID string
}

// Sync runs one reconciliation pass. When the checklist cannot be read
// the existing record is left untouched and the failure is returned.
// Re-running with an unchanged document changes nothing and skips the
// write entirely.
func (s *Synchronizer) Sync() (*Result, error) {
	content, err := os.ReadFile(s.proj.RoadmapPath())
	if err != nil {
		return nil, fmt.Errorf("checklist unreadable: %w", err)
	}
	doc := checklist.Parse(string(content))
	summary := doc.Summary()

	mem, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	prevTask := mem.CurrentTask
	prevAction := mem.NextAction
	prevProgress := mem.Progress

	mem.Progress.Completed = summary.Completed
	mem.Progress.Total = summary.Total
	mem.Progress.Pending = summary.Pending
	mem.Progress.InProgress = summary.InProgress
	mem.Progress.Blocked = summary.Blocked
	mem.Progress.Skipped = summary.Skipped
	mem.Progress.CurrentPhase = summary.CurrentPhase

	now := time.Now().UTC()

	if doc.Complete() {
		if mem.CurrentTask.ID != "" || mem.CurrentTask.Status != TaskCompleted {
			mem.CurrentTask = TaskRecord{
				Status:      TaskCompleted,
				MaxRetries:  s.maxRetries,
				LastUpdated: now,
			}
			mem.NextAction = NextAction{
				Action: ActionFinalize,
				Target: "completion report",
				Reason: "no pending or in-progress checklist items remain",
			}
			s.logDecision("SYNC: all checklist items terminal, current task cleared")
		}
	} else if item := doc.CurrentItem(); item != nil && item.ID != "" && item.ID != mem.CurrentTask.ID {
		status := TaskNotStarted
		if item.Status == checklist.StatusInProgress {
			status = TaskInProgress
		}
		rec := TaskRecord{
			ID:          item.ID,
			Name:        taskName(item),
			Status:      status,
			MaxRetries:  s.maxRetries,
			LastUpdated: now,
		}
		if status == TaskInProgress {
			rec.StartedAt = now
		}
		mem.CurrentTask = rec
		mem.NextAction = NextAction{
			Action: ActionImplement,
			Target: item.ID,
			Reason: "next actionable checklist item",
		}
		s.logDecision(fmt.Sprintf("SYNC: current task updated to %s", item.ID))
	}

	changed := mem.CurrentTask != prevTask ||
		mem.NextAction != prevAction ||
		!progressEqual(mem.Progress, prevProgress)

	if changed {
		mem.Progress.LastSynced = now
		if err := s.store.Save(mem); err != nil {
			return nil, err
		}
	} else {
		// Restore the untouched timestamp so no-op syncs stay no-ops.
		mem.Progress.LastSynced = prevProgress.LastSynced
	}

	for _, w := range doc.Warnings {
		s.logger.Warn("unrecognized checklist marker",
			zap.Int("line", w.Line),
			zap.String("text", w.Text))
	}

	return &Result{
		Changed:       changed,
		Summary:       summary,
		Warnings:      doc.Warnings,
		CurrentTaskID: mem.CurrentTask.ID,
	}, nil
}

// progressEqual ignores LastSynced: the sync timestamp alone must not
// count as a record change.
func progressEqual(a, b Progress) bool {
	a.LastSynced = time.Time{}
	b.LastSynced = time.Time{}
	return a == b
}

func taskName(item *checklist.Item) string {
	name := strings.TrimSpace(strings.TrimPrefix(item.Description, item.ID+":"))
	if len(name) > maxTaskNameLen {
		name = name[:maxTaskNameLen]
	}
	return name
}

func (s *Synchronizer) logDecision(message string) {
	if err := LogDecision(s.proj.DecisionsLogPath(), message); err != nil {
		s.logger.Warn("decision log append failed", zap.Error(err))
	}
}
