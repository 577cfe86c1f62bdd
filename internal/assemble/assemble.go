// Package assemble composes the context document injected into the
// agent's conversation at session start. It pulls together the state
// record, the checklist, the current task spec, the API contract and
// the recent error history, bounded by the configured budgets.
//
// Assembly never fails: a source file that is missing or unreadable
// drops its section and the rest of the document still renders.
package assemble

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/devloop-cli/devloop/internal/checklist"
	"github.com/devloop-cli/devloop/internal/config"
	"github.com/devloop-cli/devloop/internal/project"
	"github.com/devloop-cli/devloop/internal/state"
)

// Mode selects which sections the assembled document carries.
type Mode int

const (
	// ModeFull is the session-start document: everything.
	ModeFull Mode = iota
	// ModeReview narrows the document for a pre-commit review pass and
	// adds the staged file list.
	ModeReview
	// ModeTask focuses on the current task only, without the full
	// checklist.
	ModeTask
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeReview:
		return "review"
	case ModeTask:
		return "task"
	default:
		return "unknown"
	}
}

// Options configures an Assembler.
type Options struct {
	Project project.Context
	Budget  config.ContextBudget
	Logger  *zap.Logger
}

// Assembler builds context documents for one project.
type Assembler struct {
	proj   project.Context
	budget config.ContextBudget
	logger *zap.Logger
}

// New returns an Assembler. A nil Logger disables diagnostics.
func New(opts Options) *Assembler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		proj:   opts.Project,
		budget: opts.Budget,
		logger: logger,
	}
}

// Build composes the document for the given mode. StagedFiles is only
// consulted in review mode and may be nil otherwise.
func (a *Assembler) Build(mode Mode, staged []project.StagedFile) string {
	sections := []string{a.preamble(mode)}

	// The state record is deserialized once here and shared with every
	// section that needs it.
	mem, err := state.NewStore(a.proj.MemoryPath()).Load()
	if err != nil {
		a.logger.Warn("state record unreadable, section dropped",
			zap.String("path", a.proj.MemoryPath()),
			zap.Error(err))
		mem = nil
	}

	if mem != nil {
		if s := a.stateSection(mem); s != "" {
			sections = append(sections, s)
		}
	}
	if mode == ModeFull {
		if s := a.checklistSection(); s != "" {
			sections = append(sections, s)
		}
	}
	if mem != nil {
		if s := a.taskSpecSection(mem.CurrentTask.ID); s != "" {
			sections = append(sections, s)
		}
	}
	if s := a.contractSection(); s != "" {
		sections = append(sections, s)
	}
	if s := a.errorsSection(); s != "" {
		sections = append(sections, s)
	}
	if mode == ModeReview {
		if s := a.stagedSection(staged); s != "" {
			sections = append(sections, s)
		}
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// preamble reminds the agent that the files on disk, not its
// conversational memory, are the authority on where the work stands.
func (a *Assembler) preamble(mode Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# DEVLOOP CONTEXT (%s)\n\n", mode)
	b.WriteString("The state files below are authoritative. Your conversation history\n")
	b.WriteString("may be compacted or stale; when it disagrees with this document,\n")
	b.WriteString("trust this document.")
	switch mode {
	case ModeReview:
		b.WriteString("\n\nYou are reviewing staged changes before they are committed. Check\n")
		b.WriteString("them against the current task and the API contract.")
	case ModeTask:
		b.WriteString("\n\nFocus on the current task only. Do not start other checklist items.")
	default:
		b.WriteString("\n\nWork through the checklist one item at a time until every item is\n")
		b.WriteString("complete, keeping the state files up to date as you go.")
	}
	return b.String()
}

func (a *Assembler) stateSection(mem *state.Memory) string {
	var b strings.Builder
	b.WriteString("## Current State\n")
	if mem.Project != "" {
		fmt.Fprintf(&b, "\n- Project: %s", mem.Project)
	}
	if mem.SessionID != "" {
		fmt.Fprintf(&b, "\n- Session: %s", mem.SessionID)
	}
	task := mem.CurrentTask
	if task.ID != "" || task.Name != "" {
		fmt.Fprintf(&b, "\n- Task: %s", taskLabel(task))
		fmt.Fprintf(&b, "\n- Retries: %d/%d", task.RetryCount, task.MaxRetries)
	} else {
		fmt.Fprintf(&b, "\n- Task: none (%s)", task.Status)
	}
	if mem.NextAction.Action != "" {
		fmt.Fprintf(&b, "\n- Next action: %s", actionLabel(mem.NextAction))
	}
	if mem.ErrorState != "" {
		fmt.Fprintf(&b, "\n- Error state: %s", mem.ErrorState)
	}
	if wc := mem.WorkingContext; wc.CurrentFile != "" {
		fmt.Fprintf(&b, "\n- Working on: %s", wc.CurrentFile)
		if wc.CurrentFunction != "" {
			fmt.Fprintf(&b, " (%s)", wc.CurrentFunction)
		}
	}
	return truncateTail(b.String(), a.budget.SectionBytes)
}

func taskLabel(t state.TaskRecord) string {
	label := t.ID
	if label == "" {
		label = t.Name
	} else if t.Name != "" {
		label = fmt.Sprintf("%s %q", t.ID, t.Name)
	}
	return fmt.Sprintf("%s (%s)", label, t.Status)
}

func actionLabel(n state.NextAction) string {
	label := n.Action
	if n.Target != "" {
		label += " " + n.Target
	}
	if n.Reason != "" {
		label += ": " + n.Reason
	}
	return label
}

func (a *Assembler) checklistSection() string {
	text, err := os.ReadFile(a.proj.RoadmapPath())
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("checklist unreadable, section dropped",
				zap.String("path", a.proj.RoadmapPath()),
				zap.Error(err))
		}
		return ""
	}
	doc := checklist.Parse(string(text))
	sum := doc.Summary()

	var b strings.Builder
	b.WriteString("## Checklist\n")
	fmt.Fprintf(&b, "\nProgress: %d/%d completed", sum.Completed, sum.Total)
	if sum.Blocked > 0 {
		fmt.Fprintf(&b, ", %d blocked", sum.Blocked)
	}
	if sum.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", sum.Skipped)
	}
	if sum.CurrentPhase != "" {
		fmt.Fprintf(&b, " (phase: %s)", sum.CurrentPhase)
	}

	open := doc.Filter(checklist.StatusInProgress, checklist.StatusPending)
	if len(open) > 0 {
		b.WriteString("\n\nOpen items:")
		shown := open
		if a.budget.ChecklistItems > 0 && len(shown) > a.budget.ChecklistItems {
			shown = shown[:a.budget.ChecklistItems]
		}
		for _, item := range shown {
			marker := " "
			if item.Status == checklist.StatusInProgress {
				marker = ">"
			}
			fmt.Fprintf(&b, "\n- [%s] %s", marker, item.Description)
		}
		if rest := len(open) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "\n... and %d more open items", rest)
		}
	}
	for _, w := range doc.Warnings {
		fmt.Fprintf(&b, "\nNote: line %d has an unrecognized marker and is not counted: %s", w.Line, w.Text)
	}
	return truncateTail(b.String(), a.budget.SectionBytes)
}

func (a *Assembler) taskSpecSection(taskID string) string {
	if taskID == "" {
		return ""
	}
	path, err := a.proj.TaskSpecPath(taskID)
	if err != nil {
		return ""
	}
	text, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("task spec unreadable, section dropped",
				zap.String("path", path),
				zap.Error(err))
		}
		return ""
	}
	body := fmt.Sprintf("## Task Spec (%s)\n\n%s", taskID, strings.TrimRight(string(text), "\n"))
	return truncateTail(body, a.budget.SectionBytes)
}

func (a *Assembler) contractSection() string {
	text, err := os.ReadFile(a.proj.ContractPath())
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("contract unreadable, section dropped",
				zap.String("path", a.proj.ContractPath()),
				zap.Error(err))
		}
		return ""
	}

	var b strings.Builder
	b.WriteString("## API Contract\n")
	var probe any
	if err := yaml.Unmarshal(text, &probe); err != nil {
		b.WriteString("\nWarning: the contract file is not well-formed YAML.\n")
	}
	b.WriteString("\n")
	b.WriteString(truncateMiddle(strings.TrimRight(string(text), "\n"), a.budget.ContractBytes))
	return b.String()
}

func (a *Assembler) errorsSection() string {
	hist := state.NewHistory(a.proj.ErrorHistoryPath())
	records, err := hist.Load()
	if err != nil {
		a.logger.Warn("error history unreadable, section dropped",
			zap.String("path", a.proj.ErrorHistoryPath()),
			zap.Error(err))
		return ""
	}
	if len(records) == 0 {
		return ""
	}

	shown := records
	if a.budget.ErrorRecords > 0 && len(shown) > a.budget.ErrorRecords {
		shown = shown[len(shown)-a.budget.ErrorRecords:]
	}

	var b strings.Builder
	b.WriteString("## Recent Errors\n")
	if len(shown) < len(records) {
		fmt.Fprintf(&b, "\n(showing last %d of %d)", len(shown), len(records))
	}
	for _, rec := range shown {
		fmt.Fprintf(&b, "\n- [%s] %s", rec.Task, rec.Error)
		if rec.AttemptedFix != "" {
			fmt.Fprintf(&b, "\n  tried: %s", rec.AttemptedFix)
		}
		if rec.Resolution != "" {
			fmt.Fprintf(&b, "\n  resolved: %s", rec.Resolution)
		}
	}
	return truncateTail(b.String(), a.budget.SectionBytes)
}

func (a *Assembler) stagedSection(staged []project.StagedFile) string {
	if len(staged) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Staged Changes\n")
	for _, f := range staged {
		fmt.Fprintf(&b, "\n- %s (%s)", f.Path, f.Change)
	}
	return b.String()
}
