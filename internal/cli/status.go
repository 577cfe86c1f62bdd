package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devloop-cli/devloop/internal/checklist"
	"github.com/devloop-cli/devloop/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current task and checklist progress",
	Long: `Shows the persisted task record and a fresh parse of the roadmap
checklist: the current task, its retry budget, the next action and the
per-status item counts.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	proj, err := resolveProject()
	if err != nil {
		return err
	}

	mem, err := state.NewStore(proj.MemoryPath()).Load()
	if err != nil {
		return fmt.Errorf("failed to load state record: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project root:  %s\n", proj.Root)
	if mem.Project != "" {
		fmt.Fprintf(out, "Project:       %s\n", mem.Project)
	}
	if mem.SessionID != "" {
		fmt.Fprintf(out, "Session:       %s\n", mem.SessionID)
	}

	task := mem.CurrentTask
	if task.ID != "" || task.Name != "" {
		label := task.ID
		if task.Name != "" {
			if label != "" {
				label += " "
			}
			label += task.Name
		}
		fmt.Fprintf(out, "Current task:  %s\n", label)
		fmt.Fprintf(out, "Task status:   %s\n", task.Status)
		fmt.Fprintf(out, "Retries:       %d/%d\n", task.RetryCount, task.MaxRetries)
	} else {
		fmt.Fprintf(out, "Current task:  none\n")
	}
	if mem.NextAction.Action != "" {
		next := mem.NextAction.Action
		if mem.NextAction.Target != "" {
			next += " " + mem.NextAction.Target
		}
		fmt.Fprintf(out, "Next action:   %s\n", next)
	}

	text, err := os.ReadFile(proj.RoadmapPath())
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "Checklist:     not found (%s)\n", proj.RoadmapPath())
			return nil
		}
		return fmt.Errorf("failed to read checklist: %w", err)
	}

	sum := checklist.Parse(string(text)).Summary()
	fmt.Fprintf(out, "Checklist:     %d/%d completed (%.0f%%)\n", sum.Completed, sum.Total, sum.Fraction*100)
	fmt.Fprintf(out, "Open items:    %d pending, %d in progress\n", sum.Pending, sum.InProgress)
	if sum.Blocked > 0 || sum.Skipped > 0 {
		fmt.Fprintf(out, "Set aside:     %d blocked, %d skipped\n", sum.Blocked, sum.Skipped)
	}
	if sum.CurrentPhase != "" {
		fmt.Fprintf(out, "Phase:         %s\n", sum.CurrentPhase)
	}
	return nil
}
