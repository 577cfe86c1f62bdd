package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/devloop-cli/devloop/internal/project"
	"github.com/devloop-cli/devloop/internal/state"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .devloop/ directory structure",
	Long: `Creates the .devloop/ directory in the current directory with a
default configuration, a roadmap template and a fresh state record.

This command sets up:
  - config.yaml with context budgets and sync limits
  - status/ROADMAP.md roadmap checklist template
  - status/memory.json state record with a new session id
  - status/tasks/ for per-task specification documents`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	proj := project.New(cwd)

	if _, err := os.Stat(proj.ConfigPath()); err == nil && !initForce {
		return fmt.Errorf(".devloop already initialized in %s (use --force to overwrite)", cwd)
	}

	for _, dir := range []string{proj.StatusDir(), proj.TasksDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := writeInitFile(proj.ConfigPath(), defaultConfigYAML); err != nil {
		return err
	}
	if err := writeInitFile(proj.RoadmapPath(), defaultRoadmap); err != nil {
		return err
	}

	mem := state.DefaultMemory()
	mem.Project = filepath.Base(proj.Root)
	mem.SessionID = uuid.NewString()
	if err := state.NewStore(proj.MemoryPath()).Save(mem); err != nil {
		return fmt.Errorf("failed to write state record: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized .devloop/ in %s\n", proj.Root)
	fmt.Fprintf(out, "  %s\n", proj.ConfigPath())
	fmt.Fprintf(out, "  %s\n", proj.RoadmapPath())
	fmt.Fprintf(out, "  %s\n", proj.MemoryPath())
	fmt.Fprintln(out, "\nEdit status/ROADMAP.md to describe the work, then point your")
	fmt.Fprintln(out, "tool's lifecycle hooks at `devloop hook <name>`.")
	return nil
}

func writeInitFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

const defaultConfigYAML = `# devloop configuration
context:
  # Pending and in-progress checklist items surfaced in the injected
  # context; the remainder is summarized as a count.
  checklist_items: 20
  # Most recent error records surfaced.
  error_records: 10
  # Byte cap per context section.
  section_bytes: 8000
  # Byte cap for the API contract section. 0 includes the whole file.
  contract_bytes: 0

sync:
  # Retry budget for a fresh task record.
  max_retries: 5

log:
  level: info
  format: console
`

const defaultRoadmap = `# Roadmap

## Current: Phase 1

- [ ] TASK-001: Describe the first task here
- [ ] TASK-002: Describe the second task here

Markers: [ ] pending, [>] in progress, [x] completed, [!] blocked, [-] skipped.
`
