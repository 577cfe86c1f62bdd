package cli

import (
	"github.com/spf13/cobra"

	"github.com/devloop-cli/devloop/internal/hooks"
)

var hookCmd = &cobra.Command{
	Use:   "hook <name>",
	Short: "Run a lifecycle hook",
	Long: `Runs one of the lifecycle hooks the driving tool invokes. The hook
input is read from stdin as JSON and the response payload is written to
stdout. Diagnostics go to stderr only; stdout carries nothing but the
payload.

Hooks:
  inject_state       compose and emit the session context (prompt submit)
  progress_sync      reconcile state with the roadmap checklist (post-edit)
  codex_review_gate  allow/block a proposed commit (pre-commit)
  loop_driver        decide whether the session may stop (stop)
  error_tracker      record a failed command (post-tool-use)

The exit code is 0 for every decision, including block and stop; the
decision is carried in the payload. A non-zero exit means the process
itself failed to run.`,
	Args: cobra.ExactArgs(1),
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	proj, cfg, logger, err := loadSetup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runner := hooks.NewRunner(hooks.Options{
		Project: proj,
		Config:  *cfg,
		Logger:  logger,
	})
	return runner.Run(args[0], cmd.InOrStdin(), cmd.OutOrStdout())
}
