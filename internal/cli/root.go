// Package cli wires the command surface: the lifecycle hook entry
// point plus the small human-facing commands (status, root, init).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devloop-cli/devloop/internal/config"
	"github.com/devloop-cli/devloop/internal/logging"
	"github.com/devloop-cli/devloop/internal/project"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// workingDir is the starting point for project root discovery. It can
// be overridden in tests.
var workingDir = os.Getwd

var rootCmd = &cobra.Command{
	Use:   "devloop",
	Short: "State persistence and lifecycle hooks for autonomous coding sessions",
	Long: `Devloop keeps an autonomous coding session on track across context
loss. It persists task and progress state under .devloop/, reconciles it
with the roadmap checklist, and answers the lifecycle hooks the driving
tool fires at prompt submission, post-edit, pre-commit and session stop.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("devloop version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveProject discovers the project root from the working directory.
func resolveProject() (project.Context, error) {
	cwd, err := workingDir()
	if err != nil {
		return project.Context{}, fmt.Errorf("failed to get current directory: %w", err)
	}
	return project.New(project.FindRoot(cwd)), nil
}

// loadSetup resolves the project and its configuration. A broken or
// missing config file falls back to defaults so commands keep working.
func loadSetup() (project.Context, *config.Config, *zap.Logger, error) {
	proj, err := resolveProject()
	if err != nil {
		return project.Context{}, nil, nil, err
	}

	cfg, cfgErr := config.Load(proj.ConfigPath())
	if cfgErr != nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logger = logging.Nop()
	}
	if cfgErr != nil {
		logger.Warn("config unreadable, using defaults",
			zap.String("path", proj.ConfigPath()),
			zap.Error(cfgErr))
	}
	return proj, cfg, logger, nil
}
