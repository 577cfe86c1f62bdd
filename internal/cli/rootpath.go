package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootPathCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the discovered project root",
	Long: `Prints the project root devloop resolved from the current directory:
the nearest directory carrying a .devloop/ marker, else the repository
top, else the current directory itself.`,
	Args: cobra.NoArgs,
	RunE: runRootPath,
}

func init() {
	rootCmd.AddCommand(rootPathCmd)
}

func runRootPath(cmd *cobra.Command, args []string) error {
	proj, err := resolveProject()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), proj.Root)
	return nil
}
