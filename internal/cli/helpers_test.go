package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devloop-cli/devloop/internal/project"
)

// setWorkDir points project root discovery at dir for one test.
func setWorkDir(t *testing.T, dir string) {
	t.Helper()
	orig := workingDir
	workingDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { workingDir = orig })
}

// seedProject creates a .devloop tree in a temp dir and points the
// commands at it.
func seedProject(t *testing.T) project.Context {
	t.Helper()
	proj := project.New(t.TempDir())
	require.NoError(t, os.MkdirAll(proj.StatusDir(), 0o755))
	setWorkDir(t, proj.Root)
	return proj
}
