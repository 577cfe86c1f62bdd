package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootPath_MarkerDirectoryWins(t *testing.T) {
	proj := seedProject(t)
	nested := filepath.Join(proj.Root, "internal", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	setWorkDir(t, nested)

	var buf bytes.Buffer
	rootPathCmd.SetOut(&buf)
	require.NoError(t, runRootPath(rootPathCmd, nil))

	assert.Equal(t, proj.Root, strings.TrimSpace(buf.String()))
}

func TestRootPath_FallsBackToCwd(t *testing.T) {
	dir := t.TempDir()
	setWorkDir(t, dir)

	var buf bytes.Buffer
	rootPathCmd.SetOut(&buf)
	require.NoError(t, runRootPath(rootPathCmd, nil))

	assert.Equal(t, dir, strings.TrimSpace(buf.String()))
}
