// Package testutil provides shared helpers for tests that need a
// populated .devloop project tree: a temp project context, roadmap and
// state fixtures.
//
// The state package cannot use these helpers (it would be an import
// cycle); its tests carry their own minimal fixtures.
package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devloop-cli/devloop/internal/project"
	"github.com/devloop-cli/devloop/internal/state"
)

// SampleRoadmap exercises every marker plus a phase heading.
const SampleRoadmap = `# Roadmap

## Current: Phase 2

- [x] TASK-001: bootstrap the project
- [>] TASK-002: wire the parser
- [ ] TASK-003: add tests
- [!] TASK-004: blocked on upstream
- [-] TASK-005: descoped
`

// NewProject creates a temp directory with the .devloop/status tree and
// returns its project context.
func NewProject(t *testing.T) project.Context {
	t.Helper()
	proj := project.New(t.TempDir())
	require.NoError(t, os.MkdirAll(proj.StatusDir(), 0o755))
	return proj
}

// WriteRoadmap writes the roadmap checklist for proj.
func WriteRoadmap(t *testing.T, proj project.Context, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(proj.RoadmapPath(), []byte(text), 0o644))
}

// SeedMemory persists a state record for proj, applying mutate to the
// defaults first.
func SeedMemory(t *testing.T, proj project.Context, mutate func(*state.Memory)) {
	t.Helper()
	mem := state.DefaultMemory()
	if mutate != nil {
		mutate(mem)
	}
	require.NoError(t, state.NewStore(proj.MemoryPath()).Save(mem))
}
