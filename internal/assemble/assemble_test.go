package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devloop-cli/devloop/internal/config"
	"github.com/devloop-cli/devloop/internal/project"
	"github.com/devloop-cli/devloop/internal/state"
	"github.com/devloop-cli/devloop/internal/testutil"
)

func fixture(t *testing.T) (project.Context, *Assembler) {
	t.Helper()
	proj := testutil.NewProject(t)
	asm := New(Options{Project: proj, Budget: config.DefaultConfig().Context})
	return proj, asm
}

func TestBuild_FullIncludesAllSections(t *testing.T) {
	t.Parallel()
	proj, asm := fixture(t)

	testutil.SeedMemory(t, proj, func(m *state.Memory) {
		m.Project = "shipit"
		m.SessionID = "abc-123"
		m.CurrentTask = state.TaskRecord{
			ID:         "TASK-003",
			Name:       "wire the parser",
			Status:     state.TaskInProgress,
			RetryCount: 1,
			MaxRetries: 5,
		}
		m.NextAction = state.NextAction{
			Action: state.ActionImplement,
			Target: "TASK-003",
			Reason: "in progress on the checklist",
		}
	})
	roadmap := "- [x] TASK-001: bootstrap\n- [x] TASK-002: config\n- [>] TASK-003: wire the parser\n- [ ] TASK-004: ship\n"
	require.NoError(t, os.WriteFile(proj.RoadmapPath(), []byte(roadmap), 0o644))
	require.NoError(t, os.MkdirAll(proj.TasksDir(), 0o755))
	spec := filepath.Join(proj.TasksDir(), "TASK-003_wire-the-parser.md")
	require.NoError(t, os.WriteFile(spec, []byte("# TASK-003\n\nParse all the things.\n"), 0o644))
	require.NoError(t, os.WriteFile(proj.ContractPath(), []byte("endpoints:\n  - GET /things\n"), 0o644))
	require.NoError(t, state.NewHistory(proj.ErrorHistoryPath()).Append(state.ErrorRecord{
		Task:      "TASK-002",
		Error:     "tests failed: TestLoad",
		Timestamp: time.Now().UTC(),
	}))

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, "# DEVLOOP CONTEXT (full)")
	assert.Contains(t, doc, "## Current State")
	assert.Contains(t, doc, `TASK-003 "wire the parser" (IN_PROGRESS)`)
	assert.Contains(t, doc, "Retries: 1/5")
	assert.Contains(t, doc, "IMPLEMENT TASK-003: in progress on the checklist")
	assert.Contains(t, doc, "## Checklist")
	assert.Contains(t, doc, "Progress: 2/4 completed")
	assert.Contains(t, doc, "- [>] TASK-003: wire the parser")
	assert.Contains(t, doc, "- [ ] TASK-004: ship")
	assert.NotContains(t, doc, "TASK-001: bootstrap")
	assert.Contains(t, doc, "## Task Spec (TASK-003)")
	assert.Contains(t, doc, "Parse all the things.")
	assert.Contains(t, doc, "## API Contract")
	assert.Contains(t, doc, "GET /things")
	assert.Contains(t, doc, "## Recent Errors")
	assert.Contains(t, doc, "tests failed: TestLoad")
	assert.NotContains(t, doc, "## Staged Changes")
}

func TestBuild_EmptyProjectStillRenders(t *testing.T) {
	t.Parallel()
	_, asm := fixture(t)

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, "# DEVLOOP CONTEXT (full)")
	// No state file on disk: the store serves defaults, so the state
	// section still renders. Everything else is absent.
	assert.Contains(t, doc, "## Current State")
	assert.Contains(t, doc, "Task: none (NOT_STARTED)")
	assert.NotContains(t, doc, "## Checklist")
	assert.NotContains(t, doc, "## API Contract")
	assert.NotContains(t, doc, "## Recent Errors")
}

func TestBuild_CorruptStateDropsSection(t *testing.T) {
	t.Parallel()
	proj, asm := fixture(t)
	require.NoError(t, os.WriteFile(proj.MemoryPath(), []byte("{not json"), 0o644))

	doc := asm.Build(ModeFull, nil)

	assert.NotContains(t, doc, "## Current State")
	assert.Contains(t, doc, "# DEVLOOP CONTEXT (full)")
}

func TestBuild_ChecklistItemCap(t *testing.T) {
	t.Parallel()
	proj, _ := fixture(t)

	var b strings.Builder
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&b, "- [ ] TASK-%03d: item %d\n", i, i)
	}
	require.NoError(t, os.WriteFile(proj.RoadmapPath(), []byte(b.String()), 0o644))

	budget := config.DefaultConfig().Context
	budget.ChecklistItems = 20
	asm := New(Options{Project: proj, Budget: budget})

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, "TASK-020: item 20")
	assert.NotContains(t, doc, "TASK-021: item 21")
	assert.Contains(t, doc, "... and 5 more open items")
}

func TestBuild_ChecklistWarningSurfaced(t *testing.T) {
	t.Parallel()
	proj, asm := fixture(t)
	require.NoError(t, os.WriteFile(proj.RoadmapPath(), []byte("- [ ] TASK-001: ok\n- [X] TASK-002: wrong case\n"), 0o644))

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, "line 2 has an unrecognized marker")
}

func TestBuild_ErrorRecordCap(t *testing.T) {
	t.Parallel()
	proj, _ := fixture(t)

	hist := state.NewHistory(proj.ErrorHistoryPath())
	for i := 1; i <= 15; i++ {
		require.NoError(t, hist.Append(state.ErrorRecord{
			Task:  fmt.Sprintf("TASK-%03d", i),
			Error: fmt.Sprintf("failure %d", i),
		}))
	}

	budget := config.DefaultConfig().Context
	budget.ErrorRecords = 10
	asm := New(Options{Project: proj, Budget: budget})

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, "(showing last 10 of 15)")
	assert.Contains(t, doc, "failure 15")
	assert.Contains(t, doc, "failure 6")
	assert.NotContains(t, doc, "failure 5\n")
}

func TestBuild_ContractVerbatimByDefault(t *testing.T) {
	t.Parallel()
	proj, asm := fixture(t)

	contract := strings.Repeat("key: value\n", 2000)
	require.NoError(t, os.WriteFile(proj.ContractPath(), []byte(contract), 0o644))

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, strings.TrimRight(contract, "\n"))
	assert.NotContains(t, doc, "truncated")
}

func TestBuild_ContractTruncatedMiddleWhenCapped(t *testing.T) {
	t.Parallel()
	proj, _ := fixture(t)

	head := "head_marker: start\n"
	tail := "tail_marker: end\n"
	contract := head + strings.Repeat("filler: line\n", 500) + tail
	require.NoError(t, os.WriteFile(proj.ContractPath(), []byte(contract), 0o644))

	budget := config.DefaultConfig().Context
	budget.ContractBytes = 200
	asm := New(Options{Project: proj, Budget: budget})

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, "head_marker: start")
	assert.Contains(t, doc, "tail_marker: end")
	assert.Contains(t, doc, "truncated")
	assert.NotContains(t, doc, strings.Repeat("filler: line\n", 500))
}

func TestBuild_MalformedContractWarns(t *testing.T) {
	t.Parallel()
	proj, asm := fixture(t)
	require.NoError(t, os.WriteFile(proj.ContractPath(), []byte("key: [unclosed\n"), 0o644))

	doc := asm.Build(ModeFull, nil)

	assert.Contains(t, doc, "not well-formed YAML")
	assert.Contains(t, doc, "key: [unclosed")
}

func TestBuild_ReviewModeIncludesStagedFiles(t *testing.T) {
	t.Parallel()
	_, asm := fixture(t)

	staged := []project.StagedFile{
		{Path: "internal/state/store.go", Change: "modified"},
		{Path: "internal/state/store_test.go", Change: "added"},
	}
	doc := asm.Build(ModeReview, staged)

	assert.Contains(t, doc, "# DEVLOOP CONTEXT (review)")
	assert.Contains(t, doc, "## Staged Changes")
	assert.Contains(t, doc, "- internal/state/store.go (modified)")
	assert.Contains(t, doc, "- internal/state/store_test.go (added)")
	assert.Contains(t, doc, "reviewing staged changes")
}

func TestBuild_TaskModeSkipsChecklist(t *testing.T) {
	t.Parallel()
	proj, asm := fixture(t)
	require.NoError(t, os.WriteFile(proj.RoadmapPath(), []byte("- [ ] TASK-001: something\n"), 0o644))

	doc := asm.Build(ModeTask, nil)

	assert.Contains(t, doc, "# DEVLOOP CONTEXT (task)")
	assert.NotContains(t, doc, "## Checklist")
}

func TestBuild_SectionByteBudget(t *testing.T) {
	t.Parallel()
	proj, _ := fixture(t)

	var b strings.Builder
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&b, "- [ ] TASK-%03d: %s\n", i, strings.Repeat("x", 120))
	}
	require.NoError(t, os.WriteFile(proj.RoadmapPath(), []byte(b.String()), 0o644))

	budget := config.DefaultConfig().Context
	budget.SectionBytes = 500
	budget.ChecklistItems = 40
	asm := New(Options{Project: proj, Budget: budget})

	doc := asm.Build(ModeFull, nil)

	start := strings.Index(doc, "## Checklist")
	require.GreaterOrEqual(t, start, 0)
	section := doc[start:]
	if end := strings.Index(section, "\n\n## "); end >= 0 {
		section = section[:end]
	}
	// Cap plus the truncation marker line.
	assert.LessOrEqual(t, len(section), 500+len("\n... [truncated 1000000 bytes]"))
	assert.Contains(t, section, "truncated")
}

func TestTruncateTail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncateTail("short", 100))
	assert.Equal(t, "short", truncateTail("short", 0))

	got := truncateTail(strings.Repeat("a", 50), 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 10)))
	assert.Contains(t, got, "[truncated 40 bytes]")
}

func TestTruncateMiddle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncateMiddle("short", 100))
	assert.Equal(t, "short", truncateMiddle("short", 0))

	text := strings.Repeat("a", 30) + strings.Repeat("b", 30)
	got := truncateMiddle(text, 20)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 10)))
	assert.True(t, strings.HasSuffix(got, strings.Repeat("b", 10)))
	assert.Contains(t, got, "[truncated 40 bytes]")
}

func TestMode_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "full", ModeFull.String())
	assert.Equal(t, "review", ModeReview.String())
	assert.Equal(t, "task", ModeTask.String())
	assert.Equal(t, "unknown", Mode(99).String())
}
