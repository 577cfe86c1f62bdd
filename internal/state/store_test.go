package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadAbsentReturnsDefaults(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "memory.json"))
	m, err := store.Load()
	require.NoError(t, err)

	assert.Empty(t, m.CurrentTask.ID)
	assert.Equal(t, TaskNotStarted, m.CurrentTask.Status)
	assert.Zero(t, m.CurrentTask.RetryCount)
	assert.Equal(t, DefaultMaxRetries, m.CurrentTask.MaxRetries)
	assert.Equal(t, ActionInitialize, m.NextAction.Action)
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "memory.json"))

	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := &Memory{
		Project:   "demo",
		SessionID: "b2c7f3a0-0000-0000-0000-000000000000",
		CurrentTask: TaskRecord{
			ID:         "TASK-003",
			Name:       "implement the parser",
			Status:     TaskInProgress,
			StartedAt:  started,
			RetryCount: 2,
			MaxRetries: 5,
		},
		WorkingContext: WorkingContext{
			CurrentFile:  "internal/parser/parser.go",
			PendingTests: []string{"TestParse_Empty"},
		},
		Progress:   Progress{Completed: 2, Total: 5, Pending: 3},
		NextAction: NextAction{Action: ActionImplement, Target: "TASK-003"},
	}
	require.NoError(t, store.Save(m))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestStore_LoadMalformedJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestStore_LoadWrongTypedField(t *testing.T) {
	t.Parallel()

	// Valid JSON, wrong shape: retry_count must be an integer.
	path := filepath.Join(t.TempDir(), "memory.json")
	content := `{"current_task": {"id": "TASK-001", "retry_count": "three"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestStore_LoadNegativeRetryCount(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memory.json")
	content := `{"current_task": {"retry_count": -1}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestStore_LoadFillsMaxRetriesDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memory.json")
	content := `{"current_task": {"id": "TASK-001", "status": "IN_PROGRESS", "retry_count": 1}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRetries, m.CurrentTask.MaxRetries)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "memory.json"))
	require.NoError(t, store.Save(DefaultMemory()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "memory.json", entries[0].Name())
}

func TestStore_SaveReplacesWholeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memory.json")
	store := NewStore(path)

	m := DefaultMemory()
	m.Project = "first"
	require.NoError(t, store.Save(m))

	m.Project = "second"
	require.NoError(t, store.Save(m))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", got.Project)
}

func TestStore_SaveCreatesParentDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".devloop", "status", "memory.json")
	require.NoError(t, NewStore(path).Save(DefaultMemory()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestWriteFileAtomic_OldContentSurvivesUntilRename(t *testing.T) {
	t.Parallel()

	// The write path goes through a sibling temp file: the destination
	// is only ever touched by the final rename, so a crash before the
	// rename leaves the previous content fully intact.
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project":"old"}`), 0o644))

	// Simulate the pre-rename window: a partially written temp file
	// next to a valid destination.
	tmp := filepath.Join(dir, ".tmp-partial")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"proj`), 0o600))

	m, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "old", m.Project)
}

func TestExhausted(t *testing.T) {
	t.Parallel()

	assert.False(t, TaskRecord{RetryCount: 4, MaxRetries: 5}.Exhausted())
	assert.True(t, TaskRecord{RetryCount: 5, MaxRetries: 5}.Exhausted())
}
