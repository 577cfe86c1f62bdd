// Package state owns the persisted task record: typed representation,
// load/save with crash-safe writes, the append-only error history, and
// the checklist synchronizer.
package state

import "time"

// TaskStatus values for TaskRecord.Status.
const (
	TaskNotStarted    = "NOT_STARTED"
	TaskInProgress    = "IN_PROGRESS"
	TaskPendingReview = "PENDING_REVIEW"
	TaskCompleted     = "COMPLETED"
	TaskBlocked       = "BLOCKED"
)

// NextAction verbs written by the synchronizer.
const (
	ActionInitialize = "INITIALIZE"
	ActionImplement  = "IMPLEMENT"
	ActionFinalize   = "FINALIZE"
)

// DefaultMaxRetries is the retry budget for a fresh task record.
const DefaultMaxRetries = 5

// TaskRecord describes the single task currently in focus. An empty ID
// means no task is selected.
type TaskRecord struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	LastUpdated time.Time `json:"last_updated,omitzero"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
}

// Exhausted reports whether the retry budget is used up. The caller
// decides escalation policy; the record never blocks further writes.
func (t TaskRecord) Exhausted() bool {
	return t.RetryCount >= t.MaxRetries
}

// WorkingContext tracks where in the code the agent last was. Embedded
// in the state record, never persisted on its own.
type WorkingContext struct {
	CurrentFile            string   `json:"current_file,omitempty"`
	CurrentFunction        string   `json:"current_function,omitempty"`
	PendingTests           []string `json:"pending_tests,omitempty"`
	PendingImplementations []string `json:"pending_implementations,omitempty"`
}

// Progress caches the checklist counts from the last sync. Display
// hint only: the checklist document is the authority and this copy may
// be stale.
type Progress struct {
	Completed    int       `json:"tasks_completed"`
	Total        int       `json:"tasks_total"`
	Pending      int       `json:"tasks_pending"`
	InProgress   int       `json:"tasks_in_progress"`
	Blocked      int       `json:"tasks_blocked"`
	Skipped      int       `json:"tasks_skipped"`
	CurrentPhase string    `json:"current_phase,omitempty"`
	LastSynced   time.Time `json:"last_synced,omitzero"`
}

// NextAction tells the agent what to do after reading the record.
type NextAction struct {
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ErrorRecord is one entry of the append-only error history.
type ErrorRecord struct {
	Task         string    `json:"task"`
	Kind         string    `json:"kind,omitempty"`
	Error        string    `json:"error"`
	AttemptedFix string    `json:"attempted_fix,omitempty"`
	Resolution   string    `json:"resolution,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
}

// Memory is the state record persisted as memory.json.
type Memory struct {
	Project        string         `json:"project,omitempty"`
	SessionID      string         `json:"session_id,omitempty"`
	Mode           string         `json:"mode,omitempty"`
	CurrentTask    TaskRecord     `json:"current_task"`
	WorkingContext WorkingContext `json:"working_context"`
	Progress       Progress       `json:"progress"`
	NextAction     NextAction     `json:"next_action"`
	ErrorState     string         `json:"error_state,omitempty"`
}

// DefaultMemory returns the record used when no state file exists yet.
func DefaultMemory() *Memory {
	return &Memory{
		CurrentTask: TaskRecord{
			Status:     TaskNotStarted,
			MaxRetries: DefaultMaxRetries,
		},
		NextAction: NextAction{
			Action: ActionInitialize,
			Reason: "no state recorded yet",
		},
	}
}
