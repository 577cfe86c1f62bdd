package hooks

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devloop-cli/devloop/internal/state"
)

const (
	maxErrorMessageLen = 2000
	maxCommandLen      = 500
)

// Failure kinds recorded in the error history. Test failures are
// expected during test-driven work and do not consume the retry budget;
// command failures do.
const (
	KindTestFailure    = "test_failure"
	KindCommandFailure = "command_failure"
)

// ErrorTrackerOutput is the error_tracker response payload.
type ErrorTrackerOutput struct {
	Status           string `json:"status"`
	Action           string `json:"action"`
	Kind             string `json:"kind,omitempty"`
	IncrementedRetry bool   `json:"incremented_retry,omitempty"`
}

// errorTracker records failed commands into the error history and, for
// non-test failures, bumps the current task's retry counter. All writes
// are best-effort: a record that cannot be persisted is logged, and the
// hook still acknowledges.
func (r *Runner) errorTracker(input *Input) ErrorTrackerOutput {
	fail := extractFailure(input)
	if fail == nil {
		return ErrorTrackerOutput{Status: "ok", Action: "none"}
	}

	store := state.NewStore(r.proj.MemoryPath())
	mem, err := store.Load()
	if err != nil {
		r.logger.Warn("state record unreadable, recording error unbound", zap.Error(err))
		mem = nil
	}

	taskID := "unknown"
	if mem != nil && mem.CurrentTask.ID != "" {
		taskID = mem.CurrentTask.ID
	}

	rec := state.ErrorRecord{
		Task:         taskID,
		Kind:         fail.kind,
		Error:        fail.message,
		AttemptedFix: fail.attemptedFix,
		Timestamp:    time.Now().UTC(),
	}
	if err := state.NewHistory(r.proj.ErrorHistoryPath()).Append(rec); err != nil {
		r.logger.Warn("error history append failed", zap.Error(err))
	}

	incremented := false
	if mem != nil && mem.CurrentTask.ID != "" && fail.kind == KindCommandFailure {
		mem.CurrentTask.RetryCount++
		mem.CurrentTask.LastUpdated = time.Now().UTC()
		if err := store.Save(mem); err != nil {
			r.logger.Warn("retry count save failed", zap.Error(err))
		} else {
			incremented = true
		}
	}

	return ErrorTrackerOutput{
		Status:           "ok",
		Action:           "recorded",
		Kind:             fail.kind,
		IncrementedRetry: incremented,
	}
}

type failure struct {
	kind         string
	message      string
	attemptedFix string
}

// extractFailure decides whether the payload describes a clear failure.
// When neither an exit code nor a success flag is present the hook does
// nothing: a false positive pollutes the history and burns retries.
func extractFailure(input *Input) *failure {
	exitCode := firstInt(
		resultInt(input.ToolOutput, func(r *ToolResult) *int { return r.ExitCode }),
		resultInt(input.ToolResult, func(r *ToolResult) *int { return r.ExitCode }),
		resultInt(input.ToolOutput, func(r *ToolResult) *int { return r.Code }),
		resultInt(input.ToolResult, func(r *ToolResult) *int { return r.Code }),
		input.ExitCode,
	)

	success := firstBool(
		resultBool(input.ToolOutput),
		resultBool(input.ToolResult),
	)
	if success == nil && exitCode != nil {
		ok := *exitCode == 0
		success = &ok
	}

	if success == nil {
		return nil
	}
	if *success {
		return nil
	}

	message := firstNonEmpty(
		resultText(input.ToolOutput, func(r *ToolResult) string { return r.Stderr }),
		resultText(input.ToolResult, func(r *ToolResult) string { return r.Stderr }),
		resultText(input.ToolOutput, func(r *ToolResult) string { return r.Error }),
		resultText(input.ToolResult, func(r *ToolResult) string { return r.Error }),
		resultText(input.ToolOutput, func(r *ToolResult) string { return r.Stdout }),
		resultText(input.ToolResult, func(r *ToolResult) string { return r.Stdout }),
		resultText(input.ToolOutput, func(r *ToolResult) string { return r.Output }),
		resultText(input.ToolResult, func(r *ToolResult) string { return r.Output }),
	)
	if message == "" {
		message = "command failed"
	}

	command := input.ToolInput.Command
	f := &failure{
		kind:    classifyFailure(command, message),
		message: truncateForLog(message, maxErrorMessageLen),
	}
	if command != "" {
		f.attemptedFix = fmt.Sprintf("command: %s", truncateForLog(command, maxCommandLen))
	}
	return f
}

// classifyFailure separates expected red tests from everything else. A
// failing test runner still counts as a command failure when the output
// looks like a compile or import error rather than an assertion.
func classifyFailure(command, message string) string {
	cmd := strings.ToLower(command)
	isTestCmd := strings.Contains(cmd, "go test") ||
		strings.Contains(cmd, "pytest") ||
		strings.Contains(cmd, "cargo test") ||
		strings.Contains(cmd, "npm test") ||
		strings.Contains(cmd, "pnpm test") ||
		strings.Contains(cmd, "yarn test")
	if !isTestCmd {
		return KindCommandFailure
	}

	compileOrRuntime := strings.Contains(message, "could not compile") ||
		strings.Contains(message, "error[E") ||
		strings.Contains(message, "error:") ||
		strings.Contains(message, "Compilation failed") ||
		strings.Contains(message, "build failed") ||
		strings.Contains(message, "undefined:") ||
		strings.Contains(message, "Traceback (most recent call last)") ||
		strings.Contains(message, "ModuleNotFoundError") ||
		strings.Contains(message, "ImportError") ||
		strings.Contains(message, "SyntaxError")
	if compileOrRuntime {
		return KindCommandFailure
	}
	return KindTestFailure
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

func resultInt(r *ToolResult, field func(*ToolResult) *int) *int {
	if r == nil {
		return nil
	}
	return field(r)
}

func resultBool(r *ToolResult) *bool {
	if r == nil {
		return nil
	}
	return r.Success
}

func resultText(r *ToolResult, field func(*ToolResult) string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(field(r))
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstBool(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
