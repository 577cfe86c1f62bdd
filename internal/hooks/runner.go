// Package hooks implements the lifecycle hook handlers the driving
// tool invokes: context injection on prompt submit, progress sync after
// edits, the review gate before commits, the loop driver on stop, and
// the error tracker after failed commands.
//
// Every handler returns a well-formed JSON payload, whatever happens. A
// crashed hook with no output leaves the invoking tool worse off than a
// degraded response, so failures turn into benign payloads with the
// problem carried in a reason field.
package hooks

import (
	"encoding/json"
	"io"

	"go.uber.org/zap"

	"github.com/devloop-cli/devloop/internal/config"
	"github.com/devloop-cli/devloop/internal/project"
)

// Input is the JSON payload the driving tool writes to the hook's
// stdin. Field presence varies by lifecycle event and tool version, so
// result fields appear under both tool_output and tool_result.
type Input struct {
	ToolName   string      `json:"tool_name"`
	ToolInput  ToolInput   `json:"tool_input"`
	ToolOutput *ToolResult `json:"tool_output"`
	ToolResult *ToolResult `json:"tool_result"`
	ExitCode   *int        `json:"exit_code"`
}

// ToolInput carries the parameters of the tool call the hook fired on.
type ToolInput struct {
	Command string `json:"command"`
}

// ToolResult carries the outcome of a completed tool call. Older
// payloads use code instead of exit_code and output instead of stdout.
type ToolResult struct {
	ExitCode *int   `json:"exit_code"`
	Code     *int   `json:"code"`
	Success  *bool  `json:"success"`
	Stderr   string `json:"stderr"`
	Stdout   string `json:"stdout"`
	Output   string `json:"output"`
	Error    string `json:"error"`
}

// AckOutput is the minimal acknowledgement payload.
type AckOutput struct {
	Status string `json:"status"`
	Action string `json:"action,omitempty"`
}

// Options configures a Runner.
type Options struct {
	Project project.Context
	Config  config.Config
	Logger  *zap.Logger
}

// Runner dispatches hook invocations by name.
type Runner struct {
	proj   project.Context
	cfg    config.Config
	logger *zap.Logger
}

// NewRunner returns a Runner. A nil Logger disables diagnostics.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		proj:   opts.Project,
		cfg:    opts.Config,
		logger: logger,
	}
}

// Run reads the hook input from in, dispatches by name and writes the
// response payload to out. The returned error is non-nil only when the
// output itself cannot be written; decision outcomes, including block
// and stop, are carried in the payload.
func (r *Runner) Run(name string, in io.Reader, out io.Writer) error {
	input := decodeInput(in, r.logger)

	var payload any
	switch name {
	case "inject_state":
		payload = r.injectState()
	case "progress_sync":
		payload = r.progressSync()
	case "codex_review_gate":
		payload = r.reviewGate(input)
	case "loop_driver":
		payload = r.loopDriver()
	case "error_tracker":
		payload = r.errorTracker(input)
	default:
		// An unknown hook name means a config newer than this binary.
		// Acknowledge instead of failing the tool call.
		r.logger.Warn("unknown hook name", zap.String("hook", name))
		payload = AckOutput{Status: "ok", Action: "none"}
	}

	return json.NewEncoder(out).Encode(payload)
}

// decodeInput tolerates an empty or malformed stdin: hooks fired on
// events without a payload still have to answer.
func decodeInput(in io.Reader, logger *zap.Logger) *Input {
	var input Input
	if err := json.NewDecoder(in).Decode(&input); err != nil && err != io.EOF {
		logger.Warn("hook input unreadable, treating as empty", zap.Error(err))
		return &Input{}
	}
	return &input
}
