package hooks

import (
	"go.uber.org/zap"

	"github.com/devloop-cli/devloop/internal/gate"
)

// ReviewGateOutput is the codex_review_gate response payload.
type ReviewGateOutput struct {
	Decision string `json:"decision"` // allow or block
	Reason   string `json:"reason,omitempty"`
}

// reviewGate checks the command the tool is about to run. Commands
// other than git commit and git push pass straight through; a commit
// gathers the staged file list for the gate. A failing staged-file
// lookup allows: the gate must never block a commit because git could
// not be asked.
func (r *Runner) reviewGate(input *Input) ReviewGateOutput {
	staged, err := r.proj.StagedFiles()
	if err != nil {
		r.logger.Warn("staged file lookup failed, allowing", zap.Error(err))
		staged = nil
	}
	res := gate.EvaluateReview(input.ToolInput.Command, staged)
	return ReviewGateOutput{
		Decision: res.Decision.String(),
		Reason:   res.Reason,
	}
}
