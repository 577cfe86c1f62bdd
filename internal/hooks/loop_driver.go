package hooks

import "github.com/devloop-cli/devloop/internal/gate"

// LoopDriverOutput is the loop_driver response payload.
type LoopDriverOutput struct {
	Decision string `json:"decision"` // continue or stop
	Reason   string `json:"reason"`
}

func (r *Runner) loopDriver() LoopDriverOutput {
	res := gate.EvaluateLoop(r.proj.RoadmapPath())
	return LoopDriverOutput{
		Decision: res.Decision.String(),
		Reason:   res.Reason,
	}
}
