// Package gate holds the two decision functions consulted at lifecycle
// boundaries: the loop gate (may the session stop?) and the review gate
// (may this commit proceed?).
package gate

import (
	"fmt"
	"os"

	"github.com/devloop-cli/devloop/internal/checklist"
)

// LoopDecision is the outcome of the loop gate.
type LoopDecision int

const (
	// LoopContinue keeps the session alive.
	LoopContinue LoopDecision = iota
	// LoopStop lets the session end.
	LoopStop
)

func (d LoopDecision) String() string {
	if d == LoopStop {
		return "stop"
	}
	return "continue"
}

// LoopResult carries the decision and a human-readable reason the
// invoking tool can relay to the agent.
type LoopResult struct {
	Decision LoopDecision
	Reason   string
}

// EvaluateLoop parses the checklist fresh and decides whether the loop
// may stop. Stop requires zero pending or in-progress items; blocked
// and skipped items do not keep the loop alive. An unreadable checklist
// fails toward continuing: exiting a genuinely unfinished session on a
// transient read failure is the worse outcome.
func EvaluateLoop(roadmapPath string) LoopResult {
	text, err := os.ReadFile(roadmapPath)
	if err != nil {
		return LoopResult{
			Decision: LoopContinue,
			Reason:   fmt.Sprintf("checklist unreadable (%v), keeping the session alive", err),
		}
	}

	doc := checklist.Parse(string(text))
	sum := doc.Summary()
	if remaining := sum.Pending + sum.InProgress; remaining > 0 {
		return LoopResult{
			Decision: LoopContinue,
			Reason: fmt.Sprintf("%d of %d checklist items still open (%d pending, %d in progress)",
				remaining, sum.Total, sum.Pending, sum.InProgress),
		}
	}
	return LoopResult{
		Decision: LoopStop,
		Reason:   fmt.Sprintf("no open checklist items remain (%d completed of %d total)", sum.Completed, sum.Total),
	}
}
