package gate

import (
	"fmt"
	"strings"

	"github.com/devloop-cli/devloop/internal/project"
)

// ReviewDecision is the outcome of the review gate.
type ReviewDecision int

const (
	// ReviewAllow lets the commit proceed.
	ReviewAllow ReviewDecision = iota
	// ReviewBlock would stop the commit. Unused by the default policy,
	// reserved for configured policies.
	ReviewBlock
)

func (d ReviewDecision) String() string {
	if d == ReviewBlock {
		return "block"
	}
	return "allow"
}

// ReviewResult carries the decision, whether the gate engaged at all,
// and a reason string describing what was inspected.
type ReviewResult struct {
	Decision ReviewDecision
	Engaged  bool
	Reason   string
}

// EvaluateReview inspects a proposed shell command and the staged file
// list. The gate only engages on git commit and git push; everything
// else passes through untouched. With no policy configured the engaged
// path is deliberately a pass-through: it records what is staged and
// allows. It must never block a commit by default.
func EvaluateReview(command string, staged []project.StagedFile) ReviewResult {
	if !isCommitCommand(command) {
		return ReviewResult{Decision: ReviewAllow}
	}
	if len(staged) == 0 {
		return ReviewResult{
			Decision: ReviewAllow,
			Engaged:  true,
			Reason:   "nothing staged",
		}
	}
	paths := make([]string, len(staged))
	for i, f := range staged {
		paths[i] = f.Path
	}
	return ReviewResult{
		Decision: ReviewAllow,
		Engaged:  true,
		Reason:   fmt.Sprintf("%d staged file(s): %s", len(staged), strings.Join(paths, ", ")),
	}
}

func isCommitCommand(command string) bool {
	if !strings.Contains(command, "git") {
		return false
	}
	return strings.Contains(command, "commit") || strings.Contains(command, "push")
}
