package hooks

import (
	"github.com/devloop-cli/devloop/internal/assemble"
)

// HookSpecificOutput is the envelope the driving tool expects for
// context injection.
type HookSpecificOutput struct {
	AdditionalContext string `json:"additionalContext"`
}

// InjectStateOutput is the inject_state response payload.
type InjectStateOutput struct {
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
}

// injectState composes the full-mode context document. The assembler
// degrades per section, so the worst case is a short document, never a
// missing payload.
func (r *Runner) injectState() InjectStateOutput {
	asm := assemble.New(assemble.Options{
		Project: r.proj,
		Budget:  r.cfg.Context,
		Logger:  r.logger,
	})
	return InjectStateOutput{
		HookSpecificOutput: HookSpecificOutput{
			AdditionalContext: asm.Build(assemble.ModeFull, nil),
		},
	}
}
