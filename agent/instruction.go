package agent

import "context"

// Instruction contributes one entry to an Agent's system prompt. It is a
// closed set: resolve is unexported so callers only ever construct
// instructions through StaticInstruction or DynamicInstruction.
type Instruction interface {
	resolve(ctx context.Context, runContext any) (string, error)
}

// StaticInstruction is a fixed string contributed verbatim to the system
// prompt on every turn.
type StaticInstruction string

func (s StaticInstruction) resolve(context.Context, any) (string, error) {
	return string(s), nil
}

// DynamicInstruction computes its contribution from the Run's context
// value, re-evaluated at the start of every turn.
type DynamicInstruction func(ctx context.Context, runContext any) (string, error)

func (f DynamicInstruction) resolve(ctx context.Context, runContext any) (string, error) {
	return f(ctx, runContext)
}
