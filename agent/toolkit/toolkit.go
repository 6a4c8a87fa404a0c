// Package toolkit defines the Tool and Toolkit surfaces an Agent draws on:
// Tools are the callable functions offered to a language model, and a
// Toolkit is a factory for per-run Sessions that can surface additional
// instructions and tools dynamically as a run progresses.
package toolkit

import (
	"context"

	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// Tool is a single callable function exposed to the model, either
// configured statically on an Agent or surfaced dynamically by a Session.
// Execute returning a non-nil error produces an error tool-result carrying
// the error's message as text; it never aborts the Run.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) ([]model.Part, error)
}

// ToolFunc adapts a function to the Tool interface for tools with no state
// beyond their closure.
type ToolFunc struct {
	ToolName        string
	ToolDescription string
	ToolParameters  map[string]any
	Func            func(ctx context.Context, args map[string]any) ([]model.Part, error)
}

func (f ToolFunc) Name() string               { return f.ToolName }
func (f ToolFunc) Description() string        { return f.ToolDescription }
func (f ToolFunc) Parameters() map[string]any { return f.ToolParameters }
func (f ToolFunc) Execute(ctx context.Context, args map[string]any) ([]model.Part, error) {
	return f.Func(ctx, args)
}

// Toolkit is a factory for per-run Sessions. CreateSession failures abort
// the owning Run before any model call.
type Toolkit interface {
	CreateSession(ctx context.Context, runContext any) (Session, error)
}

// Session is a per-run, single-owner, mutable provider of additional
// instructions and tools. SystemPrompt and Tools are re-queried at the
// start of every turn so a session can evolve its surface as its internal
// phase changes; Close is called exactly once when the owning Run ends,
// whether the Run completed normally, hit max_turns, or was cancelled.
type Session interface {
	// SystemPrompt returns an additional instruction block for the current
	// turn, or "" if the session has nothing to add this turn.
	SystemPrompt(ctx context.Context) (string, error)
	// Tools returns the dynamic tool set available for the current turn.
	// A tool present at turn N and absent at turn N+1 makes a turn-N+1 call
	// to it an unknown-tool error, not a panic or Run abort.
	Tools(ctx context.Context) ([]Tool, error)
	Close(ctx context.Context) error
}

// ToolkitFunc adapts a function to the Toolkit interface.
type ToolkitFunc func(ctx context.Context, runContext any) (Session, error)

func (f ToolkitFunc) CreateSession(ctx context.Context, runContext any) (Session, error) {
	return f(ctx, runContext)
}
