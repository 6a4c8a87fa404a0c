// Package agent implements the in-process, non-durable turn-taking loop
// that alternates model generations with tool executions until a Run
// reaches a terminal condition, surfacing a uniform stream of partial
// deltas and materialized Items.
package agent

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hoangvvo/llm-sdk-sub003/agent/toolkit"
	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/stream"
)

// defaultMaxTurns is used when an Agent's MaxTurns is unset (zero).
const defaultMaxTurns = 10

// Agent is a stateless blueprint: the same Agent value is safe to share
// across concurrent Runs. A Run owns all of its own mutable state.
type Agent struct {
	Name  string
	Model model.LanguageModel

	// Instructions are resolved, in order, into the system prompt at the
	// start of every turn.
	Instructions []Instruction

	// Tools are available on every turn in addition to whatever the
	// configured Toolkits' Sessions surface for that turn.
	Tools    []toolkit.Tool
	Toolkits []toolkit.Toolkit

	ResponseFormat *model.ResponseFormat

	Temperature      *float64
	TopP             *float64
	TopK             *int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Seed             *int64

	Modalities []model.Modality
	Audio      *model.AudioOptions
	Reasoning  *model.ReasoningOptions

	// MaxTurns caps the number of model calls in a single Run. Zero means
	// defaultMaxTurns.
	MaxTurns int
}

// Request carries one Run's input: prior conversation (as Items) and a
// caller-supplied context value threaded through dynamic instructions and
// toolkit sessions.
type Request struct {
	Input   []Item
	Context any
}

func (a *Agent) maxTurns() int {
	if a.MaxTurns > 0 {
		return a.MaxTurns
	}
	return defaultMaxTurns
}

// Run executes one non-streaming Run: every model call uses
// Model.Generate, so no partial events are produced.
func (a *Agent) Run(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response
	err := a.execute(ctx, req, false, func(StreamEvent) {}, func(r *Response) { resp = r })
	return resp, err
}

// RunStream executes one streaming Run: every model call uses
// Model.Stream, and the returned EventStreamer emits a partial event per
// delta alongside the item/response events Run itself observes internally.
func (a *Agent) RunStream(ctx context.Context, req *Request) EventStreamer {
	ctx, cancel := context.WithCancel(ctx)
	events := make(chan StreamEvent)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		err := a.execute(ctx, req, true, func(ev StreamEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}, func(*Response) {})
		errc <- err
	}()

	return &eventStreamer{ctx: ctx, cancel: cancel, events: events, errc: errc}
}

// execute runs the turn-taking state machine
// (RESOLVING_INSTRUCTIONS -> AWAITING_MODEL -> STREAMING_MODEL ->
// EXECUTING_TOOLS -> (AWAITING_MODEL|DONE|ABORTED)) once, emitting events
// through emit and handing the final Response to finish before returning.
func (a *Agent) execute(ctx context.Context, req *Request, streaming bool, emit func(StreamEvent), finish func(*Response)) error {
	sessions, err := a.createSessions(ctx, req.Context)
	if err != nil {
		return err
	}
	defer closeSessions(context.WithoutCancel(ctx), sessions)

	items := append([]Item(nil), req.Input...)
	var produced []Item
	modelCalls := 0

	for {
		if err := ctx.Err(); err != nil {
			return apierror.Cancelled()
		}

		systemPrompt, err := a.resolveSystemPrompt(ctx, req.Context, sessions)
		if err != nil {
			return err
		}
		toolSet, toolDefs, err := mergeTools(ctx, a.Tools, sessions)
		if err != nil {
			return err
		}

		reqInput := a.buildRequest(systemPrompt, items, toolDefs)

		content, usage, cost, err := a.invokeModel(ctx, reqInput, streaming, emit)
		if err != nil {
			return err
		}
		modelCalls++

		modelItem := ModelItem{Content: content, Usage: usage, Cost: cost, Input: reqInput}
		items = append(items, modelItem)
		produced = append(produced, modelItem)
		emit(itemEvent(modelItem))

		calls := toolCallParts(content)
		if len(calls) == 0 {
			resp := &Response{Output: produced, Content: content}
			emit(responseEvent(resp))
			finish(resp)
			return nil
		}

		toolItems, err := executeToolCalls(ctx, calls, toolSet, emit)
		if err != nil {
			return err
		}
		for _, ti := range toolItems {
			items = append(items, ti)
			produced = append(produced, ti)
		}

		if modelCalls >= a.maxTurns() {
			resp := &Response{Output: produced, Content: content}
			emit(responseEvent(resp))
			finish(resp)
			return apierror.MaxTurnsExceeded(a.maxTurns())
		}
	}
}

func (a *Agent) createSessions(ctx context.Context, runContext any) ([]toolkit.Session, error) {
	sessions := make([]toolkit.Session, 0, len(a.Toolkits))
	for _, tk := range a.Toolkits {
		sess, err := tk.CreateSession(ctx, runContext)
		if err != nil {
			closeSessions(context.WithoutCancel(ctx), sessions)
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func closeSessions(ctx context.Context, sessions []toolkit.Session) {
	for _, sess := range sessions {
		_ = sess.Close(ctx)
	}
}

func (a *Agent) resolveSystemPrompt(ctx context.Context, runContext any, sessions []toolkit.Session) (string, error) {
	var parts []string
	for _, instr := range a.Instructions {
		s, err := instr.resolve(ctx, runContext)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, sess := range sessions {
		s, err := sess.SystemPrompt(ctx)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (a *Agent) buildRequest(systemPrompt string, items []Item, toolDefs []model.ToolDefinition) *model.Request {
	return &model.Request{
		Messages:         serializeItems(items),
		SystemPrompt:     systemPrompt,
		Tools:            toolDefs,
		ResponseFormat:   a.ResponseFormat,
		Temperature:      a.Temperature,
		TopP:             a.TopP,
		TopK:             a.TopK,
		PresencePenalty:  a.PresencePenalty,
		FrequencyPenalty: a.FrequencyPenalty,
		Seed:             a.Seed,
		Modalities:       a.Modalities,
		Audio:            a.Audio,
		Reasoning:        a.Reasoning,
	}
}

func (a *Agent) invokeModel(ctx context.Context, req *model.Request, streaming bool, emit func(StreamEvent)) ([]model.Part, *model.Usage, *float64, error) {
	if !streaming {
		resp, err := a.Model.Generate(ctx, req)
		if err != nil {
			return nil, nil, nil, err
		}
		return resp.Content, resp.Usage, resp.Cost, nil
	}

	st, err := a.Model.Stream(ctx, req)
	if err != nil {
		return nil, nil, nil, err
	}
	defer st.Close()

	acc := stream.New()
	for st.Next() {
		p := st.Current()
		if err := acc.Feed(p); err != nil {
			return nil, nil, nil, err
		}
		if p.Delta != nil {
			emit(partialEvent(*p.Delta))
		}
	}
	if err := st.Err(); err != nil {
		return nil, nil, nil, err
	}
	final := acc.Finalize()
	return final.Content, final.Usage, final.Cost, nil
}

func toolCallParts(content []model.Part) []model.ToolCallPart {
	var calls []model.ToolCallPart
	for _, p := range content {
		if tc, ok := p.(model.ToolCallPart); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

func mergeTools(ctx context.Context, staticTools []toolkit.Tool, sessions []toolkit.Session) (map[string]toolkit.Tool, []model.ToolDefinition, error) {
	merged := make(map[string]toolkit.Tool, len(staticTools))
	for _, t := range staticTools {
		merged[t.Name()] = t
	}
	for _, sess := range sessions {
		dynTools, err := sess.Tools(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, t := range dynTools {
			merged[t.Name()] = t
		}
	}

	defs := make([]model.ToolDefinition, 0, len(merged))
	for _, t := range merged {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return merged, defs, nil
}

func serializeItems(items []Item) []model.Message {
	var msgs []model.Message
	var pendingToolResults []model.Part

	flushToolResults := func() {
		if len(pendingToolResults) > 0 {
			msgs = append(msgs, model.ToolMessage(pendingToolResults...))
			pendingToolResults = nil
		}
	}

	for _, it := range items {
		switch v := it.(type) {
		case MessageItem:
			flushToolResults()
			msgs = append(msgs, v.Message)
		case ModelItem:
			flushToolResults()
			msgs = append(msgs, model.AssistantMessage(v.Content...))
		case ToolItem:
			pendingToolResults = append(pendingToolResults, model.ToolResultPart{
				ToolCallID: v.ToolCallID,
				ToolName:   v.ToolName,
				Content:    v.Output,
				IsError:    v.IsError,
			})
		}
	}
	flushToolResults()
	return msgs
}

// executeToolCalls runs every call concurrently via errgroup.WithContext so
// that cancelling ctx (Run cancellation) cancels every in-flight Execute.
// Results are emitted as item events in completion order as they arrive;
// the returned slice order matches emission order, which is unspecified
// relative to the input call order per spec.
func executeToolCalls(ctx context.Context, calls []model.ToolCallPart, tools map[string]toolkit.Tool, emit func(StreamEvent)) ([]ToolItem, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make(chan ToolItem)
	collected := make([]ToolItem, 0, len(calls))
	done := make(chan struct{})

	go func() {
		for item := range results {
			collected = append(collected, item)
			emit(itemEvent(item))
		}
		close(done)
	}()

	for _, call := range calls {
		call := call
		g.Go(func() error {
			item := executeOneToolCall(gctx, call, tools)
			select {
			case results <- item:
			case <-gctx.Done():
			}
			return nil
		})
	}

	waitErr := g.Wait()
	close(results)
	<-done

	if waitErr != nil {
		return nil, waitErr
	}
	return collected, nil
}

func executeOneToolCall(ctx context.Context, call model.ToolCallPart, tools map[string]toolkit.Tool) ToolItem {
	base := ToolItem{ToolCallID: call.ToolCallID, ToolName: call.ToolName, Input: call.Args}

	t, ok := tools[call.ToolName]
	if !ok {
		base.IsError = true
		base.Output = []model.Part{model.TextPart{Text: "unknown tool: " + call.ToolName}}
		return base
	}

	output, err := t.Execute(ctx, call.Args)
	if err != nil {
		base.IsError = true
		base.Output = []model.Part{model.TextPart{Text: err.Error()}}
		return base
	}
	base.Output = output
	return base
}
