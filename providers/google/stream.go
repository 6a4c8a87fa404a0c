package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"iter"
	"sync"

	"google.golang.org/genai"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/partutil"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

// streamer adapts a genai GenerateContentStream sequence into a
// model.Streamer. Gemini gives no stable per-Part index (text parts are
// just successive candidate.Content.Parts entries, tool calls arrive whole
// rather than incrementally), so indices are inferred with
// partutil.IndexTracker: consecutive text/thought parts of the same
// variant continue the open Part, a function call always starts a new one.
type streamer struct {
	cancel  context.CancelFunc
	ch      chan model.PartialResponse
	cur     model.PartialResponse
	mu      sync.Mutex
	err     error
	pricing *model.Pricing
}

func newStreamer(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error], pricing *model.Pricing) *streamer {
	cctx, cancel := context.WithCancel(ctx)
	st := &streamer{cancel: cancel, ch: make(chan model.PartialResponse, 32), pricing: pricing}
	go st.run(cctx, seq)
	return st
}

func (s *streamer) Next() bool {
	v, ok := <-s.ch
	if !ok {
		return false
	}
	s.cur = v
	return true
}

func (s *streamer) Current() model.PartialResponse { return s.cur }

func (s *streamer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *streamer) Close() error {
	s.cancel()
	return nil
}

func (s *streamer) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *streamer) run(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) {
	defer close(s.ch)
	tracker := partutil.NewIndexTracker()
	var lastUsage *genai.GenerateContentResponseUsageMetadata

	emit := func(p model.PartialResponse) bool {
		select {
		case s.ch <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for resp, err := range seq {
		if err != nil {
			s.setErr(apierror.Transport(err))
			return
		}
		if resp.UsageMetadata != nil {
			lastUsage = resp.UsageMetadata
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, p := range resp.Candidates[0].Content.Parts {
			switch {
			case p.FunctionCall != nil:
				tracker.Close()
				idx := tracker.StartNew(model.PartTypeToolCall, p.FunctionCall.ID)
				args, _ := json.Marshal(p.FunctionCall.Args)
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx,
					Part: model.ToolCallPartDelta{
						ToolCallID: p.FunctionCall.ID,
						ToolName:   p.FunctionCall.Name,
						ArgsDelta:  string(args),
					},
				}}) {
					return
				}
				tracker.Close()
			case p.Thought:
				idx := tracker.Continue(model.PartTypeReasoning, "")
				delta := model.ReasoningPartDelta{Text: p.Text}
				if len(p.ThoughtSignature) > 0 {
					delta.Signature = base64.StdEncoding.EncodeToString(p.ThoughtSignature)
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{Index: idx, Part: delta}}) {
					return
				}
			case p.Text != "":
				idx := tracker.Continue(model.PartTypeText, "")
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx, Part: model.TextPartDelta{Text: p.Text},
				}}) {
					return
				}
			}
		}
	}

	if lastUsage != nil {
		cachedText := int(lastUsage.CachedContentTokenCount)
		usageVal := &model.Usage{
			InputTokens:  int(lastUsage.PromptTokenCount),
			OutputTokens: int(lastUsage.CandidatesTokenCount) + int(lastUsage.ThoughtsTokenCount),
			InputTokensDetails: &model.TokensDetails{
				TextTokens:       int(lastUsage.PromptTokenCount) - cachedText,
				CachedTextTokens: cachedText,
			},
			OutputTokensDetails: &model.TokensDetails{
				TextTokens: int(lastUsage.CandidatesTokenCount),
			},
		}
		part := model.PartialResponse{Usage: usageVal}
		if s.pricing != nil {
			cost := usage.Calculate(usageVal, s.pricing)
			part.Cost = &cost
		}
		if !emit(part) {
			return
		}
	}
	if err := ctx.Err(); err != nil {
		s.setErr(apierror.Cancelled())
	}
}
