package openairesponses

import (
	"context"
	"sync"

	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/partutil"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

// streamer adapts an OpenAI Responses SSE stream into a model.Streamer.
// The Responses API does not expose a stable content-block index the way
// Anthropic does, so indices are inferred via partutil.IndexTracker keyed
// off each event's item id.
type streamer struct {
	cancel  context.CancelFunc
	stream  *ssestream.Stream[responses.ResponseStreamEventUnion]
	ch      chan model.PartialResponse
	cur     model.PartialResponse
	mu      sync.Mutex
	err     error
	pricing *model.Pricing
}

func newStreamer(ctx context.Context, s *ssestream.Stream[responses.ResponseStreamEventUnion], pricing *model.Pricing) *streamer {
	cctx, cancel := context.WithCancel(ctx)
	st := &streamer{cancel: cancel, stream: s, ch: make(chan model.PartialResponse, 32), pricing: pricing}
	go st.run(cctx)
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
	if s.stream == nil {
		return nil
	}
	return s.stream.Close()
}

func (s *streamer) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *streamer) run(ctx context.Context) {
	defer close(s.ch)
	tracker := partutil.NewIndexTracker()
	itemIdx := map[string]int{}
	toolNames := map[string]string{}

	emit := func(p model.PartialResponse) bool {
		select {
		case s.ch <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for s.stream.Next() {
		event := s.stream.Current()
		switch event.Type {
		case "response.output_item.added":
			if event.Item.Type == "function_call" && event.Item.ID != "" {
				idx := tracker.StartNew(model.PartTypeToolCall, event.Item.CallID)
				itemIdx[event.Item.ID] = idx
				toolNames[event.Item.ID] = event.Item.Name
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx,
					Part:  model.ToolCallPartDelta{ToolCallID: event.Item.CallID, ToolName: event.Item.Name},
				}}) {
					return
				}
			} else if event.Item.Type == "message" {
				idx := tracker.StartNew(model.PartTypeText, "")
				itemIdx[event.Item.ID] = idx
			} else if event.Item.Type == "reasoning" {
				idx := tracker.StartNew(model.PartTypeReasoning, "")
				itemIdx[event.Item.ID] = idx
			}
		case "response.output_text.delta":
			if event.Delta.OfString == "" {
				continue
			}
			idx, ok := itemIdx[event.ItemID]
			if !ok {
				idx = tracker.Continue(model.PartTypeText, "")
				itemIdx[event.ItemID] = idx
			}
			if !emit(model.PartialResponse{Delta: &model.ContentDelta{
				Index: idx, Part: model.TextPartDelta{Text: event.Delta.OfString},
			}}) {
				return
			}
		case "response.reasoning_summary_text.delta":
			idx, ok := itemIdx[event.ItemID]
			if !ok {
				idx = tracker.Continue(model.PartTypeReasoning, "")
				itemIdx[event.ItemID] = idx
			}
			if !emit(model.PartialResponse{Delta: &model.ContentDelta{
				Index: idx, Part: model.ReasoningPartDelta{Text: event.Delta.OfString},
			}}) {
				return
			}
		case "response.function_call_arguments.delta":
			if event.Delta.OfString == "" {
				continue
			}
			idx, ok := itemIdx[event.ItemID]
			if !ok {
				idx = tracker.Continue(model.PartTypeToolCall, "")
				itemIdx[event.ItemID] = idx
			}
			if !emit(model.PartialResponse{Delta: &model.ContentDelta{
				Index: idx, Part: model.ToolCallPartDelta{ArgsDelta: event.Delta.OfString},
			}}) {
				return
			}
		case "response.completed":
			u := event.Response.Usage
			if u.InputTokens != 0 || u.OutputTokens != 0 {
				usageVal := &model.Usage{
					InputTokens:  int(u.InputTokens),
					OutputTokens: int(u.OutputTokens),
					InputTokensDetails: &model.TokensDetails{
						TextTokens:       int(u.InputTokens - u.InputTokensDetails.CachedTokens),
						CachedTextTokens: int(u.InputTokensDetails.CachedTokens),
					},
					OutputTokensDetails: &model.TokensDetails{
						TextTokens: int(u.OutputTokens - u.OutputTokensDetails.ReasoningTokens),
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
		}
	}
	if err := s.stream.Err(); err != nil {
		s.setErr(apierror.Transport(err))
		return
	}
	if err := ctx.Err(); err != nil {
		s.setErr(apierror.Cancelled())
	}
}
