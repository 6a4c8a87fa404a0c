package mistral

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/internal/httpsse"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

// streamer adapts a Mistral chat completions SSE event sequence into a
// model.Streamer. Like OpenAI Chat Completions (the format it mirrors),
// tool-call deltas carry a per-choice Index but text deltas carry none, so
// indices are assigned in first-appearance order rather than passed
// through, for the same reason documented on the openaichat streamer.
type streamer struct {
	cancel  context.CancelFunc
	events  *httpsse.EventReader
	ch      chan model.PartialResponse
	cur     model.PartialResponse
	mu      sync.Mutex
	err     error
	pricing *model.Pricing
}

func newStreamer(ctx context.Context, events *httpsse.EventReader, pricing *model.Pricing) *streamer {
	cctx, cancel := context.WithCancel(ctx)
	st := &streamer{cancel: cancel, events: events, ch: make(chan model.PartialResponse, 32), pricing: pricing}
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
	return s.events.Close()
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

	emit := func(p model.PartialResponse) bool {
		select {
		case s.ch <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	next := 0
	textIdx := -1
	toolIdx := map[int]int{}

	for {
		raw, ok, err := s.events.Next()
		if err != nil {
			s.setErr(err)
			return
		}
		if !ok {
			break
		}
		var chunk streamChunk
		if err := json.Unmarshal(raw, &chunk); err != nil {
			s.setErr(apierror.Invariant("mistral: could not decode stream event", err))
			return
		}
		if len(chunk.Choices) > 0 {
			delta := chunk.Choices[0].Delta
			if delta.Content != "" {
				if textIdx == -1 {
					textIdx = next
					next++
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: textIdx, Part: model.TextPartDelta{Text: delta.Content},
				}}) {
					return
				}
			}
			for _, tc := range delta.ToolCalls {
				idx, ok := toolIdx[tc.Index]
				if !ok {
					idx = next
					next++
					toolIdx[tc.Index] = idx
				}
				d := model.ToolCallPartDelta{ArgsDelta: tc.Function.Arguments}
				if tc.ID != "" {
					d.ToolCallID = tc.ID
				}
				if tc.Function.Name != "" {
					d.ToolName = tc.Function.Name
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{Index: idx, Part: d}}) {
					return
				}
			}
		}
		if chunk.Usage != nil {
			u := chunk.Usage
			usageVal := &model.Usage{
				InputTokens:         u.PromptTokens,
				OutputTokens:        u.CompletionTokens,
				InputTokensDetails:  &model.TokensDetails{TextTokens: u.PromptTokens},
				OutputTokensDetails: &model.TokensDetails{TextTokens: u.CompletionTokens},
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
	if err := ctx.Err(); err != nil {
		s.setErr(apierror.Cancelled())
	}
}
