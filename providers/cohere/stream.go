package cohere

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/internal/httpsse"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

// streamer adapts a Cohere Chat v2 SSE event sequence into a
// model.Streamer. Chat v2 tags every content event with a stable "index"
// field scoped to the response, so it is used directly rather than through
// partutil.IndexTracker.
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

	for {
		raw, ok, err := s.events.Next()
		if err != nil {
			s.setErr(err)
			return
		}
		if !ok {
			break
		}
		var ev streamEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.setErr(apierror.Invariant("cohere: could not decode stream event", err))
			return
		}
		idx := 0
		if ev.Index != nil {
			idx = *ev.Index
		}
		switch ev.Type {
		case "content-delta":
			if ev.Delta.Message.Content.Text == "" {
				continue
			}
			if !emit(model.PartialResponse{Delta: &model.ContentDelta{
				Index: idx, Part: model.TextPartDelta{Text: ev.Delta.Message.Content.Text},
			}}) {
				return
			}
		case "tool-call-start":
			if !emit(model.PartialResponse{Delta: &model.ContentDelta{
				Index: idx,
				Part: model.ToolCallPartDelta{
					ToolCallID: ev.Delta.Message.ToolCalls.ID,
					ToolName:   ev.Delta.Message.ToolCalls.Function.Name,
					ArgsDelta:  ev.Delta.Message.ToolCalls.Function.Arguments,
				},
			}}) {
				return
			}
		case "tool-call-delta":
			if !emit(model.PartialResponse{Delta: &model.ContentDelta{
				Index: idx,
				Part:  model.ToolCallPartDelta{ArgsDelta: ev.Delta.Message.ToolCalls.Function.Arguments},
			}}) {
				return
			}
		case "message-end":
			in := int(ev.Delta.Usage.BilledUnits.InputTokens)
			out := int(ev.Delta.Usage.BilledUnits.OutputTokens)
			if in != 0 || out != 0 {
				usageVal := &model.Usage{
					InputTokens:         in,
					OutputTokens:        out,
					InputTokensDetails:  &model.TokensDetails{TextTokens: in},
					OutputTokensDetails: &model.TokensDetails{TextTokens: out},
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
	if err := ctx.Err(); err != nil {
		s.setErr(apierror.Cancelled())
	}
}
