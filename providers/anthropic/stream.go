package anthropic

import (
	"context"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

// streamer adapts an Anthropic SSE stream into a model.Streamer, mirroring
// the per-index open-block bookkeeping Anthropic's content_block_start/stop
// events already impose: a goroutine drains the SDK stream and publishes
// one model.PartialResponse per emitted delta over a buffered channel.
type streamer struct {
	cancel context.CancelFunc
	stream AnthropicStream
	ch     chan model.PartialResponse
	cur    model.PartialResponse

	mu       sync.Mutex
	finalErr error
	toolIDs  map[int]string // index -> tool_call_id, set on content_block_start
	pricing  *model.Pricing
}

func newStreamer(ctx context.Context, s AnthropicStream, toolNames map[string]string, pricing *model.Pricing) *streamer {
	cctx, cancel := context.WithCancel(ctx)
	st := &streamer{
		cancel:  cancel,
		stream:  s,
		ch:      make(chan model.PartialResponse, 32),
		toolIDs: map[int]string{},
		pricing: pricing,
	}
	go st.run(cctx, toolNames)
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
	return s.finalErr
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
	if s.finalErr == nil {
		s.finalErr = err
	}
}

func (s *streamer) run(ctx context.Context, toolNames map[string]string) {
	defer close(s.ch)
	toolNameByIdx := map[int]string{}
	var stopReason string

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
		switch ev := event.AsAny().(type) {
		case sdk.ContentBlockStartEvent:
			idx := int(ev.Index)
			if tu, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
				name := tu.Name
				if canonical, ok := toolNames[name]; ok {
					name = canonical
				}
				toolNameByIdx[idx] = name
				s.toolIDs[idx] = tu.ID
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx,
					Part:  model.ToolCallPartDelta{ToolCallID: tu.ID, ToolName: name},
				}}) {
					return
				}
			}
		case sdk.ContentBlockDeltaEvent:
			idx := int(ev.Index)
			switch d := ev.Delta.AsAny().(type) {
			case sdk.TextDelta:
				if d.Text == "" {
					continue
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx, Part: model.TextPartDelta{Text: d.Text},
				}}) {
					return
				}
			case sdk.InputJSONDelta:
				if d.PartialJSON == "" {
					continue
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx, Part: model.ToolCallPartDelta{ArgsDelta: d.PartialJSON},
				}}) {
					return
				}
			case sdk.ThinkingDelta:
				if d.Thinking == "" {
					continue
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx, Part: model.ReasoningPartDelta{Text: d.Thinking},
				}}) {
					return
				}
			case sdk.SignatureDelta:
				if d.Signature == "" {
					continue
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: idx, Part: model.ReasoningPartDelta{Signature: d.Signature},
				}}) {
					return
				}
			}
		case sdk.MessageDeltaEvent:
			stopReason = string(ev.Delta.StopReason)
			u := ev.Usage
			usageVal := &model.Usage{
				InputTokens:  int(u.InputTokens),
				OutputTokens: int(u.OutputTokens),
				InputTokensDetails: &model.TokensDetails{
					TextTokens:       int(u.InputTokens - u.CacheReadInputTokens - u.CacheCreationInputTokens),
					CachedTextTokens: int(u.CacheReadInputTokens + u.CacheCreationInputTokens),
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
		case sdk.MessageStopEvent:
			_ = stopReason
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
