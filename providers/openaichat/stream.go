package openaichat

import (
	"context"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// streamer adapts a go-openai chat completion stream into a
// model.Streamer. Chat Completions gives each tool call a stable native
// Index field on the delta; the streamer maps those native indices, and the
// single text slot, onto dense indices in first-appearance order.
type streamer struct {
	cancel  context.CancelFunc
	stream  *openai.ChatCompletionStream
	ch      chan model.PartialResponse
	cur     model.PartialResponse
	mu      sync.Mutex
	err     error
	pricing *model.Pricing
}

func newStreamer(ctx context.Context, s *openai.ChatCompletionStream, pricing *model.Pricing) *streamer {
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

	emit := func(p model.PartialResponse) bool {
		select {
		case s.ch <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// The dense-index invariant requires indices to be assigned in
	// first-appearance order, not by the provider's native slot numbers
	// (text has none; tool calls are 0-based per choice).
	next := 0
	textIdx := -1
	toolIdx := map[int]int{}

	for {
		chunk, err := s.stream.Recv()
		if err != nil {
			break
		}
		if len(chunk.Choices) > 0 {
			choice := chunk.Choices[0]
			if choice.Delta.Content != "" {
				if textIdx == -1 {
					textIdx = next
					next++
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{
					Index: textIdx, Part: model.TextPartDelta{Text: choice.Delta.Content},
				}}) {
					return
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				native := 0
				if tc.Index != nil {
					native = *tc.Index
				}
				idx, ok := toolIdx[native]
				if !ok {
					idx = next
					next++
					toolIdx[native] = idx
				}
				delta := model.ToolCallPartDelta{ArgsDelta: tc.Function.Arguments}
				if tc.ID != "" {
					delta.ToolCallID = tc.ID
				}
				if tc.Function.Name != "" {
					delta.ToolName = tc.Function.Name
				}
				if !emit(model.PartialResponse{Delta: &model.ContentDelta{Index: idx, Part: delta}}) {
					return
				}
			}
		}
		if chunk.Usage != nil {
			u := chunk.Usage
			var cachedText, reasoningTokens int
			if u.PromptTokensDetails != nil {
				cachedText = u.PromptTokensDetails.CachedTokens
			}
			if u.CompletionTokensDetails != nil {
				reasoningTokens = u.CompletionTokensDetails.ReasoningTokens
			}
			if !emit(model.PartialResponse{Usage: &model.Usage{
				InputTokens:  u.PromptTokens,
				OutputTokens: u.CompletionTokens,
				InputTokensDetails: &model.TokensDetails{
					TextTokens:       u.PromptTokens - cachedText,
					CachedTextTokens: cachedText,
				},
				OutputTokensDetails: &model.TokensDetails{
					TextTokens: u.CompletionTokens - reasoningTokens,
				},
			}}) {
				return
			}
		}
	}
	if err := ctx.Err(); err != nil {
		s.setErr(apierror.Cancelled())
	}
}
