package bedrock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

// streamer adapts a Bedrock ConverseStream event stream into a
// model.Streamer. Bedrock's ContentBlockIndex is a stable native index, so
// it is passed through directly, the same way the Anthropic streamer
// passes through ev.Index rather than inferring one.
type streamer struct {
	cancel context.CancelFunc
	stream *bedrockruntime.ConverseStreamEventStream
	ch     chan model.PartialResponse
	cur    model.PartialResponse

	mu      sync.Mutex
	errSet  bool
	err     error
	pricing *model.Pricing
}

func newStreamer(ctx context.Context, stream *bedrockruntime.ConverseStreamEventStream, toolNames map[string]string, pricing *model.Pricing) *streamer {
	cctx, cancel := context.WithCancel(ctx)
	st := &streamer{cancel: cancel, stream: stream, ch: make(chan model.PartialResponse, 32), pricing: pricing}
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
	return s.err
}

func (s *streamer) Close() error {
	s.cancel()
	return s.stream.Close()
}

func (s *streamer) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.errSet {
		s.errSet = true
		s.err = err
	}
}

func (s *streamer) run(ctx context.Context, toolNames map[string]string) {
	defer close(s.ch)
	defer s.stream.Close()

	emit := func(p model.PartialResponse) bool {
		select {
		case s.ch <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	events := s.stream.Events()

	for {
		select {
		case <-ctx.Done():
			s.setErr(apierror.Cancelled())
			return
		case event, ok := <-events:
			if !ok {
				if err := s.stream.Err(); err != nil {
					s.setErr(translateTransportErr(err))
				}
				return
			}
			if !s.handle(event, toolNames, emit) {
				return
			}
		}
	}
}

func (s *streamer) handle(event any, toolNames map[string]string, emit func(model.PartialResponse) bool) bool {
	switch ev := event.(type) {
	case *brtypes.ConverseStreamOutputMemberContentBlockStart:
		idx := int(aws.ToInt32(ev.Value.ContentBlockIndex))
		start, ok := ev.Value.Start.(*brtypes.ContentBlockStartMemberToolUse)
		if !ok {
			return true
		}
		name := aws.ToString(start.Value.Name)
		if canonical, ok := toolNames[name]; ok {
			name = canonical
		}
		return emit(model.PartialResponse{Delta: &model.ContentDelta{
			Index: idx,
			Part:  model.ToolCallPartDelta{ToolCallID: aws.ToString(start.Value.ToolUseId), ToolName: name},
		}})
	case *brtypes.ConverseStreamOutputMemberContentBlockDelta:
		idx := int(aws.ToInt32(ev.Value.ContentBlockIndex))
		switch delta := ev.Value.Delta.(type) {
		case *brtypes.ContentBlockDeltaMemberText:
			if delta.Value == "" {
				return true
			}
			return emit(model.PartialResponse{Delta: &model.ContentDelta{Index: idx, Part: model.TextPartDelta{Text: delta.Value}}})
		case *brtypes.ContentBlockDeltaMemberToolUse:
			if delta.Value.Input == nil || *delta.Value.Input == "" {
				return true
			}
			return emit(model.PartialResponse{Delta: &model.ContentDelta{Index: idx, Part: model.ToolCallPartDelta{ArgsDelta: *delta.Value.Input}}})
		case *brtypes.ContentBlockDeltaMemberReasoningContent:
			switch rc := delta.Value.(type) {
			case *brtypes.ReasoningContentBlockDeltaMemberText:
				if rc.Value == "" {
					return true
				}
				return emit(model.PartialResponse{Delta: &model.ContentDelta{Index: idx, Part: model.ReasoningPartDelta{Text: rc.Value}}})
			case *brtypes.ReasoningContentBlockDeltaMemberSignature:
				if rc.Value == "" {
					return true
				}
				return emit(model.PartialResponse{Delta: &model.ContentDelta{Index: idx, Part: model.ReasoningPartDelta{Signature: rc.Value}}})
			}
		}
		return true
	case *brtypes.ConverseStreamOutputMemberMetadata:
		if ev.Value.Usage == nil {
			return true
		}
		u := ev.Value.Usage
		usageVal := &model.Usage{
			InputTokens:  int(aws.ToInt32(u.InputTokens)),
			OutputTokens: int(aws.ToInt32(u.OutputTokens)),
			InputTokensDetails: &model.TokensDetails{
				TextTokens:       int(aws.ToInt32(u.InputTokens) - aws.ToInt32(u.CacheReadInputTokens)),
				CachedTextTokens: int(aws.ToInt32(u.CacheReadInputTokens)),
			},
			OutputTokensDetails: &model.TokensDetails{TextTokens: int(aws.ToInt32(u.OutputTokens))},
		}
		part := model.PartialResponse{Usage: usageVal}
		if s.pricing != nil {
			cost := usage.Calculate(usageVal, s.pricing)
			part.Cost = &cost
		}
		return emit(part)
	}
	return true
}
