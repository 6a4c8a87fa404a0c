package anthropic

import (
	"context"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hoangvvo/llm-sdk-sub003/model"
)

type stubMessagesClient struct {
	lastParams sdk.MessageNewParams
	resp       *sdk.Message
	err        error
	stream     AnthropicStream
}

func (s *stubMessagesClient) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	s.lastParams = body
	return s.resp, s.err
}

func (s *stubMessagesClient) NewStreaming(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) AnthropicStream {
	s.lastParams = body
	return s.stream
}

type fakeStream struct {
	events []sdk.MessageStreamEventUnion
	i      int
	err    error
}

func (f *fakeStream) Next() bool {
	if f.i >= len(f.events) {
		return false
	}
	f.i++
	return true
}
func (f *fakeStream) Current() sdk.MessageStreamEventUnion { return f.events[f.i-1] }
func (f *fakeStream) Err() error                           { return f.err }
func (f *fakeStream) Close() error                         { return nil }

func TestGenerateTextOnly(t *testing.T) {
	stub := &stubMessagesClient{}
	cl, err := New(stub, Options{Model: "claude-3-5-sonnet", MaxTokens: 128})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hello"})}}

	stub.resp = &sdk.Message{
		Content: []sdk.ContentBlockUnion{{Type: "text", Text: "world"}},
		Usage:   sdk.Usage{InputTokens: 10, OutputTokens: 5},
	}

	resp, err := cl.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Content) != 1 {
		t.Fatalf("expected 1 part, got %d", len(resp.Content))
	}
	if got := resp.Content[0].(model.TextPart).Text; got != "world" {
		t.Fatalf("unexpected text %q", got)
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 5 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}

func TestGenerateRequiresMaxTokens(t *testing.T) {
	stub := &stubMessagesClient{}
	cl, err := New(stub, Options{Model: "claude-3-5-sonnet"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})}}
	if _, err := cl.Generate(context.Background(), req); err == nil {
		t.Fatalf("expected error when max_tokens is unset")
	}
}
