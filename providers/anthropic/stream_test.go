package anthropic

import (
	"context"
	"encoding/json"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/stream"
)

func mustEvent(t *testing.T, raw string) sdk.MessageStreamEventUnion {
	t.Helper()
	var ev sdk.MessageStreamEventUnion
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return ev
}

func TestStreamerTextAndToolCall(t *testing.T) {
	events := []sdk.MessageStreamEventUnion{
		mustEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hel"}}`),
		mustEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`),
		mustEvent(t, `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"t1","name":"search"}}`),
		mustEvent(t, `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"q\":1}"}}`),
		mustEvent(t, `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"input_tokens":10,"output_tokens":4}}`),
	}
	st := newStreamer(context.Background(), &fakeStream{events: events}, nil, nil)

	acc := stream.New()
	for st.Next() {
		if err := acc.Feed(st.Current()); err != nil {
			t.Fatalf("feed: %v", err)
		}
	}
	if err := st.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	resp := acc.Finalize()
	if len(resp.Content) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(resp.Content))
	}
	if got := resp.Content[0].(model.TextPart).Text; got != "hello" {
		t.Fatalf("unexpected text %q", got)
	}
	tc := resp.Content[1].(model.ToolCallPart)
	if tc.ToolCallID != "t1" || tc.ToolName != "search" {
		t.Fatalf("unexpected tool call %+v", tc)
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 10 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}
