package openairesponses

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/stream"
)

// testDecoder feeds a fixed sequence of events to the ssestream.Stream,
// mirroring how the Responses SSE transport decodes server-sent events.
type testDecoder struct {
	events []ssestream.Event
	i      int
}

func (d *testDecoder) Event() ssestream.Event { return d.events[d.i-1] }

func (d *testDecoder) Next() bool {
	if d.i >= len(d.events) {
		return false
	}
	d.i++
	return true
}

func (d *testDecoder) Close() error { return nil }
func (d *testDecoder) Err() error   { return nil }

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func unionFromJSON(raw string) responses.ResponseStreamEventUnion {
	var ev responses.ResponseStreamEventUnion
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		panic(err)
	}
	return ev
}

func TestStreamTextAndToolCall(t *testing.T) {
	itemAdded := unionFromJSON(`{
		"type": "response.output_item.added",
		"output_index": 0,
		"item": {"type": "function_call", "id": "fc_1", "call_id": "call_1", "name": "lookup", "arguments": ""}
	}`)
	argsDelta := unionFromJSON(`{
		"type": "response.function_call_arguments.delta",
		"item_id": "fc_1",
		"output_index": 0,
		"delta": "{\"q\":1}"
	}`)
	textAdded := unionFromJSON(`{
		"type": "response.output_item.added",
		"output_index": 1,
		"item": {"type": "message", "id": "msg_1"}
	}`)
	textDelta := unionFromJSON(`{
		"type": "response.output_text.delta",
		"item_id": "msg_1",
		"output_index": 1,
		"content_index": 0,
		"delta": "hi there"
	}`)
	completed := unionFromJSON(`{
		"type": "response.completed",
		"response": {
			"id": "resp_1",
			"output": [],
			"usage": {
				"input_tokens": 10,
				"output_tokens": 20,
				"input_tokens_details": {"cached_tokens": 2},
				"output_tokens_details": {"reasoning_tokens": 3}
			}
		}
	}`)

	events := []ssestream.Event{
		{Type: string(itemAdded.Type), Data: mustJSON(itemAdded)},
		{Type: string(argsDelta.Type), Data: mustJSON(argsDelta)},
		{Type: string(textAdded.Type), Data: mustJSON(textAdded)},
		{Type: string(textDelta.Type), Data: mustJSON(textDelta)},
		{Type: string(completed.Type), Data: mustJSON(completed)},
	}

	dec := &testDecoder{events: events}
	sdkStream := ssestream.NewStream[responses.ResponseStreamEventUnion](dec, nil)

	s := newStreamer(context.Background(), sdkStream, nil)
	defer s.Close()

	acc := stream.New()
	for s.Next() {
		if err := acc.Feed(s.Current()); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	final := acc.Finalize()
	if len(final.Content) != 2 {
		t.Fatalf("expected a tool-call part and a text part, got %+v", final.Content)
	}

	tc, ok := final.Content[0].(model.ToolCallPart)
	if !ok || tc.ToolCallID != "call_1" || tc.ToolName != "lookup" || tc.Args["q"] != 1.0 {
		t.Fatalf("unexpected tool call: %+v", final.Content[0])
	}

	text, ok := final.Content[1].(model.TextPart)
	if !ok || text.Text != "hi there" {
		t.Fatalf("unexpected text part: %+v", final.Content[1])
	}

	if final.Usage == nil || final.Usage.InputTokens != 10 || final.Usage.OutputTokens != 20 {
		t.Fatalf("unexpected usage: %+v", final.Usage)
	}
	if final.Usage.InputTokensDetails.CachedTextTokens != 2 {
		t.Fatalf("expected cached tokens to carry through, got %+v", final.Usage.InputTokensDetails)
	}
	if final.Usage.OutputTokensDetails.TextTokens != 17 {
		t.Fatalf("expected reasoning tokens to be subtracted out of text tokens, got %+v", final.Usage.OutputTokensDetails)
	}
}

func TestStreamReasoningDelta(t *testing.T) {
	itemAdded := unionFromJSON(`{
		"type": "response.output_item.added",
		"output_index": 0,
		"item": {"type": "reasoning", "id": "r1"}
	}`)
	reasoningDelta := unionFromJSON(`{
		"type": "response.reasoning_summary_text.delta",
		"item_id": "r1",
		"output_index": 0,
		"summary_index": 0,
		"delta": "thinking"
	}`)

	events := []ssestream.Event{
		{Type: string(itemAdded.Type), Data: mustJSON(itemAdded)},
		{Type: string(reasoningDelta.Type), Data: mustJSON(reasoningDelta)},
	}

	dec := &testDecoder{events: events}
	sdkStream := ssestream.NewStream[responses.ResponseStreamEventUnion](dec, nil)

	s := newStreamer(context.Background(), sdkStream, nil)
	defer s.Close()

	acc := stream.New()
	for s.Next() {
		if err := acc.Feed(s.Current()); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	final := acc.Finalize()
	if len(final.Content) != 1 {
		t.Fatalf("expected one reasoning part, got %+v", final.Content)
	}
	r, ok := final.Content[0].(model.ReasoningPart)
	if !ok || r.Text != "thinking" {
		t.Fatalf("unexpected reasoning part: %+v", final.Content[0])
	}
}
