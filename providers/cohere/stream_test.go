package cohere

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/stream"
)

func TestStreamConcatenatesTextDeltas(t *testing.T) {
	events := []string{
		`{"type":"content-start","index":0}`,
		`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":"Hello, "}}}}`,
		`{"type":"content-delta","index":0,"delta":{"message":{"content":{"text":"world."}}}}`,
		`{"type":"message-end","delta":{"usage":{"billed_units":{"input_tokens":4,"output_tokens":6}}}}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, e := range events {
			fmt.Fprintf(w, "data: %s\n\n", e)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	defer srv.Close()

	cl, err := New(Options{Model: "command-r-plus", APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})}}
	st, err := cl.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer st.Close()

	acc := stream.New()
	for st.Next() {
		if err := acc.Feed(st.Current()); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	if err := st.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	resp := acc.Finalize()
	if len(resp.Content) != 1 {
		t.Fatalf("expected 1 part, got %d: %+v", len(resp.Content), resp.Content)
	}
	if got := resp.Content[0].(model.TextPart).Text; got != "Hello, world." {
		t.Fatalf("unexpected text %q", got)
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 4 || resp.Usage.OutputTokens != 6 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}
