package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/telemetry"
)

type fakeModel struct {
	resp       *model.Response
	err        error
	streamer   model.Streamer
	streamErr  error
	generateCt int
	streamCt   int
}

func (f *fakeModel) Provider() string         { return "fake" }
func (f *fakeModel) ModelID() string          { return "fake-model" }
func (f *fakeModel) Metadata() model.Metadata { return model.Metadata{} }

func (f *fakeModel) Generate(context.Context, *model.Request) (*model.Response, error) {
	f.generateCt++
	return f.resp, f.err
}

func (f *fakeModel) Stream(context.Context, *model.Request) (model.Streamer, error) {
	f.streamCt++
	return f.streamer, f.streamErr
}

type fakeSpan struct {
	events []string
	status codes.Code
	errs   []error
	ended  bool
}

func (s *fakeSpan) End(...trace.SpanEndOption) { s.ended = true }
func (s *fakeSpan) AddEvent(name string, _ ...any) {
	s.events = append(s.events, name)
}
func (s *fakeSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *fakeSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

type fakeTracer struct {
	spans []*fakeSpan
}

func (t *fakeTracer) Start(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, telemetry.Span) {
	span := &fakeSpan{}
	t.spans = append(t.spans, span)
	return ctx, span
}

func (t *fakeTracer) Span(ctx context.Context) telemetry.Span { return &fakeSpan{} }

func TestGenerateRecordsUsageAndOkStatus(t *testing.T) {
	inner := &fakeModel{resp: &model.Response{Usage: &model.Usage{InputTokens: 10, OutputTokens: 5}}}
	tracer := &fakeTracer{}
	wrapped := Wrap(inner, tracer)

	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})}}
	if _, err := wrapped.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if inner.generateCt != 1 {
		t.Fatalf("expected inner Generate to be called once, got %d", inner.generateCt)
	}
	if len(tracer.spans) != 1 {
		t.Fatalf("expected one span, got %d", len(tracer.spans))
	}
	span := tracer.spans[0]
	if !span.ended {
		t.Fatalf("expected span to be ended")
	}
	if span.status != codes.Ok {
		t.Fatalf("expected Ok status, got %v", span.status)
	}
}

func TestGenerateRecordsErrorStatus(t *testing.T) {
	wantErr := errors.New("boom")
	inner := &fakeModel{err: wantErr}
	tracer := &fakeTracer{}
	wrapped := Wrap(inner, tracer)

	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})}}
	if _, err := wrapped.Generate(context.Background(), req); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	span := tracer.spans[0]
	if span.status != codes.Error || len(span.errs) != 1 {
		t.Fatalf("expected error status recorded, got status=%v errs=%v", span.status, span.errs)
	}
}

type fakeStreamer struct {
	items []model.PartialResponse
	idx   int
	err   error
}

func (s *fakeStreamer) Next() bool {
	if s.idx >= len(s.items) {
		return false
	}
	s.idx++
	return true
}
func (s *fakeStreamer) Current() model.PartialResponse { return s.items[s.idx-1] }
func (s *fakeStreamer) Err() error                     { return s.err }
func (s *fakeStreamer) Close() error                   { return nil }

func TestStreamClosesSpanOnceDrained(t *testing.T) {
	text := "hi"
	inner := &fakeModel{streamer: &fakeStreamer{items: []model.PartialResponse{
		{Delta: &model.ContentDelta{Index: 0, Part: model.TextPartDelta{Text: text}}},
		{Usage: &model.Usage{InputTokens: 1, OutputTokens: 1}},
	}}}
	tracer := &fakeTracer{}
	wrapped := Wrap(inner, tracer)

	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})}}
	st, err := wrapped.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	for st.Next() {
	}
	if err := st.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	span := tracer.spans[0]
	if !span.ended {
		t.Fatalf("expected span to be ended after drain")
	}
	foundFirstDelta := false
	for _, e := range span.events {
		if e == "first_delta" {
			foundFirstDelta = true
		}
	}
	if !foundFirstDelta {
		t.Fatalf("expected a first_delta event, got %v", span.events)
	}
}
