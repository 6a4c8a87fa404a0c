package tracing

import (
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/telemetry"
)

// tracingStreamer wraps a model.Streamer so the span opened by
// tracingModel.Stream stays open for the life of the stream. A first_delta
// event and one usage event per usage-bearing partial are added as they
// arrive; the span is given its status and ended once the caller drains or
// closes the stream. No summed usage or cost is recorded when it ends.
type tracingStreamer struct {
	inner model.Streamer
	span  telemetry.Span
	start time.Time

	firstDeltaRecorded bool
	ended              bool

	cur model.PartialResponse
}

func (s *tracingStreamer) Next() bool {
	ok := s.inner.Next()
	if !ok {
		s.finish(s.inner.Err())
		return false
	}
	s.cur = s.inner.Current()
	if !s.firstDeltaRecorded && s.cur.Delta != nil {
		s.firstDeltaRecorded = true
		s.span.AddEvent("first_delta", "time_to_first_delta_ms", time.Since(s.start).Milliseconds())
	}
	if s.cur.Usage != nil {
		attrs := []any{"input_tokens", s.cur.Usage.InputTokens, "output_tokens", s.cur.Usage.OutputTokens}
		if s.cur.Cost != nil {
			attrs = append(attrs, "cost", *s.cur.Cost)
		}
		s.span.AddEvent("usage", attrs...)
	}
	return true
}

func (s *tracingStreamer) Current() model.PartialResponse { return s.cur }

func (s *tracingStreamer) Err() error { return s.inner.Err() }

func (s *tracingStreamer) Close() error {
	err := s.inner.Close()
	s.finish(err)
	return err
}

func (s *tracingStreamer) finish(err error) {
	if s.ended {
		return
	}
	s.ended = true
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
