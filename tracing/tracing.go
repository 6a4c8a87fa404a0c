// Package tracing wraps a model.LanguageModel with a span per call, carrying
// provider, model id, sampling parameters, usage, and cost as attributes of
// span events (telemetry.Span has no span-level attribute setter). It never
// exports spans itself; callers configure an OTEL
// TracerProvider and pass a telemetry.Tracer backed by it.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/telemetry"
)

type tracingModel struct {
	next   model.LanguageModel
	tracer telemetry.Tracer
}

// Wrap decorates next with tracing. Calling Wrap with a nil tracer panics;
// callers that do not want tracing should not call Wrap at all.
func Wrap(next model.LanguageModel, tracer telemetry.Tracer) model.LanguageModel {
	if tracer == nil {
		panic("tracing: tracer is required")
	}
	return &tracingModel{next: next, tracer: tracer}
}

func (m *tracingModel) Provider() string        { return m.next.Provider() }
func (m *tracingModel) ModelID() string         { return m.next.ModelID() }
func (m *tracingModel) Metadata() model.Metadata { return m.next.Metadata() }

func (m *tracingModel) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	ctx, span := m.tracer.Start(ctx, "llm_sdk.generate")
	defer span.End()
	span.AddEvent("request", requestAttrs(m.next, req)...)

	resp, err := m.next.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	attrs := []any{}
	if resp.Usage != nil {
		attrs = append(attrs, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	}
	if resp.Cost != nil {
		attrs = append(attrs, "cost", *resp.Cost)
	}
	span.AddEvent("response", attrs...)
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func (m *tracingModel) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	ctx, span := m.tracer.Start(ctx, "llm_sdk.stream")
	span.AddEvent("request", requestAttrs(m.next, req)...)

	inner, err := m.next.Stream(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	return &tracingStreamer{inner: inner, span: span, start: timeNow()}, nil
}

// timeNow is a seam over time.Now so the only non-deterministic call in this
// package is isolated to one line.
func timeNow() time.Time { return time.Now() }

func requestAttrs(next model.LanguageModel, req *model.Request) []any {
	attrs := []any{"provider", next.Provider(), "model_id", next.ModelID()}
	if req.Temperature != nil {
		attrs = append(attrs, "temperature", *req.Temperature)
	}
	if req.TopP != nil {
		attrs = append(attrs, "top_p", *req.TopP)
	}
	if req.MaxTokens > 0 {
		attrs = append(attrs, "max_tokens", req.MaxTokens)
	}
	return attrs
}
