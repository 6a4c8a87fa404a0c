package openairesponses

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

type stubResponsesService struct {
	lastParams responses.ResponseNewParams
	resp       *responses.Response
	err        error
	stream     *ssestream.Stream[responses.ResponseStreamEventUnion]
}

func (s *stubResponsesService) New(_ context.Context, body responses.ResponseNewParams, _ ...option.RequestOption) (*responses.Response, error) {
	s.lastParams = body
	return s.resp, s.err
}

func (s *stubResponsesService) NewStreaming(_ context.Context, body responses.ResponseNewParams, _ ...option.RequestOption) *ssestream.Stream[responses.ResponseStreamEventUnion] {
	s.lastParams = body
	return s.stream
}

func TestNewRejectsNilService(t *testing.T) {
	if _, err := New(nil, Options{Model: "gpt-5"}); !apierror.Is(err, apierror.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestGenerateTextOnly(t *testing.T) {
	stub := &stubResponsesService{}
	cl, err := New(stub, Options{Model: "gpt-5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stub.resp = &responses.Response{
		Output: []responses.ResponseOutputItemUnion{
			{
				Type: "message",
				Content: []responses.ResponseOutputMessageContentUnion{
					{Type: "output_text", Text: "Hello, world!"},
				},
			},
		},
		Status: "completed",
		Usage: responses.ResponseUsage{
			InputTokens:  10,
			OutputTokens: 20,
			TotalTokens:  30,
		},
	}

	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})}}
	resp, err := cl.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Content) != 1 {
		t.Fatalf("expected one content part, got %+v", resp.Content)
	}
	text, ok := resp.Content[0].(model.TextPart)
	if !ok || text.Text != "Hello, world!" {
		t.Fatalf("expected text part %q, got %+v", "Hello, world!", resp.Content[0])
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 20 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if stub.lastParams.Model != "gpt-5" {
		t.Fatalf("expected model gpt-5, got %q", stub.lastParams.Model)
	}
}

func TestGenerateFunctionCall(t *testing.T) {
	stub := &stubResponsesService{
		resp: &responses.Response{
			Output: []responses.ResponseOutputItemUnion{
				{Type: "function_call", CallID: "call_abc123", Name: "get_weather", Arguments: `{"location":"Tokyo"}`},
			},
			Status: "completed",
		},
	}
	cl, err := New(stub, Options{Model: "gpt-5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := cl.Generate(context.Background(), &model.Request{
		Messages: []model.Message{model.UserMessage(model.TextPart{Text: "weather?"})},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Content) != 1 {
		t.Fatalf("expected one content part, got %+v", resp.Content)
	}
	tc, ok := resp.Content[0].(model.ToolCallPart)
	if !ok {
		t.Fatalf("expected a tool-call part, got %+v", resp.Content[0])
	}
	if tc.ToolCallID != "call_abc123" || tc.ToolName != "get_weather" || tc.Args["location"] != "Tokyo" {
		t.Fatalf("unexpected tool call: %+v", tc)
	}
}

func TestGenerateReasoningSummary(t *testing.T) {
	stub := &stubResponsesService{
		resp: &responses.Response{
			Output: []responses.ResponseOutputItemUnion{
				{
					ID:   "r1",
					Type: "reasoning",
					Summary: []responses.ResponseReasoningItemSummaryUnion{
						{Type: "summary_text", Text: "thinking it through"},
					},
				},
			},
			Status: "completed",
		},
	}
	cl, err := New(stub, Options{Model: "gpt-5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := cl.Generate(context.Background(), &model.Request{
		Messages: []model.Message{model.UserMessage(model.TextPart{Text: "why?"})},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Content) != 1 {
		t.Fatalf("expected one content part, got %+v", resp.Content)
	}
	r, ok := resp.Content[0].(model.ReasoningPart)
	if !ok || r.Text != "thinking it through" || r.ID != "r1" {
		t.Fatalf("unexpected reasoning part: %+v", resp.Content[0])
	}
}

func TestGenerateRejectsEmptyMessages(t *testing.T) {
	cl, err := New(&stubResponsesService{}, Options{Model: "gpt-5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = cl.Generate(context.Background(), &model.Request{})
	if !apierror.Is(err, apierror.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestGenerateWrapsTransportErrors(t *testing.T) {
	stub := &stubResponsesService{err: errors.New("boom")}
	cl, err := New(stub, Options{Model: "gpt-5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = cl.Generate(context.Background(), &model.Request{
		Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})},
	})
	if !apierror.Is(err, apierror.KindTransport) {
		t.Fatalf("expected KindTransport, got %v", err)
	}
}

func TestGenerateRejectsSourcePartInUserMessage(t *testing.T) {
	cl, err := New(&stubResponsesService{}, Options{Model: "gpt-5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := &model.Request{
		Messages: []model.Message{model.UserMessage(model.SourcePart{Source: "x", Title: "y"})},
	}
	_, err = cl.Generate(context.Background(), req)
	if !apierror.Is(err, apierror.KindUnsupported) {
		t.Fatalf("expected KindUnsupported, got %v", err)
	}
}

func TestGenerateEncodesJSONSchemaResponseFormat(t *testing.T) {
	stub := &stubResponsesService{resp: &responses.Response{Status: "completed"}}
	cl, err := New(stub, Options{Model: "gpt-5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := &model.Request{
		Messages: []model.Message{model.UserMessage(model.TextPart{Text: "go"})},
		ResponseFormat: &model.ResponseFormat{
			Kind:   model.ResponseFormatKindJSON,
			Name:   "recipe",
			Schema: map[string]any{"type": "object"},
		},
	}
	if _, err := cl.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if stub.lastParams.Text.Format.OfJSONSchema == nil {
		t.Fatalf("expected a json_schema text format, got %+v", stub.lastParams.Text)
	}
	if stub.lastParams.Text.Format.OfJSONSchema.Name != "recipe" {
		t.Fatalf("expected schema name recipe, got %+v", stub.lastParams.Text.Format.OfJSONSchema)
	}
}
