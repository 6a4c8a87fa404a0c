package google

import (
	"context"
	"iter"
	"testing"

	"google.golang.org/genai"

	"github.com/hoangvvo/llm-sdk-sub003/model"
)

type stubModelsClient struct {
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
	resp         *genai.GenerateContentResponse
	err          error
	stream       []streamItem
}

type streamItem struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (s *stubModelsClient) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.lastContents = contents
	s.lastConfig = cfg
	return s.resp, s.err
}

func (s *stubModelsClient) GenerateContentStream(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	s.lastContents = contents
	s.lastConfig = cfg
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, item := range s.stream {
			if !yield(item.resp, item.err) {
				return
			}
		}
	}
}

func TestGenerateTextOnly(t *testing.T) {
	stub := &stubModelsClient{}
	cl, err := New(stub, Options{Model: "gemini-2.5-pro"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hello"})}}

	stub.resp = &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: "world"}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount: 10, CandidatesTokenCount: 5,
		},
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

func TestNewRequiresModel(t *testing.T) {
	stub := &stubModelsClient{}
	if _, err := New(stub, Options{}); err == nil {
		t.Fatalf("expected error when model is unset")
	}
}

func TestEncodeMessagesRejectsSourceParts(t *testing.T) {
	_, err := encodeMessages([]model.Message{
		model.UserMessage(model.SourcePart{Source: "https://example.com", Title: "doc"}),
	})
	if err == nil {
		t.Fatalf("expected error for source parts")
	}
}
