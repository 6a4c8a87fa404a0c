package bedrock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/hoangvvo/llm-sdk-sub003/model"
)

type mockRuntime struct {
	captured     *bedrockruntime.ConverseInput
	capturedStrm *bedrockruntime.ConverseStreamInput
	output       *bedrockruntime.ConverseOutput
	streamOutput StreamOutput
	err          error
}

func (m *mockRuntime) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.captured = params
	return m.output, m.err
}

func (m *mockRuntime) ConverseStream(_ context.Context, params *bedrockruntime.ConverseStreamInput, _ ...func(*bedrockruntime.Options)) (StreamOutput, error) {
	m.capturedStrm = params
	return m.streamOutput, m.err
}

func TestGenerateTextAndToolCall(t *testing.T) {
	mock := &mockRuntime{
		output: &bedrockruntime.ConverseOutput{
			Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: "hello"},
					&brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
						ToolUseId: aws.String("call_1"),
						Name:      aws.String("lookup"),
						Input:     document.NewLazyDocument(&map[string]any{"q": "go"}),
					}},
				},
			}},
			Usage: &brtypes.TokenUsage{InputTokens: aws.Int32(100), OutputTokens: aws.Int32(20)},
		},
	}
	cl, err := New(mock, Options{DefaultModel: "anthropic.claude-3"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{
		Messages: []model.Message{model.UserMessage(model.TextPart{Text: "hi"})},
		Tools:    []model.ToolDefinition{{Name: "lookup", Description: "looks things up", Parameters: map[string]any{"type": "object"}}},
	}
	resp, err := cl.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Content) != 2 {
		t.Fatalf("expected 2 parts, got %d: %+v", len(resp.Content), resp.Content)
	}
	if resp.Content[0].(model.TextPart).Text != "hello" {
		t.Fatalf("unexpected text part %+v", resp.Content[0])
	}
	tc, ok := resp.Content[1].(model.ToolCallPart)
	if !ok || tc.ToolName != "lookup" || tc.ToolCallID != "call_1" {
		t.Fatalf("unexpected tool call part %+v", resp.Content[1])
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 100 || resp.Usage.OutputTokens != 20 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}

	if mock.captured == nil || *mock.captured.ModelId != "anthropic.claude-3" {
		t.Fatalf("unexpected model id %+v", mock.captured)
	}
}

func TestResolveModelIDPrefersRequestOverrides(t *testing.T) {
	mock := &mockRuntime{output: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{}},
	}}
	cl, err := New(mock, Options{DefaultModel: "default-model", HighModel: "high-model", SmallModel: "small-model"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{
		Messages:   []model.Message{model.UserMessage(model.TextPart{Text: "hi"})},
		ModelClass: model.ModelClassHighReasoning,
	}
	if _, err := cl.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if *mock.captured.ModelId != "high-model" {
		t.Fatalf("expected high-model, got %q", *mock.captured.ModelId)
	}

	req.Model = "explicit-override"
	if _, err := cl.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if *mock.captured.ModelId != "explicit-override" {
		t.Fatalf("expected explicit-override, got %q", *mock.captured.ModelId)
	}
}

func TestNewRequiresRuntimeAndDefaultModel(t *testing.T) {
	if _, err := New(nil, Options{DefaultModel: "x"}); err == nil {
		t.Fatalf("expected error when runtime is unset")
	}
	if _, err := New(&mockRuntime{}, Options{}); err == nil {
		t.Fatalf("expected error when default model is unset")
	}
}
