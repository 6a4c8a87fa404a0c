package model

import (
	"testing"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
)

func TestRequestValidateRejectsEmptyMessages(t *testing.T) {
	req := &Request{}
	err := req.Validate()
	if !apierror.Is(err, apierror.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestRequestValidateAcceptsWellFormedMessages(t *testing.T) {
	req := &Request{
		Messages: []Message{
			UserMessage(TextPart{Text: "hi"}),
			AssistantMessage(
				TextPart{Text: "let me check"},
				ToolCallPart{ToolCallID: "call_1", ToolName: "lookup"},
			),
			ToolMessage(ToolResultPart{ToolCallID: "call_1", ToolName: "lookup", Content: []Part{TextPart{Text: "ok"}}}),
		},
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateToolCallLinkageRejectsUnknownToolCallID(t *testing.T) {
	messages := []Message{
		UserMessage(TextPart{Text: "hi"}),
		ToolMessage(ToolResultPart{ToolCallID: "call_missing", ToolName: "lookup"}),
	}
	err := validateToolCallLinkage(messages)
	if !apierror.Is(err, apierror.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestValidateToolCallLinkageAcceptsKnownToolCallID(t *testing.T) {
	messages := []Message{
		AssistantMessage(ToolCallPart{ToolCallID: "call_1", ToolName: "lookup"}),
		ToolMessage(ToolResultPart{ToolCallID: "call_1", ToolName: "lookup"}),
	}
	if err := validateToolCallLinkage(messages); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidatePartForRoleToolMessageRejectsNonToolResultPart(t *testing.T) {
	err := validatePartForRole(RoleTool, TextPart{Text: "not a tool result"})
	if !apierror.Is(err, apierror.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestValidatePartForRoleAssistantRejectsSourcePart(t *testing.T) {
	err := validatePartForRole(RoleAssistant, SourcePart{Source: "x", Title: "y"})
	if !apierror.Is(err, apierror.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestValidatePartForRoleAssistantAcceptsToolCallPart(t *testing.T) {
	err := validatePartForRole(RoleAssistant, ToolCallPart{ToolCallID: "call_1", ToolName: "lookup"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidatePartForRoleUserRejectsToolCallPart(t *testing.T) {
	err := validatePartForRole(RoleUser, ToolCallPart{ToolCallID: "call_1", ToolName: "lookup"})
	if !apierror.Is(err, apierror.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestValidatePartForRoleUserAcceptsSourcePart(t *testing.T) {
	err := validatePartForRole(RoleUser, SourcePart{Source: "x", Title: "y"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
