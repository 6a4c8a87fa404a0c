package model

import "github.com/hoangvvo/llm-sdk-sub003/apierror"

func invalidInputMessagesRequired() error {
	return apierror.InvalidInput("messages must not be empty")
}

// validateToolCallLinkage enforces that every tool-result part's
// ToolCallID matches a prior tool-call part's ToolCallID in the same
// conversation, and that each message only carries parts valid for its
// role (spec.md §3.1 invariants).
func validateToolCallLinkage(messages []Message) error {
	seen := map[string]bool{}
	for _, m := range messages {
		for _, p := range m.Parts {
			if err := validatePartForRole(m.Role, p); err != nil {
				return err
			}
			switch v := p.(type) {
			case ToolCallPart:
				seen[v.ToolCallID] = true
			case ToolResultPart:
				if !seen[v.ToolCallID] {
					return apierror.InvalidInputf("tool-result %q references unknown tool_call_id", v.ToolCallID)
				}
			}
		}
	}
	return nil
}

func validatePartForRole(role Role, p Part) error {
	switch role {
	case RoleTool:
		if _, ok := p.(ToolResultPart); !ok {
			return apierror.InvalidInputf("tool message contains non tool-result part %q", p.Type())
		}
	case RoleAssistant:
		switch p.(type) {
		case TextPart, ImagePart, AudioPart, ReasoningPart, ToolCallPart:
		default:
			return apierror.InvalidInputf("assistant message contains invalid part %q", p.Type())
		}
	case RoleUser:
		switch p.(type) {
		case TextPart, ImagePart, AudioPart, SourcePart:
		default:
			return apierror.InvalidInputf("user message contains invalid part %q", p.Type())
		}
	}
	return nil
}
