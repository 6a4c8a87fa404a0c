package bedrock

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

func encodeTools(defs []model.ToolDefinition, choice *model.ToolChoice) (*brtypes.ToolConfiguration, map[string]string, map[string]string, error) {
	if len(defs) == 0 {
		if choice == nil || choice.Mode == model.ToolChoiceModeNone {
			return nil, nil, nil, nil
		}
		return nil, nil, nil, apierror.InvalidInput("bedrock: tool choice is set but no tools are defined")
	}

	canonToSan := make(map[string]string, len(defs))
	sanToCanon := make(map[string]string, len(defs))
	toolList := make([]brtypes.Tool, 0, len(defs))
	for _, def := range defs {
		sanitized := sanitizeToolName(def.Name)
		if prev, ok := sanToCanon[sanitized]; ok && prev != def.Name {
			return nil, nil, nil, apierror.Invariantf("bedrock: tool name %q sanitizes to %q which collides with %q", def.Name, sanitized, prev)
		}
		canonToSan[def.Name] = sanitized
		sanToCanon[sanitized] = def.Name
		toolList = append(toolList, &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        aws.String(sanitized),
				Description: aws.String(def.Description),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{Value: toDocument(def.Parameters)},
			},
		})
	}

	cfg := &brtypes.ToolConfiguration{Tools: toolList}
	if choice == nil {
		return cfg, canonToSan, sanToCanon, nil
	}
	switch choice.Mode {
	case "", model.ToolChoiceModeAuto, model.ToolChoiceModeNone:
		// Auto/none are the provider default shapes; Bedrock has no explicit
		// "none" choice, so the tool configuration is left forceable but the
		// caller is expected not to request new tool calls via prompting.
	case model.ToolChoiceModeRequired:
		cfg.ToolChoice = &brtypes.ToolChoiceMemberAny{Value: brtypes.AnyToolChoice{}}
	case model.ToolChoiceModeTool:
		if choice.Name == "" {
			return nil, nil, nil, apierror.InvalidInput("bedrock: tool choice mode \"tool\" requires a name")
		}
		sanitized, ok := canonToSan[choice.Name]
		if !ok {
			return nil, nil, nil, apierror.InvalidInputf("bedrock: tool choice name %q does not match any tool", choice.Name)
		}
		cfg.ToolChoice = &brtypes.ToolChoiceMemberTool{Value: brtypes.SpecificToolChoice{Name: aws.String(sanitized)}}
	default:
		return nil, nil, nil, apierror.InvalidInputf("bedrock: unsupported tool choice mode %q", choice.Mode)
	}
	return cfg, canonToSan, sanToCanon, nil
}

func encodeMessages(systemPrompt string, msgs []model.Message, nameMap map[string]string) ([]brtypes.Message, []brtypes.SystemContentBlock, error) {
	var system []brtypes.SystemContentBlock
	if systemPrompt != "" {
		system = append(system, &brtypes.SystemContentBlockMemberText{Value: systemPrompt})
	}

	out := make([]brtypes.Message, 0, len(msgs))
	for _, m := range msgs {
		blocks := make([]brtypes.ContentBlock, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch v := p.(type) {
			case model.TextPart:
				if v.Text != "" {
					blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: v.Text})
				}
			case model.ImagePart:
				blocks = append(blocks, &brtypes.ContentBlockMemberImage{Value: brtypes.ImageBlock{
					Format: imageFormat(v.MimeType),
					Source: &brtypes.ImageSourceMemberBytes{Value: v.ImageData},
				}})
			case model.ReasoningPart:
				if v.Text != "" && v.Signature != "" {
					blocks = append(blocks, &brtypes.ContentBlockMemberReasoningContent{
						Value: &brtypes.ReasoningContentBlockMemberReasoningText{
							Value: brtypes.ReasoningTextBlock{
								Text:      aws.String(v.Text),
								Signature: aws.String(v.Signature),
							},
						},
					})
				}
			case model.ToolCallPart:
				sanitized, ok := nameMap[v.ToolName]
				if !ok {
					return nil, nil, apierror.InvalidInputf("bedrock: tool call references %q which is not in the current tool configuration", v.ToolName)
				}
				blocks = append(blocks, &brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
					ToolUseId: aws.String(v.ToolCallID),
					Name:      aws.String(sanitized),
					Input:     toDocument(v.Args),
				}})
			case model.ToolResultPart:
				content := flattenToolResultContent(v.Content)
				blocks = append(blocks, &brtypes.ContentBlockMemberToolResult{Value: brtypes.ToolResultBlock{
					ToolUseId: aws.String(v.ToolCallID),
					Content:   content,
					Status:    toolResultStatus(v.IsError),
				}})
			case model.SourcePart:
				return nil, nil, apierror.Unsupported("bedrock: source parts must be down-converted before reaching the adapter")
			}
		}
		if len(blocks) == 0 {
			continue
		}
		role := brtypes.ConversationRoleUser
		if m.Role == model.RoleAssistant {
			role = brtypes.ConversationRoleAssistant
		}
		out = append(out, brtypes.Message{Role: role, Content: blocks})
	}
	return out, system, nil
}

func flattenToolResultContent(parts []model.Part) []brtypes.ToolResultContentBlock {
	var text string
	for _, p := range parts {
		if t, ok := p.(model.TextPart); ok {
			text += t.Text
		}
	}
	if text != "" {
		return []brtypes.ToolResultContentBlock{&brtypes.ToolResultContentBlockMemberText{Value: text}}
	}
	data, err := json.Marshal(parts)
	if err != nil {
		return nil
	}
	return []brtypes.ToolResultContentBlock{&brtypes.ToolResultContentBlockMemberJson{Value: toDocument(json.RawMessage(data))}}
}

func toolResultStatus(isError bool) brtypes.ToolResultStatus {
	if isError {
		return brtypes.ToolResultStatusError
	}
	return brtypes.ToolResultStatusSuccess
}

func imageFormat(mimeType string) brtypes.ImageFormat {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return brtypes.ImageFormatJpeg
	case "image/gif":
		return brtypes.ImageFormatGif
	case "image/webp":
		return brtypes.ImageFormatWebp
	default:
		return brtypes.ImageFormatPng
	}
}

func toDocument(v any) document.Interface {
	if v == nil {
		m := map[string]any{"type": "object"}
		return document.NewLazyDocument(&m)
	}
	if raw, ok := v.(json.RawMessage); ok {
		var decoded any
		if len(raw) == 0 {
			decoded = map[string]any{"type": "object"}
		} else if err := json.Unmarshal(raw, &decoded); err != nil {
			decoded = map[string]any{"type": "object"}
		}
		return document.NewLazyDocument(&decoded)
	}
	return document.NewLazyDocument(&v)
}

func decodeDocument(doc document.Interface) map[string]any {
	if doc == nil {
		return nil
	}
	data, err := doc.MarshalSmithyDocument()
	if err != nil || len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
