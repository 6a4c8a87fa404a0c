package anthropic

import (
	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

func (c *Client) translateResponse(msg *sdk.Message, toolNames map[string]string) (*model.Response, error) {
	if msg == nil {
		return nil, apierror.Invariant("anthropic: nil response message", nil)
	}
	resp := &model.Response{}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case sdk.TextBlock:
			resp.Content = append(resp.Content, model.TextPart{Text: v.Text})
		case sdk.ThinkingBlock:
			resp.Content = append(resp.Content, model.ReasoningPart{Text: v.Thinking, Signature: v.Signature})
		case sdk.ToolUseBlock:
			name := v.Name
			if canonical, ok := toolNames[name]; ok {
				name = canonical
			}
			args, _ := decodeToolInput(v.Input)
			resp.Content = append(resp.Content, model.ToolCallPart{
				ToolCallID: v.ID,
				ToolName:   name,
				Args:       args,
			})
		}
	}

	u := msg.Usage
	if u.InputTokens != 0 || u.OutputTokens != 0 || u.CacheReadInputTokens != 0 || u.CacheCreationInputTokens != 0 {
		resp.Usage = &model.Usage{
			InputTokens:  int(u.InputTokens),
			OutputTokens: int(u.OutputTokens),
			InputTokensDetails: &model.TokensDetails{
				TextTokens:       int(u.InputTokens - u.CacheReadInputTokens - u.CacheCreationInputTokens),
				CachedTextTokens: int(u.CacheReadInputTokens + u.CacheCreationInputTokens),
			},
		}
		if c.pricing != nil {
			cost := usage.Calculate(resp.Usage, c.pricing)
			resp.Cost = &cost
		}
	}
	return resp, nil
}

func decodeToolInput(input any) (map[string]any, error) {
	m, ok := input.(map[string]any)
	if !ok {
		return nil, nil
	}
	return m, nil
}
