package openaichat

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

func (c *Client) translateResponse(resp openai.ChatCompletionResponse) (*model.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, apierror.Invariant("openaichat: response has no choices", nil)
	}
	choice := resp.Choices[0]
	out := &model.Response{}
	if choice.Message.Content != "" {
		out.Content = append(out.Content, model.TextPart{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		out.Content = append(out.Content, model.ToolCallPart{
			ToolCallID: tc.ID,
			ToolName:   tc.Function.Name,
			Args:       args,
		})
	}

	u := resp.Usage
	if u.PromptTokens != 0 || u.CompletionTokens != 0 {
		var cachedText, reasoningTokens int
		if u.PromptTokensDetails != nil {
			cachedText = u.PromptTokensDetails.CachedTokens
		}
		if u.CompletionTokensDetails != nil {
			reasoningTokens = u.CompletionTokensDetails.ReasoningTokens
		}
		out.Usage = &model.Usage{
			InputTokens:  u.PromptTokens,
			OutputTokens: u.CompletionTokens,
			InputTokensDetails: &model.TokensDetails{
				TextTokens:       u.PromptTokens - cachedText,
				CachedTextTokens: cachedText,
			},
			OutputTokensDetails: &model.TokensDetails{
				TextTokens: u.CompletionTokens - reasoningTokens,
			},
		}
		if c.pricing != nil {
			cost := usage.Calculate(out.Usage, c.pricing)
			out.Cost = &cost
		}
	}
	return out, nil
}
