package mistral

import (
	"encoding/json"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

func (c *Client) translateResponse(resp *chatResponse) (*model.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, apierror.Invariant("mistral: response has no choices", nil)
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
		out.Usage = &model.Usage{
			InputTokens:         u.PromptTokens,
			OutputTokens:        u.CompletionTokens,
			InputTokensDetails:  &model.TokensDetails{TextTokens: u.PromptTokens},
			OutputTokensDetails: &model.TokensDetails{TextTokens: u.CompletionTokens},
		}
		if c.pricing != nil {
			cost := usage.Calculate(out.Usage, c.pricing)
			out.Cost = &cost
		}
	}
	return out, nil
}
