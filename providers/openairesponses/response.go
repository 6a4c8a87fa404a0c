package openairesponses

import (
	"github.com/openai/openai-go/responses"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

func (c *Client) translateResponse(resp *responses.Response) (*model.Response, error) {
	if resp == nil {
		return nil, apierror.Invariant("openairesponses: nil response", nil)
	}
	out := &model.Response{}
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, part := range item.Content {
				if part.Type == "output_text" {
					out.Content = append(out.Content, model.TextPart{Text: part.Text})
				}
			}
		case "function_call":
			args := decodeArgsString(item.Arguments)
			out.Content = append(out.Content, model.ToolCallPart{
				ToolCallID: item.CallID,
				ToolName:   item.Name,
				Args:       args,
			})
		case "reasoning":
			for _, s := range item.Summary {
				out.Content = append(out.Content, model.ReasoningPart{Text: s.Text, ID: item.ID})
			}
		}
	}

	u := resp.Usage
	if u.InputTokens != 0 || u.OutputTokens != 0 {
		out.Usage = &model.Usage{
			InputTokens:  int(u.InputTokens),
			OutputTokens: int(u.OutputTokens),
			InputTokensDetails: &model.TokensDetails{
				TextTokens:       int(u.InputTokens - u.InputTokensDetails.CachedTokens),
				CachedTextTokens: int(u.InputTokensDetails.CachedTokens),
			},
			OutputTokensDetails: &model.TokensDetails{
				TextTokens: int(u.OutputTokens - u.OutputTokensDetails.ReasoningTokens),
			},
		}
		if c.pricing != nil {
			cost := usage.Calculate(out.Usage, c.pricing)
			out.Cost = &cost
		}
	}
	return out, nil
}
