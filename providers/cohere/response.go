package cohere

import (
	"encoding/json"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

func (c *Client) translateResponse(resp *chatResponse) (*model.Response, error) {
	out := &model.Response{}
	for _, block := range resp.Message.Content {
		if block.Type == "text" && block.Text != "" {
			out.Content = append(out.Content, model.TextPart{Text: block.Text})
		}
	}
	for _, tc := range resp.Message.ToolCalls {
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

	in := int(resp.Usage.BilledUnits.InputTokens)
	outTok := int(resp.Usage.BilledUnits.OutputTokens)
	if in != 0 || outTok != 0 {
		out.Usage = &model.Usage{
			InputTokens:        in,
			OutputTokens:       outTok,
			InputTokensDetails: &model.TokensDetails{TextTokens: in},
			OutputTokensDetails: &model.TokensDetails{
				TextTokens: outTok,
			},
		}
		if c.pricing != nil {
			cost := usage.Calculate(out.Usage, c.pricing)
			out.Cost = &cost
		}
	}
	return out, nil
}
