package bedrock

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

func (c *Client) translateResponse(out *bedrockruntime.ConverseOutput, nameMap map[string]string) (*model.Response, error) {
	if out == nil {
		return nil, apierror.Invariant("bedrock: response is nil", nil)
	}
	resp := &model.Response{}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return nil, apierror.Invariant("bedrock: response carries no message output", nil)
	}
	for _, block := range msg.Value.Content {
		switch v := block.(type) {
		case *brtypes.ContentBlockMemberText:
			if v.Value != "" {
				resp.Content = append(resp.Content, model.TextPart{Text: v.Value})
			}
		case *brtypes.ContentBlockMemberReasoningContent:
			if rt, ok := v.Value.(*brtypes.ReasoningContentBlockMemberReasoningText); ok {
				resp.Content = append(resp.Content, model.ReasoningPart{
					Text:      aws.ToString(rt.Value.Text),
					Signature: aws.ToString(rt.Value.Signature),
				})
			}
		case *brtypes.ContentBlockMemberToolUse:
			name := aws.ToString(v.Value.Name)
			if canonical, ok := nameMap[name]; ok {
				name = canonical
			}
			resp.Content = append(resp.Content, model.ToolCallPart{
				ToolCallID: aws.ToString(v.Value.ToolUseId),
				ToolName:   name,
				Args:       decodeDocument(v.Value.Input),
			})
		}
	}

	if u := out.Usage; u != nil {
		resp.Usage = &model.Usage{
			InputTokens:  int(aws.ToInt32(u.InputTokens)),
			OutputTokens: int(aws.ToInt32(u.OutputTokens)),
			InputTokensDetails: &model.TokensDetails{
				TextTokens:       int(aws.ToInt32(u.InputTokens) - aws.ToInt32(u.CacheReadInputTokens)),
				CachedTextTokens: int(aws.ToInt32(u.CacheReadInputTokens)),
			},
			OutputTokensDetails: &model.TokensDetails{TextTokens: int(aws.ToInt32(u.OutputTokens))},
		}
		if c.pricing != nil {
			cost := usage.Calculate(resp.Usage, c.pricing)
			resp.Cost = &cost
		}
	}
	return resp, nil
}
