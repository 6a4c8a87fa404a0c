package google

import (
	"encoding/base64"

	"google.golang.org/genai"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/hoangvvo/llm-sdk-sub003/usage"
)

func (c *Client) translateResponse(resp *genai.GenerateContentResponse) (*model.Response, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, apierror.Invariant("google: response has no candidates", nil)
	}
	out := &model.Response{}
	for _, p := range resp.Candidates[0].Content.Parts {
		switch {
		case p.FunctionCall != nil:
			out.Content = append(out.Content, model.ToolCallPart{
				ToolCallID: p.FunctionCall.ID,
				ToolName:   p.FunctionCall.Name,
				Args:       p.FunctionCall.Args,
			})
		case p.Thought:
			out.Content = append(out.Content, model.ReasoningPart{
				Text:      p.Text,
				Signature: base64.StdEncoding.EncodeToString(p.ThoughtSignature),
			})
		case p.Text != "":
			out.Content = append(out.Content, model.TextPart{Text: p.Text})
		}
	}

	if u := resp.UsageMetadata; u != nil {
		cachedText := int(u.CachedContentTokenCount)
		out.Usage = &model.Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount) + int(u.ThoughtsTokenCount),
			InputTokensDetails: &model.TokensDetails{
				TextTokens:       int(u.PromptTokenCount) - cachedText,
				CachedTextTokens: cachedText,
			},
			OutputTokensDetails: &model.TokensDetails{
				TextTokens: int(u.CandidatesTokenCount),
			},
		}
		if c.pricing != nil {
			cost := usage.Calculate(out.Usage, c.pricing)
			out.Cost = &cost
		}
	}
	return out, nil
}
