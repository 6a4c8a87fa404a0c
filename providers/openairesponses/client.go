// Package openairesponses implements model.LanguageModel on top of the
// OpenAI Responses API via github.com/openai/openai-go.
package openairesponses

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// ResponsesService captures the subset of openai-go used by the adapter.
type ResponsesService interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
	NewStreaming(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) *ssestream.Stream[responses.ResponseStreamEventUnion]
}

// Options configures a Client.
type Options struct {
	Model     string
	MaxTokens int
	Pricing   *model.Pricing
}

// Client implements model.LanguageModel against the OpenAI Responses API.
type Client struct {
	svc       ResponsesService
	modelID   string
	maxTokens int
	pricing   *model.Pricing
}

// New builds a Client from an already-constructed Responses service
// (typically &openai.NewClient(...).Responses).
func New(svc ResponsesService, opts Options) (*Client, error) {
	if svc == nil {
		return nil, apierror.InvalidInput("openairesponses: responses service is required")
	}
	if opts.Model == "" {
		return nil, apierror.InvalidInput("openairesponses: model identifier is required")
	}
	return &Client{svc: svc, modelID: opts.Model, maxTokens: opts.MaxTokens, pricing: opts.Pricing}, nil
}

func (c *Client) Provider() string { return "openai" }
func (c *Client) ModelID() string  { return c.modelID }

func (c *Client) Metadata() model.Metadata {
	return model.Metadata{
		Capabilities: []model.Capability{
			model.CapabilityTextInput, model.CapabilityTextOutput,
			model.CapabilityImageInput, model.CapabilityAudioInput,
			model.CapabilityAudioOutput, model.CapabilityFunctionCalling,
			model.CapabilityStructuredOutput, model.CapabilityReasoning,
		},
		Pricing: c.pricing,
	}
}

func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.svc.New(ctx, params)
	if err != nil {
		return nil, apierror.Transport(err)
	}
	return c.translateResponse(resp)
}

func (c *Client) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}
	s := c.svc.NewStreaming(ctx, params)
	if err := s.Err(); err != nil {
		return nil, apierror.Transport(err)
	}
	return newStreamer(ctx, s, c.pricing), nil
}

func (c *Client) buildParams(req *model.Request) (responses.ResponseNewParams, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	items, err := encodeInput(req.Messages)
	if err != nil {
		return responses.ResponseNewParams{}, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.modelID),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: items},
	}
	if maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(maxTokens))
	}
	if req.SystemPrompt != "" {
		params.Instructions = openai.String(req.SystemPrompt)
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}
	if len(req.Tools) > 0 {
		params.Tools = encodeTools(req.Tools)
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Kind == model.ResponseFormatKindJSON {
		params.Text = encodeResponseFormat(req.ResponseFormat)
	}
	if req.Reasoning != nil && req.Reasoning.Enabled {
		params.Reasoning = shared.ReasoningParam{Effort: shared.ReasoningEffortMedium}
	}
	return params, nil
}

func encodeTools(defs []model.ToolDefinition) []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		tool := responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:       def.Name,
				Parameters: def.Parameters,
			},
		}
		if def.Description != "" {
			tool.OfFunction.Description = openai.String(def.Description)
		}
		out = append(out, tool)
	}
	return out
}

func encodeResponseFormat(rf *model.ResponseFormat) responses.ResponseTextConfigParam {
	if rf.Schema == nil {
		return responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{OfJSONObject: &shared.ResponseFormatJSONObjectParam{}},
		}
	}
	return responses.ResponseTextConfigParam{
		Format: responses.ResponseFormatTextConfigUnionParam{
			OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
				Name:   rf.Name,
				Schema: rf.Schema,
				Strict: openai.Bool(true),
			},
		},
	}
}

func encodeInput(msgs []model.Message) (responses.ResponseInputParam, error) {
	items := make(responses.ResponseInputParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case model.RoleTool:
			for _, p := range m.Parts {
				tr, ok := p.(model.ToolResultPart)
				if !ok {
					continue
				}
				output, err := encodeToolResultOutput(tr)
				if err != nil {
					return nil, err
				}
				items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(tr.ToolCallID, output))
			}
		case model.RoleAssistant:
			for _, p := range m.Parts {
				switch v := p.(type) {
				case model.TextPart:
					items = append(items, responses.ResponseInputItemParamOfMessage(v.Text, responses.EasyInputMessageRoleAssistant))
				case model.ToolCallPart:
					args, _ := json.Marshal(v.Args)
					items = append(items, responses.ResponseInputItemParamOfFunctionCall(string(args), v.ToolCallID, v.ToolName))
				case model.ReasoningPart:
					// Reasoning content is provider-internal state on OpenAI;
					// it is not re-submitted as input.
				}
			}
		case model.RoleUser:
			content, err := encodeUserContent(m.Parts)
			if err != nil {
				return nil, err
			}
			items = append(items, responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role:    responses.EasyInputMessageRoleUser,
					Content: responses.EasyInputMessageContentUnionParam{OfInputItemContentList: content},
				},
			})
		}
	}
	return items, nil
}

func encodeUserContent(parts []model.Part) (responses.ResponseInputMessageContentListParam, error) {
	out := make(responses.ResponseInputMessageContentListParam, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case model.TextPart:
			out = append(out, responses.ResponseInputContentUnionParam{
				OfInputText: &responses.ResponseInputTextParam{Text: v.Text},
			})
		case model.ImagePart:
			dataURL := "data:" + v.MimeType + ";base64," + base64.StdEncoding.EncodeToString(v.ImageData)
			out = append(out, responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{ImageURL: openai.String(dataURL)},
			})
		case model.SourcePart:
			return nil, apierror.Unsupported("openairesponses: source parts must be down-converted before reaching the adapter")
		}
	}
	return out, nil
}

func encodeToolResultOutput(tr model.ToolResultPart) (string, error) {
	data, err := json.Marshal(tr.Content)
	if err != nil {
		return "", apierror.Invariant("openairesponses: cannot encode tool result content", err)
	}
	return string(data), nil
}
