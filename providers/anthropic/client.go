// Package anthropic implements model.LanguageModel on top of the Anthropic
// Claude Messages API via github.com/anthropics/anthropic-sdk-go.
package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// MessagesClient captures the subset of the Anthropic SDK used by the
// adapter, so tests can substitute a fake without a live API key.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
	NewStreaming(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) AnthropicStream
}

// AnthropicStream is the subset of ssestream.Stream the streamer consumes.
type AnthropicStream interface {
	Next() bool
	Current() sdk.MessageStreamEventUnion
	Err() error
	Close() error
}

// Options configures a Client.
type Options struct {
	// Model is the concrete Claude model identifier, e.g.
	// string(sdk.ModelClaudeSonnet4_5_20250929).
	Model string
	// MaxTokens is used when a Request does not set MaxTokens.
	MaxTokens int
	// Pricing, when set, is returned from Metadata() and used to compute
	// Response.Cost / PartialResponse.Cost.
	Pricing *model.Pricing
}

// Client implements model.LanguageModel against the Anthropic Messages API.
type Client struct {
	msg       MessagesClient
	modelID   string
	maxTokens int
	pricing   *model.Pricing
}

// New builds a Client from an already-constructed Anthropic Messages
// client (typically &sdk.NewClient(...).Messages).
func New(msg MessagesClient, opts Options) (*Client, error) {
	if msg == nil {
		return nil, apierror.InvalidInput("anthropic: messages client is required")
	}
	if opts.Model == "" {
		return nil, apierror.InvalidInput("anthropic: model identifier is required")
	}
	return &Client{msg: msg, modelID: opts.Model, maxTokens: opts.MaxTokens, pricing: opts.Pricing}, nil
}

func (c *Client) Provider() string { return "anthropic" }
func (c *Client) ModelID() string  { return c.modelID }

func (c *Client) Metadata() model.Metadata {
	return model.Metadata{
		Capabilities: []model.Capability{
			model.CapabilityTextInput, model.CapabilityTextOutput,
			model.CapabilityImageInput, model.CapabilityFunctionCalling,
			model.CapabilityStructuredOutput, model.CapabilityReasoning,
			model.CapabilityCitation,
		},
		Pricing: c.pricing,
	}
}

// Generate issues one non-streaming Messages.New call.
func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	params, toolNames, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	msg, err := c.msg.New(ctx, *params)
	if err != nil {
		return nil, translateTransportErr(err)
	}
	return c.translateResponse(msg, toolNames)
}

// Stream issues one Messages.NewStreaming call and adapts its SSE events.
func (c *Client) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	params, toolNames, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	s := c.msg.NewStreaming(ctx, *params)
	if err := s.Err(); err != nil {
		return nil, translateTransportErr(err)
	}
	return newStreamer(ctx, s, toolNames, c.pricing), nil
}

func (c *Client) prepareRequest(req *model.Request) (*sdk.MessageNewParams, map[string]string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens <= 0 {
		return nil, nil, apierror.InvalidInput("anthropic: max_tokens is required")
	}

	toolParams, toolNames, err := encodeTools(req.Tools)
	if err != nil {
		return nil, nil, err
	}
	msgs, system, err := encodeMessages(req.Messages)
	if err != nil {
		return nil, nil, err
	}

	params := &sdk.MessageNewParams{
		Model:     sdk.Model(c.modelID),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if req.SystemPrompt != "" {
		system = append([]sdk.TextBlockParam{{Text: req.SystemPrompt}}, system...)
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(toolParams) > 0 {
		params.Tools = toolParams
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = sdk.Float(*req.TopP)
	}
	if req.TopK != nil {
		params.TopK = sdk.Int(int64(*req.TopK))
	}
	if req.Reasoning != nil && req.Reasoning.Enabled {
		budget := req.Reasoning.BudgetTokens
		if budget <= 0 || int64(budget) >= int64(maxTokens) {
			return nil, nil, apierror.InvalidInput("anthropic: reasoning budget_tokens must be positive and less than max_tokens")
		}
		params.Thinking = sdk.ThinkingConfigParamOfEnabled(int64(budget))
	}
	if req.ToolChoice != nil {
		tc, err := encodeToolChoice(req.ToolChoice)
		if err != nil {
			return nil, nil, err
		}
		params.ToolChoice = tc
	}
	return params, toolNames, nil
}

func encodeTools(defs []model.ToolDefinition) ([]sdk.ToolUnionParam, map[string]string, error) {
	if len(defs) == 0 {
		return nil, nil, nil
	}
	out := make([]sdk.ToolUnionParam, 0, len(defs))
	names := make(map[string]string, len(defs))
	for _, def := range defs {
		schema := sdk.ToolInputSchemaParam{ExtraFields: def.Parameters}
		u := sdk.ToolUnionParamOfTool(schema, def.Name)
		if u.OfTool != nil {
			u.OfTool.Description = sdk.String(def.Description)
		}
		out = append(out, u)
		names[def.Name] = def.Name
	}
	return out, names, nil
}

func encodeToolChoice(choice *model.ToolChoice) (sdk.ToolChoiceUnionParam, error) {
	switch choice.Mode {
	case "", model.ToolChoiceModeAuto:
		return sdk.ToolChoiceUnionParam{}, nil
	case model.ToolChoiceModeNone:
		none := sdk.NewToolChoiceNoneParam()
		return sdk.ToolChoiceUnionParam{OfNone: &none}, nil
	case model.ToolChoiceModeRequired:
		return sdk.ToolChoiceUnionParam{OfAny: &sdk.ToolChoiceAnyParam{}}, nil
	case model.ToolChoiceModeTool:
		if choice.Name == "" {
			return sdk.ToolChoiceUnionParam{}, apierror.InvalidInput("anthropic: tool choice mode \"tool\" requires a name")
		}
		return sdk.ToolChoiceParamOfTool(choice.Name), nil
	default:
		return sdk.ToolChoiceUnionParam{}, apierror.InvalidInputf("anthropic: unsupported tool choice mode %q", choice.Mode)
	}
}

func encodeMessages(msgs []model.Message) ([]sdk.MessageParam, []sdk.TextBlockParam, error) {
	out := make([]sdk.MessageParam, 0, len(msgs))
	var system []sdk.TextBlockParam
	for _, m := range msgs {
		blocks := make([]sdk.ContentBlockParamUnion, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch v := p.(type) {
			case model.TextPart:
				if v.Text != "" {
					blocks = append(blocks, sdk.NewTextBlock(v.Text))
				}
			case model.ImagePart:
				b64 := base64.StdEncoding.EncodeToString(v.ImageData)
				blocks = append(blocks, sdk.NewImageBlockBase64(v.MimeType, b64))
			case model.ReasoningPart:
				blocks = append(blocks, sdk.NewThinkingBlock(v.Signature, v.Text))
			case model.ToolCallPart:
				blocks = append(blocks, sdk.NewToolUseBlock(v.ToolCallID, v.Args, v.ToolName))
			case model.ToolResultPart:
				blocks = append(blocks, encodeToolResult(v))
			case model.SourcePart:
				return nil, nil, apierror.Unsupported("anthropic: source parts must be down-converted before reaching the adapter")
			}
		}
		if len(blocks) == 0 {
			continue
		}
		switch m.Role {
		case model.RoleUser:
			out = append(out, sdk.NewUserMessage(blocks...))
		case model.RoleAssistant:
			out = append(out, sdk.NewAssistantMessage(blocks...))
		case model.RoleTool:
			out = append(out, sdk.NewUserMessage(blocks...))
		}
	}
	return out, system, nil
}

func encodeToolResult(v model.ToolResultPart) sdk.ContentBlockParamUnion {
	var content string
	if data, err := json.Marshal(v.Content); err == nil {
		content = string(data)
	}
	return sdk.NewToolResultBlock(v.ToolCallID, content, v.IsError)
}

func translateTransportErr(err error) error {
	return apierror.Transport(err)
}
