// Package openaichat implements model.LanguageModel on top of the OpenAI
// Chat Completions API via github.com/sashabaranov/go-openai.
package openaichat

import (
	"context"
	"encoding/base64"
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// ChatClient captures the subset of go-openai used by the adapter.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// Options configures a Client.
type Options struct {
	Model     string
	MaxTokens int
	Pricing   *model.Pricing
}

// Client implements model.LanguageModel against the OpenAI Chat
// Completions API.
type Client struct {
	chat      ChatClient
	modelID   string
	maxTokens int
	pricing   *model.Pricing
}

// New builds a Client from an already-constructed go-openai client.
func New(chat ChatClient, opts Options) (*Client, error) {
	if chat == nil {
		return nil, apierror.InvalidInput("openaichat: chat client is required")
	}
	if opts.Model == "" {
		return nil, apierror.InvalidInput("openaichat: model identifier is required")
	}
	return &Client{chat: chat, modelID: opts.Model, maxTokens: opts.MaxTokens, pricing: opts.Pricing}, nil
}

func (c *Client) Provider() string { return "openai-chat" }
func (c *Client) ModelID() string  { return c.modelID }

func (c *Client) Metadata() model.Metadata {
	return model.Metadata{
		Capabilities: []model.Capability{
			model.CapabilityTextInput, model.CapabilityTextOutput,
			model.CapabilityImageInput, model.CapabilityFunctionCalling,
			model.CapabilityStructuredOutput,
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
	resp, err := c.chat.CreateChatCompletion(ctx, params)
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
	params.Stream = true
	params.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	s, err := c.chat.CreateChatCompletionStream(ctx, params)
	if err != nil {
		return nil, apierror.Transport(err)
	}
	return newStreamer(ctx, s, c.pricing), nil
}

func (c *Client) buildParams(req *model.Request) (openai.ChatCompletionRequest, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	msgs, err := encodeMessages(req.SystemPrompt, req.Messages)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	params := openai.ChatCompletionRequest{
		Model:               c.modelID,
		Messages:            msgs,
		MaxCompletionTokens: maxTokens,
	}
	if req.Temperature != nil {
		params.Temperature = float32(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = float32(*req.TopP)
	}
	if req.PresencePenalty != nil {
		params.PresencePenalty = float32(*req.PresencePenalty)
	}
	if req.FrequencyPenalty != nil {
		params.FrequencyPenalty = float32(*req.FrequencyPenalty)
	}
	if req.Seed != nil {
		seed := int(*req.Seed)
		params.Seed = &seed
	}
	if len(req.Tools) > 0 {
		params.Tools = encodeTools(req.Tools)
	}
	if req.ToolChoice != nil {
		tc, err := encodeToolChoice(req.ToolChoice)
		if err != nil {
			return openai.ChatCompletionRequest{}, err
		}
		params.ToolChoice = tc
	}
	if req.ResponseFormat != nil {
		params.ResponseFormat = encodeResponseFormat(req.ResponseFormat)
	}
	return params, nil
}

func encodeTools(defs []model.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

func encodeToolChoice(choice *model.ToolChoice) (any, error) {
	switch choice.Mode {
	case "", model.ToolChoiceModeAuto:
		return "auto", nil
	case model.ToolChoiceModeNone:
		return "none", nil
	case model.ToolChoiceModeRequired:
		return "required", nil
	case model.ToolChoiceModeTool:
		if choice.Name == "" {
			return nil, apierror.InvalidInput("openaichat: tool choice mode \"tool\" requires a name")
		}
		return openai.ToolChoice{Type: openai.ToolTypeFunction, Function: openai.ToolFunction{Name: choice.Name}}, nil
	default:
		return nil, apierror.InvalidInputf("openaichat: unsupported tool choice mode %q", choice.Mode)
	}
}

func encodeResponseFormat(rf *model.ResponseFormat) *openai.ChatCompletionResponseFormat {
	if rf.Kind == model.ResponseFormatKindText {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeText}
	}
	if rf.Schema == nil {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   rf.Name,
			Schema: rf.Schema,
			Strict: true,
		},
	}
}

func encodeMessages(systemPrompt string, msgs []model.Message) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, m := range msgs {
		switch m.Role {
		case model.RoleTool:
			for _, p := range m.Parts {
				tr, ok := p.(model.ToolResultPart)
				if !ok {
					continue
				}
				data, err := json.Marshal(tr.Content)
				if err != nil {
					return nil, apierror.Invariant("openaichat: cannot encode tool result content", err)
				}
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    string(data),
					ToolCallID: tr.ToolCallID,
				})
			}
		case model.RoleAssistant:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
			for _, p := range m.Parts {
				switch v := p.(type) {
				case model.TextPart:
					msg.Content += v.Text
				case model.ToolCallPart:
					args, _ := json.Marshal(v.Args)
					msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
						ID:   v.ToolCallID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      v.ToolName,
							Arguments: string(args),
						},
					})
				}
			}
			out = append(out, msg)
		case model.RoleUser:
			parts, err := encodeUserParts(m.Parts)
			if err != nil {
				return nil, err
			}
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts})
		}
	}
	return out, nil
}

func encodeUserParts(parts []model.Part) ([]openai.ChatMessagePart, error) {
	out := make([]openai.ChatMessagePart, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case model.TextPart:
			out = append(out, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: v.Text})
		case model.ImagePart:
			dataURL := "data:" + v.MimeType + ";base64," + base64.StdEncoding.EncodeToString(v.ImageData)
			out = append(out, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
			})
		case model.SourcePart:
			return nil, apierror.Unsupported("openaichat: source parts must be down-converted before reaching the adapter")
		}
	}
	return out, nil
}
