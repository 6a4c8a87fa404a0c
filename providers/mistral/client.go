// Package mistral implements model.LanguageModel on top of the Mistral
// chat completions API. No Go SDK for Mistral exists anywhere in the
// example pack, so this adapter speaks the documented HTTP+JSON/SSE
// protocol directly through internal/httpsse, per spec.md §6.2's
// transport-leg contract.
package mistral

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/internal/httpsse"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

const defaultBaseURL = "https://api.mistral.ai/v1"

// Options configures a Client.
type Options struct {
	Model     string
	APIKey    string
	MaxTokens int
	Pricing   *model.Pricing
	// BaseURL overrides the default Mistral API origin; tests point this at
	// an httptest.Server.
	BaseURL string
	// HTTP overrides the underlying *http.Client (nil uses http.DefaultClient).
	HTTP *http.Client
}

// Client implements model.LanguageModel against the Mistral chat
// completions API.
type Client struct {
	http      *httpsse.Client
	modelID   string
	maxTokens int
	pricing   *model.Pricing
}

// New builds a Client that talks to Mistral directly over HTTP.
func New(opts Options) (*Client, error) {
	if opts.Model == "" {
		return nil, apierror.InvalidInput("mistral: model identifier is required")
	}
	if opts.APIKey == "" {
		return nil, apierror.InvalidInput("mistral: api key is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:      &httpsse.Client{HTTP: opts.HTTP, BaseURL: baseURL, APIKey: opts.APIKey},
		modelID:   opts.Model,
		maxTokens: opts.MaxTokens,
		pricing:   opts.Pricing,
	}, nil
}

func (c *Client) Provider() string { return "mistral" }
func (c *Client) ModelID() string  { return c.modelID }

func (c *Client) Metadata() model.Metadata {
	return model.Metadata{
		Capabilities: []model.Capability{
			model.CapabilityTextInput, model.CapabilityTextOutput,
			model.CapabilityFunctionCalling, model.CapabilityStructuredOutput,
		},
		Pricing: c.pricing,
	}
}

func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := c.buildRequest(req, false)
	if err != nil {
		return nil, err
	}
	var resp chatResponse
	if err := c.http.PostJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return nil, err
	}
	return c.translateResponse(&resp)
}

func (c *Client) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := c.buildRequest(req, true)
	if err != nil {
		return nil, err
	}
	events, err := c.http.PostSSE(ctx, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	return newStreamer(ctx, events, c.pricing), nil
}

func (c *Client) buildRequest(req *model.Request, stream bool) (*chatRequest, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	messages, err := encodeMessages(req.SystemPrompt, req.Messages)
	if err != nil {
		return nil, err
	}
	body := &chatRequest{
		Model:    c.modelID,
		Messages: messages,
		Stream:   stream,
	}
	if maxTokens > 0 {
		body.MaxTokens = &maxTokens
	}
	if req.Temperature != nil {
		body.Temperature = req.Temperature
	}
	if req.TopP != nil {
		body.TopP = req.TopP
	}
	if req.Seed != nil {
		body.RandomSeed = req.Seed
	}
	if len(req.Tools) > 0 {
		body.Tools = encodeTools(req.Tools)
	}
	if req.ToolChoice != nil {
		tc, err := encodeToolChoice(req.ToolChoice)
		if err != nil {
			return nil, err
		}
		body.ToolChoice = tc
	}
	if req.ResponseFormat != nil {
		body.ResponseFormat = encodeResponseFormat(req.ResponseFormat)
	}
	return body, nil
}

func encodeToolChoice(choice *model.ToolChoice) (any, error) {
	switch choice.Mode {
	case "", model.ToolChoiceModeAuto:
		return "auto", nil
	case model.ToolChoiceModeNone:
		return "none", nil
	case model.ToolChoiceModeRequired:
		return "any", nil
	case model.ToolChoiceModeTool:
		if choice.Name == "" {
			return nil, apierror.InvalidInput("mistral: tool choice mode \"tool\" requires a name")
		}
		return map[string]any{
			"type":     "function",
			"function": map[string]string{"name": choice.Name},
		}, nil
	default:
		return nil, apierror.InvalidInputf("mistral: unsupported tool choice mode %q", choice.Mode)
	}
}

func encodeResponseFormat(rf *model.ResponseFormat) *responseFormat {
	if rf.Kind == model.ResponseFormatKindText {
		return &responseFormat{Type: "text"}
	}
	if rf.Schema == nil {
		return &responseFormat{Type: "json_object"}
	}
	return &responseFormat{
		Type: "json_schema",
		JSONSchema: &jsonSchemaSpec{
			Name:   rf.Name,
			Schema: rf.Schema,
			Strict: true,
		},
	}
}

func encodeTools(defs []model.ToolDefinition) []tool {
	out := make([]tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, tool{
			Type: "function",
			Function: toolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

func encodeMessages(systemPrompt string, msgs []model.Message) ([]message, error) {
	out := make([]message, 0, len(msgs)+1)
	if systemPrompt != "" {
		out = append(out, message{Role: "system", Content: systemPrompt})
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
					return nil, apierror.Invariant("mistral: cannot encode tool result content", err)
				}
				out = append(out, message{Role: "tool", Content: string(data), ToolCallID: tr.ToolCallID})
			}
		case model.RoleAssistant:
			msg := message{Role: "assistant"}
			for _, p := range m.Parts {
				switch v := p.(type) {
				case model.TextPart:
					msg.Content += v.Text
				case model.ToolCallPart:
					args, _ := json.Marshal(v.Args)
					msg.ToolCalls = append(msg.ToolCalls, toolCall{
						ID:   v.ToolCallID,
						Type: "function",
						Function: toolCallFunction{
							Name:      v.ToolName,
							Arguments: string(args),
						},
					})
				}
			}
			out = append(out, msg)
		case model.RoleUser:
			text, err := encodeUserContent(m.Parts)
			if err != nil {
				return nil, err
			}
			out = append(out, message{Role: "user", Content: text})
		}
	}
	return out, nil
}

func encodeUserContent(parts []model.Part) (string, error) {
	var text string
	for _, p := range parts {
		switch v := p.(type) {
		case model.TextPart:
			text += v.Text
		case model.ImagePart:
			return "", apierror.Unsupported("mistral: image input requires the OCR/document content-array surface, not yet wired")
		case model.SourcePart:
			return "", apierror.Unsupported("mistral: source parts must be down-converted before reaching the adapter")
		}
	}
	return text, nil
}
