// Package cohere implements model.LanguageModel on top of Cohere's Chat v2
// API. No Go SDK for Cohere exists anywhere in the example pack, so this
// adapter speaks the documented HTTP+JSON/SSE protocol directly through
// internal/httpsse, per spec.md §6.2's transport-leg contract.
package cohere

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/internal/httpsse"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

const defaultBaseURL = "https://api.cohere.com/v2"

// Options configures a Client.
type Options struct {
	Model     string
	APIKey    string
	MaxTokens int
	Pricing   *model.Pricing
	// BaseURL overrides the default Cohere API origin; tests point this at
	// an httptest.Server.
	BaseURL string
	// HTTP overrides the underlying *http.Client (nil uses http.DefaultClient).
	HTTP *http.Client
}

// Client implements model.LanguageModel against the Cohere Chat v2 API.
type Client struct {
	http      *httpsse.Client
	modelID   string
	maxTokens int
	pricing   *model.Pricing
}

// New builds a Client that talks to Cohere directly over HTTP.
func New(opts Options) (*Client, error) {
	if opts.Model == "" {
		return nil, apierror.InvalidInput("cohere: model identifier is required")
	}
	if opts.APIKey == "" {
		return nil, apierror.InvalidInput("cohere: api key is required")
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

func (c *Client) Provider() string { return "cohere" }
func (c *Client) ModelID() string  { return c.modelID }

func (c *Client) Metadata() model.Metadata {
	return model.Metadata{
		Capabilities: []model.Capability{
			model.CapabilityTextInput, model.CapabilityTextOutput,
			model.CapabilityFunctionCalling, model.CapabilityCitation,
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
	if err := c.http.PostJSON(ctx, "/chat", body, &resp); err != nil {
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
	events, err := c.http.PostSSE(ctx, "/chat", body)
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
		body.P = req.TopP
	}
	if req.TopK != nil {
		body.K = req.TopK
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
	if req.ResponseFormat != nil && req.ResponseFormat.Kind == model.ResponseFormatKindJSON {
		body.ResponseFormat = &responseFormat{Type: "json_object", Schema: req.ResponseFormat.Schema}
	}
	return body, nil
}

func encodeToolChoice(choice *model.ToolChoice) (string, error) {
	switch choice.Mode {
	case "", model.ToolChoiceModeAuto:
		return "", nil
	case model.ToolChoiceModeRequired:
		return "REQUIRED", nil
	case model.ToolChoiceModeNone:
		return "NONE", nil
	case model.ToolChoiceModeTool:
		// Cohere's v2 API has no named-tool-force mode; the library cannot
		// serve this request shape for this provider.
		return "", apierror.Unsupportedf("cohere: tool choice mode %q is not supported", choice.Mode)
	default:
		return "", apierror.InvalidInputf("cohere: unsupported tool choice mode %q", choice.Mode)
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
				out = append(out, message{
					Role:       "tool",
					ToolCallID: tr.ToolCallID,
					Content:    flattenToolResultText(tr.Content),
				})
			}
		case model.RoleAssistant:
			msg := message{Role: "assistant"}
			for _, p := range m.Parts {
				switch v := p.(type) {
				case model.TextPart:
					msg.Content += v.Text
				case model.ToolCallPart:
					msg.ToolCalls = append(msg.ToolCalls, toolCall{
						ID:   v.ToolCallID,
						Type: "function",
						Function: toolCallFunction{
							Name:      v.ToolName,
							Arguments: marshalArgs(v.Args),
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
		case model.ImagePart, model.AudioPart:
			return "", apierror.Unsupported("cohere: image/audio input is not supported by the chat v2 text surface")
		case model.SourcePart:
			return "", apierror.Unsupported("cohere: source parts must be down-converted before reaching the adapter")
		}
	}
	return text, nil
}

func flattenToolResultText(parts []model.Part) string {
	var text string
	for _, p := range parts {
		if t, ok := p.(model.TextPart); ok {
			text += t.Text
		}
	}
	return text
}

func marshalArgs(args map[string]any) string {
	if args == nil {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}
