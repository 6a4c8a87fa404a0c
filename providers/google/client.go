// Package google implements model.LanguageModel on top of the Gemini API
// via google.golang.org/genai.
package google

import (
	"context"
	"encoding/base64"
	"iter"

	"google.golang.org/genai"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// ModelsClient captures the subset of the genai SDK used by the adapter, so
// tests can substitute a fake without a live API key.
type ModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Options configures a Client.
type Options struct {
	Model     string
	MaxTokens int
	Pricing   *model.Pricing
}

// Client implements model.LanguageModel against the Gemini API.
type Client struct {
	models    ModelsClient
	modelID   string
	maxTokens int
	pricing   *model.Pricing
}

// New builds a Client from an already-constructed genai Models client
// (typically &genai.NewClient(...).Models).
func New(models ModelsClient, opts Options) (*Client, error) {
	if models == nil {
		return nil, apierror.InvalidInput("google: models client is required")
	}
	if opts.Model == "" {
		return nil, apierror.InvalidInput("google: model identifier is required")
	}
	return &Client{models: models, modelID: opts.Model, maxTokens: opts.MaxTokens, pricing: opts.Pricing}, nil
}

func (c *Client) Provider() string { return "google" }
func (c *Client) ModelID() string  { return c.modelID }

func (c *Client) Metadata() model.Metadata {
	return model.Metadata{
		Capabilities: []model.Capability{
			model.CapabilityTextInput, model.CapabilityTextOutput,
			model.CapabilityImageInput, model.CapabilityFunctionCalling,
			model.CapabilityStructuredOutput, model.CapabilityReasoning,
		},
		Pricing: c.pricing,
	}
}

// Generate issues one non-streaming GenerateContent call.
func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	contents, config, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.models.GenerateContent(ctx, c.modelID, contents, config)
	if err != nil {
		return nil, apierror.Transport(err)
	}
	return c.translateResponse(resp)
}

// Stream issues one GenerateContentStream call and adapts its result
// sequence.
func (c *Client) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	contents, config, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	seq := c.models.GenerateContentStream(ctx, c.modelID, contents, config)
	return newStreamer(ctx, seq, c.pricing), nil
}

func (c *Client) prepareRequest(req *model.Request) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	contents, err := encodeMessages(req.Messages)
	if err != nil {
		return nil, nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Role: "user", Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		config.Temperature = &t
	}
	if req.TopP != nil {
		p := float32(*req.TopP)
		config.TopP = &p
	}
	if req.TopK != nil {
		k := float32(*req.TopK)
		config.TopK = &k
	}
	if req.Reasoning != nil && req.Reasoning.Enabled {
		config.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
		if req.Reasoning.BudgetTokens > 0 {
			budget := int32(req.Reasoning.BudgetTokens)
			config.ThinkingConfig.ThinkingBudget = &budget
		}
	}
	if len(req.Tools) > 0 {
		config.Tools = encodeTools(req.Tools)
	}
	if req.ToolChoice != nil {
		tc, err := encodeToolChoice(req.ToolChoice)
		if err != nil {
			return nil, nil, err
		}
		config.ToolConfig = tc
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Kind == model.ResponseFormatKindJSON {
		config.ResponseMIMEType = "application/json"
		if req.ResponseFormat.Schema != nil {
			config.ResponseSchema = schemaFromMap(req.ResponseFormat.Schema)
		}
	}
	return contents, config, nil
}

func encodeTools(defs []model.ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  schemaFromMap(def.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func encodeToolChoice(choice *model.ToolChoice) (*genai.ToolConfig, error) {
	switch choice.Mode {
	case "", model.ToolChoiceModeAuto:
		return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto}}, nil
	case model.ToolChoiceModeNone:
		return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeNone}}, nil
	case model.ToolChoiceModeRequired:
		return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAny}}, nil
	case model.ToolChoiceModeTool:
		if choice.Name == "" {
			return nil, apierror.InvalidInput("google: tool choice mode \"tool\" requires a name")
		}
		return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingConfigModeAny,
			AllowedFunctionNames: []string{choice.Name},
		}}, nil
	default:
		return nil, apierror.InvalidInputf("google: unsupported tool choice mode %q", choice.Mode)
	}
}

// schemaFromMap translates a JSON-Schema-shaped map into a genai.Schema
// field by field, recursing into properties and items. Only type,
// description, required, properties and items are carried over; other
// JSON Schema keywords are dropped.
func schemaFromMap(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = genai.Type(t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = req
	} else if reqAny, ok := m["required"].([]any); ok {
		for _, r := range reqAny {
			if rs, ok := r.(string); ok {
				s.Required = append(s.Required, rs)
			}
		}
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if pm, ok := v.(map[string]any); ok {
				s.Properties[k] = schemaFromMap(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = schemaFromMap(items)
	}
	return s
}

func encodeMessages(msgs []model.Message) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		var role string
		switch m.Role {
		case model.RoleUser, model.RoleTool:
			role = "user"
		case model.RoleAssistant:
			role = "model"
		}
		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch v := p.(type) {
			case model.TextPart:
				if v.Text != "" {
					parts = append(parts, &genai.Part{Text: v.Text})
				}
			case model.ImagePart:
				parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: v.MimeType, Data: v.ImageData}})
			case model.ReasoningPart:
				if v.Text != "" {
					sig, _ := base64.StdEncoding.DecodeString(v.Signature)
					parts = append(parts, &genai.Part{Text: v.Text, Thought: true, ThoughtSignature: sig})
				}
			case model.ToolCallPart:
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID: v.ToolCallID, Name: v.ToolName, Args: v.Args,
				}})
			case model.ToolResultPart:
				resp := map[string]any{}
				if v.IsError {
					resp["error"] = v.Content
				} else {
					resp["output"] = v.Content
				}
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID: v.ToolCallID, Name: v.ToolName, Response: resp,
				}})
			case model.SourcePart:
				return nil, apierror.Unsupported("google: source parts must be down-converted before reaching the adapter")
			}
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out, nil
}
