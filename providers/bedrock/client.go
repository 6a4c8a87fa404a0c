// Package bedrock implements model.LanguageModel on top of the Amazon
// Bedrock Converse/ConverseStream API via
// github.com/aws/aws-sdk-go-v2/service/bedrockruntime, fronting multiple
// Claude/Nova model identifiers through one runtime client.
package bedrock

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// RuntimeClient is the subset of the AWS Bedrock runtime client the adapter
// calls. ConverseStream returns the narrower StreamOutput interface rather
// than the concrete SDK type so tests can substitute a fake without reaching
// into *bedrockruntime.ConverseStreamOutput's unexported fields; Wrap adapts
// the real *bedrockruntime.Client to this interface.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (StreamOutput, error)
}

// StreamOutput is the subset of the AWS ConverseStream output type the
// adapter needs, satisfied by *bedrockruntime.ConverseStreamOutput and by any
// test fake exposing the same method.
type StreamOutput interface {
	GetStream() *bedrockruntime.ConverseStreamEventStream
}

// Wrap adapts a real *bedrockruntime.Client to RuntimeClient. Production
// callers pass Wrap(client) as Options.Runtime; tests substitute their own
// RuntimeClient implementation instead.
func Wrap(client *bedrockruntime.Client) RuntimeClient { return runtimeWrapper{client} }

type runtimeWrapper struct{ client *bedrockruntime.Client }

func (w runtimeWrapper) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	return w.client.Converse(ctx, params, optFns...)
}

func (w runtimeWrapper) ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (StreamOutput, error) {
	return w.client.ConverseStream(ctx, params, optFns...)
}

// Options configures a Client.
type Options struct {
	// Runtime is the Bedrock runtime client. Required.
	Runtime RuntimeClient

	// DefaultModel is used when a Request sets neither Model nor
	// ModelClass, and is the fallback for any ModelClass left unconfigured.
	// Required.
	DefaultModel string
	// HighModel backs model.ModelClassHighReasoning.
	HighModel string
	// SmallModel backs model.ModelClassSmall.
	SmallModel string

	// MaxTokens is used when a Request does not set MaxTokens.
	MaxTokens int
	// Pricing, when set, is returned from Metadata() and used to compute
	// Response.Cost / PartialResponse.Cost.
	Pricing *model.Pricing
}

// Client implements model.LanguageModel against the Bedrock Converse API.
type Client struct {
	runtime      RuntimeClient
	defaultModel string
	highModel    string
	smallModel   string
	maxTokens    int
	pricing      *model.Pricing
}

// New builds a Client from an already-constructed Bedrock runtime client.
func New(runtime RuntimeClient, opts Options) (*Client, error) {
	if runtime == nil {
		return nil, apierror.InvalidInput("bedrock: runtime client is required")
	}
	if opts.DefaultModel == "" {
		return nil, apierror.InvalidInput("bedrock: default model identifier is required")
	}
	return &Client{
		runtime:      runtime,
		defaultModel: opts.DefaultModel,
		highModel:    opts.HighModel,
		smallModel:   opts.SmallModel,
		maxTokens:    opts.MaxTokens,
		pricing:      opts.Pricing,
	}, nil
}

func (c *Client) Provider() string { return "bedrock" }
func (c *Client) ModelID() string  { return c.defaultModel }

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

func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	parts, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	out, err := c.runtime.Converse(ctx, c.buildConverseInput(parts, req))
	if err != nil {
		return nil, translateTransportErr(err)
	}
	return c.translateResponse(out, parts.toolNameProvToCanonical)
}

func (c *Client) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	parts, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	out, err := c.runtime.ConverseStream(ctx, c.buildConverseStreamInput(parts, req))
	if err != nil {
		return nil, translateTransportErr(err)
	}
	es := out.GetStream()
	if es == nil {
		return nil, apierror.Invariant("bedrock: stream output missing event stream", nil)
	}
	return newStreamer(ctx, es, parts.toolNameProvToCanonical, c.pricing), nil
}

type requestParts struct {
	modelID                 string
	messages                []brtypes.Message
	system                  []brtypes.SystemContentBlock
	toolConfig              *brtypes.ToolConfiguration
	toolNameProvToCanonical map[string]string
}

func (c *Client) prepareRequest(req *model.Request) (*requestParts, error) {
	modelID := c.resolveModelID(req)
	toolConfig, canonToSan, sanToCanon, err := encodeTools(req.Tools, req.ToolChoice)
	if err != nil {
		return nil, err
	}
	messages, system, err := encodeMessages(req.SystemPrompt, req.Messages, canonToSan)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, apierror.InvalidInput("bedrock: at least one user/assistant message is required")
	}
	return &requestParts{
		modelID:                 modelID,
		messages:                messages,
		system:                  system,
		toolConfig:              toolConfig,
		toolNameProvToCanonical: sanToCanon,
	}, nil
}

// resolveModelID prefers an explicit per-request Model override, then maps
// ModelClass to the configured tier, and falls back to DefaultModel.
func (c *Client) resolveModelID(req *model.Request) string {
	if req.Model != "" {
		return req.Model
	}
	switch req.ModelClass {
	case model.ModelClassHighReasoning:
		if c.highModel != "" {
			return c.highModel
		}
	case model.ModelClassSmall:
		if c.smallModel != "" {
			return c.smallModel
		}
	}
	return c.defaultModel
}

func (c *Client) buildConverseInput(parts *requestParts, req *model.Request) *bedrockruntime.ConverseInput {
	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(parts.modelID),
		Messages: parts.messages,
	}
	if len(parts.system) > 0 {
		input.System = parts.system
	}
	if parts.toolConfig != nil {
		input.ToolConfig = parts.toolConfig
	}
	if cfg := c.inferenceConfig(req); cfg != nil {
		input.InferenceConfig = cfg
	}
	return input
}

func (c *Client) buildConverseStreamInput(parts *requestParts, req *model.Request) *bedrockruntime.ConverseStreamInput {
	input := &bedrockruntime.ConverseStreamInput{
		ModelId:  aws.String(parts.modelID),
		Messages: parts.messages,
	}
	if len(parts.system) > 0 {
		input.System = parts.system
	}
	if parts.toolConfig != nil {
		input.ToolConfig = parts.toolConfig
	}
	if cfg := c.inferenceConfig(req); cfg != nil {
		input.InferenceConfig = cfg
	}
	return input
}

func (c *Client) inferenceConfig(req *model.Request) *brtypes.InferenceConfiguration {
	var cfg brtypes.InferenceConfiguration
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		cfg.MaxTokens = aws.Int32(int32(maxTokens))
	}
	if req.Temperature != nil {
		cfg.Temperature = aws.Float32(float32(*req.Temperature))
	}
	if req.TopP != nil {
		cfg.TopP = aws.Float32(float32(*req.TopP))
	}
	if cfg.MaxTokens == nil && cfg.Temperature == nil && cfg.TopP == nil {
		return nil
	}
	return &cfg
}

// translateTransportErr maps a Bedrock SDK error to the shared taxonomy,
// preserving throttling responses as KindProvider with their HTTP status so
// callers can branch on it the same way they would for any other provider.
func translateTransportErr(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException":
			return apierror.Provider(429, apiErr.ErrorMessage(), err)
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return apierror.Provider(respErr.HTTPStatusCode(), err.Error(), err)
	}
	return apierror.Transport(err)
}
