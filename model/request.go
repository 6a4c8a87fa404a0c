package model

// Modality names a content channel a model may be asked to produce.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
	ModalityImage Modality = "image"
)

// ToolDefinition describes a tool exposed to the model, with parameters
// given as a JSON Schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolChoiceMode selects how a request constrains the model's tool use.
type ToolChoiceMode string

const (
	ToolChoiceModeAuto     ToolChoiceMode = "auto"
	ToolChoiceModeNone     ToolChoiceMode = "none"
	ToolChoiceModeRequired ToolChoiceMode = "required"
	ToolChoiceModeTool     ToolChoiceMode = "tool"
)

// ToolChoice configures optional tool-use behavior for a Request. A nil
// *ToolChoice on Request means provider-default (normally auto).
type ToolChoice struct {
	Mode ToolChoiceMode
	// Name identifies the tool to force when Mode is ToolChoiceModeTool.
	Name string
}

// ResponseFormatKind discriminates ResponseFormat.
type ResponseFormatKind string

const (
	ResponseFormatKindText ResponseFormatKind = "text"
	ResponseFormatKindJSON ResponseFormatKind = "json"
)

// ResponseFormat constrains the shape of the model's output.
type ResponseFormat struct {
	Kind ResponseFormatKind
	// Name, Description, Schema apply only when Kind is
	// ResponseFormatKindJSON. A nil Schema requests generic JSON mode; a
	// non-nil Schema requests structured-output mode, strict where the
	// provider supports it.
	Name        string
	Description string
	Schema      map[string]any
}

// AudioOptions configures audio output when Request.Modalities includes
// ModalityAudio.
type AudioOptions struct {
	Format       AudioFormat
	Voice        string
	LanguageCode string
}

// ReasoningOptions configures provider thinking/reasoning behavior.
type ReasoningOptions struct {
	Enabled      bool
	BudgetTokens int
}

// ModelClass selects among a provider's configured model tiers, for
// adapters that front more than one concrete model identifier behind a
// single Client (Amazon Bedrock's Converse API serves several Claude/Nova
// models through one runtime client). Adapters that bind exactly one model
// per Client instance ignore this field.
type ModelClass string

const (
	// ModelClassDefault selects the adapter's configured default model.
	ModelClassDefault ModelClass = ""
	// ModelClassHighReasoning selects a higher-capability, higher-cost model
	// tier for requests that need it.
	ModelClassHighReasoning ModelClass = "high-reasoning"
	// ModelClassSmall selects a cheaper, lower-latency model tier.
	ModelClassSmall ModelClass = "small"
)

// Request captures every input to a single model invocation.
type Request struct {
	Messages     []Message
	SystemPrompt string

	// Model, when set, overrides the adapter's configured model identifier
	// for this call. ModelClass is consulted only when Model is empty.
	Model      string
	ModelClass ModelClass

	Tools      []ToolDefinition
	ToolChoice *ToolChoice

	ResponseFormat *ResponseFormat

	MaxTokens        int
	Temperature      *float64
	TopP             *float64
	TopK             *int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Seed             *int64

	Modalities []Modality
	Audio      *AudioOptions
	Reasoning  *ReasoningOptions

	Metadata map[string]string
	// Extra is passed through to the provider verbatim when supported; the
	// core never interprets it.
	Extra map[string]any
}

// Validate rejects malformed input before any network call, per the
// InvalidInput error kind contract.
func (r *Request) Validate() error {
	if len(r.Messages) == 0 {
		return invalidInputMessagesRequired()
	}
	return validateToolCallLinkage(r.Messages)
}
