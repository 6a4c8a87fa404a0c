package model

// Response is the result of a non-streaming LanguageModel.Generate call.
type Response struct {
	Content []Part
	Usage   *Usage
	// Cost, in USD, is set when Usage is present and the model was
	// constructed with Pricing.
	Cost *float64
}

// PartialResponse is one increment of a streaming LanguageModel.Stream call.
type PartialResponse struct {
	Delta *ContentDelta
	Usage *Usage
	Cost  *float64
}

// Capability names an optional capability a LanguageModel may advertise via
// Metadata().
type Capability string

const (
	CapabilityTextInput        Capability = "text-input"
	CapabilityTextOutput       Capability = "text-output"
	CapabilityImageInput       Capability = "image-input"
	CapabilityImageOutput      Capability = "image-output"
	CapabilityAudioInput       Capability = "audio-input"
	CapabilityAudioOutput      Capability = "audio-output"
	CapabilityFunctionCalling  Capability = "function-calling"
	CapabilityStructuredOutput Capability = "structured-output"
	CapabilityCitation         Capability = "citation"
	CapabilityReasoning        Capability = "reasoning"
)

// Metadata describes a LanguageModel's capabilities and optional pricing.
type Metadata struct {
	Capabilities []Capability
	Pricing      *Pricing
}

// HasCapability reports whether c is advertised in m.Capabilities.
func (m Metadata) HasCapability(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
