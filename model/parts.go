// Package model defines the provider-agnostic message, delta, and streaming
// types shared by every adapter and by the agent run loop. Content is
// modeled as typed Parts (text, image, audio, reasoning, source, tool-call,
// tool-result) grouped into role-tagged Messages, following the same
// marker-interface sum-type idiom the pack's agent runtimes use for their
// own message content rather than an open class hierarchy.
package model

// Part is implemented by every concrete content block. It is a closed set:
// isPart is unexported so no package outside model can add a variant.
type Part interface {
	isPart()
	// Type returns the wire discriminator for this part.
	Type() PartType
}

// PartType is the wire discriminator carried under the "type" JSON key.
type PartType string

const (
	PartTypeText       PartType = "text"
	PartTypeImage      PartType = "image"
	PartTypeAudio      PartType = "audio"
	PartTypeReasoning  PartType = "reasoning"
	PartTypeSource     PartType = "source"
	PartTypeToolCall   PartType = "tool-call"
	PartTypeToolResult PartType = "tool-result"
)

// AudioFormat identifies the on-wire encoding of an AudioPart's bytes.
type AudioFormat string

const (
	AudioFormatWAV      AudioFormat = "wav"
	AudioFormatMP3      AudioFormat = "mp3"
	AudioFormatLinear16 AudioFormat = "linear16"
	AudioFormatFLAC     AudioFormat = "flac"
	AudioFormatMulaw    AudioFormat = "mulaw"
	AudioFormatAlaw     AudioFormat = "alaw"
	AudioFormatAAC      AudioFormat = "aac"
	AudioFormatOpus     AudioFormat = "opus"
)

type (
	// TextPart is plain text content, valid in user and assistant messages.
	TextPart struct {
		ID   string
		Text string
	}

	// ImagePart carries inline image bytes, valid in user and assistant
	// messages.
	ImagePart struct {
		ID        string
		MimeType  string
		ImageData []byte
		Width     int
		Height    int
	}

	// AudioPart carries inline audio bytes, valid in user and assistant
	// messages.
	AudioPart struct {
		ID         string
		AudioData  []byte
		Format     AudioFormat
		SampleRate int
		Channels   int
		Transcript string
	}

	// ReasoningPart carries provider-issued reasoning/thinking content,
	// valid only in assistant messages. Signature is opaque and must be
	// round-tripped byte-for-byte: only the model that emitted it can
	// interpret it.
	ReasoningPart struct {
		ID        string
		Text      string
		Signature string
	}

	// SourcePart carries citation substrate, valid in user and tool
	// messages. Content never nests another SourcePart, ToolCallPart, or
	// ToolResultPart.
	SourcePart struct {
		ID      string
		Source  string
		Title   string
		Content []Part
	}

	// ToolCallPart declares an assistant-requested tool invocation, valid
	// only in assistant messages.
	ToolCallPart struct {
		ID         string
		ToolCallID string
		ToolName   string
		// Args is the parsed JSON arguments object, or nil when the model
		// supplied no arguments.
		Args map[string]any
	}

	// ToolResultPart carries the outcome of a tool call, valid only in tool
	// messages.
	ToolResultPart struct {
		ID         string
		ToolCallID string
		ToolName   string
		Content    []Part
		IsError    bool
	}
)

func (TextPart) isPart()       {}
func (ImagePart) isPart()      {}
func (AudioPart) isPart()      {}
func (ReasoningPart) isPart()  {}
func (SourcePart) isPart()     {}
func (ToolCallPart) isPart()   {}
func (ToolResultPart) isPart() {}

func (TextPart) Type() PartType       { return PartTypeText }
func (ImagePart) Type() PartType      { return PartTypeImage }
func (AudioPart) Type() PartType      { return PartTypeAudio }
func (ReasoningPart) Type() PartType  { return PartTypeReasoning }
func (SourcePart) Type() PartType     { return PartTypeSource }
func (ToolCallPart) Type() PartType   { return PartTypeToolCall }
func (ToolResultPart) Type() PartType { return PartTypeToolResult }
