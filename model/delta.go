package model

// PartDelta is implemented by every incremental, append-wise update to a
// Part emitted during streaming.
type PartDelta interface {
	isPartDelta()
	Type() PartType
}

type (
	// TextPartDelta appends to a TextPart's Text.
	TextPartDelta struct {
		Text string
	}

	// ReasoningPartDelta appends to a ReasoningPart's Text and may supply an
	// id/signature the first time they become available.
	ReasoningPartDelta struct {
		Text      string
		Signature string
		ID        string
	}

	// AudioPartDelta appends to an AudioPart's binary payload. Metadata
	// fields are taken on a first-seen-non-empty basis by the accumulator.
	AudioPartDelta struct {
		AudioData  []byte
		Format     AudioFormat
		SampleRate int
		Channels   int
		Transcript string
	}

	// ImagePartDelta appends to an ImagePart's binary payload.
	ImagePartDelta struct {
		ImageData []byte
		Width     int
		Height    int
		MimeType  string
	}

	// ToolCallPartDelta appends a JSON argument fragment to a ToolCallPart
	// under construction. ToolCallID/ToolName are taken on a
	// first-non-empty-wins basis.
	ToolCallPartDelta struct {
		ToolCallID string
		ToolName   string
		ArgsDelta  string
	}
)

func (TextPartDelta) isPartDelta()      {}
func (ReasoningPartDelta) isPartDelta() {}
func (AudioPartDelta) isPartDelta()     {}
func (ImagePartDelta) isPartDelta()     {}
func (ToolCallPartDelta) isPartDelta()  {}

func (TextPartDelta) Type() PartType      { return PartTypeText }
func (ReasoningPartDelta) Type() PartType { return PartTypeReasoning }
func (AudioPartDelta) Type() PartType     { return PartTypeAudio }
func (ImagePartDelta) Type() PartType     { return PartTypeImage }
func (ToolCallPartDelta) Type() PartType  { return PartTypeToolCall }

// ContentDelta is one incremental update destined for Parts[Index] in the
// eventual finalized content array.
type ContentDelta struct {
	Index int
	Part  PartDelta
}
