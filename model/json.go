package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
)

// wire JSON shapes. Binary payloads are base64 strings, no data-URL prefix.
// Absent optional fields are omitted entirely except where explicitly
// nullable (tool-call.args). See spec.md §6.1.

type wireTextPart struct {
	Type PartType `json:"type"`
	ID   string   `json:"id,omitempty"`
	Text string   `json:"text"`
}

type wireImagePart struct {
	Type      PartType `json:"type"`
	ID        string   `json:"id,omitempty"`
	MimeType  string   `json:"mime_type"`
	ImageData string   `json:"image_data"`
	Width     int      `json:"width,omitempty"`
	Height    int      `json:"height,omitempty"`
}

type wireAudioPart struct {
	Type       PartType    `json:"type"`
	ID         string      `json:"id,omitempty"`
	AudioData  string      `json:"audio_data"`
	Format     AudioFormat `json:"format"`
	SampleRate int         `json:"sample_rate,omitempty"`
	Channels   int         `json:"channels,omitempty"`
	Transcript string      `json:"transcript,omitempty"`
}

type wireReasoningPart struct {
	Type      PartType `json:"type"`
	ID        string   `json:"id,omitempty"`
	Text      string   `json:"text"`
	Signature string   `json:"signature,omitempty"`
}

type wireSourcePart struct {
	Type    PartType          `json:"type"`
	ID      string            `json:"id,omitempty"`
	Source  string            `json:"source"`
	Title   string            `json:"title"`
	Content []json.RawMessage `json:"content"`
}

type wireToolCallPart struct {
	Type       PartType        `json:"type"`
	ID         string          `json:"id,omitempty"`
	ToolCallID string          `json:"tool_call_id"`
	ToolName   string          `json:"tool_name"`
	Args       json.RawMessage `json:"args"`
}

type wireToolResultPart struct {
	Type       PartType          `json:"type"`
	ID         string            `json:"id,omitempty"`
	ToolCallID string            `json:"tool_call_id"`
	ToolName   string            `json:"tool_name"`
	Content    []json.RawMessage `json:"content"`
	IsError    bool              `json:"is_error,omitempty"`
}

// EncodePart renders p in the normative wire shape (spec.md §6.1).
func EncodePart(p Part) (json.RawMessage, error) {
	switch v := p.(type) {
	case TextPart:
		return json.Marshal(wireTextPart{Type: PartTypeText, ID: v.ID, Text: v.Text})
	case ImagePart:
		return json.Marshal(wireImagePart{
			Type: PartTypeImage, ID: v.ID, MimeType: v.MimeType,
			ImageData: base64.StdEncoding.EncodeToString(v.ImageData),
			Width:     v.Width, Height: v.Height,
		})
	case AudioPart:
		return json.Marshal(wireAudioPart{
			Type: PartTypeAudio, ID: v.ID,
			AudioData:  base64.StdEncoding.EncodeToString(v.AudioData),
			Format:     v.Format, SampleRate: v.SampleRate, Channels: v.Channels,
			Transcript: v.Transcript,
		})
	case ReasoningPart:
		return json.Marshal(wireReasoningPart{Type: PartTypeReasoning, ID: v.ID, Text: v.Text, Signature: v.Signature})
	case SourcePart:
		content, err := encodeParts(v.Content)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireSourcePart{Type: PartTypeSource, ID: v.ID, Source: v.Source, Title: v.Title, Content: content})
	case ToolCallPart:
		args, err := encodeArgs(v.Args)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireToolCallPart{Type: PartTypeToolCall, ID: v.ID, ToolCallID: v.ToolCallID, ToolName: v.ToolName, Args: args})
	case ToolResultPart:
		content, err := encodeParts(v.Content)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireToolResultPart{Type: PartTypeToolResult, ID: v.ID, ToolCallID: v.ToolCallID, ToolName: v.ToolName, Content: content, IsError: v.IsError})
	default:
		return nil, apierror.Invariantf("model: unknown part type %T", p)
	}
}

func encodeArgs(args map[string]any) (json.RawMessage, error) {
	if args == nil {
		return json.RawMessage("null"), nil
	}
	return json.Marshal(args)
}

func encodeParts(parts []Part) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(parts))
	for i, p := range parts {
		raw, err := EncodePart(p)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

// DecodePart parses raw into the concrete Part its "type" discriminator
// names.
func DecodePart(raw json.RawMessage) (Part, error) {
	var disc struct {
		Type PartType `json:"type"`
	}
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, apierror.Invariant("model: malformed part", err)
	}
	switch disc.Type {
	case PartTypeText:
		var w wireTextPart
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("model: malformed text part", err)
		}
		return TextPart{ID: w.ID, Text: w.Text}, nil
	case PartTypeImage:
		var w wireImagePart
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("model: malformed image part", err)
		}
		data, err := base64.StdEncoding.DecodeString(w.ImageData)
		if err != nil {
			return nil, apierror.Invariant("model: malformed image_data", err)
		}
		return ImagePart{ID: w.ID, MimeType: w.MimeType, ImageData: data, Width: w.Width, Height: w.Height}, nil
	case PartTypeAudio:
		var w wireAudioPart
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("model: malformed audio part", err)
		}
		data, err := base64.StdEncoding.DecodeString(w.AudioData)
		if err != nil {
			return nil, apierror.Invariant("model: malformed audio_data", err)
		}
		return AudioPart{ID: w.ID, AudioData: data, Format: w.Format, SampleRate: w.SampleRate, Channels: w.Channels, Transcript: w.Transcript}, nil
	case PartTypeReasoning:
		var w wireReasoningPart
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("model: malformed reasoning part", err)
		}
		return ReasoningPart{ID: w.ID, Text: w.Text, Signature: w.Signature}, nil
	case PartTypeSource:
		var w wireSourcePart
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("model: malformed source part", err)
		}
		content, err := decodeParts(w.Content)
		if err != nil {
			return nil, err
		}
		return SourcePart{ID: w.ID, Source: w.Source, Title: w.Title, Content: content}, nil
	case PartTypeToolCall:
		var w wireToolCallPart
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("model: malformed tool-call part", err)
		}
		args, err := decodeArgs(w.Args)
		if err != nil {
			return nil, err
		}
		return ToolCallPart{ID: w.ID, ToolCallID: w.ToolCallID, ToolName: w.ToolName, Args: args}, nil
	case PartTypeToolResult:
		var w wireToolResultPart
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("model: malformed tool-result part", err)
		}
		content, err := decodeParts(w.Content)
		if err != nil {
			return nil, err
		}
		return ToolResultPart{ID: w.ID, ToolCallID: w.ToolCallID, ToolName: w.ToolName, Content: content, IsError: w.IsError}, nil
	default:
		return nil, apierror.Invariantf("model: unknown part type %q", disc.Type)
	}
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apierror.Invariant("model: malformed tool-call args", err)
	}
	return m, nil
}

func decodeParts(raws []json.RawMessage) ([]Part, error) {
	out := make([]Part, len(raws))
	for i, raw := range raws {
		p, err := DecodePart(raw)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

type wireMessage struct {
	Role    Role              `json:"role"`
	Content []json.RawMessage `json:"content"`
}

// MarshalJSON renders the message in the normative wire shape.
func (m Message) MarshalJSON() ([]byte, error) {
	parts, err := encodeParts(m.Parts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireMessage{Role: m.Role, Content: parts})
}

// UnmarshalJSON parses the normative wire shape into m.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return apierror.Invariant("model: malformed message", err)
	}
	switch w.Role {
	case RoleUser, RoleAssistant, RoleTool:
	default:
		return apierror.Invariantf("model: unknown message role %q", w.Role)
	}
	parts, err := decodeParts(w.Content)
	if err != nil {
		return err
	}
	m.Role = w.Role
	m.Parts = parts
	return nil
}

type wirePartDelta struct {
	Type       string  `json:"type"`
	Text       string  `json:"text,omitempty"`
	Signature  *string `json:"signature,omitempty"`
	ID         *string `json:"id,omitempty"`
	ToolCallID *string `json:"tool_call_id,omitempty"`
	ToolName   *string `json:"tool_name,omitempty"`
	Args       *string `json:"args,omitempty"`
	ImageData  *string `json:"image_data,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	MimeType   *string `json:"mime_type,omitempty"`
	AudioData  *string `json:"audio_data,omitempty"`
	Format     *string `json:"format,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
	Channels   int     `json:"channels,omitempty"`
	Transcript *string `json:"transcript,omitempty"`
}

// MarshalJSON renders the ContentDelta in the normative wire shape.
func (d ContentDelta) MarshalJSON() ([]byte, error) {
	part, err := encodePartDelta(d.Part)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Index int             `json:"index"`
		Part  json.RawMessage `json:"part"`
	}{Index: d.Index, Part: part})
}

// UnmarshalJSON parses the normative wire shape into d.
func (d *ContentDelta) UnmarshalJSON(data []byte) error {
	var w struct {
		Index int             `json:"index"`
		Part  json.RawMessage `json:"part"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return apierror.Invariant("model: malformed content delta", err)
	}
	part, err := decodePartDelta(w.Part)
	if err != nil {
		return err
	}
	d.Index = w.Index
	d.Part = part
	return nil
}

func strp(s string) *string { return &s }

func encodePartDelta(p PartDelta) (json.RawMessage, error) {
	switch v := p.(type) {
	case TextPartDelta:
		return json.Marshal(wirePartDelta{Type: string(PartTypeText), Text: v.Text})
	case ReasoningPartDelta:
		w := wirePartDelta{Type: string(PartTypeReasoning), Text: v.Text}
		if v.Signature != "" {
			w.Signature = strp(v.Signature)
		}
		if v.ID != "" {
			w.ID = strp(v.ID)
		}
		return json.Marshal(w)
	case AudioPartDelta:
		w := wirePartDelta{Type: string(PartTypeAudio), SampleRate: v.SampleRate, Channels: v.Channels}
		if len(v.AudioData) > 0 {
			w.AudioData = strp(base64.StdEncoding.EncodeToString(v.AudioData))
		}
		if v.Format != "" {
			w.Format = strp(string(v.Format))
		}
		if v.Transcript != "" {
			w.Transcript = strp(v.Transcript)
		}
		return json.Marshal(w)
	case ImagePartDelta:
		w := wirePartDelta{Type: string(PartTypeImage), Width: v.Width, Height: v.Height}
		if len(v.ImageData) > 0 {
			w.ImageData = strp(base64.StdEncoding.EncodeToString(v.ImageData))
		}
		if v.MimeType != "" {
			w.MimeType = strp(v.MimeType)
		}
		return json.Marshal(w)
	case ToolCallPartDelta:
		w := wirePartDelta{Type: string(PartTypeToolCall)}
		if v.ToolCallID != "" {
			w.ToolCallID = strp(v.ToolCallID)
		}
		if v.ToolName != "" {
			w.ToolName = strp(v.ToolName)
		}
		if v.ArgsDelta != "" {
			w.Args = strp(v.ArgsDelta)
		}
		return json.Marshal(w)
	default:
		return nil, apierror.Invariantf("model: unknown part delta type %T", p)
	}
}

func decodePartDelta(raw json.RawMessage) (PartDelta, error) {
	var w wirePartDelta
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, apierror.Invariant("model: malformed part delta", err)
	}
	switch PartType(w.Type) {
	case PartTypeText:
		return TextPartDelta{Text: w.Text}, nil
	case PartTypeReasoning:
		d := ReasoningPartDelta{Text: w.Text}
		if w.Signature != nil {
			d.Signature = *w.Signature
		}
		if w.ID != nil {
			d.ID = *w.ID
		}
		return d, nil
	case PartTypeAudio:
		d := AudioPartDelta{SampleRate: w.SampleRate, Channels: w.Channels}
		if w.AudioData != nil {
			data, err := base64.StdEncoding.DecodeString(*w.AudioData)
			if err != nil {
				return nil, apierror.Invariant("model: malformed audio_data delta", err)
			}
			d.AudioData = data
		}
		if w.Format != nil {
			d.Format = AudioFormat(*w.Format)
		}
		if w.Transcript != nil {
			d.Transcript = *w.Transcript
		}
		return d, nil
	case PartTypeImage:
		d := ImagePartDelta{Width: w.Width, Height: w.Height}
		if w.ImageData != nil {
			data, err := base64.StdEncoding.DecodeString(*w.ImageData)
			if err != nil {
				return nil, apierror.Invariant("model: malformed image_data delta", err)
			}
			d.ImageData = data
		}
		if w.MimeType != nil {
			d.MimeType = *w.MimeType
		}
		return d, nil
	case PartTypeToolCall:
		d := ToolCallPartDelta{}
		if w.ToolCallID != nil {
			d.ToolCallID = *w.ToolCallID
		}
		if w.ToolName != nil {
			d.ToolName = *w.ToolName
		}
		if w.Args != nil {
			d.ArgsDelta = *w.Args
		}
		return d, nil
	default:
		return nil, fmt.Errorf("model: unknown part delta type %q", w.Type)
	}
}
