package partutil

import (
	"strings"

	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// FlattenSource renders a SourcePart as an embedded text citation for
// providers that do not accept source content directly. The returned
// TextPart is a lossy substitute: citation structure (source/title
// metadata) is preserved as inline text, not as provider-native citation
// data.
func FlattenSource(p model.SourcePart) model.TextPart {
	var b strings.Builder
	b.WriteString("[source: ")
	if p.Title != "" {
		b.WriteString(p.Title)
		b.WriteString(" — ")
	}
	b.WriteString(p.Source)
	b.WriteString("]\n")
	b.WriteString(FlattenToText(p.Content))
	return model.TextPart{Text: b.String()}
}

// FlattenToText concatenates the textual representation of parts for
// providers that support only a single text modality. Non-text parts
// down-convert to a bracketed placeholder describing what was dropped;
// callers that need a hard failure instead of a placeholder should check
// CanFlatten first.
func FlattenToText(parts []model.Part) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString("\n")
		}
		switch v := p.(type) {
		case model.TextPart:
			b.WriteString(v.Text)
		case model.ReasoningPart:
			b.WriteString(v.Text)
		case model.SourcePart:
			b.WriteString(FlattenSource(v).Text)
		case model.AudioPart:
			b.WriteString("[audio transcript: ")
			b.WriteString(v.Transcript)
			b.WriteString("]")
		case model.ImagePart:
			b.WriteString("[image omitted]")
		case model.ToolCallPart:
			b.WriteString("[tool call omitted: ")
			b.WriteString(v.ToolName)
			b.WriteString("]")
		case model.ToolResultPart:
			b.WriteString(FlattenToText(v.Content))
		}
	}
	return b.String()
}

// CanFlatten reports whether FlattenToText can losslessly-enough represent
// p without dropping content a caller is likely to need verbatim (binary
// payloads). Adapters call this before silently down-converting; when it
// returns false for a part the provider cannot accept, the adapter should
// fail with apierror.Unsupported instead.
func CanFlatten(p model.Part) bool {
	switch p.(type) {
	case model.ImagePart:
		return false
	default:
		return true
	}
}
