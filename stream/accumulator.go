// Package stream folds an ordered sequence of model.PartialResponse values
// into a finalized set of Parts, Usage and cost. The same folding logic
// applies uniformly across providers (spec.md §4.3).
package stream

import (
	"strings"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// Accumulator consumes PartialResponses in arrival order and exposes both
// an incremental view of the Parts accumulated so far and a final
// model.Response once the stream completes. It is not safe for concurrent
// use; callers fold one stream through one Accumulator from a single
// goroutine.
type Accumulator struct {
	entries []*entry
	usage   *model.Usage
	cost    *float64
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

type entry struct {
	kind model.PartType
	id   string

	text strings.Builder // text, reasoning

	signature string // reasoning

	toolCallID string // tool-call
	toolName   string
	args       strings.Builder

	audioData  []byte // audio
	format     model.AudioFormat
	sampleRate int
	channels   int
	transcript strings.Builder

	imageData []byte // image
	mimeType  string
	width     int
	height    int
}

// Add folds one delta into the accumulator. It returns an *apierror.Error
// of Kind Invariant if delta.Index is more than one past the current
// maximum index, or if a later delta at an existing index names a
// different part type than the one already established there.
func (a *Accumulator) Add(delta model.ContentDelta) error {
	switch {
	case delta.Index > len(a.entries):
		return apierror.Invariantf("stream: delta index %d skips ahead of current max %d", delta.Index, len(a.entries)-1)
	case delta.Index == len(a.entries):
		kind, err := kindOf(delta.Part)
		if err != nil {
			return err
		}
		a.entries = append(a.entries, &entry{kind: kind})
	}
	e := a.entries[delta.Index]
	return e.merge(delta.Part)
}

// AddUsage sums u into the running usage total (nil-safe).
func (a *Accumulator) AddUsage(u *model.Usage) {
	a.usage = a.usage.Add(u)
}

// AddCost sums c into the running cost total (nil-safe).
func (a *Accumulator) AddCost(c *float64) {
	if c == nil {
		return
	}
	if a.cost == nil {
		zero := 0.0
		a.cost = &zero
	}
	*a.cost += *c
}

// Feed is a convenience that applies the Delta, Usage and Cost of one
// PartialResponse in a single call.
func (a *Accumulator) Feed(p model.PartialResponse) error {
	if p.Delta != nil {
		if err := a.Add(*p.Delta); err != nil {
			return err
		}
	}
	a.AddUsage(p.Usage)
	a.AddCost(p.Cost)
	return nil
}

// Parts returns the Parts accumulated so far, in index order. Safe to call
// mid-stream for an incremental view.
func (a *Accumulator) Parts() []model.Part {
	parts := make([]model.Part, len(a.entries))
	for i, e := range a.entries {
		parts[i] = e.part()
	}
	return parts
}

// Finalize returns the finalized Response: {content, usage, cost}.
func (a *Accumulator) Finalize() *model.Response {
	return &model.Response{
		Content: a.Parts(),
		Usage:   a.usage,
		Cost:    a.cost,
	}
}

func kindOf(d model.PartDelta) (model.PartType, error) {
	switch d.(type) {
	case model.TextPartDelta:
		return model.PartTypeText, nil
	case model.ReasoningPartDelta:
		return model.PartTypeReasoning, nil
	case model.ToolCallPartDelta:
		return model.PartTypeToolCall, nil
	case model.AudioPartDelta:
		return model.PartTypeAudio, nil
	case model.ImagePartDelta:
		return model.PartTypeImage, nil
	default:
		return "", apierror.Invariantf("stream: unknown part delta type %T", d)
	}
}

func (e *entry) merge(d model.PartDelta) error {
	kind, err := kindOf(d)
	if err != nil {
		return err
	}
	if kind != e.kind {
		return apierror.Invariantf("stream: delta type %q does not match established part type %q at this index", kind, e.kind)
	}
	switch v := d.(type) {
	case model.TextPartDelta:
		e.text.WriteString(v.Text)
	case model.ReasoningPartDelta:
		e.text.WriteString(v.Text)
		if e.signature == "" {
			e.signature = v.Signature
		}
		if e.id == "" {
			e.id = v.ID
		}
	case model.ToolCallPartDelta:
		e.args.WriteString(v.ArgsDelta)
		if e.toolCallID == "" {
			e.toolCallID = v.ToolCallID
		}
		if e.toolName == "" {
			e.toolName = v.ToolName
		}
	case model.AudioPartDelta:
		e.audioData = append(e.audioData, v.AudioData...)
		e.transcript.WriteString(v.Transcript)
		if e.format == "" {
			e.format = v.Format
		}
		if e.sampleRate == 0 {
			e.sampleRate = v.SampleRate
		}
		if e.channels == 0 {
			e.channels = v.Channels
		}
	case model.ImagePartDelta:
		e.imageData = append(e.imageData, v.ImageData...)
		if e.mimeType == "" {
			e.mimeType = v.MimeType
		}
		if e.width == 0 {
			e.width = v.Width
		}
		if e.height == 0 {
			e.height = v.Height
		}
	}
	return nil
}

func (e *entry) part() model.Part {
	switch e.kind {
	case model.PartTypeText:
		return model.TextPart{Text: e.text.String()}
	case model.PartTypeReasoning:
		return model.ReasoningPart{Text: e.text.String(), Signature: e.signature, ID: e.id}
	case model.PartTypeToolCall:
		return model.ToolCallPart{
			ToolCallID: e.toolCallID,
			ToolName:   e.toolName,
			Args:       parseArgs(e.args.String()),
		}
	case model.PartTypeAudio:
		return model.AudioPart{
			AudioData:  e.audioData,
			Format:     e.format,
			SampleRate: e.sampleRate,
			Channels:   e.channels,
			Transcript: e.transcript.String(),
		}
	case model.PartTypeImage:
		return model.ImagePart{
			ImageData: e.imageData,
			MimeType:  e.mimeType,
			Width:     e.width,
			Height:    e.height,
		}
	default:
		return nil
	}
}
