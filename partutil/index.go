package partutil

import "github.com/hoangvvo/llm-sdk-sub003/model"

// IndexTracker infers a stable delta index for providers (notably Google)
// that do not supply one natively. It is not safe for concurrent use; one
// tracker serves one streaming call.
//
// Inference rule (spec.md §4.2): a delta that continues the last open Part
// of the same variant shares that Part's index; a delta that begins a new
// Part (new tool-call id, different variant, or an explicit start event)
// gets the next unused index.
type IndexTracker struct {
	next       int
	open       bool
	variant    model.PartType
	toolCallID string
}

// NewIndexTracker returns a tracker starting at index 0.
func NewIndexTracker() *IndexTracker {
	return &IndexTracker{}
}

// Continue returns the index this delta belongs to, advancing to a new
// index when the delta does not continue the currently open Part.
// toolCallID is only considered when variant is PartTypeToolCall; pass ""
// for every other variant.
func (t *IndexTracker) Continue(variant model.PartType, toolCallID string) int {
	if t.open && t.variant == variant && (variant != model.PartTypeToolCall || t.toolCallID == toolCallID) {
		return t.next - 1
	}
	idx := t.next
	t.next++
	t.open = true
	t.variant = variant
	t.toolCallID = toolCallID
	return idx
}

// StartNew forces the next delta onto a fresh index even if it would
// otherwise look like a continuation (explicit "start" events from
// providers that mark new Parts unambiguously).
func (t *IndexTracker) StartNew(variant model.PartType, toolCallID string) int {
	idx := t.next
	t.next++
	t.open = true
	t.variant = variant
	t.toolCallID = toolCallID
	return idx
}

// Close marks the currently open Part as finished, so the next Continue
// call — regardless of variant match — starts a new index.
func (t *IndexTracker) Close() {
	t.open = false
}
