package partutil

import (
	"testing"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/stretchr/testify/require"
)

func TestIndexTrackerContinuesSameVariant(t *testing.T) {
	tr := NewIndexTracker()
	require.Equal(t, 0, tr.Continue(model.PartTypeText, ""))
	require.Equal(t, 0, tr.Continue(model.PartTypeText, ""))
}

func TestIndexTrackerNewVariantAdvances(t *testing.T) {
	tr := NewIndexTracker()
	require.Equal(t, 0, tr.Continue(model.PartTypeText, ""))
	require.Equal(t, 1, tr.Continue(model.PartTypeReasoning, ""))
}

func TestIndexTrackerDistinctToolCallsGetDistinctIndices(t *testing.T) {
	tr := NewIndexTracker()
	require.Equal(t, 0, tr.Continue(model.PartTypeToolCall, "call_1"))
	require.Equal(t, 0, tr.Continue(model.PartTypeToolCall, "call_1"))
	require.Equal(t, 1, tr.Continue(model.PartTypeToolCall, "call_2"))
	require.Equal(t, 1, tr.Continue(model.PartTypeToolCall, "call_2"))
}

func TestIndexTrackerCloseForcesNewIndex(t *testing.T) {
	tr := NewIndexTracker()
	require.Equal(t, 0, tr.Continue(model.PartTypeText, ""))
	tr.Close()
	require.Equal(t, 1, tr.Continue(model.PartTypeText, ""))
}

func TestIndexTrackerStartNewAlwaysAdvances(t *testing.T) {
	tr := NewIndexTracker()
	require.Equal(t, 0, tr.StartNew(model.PartTypeText, ""))
	require.Equal(t, 1, tr.StartNew(model.PartTypeText, ""))
}
