package stream

import (
	"testing"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorConcatenatesTextInArrivalOrder(t *testing.T) {
	a := New()
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.TextPartDelta{Text: "hel"}}))
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.TextPartDelta{Text: "lo"}}))

	resp := a.Finalize()
	require.Len(t, resp.Content, 1)
	require.Equal(t, model.TextPart{Text: "hello"}, resp.Content[0])
}

func TestAccumulatorRejectsIndexSkippingAhead(t *testing.T) {
	a := New()
	err := a.Add(model.ContentDelta{Index: 1, Part: model.TextPartDelta{Text: "x"}})
	require.Error(t, err)
	require.True(t, apierror.Is(err, apierror.KindInvariant))
}

func TestAccumulatorToolCallFirstNonEmptyWins(t *testing.T) {
	a := New()
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.ToolCallPartDelta{ToolCallID: "tc1", ArgsDelta: `{"x":`}}))
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.ToolCallPartDelta{ToolName: "search", ArgsDelta: `1}`}}))
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.ToolCallPartDelta{ToolCallID: "ignored-since-already-set"}}))

	resp := a.Finalize()
	require.Equal(t, model.ToolCallPart{
		ToolCallID: "tc1",
		ToolName:   "search",
		Args:       map[string]any{"x": float64(1)},
	}, resp.Content[0])
}

func TestAccumulatorAudioConcatenatesDataAndTranscript(t *testing.T) {
	a := New()
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.AudioPartDelta{
		AudioData: []byte{1, 2}, Format: model.AudioFormatWAV, SampleRate: 16000, Transcript: "hel",
	}}))
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.AudioPartDelta{
		AudioData: []byte{3, 4}, Transcript: "lo",
	}}))

	resp := a.Finalize()
	require.Equal(t, model.AudioPart{
		AudioData:  []byte{1, 2, 3, 4},
		Format:     model.AudioFormatWAV,
		SampleRate: 16000,
		Transcript: "hello",
	}, resp.Content[0])
}

func TestAccumulatorInterleavedIndicesPreserveOrder(t *testing.T) {
	a := New()
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.TextPartDelta{Text: "a"}}))
	require.NoError(t, a.Add(model.ContentDelta{Index: 1, Part: model.TextPartDelta{Text: "b"}}))
	require.NoError(t, a.Add(model.ContentDelta{Index: 0, Part: model.TextPartDelta{Text: "c"}}))

	resp := a.Finalize()
	require.Equal(t, "ac", resp.Content[0].(model.TextPart).Text)
	require.Equal(t, "b", resp.Content[1].(model.TextPart).Text)
}

func TestAccumulatorSumsUsageAndCost(t *testing.T) {
	a := New()
	c1, c2 := 0.01, 0.02
	a.AddUsage(&model.Usage{InputTokens: 10, OutputTokens: 5})
	a.AddCost(&c1)
	a.AddUsage(&model.Usage{InputTokens: 3, OutputTokens: 1})
	a.AddCost(&c2)

	resp := a.Finalize()
	require.Equal(t, 13, resp.Usage.InputTokens)
	require.Equal(t, 6, resp.Usage.OutputTokens)
	require.InDelta(t, 0.03, *resp.Cost, 1e-9)
}

func TestAccumulatorIdempotenceAcrossRestart(t *testing.T) {
	deltas := []model.ContentDelta{
		{Index: 0, Part: model.TextPartDelta{Text: "ab"}},
		{Index: 0, Part: model.TextPartDelta{Text: "cd"}},
		{Index: 1, Part: model.TextPartDelta{Text: "ef"}},
	}

	whole := New()
	for _, d := range deltas {
		require.NoError(t, whole.Add(d))
	}

	// Split at k=1: accumulate the prefix, re-emit its state as deltas, and
	// feed the remainder into a fresh accumulator. The spec's notion of
	// "restart" treats the finalized prefix as a single replacement delta
	// per index.
	prefix := New()
	require.NoError(t, prefix.Add(deltas[0]))
	restarted := New()
	for i, p := range prefix.Parts() {
		require.NoError(t, restarted.Add(model.ContentDelta{Index: i, Part: model.TextPartDelta{Text: p.(model.TextPart).Text}}))
	}
	for _, d := range deltas[1:] {
		require.NoError(t, restarted.Add(d))
	}

	require.Equal(t, whole.Finalize().Content, restarted.Finalize().Content)
}
