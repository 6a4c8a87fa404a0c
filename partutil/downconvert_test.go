package partutil

import (
	"testing"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/stretchr/testify/require"
)

func TestFlattenSourceEmbedsTitleAndContent(t *testing.T) {
	src := model.SourcePart{
		Source:  "https://example.com/doc",
		Title:   "Example Doc",
		Content: []model.Part{model.TextPart{Text: "body text"}},
	}
	flat := FlattenSource(src)
	require.Contains(t, flat.Text, "Example Doc")
	require.Contains(t, flat.Text, "https://example.com/doc")
	require.Contains(t, flat.Text, "body text")
}

func TestCanFlattenRejectsImage(t *testing.T) {
	require.False(t, CanFlatten(model.ImagePart{}))
	require.True(t, CanFlatten(model.TextPart{}))
}
