package usage

import (
	"testing"

	"github.com/hoangvvo/llm-sdk-sub003/model"
	"github.com/stretchr/testify/require"
)

func TestCalculateNilInputsAreZero(t *testing.T) {
	require.Equal(t, 0.0, Calculate(nil, &model.Pricing{}))
	require.Equal(t, 0.0, Calculate(&model.Usage{}, nil))
}

func TestCalculateMissingDetailsAreZeroNotTotal(t *testing.T) {
	u := &model.Usage{InputTokens: 1000, OutputTokens: 500}
	pricing := &model.Pricing{
		Text: model.Rate{Input: 1, Output: 2},
	}
	require.Equal(t, 0.0, Calculate(u, pricing), "absent details must not be inferred as all-text")
}

func TestCalculateDotProductAcrossModalities(t *testing.T) {
	u := &model.Usage{
		InputTokens: 300,
		InputTokensDetails: &model.TokensDetails{
			TextTokens:       100,
			CachedTextTokens: 50,
			AudioTokens:      150,
		},
		OutputTokens: 10,
		OutputTokensDetails: &model.TokensDetails{
			TextTokens: 10,
		},
	}
	pricing := &model.Pricing{
		Text:       model.Rate{Input: 0.000003, Output: 0.000015},
		CachedText: model.Rate{Input: 0.0000003, Output: 0.0000015},
		Audio:      model.Rate{Input: 0.00001, Output: 0.00002},
	}

	want := 100*0.000003 + 50*0.0000003 + 150*0.00001 + 10*0.000015
	require.InDelta(t, want, Calculate(u, pricing), 1e-12)
}

func TestCalculateUnpricedModalityContributesZero(t *testing.T) {
	u := &model.Usage{
		InputTokens:        10,
		InputTokensDetails: &model.TokensDetails{ImageTokens: 10},
	}
	require.Equal(t, 0.0, Calculate(u, &model.Pricing{}))
}
