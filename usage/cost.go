// Package usage computes the USD cost of a model.Usage record against a
// model.Pricing table.
package usage

import "github.com/hoangvvo/llm-sdk-sub003/model"

// Calculate returns the dot product of u's per-modality token counts and
// pricing's per-modality rates, in USD. A nil pricing or nil usage yields 0.
//
// Detail fields absent from u (nil InputTokensDetails / OutputTokensDetails)
// are treated as "no tokens of any modality reported" rather than "all
// tokens are text" — callers that want every input token priced as text
// must say so explicitly via TokensDetails.TextTokens.
func Calculate(u *model.Usage, pricing *model.Pricing) float64 {
	if u == nil || pricing == nil {
		return 0
	}
	var total float64
	total += detailCost(u.InputTokensDetails, pricing, true)
	total += detailCost(u.OutputTokensDetails, pricing, false)
	return total
}

func detailCost(d *model.TokensDetails, pricing *model.Pricing, isInput bool) float64 {
	if d == nil {
		return 0
	}
	rate := func(r model.Rate) float64 {
		if isInput {
			return r.Input
		}
		return r.Output
	}
	var total float64
	total += float64(d.TextTokens) * rate(pricing.Text)
	total += float64(d.CachedTextTokens) * rate(pricing.CachedText)
	total += float64(d.AudioTokens) * rate(pricing.Audio)
	total += float64(d.CachedAudioTokens) * rate(pricing.CachedAudio)
	total += float64(d.ImageTokens) * rate(pricing.Image)
	total += float64(d.CachedImageTokens) * rate(pricing.CachedImage)
	return total
}
