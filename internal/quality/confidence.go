package quality

import (
	"strings"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// Per-tier base confidences. Structured data is the most trustworthy source;
// generative output the least.
var tierBaseConfidence = map[string]float64{
	recipe.TierStructured:                       0.90,
	recipe.ExtractorSiteSpecific:                0.85,
	recipe.ExtractorGeneric:                     0.60,
	recipe.TierDeterministic:                    0.60,
	recipe.TierSpoonacular:                      0.70,
	recipe.TierAIFallback:                       0.50,
	"youtube_" + recipe.VideoTierDeterministic:  0.80,
	"tiktok_" + recipe.VideoTierDeterministic:   0.80,
	"youtube_" + recipe.VideoTierAIDescription:  0.50,
	"tiktok_" + recipe.VideoTierAIDescription:   0.50,
	"youtube_" + recipe.VideoTierAITranscript:   0.50,
	"tiktok_" + recipe.VideoTierAITranscript:    0.50,
	"youtube_" + recipe.VideoTierTitleSynthesis: 0.30,
	"tiktok_" + recipe.VideoTierTitleSynthesis:  0.30,
	"youtube_" + recipe.VideoTierBestEffort:     0.30,
	"tiktok_" + recipe.VideoTierBestEffort:      0.30,
}

const defaultBaseConfidence = 0.50

// Per-field adjustment factors.
const (
	oversizeTitleFactor = 0.5
	brandTitleFactor    = 0.7
	logoImageFactor     = 0.3

	shortListItems  = 4
	mediumListItems = 8
	shortListFactor  = 0.3
	mediumListFactor = 0.7
)

// FieldConfidence computes the per-field confidence map for a (record, tier)
// pair. It is consumed by the merge engine and the acceptance gate, and is
// recomputed for every comparison.
func FieldConfidence(rec *recipe.Record, tierName string) recipe.Confidence {
	base, ok := tierBaseConfidence[tierName]
	if !ok {
		base = defaultBaseConfidence
	}

	conf := recipe.Confidence{}

	conf[recipe.FieldTitle] = titleConfidence(rec.Title, base)
	conf[recipe.FieldImage] = imageConfidence(rec.Image, base)
	conf[recipe.FieldIngredients] = listConfidence(len(rec.Ingredients), base)
	conf[recipe.FieldInstructions] = listConfidence(len(rec.Instructions), base)
	conf[recipe.FieldServings] = presenceConfidence(rec.Servings != nil, base)
	conf[recipe.FieldTotalTime] = presenceConfidence(rec.TotalMinutes != nil, base)

	return conf
}

func titleConfidence(title string, base float64) float64 {
	title = strings.TrimSpace(title)
	if title == "" || title == recipe.PlaceholderTitle {
		return 0
	}

	conf := base

	if len(title) < minTitleLength || len(title) > maxTitleLength {
		conf *= oversizeTitleFactor
	}

	if hasBrandSubstring(title) {
		conf *= brandTitleFactor
	}

	return conf
}

func imageConfidence(imageURL string, base float64) float64 {
	if !strings.HasPrefix(imageURL, "https://") {
		return 0
	}

	if IsLogoImage(imageURL) {
		return base * logoImageFactor
	}

	return base
}

func listConfidence(count int, base float64) float64 {
	switch {
	case count == 0:
		return 0
	case count < shortListItems:
		return base * shortListFactor
	case count < mediumListItems:
		return base * mediumListFactor
	default:
		return base
	}
}

func presenceConfidence(present bool, base float64) float64 {
	if !present {
		return 0
	}

	return base
}
