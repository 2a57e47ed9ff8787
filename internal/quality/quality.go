// Package quality computes confidence-weighted completeness scores for
// candidate records. Scoring is a pure function of the record's current
// contents; scores are recomputed whenever fields change and never trusted
// stale.
package quality

import (
	"strings"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// Completeness weights. Together they sum to 1.0.
const (
	weightTitle        = 0.20
	weightIngredients  = 0.30
	weightInstructions = 0.30
	weightImage        = 0.10
	weightServings     = 0.05
	weightPrepTime     = 0.05

	fullListCount    = 3
	partialListShare = 0.5

	minTitleLength = 3
	maxTitleLength = 200

	// hallucinationListLength is the exact list size generative padding
	// produces; a list of exactly this length is treated as invented.
	hallucinationListLength = 20

	// fillerShareThreshold is the fraction of filler-noun ingredients above
	// which the whole record is judged hallucinated.
	fillerShareThreshold = 0.30
)

// Post-hoc ceilings applied by Clamp.
const (
	BotWallCeiling          = 0.40
	thinInstructionsCeiling = 0.40
	thinIngredientsCeiling  = 0.50
	missingImagePenalty     = 0.15
)

// Score returns the weighted completeness score in [0,1]. The hard-rejection
// rules (invalid title, hallucination markers) run before any weighting and
// short-circuit to exactly 0.0.
func Score(rec *recipe.Record) float64 {
	if rec == nil {
		return 0
	}

	if !validTitle(rec.Title) || looksHallucinated(rec) {
		return 0
	}

	score := weightTitle
	score += listWeight(len(rec.Ingredients), weightIngredients)
	score += listWeight(len(rec.Instructions), weightInstructions)

	if rec.Image != "" {
		score += weightImage
	}

	if rec.Servings != nil {
		score += weightServings
	}

	if rec.PrepMinutes != nil {
		score += weightPrepTime
	}

	if score > 1 {
		score = 1
	}

	return score
}

// Clamp applies post-hoc ceilings to a base score. Clamping is monotonically
// non-increasing: the result never exceeds base.
func Clamp(rec *recipe.Record, base float64) float64 {
	score := base

	if IsBotWallTitle(rec.Title) && score > BotWallCeiling {
		score = BotWallCeiling
	}

	if (len(rec.Instructions) < fullListCount || hasSentinelStep(rec.Instructions)) && score > thinInstructionsCeiling {
		score = thinInstructionsCeiling
	}

	if len(rec.Ingredients) < fullListCount && score > thinIngredientsCeiling {
		score = thinIngredientsCeiling
	}

	if rec.Image == "" || IsLogoImage(rec.Image) {
		score -= missingImagePenalty
	}

	if score < 0 {
		score = 0
	}

	return score
}

func validTitle(title string) bool {
	title = strings.TrimSpace(title)
	if len(title) < minTitleLength {
		return false
	}

	if title == recipe.PlaceholderTitle {
		return false
	}

	return !IsErrorTitle(title)
}

func looksHallucinated(rec *recipe.Record) bool {
	if len(rec.Ingredients) == hallucinationListLength {
		return true
	}

	if len(rec.Ingredients) == 0 {
		return false
	}

	filler := 0

	for _, ing := range rec.Ingredients {
		lower := strings.ToLower(ing)
		if containsAny(lower, fillerNouns) {
			filler++
		}
	}

	return float64(filler)/float64(len(rec.Ingredients)) > fillerShareThreshold
}

func listWeight(count int, full float64) float64 {
	switch {
	case count >= fullListCount:
		return full
	case count >= 1:
		return full * partialListShare
	default:
		return 0
	}
}

func hasSentinelStep(steps []string) bool {
	for _, step := range steps {
		if step == recipe.SentinelStep {
			return true
		}
	}

	return false
}
