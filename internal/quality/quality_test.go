package quality

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

func fullRecord() *recipe.Record {
	return &recipe.Record{
		Title:        "Pasta Carbonara",
		Ingredients:  []string{"2 cups flour", "1 egg", "1 tsp salt"},
		Instructions: []string{"Mix flour and egg.", "Knead dough for 10 minutes.", "Rest for 30 minutes."},
		Image:        "https://example.com/pasta.jpg",
		Servings:     recipe.IntPtr(4),
		PrepMinutes:  recipe.IntPtr(20),
	}
}

func TestScore_FullRecord(t *testing.T) {
	assert.InDelta(t, 1.0, Score(fullRecord()), 1e-9)
}

func TestScore_PartialLists(t *testing.T) {
	rec := fullRecord()
	rec.Ingredients = rec.Ingredients[:1]
	rec.Instructions = rec.Instructions[:2]

	// 0.20 title + 0.15 ingredients + 0.15 instructions + 0.10 image + 0.05 + 0.05
	assert.InDelta(t, 0.70, Score(rec), 1e-9)
}

func TestScore_InvalidTitleShortCircuits(t *testing.T) {
	tests := []string{
		"",
		"ab",
		recipe.PlaceholderTitle,
		"404 Page Not Found",
		"Access Denied",
	}

	for _, title := range tests {
		t.Run(title, func(t *testing.T) {
			rec := fullRecord()
			rec.Title = title
			assert.Zero(t, Score(rec))
		})
	}
}

func TestScore_HallucinationVetoDominates(t *testing.T) {
	rec := fullRecord()

	rec.Ingredients = make([]string, 20)
	for i := range rec.Ingredients {
		rec.Ingredients[i] = fmt.Sprintf("%d cups flour", i+1)
	}

	// Exactly 20 entries is the generative-padding artifact: always 0.0,
	// regardless of every other field being complete.
	assert.Zero(t, Score(rec))
}

func TestScore_FillerNounsVeto(t *testing.T) {
	rec := fullRecord()
	rec.Ingredients = []string{"1 cup flour", "ingredient two", "item three"}

	assert.Zero(t, Score(rec))
}

func TestScore_Monotonic(t *testing.T) {
	rec := fullRecord()
	rec.Ingredients = []string{"1 egg"}

	before := Score(rec)
	rec.Ingredients = append(rec.Ingredients, "2 cups flour")

	assert.GreaterOrEqual(t, Score(rec), before, "adding a valid ingredient must never decrease the score")
}

func TestClamp_BotWall(t *testing.T) {
	rec := fullRecord()
	rec.Title = "Please verify you are a human"

	assert.InDelta(t, BotWallCeiling, Clamp(rec, 0.9), 1e-9)
}

func TestClamp_ThinLists(t *testing.T) {
	rec := fullRecord()
	rec.Instructions = rec.Instructions[:2]
	assert.InDelta(t, thinInstructionsCeiling, Clamp(rec, 0.9), 1e-9)

	rec = fullRecord()
	rec.Instructions = append(rec.Instructions[:2], recipe.SentinelStep)
	assert.InDelta(t, thinInstructionsCeiling, Clamp(rec, 0.9), 1e-9)

	rec = fullRecord()
	rec.Ingredients = rec.Ingredients[:2]
	assert.InDelta(t, thinIngredientsCeiling, Clamp(rec, 0.9), 1e-9)
}

func TestClamp_ImagePenaltyAndFloor(t *testing.T) {
	rec := fullRecord()
	rec.Image = ""
	assert.InDelta(t, 0.75, Clamp(rec, 0.9), 1e-9)

	rec.Image = "https://example.com/logo.png"
	assert.InDelta(t, 0.75, Clamp(rec, 0.9), 1e-9)

	rec.Image = ""
	assert.Zero(t, Clamp(rec, 0.1))
}

func TestClamp_NeverIncreases(t *testing.T) {
	rec := fullRecord()
	for _, base := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		assert.LessOrEqual(t, Clamp(rec, base), base)
	}
}

func TestFieldConfidence_TierOrdering(t *testing.T) {
	rec := fullRecord()

	structured := FieldConfidence(rec, recipe.TierStructured)
	generic := FieldConfidence(rec, recipe.ExtractorGeneric)
	ai := FieldConfidence(rec, recipe.TierAIFallback)

	assert.Greater(t, structured[recipe.FieldTitle], generic[recipe.FieldTitle])
	assert.Greater(t, generic[recipe.FieldTitle], ai[recipe.FieldTitle])
}

func TestFieldConfidence_Adjustments(t *testing.T) {
	rec := fullRecord()
	rec.Image = "http://example.com/pasta.jpg" // not https

	conf := FieldConfidence(rec, recipe.TierStructured)
	assert.Zero(t, conf[recipe.FieldImage])

	rec.Image = "https://example.com/assets/logo.png"
	conf = FieldConfidence(rec, recipe.TierStructured)
	assert.InDelta(t, 0.90*logoImageFactor, conf[recipe.FieldImage], 1e-9)

	rec.Title = recipe.PlaceholderTitle
	conf = FieldConfidence(rec, recipe.TierStructured)
	assert.Zero(t, conf[recipe.FieldTitle])

	// Three ingredients is a short list.
	assert.InDelta(t, 0.90*shortListFactor, conf[recipe.FieldIngredients], 1e-9)
}

func TestHasBlockedPhrase(t *testing.T) {
	assert.True(t, HasBlockedPhrase("Step 1\nVerify you are a human\nStep 2"))
	assert.True(t, HasBlockedPhrase("Attention Required! | Cloudflare"))
	assert.False(t, HasBlockedPhrase("Sweat the onion in the oil until translucent."))
}

func TestStripWatermarkTail(t *testing.T) {
	assert.Equal(t,
		"Serve warm.",
		StripWatermarkTail("Serve warm. Recipe courtesy of Example Kitchen."))
	assert.Equal(t,
		"Bake for 20 minutes.",
		StripWatermarkTail("Bake for 20 minutes."))
	assert.Empty(t, StripWatermarkTail("Recipe courtesy of Example Kitchen."))
}
