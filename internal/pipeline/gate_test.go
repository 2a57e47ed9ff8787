package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

func gateRecord() *recipe.Record {
	return &recipe.Record{
		Title:        "Lemon Garlic Chicken",
		Image:        "https://example.com/chicken.jpg",
		Ingredients:  []string{"1 lb chicken thighs", "3 cloves garlic", "1 lemon", "2 tbsp olive oil"},
		Instructions: []string{"Season the chicken.", "Sear until browned.", "Braise with garlic and lemon.", "Rest before serving."},
		Servings:     recipe.IntPtr(4),
		TotalMinutes: recipe.IntPtr(45),
	}
}

func TestTriggerScore(t *testing.T) {
	// Four-item lists at structured confidence: 0.90 on the scalar fields and
	// 0.90*0.7 on the lists, under the gate weights.
	assert.InDelta(t, 0.738, TriggerScore(gateRecord(), recipe.TierStructured), 1e-9)

	rec := gateRecord()
	rec.Image = ""
	rec.Servings = nil
	rec.TotalMinutes = nil
	assert.InDelta(t, 0.513, TriggerScore(rec, recipe.TierStructured), 1e-9)

	assert.Zero(t, TriggerScore(nil, recipe.TierStructured))
	assert.Zero(t, TriggerScore(&recipe.Record{}, recipe.TierStructured))
}

func TestTriggerScore_TierConfidenceMatters(t *testing.T) {
	rec := gateRecord()

	structured := TriggerScore(rec, recipe.TierStructured)
	generic := TriggerScore(rec, recipe.ExtractorGeneric)

	assert.Greater(t, structured, generic, "the same content is trusted less from a weaker source")
	assert.Less(t, generic, DefaultMinTriggerScore, "a medium generic record escalates")
}

func TestTriggerScore_PlaceholderTitleNotCounted(t *testing.T) {
	rec := gateRecord()
	withTitle := TriggerScore(rec, recipe.TierStructured)

	rec.Title = recipe.PlaceholderTitle
	assert.InDelta(t, withTitle-0.135, TriggerScore(rec, recipe.TierStructured), 1e-9)
}

func TestRedFlags(t *testing.T) {
	assert.Empty(t, RedFlags(gateRecord()))

	rec := gateRecord()
	rec.Title = "Just a moment..."
	flags := RedFlags(rec)
	assert.Contains(t, flags, "bot wall title")
	assert.Contains(t, flags, "blocked content phrase")

	rec = gateRecord()
	rec.Instructions[1] = "Verify you are a human before continuing."
	assert.Contains(t, RedFlags(rec), "blocked content phrase", "a block-page phrase is caught wherever it landed")

	rec = gateRecord()
	rec.Ingredients = rec.Ingredients[:2]
	assert.Contains(t, RedFlags(rec), "only 2 ingredients")

	rec = gateRecord()
	rec.Instructions = rec.Instructions[:1]
	assert.Contains(t, RedFlags(rec), "single instruction")

	rec = gateRecord()
	rec.Instructions = []string{"Season the chicken.", recipe.SentinelStep, "Serve warm."}
	assert.Contains(t, RedFlags(rec), "sentinel instruction step")

	rec = gateRecord()
	rec.Instructions[2] = "Serve warm. Recipe courtesy of Example Kitchen."
	assert.Contains(t, RedFlags(rec), "watermark phrase")
}

func TestGatePasses(t *testing.T) {
	ok, reason := gatePasses(gateRecord(), recipe.TierStructured, DefaultMinTriggerScore)
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = gatePasses(gateRecord(), recipe.ExtractorGeneric, DefaultMinTriggerScore)
	assert.False(t, ok)
	assert.Contains(t, reason, "trigger score")

	rec := gateRecord()
	rec.Instructions[3] = recipe.SentinelStep
	ok, reason = gatePasses(rec, recipe.TierStructured, DefaultMinTriggerScore)
	assert.False(t, ok, "a red flag forces escalation even above the threshold")
	assert.Contains(t, reason, "red flags")

	thin := &recipe.Record{Title: "Lemon Garlic Chicken"}
	ok, reason = gatePasses(thin, recipe.TierStructured, DefaultMinTriggerScore)
	assert.False(t, ok)
	assert.Contains(t, reason, "trigger score")
}
