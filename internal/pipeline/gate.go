package pipeline

import (
	"fmt"
	"strings"

	"github.com/longevityfoodlab/recipe-parser/internal/quality"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// Acceptance-gate weights. They differ from the quality scorer on purpose:
// the gate asks "is this worth stopping for", so the two list fields carry
// most of the decision and the image matters more than it does for final
// quality.
var gateWeights = map[recipe.Field]float64{
	recipe.FieldTitle:        0.15,
	recipe.FieldImage:        0.15,
	recipe.FieldIngredients:  0.30,
	recipe.FieldInstructions: 0.30,
	recipe.FieldServings:     0.05,
	recipe.FieldTotalTime:    0.05,
}

const (
	gateFullListCount = 3

	// DefaultMinTriggerScore is the gate threshold below which the next,
	// more expensive tier is triggered.
	DefaultMinTriggerScore = 0.60
)

// TriggerScore measures how trustworthy and complete a candidate looks to
// the acceptance gate, in [0,1]: the per-field confidences for the producing
// tier, weighted by how much the gate cares about each field.
func TriggerScore(rec *recipe.Record, tier string) float64 {
	if rec == nil {
		return 0
	}

	conf := quality.FieldConfidence(rec, tier)

	score := 0.0
	for field, weight := range gateWeights {
		score += conf[field] * weight
	}

	return score
}

// RedFlags lists the structural problems that force escalation regardless of
// the trigger score.
func RedFlags(rec *recipe.Record) []string {
	if rec == nil {
		return []string{"no record"}
	}

	var flags []string

	if quality.IsBotWallTitle(rec.Title) {
		flags = append(flags, "bot wall title")
	}

	combined := combinedText(rec)

	if quality.HasBlockedPhrase(combined) {
		flags = append(flags, "blocked content phrase")
	}

	if quality.HasWatermark(combined) {
		flags = append(flags, "watermark phrase")
	}

	if len(rec.Ingredients) < gateFullListCount {
		flags = append(flags, fmt.Sprintf("only %d ingredients", len(rec.Ingredients)))
	}

	switch {
	case len(rec.Instructions) == 1:
		flags = append(flags, "single instruction")
	case len(rec.Instructions) < gateFullListCount:
		flags = append(flags, fmt.Sprintf("only %d instructions", len(rec.Instructions)))
	}

	for _, step := range rec.Instructions {
		if step == recipe.SentinelStep {
			flags = append(flags, "sentinel instruction step")

			break
		}
	}

	return flags
}

// gatePasses is the stop condition: a high enough trigger score and no red
// flags at all.
func gatePasses(rec *recipe.Record, tier string, minScore float64) (bool, string) {
	if score := TriggerScore(rec, tier); score < minScore {
		return false, fmt.Sprintf("trigger score %.2f below %.2f", score, minScore)
	}

	if flags := RedFlags(rec); len(flags) > 0 {
		return false, "red flags: " + joinFlags(flags)
	}

	return true, ""
}

// combinedText joins the textual fields so phrase checks catch leaks that
// landed outside the title.
func combinedText(rec *recipe.Record) string {
	parts := make([]string, 0, 1+len(rec.Ingredients)+len(rec.Instructions))
	parts = append(parts, rec.Title)
	parts = append(parts, rec.Ingredients...)
	parts = append(parts, rec.Instructions...)

	return strings.Join(parts, "\n")
}

func joinFlags(flags []string) string {
	out := flags[0]
	for _, f := range flags[1:] {
		out += ", " + f
	}

	return out
}
