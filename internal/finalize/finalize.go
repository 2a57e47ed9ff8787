// Package finalize runs the last pass over a merged record before it leaves
// the service: normalization, range coercion, watermark stripping, score
// recomputation, and the minimum-content rejection.
package finalize

import (
	"errors"
	"net/url"
	"strings"

	"github.com/longevityfoodlab/recipe-parser/internal/extract"
	"github.com/longevityfoodlab/recipe-parser/internal/quality"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
	"github.com/longevityfoodlab/recipe-parser/internal/textnorm"
)

// ErrNoRecipeContent indicates the record kept too little content to ship.
var ErrNoRecipeContent = errors.New("no usable recipe content")

// minListItems is the rejection floor: a record survives when EITHER list
// reaches it, so a good ingredient list with a sentinel step still ships.
const minListItems = 2

// Finalize normalizes, coerces and re-scores a merged record. The input is
// not mutated. ErrNoRecipeContent is returned when both lists end up below
// the content floor.
func Finalize(in *recipe.Record, pageURL string) (*recipe.Record, error) {
	rec := in.Clone()

	rec.Ingredients = finalizeIngredients(rec.Ingredients)
	rec.Instructions = finalizeInstructions(rec.Instructions)

	// Remember the bot wall before the title is sanitized away, so the score
	// ceiling still applies to the rewritten record.
	if quality.IsBotWallTitle(textnorm.Normalize(rec.Title)) {
		rec.Metadata.BotWallDetected = true
	}

	rec.Title = finalizeTitle(rec.Title, pageURL)

	coerceRanges(rec)

	if rec.Nutrition != nil {
		rec.Nutrition = extract.SanitizeNutrition(rec.Nutrition)
		if rec.Nutrition == nil {
			rec.NutritionSource = ""
		}
	}

	fillSiteFields(rec, pageURL)

	if len(rec.Ingredients) < minListItems && realSteps(rec.Instructions) < minListItems {
		return nil, ErrNoRecipeContent
	}

	rec.QualityScore = quality.Clamp(rec, quality.Score(rec))

	if rec.Metadata.BotWallDetected && rec.QualityScore > quality.BotWallCeiling {
		rec.QualityScore = quality.BotWallCeiling
	}

	return rec, nil
}

func finalizeIngredients(ingredients []string) []string {
	out := make([]string, 0, len(ingredients))
	seen := make(map[string]struct{})

	for _, ing := range textnorm.NormalizeAll(ingredients) {
		ing = textnorm.AddImplicitQuantity(ing)

		key := strings.ToLower(ing)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, ing)
	}

	return out
}

func finalizeInstructions(instructions []string) []string {
	normalized := textnorm.NormalizeAll(instructions)

	stripped := make([]string, 0, len(normalized))

	for _, step := range normalized {
		if step = quality.StripWatermarkTail(step); step != "" {
			stripped = append(stripped, step)
		}
	}

	if len(stripped) == 0 {
		return nil
	}

	return textnorm.DedupeSteps(stripped)
}

func finalizeTitle(title, pageURL string) string {
	title = textnorm.Normalize(title)

	if title == "" || quality.IsBotWallTitle(title) || quality.IsErrorTitle(title) {
		title = extract.TitleFromURL(pageURL)
	}

	if title == "" {
		title = recipe.PlaceholderTitle
	}

	return title
}

// coerceRanges nils out implausible scalar values rather than clamping them.
// A servings of 1 is the upstream parse-failure sentinel, not a real yield.
func coerceRanges(rec *recipe.Record) {
	if rec.Servings != nil && (*rec.Servings < recipe.MinServings || *rec.Servings > recipe.MaxServings) {
		rec.Servings = nil
	}

	for _, p := range []**int{&rec.PrepMinutes, &rec.CookMinutes, &rec.TotalMinutes} {
		if *p != nil && (**p < recipe.MinMinutes || **p > recipe.MaxMinutes) {
			*p = nil
		}
	}
}

func fillSiteFields(rec *recipe.Record, pageURL string) {
	if rec.SourceURL == "" {
		rec.SourceURL = pageURL
	}

	if rec.SiteLink == "" {
		rec.SiteLink = pageURL
	}

	if rec.SiteName == "" {
		if u, err := url.Parse(pageURL); err == nil {
			rec.SiteName = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		}
	}
}

// realSteps counts instructions excluding the sentinel placeholder.
func realSteps(instructions []string) int {
	n := 0

	for _, step := range instructions {
		if step != recipe.SentinelStep {
			n++
		}
	}

	return n
}
