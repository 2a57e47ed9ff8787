package extract

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

const (
	minIngredientLength  = 3
	maxIngredientLength  = 220
	minInstructionWords  = 4
	maxInstructionLength = 500
)

// Generic scrapes a recipe out of arbitrary markup using keyword heuristics
// when no structured data and no site rule applies. Reports false when the
// page yields neither ingredients nor instructions.
func Generic(doc *goquery.Document, pageURL string) (*recipe.Record, bool) {
	rec := &recipe.Record{
		Ingredients:  genericIngredients(doc),
		Instructions: genericInstructions(doc),
	}

	if len(rec.Ingredients) == 0 && len(rec.Instructions) == 0 {
		return nil, false
	}

	FillCommonFields(rec, doc, pageURL)
	rec.Metadata.Extractor = recipe.ExtractorGeneric

	return rec, true
}

// FillCommonFields fills title, image, servings, times and nutrition on rec
// from page-level signals, touching only fields that are still empty.
func FillCommonFields(rec *recipe.Record, doc *goquery.Document, pageURL string) {
	if !rec.HasTitle() {
		rec.Title = ExtractTitle(doc)
	}

	if rec.Image == "" {
		rec.Image = ExtractImage(doc, pageURL)
	}

	if rec.Servings == nil {
		rec.Servings = ExtractServings(doc)
	}

	prep, cook, total := extractTimes(doc)

	if rec.PrepMinutes == nil {
		rec.PrepMinutes = prep
	}

	if rec.CookMinutes == nil {
		rec.CookMinutes = cook
	}

	if rec.TotalMinutes == nil {
		rec.TotalMinutes = total
	}

	scraped := ExtractNutrition(doc)

	switch {
	case rec.Nutrition == nil:
		if len(scraped) > 0 {
			rec.Nutrition = scraped
			rec.NutritionSource = recipe.TierDeterministic
		}
	default:
		// Backfill keys the structured block is missing; present keys win.
		for k, v := range scraped {
			if _, ok := rec.Nutrition[k]; !ok {
				rec.Nutrition[k] = v
			}
		}
	}
}

func genericIngredients(doc *goquery.Document) []string {
	var out []string

	seen := make(map[string]struct{})

	doc.Find("li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpaces(s.Text())
		if !looksLikeIngredient(text) {
			return true
		}

		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return true
		}

		seen[key] = struct{}{}
		out = append(out, text)

		return len(out) < maxIngredients
	})

	return out
}

func genericInstructions(doc *goquery.Document) []string {
	var out []string

	seen := make(map[string]struct{})

	doc.Find("ol li, .instructions li, .directions li, .method li, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		// Skip containers whose own children were already visited.
		if s.Children().Is("li, p") {
			return true
		}

		text := collapseSpaces(s.Text())
		if !looksLikeInstruction(text) {
			return true
		}

		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return true
		}

		seen[key] = struct{}{}
		out = append(out, text)

		return len(out) < maxInstructions
	})

	return out
}

// looksLikeIngredient accepts short list items that carry a quantity, a
// measurement unit, or a known food word, and rejects navigation text.
func looksLikeIngredient(text string) bool {
	if len(text) < minIngredientLength || len(text) > maxIngredientLength {
		return false
	}

	lower := strings.ToLower(text)
	for _, phrase := range skipPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	// Full sentences are directions, not ingredients, even when they name a
	// food word.
	words := strings.Fields(text)
	if len(words) > 12 || (strings.HasSuffix(text, ".") && len(words) > 5) {
		return false
	}

	hasDigit := strings.IndexFunc(text, unicode.IsDigit) >= 0

	if hasDigit && containsWord(lower, unitWords) {
		return true
	}

	if containsWord(lower, foodWords) {
		return true
	}

	// A leading quantity with a short noun phrase ("2 ripe avocados").
	return hasDigit && len(strings.Fields(text)) <= 8 && unicode.IsDigit(rune(text[0]))
}

// looksLikeInstruction accepts sentences that read as cooking directions:
// long enough to be substantive and anchored by an action verb.
func looksLikeInstruction(text string) bool {
	words := strings.Fields(text)
	if len(words) < minInstructionWords || len(text) > maxInstructionLength {
		return false
	}

	lower := strings.ToLower(text)
	for _, phrase := range instructionSkipPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	return containsWord(lower, actionVerbs)
}

// containsWord reports whether any vocabulary entry appears in text as a
// whole word.
func containsWord(lower string, vocab []string) bool {
	for _, w := range vocab {
		idx := strings.Index(lower, w)
		for idx >= 0 {
			before := idx == 0 || !isWordRune(rune(lower[idx-1]))
			afterIdx := idx + len(w)
			after := afterIdx >= len(lower) || !isWordRune(rune(lower[afterIdx]))

			if before && after {
				return true
			}

			next := strings.Index(lower[idx+1:], w)
			if next < 0 {
				break
			}

			idx += 1 + next
		}
	}

	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
