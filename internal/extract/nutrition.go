package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nutritionLabelPatterns match labeled values inside a nutrition region.
// Scoping to a nutrition container keeps body-text numbers ("350 degrees")
// from being read as nutrition facts.
var nutritionLabelPatterns = map[string]*regexp.Regexp{
	"calories":      regexp.MustCompile(`(?i)\bcalories?\s*:?\s*(\d+(?:\.\d+)?)\s*(?:kcal)?\b`),
	"fat":           regexp.MustCompile(`(?i)\b(?:total\s+)?fat\s*:?\s*(\d+(?:\.\d+)?)\s*g\b`),
	"saturated_fat": regexp.MustCompile(`(?i)\bsaturated\s+fat\s*:?\s*(\d+(?:\.\d+)?)\s*g\b`),
	"carbohydrates": regexp.MustCompile(`(?i)\b(?:total\s+)?carb(?:ohydrate)?s?\s*:?\s*(\d+(?:\.\d+)?)\s*g\b`),
	"sugar":         regexp.MustCompile(`(?i)\bsugars?\s*:?\s*(\d+(?:\.\d+)?)\s*g\b`),
	"fiber":         regexp.MustCompile(`(?i)\b(?:dietary\s+)?fib(?:er|re)\s*:?\s*(\d+(?:\.\d+)?)\s*g\b`),
	"protein":       regexp.MustCompile(`(?i)\bprotein\s*:?\s*(\d+(?:\.\d+)?)\s*g\b`),
	"sodium":        regexp.MustCompile(`(?i)\bsodium\s*:?\s*(\d+(?:\.\d+)?)\s*(?:mg|g)\b`),
	"cholesterol":   regexp.MustCompile(`(?i)\bcholesterol\s*:?\s*(\d+(?:\.\d+)?)\s*mg\b`),
}

var nutritionRegionSelector = `[class*="nutrition"], [id*="nutrition"], [itemprop="nutrition"]`

// ExtractNutrition scrapes labeled nutrition values from the page's nutrition
// region. Nothing is extracted when the page has no such region.
func ExtractNutrition(doc *goquery.Document) map[string]string {
	region := doc.Find(nutritionRegionSelector).First()
	if region.Length() == 0 {
		return nil
	}

	text := collapseSpaces(region.Text())
	if text == "" {
		return nil
	}

	out := make(map[string]string)

	for label, re := range nutritionLabelPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			out[label] = m[1]
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

// SanitizeNutrition drops non-numeric entries from a nutrition block. One bad
// value never invalidates the rest; the block as a whole is dropped only when
// no numeric calories entry survives.
func SanitizeNutrition(nutrition map[string]string) map[string]string {
	out := make(map[string]string, len(nutrition))

	for k, v := range nutrition {
		if numericValue(v) {
			out[k] = v
		}
	}

	if _, ok := out["calories"]; !ok {
		return nil
	}

	return out
}

var numericValueRe = regexp.MustCompile(`^\d+(?:\.\d+)?\s*(?:kcal|mg|g)?$`)

func numericValue(v string) bool {
	return numericValueRe.MatchString(strings.TrimSpace(v))
}
