package textnorm

import (
	"strings"
	"unicode"
)

// bareUnitWords are measurement words that occasionally appear without a
// quantity ("cup flour" instead of "1 cup flour") when a site renders the
// amount in a separate element the extractor missed.
var bareUnitWords = map[string]bool{
	"cup": true, "cups": true,
	"tablespoon": true, "tablespoons": true, "tbsp": true,
	"teaspoon": true, "teaspoons": true, "tsp": true,
	"pound": true, "pounds": true, "lb": true, "lbs": true,
	"ounce": true, "ounces": true, "oz": true,
	"gram": true, "grams": true, "g": true, "kg": true,
	"ml": true, "l": true, "liter": true, "liters": true, "litre": true, "litres": true,
	"pinch": true, "dash": true, "handful": true, "bunch": true,
	"clove": true, "cloves": true,
	"slice": true, "slices": true,
	"can": true, "cans": true,
	"stick": true, "sticks": true,
	"quart": true, "quarts": true,
	"pint": true, "pints": true,
}

// unicodeFractions covers the vulgar-fraction glyphs recipe sites favor.
const unicodeFractions = "¼½¾⅐⅑⅒⅓⅔⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞"

// AddImplicitQuantity prepends "1 " when an ingredient string starts with a
// bare unit word and carries no leading numeral or fraction glyph. Idempotent:
// a numeral-prefixed ingredient is never modified.
func AddImplicitQuantity(ingredient string) string {
	trimmed := strings.TrimSpace(ingredient)
	if trimmed == "" {
		return ingredient
	}

	first, _ := firstRune(trimmed)
	if unicode.IsDigit(first) || strings.ContainsRune(unicodeFractions, first) {
		return ingredient
	}

	token := strings.ToLower(strings.FieldsFunc(trimmed, unicode.IsSpace)[0])
	token = strings.TrimRight(token, ".,:;")

	if !bareUnitWords[token] {
		return ingredient
	}

	return "1 " + trimmed
}

func firstRune(s string) (rune, int) {
	for i, r := range s {
		return r, i
	}

	return 0, 0
}
