package video

import (
	"regexp"
	"strings"

	"github.com/longevityfoodlab/recipe-parser/internal/textnorm"
)

// Section header vocabulary for creator descriptions. Creators are remarkably
// consistent about these headers even when everything else is freeform.
var (
	ingredientHeaders = []string{
		"ingredients", "what you need", "what you'll need", "you will need",
		"shopping list", "grocery list",
	}
	instructionHeaders = []string{
		"instructions", "method", "directions", "steps", "how to make",
		"how to make it", "preparation",
	}
)

// descriptionSkipPatterns reject promo lines, links and timestamps that
// creators pack around the recipe.
var descriptionSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://`),
	regexp.MustCompile(`(?i)^\s*#\w`),
	regexp.MustCompile(`(?i)^\s*@\w`),
	regexp.MustCompile(`(?i)\b(subscribe|follow me|follow us|link in bio|use code|discount|merch|patreon)\b`),
	regexp.MustCompile(`^\s*\d{1,2}:\d{2}`),
}

type descriptionSection int

const (
	sectionNone descriptionSection = iota
	sectionIngredients
	sectionInstructions
)

// ParseDescription splits a video description into ingredient and instruction
// lines using the creator's own section headers. Lines before the first
// header and promo lines are discarded.
func ParseDescription(description string) (ingredients, instructions []string) {
	section := sectionNone

	for _, raw := range strings.Split(description, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if next, ok := headerSection(line); ok {
			section = next

			continue
		}

		if section == sectionNone || skipDescriptionLine(line) {
			continue
		}

		line = textnorm.Normalize(line)
		if line == "" {
			continue
		}

		switch section {
		case sectionIngredients:
			ingredients = append(ingredients, textnorm.AddImplicitQuantity(line))
		case sectionInstructions:
			instructions = append(instructions, line)
		}
	}

	return ingredients, instructions
}

// headerSection reports whether a line is a section header. Headers are short
// lines consisting of a known vocabulary word, with optional decoration.
func headerSection(line string) (descriptionSection, bool) {
	cleaned := strings.ToLower(strings.Trim(line, " \t:*-—~=📝🧾👇⬇️✨"))
	if len(cleaned) > 30 {
		return sectionNone, false
	}

	for _, h := range ingredientHeaders {
		if cleaned == h {
			return sectionIngredients, true
		}
	}

	for _, h := range instructionHeaders {
		if cleaned == h {
			return sectionInstructions, true
		}
	}

	return sectionNone, false
}

func skipDescriptionLine(line string) bool {
	for _, re := range descriptionSkipPatterns {
		if re.MatchString(line) {
			return true
		}
	}

	return false
}
