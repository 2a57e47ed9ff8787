package llm

import (
	"fmt"
	"strings"
)

// Payload is the JSON shape every generative call must return. Zero values
// mean the model could not determine the field.
type Payload struct {
	Title            string   `json:"title"`
	Ingredients      []string `json:"ingredients"`
	Instructions     []string `json:"instructions"`
	Servings         int      `json:"servings"`
	PrepTimeMinutes  int      `json:"prep_time_minutes"`
	CookTimeMinutes  int      `json:"cook_time_minutes"`
	TotalTimeMinutes int      `json:"total_time_minutes"`
	ImageURL         string   `json:"image_url"`
	SiteLink         string   `json:"site_link"`
}

// Field bounds for generative output. Violations are fed back to the model
// once before the call is abandoned.
const (
	titleMinLen       = 3
	titleMaxLen       = 200
	ingredientMinLen  = 3
	ingredientMaxLen  = 220
	instructionMinLen = 1
	instructionMaxLen = 500
)

// Validate checks a full-recipe payload against the output contract and
// returns one message per violation; an empty slice means the payload is
// acceptable. Title, ingredients, and instructions are required; the
// remaining fields only produce violations when present and malformed.
func Validate(p *Payload) []string {
	var problems []string

	switch {
	case p.Title == "":
		problems = append(problems, "title is required")
	case len(p.Title) < titleMinLen || len(p.Title) > titleMaxLen:
		problems = append(problems, fmt.Sprintf("title must be %d-%d characters, got %d", titleMinLen, titleMaxLen, len(p.Title)))
	}

	if len(p.Ingredients) == 0 {
		problems = append(problems, "ingredients must not be empty")
	}

	if len(p.Instructions) == 0 {
		problems = append(problems, "instructions must not be empty")
	}

	if p.Servings < 0 {
		problems = append(problems, "servings must be a positive integer")
	}

	if p.ImageURL != "" && !strings.HasPrefix(p.ImageURL, "https://") {
		problems = append(problems, "image_url must be an absolute https URL")
	}

	if p.SiteLink != "" && !strings.HasPrefix(p.SiteLink, "https://") {
		problems = append(problems, "site_link must be an absolute https URL")
	}

	for i, ing := range p.Ingredients {
		if len(ing) < ingredientMinLen || len(ing) > ingredientMaxLen {
			problems = append(problems, fmt.Sprintf("ingredients[%d] must be %d-%d characters", i, ingredientMinLen, ingredientMaxLen))
		}
	}

	for i, step := range p.Instructions {
		if len(step) < instructionMinLen || len(step) > instructionMaxLen {
			problems = append(problems, fmt.Sprintf("instructions[%d] must be %d-%d characters", i, instructionMinLen, instructionMaxLen))
		}
	}

	return problems
}

// ValidateInstructions checks an instructions-only payload; the rest of the
// recipe shape is irrelevant for step synthesis.
func ValidateInstructions(p *Payload) []string {
	var problems []string

	if len(p.Instructions) == 0 {
		problems = append(problems, "instructions must not be empty")
	}

	for i, step := range p.Instructions {
		if len(step) < instructionMinLen || len(step) > instructionMaxLen {
			problems = append(problems, fmt.Sprintf("instructions[%d] must be %d-%d characters", i, instructionMinLen, instructionMaxLen))
		}
	}

	return problems
}
