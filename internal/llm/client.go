// Package llm provides the generative fallback: extraction of recipes from
// raw HTML or free text, and synthesis of recipes the page never spelled
// out. Extraction is verbatim-only; synthesis output must be tagged as
// AI-derived by its caller.
package llm

import (
	"context"
	"errors"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// ErrNoPayload indicates no JSON object could be recovered from the model
// response.
var ErrNoPayload = errors.New("no JSON object in model response")

// Client is the generative interface the pipeline depends on.
type Client interface {
	// ExtractRecipe pulls a recipe out of page HTML verbatim. When a prior
	// partial exists, it and the list of its weak fields steer the model
	// toward patching what the cheaper tiers missed.
	ExtractRecipe(ctx context.Context, html, pageURL string, prior *recipe.Record, weakFields []string) (*recipe.Record, error)

	// ExtractFromText pulls a recipe out of free text such as a video
	// description or transcript. hint names the dish when known.
	ExtractFromText(ctx context.Context, text, hint string) (*recipe.Record, error)

	// SynthesizeFromTitle invents a full recipe for a dish name.
	SynthesizeFromTitle(ctx context.Context, title string) (*recipe.Record, error)

	// SynthesizeInstructions invents instruction steps for a known dish and
	// ingredient list.
	SynthesizeInstructions(ctx context.Context, title string, ingredients []string) ([]string, error)
}

// toRecord converts a validated payload into a record. Range coercion is the
// finalizer's job; this is a plain shape change.
func toRecord(p *Payload) *recipe.Record {
	rec := &recipe.Record{
		Title:        p.Title,
		Ingredients:  p.Ingredients,
		Instructions: p.Instructions,
		Image:        p.ImageURL,
	}

	if p.Servings > 0 {
		rec.Servings = recipe.IntPtr(p.Servings)
	}

	if p.PrepTimeMinutes > 0 {
		rec.PrepMinutes = recipe.IntPtr(p.PrepTimeMinutes)
	}

	if p.CookTimeMinutes > 0 {
		rec.CookMinutes = recipe.IntPtr(p.CookTimeMinutes)
	}

	if p.TotalTimeMinutes > 0 {
		rec.TotalMinutes = recipe.IntPtr(p.TotalTimeMinutes)
	}

	return rec
}
