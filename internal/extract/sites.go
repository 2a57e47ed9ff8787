package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// siteMinIngredients is the acceptance bar for a site-specific result; below
// it the selectors are assumed stale and the generic extractor runs instead.
const siteMinIngredients = 2

// siteRule holds selector priority lists for one publisher. Selectors are
// tried in order and the first one yielding content wins, so a redesign that
// breaks the primary selector degrades to the next instead of failing.
type siteRule struct {
	ingredients  []string
	instructions []string
	title        []string
	image        []string
}

// siteRules is keyed by registrable host with the www prefix stripped.
var siteRules = map[string]siteRule{
	"allrecipes.com": {
		ingredients: []string{
			`[data-ingredient-name]`,
			`.mm-recipes-structured-ingredients__list-item`,
			`.ingredients-item-name`,
		},
		instructions: []string{
			`.mm-recipes-steps__content p`,
			`.instructions-section-item p`,
		},
		title: []string{`h1.article-heading`, `h1`},
		image: []string{`.primary-image img`, `.universal-image__image`},
	},
	"foodnetwork.com": {
		ingredients: []string{
			`.o-Ingredients__a-Ingredient--CheckboxLabel`,
			`.o-Ingredients__a-Ingredient`,
		},
		instructions: []string{
			`.o-Method__m-Step`,
		},
		title: []string{`.o-AssetTitle__a-HeadlineText`, `h1`},
		image: []string{`.m-MediaBlock__a-Image img`},
	},
	"simplyrecipes.com": {
		ingredients: []string{
			`.structured-ingredients__list-item`,
			`.ingredient-list li`,
		},
		instructions: []string{
			`.structured-project__steps li p`,
			`.recipe-procedures li`,
		},
		title: []string{`h1.heading__title`, `h1`},
		image: []string{`.primary-image img`},
	},
	"seriouseats.com": {
		ingredients: []string{
			`.structured-ingredients__list-item`,
			`.ingredient`,
		},
		instructions: []string{
			`.structured-project__steps li p`,
			`.recipe-procedure-text`,
		},
		title: []string{`h1.heading__title`, `h1`},
		image: []string{`.primary-image img`},
	},
	"bbcgoodfood.com": {
		ingredients: []string{
			`.recipe__ingredients li`,
			`.ingredients-list__item`,
		},
		instructions: []string{
			`.recipe__method-steps li p`,
			`.method-steps__list-item`,
		},
		title: []string{`h1.heading-1`, `h1`},
		image: []string{`.post-header__image img`, `.image__img`},
	},
	"epicurious.com": {
		ingredients: []string{
			`[data-testid="IngredientList"] li`,
			`.ingredient`,
		},
		instructions: []string{
			`[data-testid="InstructionsWrapper"] li p`,
			`.preparation-step`,
		},
		title: []string{`h1[data-testid="ContentHeaderHed"]`, `h1`},
		image: []string{`picture img`},
	},
	"delish.com": {
		ingredients: []string{
			`.ingredient-lists li`,
			`.ingredient-item`,
		},
		instructions: []string{
			`.direction-lists li`,
			`.direction-item`,
		},
		title: []string{`h1.recipe-hed`, `h1`},
		image: []string{`.recipe-image img`},
	},
	"tasty.co": {
		ingredients: []string{
			`.ingredients__section li`,
			`.ingredient`,
		},
		instructions: []string{
			`.prep-steps li`,
			`.preparation li`,
		},
		title: []string{`h1.recipe-name`, `h1`},
		image: []string{`.recipe-video-player img`, `picture img`},
	},
}

// SiteSpecific runs the per-publisher selector rules for the page's host.
// Reports false when no rule exists for the host or the rule came back with
// fewer than two ingredients.
func SiteSpecific(doc *goquery.Document, pageURL string) (*recipe.Record, bool) {
	rule, ok := ruleFor(pageURL)
	if !ok {
		return nil, false
	}

	rec := &recipe.Record{
		Title:        firstText(doc, rule.title),
		Ingredients:  collectTexts(doc, rule.ingredients, maxIngredients),
		Instructions: collectTexts(doc, rule.instructions, maxInstructions),
		Image:        firstImageSrc(doc, rule.image),
	}

	if len(rec.Ingredients) < siteMinIngredients {
		return nil, false
	}

	rec.Metadata.Extractor = recipe.ExtractorSiteSpecific

	return rec, true
}

func ruleFor(pageURL string) (siteRule, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return siteRule{}, false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	rule, ok := siteRules[host]

	return rule, ok
}

// firstText returns the first non-empty text for a selector priority list.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}

	return ""
}

// collectTexts gathers element texts for the first selector that yields any,
// capped at limit.
func collectTexts(doc *goquery.Document, selectors []string, limit int) []string {
	for _, sel := range selectors {
		var out []string

		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := collapseSpaces(s.Text()); text != "" {
				out = append(out, text)
			}

			return len(out) < limit
		})

		if len(out) > 0 {
			return out
		}
	}

	return nil
}

func firstImageSrc(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		img := doc.Find(sel).First()
		if img.Length() == 0 {
			continue
		}

		for _, attr := range []string{"src", "data-src", "content"} {
			if src, ok := img.Attr(attr); ok && strings.TrimSpace(src) != "" {
				return strings.TrimSpace(src)
			}
		}
	}

	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
