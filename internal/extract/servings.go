package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// Candidate scoring for servings. Semantic markup beats labeled prose, and a
// household-plausible value gets a bonus so stray numbers lose ties.
const (
	servingsScoreSemantic   = 100
	servingsScoreAttribute  = 85
	servingsScoreClass      = 75
	servingsPlausibleBonus  = 15
	servingsPlausibleMin    = 4
	servingsPlausibleMax    = 12
	servingsWeakValueCutoff = 24
	servingsHardMax         = 100
)

type servingsPattern struct {
	re     *regexp.Regexp
	score  int
	strong bool // strong keywords may exceed the weak-value cutoff
}

var servingsPatterns = []servingsPattern{
	{regexp.MustCompile(`(?i)\bservings?\s*:?\s*(\d{1,3})\b`), 70, true},
	{regexp.MustCompile(`(?i)\bserves\s*:?\s*(\d{1,3})\b`), 70, true},
	{regexp.MustCompile(`(?i)\bmakes\s+(\d{1,3})\s+(?:servings?|portions?)\b`), 65, true},
	{regexp.MustCompile(`(?i)\byields?\s*:?\s*(\d{1,3})\b`), 60, false},
	{regexp.MustCompile(`(?i)\bfor\s+(\d{1,2})\s+(?:people|persons)\b`), 50, false},
	{regexp.MustCompile(`(?i)\brecipe\s+for\s+(\d{1,2})\b`), 40, false},
}

type servingsCandidate struct {
	value int
	score int
}

// ExtractServings finds the serving count on an HTML page. Candidates are
// collected from semantic markup and labeled prose, scored, and the best one
// wins; ties go to the larger value. Reports nil when nothing credible is
// found, never a guessed default.
func ExtractServings(doc *goquery.Document) *int {
	// Semantic yield markup is authoritative when present.
	if yield := strings.TrimSpace(doc.Find(`[itemprop="recipeYield"]`).First().Text()); yield != "" {
		if p := firstIntIn(yield); p != nil && plausibleServings(*p, true) {
			return p
		}
	}

	candidates := semanticServingsCandidates(doc)
	candidates = append(candidates, proseServingsCandidates(doc.Text())...)

	best := servingsCandidate{}
	for _, c := range candidates {
		if c.score > best.score || (c.score == best.score && c.value > best.value) {
			best = c
		}
	}

	if best.score == 0 {
		return nil
	}

	return recipe.IntPtr(best.value)
}

func semanticServingsCandidates(doc *goquery.Document) []servingsCandidate {
	var out []servingsCandidate

	doc.Find(`[data-servings]`).Each(func(_ int, s *goquery.Selection) {
		if raw, ok := s.Attr("data-servings"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && plausibleServings(n, true) {
				out = append(out, servingsCandidate{n, scoreWithBonus(servingsScoreAttribute, n)})
			}
		}
	})

	doc.Find(`.recipe-yield, .servings, .recipe-servings`).Each(func(_ int, s *goquery.Selection) {
		if p := firstIntIn(s.Text()); p != nil && plausibleServings(*p, true) {
			out = append(out, servingsCandidate{*p, scoreWithBonus(servingsScoreClass, *p)})
		}
	})

	return out
}

func proseServingsCandidates(text string) []servingsCandidate {
	var out []servingsCandidate

	for _, p := range servingsPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || !plausibleServings(n, p.strong) {
				continue
			}

			out = append(out, servingsCandidate{n, scoreWithBonus(p.score, n)})
		}
	}

	return out
}

// plausibleServings rejects zero, negatives, and implausibly large values.
// Large counts past the weak cutoff need a strong keyword; nothing past the
// hard maximum is accepted at all.
func plausibleServings(n int, strong bool) bool {
	if n < 1 || n > servingsHardMax {
		return false
	}

	if n > servingsWeakValueCutoff && !strong {
		return false
	}

	return true
}

func scoreWithBonus(base, n int) int {
	if n >= servingsPlausibleMin && n <= servingsPlausibleMax {
		return base + servingsPlausibleBonus
	}

	return base
}
