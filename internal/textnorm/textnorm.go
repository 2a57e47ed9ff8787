// Package textnorm cleans raw extracted strings and deduplicates
// near-identical instruction steps. Every list that leaves the pipeline goes
// through here first.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	// similarityThreshold is the position-aligned character similarity above
	// which two steps are considered duplicates.
	similarityThreshold = 0.85

	// similarityMaxLenDiff bounds when similarity is computed at all; steps
	// whose lengths differ by this much or more are never "similar".
	similarityMaxLenDiff = 10

	maxUnescapePasses = 3
)

var (
	listMarkerRe   = regexp.MustCompile(`^\s*(?:\d+\s*[.):\]]\s*|[-*•·▪◦‣]\s+|[–—]\s+)`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	leadOrdinalRe  = regexp.MustCompile(`^\d+\s*[.):\]]?\s*`)
	trailingPunctRe = regexp.MustCompile(`[.!?;:,]+$`)

	// stripSet removes zero-width characters, BOM, soft hyphens and
	// non-whitespace control characters. Tabs and newlines survive so the
	// whitespace collapse below keeps word boundaries intact.
	stripSet = runes.Remove(runes.Predicate(func(r rune) bool {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff', '\u00ad':
			return true
		}

		return unicode.IsControl(r) && !unicode.IsSpace(r)
	}))

	asciiFold = strings.NewReplacer(
		" ", " ",
		"–", "-", "—", "-", "‒", "-", "―", "-",
		"’", "'", "‘", "'", "‚", "'",
		"“", `"`, "”", `"`, "„", `"`,
		"…", "...",
	)
)

// Normalize cleans a raw string: HTML entities, non-breaking spaces,
// zero-width/control characters, Unicode dashes and quotes, leading list
// markers, and whitespace runs. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	for i := 0; i < maxUnescapePasses; i++ {
		u := html.UnescapeString(s)
		if u == s {
			break
		}

		s = u
	}

	s, _, _ = transform.String(stripSet, s) //nolint:errcheck // rune removal cannot fail
	s = asciiFold.Replace(s)

	// Repeated markers ("1. 2) Mix") are stripped to a fixed point so a
	// second Normalize pass has nothing left to remove.
	for {
		stripped := listMarkerRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}

		s = stripped
	}

	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// NormalizeAll maps Normalize over a list, dropping entries that normalize to
// empty.
func NormalizeAll(items []string) []string {
	out := make([]string, 0, len(items))

	for _, item := range items {
		if n := Normalize(item); n != "" {
			out = append(out, n)
		}
	}

	return out
}

// DedupeSteps removes duplicate instruction steps. A step is dropped when its
// comparison form exactly matches, is a substring of, or is more than 85%
// position-aligned-similar to a previously kept step. The output is never
// empty for non-empty input: if everything is filtered, a single sentinel
// step is emitted.
func DedupeSteps(steps []string) []string {
	if len(steps) == 0 {
		return steps
	}

	kept := make([]string, 0, len(steps))
	keptNorm := make([]string, 0, len(steps))

	for _, step := range steps {
		norm := compareForm(step)
		if norm == "" {
			continue
		}

		if !isDuplicate(norm, keptNorm) {
			kept = append(kept, step)
			keptNorm = append(keptNorm, norm)
		}
	}

	if len(kept) == 0 {
		return []string{recipeSentinelStep}
	}

	return kept
}

// recipeSentinelStep mirrors recipe.SentinelStep; duplicated here to keep
// textnorm free of domain imports.
const recipeSentinelStep = "See original recipe for directions."

func isDuplicate(norm string, kept []string) bool {
	for _, prev := range kept {
		if norm == prev || strings.Contains(prev, norm) {
			return true
		}

		if charSimilarity(norm, prev) > similarityThreshold {
			return true
		}
	}

	return false
}

// compareForm produces the case/whitespace/punctuation-insensitive form used
// only for duplicate detection, never for output.
func compareForm(step string) string {
	s := strings.ToLower(strings.TrimSpace(step))
	s = leadOrdinalRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = trailingPunctRe.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}

// charSimilarity counts position-aligned equal characters divided by the
// longer length. Cheap by design; real steps that differ diverge early.
func charSimilarity(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	diff := la - lb
	if diff < 0 {
		diff = -diff
	}

	if diff >= similarityMaxLenDiff {
		return 0
	}

	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}

	matches := 0

	for i := 0; i < shorter; i++ {
		if a[i] == b[i] {
			matches++
		}
	}

	return float64(matches) / float64(longer)
}
