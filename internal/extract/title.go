package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titleSeparators split "Recipe Name | Site Name" document titles.
var titleSeparators = []string{" | ", " - ", " – ", " — ", " :: "}

// ExtractTitle finds the recipe title: the first h1, then og:title metadata,
// then the document title with any trailing site-name segment stripped.
func ExtractTitle(doc *goquery.Document) string {
	if h1 := collapseSpaces(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = collapseSpaces(og); og != "" {
			return stripSiteSuffix(og)
		}
	}

	if title := collapseSpaces(doc.Find("title").First().Text()); title != "" {
		return stripSiteSuffix(title)
	}

	return ""
}

func stripSiteSuffix(title string) string {
	for _, sep := range titleSeparators {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}

	return title
}

var (
	slugStripRe   = regexp.MustCompile(`\.[a-z]{2,5}$`)
	slugDigitsRe  = regexp.MustCompile(`^\d+$`)
	slugSplitRe   = regexp.MustCompile(`[-_]+`)
	slugNonWordRe = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)
)

// TitleFromURL reconstructs a human-readable title from the last meaningful
// path segment of a recipe URL ("/recipes/lemon-garlic-chicken-123" becomes
// "Lemon Garlic Chicken"). Returns "" when the URL has no usable slug.
func TitleFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		slug := slugStripRe.ReplaceAllString(segments[i], "")
		if slug == "" || slugDigitsRe.MatchString(slug) {
			continue
		}

		words := slugSplitRe.Split(slug, -1)

		var kept []string

		for _, w := range words {
			w = slugNonWordRe.ReplaceAllString(w, "")
			if w == "" || slugDigitsRe.MatchString(w) {
				continue
			}

			kept = append(kept, titleCaseWord(w))
		}

		if len(kept) > 0 {
			return strings.Join(kept, " ")
		}
	}

	return ""
}

func titleCaseWord(w string) string {
	if w == "" {
		return w
	}

	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}
