package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractImage finds the page's best recipe image: social-preview metadata
// first, then the first substantial content image that is not site chrome.
// Relative URLs are resolved against pageURL.
func ExtractImage(doc *goquery.Document, pageURL string) string {
	metaSelectors := []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[name="twitter:image"]`,
		`link[rel="image_src"]`,
	}

	for _, sel := range metaSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		src, ok := node.Attr("content")
		if !ok {
			src, ok = node.Attr("href")
		}

		if ok && strings.TrimSpace(src) != "" {
			return resolveURL(pageURL, strings.TrimSpace(src))
		}
	}

	var found string

	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, ok = s.Attr("data-src")
		}

		if !ok || strings.TrimSpace(src) == "" {
			return true
		}

		src = strings.TrimSpace(src)
		if skipImage(src) || skipImage(attrOr(s, "alt")) || skipImage(attrOr(s, "class")) {
			return true
		}

		found = resolveURL(pageURL, src)

		return false
	})

	return found
}

func skipImage(s string) bool {
	lower := strings.ToLower(s)
	for _, sub := range imageSkipSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}

	return false
}

func attrOr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)

	return v
}

func resolveURL(base, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	if refURL.IsAbs() {
		return ref
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}

	return baseURL.ResolveReference(refURL).String()
}
