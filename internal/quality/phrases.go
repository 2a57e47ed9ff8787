package quality

import "strings"

// Heuristic phrase tables. Kept as data so they can be tested and extended
// without touching control flow.

// errorPagePhrases invalidate a title outright: the page served an error, not
// a recipe.
var errorPagePhrases = []string{
	"page not found",
	"404",
	"access denied",
	"not found",
}

// botWallPhrases mark anti-scraping interstitials scraped as if they were
// content. They cap quality rather than zeroing it, since partial fields may
// still have leaked through.
var botWallPhrases = []string{
	"verify you are a human",
	"cloudflare",
	"attention required",
	"blocked",
	"access denied",
	"just a moment",
	"captcha",
}

// fillerNouns are the generic placeholders hallucinating models pad
// ingredient lists with.
var fillerNouns = []string{
	"ingredient",
	"item",
	"component",
}

// logoImageSubstrings flag images that are site chrome rather than food
// photography.
var logoImageSubstrings = []string{
	"logo",
	"favicon",
	"placeholder",
	"icon",
	"avatar",
	"sprite",
	"spacer",
	"pixel",
	"badge",
}

// watermarkSubstrings are editorial-credit tails sites append to scraped
// instruction text.
var watermarkSubstrings = []string{
	"recipe courtesy of",
	"all rights reserved",
	"originally published",
	"reprinted with permission",
	"find more recipes at",
	"©",
}

// brandSubstrings are site brands that leak into titles ("Best Brownies -
// Allrecipes"); their presence lowers title confidence.
var brandSubstrings = []string{
	"allrecipes",
	"food network",
	"foodnetwork",
	"epicurious",
	"bon appetit",
	"nyt cooking",
	"delish",
	"tasty",
}

// IsErrorTitle reports whether the title belongs to an error page.
func IsErrorTitle(title string) bool {
	return containsAny(strings.ToLower(title), errorPagePhrases)
}

// IsBotWallTitle reports whether the title belongs to an anti-scraping
// interstitial.
func IsBotWallTitle(title string) bool {
	return containsAny(strings.ToLower(title), botWallPhrases)
}

// HasBlockedPhrase reports whether any blocked-content phrase leaked into
// extracted text, wherever it landed.
func HasBlockedPhrase(text string) bool {
	return containsAny(strings.ToLower(text), botWallPhrases)
}

// IsLogoImage reports whether an image URL looks like site chrome.
func IsLogoImage(imageURL string) bool {
	return containsAny(strings.ToLower(imageURL), logoImageSubstrings)
}

// HasWatermark reports whether text carries an editorial-credit watermark.
func HasWatermark(text string) bool {
	return containsAny(strings.ToLower(text), watermarkSubstrings)
}

// StripWatermarkTail removes a trailing watermark sentence from an
// instruction step, returning the step unchanged when none is found.
func StripWatermarkTail(step string) string {
	lower := strings.ToLower(step)

	cut := -1

	for _, mark := range watermarkSubstrings {
		if idx := strings.Index(lower, mark); idx >= 0 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}

	if cut <= 0 {
		if cut == 0 {
			return ""
		}

		return step
	}

	return strings.TrimRight(strings.TrimSpace(step[:cut]), ".,;:- ") + "."
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}

	return false
}

func hasBrandSubstring(title string) bool {
	return containsAny(strings.ToLower(title), brandSubstrings)
}
