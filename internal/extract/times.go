package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * 60
)

var isoDurationRe = regexp.MustCompile(`(?i)^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+(?:\.\d+)?)M)?(?:\d+(?:\.\d+)?S)?)?$`)

// ParseISODuration converts an ISO-8601 duration ("PT1H30M") to total
// minutes. Seconds are ignored; a duration with no minute-resolution
// components reports false.
func ParseISODuration(s string) (int, bool) {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	total := 0
	found := false

	if m[1] != "" {
		d, _ := strconv.Atoi(m[1]) //nolint:errcheck // digits only by regex
		total += d * minutesPerDay
		found = true
	}

	if m[2] != "" {
		h, _ := strconv.Atoi(m[2]) //nolint:errcheck // digits only by regex
		total += h * minutesPerHour
		found = true
	}

	if m[3] != "" {
		min, _ := strconv.ParseFloat(m[3], 64) //nolint:errcheck // digits only by regex
		total += int(min)
		found = true
	}

	if !found || total == 0 {
		return 0, false
	}

	return total, true
}

type timeKind int

const (
	timePrep timeKind = iota
	timeCook
	timeTotal
)

const timeUnitGroup = `(min(?:ute)?s?|hours?|hrs?|h\b|days?)`

var freeTextTimePatterns = []struct {
	kind timeKind
	re   *regexp.Regexp
}{
	{timePrep, regexp.MustCompile(`(?i)prep(?:aration)?\s*time?[:\s]*(\d+)\s*` + timeUnitGroup)},
	{timePrep, regexp.MustCompile(`(?i)hands?[- ]on\s*time?[:\s]*(\d+)\s*` + timeUnitGroup)},
	{timePrep, regexp.MustCompile(`(?i)active\s*time?[:\s]*(\d+)\s*` + timeUnitGroup)},
	{timeCook, regexp.MustCompile(`(?i)cook(?:ing)?\s*time?[:\s]*(\d+)\s*` + timeUnitGroup)},
	{timeCook, regexp.MustCompile(`(?i)bak(?:e|ing)\s*time?[:\s]*(\d+)\s*` + timeUnitGroup)},
	{timeTotal, regexp.MustCompile(`(?i)total\s*time?[:\s]*(\d+)\s*` + timeUnitGroup)},
	{timeTotal, regexp.MustCompile(`(?i)ready\s*in[:\s]*(\d+)\s*` + timeUnitGroup)},
}

// extractTimes scans visible page text for labeled time mentions and returns
// prep/cook/total minutes (nil when unlabeled or absent).
func extractTimes(doc *goquery.Document) (prep, cook, total *int) {
	text := doc.Text()

	for _, p := range freeTextTimePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		minutes := toMinutes(m[1], m[2])
		if minutes == 0 {
			continue
		}

		switch p.kind {
		case timePrep:
			if prep == nil {
				prep = recipe.IntPtr(minutes)
			}
		case timeCook:
			if cook == nil {
				cook = recipe.IntPtr(minutes)
			}
		case timeTotal:
			if total == nil {
				total = recipe.IntPtr(minutes)
			}
		}
	}

	return prep, cook, total
}

func toMinutes(value, unit string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	switch {
	case strings.HasPrefix(strings.ToLower(unit), "h"):
		return n * minutesPerHour
	case strings.HasPrefix(strings.ToLower(unit), "d"):
		return n * minutesPerDay
	default:
		return n
	}
}
