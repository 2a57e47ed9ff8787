package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

const (
	// completeMinInstructions and completeMinStepLength define when a
	// structured-data result is trusted without running any later stage.
	completeMinInstructions = 3
	completeMinStepLength   = 20
)

// Structured extracts a recipe from schema.org markup: JSON-LD script blocks
// first, itemprop microdata as a fallback. Reports false when the page
// carries no recipe markup at all.
func Structured(doc *goquery.Document) (*recipe.Record, bool) {
	if rec := fromJSONLD(doc); rec != nil {
		return rec, true
	}

	if rec := fromMicrodata(doc); rec != nil {
		return rec, true
	}

	return nil, false
}

// IsComplete reports whether a structured result is rich enough to accept
// without consulting any other source: a title, at least one ingredient, and
// at least three substantive instruction steps.
func IsComplete(rec *recipe.Record) bool {
	if rec == nil || !rec.HasTitle() || len(rec.Ingredients) == 0 {
		return false
	}

	if len(rec.Instructions) < completeMinInstructions {
		return false
	}

	for _, step := range rec.Instructions {
		if len(step) <= completeMinStepLength {
			return false
		}
	}

	return true
}

func fromJSONLD(doc *goquery.Document) *recipe.Record {
	var rec *recipe.Record

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			// Malformed blocks are common; keep scanning.
			return true
		}

		node := findRecipeNode(payload)
		if node == nil {
			return true
		}

		rec = recordFromLD(node)

		return rec == nil
	})

	return rec
}

// findRecipeNode walks a decoded JSON-LD payload looking for the first node
// whose @type is (or includes) Recipe. Publishers nest recipes under @graph
// and inside arrays; both are handled.
func findRecipeNode(v any) map[string]any {
	switch node := v.(type) {
	case map[string]any:
		if hasType(node, "Recipe") {
			return node
		}

		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	case []any:
		for _, item := range node {
			if found := findRecipeNode(item); found != nil {
				return found
			}
		}
	}

	return nil
}

func hasType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}

	return false
}

func recordFromLD(node map[string]any) *recipe.Record {
	rec := &recipe.Record{
		Title:        ldString(node["name"]),
		Image:        ldImage(node["image"]),
		Ingredients:  ldStringList(firstPresent(node, "recipeIngredient", "ingredients")),
		Instructions: ldInstructions(node["recipeInstructions"]),
		Servings:     ldServings(node["recipeYield"]),
	}

	if minutes, ok := ParseISODuration(ldString(node["prepTime"])); ok {
		rec.PrepMinutes = recipe.IntPtr(minutes)
	}

	if minutes, ok := ParseISODuration(ldString(node["cookTime"])); ok {
		rec.CookMinutes = recipe.IntPtr(minutes)
	}

	if minutes, ok := ParseISODuration(ldString(node["totalTime"])); ok {
		rec.TotalMinutes = recipe.IntPtr(minutes)
	}

	if nutrition := ldNutrition(node["nutrition"]); len(nutrition) > 0 {
		rec.Nutrition = nutrition
		rec.NutritionSource = recipe.TierStructured
	}

	if rec.Title == "" && len(rec.Ingredients) == 0 && len(rec.Instructions) == 0 {
		return nil
	}

	return rec
}

func ldString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}

	return ""
}

func ldStringList(v any) []string {
	switch list := v.(type) {
	case string:
		if s := strings.TrimSpace(list); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(list))

		for _, item := range list {
			if s := ldString(item); s != "" {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}

// ldInstructions flattens every published shape of recipeInstructions:
// a single string, an array of strings, an array of HowToStep objects, or
// HowToSection objects wrapping itemListElement arrays of steps.
func ldInstructions(v any) []string {
	switch node := v.(type) {
	case string:
		return splitInstructionText(node)
	case []any:
		var out []string

		for _, item := range node {
			switch step := item.(type) {
			case string:
				if s := strings.TrimSpace(step); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				if hasType(step, "HowToSection") {
					out = append(out, ldInstructions(step["itemListElement"])...)
					continue
				}

				if s := ldString(step["text"]); s != "" {
					out = append(out, s)
				} else if s := ldString(step["name"]); s != "" {
					out = append(out, s)
				}
			}
		}

		return out
	}

	return nil
}

// splitInstructionText turns a single instruction blob into steps, first on
// newlines, then on sentence boundaries when it is one long line.
func splitInstructionText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string

	if strings.Contains(text, "\n") {
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}

		return out
	}

	for _, sentence := range strings.Split(text, ". ") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if !strings.HasSuffix(sentence, ".") {
			sentence += "."
		}

		out = append(out, sentence)
	}

	return out
}

func ldImage(v any) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]any:
		return ldString(img["url"])
	case []any:
		for _, item := range img {
			if s := ldImage(item); s != "" {
				return s
			}
		}
	}

	return ""
}

func ldServings(v any) *int {
	switch y := v.(type) {
	case float64:
		return recipe.IntPtr(int(y))
	case string:
		return firstIntIn(y)
	case []any:
		for _, item := range y {
			if p := ldServings(item); p != nil {
				return p
			}
		}
	}

	return nil
}

// firstIntIn pulls the first integer out of free text ("Makes 4 servings").
func firstIntIn(s string) *int {
	start := -1

	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}

			continue
		}

		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return nil
			}

			return recipe.IntPtr(n)
		}
	}

	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		if err != nil {
			return nil
		}

		return recipe.IntPtr(n)
	}

	return nil
}

// nutritionKeys maps NutritionInformation properties to output labels.
var nutritionKeys = map[string]string{
	"calories":            "calories",
	"fatContent":          "fat",
	"saturatedFatContent": "saturated_fat",
	"carbohydrateContent": "carbohydrates",
	"sugarContent":        "sugar",
	"fiberContent":        "fiber",
	"proteinContent":      "protein",
	"sodiumContent":       "sodium",
	"cholesterolContent":  "cholesterol",
}

func ldNutrition(v any) map[string]string {
	node, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]string)

	for prop, label := range nutritionKeys {
		if s := ldString(node[prop]); s != "" {
			out[label] = s
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

func firstPresent(node map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := node[key]; ok {
			return v
		}
	}

	return nil
}

// fromMicrodata handles the older itemprop markup still emitted by some
// publishers and plugin themes.
func fromMicrodata(doc *goquery.Document) *recipe.Record {
	scope := doc.Find(`[itemtype*="schema.org/Recipe"]`).First()
	if scope.Length() == 0 {
		return nil
	}

	rec := &recipe.Record{
		Title: strings.TrimSpace(scope.Find(`[itemprop="name"]`).First().Text()),
	}

	scope.Find(`[itemprop="recipeIngredient"], [itemprop="ingredients"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			rec.Ingredients = append(rec.Ingredients, text)
		}
	})

	steps := scope.Find(`[itemprop="recipeInstructions"]`)
	if steps.Length() == 1 {
		rec.Instructions = splitInstructionText(steps.Text())
	} else {
		steps.Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				rec.Instructions = append(rec.Instructions, text)
			}
		})
	}

	if img := scope.Find(`[itemprop="image"]`).First(); img.Length() > 0 {
		if src, ok := img.Attr("src"); ok {
			rec.Image = src
		} else if content, ok := img.Attr("content"); ok {
			rec.Image = content
		}
	}

	if yield := strings.TrimSpace(scope.Find(`[itemprop="recipeYield"]`).First().Text()); yield != "" {
		rec.Servings = firstIntIn(yield)
	}

	if rec.Title == "" && len(rec.Ingredients) == 0 && len(rec.Instructions) == 0 {
		return nil
	}

	return rec
}
