// Package recipe defines the candidate record passed between every stage of
// the extraction pipeline. Extractors return fresh records, the merge engine
// combines two records into a new one, and the finalizer is the only stage
// allowed to mutate a record in place (for cleanup, never for content).
package recipe

// PlaceholderTitle is the sentinel the deterministic extractors emit when no
// title could be found. A placeholder title never counts toward quality.
const PlaceholderTitle = "Untitled Recipe"

// SentinelStep is emitted by step deduplication when every input step was
// filtered out. Its presence caps the quality score.
const SentinelStep = "See original recipe for directions."

// Valid ranges for scalar fields. Out-of-range values are coerced to nil,
// never clamped to a boundary. A servings value of 1 is treated as a parse
// failure: single-serving markup almost always comes from per-serving
// nutrition labels, not yields.
const (
	MinServings = 2
	MaxServings = 50
	MinMinutes  = 1
	MaxMinutes  = 600
)

// Metadata carries per-record annotations alongside the extracted fields.
type Metadata struct {
	TierUsed        string `json:"tier_used"`
	Extractor       string `json:"extractor,omitempty"`
	FullRecipe      bool   `json:"full_recipe"`
	AIEnhanced      bool   `json:"ai_enhanced,omitempty"`
	BotWallDetected bool   `json:"bot_wall_detected,omitempty"`
	AIError         string `json:"ai_error,omitempty"`
}

// Record is the universal unit of the pipeline: a partial, best-effort
// recipe. All fields are optional; absent fields stay zero, never defaulted.
type Record struct {
	Title           string            `json:"title"`
	Ingredients     []string          `json:"ingredients"`
	Instructions    []string          `json:"instructions"`
	Servings        *int              `json:"servings"`
	PrepMinutes     *int              `json:"prep_time_minutes"`
	CookMinutes     *int              `json:"cook_time_minutes"`
	TotalMinutes    *int              `json:"total_time_minutes"`
	Image           string            `json:"image,omitempty"`
	Nutrition       map[string]string `json:"nutrition,omitempty"`
	NutritionSource string            `json:"nutrition_source,omitempty"`
	SiteName        string            `json:"site_name"`
	SiteLink        string            `json:"site_link"`
	SourceURL       string            `json:"source_url"`
	QualityScore    float64           `json:"quality_score"`
	Metadata        Metadata          `json:"metadata"`
}

// Field names a scored record field. Used as the key of a Confidence map and
// in the acceptance gate's weight table.
type Field string

const (
	FieldTitle        Field = "title"
	FieldImage        Field = "image"
	FieldIngredients  Field = "ingredients"
	FieldInstructions Field = "instructions"
	FieldServings     Field = "servings"
	FieldTotalTime    Field = "total_time"
)

// Fields lists every scored field in weight-table order.
var Fields = []Field{
	FieldTitle,
	FieldImage,
	FieldIngredients,
	FieldInstructions,
	FieldServings,
	FieldTotalTime,
}

// Confidence maps a field to a per-tier confidence in [0,1]. It is recomputed
// per (record, tier) comparison and never persisted.
type Confidence map[Field]float64

// Clone returns a deep copy. Extractors and the merge engine never mutate a
// record handed to them; callers clone before modifying.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	out := *r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Instructions = append([]string(nil), r.Instructions...)
	out.Servings = clonePtr(r.Servings)
	out.PrepMinutes = clonePtr(r.PrepMinutes)
	out.CookMinutes = clonePtr(r.CookMinutes)
	out.TotalMinutes = clonePtr(r.TotalMinutes)

	if r.Nutrition != nil {
		out.Nutrition = make(map[string]string, len(r.Nutrition))
		for k, v := range r.Nutrition {
			out.Nutrition[k] = v
		}
	}

	return &out
}

// HasTitle reports whether the record carries a real, non-placeholder title.
func (r *Record) HasTitle() bool {
	return r.Title != "" && r.Title != PlaceholderTitle
}

// ListCount returns the combined ingredient and instruction count, the
// richness measure used by the best-effort fallback.
func (r *Record) ListCount() int {
	return len(r.Ingredients) + len(r.Instructions)
}

// IntPtr returns a pointer to n. Convenience for optional scalar fields.
func IntPtr(n int) *int {
	return &n
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
