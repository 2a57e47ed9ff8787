// Package merge combines two candidate records field by field. Additive is
// the symmetric strategy used for deterministic + external-API results;
// PatchOnly is the asymmetric strategy that lets a generative fallback fill
// gaps without overriding strong deterministic data.
package merge

import (
	"strings"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

const (
	// lowConfidence is the confidence below which a patch value is adopted
	// unconditionally.
	lowConfidence = 0.5

	// highConfidence is the confidence at which the base value is kept
	// unless the patch list is substantially longer.
	highConfidence = 0.8

	// listGrowthFactor: a patch list must exceed the base list by more than
	// 20% to displace a high-confidence base list.
	listGrowthFactor = 1.2
)

// Additive merges two records keeping, per list field, whichever list is
// longer (ties keep base), and filling scalar fields from other only when
// base's value is absent or a placeholder. Neither input is mutated.
func Additive(base, other *recipe.Record) *recipe.Record {
	if other == nil {
		return base.Clone()
	}

	if base == nil {
		return other.Clone()
	}

	out := base.Clone()

	if len(other.Ingredients) > len(out.Ingredients) {
		out.Ingredients = append([]string(nil), other.Ingredients...)
	}

	if len(other.Instructions) > len(out.Instructions) {
		out.Instructions = append([]string(nil), other.Instructions...)
	}

	if !out.HasTitle() && other.HasTitle() {
		out.Title = other.Title
	}

	if out.Image == "" {
		out.Image = other.Image
	}

	if out.Servings == nil {
		out.Servings = clone(other.Servings)
	}

	if out.PrepMinutes == nil {
		out.PrepMinutes = clone(other.PrepMinutes)
	}

	if out.CookMinutes == nil {
		out.CookMinutes = clone(other.CookMinutes)
	}

	if out.TotalMinutes == nil {
		out.TotalMinutes = clone(other.TotalMinutes)
	}

	if out.Nutrition == nil && other.Nutrition != nil {
		out.Nutrition = copyMap(other.Nutrition)
		out.NutritionSource = other.NutritionSource
	}

	return out
}

// PatchOnly merges a generative patch into base using base's field
// confidences. Low-confidence or absent base fields adopt the patch
// unconditionally; high-confidence base fields are kept unless the patch list
// is more than 20% longer; medium-confidence fields adopt the patch only when
// it is plausibly better. A patch can extend weak data but never wholesale
// overwrite strong deterministic results.
func PatchOnly(base, patch *recipe.Record, baseConf recipe.Confidence) *recipe.Record {
	if patch == nil {
		return base.Clone()
	}

	if base == nil {
		return patch.Clone()
	}

	out := base.Clone()

	out.Ingredients = patchList(out.Ingredients, patch.Ingredients, baseConf[recipe.FieldIngredients])
	out.Instructions = patchList(out.Instructions, patch.Instructions, baseConf[recipe.FieldInstructions])

	if patch.HasTitle() && adoptScalar(baseConf[recipe.FieldTitle], !out.HasTitle(), len(patch.Title) > len(out.Title)) {
		out.Title = patch.Title
	}

	if patch.Image != "" && adoptScalar(baseConf[recipe.FieldImage], out.Image == "", strings.HasPrefix(patch.Image, "https://")) {
		out.Image = patch.Image
	}

	if patch.Servings != nil && adoptScalar(baseConf[recipe.FieldServings], out.Servings == nil, false) {
		out.Servings = clone(patch.Servings)
	}

	if patch.TotalMinutes != nil && adoptScalar(baseConf[recipe.FieldTotalTime], out.TotalMinutes == nil, false) {
		out.TotalMinutes = clone(patch.TotalMinutes)
	}

	if out.PrepMinutes == nil {
		out.PrepMinutes = clone(patch.PrepMinutes)
	}

	if out.CookMinutes == nil {
		out.CookMinutes = clone(patch.CookMinutes)
	}

	return out
}

// adoptScalar decides whether a patch scalar replaces the base value.
func adoptScalar(conf float64, baseAbsent, plausiblyBetter bool) bool {
	if baseAbsent || conf < lowConfidence {
		return true
	}

	if conf >= highConfidence {
		return false
	}

	return plausiblyBetter
}

func patchList(base, patch []string, conf float64) []string {
	if len(patch) == 0 {
		return base
	}

	adopt := false

	switch {
	case len(base) == 0 || conf < lowConfidence:
		adopt = true
	case conf >= highConfidence:
		adopt = float64(len(patch)) > float64(len(base))*listGrowthFactor
	default:
		adopt = len(patch) > len(base)
	}

	if adopt {
		return append([]string(nil), patch...)
	}

	return base
}

func clone(p *int) *int {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
