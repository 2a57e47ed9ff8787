package finalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

const pageURL = "https://example.com/recipes/lemon-garlic-chicken"

func workingRecord() *recipe.Record {
	return &recipe.Record{
		Title:        "Lemon Garlic Chicken",
		Ingredients:  []string{"1 lb chicken thighs", "3 cloves garlic", "1 lemon"},
		Instructions: []string{"Season the chicken generously.", "Sear until deeply browned.", "Braise with garlic and lemon."},
		Image:        "https://example.com/chicken.jpg",
	}
}

func TestFinalize_ServingsRangeCoercion(t *testing.T) {
	tests := []struct {
		in   int
		want *int
	}{
		{1, nil}, // parse-failure sentinel
		{6, intp(6)},
		{75, nil},
	}

	for _, tc := range tests {
		rec := workingRecord()
		rec.Servings = recipe.IntPtr(tc.in)

		out, err := Finalize(rec, pageURL)
		require.NoError(t, err)

		if tc.want == nil {
			assert.Nil(t, out.Servings, "servings %d must coerce to null", tc.in)
		} else {
			require.NotNil(t, out.Servings)
			assert.Equal(t, *tc.want, *out.Servings)
		}
	}
}

func intp(n int) *int { return &n }

func TestFinalize_TimeRangeCoercion(t *testing.T) {
	rec := workingRecord()
	rec.PrepMinutes = recipe.IntPtr(0)
	rec.CookMinutes = recipe.IntPtr(45)
	rec.TotalMinutes = recipe.IntPtr(900)

	out, err := Finalize(rec, pageURL)
	require.NoError(t, err)

	assert.Nil(t, out.PrepMinutes)
	require.NotNil(t, out.CookMinutes)
	assert.Equal(t, 45, *out.CookMinutes)
	assert.Nil(t, out.TotalMinutes, "out-of-range values are dropped, never clamped")
}

func TestFinalize_TitleFallsBackToSlug(t *testing.T) {
	rec := workingRecord()
	rec.Title = "Just a moment..."

	out, err := Finalize(rec, pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Lemon Garlic Chicken", out.Title)
	assert.True(t, out.Metadata.BotWallDetected)
	assert.LessOrEqual(t, out.QualityScore, 0.40, "the bot wall ceiling survives title sanitization")
}

func TestFinalize_WatermarkStrippedAndDeduped(t *testing.T) {
	rec := workingRecord()
	rec.Instructions = []string{
		"Season the chicken generously.",
		"1. Season the chicken generously.",
		"Serve warm. Recipe courtesy of Example Kitchen.",
	}

	out, err := Finalize(rec, pageURL)
	require.NoError(t, err)

	assert.Equal(t, []string{"Season the chicken generously.", "Serve warm."}, out.Instructions)
}

func TestFinalize_InvalidNutritionDropped(t *testing.T) {
	rec := workingRecord()
	rec.Nutrition = map[string]string{"fat": "18 g"}
	rec.NutritionSource = recipe.TierStructured

	out, err := Finalize(rec, pageURL)
	require.NoError(t, err)

	assert.Nil(t, out.Nutrition, "a nutrition block without calories is dropped")
	assert.Empty(t, out.NutritionSource)
}

func TestFinalize_BadNutritionEntryDroppedAlone(t *testing.T) {
	rec := workingRecord()
	rec.Nutrition = map[string]string{"calories": "420", "fat": "lots"}
	rec.NutritionSource = recipe.TierStructured

	out, err := Finalize(rec, pageURL)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"calories": "420"}, out.Nutrition)
	assert.Equal(t, recipe.TierStructured, out.NutritionSource)
}

func TestFinalize_RejectsEmptyContent(t *testing.T) {
	rec := &recipe.Record{
		Title:        "Lemon Garlic Chicken",
		Ingredients:  []string{"1 lemon"},
		Instructions: []string{"Cook it."},
	}

	_, err := Finalize(rec, pageURL)
	assert.ErrorIs(t, err, ErrNoRecipeContent)
}

func TestFinalize_SiteFieldsFilled(t *testing.T) {
	out, err := Finalize(workingRecord(), pageURL)
	require.NoError(t, err)

	assert.Equal(t, pageURL, out.SiteLink)
	assert.Equal(t, pageURL, out.SourceURL)
	assert.Equal(t, "example.com", out.SiteName)
}

func TestFinalize_ScoreRecomputed(t *testing.T) {
	rec := workingRecord()
	rec.QualityScore = 0.99
	rec.Servings = recipe.IntPtr(4)
	rec.PrepMinutes = recipe.IntPtr(20)

	out, err := Finalize(rec, pageURL)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, out.QualityScore, 1e-9)

	rec.Image = ""
	out, err = Finalize(rec, pageURL)
	require.NoError(t, err)

	assert.Less(t, out.QualityScore, 1.0, "missing image is penalized at clamp time")
}

func TestFinalize_DoesNotMutateInput(t *testing.T) {
	rec := workingRecord()
	rec.Servings = recipe.IntPtr(75)

	_, err := Finalize(rec, pageURL)
	require.NoError(t, err)

	require.NotNil(t, rec.Servings)
	assert.Equal(t, 75, *rec.Servings)
}
