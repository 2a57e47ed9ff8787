package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "html entities",
			in:       "Salt &amp; pepper",
			expected: "Salt & pepper",
		},
		{
			name:     "non-breaking space",
			in:       "2 cups flour",
			expected: "2 cups flour",
		},
		{
			name:     "zero width and bom",
			in:       "\ufeffMix\u200b the dough",
			expected: "Mix the dough",
		},
		{
			name:     "interior newline keeps word boundary",
			in:       "Knead the dough.\nRest it for an hour.",
			expected: "Knead the dough. Rest it for an hour.",
		},
		{
			name:     "unicode dashes and quotes",
			in:       "low–sodium “broth” — don’t boil",
			expected: `low-sodium "broth" - don't boil`,
		},
		{
			name:     "leading list marker digit",
			in:       "1. Preheat oven to 400F",
			expected: "Preheat oven to 400F",
		},
		{
			name:     "leading bullet",
			in:       "• 2 eggs",
			expected: "2 eggs",
		},
		{
			name:     "whitespace collapse",
			in:       "  Knead   dough\t\tfor 10  minutes  ",
			expected: "Knead dough for 10 minutes",
		},
		{
			name:     "empty",
			in:       "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"1. 2) Mix everything together",
		"&amp;amp; nested entities",
		"  •   spaced – bullet ",
		"plain text already clean",
		"3.\tStir in the ​cheese…",
	}

	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", s)
	}
}

func TestDedupeSteps(t *testing.T) {
	steps := []string{
		"1. Mix flour and egg.",
		"Mix flour and egg",        // same step, no ordinal or period
		"2. Knead dough for 10 minutes.",
		"Knead dough for 10 minutes",
		"3. Rest for 30 minutes.",
	}

	out := DedupeSteps(steps)

	require.Len(t, out, 3)
	assert.Equal(t, "1. Mix flour and egg.", out[0])
	assert.Equal(t, "2. Knead dough for 10 minutes.", out[1])
	assert.Equal(t, "3. Rest for 30 minutes.", out[2])
}

func TestDedupeSteps_NearIdentical(t *testing.T) {
	// One character differs; lengths are close, similarity is above 85%.
	steps := []string{
		"Simmer the sauce over low heat for twenty minutes",
		"Simmer the sauce over low heat for thirty minutes",
	}

	out := DedupeSteps(steps)
	assert.Len(t, out, 1)
}

func TestDedupeSteps_SubstringDropped(t *testing.T) {
	steps := []string{
		"Whisk the eggs with the sugar until pale and fluffy",
		"Whisk the eggs",
	}

	out := DedupeSteps(steps)
	require.Len(t, out, 1)
	assert.Equal(t, steps[0], out[0])
}

func TestDedupeSteps_NeverEmpty(t *testing.T) {
	out := DedupeSteps([]string{"", "   ", "\t"})

	require.Len(t, out, 1)
	assert.Equal(t, recipeSentinelStep, out[0])
}

func TestDedupeSteps_LengthGapSkipsSimilarity(t *testing.T) {
	// Shares a long prefix but lengths differ by more than the window, so
	// similarity must not be computed and both steps survive.
	steps := []string{
		"Bake at 350F",
		"Bake at 350F until the top is golden brown and a toothpick comes out clean",
	}

	out := DedupeSteps(steps)
	assert.Len(t, out, 2)
}

func TestAddImplicitQuantity(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "bare unit",
			in:       "cup flour",
			expected: "1 cup flour",
		},
		{
			name:     "bare abbreviation",
			in:       "tbsp olive oil",
			expected: "1 tbsp olive oil",
		},
		{
			name:     "already quantified",
			in:       "2 cups flour",
			expected: "2 cups flour",
		},
		{
			name:     "unicode fraction",
			in:       "½ cup sugar",
			expected: "½ cup sugar",
		},
		{
			name:     "not a unit",
			in:       "salt to taste",
			expected: "salt to taste",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddImplicitQuantity(tt.in))
		})
	}
}

func TestAddImplicitQuantity_Idempotent(t *testing.T) {
	once := AddImplicitQuantity("cup flour")
	assert.Equal(t, once, AddImplicitQuantity(once))
}
