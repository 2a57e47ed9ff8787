package video

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

type mockMetadata struct {
	meta  *Metadata
	err   error
	calls int32
}

func (m *mockMetadata) Fetch(_ context.Context, _ string) (*Metadata, error) {
	atomic.AddInt32(&m.calls, 1)

	return m.meta, m.err
}

type mockTranscripts struct {
	transcript string
	err        error
	calls      int32
}

func (m *mockTranscripts) Fetch(_ context.Context, _ string) (string, error) {
	atomic.AddInt32(&m.calls, 1)

	return m.transcript, m.err
}

type mockLLM struct {
	extractText *recipe.Record

	// extractSecond, when set, is served from the second extraction call on,
	// so the description and transcript passes can yield different partials.
	extractSecond *recipe.Record
	extractErr    error
	synthesized   *recipe.Record
	synthErr      error
	instructions  []string
	instrErr      error

	extractCalls int32
	synthCalls   int32
	instrCalls   int32
}

func (m *mockLLM) ExtractRecipe(_ context.Context, _, _ string, _ *recipe.Record, _ []string) (*recipe.Record, error) {
	return nil, errors.New("not used in video tests")
}

func (m *mockLLM) ExtractFromText(_ context.Context, _, _ string) (*recipe.Record, error) {
	call := atomic.AddInt32(&m.extractCalls, 1)

	if m.extractErr != nil {
		return nil, m.extractErr
	}

	if call > 1 && m.extractSecond != nil {
		return m.extractSecond.Clone(), nil
	}

	return m.extractText.Clone(), nil
}

func (m *mockLLM) SynthesizeFromTitle(_ context.Context, _ string) (*recipe.Record, error) {
	atomic.AddInt32(&m.synthCalls, 1)

	if m.synthErr != nil {
		return nil, m.synthErr
	}

	return m.synthesized.Clone(), nil
}

func (m *mockLLM) SynthesizeInstructions(_ context.Context, _ string, _ []string) ([]string, error) {
	atomic.AddInt32(&m.instrCalls, 1)

	return m.instructions, m.instrErr
}

const richDescription = `The coziest soup on my channel!

INGREDIENTS:
2 tbsp olive oil
1 onion, diced
4 cups vegetable stock
#soup #cozy
https://example.com/merch

METHOD:
Sweat the onion in the oil until translucent.
Add the stock and simmer for twenty minutes.
Blend until smooth and season to taste.`

func TestClassify(t *testing.T) {
	tests := []struct {
		url      string
		platform Platform
		ok       bool
	}{
		{"https://www.youtube.com/watch?v=abc123", PlatformYouTube, true},
		{"https://youtu.be/abc123", PlatformYouTube, true},
		{"https://m.youtube.com/watch?v=abc123", PlatformYouTube, true},
		{"https://www.tiktok.com/@cook/video/123", PlatformTikTok, true},
		{"https://vm.tiktok.com/ZM123/", PlatformTikTok, true},
		{"https://example.com/recipes/soup", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			platform, ok := Classify(tc.url)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.platform, platform)
		})
	}
}

func TestParseDescription(t *testing.T) {
	ingredients, instructions := ParseDescription(richDescription)

	assert.Equal(t, []string{"2 tbsp olive oil", "1 onion, diced", "4 cups vegetable stock"}, ingredients)
	assert.Len(t, instructions, 3)
	assert.Equal(t, "Sweat the onion in the oil until translucent.", instructions[0])
}

func TestParseDescription_NoHeaders(t *testing.T) {
	ingredients, instructions := ParseDescription("Check out my new video! Link below.\nhttps://example.com")

	assert.Empty(t, ingredients)
	assert.Empty(t, instructions)
}

func TestExtract_DeterministicDescription(t *testing.T) {
	meta := &mockMetadata{meta: &Metadata{
		Title:       "Cozy Vegetable Soup #soup",
		Description: richDescription,
		Thumbnail:   "https://i.ytimg.com/vi/abc/hq.jpg",
	}}
	llmMock := &mockLLM{}
	e := NewExtractor(meta, &mockTranscripts{err: ErrTranscriptUnavailable}, llmMock, nil)

	rec, err := e.Extract(context.Background(), "https://youtu.be/abc123", PlatformYouTube)
	require.NoError(t, err)

	assert.Equal(t, "youtube_deterministic", rec.Metadata.TierUsed)
	assert.Equal(t, "Cozy Vegetable Soup", rec.Title)
	assert.Equal(t, "https://i.ytimg.com/vi/abc/hq.jpg", rec.Image)
	assert.Len(t, rec.Ingredients, 3)
	assert.Len(t, rec.Instructions, 3)
	assert.True(t, rec.Metadata.FullRecipe)
	assert.False(t, rec.Metadata.AIEnhanced)
	assert.Zero(t, atomic.LoadInt32(&llmMock.extractCalls), "deterministic success must not spend model calls")
}

func TestExtract_MetadataFailureIsFatal(t *testing.T) {
	meta := &mockMetadata{err: ErrMetadataUnavailable}
	e := NewExtractor(meta, &mockTranscripts{}, &mockLLM{}, nil)

	_, err := e.Extract(context.Background(), "https://youtu.be/abc123", PlatformYouTube)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, PlatformYouTube, extractionErr.Platform)
	require.Len(t, extractionErr.Failures, 1)
	assert.Equal(t, "youtube_metadata", extractionErr.Failures[0].Tier)
}

func TestExtract_GenerativeDescriptionFallback(t *testing.T) {
	// One ingredient and one instruction: below the strict gate, inside the
	// relaxed one.
	thin := "INGREDIENTS:\n2 cups flour\nINSTRUCTIONS:\nMix everything and bake until golden."

	meta := &mockMetadata{meta: &Metadata{Title: "Rustic Bread", Description: thin}}
	llmMock := &mockLLM{extractText: &recipe.Record{
		Title:        "Rustic Bread",
		Ingredients:  []string{"2 cups flour", "1 tsp salt", "1 cup water"},
		Instructions: []string{"Mix the dough.", "Rest for an hour.", "Bake until golden."},
	}}
	e := NewExtractor(meta, &mockTranscripts{err: ErrTranscriptUnavailable}, llmMock, nil)

	rec, err := e.Extract(context.Background(), "https://youtu.be/bread", PlatformYouTube)
	require.NoError(t, err)

	assert.Equal(t, "youtube_ai_description", rec.Metadata.TierUsed)
	assert.True(t, rec.Metadata.AIEnhanced)
	assert.Len(t, rec.Ingredients, 3)
}

func TestExtract_HybridMerge(t *testing.T) {
	thin := "INGREDIENTS:\n2 cups flour\nINSTRUCTIONS:\nMix and bake until done."

	// Each generative pass alone is below the relaxed gate; only their union
	// makes a minimal viable recipe.
	meta := &mockMetadata{meta: &Metadata{Title: "Rustic Bread", Description: thin}}
	llmMock := &mockLLM{
		extractText:   &recipe.Record{Ingredients: []string{"2 cups flour"}},
		extractSecond: &recipe.Record{Instructions: []string{"Mix the dough and bake until done."}},
	}
	e := NewExtractor(meta, &mockTranscripts{transcript: "so first we mix the flour and salt together..."}, llmMock, nil)

	rec, err := e.Extract(context.Background(), "https://youtu.be/bread", PlatformYouTube)
	require.NoError(t, err)

	assert.Equal(t, "youtube_hybrid", rec.Metadata.TierUsed)
	assert.Equal(t, "Rustic Bread", rec.Title, "title backfilled from metadata")
	assert.Equal(t, []string{"2 cups flour"}, rec.Ingredients)
	assert.Equal(t, []string{"Mix the dough and bake until done."}, rec.Instructions)
	assert.Equal(t, int32(2), atomic.LoadInt32(&llmMock.extractCalls), "description and transcript each get one pass")
}

func TestExtract_InstructionSynthesisSideBranch(t *testing.T) {
	thin := "INGREDIENTS:\n2 cups flour\n1 tsp salt\n1 cup water"

	meta := &mockMetadata{meta: &Metadata{Title: "Rustic Bread", Description: thin}}
	llmMock := &mockLLM{
		extractText: &recipe.Record{
			Ingredients: []string{"2 cups flour", "1 tsp salt", "1 cup water"},
		},
		instructions: []string{"Mix the dough.", "Rest for an hour.", "Bake until golden."},
	}
	e := NewExtractor(meta, &mockTranscripts{err: ErrTranscriptUnavailable}, llmMock, nil)

	rec, err := e.Extract(context.Background(), "https://youtu.be/bread", PlatformYouTube)
	require.NoError(t, err)

	assert.Len(t, rec.Instructions, 3)
	assert.True(t, rec.Metadata.AIEnhanced)
	assert.Equal(t, int32(1), atomic.LoadInt32(&llmMock.instrCalls))
}

func TestExtract_BestEffortFallback(t *testing.T) {
	meta := &mockMetadata{meta: &Metadata{Title: "Grandma's Apple Pie #baking"}}
	llmMock := &mockLLM{
		extractErr: errors.New("model unavailable"),
		synthesized: &recipe.Record{
			Title:        "Grandma's Apple Pie",
			Ingredients:  []string{"6 apples", "1 pie crust", "1 cup sugar"},
			Instructions: []string{"Peel and slice the apples.", "Fill the crust.", "Bake at 375F."},
		},
	}
	e := NewExtractor(meta, &mockTranscripts{err: ErrTranscriptUnavailable}, llmMock, nil)

	rec, err := e.Extract(context.Background(), "https://www.tiktok.com/@g/video/1", PlatformTikTok)
	require.NoError(t, err)

	assert.Equal(t, "tiktok_ai_title_synthesis", rec.Metadata.TierUsed, "nothing to salvage, so a recipe is invented from the title")
	assert.True(t, rec.Metadata.AIEnhanced)
	assert.False(t, rec.Metadata.FullRecipe)
	assert.Equal(t, "tiktok", rec.SiteName)
	assert.Equal(t, int32(1), atomic.LoadInt32(&llmMock.synthCalls))
}

func TestExtract_BestEffortPrefersRichestPartial(t *testing.T) {
	thin := "INGREDIENTS:\n2 cups flour\nINSTRUCTIONS:\nMix everything and bake until done."

	meta := &mockMetadata{meta: &Metadata{Title: "Rustic Bread", Description: thin}}
	llmMock := &mockLLM{
		extractText: &recipe.Record{Ingredients: []string{"2 cups flour"}},
		synthErr:    errors.New("must not be called"),
	}
	e := NewExtractor(meta, &mockTranscripts{err: ErrTranscriptUnavailable}, llmMock, nil)

	rec, err := e.Extract(context.Background(), "https://youtu.be/bread", PlatformYouTube)
	require.NoError(t, err)

	// The deterministic parse left the largest partial behind; best effort
	// ships it instead of inventing a recipe from the title.
	assert.Equal(t, "youtube_best_effort", rec.Metadata.TierUsed)
	assert.False(t, rec.Metadata.FullRecipe)
	assert.Equal(t, []string{"2 cups flour"}, rec.Ingredients)
	assert.Equal(t, []string{"Mix everything and bake until done."}, rec.Instructions)
	assert.Zero(t, atomic.LoadInt32(&llmMock.synthCalls))
}

func TestExtract_FatalErrorEnumeratesTiers(t *testing.T) {
	meta := &mockMetadata{meta: &Metadata{Title: ""}}
	llmMock := &mockLLM{extractErr: errors.New("model unavailable"), synthErr: errors.New("model unavailable")}
	e := NewExtractor(meta, &mockTranscripts{err: ErrTranscriptUnavailable}, llmMock, nil)

	_, err := e.Extract(context.Background(), "https://youtu.be/dead", PlatformYouTube)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)

	tiers := make([]string, 0, len(extractionErr.Failures))
	for _, f := range extractionErr.Failures {
		tiers = append(tiers, f.Tier)
	}

	assert.Contains(t, tiers, "youtube_deterministic")
	assert.Contains(t, tiers, "youtube_ai_description")
	assert.Contains(t, tiers, "youtube_ai_transcript")
	assert.Contains(t, tiers, "youtube_best_effort")
	assert.Contains(t, err.Error(), "youtube_ai_transcript", "the message names every dead end")
}

func TestApplyScoreCap(t *testing.T) {
	rec := &recipe.Record{QualityScore: 0.95}

	rec.Metadata.TierUsed = "youtube_hybrid"
	ApplyScoreCap(rec)
	assert.InDelta(t, 0.75, rec.QualityScore, 1e-9)

	rec.QualityScore = 0.95
	rec.Metadata.TierUsed = "tiktok_best_effort"
	ApplyScoreCap(rec)
	assert.InDelta(t, 0.30, rec.QualityScore, 1e-9)

	rec.QualityScore = 0.95
	rec.Metadata.TierUsed = "tiktok_ai_title_synthesis"
	ApplyScoreCap(rec)
	assert.InDelta(t, 0.30, rec.QualityScore, 1e-9, "an invented recipe never claims above the floor")

	rec.QualityScore = 0.95
	rec.Metadata.TierUsed = "youtube_deterministic"
	ApplyScoreCap(rec)
	assert.InDelta(t, 0.95, rec.QualityScore, 1e-9, "deterministic results are not capped")
}

func TestNewPollingTranscriptClient_Budget(t *testing.T) {
	assert.Equal(t, 60*time.Second, NewPollingTranscriptClient("http://sidecar", 0).budget, "a non-positive budget falls back to the default")
	assert.Equal(t, 25*time.Second, NewPollingTranscriptClient("http://sidecar", 25*time.Second).budget)
}

func TestCleanVideoTitle(t *testing.T) {
	assert.Equal(t, "Cozy Vegetable Soup", cleanVideoTitle("Cozy Vegetable Soup #soup #cozy"))
	assert.Equal(t, "Best Ramen Ever", cleanVideoTitle("Best Ramen Ever | Chef Mike"))
	assert.Equal(t, "Apple Pie", cleanVideoTitle("Apple Pie (Recipe)"))
}
