package video

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/longevityfoodlab/recipe-parser/internal/cascade"
	"github.com/longevityfoodlab/recipe-parser/internal/llm"
	"github.com/longevityfoodlab/recipe-parser/internal/merge"
	"github.com/longevityfoodlab/recipe-parser/internal/quality"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// ExtractionError is the fatal outcome of the video cascade: every tier
// failed, and the error enumerates each failure.
type ExtractionError struct {
	Platform Platform
	Failures []cascade.Failure
}

func (e *ExtractionError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Tier+": "+f.Reason)
	}

	return fmt.Sprintf("%s extraction failed (%s)", e.Platform, strings.Join(parts, "; "))
}

// Content gates per tier. The deterministic tier demands both lists; the
// generative description tier runs on weaker signals.
const (
	strictMinItems  = 2
	relaxedMinItems = 1

	// hybridScoreCap and bestEffortScoreCap bound how good a merged or
	// invented video recipe can ever claim to be.
	hybridScoreCap     = 0.75
	aiTierScoreCap     = 0.60
	bestEffortScoreCap = 0.30
)

// Extractor runs the tiered video recipe extraction.
type Extractor struct {
	metadata    MetadataClient
	transcripts TranscriptClient
	llm         llm.Client
	logger      *zerolog.Logger
}

func NewExtractor(metadata MetadataClient, transcripts TranscriptClient, llmClient llm.Client, logger *zerolog.Logger) *Extractor {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	return &Extractor{
		metadata:    metadata,
		transcripts: transcripts,
		llm:         llmClient,
		logger:      logger,
	}
}

// videoState is the shared state the cascade tiers accumulate: the metadata,
// the parsed description lists, and the partial records of the generative
// passes, which the hybrid tier merges.
type videoState struct {
	platform     Platform
	meta         *Metadata
	title        string
	ingredients  []string
	instructions []string
	detRecord    *recipe.Record
	descRecord   *recipe.Record
	transRecord  *recipe.Record
}

// partials lists every partial record earlier tiers left behind, in tier
// order.
func (s *videoState) partials() []*recipe.Record {
	return []*recipe.Record{s.detRecord, s.descRecord, s.transRecord}
}

// Extract walks the video tiers in order and returns the first acceptable
// record. The error case is an *ExtractionError listing every tier's
// failure.
func (e *Extractor) Extract(ctx context.Context, videoURL string, platform Platform) (*recipe.Record, error) {
	meta, err := e.metadata.Fetch(ctx, videoURL)
	if err != nil {
		// No metadata means no title, no description, nothing to work with.
		return nil, &ExtractionError{Platform: platform, Failures: []cascade.Failure{
			{Tier: tierName(platform, recipe.VideoTierMetadata), Reason: err.Error()},
		}}
	}

	state := &videoState{
		platform: platform,
		meta:     meta,
		title:    cleanVideoTitle(meta.Title),
	}
	state.ingredients, state.instructions = ParseDescription(meta.Description)

	engine := cascade.New(e.tiers(state, videoURL), e.logger)

	rec, failures := engine.Execute(ctx)
	if rec == nil {
		return nil, &ExtractionError{Platform: platform, Failures: failures}
	}

	e.fillFromMetadata(rec, state)

	return rec, nil
}

func (e *Extractor) tiers(state *videoState, videoURL string) []cascade.Tier {
	return []cascade.Tier{
		{
			Name:   tierName(state.platform, recipe.VideoTierDeterministic),
			Run:    func(_ context.Context) (*recipe.Record, error) { return e.deterministicDescription(state), nil },
			Accept: strictComplete,
		},
		{
			Name:   tierName(state.platform, recipe.VideoTierAIDescription),
			Run:    func(ctx context.Context) (*recipe.Record, error) { return e.generativeDescription(ctx, state) },
			Accept: relaxedComplete,
		},
		{
			Name:   tierName(state.platform, recipe.VideoTierAITranscript),
			Run:    func(ctx context.Context) (*recipe.Record, error) { return e.generativeTranscript(ctx, state, videoURL) },
			Accept: relaxedComplete,
		},
		{
			Name:   tierName(state.platform, recipe.VideoTierHybrid),
			Run:    func(ctx context.Context) (*recipe.Record, error) { return e.hybridMerge(ctx, state) },
			Accept: relaxedComplete,
		},
		{
			// Terminal: whatever the best-effort pass produces is the answer.
			Name: tierName(state.platform, recipe.VideoTierBestEffort),
			Run:  func(ctx context.Context) (*recipe.Record, error) { return e.bestEffort(ctx, state) },
		},
	}
}

// strictComplete demands both lists; it gates the deterministic tier, whose
// output is trusted on its own.
func strictComplete(rec *recipe.Record) (bool, string) {
	if len(rec.Ingredients) >= strictMinItems && len(rec.Instructions) >= strictMinItems {
		return true, ""
	}

	return false, fmt.Sprintf("incomplete result: %d ingredients, %d instructions", len(rec.Ingredients), len(rec.Instructions))
}

// relaxedComplete gates the generative tiers: one strong list, or one of each
// as a minimal viable recipe.
func relaxedComplete(rec *recipe.Record) (bool, string) {
	if len(rec.Ingredients) >= strictMinItems || len(rec.Instructions) >= strictMinItems {
		return true, ""
	}

	if len(rec.Ingredients) >= relaxedMinItems && len(rec.Instructions) >= relaxedMinItems {
		return true, ""
	}

	return false, fmt.Sprintf("too little content: %d ingredients, %d instructions", len(rec.Ingredients), len(rec.Instructions))
}

func (e *Extractor) deterministicDescription(state *videoState) *recipe.Record {
	if len(state.ingredients) == 0 && len(state.instructions) == 0 {
		return nil
	}

	rec := &recipe.Record{
		Title:        state.title,
		Image:        state.meta.Thumbnail,
		SiteName:     string(state.platform),
		Ingredients:  state.ingredients,
		Instructions: state.instructions,
	}
	rec.Metadata.TierUsed = tierName(state.platform, recipe.VideoTierDeterministic)
	rec.Metadata.FullRecipe = true
	rec.QualityScore = quality.Clamp(rec, quality.Score(rec))
	state.detRecord = rec

	return rec
}

func (e *Extractor) generativeDescription(ctx context.Context, state *videoState) (*recipe.Record, error) {
	if !relaxedGate(state.ingredients, state.instructions) {
		return nil, fmt.Errorf("description too thin for a generative pass")
	}

	rec, err := e.llm.ExtractFromText(ctx, state.meta.Description, state.title)
	if err != nil {
		return nil, err
	}

	if rec.ListCount() == 0 {
		return nil, fmt.Errorf("model extracted nothing from the description")
	}

	// Side branch: extraction found no ingredients at all and too few steps
	// to stand alone, so a full recipe is invented from the title instead.
	if len(rec.Ingredients) == 0 && len(rec.Instructions) < strictMinItems && state.title != "" {
		return e.synthesizeFromTitle(ctx, state)
	}

	e.maybeSynthesizeInstructions(ctx, rec, state)

	rec.Metadata.TierUsed = tierName(state.platform, recipe.VideoTierAIDescription)
	rec.Metadata.AIEnhanced = true
	state.descRecord = rec

	return rec, nil
}

func (e *Extractor) generativeTranscript(ctx context.Context, state *videoState, videoURL string) (*recipe.Record, error) {
	transcript, err := e.transcripts.Fetch(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	rec, err := e.llm.ExtractFromText(ctx, transcript, state.title)
	if err != nil {
		return nil, err
	}

	if rec.ListCount() == 0 {
		return nil, fmt.Errorf("model extracted nothing from the transcript")
	}

	e.maybeSynthesizeInstructions(ctx, rec, state)

	rec.Metadata.TierUsed = tierName(state.platform, recipe.VideoTierAITranscript)
	rec.Metadata.AIEnhanced = true
	state.transRecord = rec

	return rec, nil
}

// hybridMerge combines the partial generative passes (or takes the lone
// survivor), then runs the instruction-synthesis side branch when
// ingredients arrived without directions.
func (e *Extractor) hybridMerge(ctx context.Context, state *videoState) (*recipe.Record, error) {
	var rec *recipe.Record

	switch {
	case state.descRecord != nil && state.transRecord != nil:
		rec = merge.Additive(state.descRecord, state.transRecord)
		rec.Metadata.AIEnhanced = true
	case state.descRecord != nil:
		rec = state.descRecord
	case state.transRecord != nil:
		rec = state.transRecord
	default:
		return nil, nil
	}

	rec.Metadata.TierUsed = tierName(state.platform, recipe.VideoTierHybrid)

	e.maybeSynthesizeInstructions(ctx, rec, state)

	return rec, nil
}

// bestEffort ships the richest partial any earlier tier left behind, filling
// missing instructions by synthesis. A recipe is invented from the title
// alone only when no tier produced anything at all.
func (e *Extractor) bestEffort(ctx context.Context, state *videoState) (*recipe.Record, error) {
	base := richestPartial(state)
	if base == nil {
		if state.title == "" {
			return nil, fmt.Errorf("no partial result and no title to synthesize from")
		}

		return e.synthesizeFromTitle(ctx, state)
	}

	rec := base.Clone()

	e.maybeSynthesizeInstructions(ctx, rec, state)

	rec.Metadata.TierUsed = tierName(state.platform, recipe.VideoTierBestEffort)
	rec.Metadata.AIEnhanced = true
	rec.Metadata.FullRecipe = false

	e.logger.Info().Int("list_count", rec.ListCount()).Msg("best-effort partial used")

	return rec, nil
}

func (e *Extractor) synthesizeFromTitle(ctx context.Context, state *videoState) (*recipe.Record, error) {
	rec, err := e.llm.SynthesizeFromTitle(ctx, state.title)
	if err != nil {
		return nil, err
	}

	rec.Metadata.TierUsed = tierName(state.platform, recipe.VideoTierTitleSynthesis)
	rec.Metadata.AIEnhanced = true
	rec.Metadata.FullRecipe = false

	e.logger.Info().Str("title", state.title).Msg("title synthesis used")

	return rec, nil
}

// maybeSynthesizeInstructions fills in directions when a record carries a
// real ingredient list but too few steps. Failure is logged, never fatal.
func (e *Extractor) maybeSynthesizeInstructions(ctx context.Context, rec *recipe.Record, state *videoState) {
	if len(rec.Ingredients) < strictMinItems || len(rec.Instructions) >= strictMinItems {
		return
	}

	steps, err := e.llm.SynthesizeInstructions(ctx, firstNonEmpty(rec.Title, state.title), rec.Ingredients)
	if err != nil {
		e.logger.Warn().Err(err).Msg("instruction synthesis failed")

		return
	}

	if len(steps) >= strictMinItems {
		rec.Instructions = steps
		rec.Metadata.AIEnhanced = true
	}
}

// richestPartial picks the prior partial with the most combined list entries.
func richestPartial(state *videoState) *recipe.Record {
	var best *recipe.Record

	for _, cand := range state.partials() {
		if cand == nil || cand.ListCount() == 0 {
			continue
		}

		if best == nil || cand.ListCount() > best.ListCount() {
			best = cand
		}
	}

	return best
}

func (e *Extractor) fillFromMetadata(rec *recipe.Record, state *videoState) {
	if !rec.HasTitle() {
		rec.Title = state.title
	}

	if rec.Image == "" {
		rec.Image = state.meta.Thumbnail
	}

	if rec.SiteName == "" {
		rec.SiteName = string(state.platform)
	}
}

// ApplyScoreCap bounds the finalized quality score by the tier that produced
// the record: merged generative results top out at 0.75, single generative
// passes lower, and an invented best-effort recipe never claims above 0.3.
func ApplyScoreCap(rec *recipe.Record) {
	tier := rec.Metadata.TierUsed

	var limit float64

	switch {
	case strings.HasSuffix(tier, recipe.VideoTierHybrid):
		limit = hybridScoreCap
	case strings.HasSuffix(tier, recipe.VideoTierAIDescription), strings.HasSuffix(tier, recipe.VideoTierAITranscript):
		limit = aiTierScoreCap
	case strings.HasSuffix(tier, recipe.VideoTierBestEffort), strings.HasSuffix(tier, recipe.VideoTierTitleSynthesis):
		limit = bestEffortScoreCap
	default:
		return
	}

	if rec.QualityScore > limit {
		rec.QualityScore = limit
	}
}

func relaxedGate(ingredients, instructions []string) bool {
	if len(ingredients) >= strictMinItems || len(instructions) >= strictMinItems {
		return true
	}

	return len(ingredients) >= relaxedMinItems && len(instructions) >= relaxedMinItems
}

var videoTitleNoise = regexp.MustCompile(`(?i)\s*(\||#\w+|\(recipe\)|\[recipe\]|- youtube|on tiktok).*$`)

// cleanVideoTitle strips platform decoration and hashtags off a video title.
func cleanVideoTitle(title string) string {
	title = strings.TrimSpace(videoTitleNoise.ReplaceAllString(title, ""))

	return strings.TrimSpace(strings.Trim(title, "|-~"))
}

// tierName composes the recorded tier, e.g. "youtube_deterministic".
func tierName(platform Platform, suffix string) string {
	return string(platform) + "_" + suffix
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}
