// Package pipeline orchestrates the tiered extraction for web pages and
// dispatches video URLs to the video cascade. Tiers run in strict priority
// order; each later tier is more expensive, so the acceptance gate stops the
// cascade as early as the data allows.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/longevityfoodlab/recipe-parser/internal/cascade"
	"github.com/longevityfoodlab/recipe-parser/internal/extract"
	"github.com/longevityfoodlab/recipe-parser/internal/fetch"
	"github.com/longevityfoodlab/recipe-parser/internal/finalize"
	"github.com/longevityfoodlab/recipe-parser/internal/llm"
	"github.com/longevityfoodlab/recipe-parser/internal/merge"
	"github.com/longevityfoodlab/recipe-parser/internal/observability"
	"github.com/longevityfoodlab/recipe-parser/internal/quality"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
	"github.com/longevityfoodlab/recipe-parser/internal/spoonacular"
	"github.com/longevityfoodlab/recipe-parser/internal/video"
)

// ErrNoURL indicates a request without a URL; it never enters the tiers.
var ErrNoURL = errors.New("no url provided")

// ErrNoRecipeContent indicates every tier was exhausted without producing a
// shippable record.
var ErrNoRecipeContent = finalize.ErrNoRecipeContent

// Input is one parse request.
type Input struct {
	URL        string
	HTML       string
	HTMLSource string
}

// Caller-supplied HTML provenance values. Print and jump-to-recipe snippets
// are partial by construction, so they only avoid a fetch when substantial.
const (
	SourceMain         = "main"
	SourcePrint        = "print"
	SourceJumpToRecipe = "jump-to-recipe"
)

// ValidHTMLSource reports whether a request's html_source value is one the
// pipeline understands. The empty string defaults to main.
func ValidHTMLSource(source string) bool {
	switch source {
	case "", SourceMain, SourcePrint, SourceJumpToRecipe:
		return true
	}

	return false
}

// Config is the passive per-process configuration read at request start.
type Config struct {
	// MinTriggerScore is the acceptance-gate threshold; below it the next
	// tier runs.
	MinTriggerScore float64

	// RequestBudget bounds one request end to end; zero means no budget.
	RequestBudget time.Duration

	// SpoonTierEnabled and AITierEnabled switch the external-API and
	// generative tiers on. A disabled tier is skipped, never consulted.
	SpoonTierEnabled bool
	AITierEnabled    bool
}

// VideoExtractor is the video cascade as the web pipeline sees it.
type VideoExtractor interface {
	Extract(ctx context.Context, videoURL string, platform video.Platform) (*recipe.Record, error)
}

type Pipeline struct {
	fetcher fetch.Fetcher
	spoon   spoonacular.Extractor
	llm     llm.Client
	video   VideoExtractor
	cfg     Config
	logger  *zerolog.Logger
}

func New(fetcher fetch.Fetcher, spoon spoonacular.Extractor, llmClient llm.Client, videoExtractor VideoExtractor, cfg Config, logger *zerolog.Logger) *Pipeline {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	if cfg.MinTriggerScore <= 0 {
		cfg.MinTriggerScore = DefaultMinTriggerScore
	}

	return &Pipeline{
		fetcher: fetcher,
		spoon:   spoon,
		llm:     llmClient,
		video:   videoExtractor,
		cfg:     cfg,
		logger:  logger,
	}
}

// Parse runs one request through the appropriate cascade and finalizes the
// winning record.
func (p *Pipeline) Parse(ctx context.Context, input Input) (*recipe.Record, error) {
	if input.URL == "" {
		return nil, ErrNoURL
	}

	if p.cfg.RequestBudget > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestBudget)
		defer cancel()
	}

	started := time.Now()

	var (
		rec *recipe.Record
		err error
	)

	if platform, ok := video.Classify(input.URL); ok {
		rec, err = p.parseVideo(ctx, input.URL, platform)
	} else {
		rec, err = p.parseWeb(ctx, input)
	}

	observability.ObserveParse(tierOf(rec), outcomeOf(err), time.Since(started))

	if err == nil {
		observability.QualityScore.Observe(rec.QualityScore)
	}

	return rec, err
}

func (p *Pipeline) parseVideo(ctx context.Context, videoURL string, platform video.Platform) (*recipe.Record, error) {
	rec, err := p.video.Extract(ctx, videoURL, platform)
	if err != nil {
		return nil, err
	}

	fin, err := finalize.Finalize(rec, videoURL)
	if err != nil {
		return nil, err
	}

	video.ApplyScoreCap(fin)

	return fin, nil
}

// webState is the shared state the web tiers accumulate: the parsed page and
// the best partial so far, which later tiers merge into.
type webState struct {
	url      string
	html     string
	doc      *goquery.Document
	best     *recipe.Record
	bestTier string
}

func (p *Pipeline) parseWeb(ctx context.Context, input Input) (*recipe.Record, error) {
	// A URL-only request gives the external API first shot: it fetches the
	// page itself, so a good answer here saves the whole fetch-and-parse leg.
	if input.HTML == "" && p.cfg.SpoonTierEnabled {
		if rec := p.earlySpoonacular(ctx, input.URL); rec != nil {
			return finalize.Finalize(rec, input.URL)
		}
	}

	html, fetchErr := p.pageHTML(ctx, input)
	if fetchErr != nil {
		// Recovery edge: the external API is retried once on a fetch failure
		// before the request is failed outright.
		if !p.cfg.SpoonTierEnabled {
			return nil, fmt.Errorf("%w: fetch failed (%v)", ErrNoRecipeContent, fetchErr)
		}

		return p.spoonacularOnly(ctx, input.URL, fetchErr)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	state := &webState{url: input.URL, html: html, doc: doc}

	engine := cascade.New(p.webTiers(state), p.logger)

	rec, failures := engine.Execute(ctx)
	if rec == nil {
		// No tier was accepted, but the best partial still beats nothing.
		rec = state.best
	}

	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRecipeContent, summarize(failures))
	}

	return finalize.Finalize(rec, input.URL)
}

func (p *Pipeline) webTiers(state *webState) []cascade.Tier {
	tiers := []cascade.Tier{
		{
			Name: recipe.TierStructured,
			Run:  func(_ context.Context) (*recipe.Record, error) { return p.structuredTier(state), nil },
			Accept: func(rec *recipe.Record) (bool, string) {
				if extract.IsComplete(rec) {
					return true, ""
				}

				return gatePasses(rec, state.bestTier, p.cfg.MinTriggerScore)
			},
		},
		{
			Name:   recipe.TierDeterministic,
			Run:    func(_ context.Context) (*recipe.Record, error) { return p.deterministicTier(state), nil },
			Accept: func(rec *recipe.Record) (bool, string) { return gatePasses(rec, state.bestTier, p.cfg.MinTriggerScore) },
		},
	}

	if p.cfg.SpoonTierEnabled {
		tiers = append(tiers, cascade.Tier{
			Name:   recipe.TierSpoonacular,
			Run:    func(ctx context.Context) (*recipe.Record, error) { return p.spoonacularTier(ctx, state) },
			Accept: func(rec *recipe.Record) (bool, string) { return gatePasses(rec, state.bestTier, p.cfg.MinTriggerScore) },
		})
	}

	if p.cfg.AITierEnabled {
		tiers = append(tiers, cascade.Tier{
			// The generative patch is terminal: whatever it leaves behind is
			// the answer, subject only to finalization.
			Name: recipe.TierAIFallback,
			Run:  func(ctx context.Context) (*recipe.Record, error) { return p.generativePatchTier(ctx, state) },
		})
	}

	return tiers
}

// earlySpoonacular runs the external API before any fetch on URL-only
// requests. The result is kept only when it passes the acceptance gate; a
// weak or failed answer falls through to the normal cascade.
func (p *Pipeline) earlySpoonacular(ctx context.Context, pageURL string) *recipe.Record {
	rec, err := p.spoon.Extract(ctx, pageURL)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", pageURL).Msg("early external API attempt failed")

		return nil
	}

	rec.Metadata.TierUsed = recipe.TierSpoonacular

	if ok, reason := gatePasses(rec, recipe.TierSpoonacular, p.cfg.MinTriggerScore); !ok {
		p.logger.Debug().Str("url", pageURL).Str("reason", reason).Msg("early external API result rejected")

		return nil
	}

	return rec
}

func (p *Pipeline) structuredTier(state *webState) *recipe.Record {
	rec, ok := extract.Structured(state.doc)
	if !ok {
		return nil
	}

	extract.FillCommonFields(rec, state.doc, state.url)
	rec.Metadata.TierUsed = recipe.TierStructured
	markBotWall(rec)
	state.absorb(rec)

	return state.best
}

func (p *Pipeline) deterministicTier(state *webState) *recipe.Record {
	rec, ok := extract.SiteSpecific(state.doc, state.url)
	if !ok {
		rec, ok = extract.Generic(state.doc, state.url)
	}

	if !ok {
		return nil
	}

	extract.FillCommonFields(rec, state.doc, state.url)
	rec.Metadata.TierUsed = recipe.TierDeterministic
	markBotWall(rec)
	state.absorb(rec)

	return state.best
}

func (p *Pipeline) spoonacularTier(ctx context.Context, state *webState) (*recipe.Record, error) {
	rec, err := p.spoon.Extract(ctx, state.url)
	if err != nil {
		return nil, err
	}

	rec.Metadata.TierUsed = recipe.TierSpoonacular
	state.absorb(rec)

	return state.best, nil
}

func (p *Pipeline) generativePatchTier(ctx context.Context, state *webState) (*recipe.Record, error) {
	patch, err := p.llm.ExtractRecipe(ctx, readableContent(state.html, state.url), state.url, state.best, weakFields(state.best, state.bestTier))
	if err != nil {
		if state.best == nil {
			return nil, err
		}

		// Ship the best deterministic partial with the failure recorded.
		state.best.Metadata.AIError = err.Error()

		return state.best, nil
	}

	out := merge.PatchOnly(state.best, patch, quality.FieldConfidence(state.best, state.bestTier))
	out.Metadata.TierUsed = recipe.TierAIFallback
	out.Metadata.AIEnhanced = true

	return out, nil
}

// spoonacularOnly is the fetch-failure recovery path: no page, so the
// external API is the only tier that can still run.
func (p *Pipeline) spoonacularOnly(ctx context.Context, pageURL string, fetchErr error) (*recipe.Record, error) {
	p.logger.Warn().Err(fetchErr).Str("url", pageURL).Msg("page fetch failed, trying external API directly")

	rec, err := p.spoon.Extract(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch failed (%v), external API failed (%v)", ErrNoRecipeContent, fetchErr, err)
	}

	rec.Metadata.TierUsed = recipe.TierSpoonacular

	return finalize.Finalize(rec, pageURL)
}

// pageHTML decides between the caller-supplied snippet and a fresh fetch. A
// thin snippet triggers a fetch, but survives as the fallback when the fetch
// fails.
func (p *Pipeline) pageHTML(ctx context.Context, input Input) (string, error) {
	if input.HTML != "" {
		p.logger.Debug().
			Str("url", input.URL).
			Str("html_source", htmlSource(input.HTMLSource)).
			Int("snippet_bytes", len(input.HTML)).
			Msg("caller-supplied html")

		if !fetch.NeedsFullFetch(input.HTML) {
			return input.HTML, nil
		}
	}

	body, err := p.fetcher.Fetch(ctx, input.URL)
	if err != nil {
		if input.HTML != "" {
			return input.HTML, nil
		}

		return "", err
	}

	return string(body), nil
}

// absorb merges a tier's record into the running best partial. The newest
// contributor's metadata wins because acceptance is judged on the merged
// record it produced.
func (s *webState) absorb(rec *recipe.Record) {
	if s.best == nil {
		s.best = rec
	} else {
		meta := rec.Metadata
		s.best = merge.Additive(s.best, rec)
		s.best.Metadata = meta
	}

	s.bestTier = s.best.Metadata.TierUsed
	if s.bestTier == recipe.TierDeterministic && s.best.Metadata.Extractor != "" {
		s.bestTier = s.best.Metadata.Extractor
	}
}

// readableContent runs reader-mode extraction over the page so the model
// prompt carries article text instead of markup and chrome. Raw HTML is the
// fallback when extraction finds nothing.
func readableContent(html, pageURL string) string {
	u, _ := url.Parse(pageURL)

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return html
	}

	return article.TextContent
}

// weakFieldConfidence is the per-field confidence below which the generative
// patch is told to focus on a field.
const weakFieldConfidence = 0.60

// weakFields names the fields of the best partial the patch prompt should
// concentrate on: everything missing or held with low confidence.
func weakFields(best *recipe.Record, tier string) []string {
	if best == nil {
		return nil
	}

	conf := quality.FieldConfidence(best, tier)

	var weak []string

	for _, field := range recipe.Fields {
		if conf[field] < weakFieldConfidence {
			weak = append(weak, string(field))
		}
	}

	return weak
}

func markBotWall(rec *recipe.Record) {
	if quality.IsBotWallTitle(rec.Title) {
		rec.Metadata.BotWallDetected = true
	}
}

func htmlSource(source string) string {
	if source == "" {
		return SourceMain
	}

	return source
}

func summarize(failures []cascade.Failure) string {
	if len(failures) == 0 {
		return "no tiers ran"
	}

	out := failures[0].Tier + ": " + failures[0].Reason
	for _, f := range failures[1:] {
		out += "; " + f.Tier + ": " + f.Reason
	}

	return out
}

func tierOf(rec *recipe.Record) string {
	if rec == nil {
		return "none"
	}

	return rec.Metadata.TierUsed
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}

	return "success"
}
