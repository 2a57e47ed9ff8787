package recipe

// Tier names recorded in Metadata.TierUsed and used to seed field confidence.
// Video tiers are composed as "<platform>_<suffix>", e.g. youtube_deterministic.
const (
	TierStructured    = "structured_data"
	TierDeterministic = "deterministic"
	TierSpoonacular   = "spoonacular"
	TierAIFallback    = "ai_fallback"

	VideoTierMetadata       = "metadata"
	VideoTierDeterministic  = "deterministic"
	VideoTierAIDescription  = "ai_description"
	VideoTierAITranscript   = "ai_transcript"
	VideoTierTitleSynthesis = "ai_title_synthesis"
	VideoTierHybrid         = "hybrid"
	VideoTierBestEffort     = "best_effort"
)

// Extractor path names recorded in Metadata for the deterministic web tier,
// so callers can observe whether the site-specific or generic parser ran.
const (
	ExtractorSiteSpecific = "site_specific"
	ExtractorGeneric      = "generic"
)
