package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/longevityfoodlab/recipe-parser/internal/fetch"
	"github.com/longevityfoodlab/recipe-parser/internal/llm"
	"github.com/longevityfoodlab/recipe-parser/internal/observability"
	"github.com/longevityfoodlab/recipe-parser/internal/pipeline"
	"github.com/longevityfoodlab/recipe-parser/internal/platform/config"
	"github.com/longevityfoodlab/recipe-parser/internal/server"
	"github.com/longevityfoodlab/recipe-parser/internal/spoonacular"
	"github.com/longevityfoodlab/recipe-parser/internal/video"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setLogLevel(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	fetcher := fetch.NewWebFetcher(cfg.WebFetchRPS, cfg.WebFetchTimeout)
	llmClient := llm.NewOpenAI(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMRPS, &logger)
	spoonClient := spoonacular.NewClient(cfg.SpoonacularAPIKey, cfg.SpoonacularBaseURL)

	videoExtractor := video.NewExtractor(
		video.NewOEmbedClient(fetcher),
		video.NewPollingTranscriptClient(cfg.TranscriptServiceURL, cfg.TranscriptBudget),
		llmClient,
		&logger,
	)

	pipe := pipeline.New(fetcher, spoonClient, llmClient, videoExtractor, pipeline.Config{
		MinTriggerScore:  cfg.MinTriggerScore,
		RequestBudget:    cfg.RequestBudget,
		SpoonTierEnabled: cfg.SpoonTierEnabled,
		AITierEnabled:    cfg.AITierEnabled,
	}, &logger)

	healthServer := observability.NewServer(cfg.HealthPort, &logger)

	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Health server error")
		}
	}()

	apiServer := server.New(pipe, cfg.Port, cfg.BuildID, cfg.CORSAllowOrigin, &logger)

	if err := apiServer.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("API server error")
	}

	logger.Info().Msg("Server stopped")
}

// setLogLevel picks the global log level from the environment name: local
// runs verbose, everything else stays at info.
func setLogLevel(appEnv string) {
	if appEnv == "local" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)

		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
