// Package server exposes the extraction pipeline over HTTP. One endpoint,
// POST /parse, accepts a URL with an optional pre-fetched HTML snippet and
// answers with the extracted recipe or a reasoned failure.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/longevityfoodlab/recipe-parser/internal/pipeline"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
	"github.com/longevityfoodlab/recipe-parser/internal/video"
)

const (
	shutdownTimeout = 5 * time.Second

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"

	// maxRequestBytes bounds the request body; clients ship page snippets, so
	// the limit sits well above any real page.
	maxRequestBytes = 10 << 20
)

// Failure reasons surfaced to clients. Extraction dead ends answer with a
// success-shaped body carrying one of these, so callers distinguish "no
// recipe there" from transport errors without parsing HTTP status codes.
const (
	reasonMissingURL       = "missing_url"
	reasonInvalidRequest   = "invalid_request"
	reasonNoRecipeContent  = "no_recipe_content"
	reasonInternalError    = "internal_error"
	extractionFailedSuffix = "_extraction_failed"
)

// Parser is the extraction pipeline as the HTTP layer sees it.
type Parser interface {
	Parse(ctx context.Context, input pipeline.Input) (*recipe.Record, error)
}

type Server struct {
	parser      Parser
	port        int
	buildID     string
	allowOrigin string
	logger      *zerolog.Logger
}

func New(parser Parser, port int, buildID, allowOrigin string, logger *zerolog.Logger) *Server {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	return &Server{
		parser:      parser,
		port:        port,
		buildID:     buildID,
		allowOrigin: allowOrigin,
		logger:      logger,
	}
}

// Start serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Str("build", s.buildID).Msg("API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", s.handleParse)

	return mux
}

type parseRequest struct {
	URL        string `json:"url"`
	HTML       string `json:"html,omitempty"`
	HTMLSource string `json:"html_source,omitempty"`
}

// parseResponse wraps a record with the serving build, so clients can
// attribute extraction differences across deployments.
type parseResponse struct {
	*recipe.Record
	Build string `json:"build"`
}

type failureResponse struct {
	Error        string  `json:"error"`
	QualityScore float64 `json:"quality_score"`
	Reason       string  `json:"reason"`
	Build        string  `json:"build"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	s.setCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)

		return
	}

	requestID := uuid.NewString()
	started := time.Now()

	logger := s.logger.With().Str("request_id", requestID).Logger()

	var req parseRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("malformed parse request")
		s.writeFailure(w, http.StatusBadRequest, reasonInvalidRequest, err.Error())

		return
	}

	if !pipeline.ValidHTMLSource(req.HTMLSource) {
		logger.Warn().Str("html_source", req.HTMLSource).Msg("unknown html_source")
		s.writeFailure(w, http.StatusBadRequest, reasonInvalidRequest, fmt.Sprintf("unknown html_source %q", req.HTMLSource))

		return
	}

	rec, err := s.parser.Parse(r.Context(), pipeline.Input{
		URL:        req.URL,
		HTML:       req.HTML,
		HTMLSource: req.HTMLSource,
	})

	elapsed := time.Since(started)

	if err != nil {
		status, reason := classifyError(err)
		logger.Warn().
			Err(err).
			Str("url", req.URL).
			Str("reason", reason).
			Dur("elapsed", elapsed).
			Msg("parse failed")
		s.writeFailure(w, status, reason, err.Error())

		return
	}

	logger.Info().
		Str("url", req.URL).
		Str("tier", rec.Metadata.TierUsed).
		Float64("quality", rec.QualityScore).
		Dur("elapsed", elapsed).
		Msg("parse succeeded")

	s.writeJSON(w, http.StatusOK, parseResponse{Record: rec, Build: s.buildID})
}

// classifyError maps pipeline errors to an HTTP status and a client-facing
// reason. Extraction dead ends stay 200: the request worked, the page just
// held no recipe.
func classifyError(err error) (int, string) {
	var videoErr *video.ExtractionError

	switch {
	case errors.Is(err, pipeline.ErrNoURL):
		return http.StatusBadRequest, reasonMissingURL
	case errors.As(err, &videoErr):
		return http.StatusOK, string(videoErr.Platform) + extractionFailedSuffix
	case errors.Is(err, pipeline.ErrNoRecipeContent):
		return http.StatusOK, reasonNoRecipeContent
	default:
		return http.StatusInternalServerError, reasonInternalError
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, status int, reason, message string) {
	s.writeJSON(w, status, failureResponse{
		Error:        message,
		QualityScore: 0.0,
		Reason:       reason,
		Build:        s.buildID,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", s.allowOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
