package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longevityfoodlab/recipe-parser/internal/cascade"
	"github.com/longevityfoodlab/recipe-parser/internal/pipeline"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
	"github.com/longevityfoodlab/recipe-parser/internal/video"
)

type stubParser struct {
	rec *recipe.Record
	err error
}

func (s *stubParser) Parse(_ context.Context, input pipeline.Input) (*recipe.Record, error) {
	if input.URL == "" {
		return nil, pipeline.ErrNoURL
	}

	return s.rec, s.err
}

func newTestServer(parser Parser) *Server {
	return New(parser, 0, "test-build", "*", nil)
}

func postParse(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(body))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	return rr
}

func TestHandleParse_Success(t *testing.T) {
	srv := newTestServer(&stubParser{rec: &recipe.Record{
		Title:        "Tomato Soup",
		Ingredients:  []string{"2 lbs tomatoes", "1 onion", "2 cups stock"},
		Instructions: []string{"Roast the vegetables.", "Simmer with stock.", "Blend until smooth."},
		QualityScore: 0.85,
		Metadata:     recipe.Metadata{TierUsed: recipe.TierStructured},
	}})

	rr := postParse(t, srv, `{"url":"https://example.com/recipes/tomato-soup"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "Tomato Soup", resp["title"])
	assert.Equal(t, "test-build", resp["build"])
	assert.InDelta(t, 0.85, resp["quality_score"], 1e-9)
}

func TestHandleParse_MissingURL(t *testing.T) {
	srv := newTestServer(&stubParser{})

	rr := postParse(t, srv, `{}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp failureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "missing_url", resp.Reason)
	assert.Zero(t, resp.QualityScore)
}

func TestHandleParse_NoRecipeContent(t *testing.T) {
	srv := newTestServer(&stubParser{err: pipeline.ErrNoRecipeContent})

	rr := postParse(t, srv, `{"url":"https://example.com/about-us"}`)

	require.Equal(t, http.StatusOK, rr.Code, "an empty page is not a transport error")

	var resp failureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "no_recipe_content", resp.Reason)
	assert.Zero(t, resp.QualityScore)
	assert.Equal(t, "test-build", resp.Build)
}

func TestHandleParse_VideoFailureCarriesPlatform(t *testing.T) {
	srv := newTestServer(&stubParser{err: &video.ExtractionError{
		Platform: video.PlatformYouTube,
		Failures: []cascade.Failure{{Tier: "youtube_deterministic", Reason: "no labeled sections"}},
	}})

	rr := postParse(t, srv, `{"url":"https://www.youtube.com/watch?v=abc"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp failureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "youtube_extraction_failed", resp.Reason)
	assert.Contains(t, resp.Error, "no labeled sections")
}

func TestHandleParse_InternalError(t *testing.T) {
	srv := newTestServer(&stubParser{err: errors.New("boom")})

	rr := postParse(t, srv, `{"url":"https://example.com/recipes/soup"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp failureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.Reason)
}

func TestHandleParse_MalformedBody(t *testing.T) {
	srv := newTestServer(&stubParser{})

	rr := postParse(t, srv, `{"url": `)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp failureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Reason)
}

func TestHandleParse_UnknownHTMLSource(t *testing.T) {
	srv := newTestServer(&stubParser{})

	rr := postParse(t, srv, `{"url":"https://example.com/recipes/soup","html":"<html></html>","html_source":"sidebar"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp failureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Reason)
	assert.Contains(t, resp.Error, "sidebar")
}

func TestHandleParse_KnownHTMLSources(t *testing.T) {
	srv := newTestServer(&stubParser{rec: &recipe.Record{
		Title:        "Tomato Soup",
		Ingredients:  []string{"2 lbs tomatoes", "1 onion", "2 cups stock"},
		Instructions: []string{"Roast the vegetables.", "Simmer with stock.", "Blend until smooth."},
	}})

	for _, source := range []string{"", "main", "print", "jump-to-recipe"} {
		rr := postParse(t, srv, `{"url":"https://example.com/recipes/soup","html_source":"`+source+`"}`)
		assert.Equal(t, http.StatusOK, rr.Code, "html_source %q should be accepted", source)
	}
}

func TestHandleParse_Preflight(t *testing.T) {
	srv := newTestServer(&stubParser{})

	req := httptest.NewRequest(http.MethodOptions, "/parse", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestHandleParse_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubParser{})

	req := httptest.NewRequest(http.MethodGet, "/parse", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
