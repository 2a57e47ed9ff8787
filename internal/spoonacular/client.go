// Package spoonacular wraps the Spoonacular recipe extraction API, the
// external fallback consulted when on-page extraction comes back thin.
package spoonacular

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/longevityfoodlab/recipe-parser/internal/observability"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// ErrEmptyResult indicates the API answered but extracted nothing usable.
var ErrEmptyResult = errors.New("spoonacular returned no recipe content")

// ErrAPIStatus indicates a non-200 API response.
var ErrAPIStatus = errors.New("spoonacular API error")

const (
	serviceName    = "spoonacular"
	defaultBaseURL = "https://api.spoonacular.com"
	extractPath    = "/recipes/extract"
	defaultTimeout = 15 * time.Second
	retryCount     = 2
	retryWait      = 500 * time.Millisecond
)

// Extractor is the consumer-side interface for the API client.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (*recipe.Record, error)
}

type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetRetryCount(retryCount).
			SetRetryWaitTime(retryWait),
		apiKey: apiKey,
	}
}

// extractResponse mirrors the fields of the extract endpoint the service
// consumes; everything else in the payload is ignored.
type extractResponse struct {
	Title               string `json:"title"`
	Image               string `json:"image"`
	Servings            int    `json:"servings"`
	ReadyInMinutes      int    `json:"readyInMinutes"`
	ExtendedIngredients []struct {
		Original string `json:"original"`
	} `json:"extendedIngredients"`
	AnalyzedInstructions []struct {
		Steps []struct {
			Step string `json:"step"`
		} `json:"steps"`
	} `json:"analyzedInstructions"`
	SourceName string `json:"sourceName"`
}

// Extract asks the API to parse pageURL and normalizes the response into a
// record. ErrEmptyResult means the API had nothing; transport and status
// errors are returned as-is for the caller's failure accounting.
func (c *Client) Extract(ctx context.Context, pageURL string) (*recipe.Record, error) {
	var payload extractResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":    pageURL,
			"apiKey": c.apiKey,
		}).
		SetResult(&payload).
		Get(extractPath)
	if err != nil {
		observability.ExternalAPIRequests.WithLabelValues(serviceName, "transport_error").Inc()

		return nil, fmt.Errorf("spoonacular extract request: %w", err)
	}

	if resp.StatusCode() != 200 {
		observability.ExternalAPIRequests.WithLabelValues(serviceName, strconv.Itoa(resp.StatusCode())).Inc()

		return nil, fmt.Errorf("%w: status %d", ErrAPIStatus, resp.StatusCode())
	}

	observability.ExternalAPIRequests.WithLabelValues(serviceName, "ok").Inc()

	rec := normalize(&payload)
	if rec == nil {
		return nil, ErrEmptyResult
	}

	return rec, nil
}

func normalize(payload *extractResponse) *recipe.Record {
	rec := &recipe.Record{
		Title: strings.TrimSpace(payload.Title),
		Image: strings.TrimSpace(payload.Image),
	}

	for _, ing := range payload.ExtendedIngredients {
		if s := strings.TrimSpace(ing.Original); s != "" {
			rec.Ingredients = append(rec.Ingredients, s)
		}
	}

	if len(payload.AnalyzedInstructions) > 0 {
		for _, step := range payload.AnalyzedInstructions[0].Steps {
			if s := strings.TrimSpace(step.Step); s != "" {
				rec.Instructions = append(rec.Instructions, s)
			}
		}
	}

	if payload.Servings > 0 {
		rec.Servings = recipe.IntPtr(payload.Servings)
	}

	if payload.ReadyInMinutes > 0 {
		rec.TotalMinutes = recipe.IntPtr(payload.ReadyInMinutes)
	}

	rec.SiteName = strings.TrimSpace(payload.SourceName)

	if rec.Title == "" && len(rec.Ingredients) == 0 && len(rec.Instructions) == 0 {
		return nil
	}

	return rec
}
