package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/longevityfoodlab/recipe-parser/internal/observability"
	"github.com/longevityfoodlab/recipe-parser/internal/recipe"
)

// ErrCircuitBreakerOpen indicates the circuit breaker is open.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
	rateLimiterBurst        = 5

	// htmlInputLimit truncates page HTML before prompting; recipe content on
	// real pages sits well inside the first 8000 characters of cleaned HTML.
	htmlInputLimit  = 8000
	textInputLimit  = 12000
	priorInputLimit = 2000

	extractTemperature    = 0.0
	synthesizeTemperature = 0.7
)

type openaiClient struct {
	client      *openai.Client
	model       string
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

func NewOpenAI(apiKey, model string, rps float64, logger *zerolog.Logger) Client {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	if model == "" {
		model = openai.GPT4oMini
	}

	return &openaiClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), rateLimiterBurst),
	}
}

func (c *openaiClient) ExtractRecipe(ctx context.Context, html, pageURL string, prior *recipe.Record, weakFields []string) (*recipe.Record, error) {
	prompt := extractFromHTMLPrompt + truncate(html, htmlInputLimit)
	if pageURL != "" {
		prompt = "Page URL: " + pageURL + "\n\n" + prompt
	}

	if prior != nil {
		if priorJSON, err := json.Marshal(prior); err == nil {
			prompt += "\n\nA partial extraction already exists:\n" + truncate(string(priorJSON), priorInputLimit)
		}

		if len(weakFields) > 0 {
			prompt += "\nWeak or missing fields to focus on: " + strings.Join(weakFields, ", ")
		}
	}

	payload, err := c.completeValidated(ctx, "extract_html", prompt, extractTemperature, Validate)
	if err != nil {
		return nil, fmt.Errorf("extract recipe from html: %w", err)
	}

	return toRecord(payload), nil
}

func (c *openaiClient) ExtractFromText(ctx context.Context, text, hint string) (*recipe.Record, error) {
	prompt := extractFromTextPrompt + truncate(text, textInputLimit)
	if hint != "" {
		prompt = "The dish is likely: " + hint + "\n\n" + prompt
	}

	payload, err := c.completeValidated(ctx, "extract_text", prompt, extractTemperature, Validate)
	if err != nil {
		return nil, fmt.Errorf("extract recipe from text: %w", err)
	}

	return toRecord(payload), nil
}

func (c *openaiClient) SynthesizeFromTitle(ctx context.Context, title string) (*recipe.Record, error) {
	payload, err := c.completeValidated(ctx, "synthesize_recipe", synthesizeFromTitlePrompt+title, synthesizeTemperature, Validate)
	if err != nil {
		return nil, fmt.Errorf("synthesize recipe: %w", err)
	}

	return toRecord(payload), nil
}

func (c *openaiClient) SynthesizeInstructions(ctx context.Context, title string, ingredients []string) ([]string, error) {
	var sb strings.Builder

	sb.WriteString(synthesizeInstructionsPrompt)
	sb.WriteString("Dish: " + title + "\nIngredients:\n")

	for _, ing := range ingredients {
		sb.WriteString("- " + ing + "\n")
	}

	payload, err := c.completeValidated(ctx, "synthesize_instructions", sb.String(), synthesizeTemperature, ValidateInstructions)
	if err != nil {
		return nil, fmt.Errorf("synthesize instructions: %w", err)
	}

	return payload.Instructions, nil
}

// completeValidated runs one completion, recovers the JSON object, and
// validates it with the task's contract check. A single re-prompt with the
// violation list is allowed before the call fails.
func (c *openaiClient) completeValidated(ctx context.Context, task, prompt string, temperature float32, validate func(*Payload) []string) (*Payload, error) {
	content, err := c.complete(ctx, task, prompt, temperature)
	if err != nil {
		return nil, err
	}

	payload, err := recoverPayload(content)
	if err != nil {
		c.logger.Warn().Str("response", truncate(content, 500)).Msg("no JSON object recovered from model response")

		return nil, err
	}

	problems := validate(payload)
	if len(problems) == 0 {
		return payload, nil
	}

	c.logger.Debug().Strs("problems", problems).Msg("model output failed validation, re-prompting once")

	reprompt := prompt + "\n\n" + repromptPreamble + "- " + strings.Join(problems, "\n- ")

	content, err = c.complete(ctx, task, reprompt, temperature)
	if err != nil {
		return nil, err
	}

	payload, err = recoverPayload(content)
	if err != nil {
		return nil, err
	}

	// Still invalid after the bounded re-prompt: ship what we have. Partial
	// or malformed recovery beats total failure, and the finalizer coerces.
	if problems = validate(payload); len(problems) > 0 {
		c.logger.Warn().Strs("problems", problems).Msg("model output still invalid after re-prompt, using as-is")
	}

	return payload, nil
}

func (c *openaiClient) complete(ctx context.Context, task, prompt string, temperature float32) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	started := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})

	observability.ObserveLLM(task, err, time.Since(started))

	if err != nil {
		c.recordFailure()

		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	c.recordSuccess()

	return resp.Choices[0].Message.Content, nil
}

// recoverPayload unmarshals the model response, falling back to scanning
// brace pairs when the model wrapped the object in prose.
func recoverPayload(content string) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal([]byte(content), &payload); err == nil {
		return &payload, nil
	}

	for start := strings.Index(content, "{"); start != -1; {
		for end := strings.LastIndex(content, "}"); end > start; end = strings.LastIndex(content[:end], "}") {
			var candidate Payload
			if err := json.Unmarshal([]byte(content[start:end+1]), &candidate); err == nil {
				return &candidate, nil
			}
		}

		nextStart := strings.Index(content[start+1:], "{")
		if nextStart == -1 {
			break
		}

		start = start + 1 + nextStart
	}

	return nil, ErrNoPayload
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen]
}
