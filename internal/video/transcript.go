package video

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrTranscriptUnavailable indicates no transcript could be obtained inside
// the polling budget.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// MinTranscriptChars is the floor below which a transcript is treated as
// noise (auto-captions of a music-only video, for example).
const MinTranscriptChars = 100

const (
	transcriptPollBudget   = 60 * time.Second
	transcriptPollInterval = 5 * time.Second
	transcriptHTTPTimeout  = 15 * time.Second
)

// TranscriptClient obtains a plain-text transcript for a video.
type TranscriptClient interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

// PollingTranscriptClient talks to a transcription service that answers 202
// while a job is still running. It polls until the transcript is ready or
// the budget runs out.
type PollingTranscriptClient struct {
	http     *resty.Client
	budget   time.Duration
	interval time.Duration
}

func NewPollingTranscriptClient(baseURL string, budget time.Duration) *PollingTranscriptClient {
	if budget <= 0 {
		budget = transcriptPollBudget
	}

	return &PollingTranscriptClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(transcriptHTTPTimeout),
		budget:   budget,
		interval: transcriptPollInterval,
	}
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
}

func (c *PollingTranscriptClient) Fetch(ctx context.Context, videoURL string) (string, error) {
	deadline := time.Now().Add(c.budget)

	for {
		var payload transcriptResponse

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("url", videoURL).
			SetResult(&payload).
			Get("/transcript")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
		}

		switch resp.StatusCode() {
		case http.StatusOK:
			if len(payload.Transcript) < MinTranscriptChars {
				return "", fmt.Errorf("%w: transcript too short (%d chars)", ErrTranscriptUnavailable, len(payload.Transcript))
			}

			return payload.Transcript, nil
		case http.StatusAccepted:
			// Job still running.
		default:
			return "", fmt.Errorf("%w: status %d", ErrTranscriptUnavailable, resp.StatusCode())
		}

		if time.Now().Add(c.interval).After(deadline) {
			return "", fmt.Errorf("%w: polling budget exhausted", ErrTranscriptUnavailable)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, ctx.Err())
		case <-time.After(c.interval):
		}
	}
}
