package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/longevityfoodlab/recipe-parser/internal/fetch"
)

// ErrMetadataUnavailable indicates the platform refused or failed the
// metadata lookup. Without metadata no video tier can run.
var ErrMetadataUnavailable = errors.New("video metadata unavailable")

// Metadata is what the platform tells us about a video before any
// extraction runs.
type Metadata struct {
	Title       string
	Author      string
	Description string
	Thumbnail   string
}

// MetadataClient fetches video metadata for one or more platforms.
type MetadataClient interface {
	Fetch(ctx context.Context, videoURL string) (*Metadata, error)
}

const (
	youtubeOEmbedURL = "https://www.youtube.com/oembed"
	tiktokOEmbedURL  = "https://www.tiktok.com/oembed"
	oembedTimeout    = 10 * time.Second
)

// OEmbedClient resolves title, author and thumbnail through the platform's
// oEmbed endpoint, then scrapes the watch page for the description, which
// oEmbed does not carry.
type OEmbedClient struct {
	http    *resty.Client
	fetcher fetch.Fetcher
}

func NewOEmbedClient(fetcher fetch.Fetcher) *OEmbedClient {
	return &OEmbedClient{
		http:    resty.New().SetTimeout(oembedTimeout),
		fetcher: fetcher,
	}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (c *OEmbedClient) Fetch(ctx context.Context, videoURL string) (*Metadata, error) {
	platform, ok := Classify(videoURL)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported host", ErrMetadataUnavailable)
	}

	endpoint := youtubeOEmbedURL
	if platform == PlatformTikTok {
		endpoint = tiktokOEmbedURL
	}

	var payload oembedResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":    videoURL,
			"format": "json",
		}).
		SetResult(&payload).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: oembed status %d", ErrMetadataUnavailable, resp.StatusCode())
	}

	meta := &Metadata{
		Title:     strings.TrimSpace(payload.Title),
		Author:    strings.TrimSpace(payload.AuthorName),
		Thumbnail: strings.TrimSpace(payload.ThumbnailURL),
	}

	if meta.Title == "" {
		return nil, fmt.Errorf("%w: empty oembed title", ErrMetadataUnavailable)
	}

	meta.Description = c.scrapeDescription(ctx, videoURL)

	return meta, nil
}

// scrapeDescription pulls og:description off the watch page. Best effort:
// a missing description only removes the description tiers, it is not fatal.
func (c *OEmbedClient) scrapeDescription(ctx context.Context, videoURL string) string {
	if c.fetcher == nil {
		return ""
	}

	body, err := c.fetcher.Fetch(ctx, videoURL)
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(desc)
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(desc)
	}

	return ""
}
