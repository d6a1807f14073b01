package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

var ErrNoLyrics = errors.New("no lyrics found")

// Result is a fully resolved set of lyric lines and the strategy that
// produced them.
type Result struct {
	Lines  []string `json:"lines"`
	Source string   `json:"source"`
}

// Candidate is one entry of an lrclib search or get response.
type Candidate struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetExact looks up lyrics by exact artist and track name.
func (c *Client) GetExact(ctx context.Context, artist, track string) ([]string, error) {
	span := sentry.StartSpan(ctx, "lrclib.get")
	span.Description = "Get lyrics by exact artist and track"
	span.SetTag("artist", artist)
	span.SetTag("track", track)
	defer span.Finish()

	params := url.Values{}
	params.Set("artist_name", artist)
	params.Set("track_name", track)

	var res Candidate
	if err := c.getJSON(span.Context(), "/api/get?"+params.Encode(), &res); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	lines := CandidateLines(res)
	if len(lines) == 0 {
		span.Status = sentry.SpanStatusNotFound
		return nil, ErrNoLyrics
	}

	log.Tracef("lrclib get matched '%s' by %s (%d lines)", res.TrackName, res.ArtistName, len(lines))
	span.Status = sentry.SpanStatusOK
	span.SetData("lines", len(lines))
	return lines, nil
}

// Search runs a free-text lrclib search. On failure the returned slice is
// empty and the error says why.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	span := sentry.StartSpan(ctx, "lrclib.search")
	span.Description = "Search lrclib"
	span.SetTag("query", query)
	defer span.Finish()

	var results []Candidate
	if err := c.getJSON(span.Context(), "/api/search?q="+url.QueryEscape(query), &results); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return []Candidate{}, err
	}

	log.Tracef("lrclib search %q returned %d candidates", query, len(results))
	span.Status = sentry.SpanStatusOK
	span.SetData("candidates", len(results))
	if results == nil {
		results = []Candidate{}
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lrclib request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lrclib API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode lrclib response: %w", err)
	}
	return nil
}
