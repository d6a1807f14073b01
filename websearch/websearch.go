// Package websearch finds a lyrics page on a given site through a text-only
// search engine endpoint.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

var ErrNoResult = errors.New("no lyrics page in search results")

// Search result pages are small; anything past this is not a result list.
const maxBodyBytes = 2 << 20

type Client struct {
	baseURL    string
	siteHost   string
	userAgent  string
	linkRegex  *regexp.Regexp
	httpClient *http.Client
}

// New builds a client that searches baseURL for pages on siteHost.
func New(baseURL, siteHost, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		siteHost:   siteHost,
		userAgent:  userAgent,
		linkRegex:  buildLinkRegex(siteHost),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// buildLinkRegex matches a song page link either literally
// (https://host/Artist-track-lyrics) or inside a percent-encoded redirect
// parameter (https%3A%2F%2Fhost%2FArtist-track-lyrics).
func buildLinkRegex(host string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)https?(?::|%3A)(?:/|%2F){2}(?:www\.)?` +
		regexp.QuoteMeta(host) +
		`(?:/|%2F)([A-Za-z0-9][A-Za-z0-9%\-]*-lyrics)\b`)
}

func (c *Client) Query(artist, track string) string {
	return fmt.Sprintf("site:%s %s %s lyrics", c.siteHost, artist, track)
}

// FindLyricsPageURL returns the first lyrics page link in the search
// results for artist and track.
func (c *Client) FindLyricsPageURL(ctx context.Context, artist, track string) (string, error) {
	span := sentry.StartSpan(ctx, "websearch.find")
	span.Description = "Site-restricted search for a lyrics page"
	span.SetTag("site", c.siteHost)
	defer span.Finish()

	u := c.baseURL + "?q=" + url.QueryEscape(c.Query(artist, track))
	req, err := http.NewRequestWithContext(span.Context(), http.MethodGet, u, nil)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusUnavailable
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return "", fmt.Errorf("failed to read search response: %w", err)
	}

	pageURL, ok := c.ExtractLink(string(body))
	if !ok {
		span.Status = sentry.SpanStatusNotFound
		return "", ErrNoResult
	}

	log.Debugf("Search for '%s' by %s found %s", track, artist, pageURL)
	span.Status = sentry.SpanStatusOK
	return pageURL, nil
}

// ExtractLink returns the first song page link in body, normalized to
// https://<host>/<slug>. Matches whose decoded slug is not a single path
// segment are skipped.
func (c *Client) ExtractLink(body string) (string, bool) {
	for _, m := range c.linkRegex.FindAllStringSubmatch(body, -1) {
		slug, err := url.PathUnescape(m[1])
		if err != nil || strings.ContainsAny(slug, "/?#") {
			continue
		}
		return "https://" + c.siteHost + "/" + slug, true
	}
	return "", false
}
