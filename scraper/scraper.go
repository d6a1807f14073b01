// Package scraper pulls lyric text out of a lyrics site's song page.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoContainer = errors.New("page has no lyrics container")
	ErrNoLyrics    = errors.New("lyrics container held no text")
)

const (
	containerSelector = `[data-lyrics-container="true"]`
	// Contributor counts, translations menu and similar page chrome that
	// some song pages render inside the container.
	excludeSelector = `[data-exclude-from-selection="true"]`
)

type Scraper struct {
	userAgent  string
	httpClient *http.Client
}

func New(userAgent string, timeout time.Duration) *Scraper {
	return &Scraper{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ExtractLyrics fetches pageURL and returns its lyric lines.
func (s *Scraper) ExtractLyrics(ctx context.Context, pageURL string) ([]string, error) {
	span := sentry.StartSpan(ctx, "scraper.extract_lyrics")
	span.Description = "Scrape lyrics page"
	span.SetTag("url", pageURL)
	defer span.Finish()

	req, err := http.NewRequestWithContext(span.Context(), http.MethodGet, pageURL, nil)
	if err != nil {
		span.Status = sentry.SpanStatusInvalidArgument
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	log.Tracef("Fetching lyrics page: %s", pageURL)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusUnavailable
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	containerHTML, err := containersHTML(doc)
	if err != nil {
		span.Status = sentry.SpanStatusNotFound
		return nil, err
	}

	lines := HTMLToLines(containerHTML)
	if len(lines) == 0 {
		span.Status = sentry.SpanStatusNotFound
		return nil, ErrNoLyrics
	}

	log.Debugf("Extracted %d lines from %s", len(lines), pageURL)
	span.Status = sentry.SpanStatusOK
	span.SetData("lines", len(lines))
	return lines, nil
}

// containersHTML joins the inner HTML of every lyrics container in document
// order, one container per line.
func containersHTML(doc *goquery.Document) (string, error) {
	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		return "", ErrNoContainer
	}

	containers.Find(excludeSelector).Remove()

	parts := make([]string, 0, containers.Length())
	containers.Each(func(i int, sel *goquery.Selection) {
		inner, err := sel.Html()
		if err != nil {
			log.Tracef("Failed to render lyrics container %d: %v", i, err)
			return
		}
		parts = append(parts, inner)
	})

	return strings.Join(parts, "\n"), nil
}
