// Package resolver answers a lyrics query by racing lrclib lookups and
// falling back to scraping a lyrics site found through web search.
package resolver

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"lyricsync/lyrics"
	"lyricsync/overrides"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

const (
	SourceOverride      = "manual-override"
	SourceExact         = "lrclib-exact"
	SourceSearchArtist  = "lrclib-search-artist"
	SourceSearchTrack   = "lrclib-search-track"
	SourceSearchSegment = "lrclib-search-segment"
	SourceScrape        = "genius-scrape"
	SourceNone          = "none"
)

var ErrMissingParameters = errors.New("missing parameters")

// NotFoundLines is what callers get when every strategy came up empty.
var NotFoundLines = []string{
	"Lyrics not found.",
	"If this persists, lyrics might be unavailable.",
}

// Query is a single lyrics request. Duration is in seconds and optional.
type Query struct {
	Artist   string
	Track    string
	RawTrack string
	Duration *float64
}

type LyricsDatabase interface {
	GetExact(ctx context.Context, artist, track string) ([]string, error)
	Search(ctx context.Context, query string) ([]lyrics.Candidate, error)
}

type PageFinder interface {
	FindLyricsPageURL(ctx context.Context, artist, track string) (string, error)
}

type PageScraper interface {
	ExtractLyrics(ctx context.Context, pageURL string) ([]string, error)
}

type Resolver struct {
	db      LyricsDatabase
	finder  PageFinder
	scraper PageScraper
}

func New(db LyricsDatabase, finder PageFinder, scraper PageScraper) *Resolver {
	return &Resolver{
		db:      db,
		finder:  finder,
		scraper: scraper,
	}
}

// Resolve returns the best lyrics available for q. The only error is
// ErrMissingParameters; a lookup that finds nothing returns the NotFoundLines
// placeholder with SourceNone.
func (r *Resolver) Resolve(ctx context.Context, q Query) (lyrics.Result, error) {
	artist := strings.TrimSpace(q.Artist)
	track := strings.TrimSpace(q.Track)
	if artist == "" || track == "" {
		return lyrics.Result{}, ErrMissingParameters
	}

	logger := log.WithFields(log.Fields{"module": "resolver", "artist": artist, "track": track})

	rawTrack := q.RawTrack
	if rawTrack == "" {
		rawTrack = q.Track
	}
	if lines, ok := overrides.Lookup(overrides.Normalize(artist), overrides.Normalize(track), rawTrack); ok {
		logger.Debug("Serving manual override")
		return lyrics.Result{Lines: lines, Source: SourceOverride}, nil
	}

	span := sentry.StartSpan(ctx, "resolver.race")
	span.Description = "Race lrclib strategies"
	strategies := r.strategies(artist, track, q.Duration)
	span.SetData("strategies", len(strategies))
	winner := race(span.Context(), strategies)
	span.Finish()
	if winner != nil {
		logger.Debugf("Resolved via %s (%d lines)", winner.Source, len(winner.Lines))
		return *winner, nil
	}

	if res := r.fallback(ctx, artist, track); res != nil {
		logger.Debugf("Resolved via %s (%d lines)", res.Source, len(res.Lines))
		return *res, nil
	}

	logger.Info("No lyrics found")
	lines := make([]string, len(NotFoundLines))
	copy(lines, NotFoundLines)
	return lyrics.Result{Lines: lines, Source: SourceNone}, nil
}

func (r *Resolver) strategies(artist, track string, duration *float64) []Strategy {
	strategies := []Strategy{r.exactStrategy(artist, track)}
	if duration == nil {
		return strategies
	}

	target := *duration
	strategies = append(strategies,
		r.searchStrategy(SourceSearchArtist, artist, target),
		r.searchStrategy(SourceSearchTrack, track, target),
	)
	if segments := SplitSegments(track); len(segments) >= 2 {
		for _, seg := range segments {
			strategies = append(strategies, r.searchStrategy(SourceSearchSegment, seg, target))
		}
	}
	return strategies
}

func (r *Resolver) exactStrategy(artist, track string) Strategy {
	return Strategy{
		Name: SourceExact,
		Run: func(ctx context.Context) *lyrics.Result {
			lines, err := r.db.GetExact(ctx, artist, track)
			if err != nil {
				log.Debugf("%s: %v", SourceExact, err)
				return nil
			}
			return &lyrics.Result{Lines: lines, Source: SourceExact}
		},
	}
}

func (r *Resolver) searchStrategy(source, query string, target float64) Strategy {
	return Strategy{
		Name: source + ":" + query,
		Run: func(ctx context.Context) *lyrics.Result {
			candidates, err := r.db.Search(ctx, query)
			if err != nil {
				log.Debugf("%s %q: %v", source, query, err)
				return nil
			}
			match, ok := lyrics.MatchByDuration(candidates, target)
			if !ok {
				log.Tracef("%s %q: no candidate within %.0fs of %.1fs", source, query, lyrics.DurationTolerance, target)
				return nil
			}
			lines := lyrics.CandidateLines(match)
			if len(lines) == 0 {
				return nil
			}
			return &lyrics.Result{Lines: lines, Source: source}
		},
	}
}

func (r *Resolver) fallback(ctx context.Context, artist, track string) *lyrics.Result {
	pageURL, err := r.finder.FindLyricsPageURL(ctx, artist, track)
	if err != nil {
		log.Debugf("Fallback search for '%s' by %s: %v", track, artist, err)
		return nil
	}

	lines, err := r.scraper.ExtractLyrics(ctx, pageURL)
	if err != nil {
		log.Debugf("Fallback scrape of %s: %v", pageURL, err)
		return nil
	}
	if len(lines) == 0 {
		return nil
	}
	return &lyrics.Result{Lines: lines, Source: SourceScrape}
}

// SplitSegments breaks a decorated title like "Song - Remastered 2011" or
// "Song (feat. Someone)" into its parts. Parts of one character or less are
// dropped.
func SplitSegments(track string) []string {
	parts := []string{track}
	for _, sep := range []string{" - ", " (", " ["} {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	var segments []string
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(p), ")]"))
		if utf8.RuneCountInString(p) > 1 {
			segments = append(segments, p)
		}
	}
	return segments
}
