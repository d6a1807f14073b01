// Package handlers turns HTTP requests into resolver queries and shapes the
// JSON the player UI consumes.
package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"lyricsync/database"
	"lyricsync/lyrics"
	"lyricsync/resolver"
	"lyricsync/sentryhelper"
)

const requestIDHeader = "X-Request-ID"

type Resolver interface {
	Resolve(ctx context.Context, q resolver.Query) (lyrics.Result, error)
}

type HistoryStore interface {
	RecordLookup(r database.LookupRecord) error
	GetRecentLookups(limit int) ([]database.LookupRecord, error)
	GetSourceCounts() ([]database.SourceCount, error)
}

type Manager struct {
	Resolver     Resolver
	History      HistoryStore
	HistoryLimit int
}

type HistoryEntry struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Artist     string    `json:"artist"`
	Track      string    `json:"track"`
	Duration   *float64  `json:"duration,omitempty"`
	Source     string    `json:"source"`
	LineCount  int       `json:"line_count"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	ResolvedAt time.Time `json:"resolved_at"`
}

type HistoryResponse struct {
	Lookups []HistoryEntry `json:"lookups"`
	Sources map[string]int `json:"sources"`
}

// NewManager wires the resolver and an optional history store. history may
// be nil, which disables recording and the history endpoint.
func NewManager(r Resolver, history HistoryStore, historyLimit int) *Manager {
	return &Manager{
		Resolver:     r,
		History:      history,
		HistoryLimit: historyLimit,
	}
}

func (m *Manager) Register(router gin.IRouter) {
	router.Use(RequestID())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/lyrics", m.HandleLyrics)
	router.GET("/lyrics/history", m.HandleHistory)
}

// RequestID propagates an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (m *Manager) HandleLyrics(c *gin.Context) {
	requestID := c.GetString("request_id")
	artist := c.Query("artist")
	track := c.Query("track")

	logger := log.WithFields(log.Fields{"module": "handlers", "request_id": requestID})

	q := resolver.Query{
		Artist:   artist,
		Track:    track,
		RawTrack: rawQueryValue(c.Request.URL.RawQuery, "track"),
		Duration: parseDuration(c.Query("duration")),
	}

	ctx, tx := sentryhelper.StartRequestTransaction(c.Request.Context(), "GET /lyrics", requestID)
	defer tx.Finish()

	start := time.Now()
	result, err := m.Resolver.Resolve(ctx, q)
	if errors.Is(err, resolver.ErrMissingParameters) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}
	if err != nil {
		// Resolve has no other error today; keep the caller contract anyway.
		logger.Errorf("Unexpected resolver error: %v", err)
		sentryhelper.CaptureException(ctx, err)
		c.JSON(http.StatusOK, lyrics.Result{Lines: resolver.NotFoundLines, Source: resolver.SourceNone})
		return
	}
	elapsed := time.Since(start)

	sentryhelper.ConfigureScope(ctx, func(scope *sentry.Scope) {
		scope.SetTag("lyrics.source", result.Source)
	})
	logger.Infof("Resolved '%s' by %s via %s in %s", track, artist, result.Source, elapsed.Round(time.Millisecond))

	if m.History != nil {
		if err := m.History.RecordLookup(database.LookupRecord{
			RequestID:       requestID,
			Artist:          artist,
			Track:           track,
			DurationSeconds: q.Duration,
			Source:          result.Source,
			LineCount:       len(result.Lines),
			ElapsedMs:       elapsed.Milliseconds(),
		}); err != nil {
			logger.Warnf("Failed to record lookup: %v", err)
			sentryhelper.CaptureException(ctx, err)
		}
	}

	c.JSON(http.StatusOK, result)
}

func (m *Manager) HandleHistory(c *gin.Context) {
	if m.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History is disabled"})
		return
	}

	limit := m.HistoryLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v < limit {
		limit = v
	}

	records, err := m.History.GetRecentLookups(limit)
	if err != nil {
		log.Errorf("Failed to load history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	counts, err := m.History.GetSourceCounts()
	if err != nil {
		log.Errorf("Failed to load source counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	resp := HistoryResponse{
		Lookups: make([]HistoryEntry, 0, len(records)),
		Sources: make(map[string]int, len(counts)),
	}
	for _, r := range records {
		resp.Lookups = append(resp.Lookups, HistoryEntry{
			ID:         r.ID,
			RequestID:  r.RequestID,
			Artist:     r.Artist,
			Track:      r.Track,
			Duration:   r.DurationSeconds,
			Source:     r.Source,
			LineCount:  r.LineCount,
			ElapsedMs:  r.ElapsedMs,
			ResolvedAt: r.ResolvedAt,
		})
	}
	for _, sc := range counts {
		resp.Sources[sc.Source] = sc.Count
	}

	c.JSON(http.StatusOK, resp)
}

// parseDuration reads the optional duration in seconds. Anything that is not
// a positive finite number counts as absent.
func parseDuration(s string) *float64 {
	if s == "" {
		return nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return nil
	}
	return &d
}

// rawQueryValue returns the first value for key exactly as it appears in the
// query string, before any percent-decoding.
func rawQueryValue(rawQuery, key string) string {
	for _, part := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(part, "=")
		if k == key {
			return v
		}
	}
	return ""
}
