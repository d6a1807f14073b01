package config

import (
	"os"
	"strconv"
)

type ConfigStruct struct {
	Options Options
	Sentry  SentryConfig
	Lrclib  LrclibConfig
	Search  SearchConfig
	Scraper ScraperConfig
	History HistoryConfig
}

type Options struct {
	Port                string
	LogLevel            string
	FetchTimeoutSeconds int
}

type SentryConfig struct {
	DSN     string
	Release string
}

type LrclibConfig struct {
	BaseURL   string
	UserAgent string
}

type SearchConfig struct {
	BaseURL  string
	SiteHost string
}

type ScraperConfig struct {
	UserAgent string
}

type HistoryConfig struct {
	DBPath string
	Limit  int
}

func (h *HistoryConfig) IsEnabled() bool {
	return h.DBPath != ""
}

func (s *SentryConfig) IsEnabled() bool {
	return s.DSN != ""
}

const (
	DefaultLrclibBaseURL   = "https://lrclib.net"
	DefaultLrclibUserAgent = "lyricsync/1.0 (https://github.com/lyricsync/lyricsync)"
	DefaultSearchBaseURL   = "https://lite.duckduckgo.com/lite/"
	DefaultSiteHost        = "genius.com"
	// Matches what the lyrics site serves without a JS challenge.
	DefaultBotUserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Options: Options{
			Port:                getEnv("PORT", "8080"),
			LogLevel:            getEnv("LOG_LEVEL", "info"),
			FetchTimeoutSeconds: getFetchTimeout(),
		},
		Sentry: SentryConfig{
			DSN:     os.Getenv("SENTRY_DSN"),
			Release: os.Getenv("RELEASE"),
		},
		Lrclib: LrclibConfig{
			BaseURL:   getEnv("LRCLIB_BASE_URL", DefaultLrclibBaseURL),
			UserAgent: getEnv("LRCLIB_USER_AGENT", DefaultLrclibUserAgent),
		},
		Search: SearchConfig{
			BaseURL:  getEnv("SEARCH_BASE_URL", DefaultSearchBaseURL),
			SiteHost: getEnv("LYRICS_SITE_HOST", DefaultSiteHost),
		},
		Scraper: ScraperConfig{
			UserAgent: getEnv("SCRAPER_USER_AGENT", DefaultBotUserAgent),
		},
		History: HistoryConfig{
			DBPath: os.Getenv("HISTORY_DB_PATH"),
			Limit:  getHistoryLimit(),
		},
	}

	Config = config
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFetchTimeout() int {
	timeoutStr := os.Getenv("FETCH_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		return 10
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout <= 0 {
		return 10
	}
	if timeout > 60 {
		return 60
	}
	return timeout
}

func getHistoryLimit() int {
	limitStr := os.Getenv("HISTORY_LIMIT")
	if limitStr == "" {
		return 20
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
