package config

import "testing"

func TestGetFetchTimeout(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 10},
		{"invalid", "abc", 10},
		{"zero", "0", 10},
		{"negative", "-1", 10},
		{"valid_small", "3", 3},
		{"valid_default", "10", 10},
		{"max", "60", 60},
		{"over", "61", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FETCH_TIMEOUT_SECONDS", tt.env)
			if got := getFetchTimeout(); got != tt.want {
				t.Errorf("getFetchTimeout() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetHistoryLimit(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 20},
		{"invalid", "foo", 20},
		{"zero", "0", 20},
		{"negative", "-10", 20},
		{"min", "1", 1},
		{"mid", "50", 50},
		{"max", "100", 100},
		{"over", "101", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HISTORY_LIMIT", tt.env)
			if got := getHistoryLimit(); got != tt.want {
				t.Errorf("getHistoryLimit() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LRCLIB_BASE_URL", "LRCLIB_USER_AGENT",
		"SEARCH_BASE_URL", "LYRICS_SITE_HOST", "SCRAPER_USER_AGENT",
		"HISTORY_DB_PATH", "SENTRY_DSN",
	} {
		t.Setenv(key, "")
	}

	NewConfig()

	if Config.Options.Port != "8080" {
		t.Errorf("Port = %q, want 8080", Config.Options.Port)
	}
	if Config.Lrclib.BaseURL != DefaultLrclibBaseURL {
		t.Errorf("Lrclib.BaseURL = %q, want %q", Config.Lrclib.BaseURL, DefaultLrclibBaseURL)
	}
	if Config.Search.SiteHost != DefaultSiteHost {
		t.Errorf("Search.SiteHost = %q, want %q", Config.Search.SiteHost, DefaultSiteHost)
	}
	if Config.History.IsEnabled() {
		t.Error("history should be disabled without HISTORY_DB_PATH")
	}
	if Config.Sentry.IsEnabled() {
		t.Error("sentry should be disabled without SENTRY_DSN")
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LYRICS_SITE_HOST", "example.com")
	t.Setenv("HISTORY_DB_PATH", "/tmp/history.db")

	NewConfig()

	if Config.Options.Port != "9090" {
		t.Errorf("Port = %q, want 9090", Config.Options.Port)
	}
	if Config.Search.SiteHost != "example.com" {
		t.Errorf("SiteHost = %q, want example.com", Config.Search.SiteHost)
	}
	if !Config.History.IsEnabled() {
		t.Error("history should be enabled with HISTORY_DB_PATH set")
	}
}
