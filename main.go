package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	appConfig "lyricsync/config"
	"lyricsync/database"
	"lyricsync/handlers"
	"lyricsync/lyrics"
	"lyricsync/resolver"
	"lyricsync/scraper"
	"lyricsync/sentry"
	"lyricsync/websearch"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}
	appConfig.NewConfig()
	setupLogging(appConfig.Config.Options.LogLevel)

	sentry.Init()
	defer sentry.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		sentry.ReportError(err)
		sentry.Flush()
		log.Fatal(err)
	}
}

func setupLogging(level string) {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		FieldsOrder:     []string{"module", "request_id"},
		TimestampFormat: time.RFC3339,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func run(ctx context.Context) error {
	cfg := appConfig.Config
	timeout := time.Duration(cfg.Options.FetchTimeoutSeconds) * time.Second

	r := resolver.New(
		lyrics.New(cfg.Lrclib.BaseURL, cfg.Lrclib.UserAgent, timeout),
		websearch.New(cfg.Search.BaseURL, cfg.Search.SiteHost, cfg.Scraper.UserAgent, timeout),
		scraper.New(cfg.Scraper.UserAgent, timeout),
	)

	var history handlers.HistoryStore
	if cfg.History.IsEnabled() {
		db, err := database.New(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		history = db
	}

	if cfg.Options.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), sentry.GetSentryGin())
	handlers.NewManager(r, history, cfg.History.Limit).Register(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Options.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on :%s", cfg.Options.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
