package resolver

import (
	"context"
	"fmt"

	"lyricsync/lyrics"
	"lyricsync/sentryhelper"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// Strategy is one independent lookup attempt. Run returns nil when the
// strategy found nothing, for whatever reason.
type Strategy struct {
	Name string
	Run  func(ctx context.Context) *lyrics.Result
}

type outcome struct {
	name   string
	result *lyrics.Result
}

// race runs every strategy concurrently and returns the first non-empty
// result. A failed strategy never ends the race while others are pending;
// race returns nil only after all of them have reported failure. Strategies
// still running when race returns are canceled and their results dropped.
func race(ctx context.Context, strategies []Strategy) *lyrics.Result {
	if len(strategies) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so losers can always finish their send after we return.
	results := make(chan outcome, len(strategies))
	for _, s := range strategies {
		go func(s Strategy) {
			var res *lyrics.Result
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("strategy %s panicked: %v", s.Name, r)
					log.Error(err)
					sentryhelper.CaptureException(ctx, err)
					res = nil
				}
				results <- outcome{name: s.Name, result: res}
			}()
			res = s.Run(ctx)
		}(s)
	}

	for received := 0; received < len(strategies); received++ {
		select {
		case o := <-results:
			if o.result != nil && len(o.result.Lines) > 0 {
				log.Debugf("Strategy %s won the race after %d failures", o.name, received)
				return o.result
			}
			log.Tracef("Strategy %s found nothing", o.name)
			sentryhelper.AddBreadcrumb(ctx, &sentry.Breadcrumb{
				Category: "resolver.race",
				Message:  o.name + " found nothing",
				Level:    sentry.LevelInfo,
			})
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
