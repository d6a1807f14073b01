package resolver

import (
	"context"
	"testing"
	"time"

	"lyricsync/lyrics"

	sentry "github.com/getsentry/sentry-go"
)

func failing(name string) Strategy {
	return Strategy{Name: name, Run: func(ctx context.Context) *lyrics.Result { return nil }}
}

func succeedingAfter(name string, d time.Duration) Strategy {
	return Strategy{Name: name, Run: func(ctx context.Context) *lyrics.Result {
		select {
		case <-time.After(d):
			return &lyrics.Result{Lines: []string{name}, Source: name}
		case <-ctx.Done():
			return nil
		}
	}}
}

// TestRaceFailureDoesNotEndRace verifies an immediate failure does not
// short-circuit a slower success.
func TestRaceFailureDoesNotEndRace(t *testing.T) {
	got := race(context.Background(), []Strategy{
		failing("a"),
		succeedingAfter("b", 50*time.Millisecond),
	})
	if got == nil || got.Source != "b" {
		t.Fatalf("race() = %+v, want b's result", got)
	}
}

func TestRaceFirstSuccessWins(t *testing.T) {
	start := time.Now()
	got := race(context.Background(), []Strategy{
		succeedingAfter("slow", 5*time.Second),
		succeedingAfter("fast", 10*time.Millisecond),
		failing("c"),
	})
	if got == nil || got.Source != "fast" {
		t.Fatalf("race() = %+v, want fast", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("race waited %v for the slow strategy", elapsed)
	}
}

func TestRaceAllFail(t *testing.T) {
	if got := race(context.Background(), []Strategy{failing("a"), failing("b"), failing("c")}); got != nil {
		t.Errorf("race() = %+v, want nil", got)
	}
}

func TestRaceEmptyResultIsFailure(t *testing.T) {
	empty := Strategy{Name: "empty", Run: func(ctx context.Context) *lyrics.Result {
		return &lyrics.Result{Source: "empty"}
	}}
	got := race(context.Background(), []Strategy{empty, succeedingAfter("real", 20*time.Millisecond)})
	if got == nil || got.Source != "real" {
		t.Errorf("race() = %+v, want real", got)
	}
}

func TestRacePanicIsFailure(t *testing.T) {
	boom := Strategy{Name: "boom", Run: func(ctx context.Context) *lyrics.Result { panic("boom") }}
	got := race(context.Background(), []Strategy{boom, succeedingAfter("ok", 20*time.Millisecond)})
	if got == nil || got.Source != "ok" {
		t.Errorf("race() = %+v, want ok", got)
	}
}

func TestRaceNoStrategies(t *testing.T) {
	if got := race(context.Background(), nil); got != nil {
		t.Errorf("race(nil) = %+v, want nil", got)
	}
}

func TestRaceParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocking := Strategy{Name: "blocking", Run: func(ctx context.Context) *lyrics.Result {
		<-ctx.Done()
		return nil
	}}
	if got := race(ctx, []Strategy{blocking}); got != nil {
		t.Errorf("race() = %+v, want nil on canceled parent", got)
	}
}

func TestRaceLeavesBreadcrumbPerFailure(t *testing.T) {
	hub := sentry.NewHub(nil, sentry.NewScope())
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	got := race(ctx, []Strategy{failing("a"), failing("b")})
	if got != nil {
		t.Fatalf("race() = %+v, want nil", got)
	}

	event := hub.Scope().ApplyToEvent(sentry.NewEvent(), nil, nil)
	messages := make(map[string]bool)
	for _, b := range event.Breadcrumbs {
		if b.Category == "resolver.race" {
			messages[b.Message] = true
		}
	}
	if !messages["a found nothing"] || !messages["b found nothing"] {
		t.Errorf("breadcrumbs = %v, want one per failed strategy", messages)
	}
}
