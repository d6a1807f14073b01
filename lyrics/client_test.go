package lyrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "lyricsync-test", 2*time.Second)
}

func TestGetExact(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("artist_name") != "Daft Punk" || r.URL.Query().Get("track_name") != "One More Time" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") != "lyricsync-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"trackName":"One More Time","artistName":"Daft Punk","duration":320,
			"plainLyrics":"","syncedLyrics":"[00:01.00] One more time\n[00:03.00] We're gonna celebrate"}`))
	})

	got, err := c.GetExact(context.Background(), "Daft Punk", "One More Time")
	if err != nil {
		t.Fatalf("GetExact: %v", err)
	}
	want := []string{"One more time", "We're gonna celebrate"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetExact() = %q, want %q", got, want)
	}
}

func TestGetExactFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantNo  bool
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
		},
		{
			name: "malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"plainLyrics":`))
			},
		},
		{
			name: "empty lyrics",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"plainLyrics":"","syncedLyrics":""}`))
			},
			wantNo: true,
		},
		{
			name: "instrumental",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"instrumental":true,"plainLyrics":"la la"}`))
			},
			wantNo: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			lines, err := c.GetExact(context.Background(), "a", "b")
			if err == nil {
				t.Fatalf("GetExact() = %q, want error", lines)
			}
			if lines != nil {
				t.Errorf("GetExact() lines = %q, want nil", lines)
			}
			if tt.wantNo && !errors.Is(err, ErrNoLyrics) {
				t.Errorf("GetExact() err = %v, want ErrNoLyrics", err)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" || r.URL.Query().Get("q") != "Around the World" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[
			{"id":1,"trackName":"Around the World","artistName":"Daft Punk","duration":429,"plainLyrics":"Around the world"},
			{"id":2,"trackName":"Around the World (Radio Edit)","artistName":"Daft Punk","duration":238.5,"plainLyrics":"Around the world"}
		]`))
	})

	got, err := c.Search(context.Background(), "Around the World")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search() returned %d candidates, want 2", len(got))
	}
	if got[1].Duration != 238.5 || got[1].TrackName != "Around the World (Radio Edit)" {
		t.Errorf("Search()[1] = %+v", got[1])
	}
}

func TestSearchFailureIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := c.Search(context.Background(), "anything")
	if err == nil {
		t.Error("Search() expected error on 500")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Search() = %v, want empty slice", got)
	}
}

func TestSearchNullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	got, err := c.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Search() = %v, want empty slice", got)
	}
}
