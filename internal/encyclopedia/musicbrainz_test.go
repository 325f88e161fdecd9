package encyclopedia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ademuri/beetseer/internal/analysis"
)

const searchResponse = `{
  "created": "2024-01-01T00:00:00.000Z",
  "count": 2,
  "offset": 0,
  "artists": [
    {
      "id": "2dcd2f2e-2b72-4d1c-8d57-2f4b44d5c4aa",
      "name": "Phoebe Bridgers",
      "country": "us",
      "score": 100,
      "tags": [{"count": 3, "name": "indie folk"}, {"count": 1, "name": " "}, {"count": 1, "name": "singer-songwriter"}]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("beetseer", "test", "test@example.com")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	c.SetBaseURL(srv.URL)
	c.SetLimiter(nil)
	return c
}

func TestNewRequiresContact(t *testing.T) {
	if _, err := New("beetseer", "1.0", ""); err == nil {
		t.Error("New() with no contact: expected error, got nil")
	}
}

func TestLookupArtist(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/artist" {
			t.Errorf("path = %q, want /artist", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != `artist:"Phoebe Bridgers"` {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("fmt"); got != "json" {
			t.Errorf("fmt = %q, want json", got)
		}
		if got := r.Header.Get("User-Agent"); got != "beetseer/test ( test@example.com )" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse))
	})

	entry, err := c.LookupArtist(context.Background(), "Phoebe Bridgers")
	if err != nil {
		t.Fatalf("LookupArtist() error: %v", err)
	}
	want := &analysis.EncyclopediaEntry{Country: "US", Tags: []string{"indie folk", "singer-songwriter"}}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("LookupArtist() mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Errorf("requests = %d, want 1", calls.Load())
	}
}

func TestLookupArtistNoCountry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artists": [{"name": "Anonymous"}]}`))
	})

	entry, err := c.LookupArtist(context.Background(), "Anonymous")
	if err != nil {
		t.Fatalf("LookupArtist() error: %v", err)
	}
	if entry.Country != "" || entry.Tags == nil || len(entry.Tags) != 0 {
		t.Errorf("LookupArtist() = %+v, want empty country and tags", entry)
	}
}

func TestLookupArtistNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 0, "artists": []}`))
	})

	_, err := c.LookupArtist(context.Background(), "Nobody")
	if !errors.Is(err, analysis.ErrNotFound) {
		t.Errorf("LookupArtist() error = %v, want ErrNotFound", err)
	}
}

func TestLookupArtistUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusServiceUnavailable)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := newTestClient(t, test.handler)
			_, err := c.LookupArtist(context.Background(), "Phoebe Bridgers")
			if !errors.Is(err, analysis.ErrUnavailable) {
				t.Errorf("LookupArtist() error = %v, want ErrUnavailable", err)
			}
			if errors.Is(err, analysis.ErrNotFound) {
				t.Errorf("LookupArtist() error = %v matches ErrNotFound", err)
			}
		})
	}
}

func TestLookupArtistEscapesQuotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); !strings.Contains(got, `\"Weird Al\"`) {
			t.Errorf("query = %q, want escaped quotes", got)
		}
		w.Write([]byte(searchResponse))
	})
	if _, err := c.LookupArtist(context.Background(), `"Weird Al" Yankovic`); err != nil {
		t.Fatalf("LookupArtist() error: %v", err)
	}
}
