/*
Copyright 2026 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package listening

import (
	"context"
	"errors"
	"testing"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/google/go-cmp/cmp"

	"github.com/ademuri/beetseer/internal/analysis"
)

type fakeAPI struct {
	info      artistInfo
	infoErrs  []error
	tracks    []namedCount
	tracksErr error
	albums    []namedCount
	infoCalls int
}

func (f *fakeAPI) Info(name string) (artistInfo, error) {
	f.infoCalls++
	if len(f.infoErrs) > 0 {
		err := f.infoErrs[0]
		f.infoErrs = f.infoErrs[1:]
		if err != nil {
			return artistInfo{}, err
		}
	}
	return f.info, nil
}

func (f *fakeAPI) TopTracks(name string, limit int) ([]namedCount, error) {
	return f.tracks, f.tracksErr
}

func (f *fakeAPI) TopAlbums(name string, limit int) ([]namedCount, error) {
	return f.albums, nil
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "secret"); err == nil {
		t.Error("New() with no API key: expected error, got nil")
	}
	if _, err := New("key", ""); err == nil {
		t.Error("New() with no secret: expected error, got nil")
	}
}

func TestListeningStats(t *testing.T) {
	api := &fakeAPI{
		info: artistInfo{
			Listeners: "1520344",
			Plays:     "98000123",
			Summary:   `Phoebe Lucille Bridgers is an American singer-songwriter. <a href="https://www.last.fm/music/Phoebe+Bridgers">Read more on Last.fm</a>`,
			Tags:      []string{"indie", "folk", " ", "singer-songwriter", "indie folk", "sad", "american"},
		},
		tracks: []namedCount{{"Kyoto", "4000000"}, {"Motion Sickness", "3500000"}, {"Garden Song", "2000000"}, {"Savior Complex", "1000000"}},
		albums: []namedCount{{"Punisher", "30000000"}, {"Stranger in the Alps", "25000000"}, {"Copycat Killer", "1"}},
	}
	c := &Client{api: api}

	got, err := c.ListeningStats(context.Background(), "Phoebe Bridgers")
	if err != nil {
		t.Fatalf("ListeningStats() error: %v", err)
	}
	want := &analysis.ListeningStats{
		ListenerCount: 1520344,
		PlayCount:     98000123,
		BioSummary:    "Phoebe Lucille Bridgers is an American singer-songwriter.",
		TopTags:       []string{"indie", "folk", "singer-songwriter", "indie folk", "sad"},
		TopTracks: []analysis.WeightedTrack{
			{Name: "Kyoto", PlayCount: 4000000},
			{Name: "Motion Sickness", PlayCount: 3500000},
			{Name: "Garden Song", PlayCount: 2000000},
		},
		TopAlbums: []analysis.WeightedAlbum{
			{Name: "Punisher", PlayCount: 30000000},
			{Name: "Stranger in the Alps", PlayCount: 25000000},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListeningStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestListeningStatsOptionalCallsFail(t *testing.T) {
	api := &fakeAPI{
		info:      artistInfo{Listeners: "10", Plays: "not a number"},
		tracksErr: errors.New("boom"),
	}
	c := &Client{api: api}

	got, err := c.ListeningStats(context.Background(), "Somebody")
	if err != nil {
		t.Fatalf("ListeningStats() error: %v", err)
	}
	if got.ListenerCount != 10 || got.PlayCount != 0 {
		t.Errorf("counts = %d, %d, want 10, 0", got.ListenerCount, got.PlayCount)
	}
	if got.TopTracks == nil || len(got.TopTracks) != 0 {
		t.Errorf("TopTracks = %#v, want empty", got.TopTracks)
	}
}

func TestListeningStatsNotFound(t *testing.T) {
	api := &fakeAPI{infoErrs: []error{&lastfm.LastfmError{Code: 6, Message: "The artist you supplied could not be found"}}}
	c := &Client{api: api}

	_, err := c.ListeningStats(context.Background(), "Nobody")
	if !errors.Is(err, analysis.ErrNotFound) {
		t.Errorf("ListeningStats() error = %v, want ErrNotFound", err)
	}
	if api.infoCalls != 1 {
		t.Errorf("info calls = %d, want 1", api.infoCalls)
	}
}

func TestListeningStatsDoesNotRetry(t *testing.T) {
	api := &fakeAPI{
		info:     artistInfo{Listeners: "5"},
		infoErrs: []error{&lastfm.LastfmError{Code: 16, Message: "There was a temporary error processing your request"}},
	}
	c := &Client{api: api}

	_, err := c.ListeningStats(context.Background(), "Somebody")
	if !errors.Is(err, analysis.ErrUnavailable) {
		t.Errorf("ListeningStats() error = %v, want ErrUnavailable", err)
	}
	if api.infoCalls != 1 {
		t.Errorf("info calls = %d, want 1", api.infoCalls)
	}
}

func TestListeningStatsUnavailable(t *testing.T) {
	api := &fakeAPI{infoErrs: []error{errors.New("dial tcp: connection refused")}}
	c := &Client{api: api}

	_, err := c.ListeningStats(context.Background(), "Somebody")
	if !errors.Is(err, analysis.ErrUnavailable) {
		t.Errorf("ListeningStats() error = %v, want ErrUnavailable", err)
	}
}

func TestCleanSummary(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"  plain bio  ", "plain bio"},
		{`bio <a href="x">Read more</a>`, "bio"},
	}
	for _, test := range tests {
		if got := cleanSummary(test.in); got != test.want {
			t.Errorf("cleanSummary(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
