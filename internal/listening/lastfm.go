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

// Package listening fetches listener statistics from last.fm.
package listening

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"golang.org/x/time/rate"

	"github.com/ademuri/beetseer/internal/analysis"
)

const (
	source = "last.fm"

	maxTags   = 5
	maxTracks = 3
	maxAlbums = 2

	// last.fm error code for "The artist you supplied could not be found".
	errCodeInvalidArtist = 6
)

type artistInfo struct {
	Listeners string
	Plays     string
	Summary   string
	Tags      []string
}

type namedCount struct {
	Name      string
	PlayCount string
}

// artistAPI is the subset of last.fm used here.
type artistAPI interface {
	Info(name string) (artistInfo, error)
	TopTracks(name string, limit int) ([]namedCount, error)
	TopAlbums(name string, limit int) ([]namedCount, error)
}

type Client struct {
	api     artistAPI
	limiter *rate.Limiter
}

func New(apiKey, secret string) (*Client, error) {
	if apiKey == "" || secret == "" {
		return nil, errors.New("last.fm API key and secret are required")
	}
	client := lastfm.New(apiKey, secret)
	client.SetUserAgent("beetseer/1.0")
	return &Client{
		api:     &lastfmAPI{client: client},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
	}, nil
}

// ListeningStats returns listener statistics for name. An unknown artist
// is reported as analysis.ErrNotFound; any other failure of the main info
// call as analysis.ErrUnavailable. Top tracks and albums are optional.
func (c *Client) ListeningStats(ctx context.Context, name string) (*analysis.ListeningStats, error) {
	if err := c.wait(ctx); err != nil {
		return nil, analysis.Unavailable(source, err)
	}
	info, err := c.api.Info(name)
	if err != nil {
		var lerr *lastfm.LastfmError
		if errors.As(err, &lerr) && lerr.Code == errCodeInvalidArtist {
			return nil, fmt.Errorf("%s: artist %q: %w", source, name, analysis.ErrNotFound)
		}
		return nil, analysis.Unavailable(source, fmt.Errorf("artist.getInfo: %w", err))
	}

	stats := &analysis.ListeningStats{
		ListenerCount: atoi(info.Listeners),
		PlayCount:     atoi(info.Plays),
		BioSummary:    cleanSummary(info.Summary),
		TopTags:       []string{},
		TopTracks:     []analysis.WeightedTrack{},
		TopAlbums:     []analysis.WeightedAlbum{},
	}
	for _, t := range info.Tags {
		if len(stats.TopTags) >= maxTags {
			break
		}
		if t = strings.TrimSpace(t); t != "" {
			stats.TopTags = append(stats.TopTags, t)
		}
	}

	if err := c.wait(ctx); err == nil {
		if tracks, err := c.api.TopTracks(name, maxTracks); err == nil {
			for i, t := range tracks {
				if i >= maxTracks {
					break
				}
				stats.TopTracks = append(stats.TopTracks, analysis.WeightedTrack{Name: t.Name, PlayCount: atoi(t.PlayCount)})
			}
		}
	}
	if err := c.wait(ctx); err == nil {
		if albums, err := c.api.TopAlbums(name, maxAlbums); err == nil {
			for i, a := range albums {
				if i >= maxAlbums {
					break
				}
				stats.TopAlbums = append(stats.TopAlbums, analysis.WeightedAlbum{Name: a.Name, PlayCount: atoi(a.PlayCount)})
			}
		}
	}

	return stats, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// cleanSummary drops the "Read more on Last.fm" link appended to every bio.
func cleanSummary(s string) string {
	if i := strings.Index(s, "<a href"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

type lastfmAPI struct {
	client *lastfm.Api
}

func (l *lastfmAPI) Info(name string) (artistInfo, error) {
	res, err := l.client.Artist.GetInfo(lastfm.P{
		"artist":      name,
		"autocorrect": 1,
	})
	if err != nil {
		return artistInfo{}, err
	}
	info := artistInfo{
		Listeners: res.Stats.Listeners,
		Plays:     res.Stats.Plays,
		Summary:   res.Bio.Summary,
	}
	for _, t := range res.Tags {
		info.Tags = append(info.Tags, t.Name)
	}
	return info, nil
}

func (l *lastfmAPI) TopTracks(name string, limit int) ([]namedCount, error) {
	res, err := l.client.Artist.GetTopTracks(lastfm.P{
		"artist":      name,
		"limit":       limit,
		"autocorrect": 1,
	})
	if err != nil {
		return nil, err
	}
	var out []namedCount
	for _, t := range res.Tracks {
		out = append(out, namedCount{Name: t.Name, PlayCount: t.PlayCount})
	}
	return out, nil
}

func (l *lastfmAPI) TopAlbums(name string, limit int) ([]namedCount, error) {
	res, err := l.client.Artist.GetTopAlbums(lastfm.P{
		"artist":      name,
		"limit":       limit,
		"autocorrect": 1,
	})
	if err != nil {
		return nil, err
	}
	var out []namedCount
	for _, a := range res.Albums {
		out = append(out, namedCount{Name: a.Name, PlayCount: a.PlayCount})
	}
	return out, nil
}
