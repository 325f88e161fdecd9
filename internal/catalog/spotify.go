// Package catalog looks up artists in the Spotify catalog.
package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ademuri/beetseer/internal/analysis"
)

const (
	source = "spotify"

	maxTopTracks = 3
	maxTopAlbums = 3

	// Market used for top tracks.
	defaultMarket = "US"
)

// Client searches the catalog. Credentials are supplied per request, so a
// Client holds no secrets of its own.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	tokenURL   string
	baseURL    string
	market     string
}

type Option func(*Client)

// WithEndpoints points the client at a different token and API endpoint.
func WithEndpoints(tokenURL, baseURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
		c.baseURL = baseURL
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithMarket(market string) Option {
	return func(c *Client) { c.market = market }
}

func New(limiter *rate.Limiter, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		limiter:    limiter,
		tokenURL:   spotifyauth.TokenURL,
		market:     defaultMarket,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SearchArtist returns the best match for name. It returns an error
// wrapping analysis.ErrNotFound if the search has no results and
// analysis.ErrUnavailable for any other failure.
func (c *Client) SearchArtist(ctx context.Context, creds analysis.Credentials, name string) (*analysis.ArtistMetadata, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, analysis.Unavailable(source, err)
		}
	}

	client := c.newAPI(ctx, creds)
	results, err := client.Search(ctx, name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, analysis.Unavailable(source, fmt.Errorf("searching for %q: %w", name, err))
	}
	if results.Artists == nil || len(results.Artists.Artists) == 0 {
		return nil, fmt.Errorf("%s: artist %q: %w", source, name, analysis.ErrNotFound)
	}

	artist := results.Artists.Artists[0]
	metadata := &analysis.ArtistMetadata{
		ID:          string(artist.ID),
		Name:        artist.Name,
		Popularity:  int(artist.Popularity),
		Genres:      append([]string{}, artist.Genres...),
		Followers:   int(artist.Followers.Count),
		ExternalURL: artist.ExternalURLs["spotify"],
		TopTracks:   []analysis.TrackSummary{},
		TopAlbums:   []analysis.AlbumSummary{},
	}
	if len(artist.Images) > 0 {
		metadata.ImageURL = artist.Images[0].URL
	}

	// Top tracks and albums are optional; errors leave them empty.
	if tracks, err := client.GetArtistsTopTracks(ctx, artist.ID, c.market); err == nil {
		for i, t := range tracks {
			if i >= maxTopTracks {
				break
			}
			metadata.TopTracks = append(metadata.TopTracks, analysis.TrackSummary{
				Name:       t.Name,
				Album:      t.Album.Name,
				Popularity: int(t.Popularity),
			})
		}
	}
	if albums, err := client.GetArtistAlbums(ctx, artist.ID, []spotify.AlbumType{spotify.AlbumTypeAlbum}, spotify.Limit(maxTopAlbums)); err == nil {
		for i, a := range albums.Albums {
			if i >= maxTopAlbums {
				break
			}
			metadata.TopAlbums = append(metadata.TopAlbums, analysis.AlbumSummary{
				Name:        a.Name,
				ReleaseDate: a.ReleaseDate,
				TotalTracks: int(a.TotalTracks),
			})
		}
	}

	return metadata, nil
}

func (c *Client) newAPI(ctx context.Context, creds analysis.Credentials) *spotify.Client {
	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.tokenURL,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	var opts []spotify.ClientOption
	if c.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.baseURL))
	}
	return spotify.New(config.Client(ctx), opts...)
}
