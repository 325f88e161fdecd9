// Package encyclopedia looks up artist origin and tags on MusicBrainz.
package encyclopedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/ademuri/beetseer/internal/analysis"
)

const (
	source = "musicbrainz"

	DefaultBaseURL = "https://musicbrainz.org/ws/2/"

	// MusicBrainz asks anonymous clients for at most one request per second.
	defaultInterval = time.Second
)

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a client. MusicBrainz rejects requests without a meaningful
// User-Agent, so contact (an email address or URL) is required.
func New(appName, version, contact string) (*Client, error) {
	if contact == "" {
		return nil, errors.New("musicbrainz: contact is required for the User-Agent")
	}
	return &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  fmt.Sprintf("%s/%s ( %s )", appName, version, contact),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(defaultInterval), 1),
	}, nil
}

func (c *Client) SetBaseURL(u string) {
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	c.baseURL = u
}

func (c *Client) SetLimiter(l *rate.Limiter) { c.limiter = l }

// LookupArtist returns the country and tags of the best match for name,
// using a single search request.
func (c *Client) LookupArtist(ctx context.Context, name string) (*analysis.EncyclopediaEntry, error) {
	body, err := c.search(ctx, name)
	if err != nil {
		return nil, analysis.Unavailable(source, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, analysis.Unavailable(source, errors.New("malformed response"))
	}

	artist := gjson.GetBytes(body, "artists.0")
	if !artist.Exists() {
		return nil, fmt.Errorf("%s: artist %q: %w", source, name, analysis.ErrNotFound)
	}

	entry := &analysis.EncyclopediaEntry{
		Country: strings.ToUpper(artist.Get("country").String()),
		Tags:    []string{},
	}
	for _, tag := range artist.Get("tags.#.name").Array() {
		if t := strings.TrimSpace(tag.String()); t != "" {
			entry.Tags = append(entry.Tags, t)
		}
	}
	return entry, nil
}

func (c *Client) search(ctx context.Context, name string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("query", `artist:"`+strings.ReplaceAll(name, `"`, `\"`)+`"`)
	q.Set("limit", "1")
	q.Set("fmt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"artist?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
