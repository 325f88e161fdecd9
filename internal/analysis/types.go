package analysis

// ArtistMetadata is the catalog's view of an artist.
type ArtistMetadata struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Popularity  int            `json:"popularity" yaml:"popularity"`
	Genres      []string       `json:"genres" yaml:"genres"`
	Followers   int            `json:"followers" yaml:"followers"`
	ImageURL    string         `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	ExternalURL string         `json:"external_url,omitempty" yaml:"external_url,omitempty"`
	TopTracks   []TrackSummary `json:"top_tracks" yaml:"top_tracks"`
	TopAlbums   []AlbumSummary `json:"top_albums" yaml:"top_albums"`
}

type TrackSummary struct {
	Name       string `json:"name" yaml:"name"`
	Album      string `json:"album,omitempty" yaml:"album,omitempty"`
	Popularity int    `json:"popularity" yaml:"popularity"`
}

type AlbumSummary struct {
	Name        string `json:"name" yaml:"name"`
	ReleaseDate string `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	TotalTracks int    `json:"total_tracks,omitempty" yaml:"total_tracks,omitempty"`
}

// ListeningStats is the listening network's best-effort view of an artist.
type ListeningStats struct {
	ListenerCount int             `json:"listener_count" yaml:"listener_count"`
	PlayCount     int             `json:"play_count" yaml:"play_count"`
	BioSummary    string          `json:"bio_summary" yaml:"bio_summary"`
	TopTags       []string        `json:"top_tags" yaml:"top_tags"`
	TopTracks     []WeightedTrack `json:"top_tracks" yaml:"top_tracks"`
	TopAlbums     []WeightedAlbum `json:"top_albums" yaml:"top_albums"`
}

type WeightedTrack struct {
	Name      string `json:"name" yaml:"name"`
	PlayCount int    `json:"play_count" yaml:"play_count"`
}

type WeightedAlbum struct {
	Name      string `json:"name" yaml:"name"`
	PlayCount int    `json:"play_count" yaml:"play_count"`
}

// EncyclopediaEntry is the result of a single encyclopedia search. Country
// is an ISO 3166-1 alpha-2 code, or empty when the entry has none.
type EncyclopediaEntry struct {
	Country string   `json:"country" yaml:"country"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// Credentials authenticate a single request against the catalog.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Overrides are caller-supplied values that take precedence over anything
// the pipeline would resolve or the model would infer. Empty strings and a
// zero ProjectedGrowth mean "not supplied".
type Overrides struct {
	Genre              string
	ProjectedGrowth    int
	GenreCompatibility string
	OriginCountry      string
}

// Any reports whether at least one override was supplied.
func (o Overrides) Any() bool {
	return o.Genre != "" || o.ProjectedGrowth != 0 || o.GenreCompatibility != "" || o.OriginCountry != ""
}

// Capabilities select optional parts of the pipeline.
type Capabilities struct {
	WithListeningStats bool
}

type Request struct {
	Artist       string
	Credentials  Credentials
	Overrides    Overrides
	Capabilities Capabilities
}

// ResolvedIdentity is the pipeline's own determination of an artist's genre
// and origin. It is authoritative over anything the model reports.
type ResolvedIdentity struct {
	Genre         string `json:"genre" yaml:"genre"`
	OriginCountry string `json:"origin_country" yaml:"origin_country"`
}

// Response is what the caller receives for a successful analysis.
type Response struct {
	ArtistName string    `json:"artist_name" yaml:"artist_name"`
	Analysis   *Document `json:"analysis" yaml:"analysis"`
}

// OriginMessage is returned in place of a Document when the artist's origin
// is not eligible for analysis.
type OriginMessage struct {
	ArtistName string `json:"artist_name"`
	Analysis   struct {
		ArtistOrigin struct {
			Message string `json:"message"`
		} `json:"artist_origin"`
	} `json:"analysis"`
}
