package analysis

import "strings"

const (
	FallbackGenre  = "Classic"
	UnknownCountry = "Unknown"
)

// Resolve determines the genre and origin of an artist from whatever the
// sources returned. catalog and encyclopedia may be nil.
//
// Genre: override, then the first catalog genre, then the first encyclopedia
// tag, then FallbackGenre. Origin: override, then the encyclopedia country,
// then UnknownCountry.
func Resolve(catalog *ArtistMetadata, encyclopedia *EncyclopediaEntry, overrides Overrides) ResolvedIdentity {
	id := ResolvedIdentity{
		Genre:         FallbackGenre,
		OriginCountry: UnknownCountry,
	}

	switch {
	case strings.TrimSpace(overrides.Genre) != "":
		id.Genre = strings.TrimSpace(overrides.Genre)
	case catalog != nil && firstNonBlank(catalog.Genres) != "":
		id.Genre = firstNonBlank(catalog.Genres)
	case encyclopedia != nil && firstNonBlank(encyclopedia.Tags) != "":
		id.Genre = firstNonBlank(encyclopedia.Tags)
	}

	switch {
	case strings.TrimSpace(overrides.OriginCountry) != "":
		id.OriginCountry = strings.TrimSpace(overrides.OriginCountry)
	case encyclopedia != nil && strings.TrimSpace(encyclopedia.Country) != "":
		id.OriginCountry = strings.TrimSpace(encyclopedia.Country)
	}

	return id
}

// firstNonBlank returns the first entry that isn't whitespace.
func firstNonBlank(values []string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
