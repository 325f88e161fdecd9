package analysis

import (
	"strings"
	"testing"
)

func TestResolveGenrePriority(t *testing.T) {
	catalog := &ArtistMetadata{Genres: []string{"", "  indie folk "}}
	encyclopedia := &EncyclopediaEntry{Country: "US", Tags: []string{"singer-songwriter"}}

	tests := []struct {
		name         string
		catalog      *ArtistMetadata
		encyclopedia *EncyclopediaEntry
		overrides    Overrides
		want         string
	}{
		{"override wins", catalog, encyclopedia, Overrides{Genre: " Dream Pop "}, "Dream Pop"},
		{"blank override ignored", catalog, encyclopedia, Overrides{Genre: "   "}, "indie folk"},
		{"catalog before encyclopedia", catalog, encyclopedia, Overrides{}, "indie folk"},
		{"encyclopedia when catalog empty", &ArtistMetadata{Genres: []string{}}, encyclopedia, Overrides{}, "singer-songwriter"},
		{"encyclopedia when catalog nil", nil, encyclopedia, Overrides{}, "singer-songwriter"},
		{"fallback", &ArtistMetadata{}, &EncyclopediaEntry{}, Overrides{}, FallbackGenre},
		{"fallback with no sources", nil, nil, Overrides{}, FallbackGenre},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Resolve(test.catalog, test.encyclopedia, test.overrides)
			if got.Genre != test.want {
				t.Errorf("Resolve().Genre = %q, want %q", got.Genre, test.want)
			}
		})
	}
}

func TestResolveOrigin(t *testing.T) {
	tests := []struct {
		name         string
		encyclopedia *EncyclopediaEntry
		overrides    Overrides
		want         string
	}{
		{"override wins", &EncyclopediaEntry{Country: "PK"}, Overrides{OriginCountry: "US"}, "US"},
		{"encyclopedia country", &EncyclopediaEntry{Country: "GB"}, Overrides{}, "GB"},
		{"blank country", &EncyclopediaEntry{Country: " "}, Overrides{}, UnknownCountry},
		{"no encyclopedia", nil, Overrides{}, UnknownCountry},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Resolve(&ArtistMetadata{}, test.encyclopedia, test.overrides)
			if got.OriginCountry != test.want {
				t.Errorf("Resolve().OriginCountry = %q, want %q", got.OriginCountry, test.want)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	catalog := &ArtistMetadata{Genres: []string{"k-pop", "dance pop"}}
	encyclopedia := &EncyclopediaEntry{Country: "KR", Tags: []string{"pop"}}

	first := Resolve(catalog, encyclopedia, Overrides{})
	for i := 0; i < 10; i++ {
		if got := Resolve(catalog, encyclopedia, Overrides{}); got != first {
			t.Fatalf("Resolve() = %+v on run %d, want %+v", got, i, first)
		}
	}
	if strings.Join(catalog.Genres, ",") != "k-pop,dance pop" {
		t.Errorf("Resolve() modified catalog genres: %v", catalog.Genres)
	}
}
