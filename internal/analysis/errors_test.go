package analysis

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, CodeOK},
		{&InvalidRequestError{Field: "artist", Reason: "required"}, CodeInvalidRequest},
		{&MissingCredentialsError{Missing: []string{"client ID"}}, CodeMissingCredentials},
		{&NotFoundError{Artist: "Nobody"}, CodeNotFound},
		{&IneligibleOriginError{Artist: "Atif Aslam", Country: "PK"}, CodeIneligibleOrigin},
		{&CatalogUnavailableError{Err: errors.New("boom")}, CodeCatalogUnavailable},
		{&GenerationError{Err: errors.New("boom")}, CodeGenerationFailed},
		{&SchemaDecodeError{Err: errors.New("boom")}, CodeSchemaDecode},
		{&SchemaShapeError{Problems: []string{"boom"}}, CodeSchemaShape},
		{fmt.Errorf("wrapped: %w", &NotFoundError{Artist: "Nobody"}), CodeNotFound},
		{errors.New("boom"), CodeInternal},
	}
	for _, test := range tests {
		if got := Code(test.err); got != test.want {
			t.Errorf("Code(%v) = %q, want %q", test.err, got, test.want)
		}
	}
}

func TestUnavailableKeepsChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("musicbrainz", cause)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("errors.Is(%v, ErrUnavailable) = false", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(%v, ErrNotFound) = true", err)
	}
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := &NotFoundError{Artist: "Nobody"}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(NotFoundError, ErrNotFound) = false")
	}
	want := `artist "Nobody" not found, check the spelling and try again`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIneligibleOriginMessage(t *testing.T) {
	err := &IneligibleOriginError{Artist: "Atif Aslam", Country: "PK", Message: "no analysis for PK"}
	m := err.OriginMessage()
	if m.ArtistName != "Atif Aslam" || m.Analysis.ArtistOrigin.Message != "no analysis for PK" {
		t.Errorf("OriginMessage() = %+v", m)
	}
}
