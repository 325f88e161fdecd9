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
package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Sources return errors wrapping one of these.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("source unavailable")
)

// Unavailable wraps err so that it matches ErrUnavailable.
func Unavailable(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrUnavailable, err)
}

type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type MissingCredentialsError struct {
	Missing []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("catalog credentials required: missing %s", strings.Join(e.Missing, ", "))
}

type NotFoundError struct {
	Artist string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("artist %q not found, check the spelling and try again", e.Artist)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IneligibleOriginError is a policy denial rather than a failure; the
// boundary renders Message to the caller.
type IneligibleOriginError struct {
	Artist  string
	Country string
	Message string
}

func (e *IneligibleOriginError) Error() string {
	return e.Message
}

// OriginMessage builds the response body for the denial.
func (e *IneligibleOriginError) OriginMessage() OriginMessage {
	var m OriginMessage
	m.ArtistName = e.Artist
	m.Analysis.ArtistOrigin.Message = e.Message
	return m
}

type CatalogUnavailableError struct {
	Err error
}

func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("catalog lookup failed: %v", e.Err)
}

func (e *CatalogUnavailableError) Unwrap() error { return e.Err }

type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating analysis: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SchemaDecodeError means the model output could not be parsed at all.
type SchemaDecodeError struct {
	Raw string
	Err error
}

func (e *SchemaDecodeError) Error() string {
	return fmt.Sprintf("decoding model output: %v", e.Err)
}

func (e *SchemaDecodeError) Unwrap() error { return e.Err }

// SchemaShapeError means the model output parsed but does not match the
// document schema. Problems lists every violation found.
type SchemaShapeError struct {
	Raw      string
	Problems []string
}

func (e *SchemaShapeError) Error() string {
	return fmt.Sprintf("model output does not match schema: %s", strings.Join(e.Problems, "; "))
}

// Stable outcome codes reported to callers and metrics.
const (
	CodeOK                 = "ok"
	CodeInvalidRequest     = "invalid_request"
	CodeMissingCredentials = "missing_credentials"
	CodeNotFound           = "artist_not_found"
	CodeIneligibleOrigin   = "ineligible_origin"
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeGenerationFailed   = "generation_failed"
	CodeSchemaDecode       = "schema_decode"
	CodeSchemaShape        = "schema_shape"
	CodeInternal           = "internal"
)

// Code classifies err into one of the outcome codes. A nil error is CodeOK.
func Code(err error) string {
	var (
		invalid    *InvalidRequestError
		missing    *MissingCredentialsError
		notFound   *NotFoundError
		ineligible *IneligibleOriginError
		catalog    *CatalogUnavailableError
		generation *GenerationError
		decodeErr  *SchemaDecodeError
		shapeErr   *SchemaShapeError
	)
	switch {
	case err == nil:
		return CodeOK
	case errors.As(err, &invalid):
		return CodeInvalidRequest
	case errors.As(err, &missing):
		return CodeMissingCredentials
	case errors.As(err, &notFound):
		return CodeNotFound
	case errors.As(err, &ineligible):
		return CodeIneligibleOrigin
	case errors.As(err, &catalog):
		return CodeCatalogUnavailable
	case errors.As(err, &generation):
		return CodeGenerationFailed
	case errors.As(err, &decodeErr):
		return CodeSchemaDecode
	case errors.As(err, &shapeErr):
		return CodeSchemaShape
	default:
		return CodeInternal
	}
}
