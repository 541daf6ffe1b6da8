package driven

import (
	"context"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// Extractor converts a raw object into plain text.
// Each extractor handles specific media types (e.g. PDF, CSV).
type Extractor interface {
	// SupportedMediaTypes returns the media types this extractor handles.
	// Entries are matched by prefix, so "text/" covers all text subtypes.
	SupportedMediaTypes() []string

	// Extract converts the object's raw bytes into plain text.
	Extract(ctx context.Context, obj *domain.SourceObject) (string, error)
}

// ExtractorRegistry selects an extractor by media type and runs it.
type ExtractorRegistry interface {
	// Extract resolves the object's media type, picks the matching
	// extractor and returns the extracted text. Returns
	// domain.ErrUnsupportedMedia when no extractor matches.
	Extract(ctx context.Context, obj *domain.SourceObject) (string, error)
}
