// Package extractors converts raw stored objects into plain text.
// Each media type gets its own sub-package; the registry dispatches by
// media-type prefix.
package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry holds the registered extractors and dispatches by media type.
// Extractors are tried in registration order; register specific types
// (CSV, PDF) before broad prefixes like "text/".
type Registry struct {
	extractors []driven.Extractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// Register appends an extractor to the dispatch order.
func (r *Registry) Register(e driven.Extractor) {
	r.extractors = append(r.extractors, e)
}

// Extract resolves the object's media type and runs the first extractor
// whose supported types prefix-match it.
func (r *Registry) Extract(ctx context.Context, obj *domain.SourceObject) (string, error) {
	if obj == nil {
		return "", domain.ErrInvalidInput
	}

	mediaType := obj.Ref.ResolveMediaType()
	for _, e := range r.extractors {
		for _, supported := range e.SupportedMediaTypes() {
			if strings.HasPrefix(mediaType, supported) {
				logger.Debug("Extracting %s as %s", obj.Ref.Identity(), mediaType)
				return e.Extract(ctx, obj)
			}
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, mediaType)
}

// SupportedMediaTypes returns every media type prefix the registry can
// dispatch.
func (r *Registry) SupportedMediaTypes() []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range r.extractors {
		for _, mt := range e.SupportedMediaTypes() {
			if !seen[mt] {
				seen[mt] = true
				out = append(out, mt)
			}
		}
	}
	return out
}
