// Package plaintext extracts text-like objects as-is.
package plaintext

import (
	"context"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents. It is the broad fallback for
// anything served with a text media type.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMediaTypes returns the media type prefixes this extractor
// handles. "text/" covers markdown, HTML and friends.
func (e *Extractor) SupportedMediaTypes() []string {
	return []string{
		"text/",
		"application/json",
		"application/xml",
	}
}

// Extract normalises line endings and strips a UTF-8 BOM.
func (e *Extractor) Extract(_ context.Context, obj *domain.SourceObject) (string, error) {
	if obj == nil {
		return "", domain.ErrInvalidInput
	}

	text := string(obj.Content)
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyContent
	}
	return text, nil
}
