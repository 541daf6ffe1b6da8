// Package tabular renders CSV data as labelled text so downstream
// chunking and insight extraction see column context on every row.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles CSV documents.
type Extractor struct{}

// New creates a new tabular extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMediaTypes returns the media types this extractor handles.
func (e *Extractor) SupportedMediaTypes() []string {
	return []string{"text/csv"}
}

// Extract renders the CSV with the header repeated on each row, one
// "column: value" pair per cell. Ragged rows are tolerated.
func (e *Extractor) Extract(_ context.Context, obj *domain.SourceObject) (string, error) {
	if obj == nil {
		return "", domain.ErrInvalidInput
	}

	reader := csv.NewReader(strings.NewReader(string(obj.Content)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", domain.ErrEmptyContent
		}
		return "", fmt.Errorf("read CSV header: %w", err)
	}

	var b strings.Builder
	b.WriteString("Columns: " + strings.Join(header, ", ") + "\n")

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read CSV row: %w", err)
		}

		var pairs []string
		for i, cell := range record {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			name := fmt.Sprintf("column %d", i+1)
			if i < len(header) {
				name = header[i]
			}
			pairs = append(pairs, name+": "+cell)
		}
		if len(pairs) > 0 {
			b.WriteString("\n" + strings.Join(pairs, " | ") + "\n")
			rows++
		}
	}

	if rows == 0 {
		return "", domain.ErrEmptyContent
	}
	return b.String(), nil
}
