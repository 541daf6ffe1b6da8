// Package pdf extracts text from PDF documents via the pdftotext tool.
package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// CommandRunner executes an external command and returns its stdout.
// Abstracted so tests do not need poppler installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor shells out to pdftotext for text extraction.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor using the system pdftotext binary.
func New() *Extractor {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// SupportedMediaTypes returns the media types this extractor handles.
func (e *Extractor) SupportedMediaTypes() []string {
	return []string{"application/pdf"}
}

// Extract writes the PDF to a temp file and runs pdftotext over it.
func (e *Extractor) Extract(ctx context.Context, obj *domain.SourceObject) (string, error) {
	if obj == nil {
		return "", domain.ErrInvalidInput
	}
	if len(obj.Content) == 0 {
		return "", domain.ErrEmptyContent
	}

	tmp, err := os.CreateTemp("", "docsight-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(obj.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// "-" sends extracted text to stdout.
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		if _, lookErr := exec.LookPath("pdftotext"); lookErr != nil {
			return "", fmt.Errorf("pdftotext not found: %s: %w", InstallInstructions(), lookErr)
		}
		return "", fmt.Errorf("pdftotext failed for %s: %w", obj.Ref.Identity(), err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", domain.ErrEmptyContent
	}
	return text, nil
}

// InstallInstructions describes how to install the pdftotext dependency.
func InstallInstructions() string {
	return "install poppler for pdftotext (macOS: brew install poppler, Debian/Ubuntu: apt install poppler-utils)"
}
