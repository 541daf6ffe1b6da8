package chunking

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/logger"
)

// Ensure Engine implements the port.
var _ driven.Chunker = (*Engine)(nil)

// Config holds the chunk size and detection tuning knobs. All sizes are in
// characters.
type Config struct {
	// MaxChunkSize bounds generic (structured, semantic, paragraph) chunks.
	MaxChunkSize int

	// MinChunkSize is the smallest section worth emitting on its own.
	MinChunkSize int

	// TranscriptTargetSize bounds accumulated speaker turns per chunk.
	TranscriptTargetSize int

	// SpeakerOverlap is how many prior turns are prepended, truncated,
	// as context when a transcript chunk starts mid-conversation.
	SpeakerOverlap int

	// SemanticThreshold is the minimum cosine similarity for grouping
	// sentences into one semantic chunk.
	SemanticThreshold float64

	// WindowSize and WindowOverlap shape the fixed-window fallback.
	WindowSize    int
	WindowOverlap int

	// TranscriptRatio is the fraction of non-blank lines that must match
	// a speaker pattern before a document counts as a transcript.
	TranscriptRatio float64

	// StructureRatio is the matching fraction for header/list/table lines.
	StructureRatio float64

	// ConversationalRatio is the fraction of words that must be question
	// or discourse markers before semantic chunking is chosen.
	ConversationalRatio float64
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:         800,
		MinChunkSize:         100,
		TranscriptTargetSize: 1500,
		SpeakerOverlap:       1,
		SemanticThreshold:    0.7,
		WindowSize:           400,
		WindowOverlap:        0,
		TranscriptRatio:      0.2,
		StructureRatio:       0.15,
		ConversationalRatio:  0.05,
	}
}

// Engine picks a chunking strategy per document and applies it.
// The embedder is optional: without one, conversational content falls back
// to fixed-window chunking instead of semantic grouping.
type Engine struct {
	cfg      Config
	embedder driven.EmbeddingService
}

// NewEngine creates an engine with the given tuning.
func NewEngine(cfg Config, embedder driven.EmbeddingService) *Engine {
	if cfg.MaxChunkSize <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, embedder: embedder}
}

// piece is a strategy's raw output before chunk identity is attached.
type piece struct {
	content  string
	strategy domain.ChunkStrategy
	meta     map[string]any
}

// Chunk classifies the text's shape and applies the first matching
// strategy. Evaluation order: transcript, structured, conversational,
// paragraph fallback. Very short content becomes a single window chunk.
func (e *Engine) Chunk(ctx context.Context, objectID, mediaType, text string) ([]domain.Chunk, error) {
	text = strings.ReplaceAll(text, "\r", "")
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyContent
	}

	fileName := path.Base(objectID)

	var pieces []piece
	switch {
	case len(text) < e.cfg.MinChunkSize:
		pieces = []piece{{content: text, strategy: domain.StrategyWindow, meta: map[string]any{"short_content": true}}}

	case strings.HasPrefix(mediaType, "audio/") || e.isTranscript(text, fileName):
		pieces = e.chunkBySpeaker(text)

	case e.isStructured(text):
		pieces = e.chunkStructured(text)

	case e.isConversational(text):
		pieces = e.chunkSemantic(ctx, text)

	default:
		pieces = e.chunkByParagraphs(text)
	}

	if len(pieces) == 0 {
		return nil, domain.ErrEmptyContent
	}

	logger.Debug("Chunked %s: %d chunks via %s", objectID, len(pieces), pieces[0].strategy)

	chunks := make([]domain.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.Chunk{
			ID:       uuid.NewString(),
			ObjectID: objectID,
			Index:    i,
			Content:  p.content,
			Strategy: p.strategy,
			Size:     len(p.content),
			Metadata: annotate(p.content, p.meta),
		}
	}
	return chunks, nil
}
