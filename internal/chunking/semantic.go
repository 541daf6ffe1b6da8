package chunking

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/logger"
)

// chunkSemantic splits the text into sentences, embeds each one and
// greedily groups an unplaced sentence with its most-similar still-unplaced
// peers until the size budget is reached. Any embedding failure falls back
// to fixed-window chunking; semantic grouping is an optimisation, never a
// requirement.
func (e *Engine) chunkSemantic(ctx context.Context, text string) []piece {
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return []piece{{content: text, strategy: domain.StrategySemantic, meta: map[string]any{"sentence_count": len(sentences)}}}
	}

	if e.embedder == nil {
		return e.chunkWindow(text)
	}

	vectors, err := e.embedder.EmbedBatch(ctx, sentences)
	if err != nil || len(vectors) != len(sentences) {
		logger.Warn("Semantic chunking unavailable, using fixed windows: %v", err)
		return e.chunkWindow(text)
	}

	var pieces []piece
	used := make([]bool, len(sentences))

	for i := range sentences {
		if used[i] {
			continue
		}
		group := []string{sentences[i]}
		size := len(sentences[i])
		used[i] = true

		// Rank the remaining sentences by similarity to the seed.
		type scored struct {
			idx int
			sim float64
		}
		var candidates []scored
		for j := range sentences {
			if used[j] {
				continue
			}
			sim := cosineSimilarity(vectors[i], vectors[j])
			if sim >= e.cfg.SemanticThreshold {
				candidates = append(candidates, scored{idx: j, sim: sim})
			}
		}
		sort.Slice(candidates, func(a, b int) bool { return candidates[a].sim > candidates[b].sim })

		for _, c := range candidates {
			if size+len(sentences[c.idx])+1 > e.cfg.MaxChunkSize {
				continue
			}
			group = append(group, sentences[c.idx])
			size += len(sentences[c.idx]) + 1
			used[c.idx] = true
		}

		pieces = append(pieces, piece{
			content:  strings.Join(group, " "),
			strategy: domain.StrategySemantic,
			meta:     map[string]any{"sentence_count": len(group)},
		})
	}
	return pieces
}

// splitSentences breaks text at sentence-final punctuation followed by
// whitespace and an uppercase letter.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	var out []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j > i+1 && j < len(runes) && unicode.IsUpper(runes[j]) {
			sentence := strings.TrimSpace(string(runes[start : i+1]))
			if sentence != "" {
				out = append(out, sentence)
			}
			start = j
			i = j - 1
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
