package chunking

import (
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// chunkByParagraphs splits on blank-line boundaries and accumulates
// paragraphs up to the size budget. Each new chunk carries the previous
// chunk's last paragraph forward as one paragraph of overlap.
func (e *Engine) chunkByParagraphs(text string) []piece {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	if len(paragraphs) == 0 {
		return []piece{{content: text, strategy: domain.StrategyParagraph, meta: map[string]any{"paragraph_count": 1}}}
	}

	var pieces []piece
	var current []string
	size := 0
	overlapped := false

	emit := func() {
		pieces = append(pieces, piece{
			content:  strings.Join(current, "\n\n"),
			strategy: domain.StrategyParagraph,
			meta: map[string]any{
				"paragraph_count": len(current),
				"has_overlap":     overlapped,
			},
		})
	}

	for _, para := range paragraphs {
		if size+len(para) > e.cfg.MaxChunkSize && len(current) > 0 {
			emit()
			if len(current) > 1 {
				last := current[len(current)-1]
				current = []string{last}
				size = len(last) + 2
				overlapped = true
			} else {
				current = nil
				size = 0
				overlapped = false
			}
		}
		current = append(current, para)
		size += len(para) + 2
	}
	if len(current) > 0 {
		emit()
	}
	return pieces
}
