package chunking

import "github.com/meridian-labs/docsight/internal/core/domain"

// chunkWindow is the fixed-size slicing fallback, used when no other
// strategy applies or a strategy's prerequisites (speaker labels, an
// embedding service) are missing.
func (e *Engine) chunkWindow(text string) []piece {
	size := e.cfg.WindowSize
	if size <= 0 {
		size = 400
	}
	step := size - e.cfg.WindowOverlap
	if step <= 0 {
		step = size
	}

	var pieces []piece
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		pieces = append(pieces, piece{
			content:  text[start:end],
			strategy: domain.StrategyWindow,
			meta:     map[string]any{"window": []int{start, end}},
		})
		if end == len(text) {
			break
		}
	}
	return pieces
}
