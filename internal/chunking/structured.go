package chunking

import (
	"regexp"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// sectionHeaderPattern matches lines that open a new section: markdown
// headers, all-caps headings, numbered items and bullets.
var sectionHeaderPattern = regexp.MustCompile(`^(#{1,6}\s+.+|[A-Z][A-Z ]+|\d+\.\s+.+|[-*+]\s+.+)$`)

// maxHeaderLen keeps long prose lines that merely start like a list item
// from being mistaken for headers.
const maxHeaderLen = 100

// chunkStructured walks the text line by line, starting a new chunk at
// every detected header. Sections that outgrow the maximum are force-closed
// and marked truncated; sections below the minimum are folded forward.
func (e *Engine) chunkStructured(text string) []piece {
	var pieces []piece
	var section []string
	header := ""
	size := 0

	flush := func(truncated bool) {
		if len(section) == 0 {
			return
		}
		content := strings.Join(section, "\n")
		meta := map[string]any{
			"header":     header,
			"line_count": len(section),
		}
		if truncated {
			meta["truncated"] = true
		}
		pieces = append(pieces, piece{content: content, strategy: domain.StrategyStructured, meta: meta})
		section = nil
		size = 0
	}

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)

		if sectionHeaderPattern.MatchString(stripped) && len(stripped) < maxHeaderLen {
			// Undersized sections fold forward into the next one and
			// keep the header that opened the chunk.
			if size >= e.cfg.MinChunkSize {
				flush(false)
			}
			if len(section) == 0 {
				header = stripped
			}
		}

		section = append(section, line)
		size += len(line) + 1

		if size > e.cfg.MaxChunkSize {
			flush(true)
			header = ""
		}
	}
	flush(false)

	if len(pieces) == 0 {
		return []piece{{content: text, strategy: domain.StrategyStructured, meta: map[string]any{"header": ""}}}
	}
	return pieces
}
