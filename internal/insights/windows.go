package insights

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/meridian-labs/docsight/internal/logger"
)

// tokenCounter counts model tokens in text. Kept as a small interface so
// tests do not need the real BPE tables.
type tokenCounter interface {
	Count(text string) int
}

// tiktokenCounter counts with the cl100k_base encoding used by the GPT-4
// model family.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func newTokenCounter(model string) tokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		// Roughly four characters per token for English prose.
		logger.Warn("Token encoding unavailable, estimating by length: %v", err)
		return estimatingCounter{}
	}
	return &tiktokenCounter{enc: enc}
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

type estimatingCounter struct{}

func (estimatingCounter) Count(text string) int { return len(text) / 4 }

// splitWindows breaks document text into token-bounded extraction windows,
// aligned to paragraph boundaries. A single paragraph over the budget gets
// its own window rather than being cut mid-sentence.
func splitWindows(text string, counter tokenCounter, maxTokens int) []string {
	if counter.Count(text) <= maxTokens {
		return []string{text}
	}

	var windows []string
	var current []string
	tokens := 0

	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		n := counter.Count(para)
		if tokens+n > maxTokens && len(current) > 0 {
			windows = append(windows, strings.Join(current, "\n\n"))
			current = nil
			tokens = 0
		}
		current = append(current, para)
		tokens += n
	}
	if len(current) > 0 {
		windows = append(windows, strings.Join(current, "\n\n"))
	}
	return windows
}
