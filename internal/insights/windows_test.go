package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCounter keeps window tests independent of real BPE tables.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func TestSplitWindows_SingleWindowUnderBudget(t *testing.T) {
	text := "one short paragraph\n\nand another"

	windows := splitWindows(text, wordCounter{}, 100)

	require.Len(t, windows, 1)
	assert.Equal(t, text, windows[0])
}

func TestSplitWindows_AlignsToParagraphs(t *testing.T) {
	paras := []string{
		strings.Repeat("alpha ", 6),  // 6 tokens
		strings.Repeat("bravo ", 6),  // 6 tokens
		strings.Repeat("charlie ", 6), // 6 tokens
	}
	text := strings.Join(paras, "\n\n")

	windows := splitWindows(text, wordCounter{}, 10)

	require.Len(t, windows, 3)
	for i, w := range windows {
		assert.Equal(t, strings.TrimSpace(paras[i]), strings.TrimSpace(w))
	}
}

func TestSplitWindows_PacksParagraphsUpToBudget(t *testing.T) {
	paras := []string{
		strings.Repeat("a ", 4),
		strings.Repeat("b ", 4),
		strings.Repeat("c ", 4),
	}
	text := strings.Join(paras, "\n\n")

	windows := splitWindows(text, wordCounter{}, 8)

	require.Len(t, windows, 2)
	assert.Contains(t, windows[0], "a")
	assert.Contains(t, windows[0], "b")
	assert.Contains(t, windows[1], "c")
}

func TestSplitWindows_OversizeParagraphGetsOwnWindow(t *testing.T) {
	huge := strings.Repeat("word ", 50)
	text := "small intro\n\n" + huge + "\n\nsmall outro"

	windows := splitWindows(text, wordCounter{}, 10)

	require.Len(t, windows, 3)
	assert.Equal(t, "small intro", strings.TrimSpace(windows[0]))
	assert.Equal(t, strings.TrimSpace(huge), strings.TrimSpace(windows[1]))
	assert.Equal(t, "small outro", strings.TrimSpace(windows[2]))
}

func TestSplitWindows_SkipsBlankParagraphs(t *testing.T) {
	text := strings.Repeat("x ", 12) + "\n\n   \n\n" + strings.Repeat("y ", 12)

	windows := splitWindows(text, wordCounter{}, 12)

	require.Len(t, windows, 2)
}
