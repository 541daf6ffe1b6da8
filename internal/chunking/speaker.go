package chunking

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// speakerTurn is one speaker's contiguous contribution.
type speakerTurn struct {
	speaker string
	text    string
}

// Turn label shapes, tried in order. Each must capture (speaker, text).
var turnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Z][a-zA-Z ]+[a-zA-Z]):\s*(.+)$`),  // "John Doe: text"
	regexp.MustCompile(`^\[?([A-Z_]+ ?\d*)\]?:\s*(.+)$`),       // "SPEAKER_1: text"
	regexp.MustCompile(`^\[([^\]]+)\]\s*([A-Za-z].+)$`),        // "[10:30 John] text"
	regexp.MustCompile(`^([A-Za-z ]+[A-Za-z])\s+-\s+(.+)$`),    // "John Doe - text"
}

// contextTruncateLen bounds how much of a prior turn is carried as context.
const contextTruncateLen = 100

// chunkBySpeaker segments a transcript into speaker turns and accumulates
// consecutive turns into chunks. When a chunk closes mid-conversation, a
// few truncated prior turns are prepended as context for continuity.
func (e *Engine) chunkBySpeaker(text string) []piece {
	turns := parseTurns(text)
	if len(turns) == 0 {
		// No recognisable labels despite the transcript hints.
		return e.chunkWindow(text)
	}

	var pieces []piece
	var current []string
	speakers := map[string]bool{}
	currentSize := 0
	startTurn := 0

	emit := func(endTurn int) {
		var contextLines []string
		if e.cfg.SpeakerOverlap > 0 && startTurn > 0 {
			from := startTurn - e.cfg.SpeakerOverlap
			if from < 0 {
				from = 0
			}
			for _, prior := range turns[from:startTurn] {
				contextLines = append(contextLines, fmt.Sprintf("[Context] %s: %s...", prior.speaker, truncate(prior.text, contextTruncateLen)))
			}
		}

		content := strings.Join(append(contextLines, current...), "\n")
		pieces = append(pieces, piece{
			content:  content,
			strategy: domain.StrategySpeaker,
			meta: map[string]any{
				"speakers":    sortedKeys(speakers),
				"turn_range":  []int{startTurn, endTurn},
				"turn_count":  len(current),
				"has_context": len(contextLines) > 0,
			},
		})
	}

	for i, turn := range turns {
		line := turn.speaker + ": " + turn.text
		if currentSize+len(line) > e.cfg.TranscriptTargetSize && len(current) > 0 {
			emit(i - 1)
			current = nil
			speakers = map[string]bool{}
			currentSize = 0
			startTurn = i
		}
		current = append(current, line)
		currentSize += len(line) + 1
		speakers[turn.speaker] = true
	}
	if len(current) > 0 {
		emit(len(turns) - 1)
	}
	return pieces
}

// parseTurns walks the transcript line by line, opening a new turn at each
// speaker label and folding unlabelled lines into the current turn.
func parseTurns(text string) []speakerTurn {
	var turns []speakerTurn
	var current *speakerTurn

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		matched := false
		for _, p := range turnPatterns {
			if m := p.FindStringSubmatch(line); m != nil {
				if current != nil {
					turns = append(turns, *current)
				}
				current = &speakerTurn{speaker: strings.TrimSpace(m[1]), text: strings.TrimSpace(m[2])}
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if current == nil {
			current = &speakerTurn{speaker: "Unknown Speaker"}
		}
		if current.text == "" {
			current.text = line
		} else {
			current.text += " " + line
		}
	}
	if current != nil && current.text != "" {
		turns = append(turns, *current)
	}
	return turns
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	// Stable metadata makes chunk output deterministic for a given input.
	sort.Strings(out)
	return out
}
