package chunking

import (
	"regexp"
	"strings"
)

var (
	// Speaker label shapes seen in meeting transcripts: "John Doe: ",
	// "SPEAKER_1: ", "[10:30] Alice", "> John Doe:".
	speakerHintPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Z][a-zA-Z ]+: `),
		regexp.MustCompile(`\b[A-Z_]+\d*: `),
		regexp.MustCompile(`\[[^\]]+\]\s*[A-Z]`),
		regexp.MustCompile(`>\s*[A-Z][a-zA-Z ]+:`),
	}

	structureHintPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^#{1,6}\s+.+$`),
		regexp.MustCompile(`(?m)^\d+\.\s+.+$`),
		regexp.MustCompile(`(?m)^[-*+]\s+.+$`),
		regexp.MustCompile(`(?m)^[A-Z][A-Z ]+$`),
		regexp.MustCompile(`(?m)^\s*\|.+\|\s*$`),
	}

	conversationHintPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)\?\s*$`),
		regexp.MustCompile(`(?i)\b(Q:|A:|Question:|Answer:)`),
		regexp.MustCompile(`(?i)\b(well|so|actually|basically|you know)\b`),
		regexp.MustCompile(`(?i)\b(I think|I believe|In my opinion)\b`),
	}

	transcriptNameKeywords = []string{"transcript", "meeting", "call", "interview", "session", "recording"}
)

// isTranscript reports whether the text looks like a meeting transcript,
// from the filename or the density of speaker-labelled lines.
func (e *Engine) isTranscript(text, fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, kw := range transcriptNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	matches := 0
	for _, p := range speakerHintPatterns {
		matches += len(p.FindAllStringIndex(text, -1))
	}
	lines := nonBlankLineCount(text)
	return lines > 0 && float64(matches)/float64(lines) > e.cfg.TranscriptRatio
}

// isStructured reports whether enough lines carry header, list or table
// formatting to chunk by section.
func (e *Engine) isStructured(text string) bool {
	matches := 0
	for _, p := range structureHintPatterns {
		matches += len(p.FindAllStringIndex(text, -1))
	}
	lines := nonBlankLineCount(text)
	return lines > 0 && float64(matches)/float64(lines) > e.cfg.StructureRatio
}

// isConversational reports whether question and discourse markers are dense
// enough to favour semantic grouping.
func (e *Engine) isConversational(text string) bool {
	matches := 0
	for _, p := range conversationHintPatterns {
		matches += len(p.FindAllStringIndex(text, -1))
	}
	words := len(strings.Fields(text))
	return words > 0 && float64(matches)/float64(words) > e.cfg.ConversationalRatio
}

func nonBlankLineCount(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
