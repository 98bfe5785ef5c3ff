package transcript

import (
	"strings"
	"unicode"

	"briefcast/config"
	"briefcast/types"
)

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace. The terminator stays with its sentence; surrounding whitespace
// is trimmed and empty pieces are dropped.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// FromText builds a text-only transcript with timings estimated from the
// narration speed. Sentences without words are skipped.
func FromText(text string) types.Transcript {
	var out types.Transcript
	var at float64
	for _, sentence := range SplitSentences(text) {
		words := len(strings.Fields(sentence))
		if words == 0 {
			continue
		}
		d := float64(words) / config.SpeechWordsPerSecond
		out = append(out, types.Segment{
			ID:    len(out),
			Start: at,
			End:   at + d,
			Text:  sentence,
		})
		at += d
	}
	return out
}
