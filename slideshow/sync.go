package slideshow

import (
	"unicode/utf8"

	"briefcast/transcript"
	"briefcast/types"
)

// CurrentSentence maps playback progress linearly onto a character offset in
// the concatenated transcript text and returns the sentence containing it.
// The mapping is an approximation; segments carry no word timing.
//
// When duration is unknown the end of the last segment stands in for it.
func CurrentSentence(t types.Transcript, currentTime, duration float64) (string, bool) {
	sentences := transcript.SplitSentences(t.Text())
	if len(sentences) == 0 {
		return "", false
	}
	if duration <= 0 && len(t) > 0 {
		duration = t[len(t)-1].End
	}

	progress := 0.0
	if duration > 0 {
		progress = currentTime / duration
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	total := 0
	for _, s := range sentences {
		total += utf8.RuneCountInString(s)
	}
	target := int(progress * float64(total))

	running := 0
	for _, s := range sentences {
		running += utf8.RuneCountInString(s)
		if running >= target {
			return s, true
		}
	}
	return sentences[len(sentences)-1], true
}

// ActiveSegment returns the index of the segment with start <= t < end, or -1.
func ActiveSegment(t types.Transcript, currentTime float64) int {
	for i, s := range t {
		if s.Start <= currentTime && currentTime < s.End {
			return i
		}
	}
	return -1
}
