package slideshow

import (
	"sort"
	"strings"
	"unicode"

	"briefcast/config"
)

var stopwords = toSet(`a about above after again against all also am an and any are as at be because
been before being below between both but by can could did do does doing down during each few for
from further had has have having he her here hers herself him himself his how i if in into is it
its itself just me more most my myself no nor not now of off on once only or other our ours
ourselves out over own same she should so some such than that the their theirs them themselves
then there these they this those through to too under until up very was we were what when where
which while who whom why will with would you your yours yourself yourselves says said new also
according`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// Keywords derives an image search query from a sentence: lowercase words
// with punctuation stripped, stopwords and words of two letters or fewer
// dropped, longest first, at most three. Ties keep sentence order. An empty
// result falls back to "news".
func Keywords(sentence string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, sentence)

	seen := make(map[string]struct{})
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	if len(words) == 0 {
		return config.DefaultImageQuery
	}

	sort.SliceStable(words, func(i, j int) bool {
		return len([]rune(words[i])) > len([]rune(words[j]))
	})
	if len(words) > config.MaxQueryKeywords {
		words = words[:config.MaxQueryKeywords]
	}
	return strings.Join(words, " ")
}
