// Package textutil holds the word and sentence tokenizer shared by the
// offline providers and the console view.
package textutil

import (
	"regexp"
	"strings"
)

var (
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Set is a set of lower-cased tokens.
type Set map[string]struct{}

// NewSet builds a Set from words.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether w is in the set. A nil Set has no members.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Words returns the lower-cased letter and number runs of s. Apostrophes
// inside a word keep it whole.
func Words(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

// Sentences splits text after '.', '!' and '?'. Trailing text without
// terminal punctuation becomes the last sentence. Results are trimmed and
// never empty.
func Sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	locs := sentenceRe.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs)+1)
	end := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		end = loc[1]
	}
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// TokenSet returns the distinct words of s that are not in stop.
func TokenSet(s string, stop Set) Set {
	tokens := Words(s)
	m := make(Set, len(tokens))
	for _, t := range tokens {
		if stop.Has(t) {
			continue
		}
		m[t] = struct{}{}
	}
	return m
}

// Overlap counts the distinct words of sentence that are in set.
func Overlap(set Set, sentence string) int {
	score := 0
	seen := make(Set)
	for _, t := range Words(sentence) {
		if seen.Has(t) {
			continue
		}
		seen[t] = struct{}{}
		if set.Has(t) {
			score++
		}
	}
	return score
}

var commonStopwords = []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
	"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
	"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into",
	"about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own",
	"same", "too", "very", "can", "will", "just", "don", "should", "now",
}

var questionWords = []string{
	"what", "which", "who", "whom", "whose", "where", "when", "why", "how", "do", "does", "did",
	"i", "you", "me", "my", "tell", "there", "any", "some", "could", "would",
}

// Stopwords returns a fresh set of common English function words.
func Stopwords() Set {
	return NewSet(commonStopwords...)
}

// QueryStopwords returns Stopwords plus interrogatives and filler that carry
// no content in a question.
func QueryStopwords() Set {
	s := Stopwords()
	for _, w := range questionWords {
		s[w] = struct{}{}
	}
	return s
}
