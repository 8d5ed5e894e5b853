package summarizer

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"smartdoc/internal/textutil"
)

// FrequencySummarizer is an extractive summarizer that ranks sentences by
// word frequency (stopwords filtered). Lengths are measured in words.
type FrequencySummarizer struct {
	stopwords textutil.Set
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: textutil.Stopwords()}
}

// Name returns the identifier of this summarizer implementation.
func (s *FrequencySummarizer) Name() string { return "frequency" }

// Summarize picks the highest ranked sentences that fit in a word budget and
// returns them in their original order. The budget is half the input length,
// clamped to [minLength, maxLength].
func (s *FrequencySummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text = strings.TrimSpace(StripPrompt(text))
	if text == "" {
		return "", errors.New("nothing to summarize")
	}
	if maxLength <= 0 {
		maxLength = 150
	}
	sentences := textutil.Sentences(text)
	budget := wordBudget(len(strings.Fields(text)), maxLength, minLength)
	if len(sentences) == 0 {
		return truncateWords(text, budget), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range textutil.Words(sent) {
			if s.stopwords.Has(tok) {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
		words int
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := textutil.Words(sent)
		sscore := 0.0
		for _, tok := range toks {
			sscore += freq[tok]
		}
		// normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{idx: i, score: sscore, words: len(strings.Fields(sent))}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	var selected []int
	total := 0
	for _, p := range scores {
		if total+p.words > budget {
			continue
		}
		selected = append(selected, p.idx)
		total += p.words
		if total >= budget {
			break
		}
	}
	if len(selected) == 0 {
		return truncateWords(sentences[scores[0].idx], budget), nil
	}
	// keep original order among selected
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	return strings.Join(out, " "), nil
}

func wordBudget(words, maxLength, minLength int) int {
	budget := words / 2
	if budget < minLength {
		budget = minLength
	}
	if budget > maxLength {
		budget = maxLength
	}
	if budget < 1 {
		budget = 1
	}
	return budget
}

func truncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}
