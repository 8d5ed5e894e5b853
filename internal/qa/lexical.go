// Package qa holds the offline question-answering provider.
package qa

import (
	"context"

	"smartdoc/internal/domain"
	"smartdoc/internal/textutil"
)

// LexicalAnswerer answers by returning the context sentence sharing the most
// content words with the question.
type LexicalAnswerer struct {
	stopwords textutil.Set
}

// NewLexicalAnswerer creates the extractive answerer.
func NewLexicalAnswerer() *LexicalAnswerer {
	return &LexicalAnswerer{stopwords: textutil.QueryStopwords()}
}

// Name returns the identifier of this answerer implementation.
func (a *LexicalAnswerer) Name() string { return "lexical" }

// Answer returns the best-matching sentence of context, or domain.NoAnswer
// when no sentence shares a content word with question.
func (a *LexicalAnswerer) Answer(ctx context.Context, question, context string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	qTokens := textutil.TokenSet(question, a.stopwords)
	if len(qTokens) == 0 {
		return domain.NoAnswer, nil
	}
	best, bestScore := "", 0
	for _, s := range textutil.Sentences(context) {
		if score := textutil.Overlap(qTokens, s); score > bestScore {
			best, bestScore = s, score
		}
	}
	if bestScore == 0 {
		return domain.NoAnswer, nil
	}
	return best, nil
}
