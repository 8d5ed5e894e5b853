package domain

import "errors"

// Failures surfaced by the document engine. Callers match them with errors.Is;
// the wrapping error carries the underlying cause.
var (
	// ErrNotFound indicates an unknown document id.
	ErrNotFound = errors.New("document not found")

	// ErrExtraction indicates an unreadable upload or bad text decoding.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmptyContent indicates the extracted text produced no chunks.
	ErrEmptyContent = errors.New("document processing resulted in no content")

	// ErrEmbedding indicates the embedding provider failed during ingestion.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRetrieval indicates no context could be assembled for a query.
	ErrRetrieval = errors.New("unable to retrieve context for the query")

	// ErrSummarization indicates a fatal summarization provider failure.
	ErrSummarization = errors.New("summarization failed")

	// ErrQA indicates the question-answering provider failed.
	ErrQA = errors.New("question answering failed")

	// ErrInvalidInput indicates a malformed request, such as a blank question.
	ErrInvalidInput = errors.New("invalid input")
)
