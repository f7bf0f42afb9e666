package ingestion

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline stage a failure is attributed to.
type Stage string

const (
	// StageFetch covers retrieving the document bytes from storage.
	StageFetch Stage = "fetch"
	// StageExtract covers splitting the bytes into page-level text.
	StageExtract Stage = "extract"
	// StageEmbed covers generating vector embeddings per page.
	StageEmbed Stage = "embed"
	// StageIndex covers upserting vectors into the index namespace.
	StageIndex Stage = "index"
	// StageStatus covers committing the terminal processing status.
	StageStatus Stage = "status"
)

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrFetcherRequired is returned when a fetcher is not provided.
	ErrFetcherRequired = errors.New("fetcher required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrNotTerminal is returned when Complete is called with a status
	// other than SUCCESS or FAILED.
	ErrNotTerminal = errors.New("outcome must be a terminal status")

	// ErrVectorSizeMismatch indicates the embedding capability returned
	// vectors of inconsistent or unexpected dimensionality.
	ErrVectorSizeMismatch = errors.New("vector size mismatch")
)

// StageError attributes an ingestion failure to the stage that produced it.
type StageError struct {
	Stage      Stage
	DocumentId string
	Err        error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed for document %s: %v", e.Stage, e.DocumentId, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage err is attributed to, or the empty string if
// err carries no stage attribution.
func StageOf(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
