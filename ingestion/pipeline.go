// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/docdex/ai"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/storage"
)

const (
	// DefaultEmbedConcurrency bounds how many embedding calls run at once
	// within a single ingestion run.
	DefaultEmbedConcurrency = 4

	// DefaultBatchSize is the number of records sent per index upsert.
	DefaultBatchSize = 100

	// DefaultCallTimeout bounds each outbound call a run makes.
	DefaultCallTimeout = 30 * time.Second
)

// Fetcher retrieves the raw bytes of an uploaded document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor splits document bytes into ordered page-level text.
type Extractor interface {
	Extract(documentID string, data []byte) ([]core.Page, error)
}

// RunReport summarizes a completed ingestion run.
type RunReport struct {
	DocumentId  string
	Status      core.ProcessingStatus
	FailedStage Stage
	Pages       int
	Vectors     int
	Duration    time.Duration
}

// Pipeline drives a document from uploaded bytes to an indexed namespace.
// A run is all-or-nothing with respect to the index: vectors are only
// upserted once every page has embedded successfully, and every run ends
// with exactly one terminal status commit.
type Pipeline struct {
	documents  storage.DocumentRepository
	index      storage.VectorIndex
	embedder   ai.Embedder
	fetcher    Fetcher
	extractor  Extractor
	tracker    *StatusTracker
	runPool    *ants.Pool
	embedLimit int
	batchSize  int
	timeout    time.Duration
	dimensions int
	logger     *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the size of the background run pool. Sizes below 1
// are treated as 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return fmt.Errorf("failed to create run pool: %w", err)
		}
		if p.runPool != nil {
			p.runPool.Release()
		}
		p.runPool = pool
		return nil
	}
}

// WithEmbedConcurrency bounds concurrent embedding calls within a run.
func WithEmbedConcurrency(limit int) Option {
	return func(p *Pipeline) error {
		if limit < 1 {
			return fmt.Errorf("embed concurrency must be at least 1, got %d", limit)
		}
		p.embedLimit = limit
		return nil
	}
}

// WithBatchSize sets how many records are sent per index upsert.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithCallTimeout bounds each outbound call a run makes.
func WithCallTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout <= 0 {
			return fmt.Errorf("call timeout must be positive, got %s", timeout)
		}
		p.timeout = timeout
		return nil
	}
}

// WithDimensions rejects embedding vectors whose length differs from the
// given dimensionality. Zero disables the check; vectors within a run must
// still agree with each other.
func WithDimensions(dimensions int) Option {
	return func(p *Pipeline) error {
		if dimensions < 0 {
			return fmt.Errorf("dimensions must not be negative, got %d", dimensions)
		}
		p.dimensions = dimensions
		return nil
	}
}

// WithLogger sets the logger used by the pipeline. A nil logger falls
// back to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given collaborators.
func NewPipeline(documents storage.DocumentRepository, index storage.VectorIndex, embedder ai.Embedder, fetcher Fetcher, extractor Extractor, opts ...Option) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	pipeline := &Pipeline{
		documents:  documents,
		index:      index,
		embedder:   embedder,
		fetcher:    fetcher,
		extractor:  extractor,
		embedLimit: DefaultEmbedConcurrency,
		batchSize:  DefaultBatchSize,
		timeout:    DefaultCallTimeout,
		logger:     slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if err := opt(pipeline); err != nil {
			if pipeline.runPool != nil {
				pipeline.runPool.Release()
			}
			return nil, err
		}
	}

	if pipeline.runPool == nil {
		size := max(runtime.NumCPU()/2, 1)
		pool, err := ants.NewPool(size)
		if err != nil {
			return nil, fmt.Errorf("failed to create run pool: %w", err)
		}
		pipeline.runPool = pool
	}

	tracker, err := NewStatusTracker(documents, pipeline.logger)
	if err != nil {
		pipeline.runPool.Release()
		return nil, err
	}
	pipeline.tracker = tracker

	return pipeline, nil
}

// OnDocumentUploaded schedules an ingestion run on the background pool. The
// caller must have persisted the document record before invoking it. Run
// failures are logged; the committed status is the durable outcome.
func (p *Pipeline) OnDocumentUploaded(documentID, sourceURL string) error {
	return p.runPool.Submit(func() {
		if _, err := p.Run(context.Background(), documentID, sourceURL); err != nil {
			p.logger.Error("background ingestion run failed", "documentId", documentID, "err", err)
		}
	})
}

// Run executes one ingestion run synchronously. It marks the document
// PROCESSING, fetches the source bytes, extracts page texts, embeds every
// page, upserts the vectors into the document's namespace, and commits a
// terminal status. Any stage failure commits FAILED and returns a
// StageError naming the stage. An unknown document returns
// storage.ErrNotFound without writing any status.
func (p *Pipeline) Run(ctx context.Context, documentID, sourceURL string) (*RunReport, error) {
	started := time.Now()
	log := p.logger.With("documentId", documentID)

	if err := p.tracker.Begin(ctx, documentID); err != nil {
		log.Error("unable to begin ingestion run", "err", err)
		return nil, err
	}

	report := &RunReport{DocumentId: documentID}

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	data, err := p.fetcher.Fetch(fetchCtx, sourceURL)
	cancel()
	if err != nil {
		return p.fail(ctx, report, StageFetch, err, started)
	}
	log.Debug("fetched document", "bytes", len(data))

	pages, err := p.extractor.Extract(documentID, data)
	if err != nil {
		return p.fail(ctx, report, StageExtract, err, started)
	}
	report.Pages = len(pages)

	records, err := p.embedPages(ctx, documentID, pages)
	if err != nil {
		return p.fail(ctx, report, StageEmbed, err, started)
	}

	for start := 0; start < len(records); start += p.batchSize {
		end := min(start+p.batchSize, len(records))
		upsertCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.index.Upsert(upsertCtx, documentID, records[start:end])
		cancel()
		if err != nil {
			return p.fail(ctx, report, StageIndex, err, started)
		}
	}
	report.Vectors = len(records)

	// The terminal commit must survive caller cancellation or the
	// document would be left PROCESSING forever.
	if err := p.tracker.Complete(context.WithoutCancel(ctx), documentID, core.StatusSuccess); err != nil {
		report.Duration = time.Since(started)
		log.Error("failed to commit SUCCESS status", "err", err)
		return report, &StageError{Stage: StageStatus, DocumentId: documentID, Err: err}
	}

	report.Status = core.StatusSuccess
	report.Duration = time.Since(started)
	log.Info("ingestion run succeeded", "pages", report.Pages, "vectors", report.Vectors, "duration", report.Duration)
	return report, nil
}

// Release shuts down the background run pool. In-flight runs finish; queued
// submissions are dropped.
func (p *Pipeline) Release() {
	if p.runPool != nil {
		p.runPool.Release()
	}
}

func (p *Pipeline) fail(ctx context.Context, report *RunReport, stage Stage, cause error, started time.Time) (*RunReport, error) {
	stageErr := &StageError{Stage: stage, DocumentId: report.DocumentId, Err: cause}
	report.FailedStage = stage
	report.Duration = time.Since(started)
	p.logger.Error("ingestion stage failed", "documentId", report.DocumentId, "stage", stage, "err", cause)

	if err := p.tracker.Complete(context.WithoutCancel(ctx), report.DocumentId, core.StatusFailed); err != nil {
		p.logger.Error("failed to commit FAILED status", "documentId", report.DocumentId, "err", err)
		return report, errors.Join(stageErr, &StageError{Stage: StageStatus, DocumentId: report.DocumentId, Err: err})
	}

	report.Status = core.StatusFailed
	return report, stageErr
}

// embedPages embeds every page concurrently and assembles records in page
// order. Results are written into a slice indexed by position, so the
// upsert order matches the document order regardless of completion order.
// Empty pages are embedded as the empty string to keep index alignment.
func (p *Pipeline) embedPages(ctx context.Context, documentID string, pages []core.Page) ([]*core.EmbeddingRecord, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	records := make([]*core.EmbeddingRecord, len(pages))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.embedLimit)

	for i, page := range pages {
		group.Go(func() error {
			embedCtx, cancel := context.WithTimeout(groupCtx, p.timeout)
			defer cancel()

			vector, err := p.embedder.EmbedText(embedCtx, page.Text)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.Index, err)
			}
			if len(vector) == 0 {
				return fmt.Errorf("page %d: %w: empty vector", page.Index, ErrVectorSizeMismatch)
			}
			if p.dimensions > 0 && len(vector) != p.dimensions {
				return fmt.Errorf("page %d: %w: got %d, want %d", page.Index, ErrVectorSizeMismatch, len(vector), p.dimensions)
			}

			records[i] = &core.EmbeddingRecord{
				Id:     core.RecordIDFor(documentID, page.Index),
				Vector: vector,
				Payload: core.PagePayload{
					DocumentId: documentID,
					PageIndex:  page.Index,
					Text:       page.Text,
				},
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	dimensions := len(records[0].Vector)
	for _, record := range records {
		if len(record.Vector) != dimensions {
			return nil, fmt.Errorf("page %d: %w: got %d, want %d", record.Payload.PageIndex, ErrVectorSizeMismatch, len(record.Vector), dimensions)
		}
	}

	return records, nil
}
