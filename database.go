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

package docdex

import (
	"context"
	"log/slog"

	"github.com/poiesic/docdex/ai"
	"github.com/poiesic/docdex/ai/openai"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/extract"
	"github.com/poiesic/docdex/fetch"
	"github.com/poiesic/docdex/ingestion"
	"github.com/poiesic/docdex/storage"
	"github.com/poiesic/docdex/storage/badger"
)

// Database bundles the document store, the vector index, and the embedding
// capability behind a single handle.
type Database struct {
	backend   *badger.Backend
	documents storage.DocumentRepository
	vectors   storage.VectorIndex
	embedder  ai.Embedder
	aiConfig  *ai.Config
	fetchOpts []fetch.Option
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	fetchOpts []fetch.Option
}

// WithAIConfig sets the embedding configuration used by the database.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithFetchOptions sets options for the fetcher used by ingestion
// pipelines created from this database.
func WithFetchOptions(opts ...fetch.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.fetchOpts = append(o.fetchOpts, opts...)
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	documents := badger.NewDocumentRepository(backend)
	vectors := badger.NewVectorIndex(backend)

	// Create embedder with configured settings
	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		vectors.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		documents: documents,
		vectors:   vectors,
		embedder:  embedder,
		aiConfig:  options.aiConfig,
		fetchOpts: options.fetchOpts,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close repositories
	if err := db.vectors.Close(); err != nil {
		db.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := db.documents.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Documents() storage.DocumentRepository {
	return db.documents
}

func (db *Database) Vectors() storage.VectorIndex {
	return db.vectors
}

// Upload persists a new PENDING document record. The record must exist
// before an ingestion run is triggered for it.
func (db *Database) Upload(ctx context.Context, name, ownerID, sourceURL string) (*core.Document, error) {
	return db.documents.AddDocument(ctx, &core.Document{
		Name:      name,
		OwnerId:   ownerID,
		SourceURL: sourceURL,
		Status:    core.StatusPending,
	})
}

// Remove deletes a document record and clears its vector namespace. This is
// also the hook for re-ingesting a document from scratch.
func (db *Database) Remove(ctx context.Context, id string) error {
	if err := db.documents.DeleteDocument(ctx, id); err != nil {
		return err
	}
	return db.vectors.DeleteNamespace(ctx, id)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	fetcher, err := fetch.NewFetcher(db.fetchOpts...)
	if err != nil {
		return nil, err
	}
	extractor, err := extract.NewExtractor()
	if err != nil {
		return nil, err
	}

	pipelineOpts := opts
	if db.aiConfig.Dimensions > 0 {
		pipelineOpts = append([]ingestion.Option{ingestion.WithDimensions(db.aiConfig.Dimensions)}, opts...)
	}
	return ingestion.NewPipeline(db.documents, db.vectors, db.embedder, fetcher, extractor, pipelineOpts...)
}
