package storage

import (
	"context"

	"github.com/poiesic/docdex/core"
)

// DocumentRepository provides durable storage for document records.
// Implementations must be thread-safe and provide per-id atomicity for
// status updates; that atomicity is what the ingestion pipeline relies on
// instead of application-level locking.
type DocumentRepository interface {
	// AddDocument adds a document record to storage.
	// Generates an Id if empty and sets CreatedAt/UpdatedAt if unset.
	// Returns the document with generated fields populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// SetStatus performs a targeted status update keyed by document ID.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the document doesn't exist.
	SetStatus(ctx context.Context, id string, status core.ProcessingStatus) error

	// ListByOwner retrieves all documents belonging to an owner, ordered
	// by creation time ascending. Returns an empty slice for unknown owners.
	ListByOwner(ctx context.Context, ownerID string) ([]*core.Document, error)

	// DeleteDocument removes a document record by ID.
	// Returns ErrNotFound if the document doesn't exist.
	// Does not touch the vector index; callers that want the namespace
	// gone as well use VectorIndex.DeleteNamespace.
	DeleteDocument(ctx context.Context, id string) error

	// Close closes the repository and releases resources.
	Close() error
}

// VectorIndex provides namespace-partitioned vector storage. Namespaces
// isolate one document's vectors from every other document's; a namespace
// comes into existence implicitly with its first upsert.
// Implementations must be safe for concurrent use across distinct namespaces.
type VectorIndex interface {
	// Upsert writes records into the index under the given namespace,
	// replacing entries with the same record ID. May be called multiple
	// times for the same namespace, e.g. once per batch.
	Upsert(ctx context.Context, namespace string, records []*core.EmbeddingRecord) error

	// Query returns up to limit records from the namespace ordered by
	// similarity to the given vector (highest first). Only the named
	// namespace is ever consulted.
	Query(ctx context.Context, namespace string, vector []float32, limit int) ([]*core.VectorMatch, error)

	// Count returns the number of records stored under the namespace.
	Count(ctx context.Context, namespace string) (int, error)

	// DeleteNamespace removes every record under the namespace.
	// Deleting a namespace that doesn't exist is not an error.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Close closes the index and releases resources.
	Close() error
}
