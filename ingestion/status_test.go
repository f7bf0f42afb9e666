package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/storage"
	"github.com/poiesic/docdex/storage/badger"
)

func setupTracker(t *testing.T) (*StatusTracker, storage.DocumentRepository) {
	documents, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	tracker, err := NewStatusTracker(documents, nil)
	require.NoError(t, err)

	return tracker, documents
}

func addPendingDocument(t *testing.T, documents storage.DocumentRepository) *core.Document {
	t.Helper()

	doc, err := documents.AddDocument(context.Background(), &core.Document{
		Name:      "report.pdf",
		OwnerId:   "owner-1",
		SourceURL: "https://files.example.com/report.pdf",
		Status:    core.StatusPending,
	})
	require.NoError(t, err)
	return doc
}

func TestNewStatusTracker(t *testing.T) {
	t.Run("nil repository", func(t *testing.T) {
		_, err := NewStatusTracker(nil, nil)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		documents, _, backend, err := badger.NewMemoryStores()
		require.NoError(t, err)
		defer backend.Close()

		tracker, err := NewStatusTracker(documents, nil)
		require.NoError(t, err)
		assert.NotNil(t, tracker.logger)
	})
}

func TestStatusTracker_Begin(t *testing.T) {
	ctx := context.Background()

	t.Run("marks pending document processing", func(t *testing.T) {
		tracker, documents := setupTracker(t)
		doc := addPendingDocument(t, documents)

		err := tracker.Begin(ctx, doc.Id)
		require.NoError(t, err)

		updated, err := documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, updated.Status)
	})

	t.Run("idempotent when already processing", func(t *testing.T) {
		tracker, documents := setupTracker(t)
		doc := addPendingDocument(t, documents)

		require.NoError(t, tracker.Begin(ctx, doc.Id))
		require.NoError(t, tracker.Begin(ctx, doc.Id))

		updated, err := documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, updated.Status)
	})

	t.Run("allowed from a terminal status", func(t *testing.T) {
		tracker, documents := setupTracker(t)
		doc := addPendingDocument(t, documents)

		require.NoError(t, documents.SetStatus(ctx, doc.Id, core.StatusFailed))
		require.NoError(t, tracker.Begin(ctx, doc.Id))

		updated, err := documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, updated.Status)
	})

	t.Run("unknown document", func(t *testing.T) {
		tracker, _ := setupTracker(t)

		err := tracker.Begin(ctx, "no-such-document")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStatusTracker_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("commits success", func(t *testing.T) {
		tracker, documents := setupTracker(t)
		doc := addPendingDocument(t, documents)
		require.NoError(t, tracker.Begin(ctx, doc.Id))

		err := tracker.Complete(ctx, doc.Id, core.StatusSuccess)
		require.NoError(t, err)

		updated, err := documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusSuccess, updated.Status)
	})

	t.Run("commits failed", func(t *testing.T) {
		tracker, documents := setupTracker(t)
		doc := addPendingDocument(t, documents)
		require.NoError(t, tracker.Begin(ctx, doc.Id))

		err := tracker.Complete(ctx, doc.Id, core.StatusFailed)
		require.NoError(t, err)

		updated, err := documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusFailed, updated.Status)
	})

	t.Run("rejects non-terminal outcomes", func(t *testing.T) {
		tracker, documents := setupTracker(t)
		doc := addPendingDocument(t, documents)

		assert.ErrorIs(t, tracker.Complete(ctx, doc.Id, core.StatusPending), ErrNotTerminal)
		assert.ErrorIs(t, tracker.Complete(ctx, doc.Id, core.StatusProcessing), ErrNotTerminal)

		// Rejected outcomes must not touch the stored status.
		updated, err := documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusPending, updated.Status)
	})

	t.Run("unknown document", func(t *testing.T) {
		tracker, _ := setupTracker(t)

		err := tracker.Complete(ctx, "no-such-document", core.StatusSuccess)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
