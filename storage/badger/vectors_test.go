package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVectorIndex(t *testing.T) storage.VectorIndex {
	t.Helper()

	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		backend.Close()
	})
	return index
}

func pageRecord(documentID string, pageIndex int, vector []float32) *core.EmbeddingRecord {
	return &core.EmbeddingRecord{
		Id:     core.RecordIDFor(documentID, pageIndex),
		Vector: vector,
		Payload: core.PagePayload{
			DocumentId: documentID,
			PageIndex:  pageIndex,
			Text:       fmt.Sprintf("page %d of %s", pageIndex, documentID),
		},
	}
}

func TestVectorIndex_UpsertAndQuery(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	records := []*core.EmbeddingRecord{
		pageRecord("doc-a", 0, []float32{1, 0, 0}),
		pageRecord("doc-a", 1, []float32{0, 1, 0}),
		pageRecord("doc-a", 2, []float32{0, 0, 1}),
	}
	require.NoError(t, index.Upsert(ctx, "doc-a", records))

	matches, err := index.Query(ctx, "doc-a", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Best match first
	assert.Equal(t, 0, matches[0].Record.Payload.PageIndex)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestVectorIndex_NamespaceIsolation(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "doc-a", []*core.EmbeddingRecord{
		pageRecord("doc-a", 0, []float32{1, 0}),
	}))
	require.NoError(t, index.Upsert(ctx, "doc-b", []*core.EmbeddingRecord{
		pageRecord("doc-b", 0, []float32{1, 0}),
		pageRecord("doc-b", 1, []float32{0, 1}),
	}))

	matches, err := index.Query(ctx, "doc-a", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	for _, match := range matches {
		assert.Equal(t, "doc-a", match.Record.Payload.DocumentId)
	}

	countA, err := index.Count(ctx, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, 1, countA)

	countB, err := index.Count(ctx, "doc-b")
	require.NoError(t, err)
	assert.Equal(t, 2, countB)
}

func TestVectorIndex_UpsertIsIdempotent(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	record := pageRecord("doc-a", 0, []float32{1, 0})
	require.NoError(t, index.Upsert(ctx, "doc-a", []*core.EmbeddingRecord{record}))
	require.NoError(t, index.Upsert(ctx, "doc-a", []*core.EmbeddingRecord{record}))

	count, err := index.Count(ctx, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "identical upserts must not accumulate entries")
}

func TestVectorIndex_UpsertEmptyBatch(t *testing.T) {
	index := setupVectorIndex(t)

	require.NoError(t, index.Upsert(context.Background(), "doc-a", nil))

	count, err := index.Count(context.Background(), "doc-a")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestVectorIndex_UpsertInvalidRecord(t *testing.T) {
	index := setupVectorIndex(t)

	record := pageRecord("doc-a", 0, nil)
	err := index.Upsert(context.Background(), "doc-a", []*core.EmbeddingRecord{record})
	assert.ErrorIs(t, err, core.ErrEmptyVector)
}

func TestVectorIndex_UpsertEmptyNamespace(t *testing.T) {
	index := setupVectorIndex(t)

	err := index.Upsert(context.Background(), "", []*core.EmbeddingRecord{
		pageRecord("doc-a", 0, []float32{1}),
	})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestVectorIndex_QueryLimit(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	var records []*core.EmbeddingRecord
	for i := 0; i < 5; i++ {
		records = append(records, pageRecord("doc-a", i, []float32{float32(i), 1}))
	}
	require.NoError(t, index.Upsert(ctx, "doc-a", records))

	matches, err := index.Query(ctx, "doc-a", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestVectorIndex_DeleteNamespace(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "doc-a", []*core.EmbeddingRecord{
		pageRecord("doc-a", 0, []float32{1, 0}),
		pageRecord("doc-a", 1, []float32{0, 1}),
	}))
	require.NoError(t, index.Upsert(ctx, "doc-b", []*core.EmbeddingRecord{
		pageRecord("doc-b", 0, []float32{1, 0}),
	}))

	require.NoError(t, index.DeleteNamespace(ctx, "doc-a"))

	countA, err := index.Count(ctx, "doc-a")
	require.NoError(t, err)
	assert.Zero(t, countA)

	// Other namespaces untouched
	countB, err := index.Count(ctx, "doc-b")
	require.NoError(t, err)
	assert.Equal(t, 1, countB)

	// Deleting again is not an error
	require.NoError(t, index.DeleteNamespace(ctx, "doc-a"))
}
