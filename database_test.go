package docdex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/storage"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.Documents())
		assert.NotNil(t, db.Vectors())
	})

	t.Run("invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_Upload(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	doc, err := db.Upload(ctx, "report.pdf", "owner-1", "https://files.example.com/report.pdf")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.NotEmpty(t, doc.Id)
	assert.Equal(t, core.StatusPending, doc.Status)

	stored, err := db.Documents().GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", stored.Name)
	assert.Equal(t, "owner-1", stored.OwnerId)
}

func TestDatabase_Remove(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	doc, err := db.Upload(ctx, "report.pdf", "owner-1", "https://files.example.com/report.pdf")
	require.NoError(t, err)

	// Seed the document's namespace directly.
	err = db.Vectors().Upsert(ctx, doc.Id, []*core.EmbeddingRecord{
		{
			Id:      core.RecordIDFor(doc.Id, 0),
			Vector:  []float32{0.1, 0.2, 0.3},
			Payload: core.PagePayload{DocumentId: doc.Id, PageIndex: 0, Text: "page one"},
		},
	})
	require.NoError(t, err)

	err = db.Remove(ctx, doc.Id)
	require.NoError(t, err)

	_, err = db.Documents().GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	count, err := db.Vectors().Count(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})
}
