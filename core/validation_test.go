package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() *Document {
	return &Document{
		Id:         NewDocumentID(),
		StorageKey: "files/abc123",
		Name:       "report.pdf",
		OwnerId:    "user-1",
		SourceURL:  "https://files.example.com/abc123",
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateDocument(validDocument()))
	})

	t.Run("nil", func(t *testing.T) {
		err := ValidateDocument(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("empty id", func(t *testing.T) {
		doc := validDocument()
		doc.Id = ""
		err := ValidateDocument(doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyDocumentID)
	})

	t.Run("empty source url", func(t *testing.T) {
		doc := validDocument()
		doc.SourceURL = ""
		err := ValidateDocument(doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptySourceURL)
	})

	t.Run("unknown status", func(t *testing.T) {
		doc := validDocument()
		doc.Status = ProcessingStatus(99)
		err := ValidateDocument(doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestValidateRecord(t *testing.T) {
	valid := func() *EmbeddingRecord {
		return &EmbeddingRecord{
			Id:     RecordIDFor("doc-1", 0),
			Vector: []float32{0.1, 0.2, 0.3},
			Payload: PagePayload{
				DocumentId: "doc-1",
				PageIndex:  0,
				Text:       "page text",
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateRecord(valid()))
	})

	t.Run("empty text is valid", func(t *testing.T) {
		record := valid()
		record.Payload.Text = ""
		require.NoError(t, ValidateRecord(record))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateRecord(nil), ErrInvalidRecord)
	})

	t.Run("empty vector", func(t *testing.T) {
		record := valid()
		record.Vector = nil
		assert.ErrorIs(t, ValidateRecord(record), ErrEmptyVector)
	})

	t.Run("empty document id", func(t *testing.T) {
		record := valid()
		record.Payload.DocumentId = ""
		assert.ErrorIs(t, ValidateRecord(record), ErrEmptyDocumentID)
	})

	t.Run("negative page index", func(t *testing.T) {
		record := valid()
		record.Payload.PageIndex = -1
		assert.ErrorIs(t, ValidateRecord(record), ErrNegativePageIndex)
	})
}

func TestValidateStatus(t *testing.T) {
	for _, status := range []ProcessingStatus{StatusPending, StatusProcessing, StatusSuccess, StatusFailed} {
		assert.NoError(t, ValidateStatus(status))
	}
	assert.ErrorIs(t, ValidateStatus(ProcessingStatus(0)), ErrInvalidStatus)
}
