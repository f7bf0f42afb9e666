package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingStatus_String(t *testing.T) {
	assert.Equal(t, "PENDING", StatusPending.String())
	assert.Equal(t, "PROCESSING", StatusProcessing.String())
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
	assert.Equal(t, "FAILED", StatusFailed.String())
	assert.Contains(t, ProcessingStatus(42).String(), "UNKNOWN")
}

func TestParseStatus(t *testing.T) {
	for _, status := range []ProcessingStatus{StatusPending, StatusProcessing, StatusSuccess, StatusFailed} {
		parsed, err := ParseStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseStatus("DONE")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestProcessingStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestNewDocumentID(t *testing.T) {
	a := NewDocumentID()
	b := NewDocumentID()

	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}

func TestRecordIDFor_Deterministic(t *testing.T) {
	id1 := RecordIDFor("doc-1", 0)
	id2 := RecordIDFor("doc-1", 0)
	assert.Equal(t, id1, id2)
}

func TestRecordIDFor_DistinctInputs(t *testing.T) {
	base := RecordIDFor("doc-1", 0)

	assert.NotEqual(t, base, RecordIDFor("doc-1", 1), "page index must change the id")
	assert.NotEqual(t, base, RecordIDFor("doc-2", 0), "document id must change the id")
}

func TestRecordIDFor_SeparatorAmbiguity(t *testing.T) {
	// "doc:1" page 2 and "doc" page 12 must not collide via concatenation.
	assert.NotEqual(t, RecordIDFor("doc:1", 2), RecordIDFor("doc", 12))
}
