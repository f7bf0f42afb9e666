package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ProcessingStatus tracks a document through its ingestion lifecycle.
type ProcessingStatus int

const (
	// StatusPending means the document record exists but ingestion has not started.
	StatusPending ProcessingStatus = iota + 1
	// StatusProcessing means an ingestion run is in flight.
	StatusProcessing
	// StatusSuccess means all pages were embedded and indexed.
	StatusSuccess
	// StatusFailed means an ingestion run aborted before the document became searchable.
	StatusFailed
)

// String returns the canonical name of the status.
func (s ProcessingStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusProcessing:
		return "PROCESSING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether no further automatic transition occurs from s.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// ParseStatus converts a canonical status name back to its value.
func ParseStatus(name string) (ProcessingStatus, error) {
	switch name {
	case "PENDING":
		return StatusPending, nil
	case "PROCESSING":
		return StatusProcessing, nil
	case "SUCCESS":
		return StatusSuccess, nil
	case "FAILED":
		return StatusFailed, nil
	default:
		return 0, fmt.Errorf("%w: name %q", ErrInvalidStatus, name)
	}
}

// Document represents one uploaded file. The ID doubles as the vector
// index namespace, which is what keeps one document's vectors isolated
// from every other document's.
type Document struct {
	Id         string
	StorageKey string
	Name       string
	OwnerId    string
	SourceURL  string
	Status     ProcessingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDocumentID generates a fresh document identifier.
func NewDocumentID() string {
	return uuid.NewString()
}

// Page is one page-level text unit produced by the extractor. Pages are
// ephemeral: they exist only for the duration of a single ingestion run.
type Page struct {
	DocumentId string
	Index      int // zero-based, source order
	Text       string
}

// RecordID is a unique identifier for a vector index entry.
type RecordID uint64

// RecordIDFor derives a deterministic RecordID from the owning document
// and page index using BLAKE2b hashing. Re-ingesting the same document
// therefore upserts the same entries instead of accumulating duplicates.
func RecordIDFor(documentID string, pageIndex int) RecordID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(documentID))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(pageIndex)))
	sum := h.Sum(nil)
	return RecordID(binary.LittleEndian.Uint64(sum))
}

// PagePayload is the metadata stored alongside a vector so retrieval can
// map a match back to its source page.
type PagePayload struct {
	DocumentId string
	PageIndex  int
	Text       string
}

// EmbeddingRecord is one vector index entry. Its namespace is always the
// owning document's ID; the namespace itself is carried by the index, not
// by the record.
type EmbeddingRecord struct {
	Id      RecordID
	Vector  []float32
	Payload PagePayload
}

// VectorMatch is a single result from a namespace-scoped similarity query.
type VectorMatch struct {
	Record *EmbeddingRecord
	Score  float32
}
