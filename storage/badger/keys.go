package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docdex/core"
)

// Key prefixes for different data types
const (
	documentPrefix      = "docrec"
	documentOwnerPrefix = "docown"
	vectorPrefix        = "vecrec"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeOwnerKey generates a composite key for the owner index.
// Format: prefix:ownerID\x00documentID
// The NUL separator keeps one owner's prefix from matching another owner
// whose ID merely starts with the same bytes.
func makeOwnerKey(ownerID, documentID string) []byte {
	buf := make([]byte, 0, len(documentOwnerPrefix)+1+len(ownerID)+1+len(documentID))
	buf = append(buf, documentOwnerPrefix...)
	buf = append(buf, ':')
	buf = append(buf, ownerID...)
	buf = append(buf, 0)
	buf = append(buf, documentID...)
	return buf
}

// makePartialOwnerKey generates the iteration prefix for one owner.
func makePartialOwnerKey(ownerID string) []byte {
	buf := make([]byte, 0, len(documentOwnerPrefix)+1+len(ownerID)+1)
	buf = append(buf, documentOwnerPrefix...)
	buf = append(buf, ':')
	buf = append(buf, ownerID...)
	buf = append(buf, 0)
	return buf
}

// makeVectorKey generates a composite key for a vector record.
// Format: prefix:namespace\x00recordID
// The record ID is written BigEndian so iteration order within a
// namespace is stable.
func makeVectorKey(namespace string, id core.RecordID) []byte {
	buf := make([]byte, 0, len(vectorPrefix)+1+len(namespace)+1+8)
	buf = append(buf, vectorPrefix...)
	buf = append(buf, ':')
	buf = append(buf, namespace...)
	buf = append(buf, 0)
	buf = binary.BigEndian.AppendUint64(buf, uint64(id))
	return buf
}

// makePartialVectorKey generates the iteration prefix for one namespace.
func makePartialVectorKey(namespace string) []byte {
	buf := make([]byte, 0, len(vectorPrefix)+1+len(namespace)+1)
	buf = append(buf, vectorPrefix...)
	buf = append(buf, ':')
	buf = append(buf, namespace...)
	buf = append(buf, 0)
	return buf
}
