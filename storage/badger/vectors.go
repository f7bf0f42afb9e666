package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/storage"
)

// VectorIndex implements storage.VectorIndex for BadgerDB. Records live
// under namespace-prefixed keys, so one namespace's entries are never
// visible to a query or delete on another namespace.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex.
func NewVectorIndex(backend *Backend) *VectorIndex {
	return &VectorIndex{backend: backend}
}

// Close is a no-op; the index holds no resources of its own.
func (x *VectorIndex) Close() error {
	return nil
}

// Upsert writes records into the index under the given namespace.
func (x *VectorIndex) Upsert(ctx context.Context, namespace string, records []*core.EmbeddingRecord) error {
	if namespace == "" {
		return storage.ErrInvalidQuery
	}
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return err
		}
	}

	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeVectorKey(namespace, record.Id)
			if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query returns up to limit records ordered by similarity to the vector.
// Similarity is the dot product, which equals cosine similarity for
// normalized vectors.
func (x *VectorIndex) Query(ctx context.Context, namespace string, vector []float32, limit int) ([]*core.VectorMatch, error) {
	if namespace == "" || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.VectorMatch

	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVectorKey(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}

			results = append(results, &core.VectorMatch{
				Record: record,
				Score:  dotProduct(vector, record.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of records stored under the namespace.
func (x *VectorIndex) Count(ctx context.Context, namespace string) (int, error) {
	if namespace == "" {
		return 0, storage.ErrInvalidQuery
	}

	var count int
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVectorKey(namespace)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}

// DeleteNamespace removes every record under the namespace.
func (x *VectorIndex) DeleteNamespace(ctx context.Context, namespace string) error {
	if namespace == "" {
		return storage.ErrInvalidQuery
	}

	return x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVectorKey(namespace)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
