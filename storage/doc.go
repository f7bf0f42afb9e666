// Package storage defines the persistence interfaces for document records
// and the namespace-partitioned vector index, together with the shared
// serialization helpers and sentinel errors used by backend implementations.
//
// The BadgerDB implementation lives in the storage/badger subpackage.
package storage
