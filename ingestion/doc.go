// Package ingestion drives uploaded documents through fetch, page
// extraction, embedding, and vector indexing, committing exactly one
// terminal processing status per run. Each document's vectors live in a
// namespace keyed by the document ID, so runs for different documents
// never touch each other's data.
package ingestion
