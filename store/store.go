// Package store holds the persistent chunk collection: idempotent indexing
// keyed by deterministic chunk ids, and nearest-neighbor search over
// embeddings.
package store

import (
	"context"
	"fmt"
)

// Metadata travels with every chunk: the originating filename, the document
// type folder it came from, and the original filesystem path.
type Metadata struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Path   string `json:"path"`
}

// Document is a unit of ingestion. It is never persisted on its own; only
// its chunks are.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
}

// SearchResults are parallel slices ordered nearest-neighbor first. All
// three are empty when the collection holds nothing relevant.
type SearchResults struct {
	Documents []string
	Metadatas []Metadata
	Distances []float64
}

// ChunkID derives the deterministic id for the index-th chunk of a document.
// Re-running ingestion on an unchanged document reproduces identical ids,
// which is what makes re-ingestion idempotent.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// Store is the vector collection contract the pipelines depend on.
type Store interface {
	AddDocuments(ctx context.Context, docs []Document) (int, error)
	Search(ctx context.Context, query string, nResults int, sessionID string) (SearchResults, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
