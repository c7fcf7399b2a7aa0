package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/docmind/rag-assistant/chunker"
	"github.com/docmind/rag-assistant/embeddings"
	"github.com/docmind/rag-assistant/events"
)

const DefaultSearchResults = 3

// PostgresStore keeps the chunk collection in a pgvector-backed table.
// Writes rely on the chunk id primary key for idempotency; Postgres
// serializes concurrent writers, and ON CONFLICT DO NOTHING turns the
// check-then-insert race between concurrent ingestions into a wasted
// embedding call rather than a duplicate row.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder embeddings.Embedder
	splitter chunker.Splitter
	log      events.Sink
}

func NewPostgresStore(pool *pgxpool.Pool, embedder embeddings.Embedder, splitter chunker.Splitter, log events.Sink) *PostgresStore {
	s := &PostgresStore{
		pool:     pool,
		embedder: embedder,
		splitter: splitter,
		log:      log,
	}
	s.log.Event("vectordb_initialized", events.Fields{
		"collection": "rag_chunks",
	})
	return s
}

// AddDocuments chunks each document, derives deterministic chunk ids, and
// writes only the chunks whose ids are not already in the collection.
// Existing ids are fetched once per call, so cost is bounded by the
// collection size rather than collection × new chunks. Already-present
// chunks are skipped entirely: no embedding call, no overwrite. Returns the
// total number of new chunks written across all input documents.
func (s *PostgresStore) AddDocuments(ctx context.Context, docs []Document) (int, error) {
	existing, err := s.existingIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch existing chunk ids: %w", err)
	}

	totalAdded := 0
	for _, doc := range docs {
		texts := s.splitter.Split(doc.Text)

		newTexts := make([]string, 0, len(texts))
		newIDs := make([]string, 0, len(texts))
		newIndexes := make([]int, 0, len(texts))
		for i, text := range texts {
			id := ChunkID(doc.ID, i)
			if _, ok := existing[id]; ok {
				continue
			}
			newTexts = append(newTexts, text)
			newIDs = append(newIDs, id)
			newIndexes = append(newIndexes, i)
		}

		if len(newTexts) == 0 {
			continue
		}

		vectors, err := s.embedder.Embed(ctx, newTexts)
		if err != nil {
			return totalAdded, fmt.Errorf("embed chunks for %s: %w", doc.ID, err)
		}
		if len(vectors) != len(newTexts) {
			return totalAdded, fmt.Errorf("embedding count mismatch for %s: have %d chunks, %d vectors", doc.ID, len(newTexts), len(vectors))
		}

		for i, id := range newIDs {
			if _, err := s.pool.Exec(ctx, `
				INSERT INTO rag_chunks (id, document_id, chunk_index, content, source, doc_type, source_path, embedding)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO NOTHING
			`, id, doc.ID, newIndexes[i], newTexts[i], doc.Metadata.Source, doc.Metadata.Type, doc.Metadata.Path, pgvector.NewVector(vectors[i])); err != nil {
				return totalAdded, fmt.Errorf("insert chunk %s: %w", id, err)
			}
			existing[id] = struct{}{}
		}

		totalAdded += len(newIDs)
	}

	s.log.Event("documents_indexed", events.Fields{
		"documents":    len(docs),
		"chunks_added": totalAdded,
	})

	return totalAdded, nil
}

// Search embeds the query with the same model used at ingestion and returns
// the nResults nearest chunks. An empty collection yields empty results, not
// an error.
func (s *PostgresStore) Search(ctx context.Context, query string, nResults int, sessionID string) (SearchResults, error) {
	if nResults <= 0 {
		nResults = DefaultSearchResults
	}

	s.log.Event("search_initiated", events.Fields{
		"session_id": sessionID,
		"query":      previewQuery(query),
	})

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return SearchResults{}, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return SearchResults{}, fmt.Errorf("embedder returned no vectors")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT content, source, doc_type, source_path, (embedding <-> $1::vector) AS distance
		FROM rag_chunks
		ORDER BY embedding <-> $1::vector
		LIMIT $2
	`, pgvector.NewVector(vectors[0]), nResults)
	if err != nil {
		return SearchResults{}, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := SearchResults{
		Documents: make([]string, 0, nResults),
		Metadatas: make([]Metadata, 0, nResults),
		Distances: make([]float64, 0, nResults),
	}
	for rows.Next() {
		var (
			content  string
			meta     Metadata
			distance float64
		)
		if err := rows.Scan(&content, &meta.Source, &meta.Type, &meta.Path, &distance); err != nil {
			return SearchResults{}, fmt.Errorf("scan similar chunk: %w", err)
		}
		results.Documents = append(results.Documents, content)
		results.Metadatas = append(results.Metadatas, meta)
		results.Distances = append(results.Distances, distance)
	}
	if rows.Err() != nil {
		return SearchResults{}, rows.Err()
	}

	s.log.Event("search_completed", events.Fields{
		"session_id":    sessionID,
		"results_count": len(results.Documents),
	})

	return results, nil
}

// Reset removes every chunk from the collection.
func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE rag_chunks"); err != nil {
		return fmt.Errorf("truncate rag_chunks: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rag_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// existingIDs loads the full id set once. A cold store is simply an empty
// table here, so ingestion proceeds with an empty set instead of failing.
func (s *PostgresStore) existingIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, "SELECT id FROM rag_chunks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// previewQuery shortens long questions for event logs. It counts runes,
// not bytes, so a multi-byte character is never split mid-sequence.
func previewQuery(query string) string {
	runes := []rune(query)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return query
}

var _ Store = (*PostgresStore)(nil)
