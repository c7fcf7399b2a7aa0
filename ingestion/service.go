// Package ingestion walks the raw knowledge base, extracts text per document
// type, and drives the vector store's idempotent indexing.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docmind/rag-assistant/events"
	"github.com/docmind/rag-assistant/store"
)

// Indexer is the slice of the vector store the pipeline needs.
type Indexer interface {
	AddDocuments(ctx context.Context, docs []store.Document) (int, error)
}

// Stats summarizes one ingestion run.
type Stats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// docType maps a knowledge-base subdirectory to the file extensions it holds.
type docType struct {
	folder     string
	extensions []string
}

// supportedTypes fixes the corpus layout: <root>/{txt,md,pdf}, each holding
// files of the matching extension.
var supportedTypes = []docType{
	{folder: "txt", extensions: []string{".txt"}},
	{folder: "md", extensions: []string{".md"}},
	{folder: "pdf", extensions: []string{".pdf"}},
}

type Service struct {
	indexer Indexer
	root    string
	logger  *log.Logger
	log     events.Sink
}

func NewService(indexer Indexer, root string, logger *log.Logger, sink events.Sink) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		indexer: indexer,
		root:    root,
		logger:  logger,
		log:     sink,
	}
}

// Ingest scans the typed subdirectories, creating each if absent, and indexes
// every readable document one at a time so the event trail stays strictly
// ordered per document. Per-file failures are logged and skipped; the scan
// itself is best-effort across files. A fresh empty corpus yields zero
// counts, not an error.
func (s *Service) Ingest(ctx context.Context) (Stats, error) {
	var stats Stats

	for _, dt := range supportedTypes {
		folderPath := filepath.Join(s.root, dt.folder)
		if _, err := os.Stat(folderPath); os.IsNotExist(err) {
			if err := os.MkdirAll(folderPath, 0o755); err != nil {
				return stats, fmt.Errorf("create %s directory: %w", dt.folder, err)
			}
			continue
		}

		entries, err := os.ReadDir(folderPath)
		if err != nil {
			return stats, fmt.Errorf("read %s directory: %w", dt.folder, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			if entry.IsDir() || !matchesExtension(entry.Name(), dt.extensions) {
				continue
			}

			path := filepath.Join(folderPath, entry.Name())
			s.logger.Printf("processing %s/%s", dt.folder, entry.Name())

			text, err := extractText(path)
			if err != nil {
				s.logger.Printf("ingest failed for %s: %v", path, err)
				s.log.Event("document_load_error", events.Fields{
					"file":  entry.Name(),
					"error": err.Error(),
				})
				continue
			}

			if strings.TrimSpace(text) == "" {
				s.logger.Printf("skip empty document %s", path)
				continue
			}

			doc := store.Document{
				ID:   dt.folder + "/" + entry.Name(),
				Text: text,
				Metadata: store.Metadata{
					Source: entry.Name(),
					Type:   dt.folder,
					Path:   path,
				},
			}

			added, err := s.indexer.AddDocuments(ctx, []store.Document{doc})
			if err != nil {
				return stats, fmt.Errorf("index %s: %w", doc.ID, err)
			}

			stats.Documents++
			stats.Chunks += added
		}
	}

	s.log.Event("ingestion_complete", events.Fields{
		"documents": stats.Documents,
		"chunks":    stats.Chunks,
	})

	return stats, nil
}

func matchesExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
