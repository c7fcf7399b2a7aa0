// Package rag runs the retrieval-augmented answer pipeline: search the
// vector store, refuse when nothing relevant exists, otherwise assemble a
// grounded prompt, invoke the completion service, and post-process the
// reply.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docmind/rag-assistant/events"
	"github.com/docmind/rag-assistant/llm"
	"github.com/docmind/rag-assistant/store"
)

// Searcher is the slice of the vector store the query pipeline needs.
type Searcher interface {
	Search(ctx context.Context, query string, nResults int, sessionID string) (store.SearchResults, error)
}

// Result is one answered query: the formatted answer plus the de-duplicated
// set of source filenames the context came from.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type Service struct {
	searcher Searcher
	llm      llm.Client
	log      events.Sink
	nResults int
}

func NewService(searcher Searcher, llmClient llm.Client, sink events.Sink) *Service {
	return &Service{
		searcher: searcher,
		llm:      llmClient,
		log:      sink,
		nResults: store.DefaultSearchResults,
	}
}

// Query runs one question through the pipeline. When retrieval returns no
// documents the completion service is never invoked and the fixed refusal is
// returned with empty sources; that gate is the anti-hallucination
// guarantee, not a shortcut. Completion-service and store failures propagate
// to the caller unchanged.
func (s *Service) Query(ctx context.Context, question, sessionID string) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, fmt.Errorf("question cannot be empty")
	}
	if s.searcher == nil {
		return Result{}, fmt.Errorf("vector store is not configured")
	}
	if s.llm == nil {
		return Result{}, fmt.Errorf("llm client is not configured")
	}

	s.log.Event("user_question_received", events.Fields{
		"session_id": sessionID,
		"question":   question,
	})

	s.log.Event("rag_search_started", events.Fields{
		"session_id": sessionID,
	})
	results, err := s.searcher.Search(ctx, question, s.nResults, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("vector search: %w", err)
	}

	if len(results.Documents) == 0 {
		s.log.Event("no_context_found", events.Fields{
			"session_id": sessionID,
			"message":    "Vector search returned no relevant documents.",
		})
		return Result{Answer: RefusalAnswer, Sources: []string{}}, nil
	}

	contextBlock := strings.Join(results.Documents, "\n\n")
	s.log.Event("context_retrieved", events.Fields{
		"session_id":  sessionID,
		"chunk_count": len(results.Documents),
		"chunks":      results.Documents,
	})

	prompt := buildPrompt(contextBlock, question)

	s.log.Event("llm_invocation_started", events.Fields{
		"session_id": sessionID,
	})
	raw, err := s.llm.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompt},
	})
	if err != nil {
		return Result{}, fmt.Errorf("llm generate: %w", err)
	}

	answer := FormatForChat(strings.TrimSpace(raw))
	sources := uniqueSources(results.Metadatas)

	s.log.Event("answer_generated", events.Fields{
		"session_id":  sessionID,
		"sources":     sources,
		"full_answer": answer,
	})
	s.log.Event("bot_waiting_for_input", events.Fields{
		"session_id": sessionID,
	})

	return Result{Answer: answer, Sources: sources}, nil
}

// uniqueSources collects the distinct source filenames across the retrieved
// chunks. Sources form a set, not a ranked list; sorting keeps responses and
// logged events deterministic.
func uniqueSources(metadatas []store.Metadata) []string {
	seen := make(map[string]struct{}, len(metadatas))
	sources := make([]string, 0, len(metadatas))
	for _, meta := range metadatas {
		if _, ok := seen[meta.Source]; ok {
			continue
		}
		seen[meta.Source] = struct{}{}
		sources = append(sources, meta.Source)
	}
	sort.Strings(sources)
	return sources
}
