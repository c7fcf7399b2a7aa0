package embeddings_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/docmind/rag-assistant/config"
	"github.com/docmind/rag-assistant/embeddings"
)

type embeddingDatum struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// fakeOpenAI answers the embeddings endpoint with vectors whose first
// component encodes the numeric suffix of the input text, so tests can
// check that vectors come back aligned with their inputs.
type fakeOpenAI struct {
	mu         sync.Mutex
	batchSizes []int
	reverse    bool
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(req.Input))
	f.mu.Unlock()

	data := make([]embeddingDatum, len(req.Input))
	for i, text := range req.Input {
		var n int
		fmt.Sscanf(text, "chunk-%d", &n)
		data[i] = embeddingDatum{
			Object:    "embedding",
			Embedding: []float32{float32(n), 0, 0},
			Index:     i,
		}
	}
	if f.reverse {
		for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	}

	json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   data,
		"model":  "text-embedding-3-small",
	})
}

func newOpenAIEmbedder(t *testing.T, fake *fakeOpenAI, dimension int) embeddings.Embedder {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return embeddings.NewOpenAIEmbedder(embeddings.Options{
		Provider:      config.ProviderOpenAI,
		Model:         "text-embedding-3-small",
		Dimension:     dimension,
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: srv.URL + "/v1",
	})
}

func TestOpenAIEmbedderBatchesLongInputs(t *testing.T) {
	fake := &fakeOpenAI{}
	embedder := newOpenAIEmbedder(t, fake, 3)

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk-%03d", i)
	}

	vectors, err := embedder.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}

	wantBatches := []int{64, 64, 22}
	if len(fake.batchSizes) != len(wantBatches) {
		t.Fatalf("expected %d requests, got %d", len(wantBatches), len(fake.batchSizes))
	}
	for i, want := range wantBatches {
		if fake.batchSizes[i] != want {
			t.Fatalf("request %d: expected batch of %d, got %d", i, want, fake.batchSizes[i])
		}
	}

	for i, vec := range vectors {
		if vec[0] != float32(i) {
			t.Fatalf("vector %d misaligned: first component %v", i, vec[0])
		}
	}
}

func TestOpenAIEmbedderReordersByIndex(t *testing.T) {
	fake := &fakeOpenAI{reverse: true}
	embedder := newOpenAIEmbedder(t, fake, 3)

	vectors, err := embedder.Embed(context.Background(), []string{"chunk-0", "chunk-1", "chunk-2"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for i, vec := range vectors {
		if vec[0] != float32(i) {
			t.Fatalf("vector %d misaligned: first component %v", i, vec[0])
		}
	}
}

func TestOpenAIEmbedderDimensionMismatch(t *testing.T) {
	embedder := newOpenAIEmbedder(t, &fakeOpenAI{}, 4)

	if _, err := embedder.Embed(context.Background(), []string{"chunk-0"}); err == nil {
		t.Fatal("expected dimension mismatch error, got nil")
	}
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{1, 2, 3}})
	}))
	t.Cleanup(srv.Close)

	embedder := embeddings.NewOllamaEmbedder(embeddings.Options{
		Provider:   config.ProviderOllama,
		Model:      "nomic-embed-text",
		Dimension:  3,
		OllamaHost: srv.URL,
	})

	vectors, err := embedder.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[0][2] != 3 {
		t.Fatalf("unexpected vector: %v", vectors[0])
	}
}

func TestOllamaEmbedderReportsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	}))
	t.Cleanup(srv.Close)

	embedder := embeddings.NewOllamaEmbedder(embeddings.Options{
		Provider:   config.ProviderOllama,
		Model:      "nomic-embed-text",
		Dimension:  3,
		OllamaHost: srv.URL,
	})

	_, err := embedder.Embed(context.Background(), []string{"anything"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "bad gateway") {
		t.Fatalf("expected error to carry the response body, got %q", err)
	}
}

func TestNewEmbedderRequiresPositiveDimension(t *testing.T) {
	cfg := config.Config{
		Embeddings: config.EmbeddingsConfig{
			Provider: config.ProviderOllama,
			Model:    "nomic-embed-text",
		},
	}

	if _, err := embeddings.NewEmbedder(cfg); err == nil {
		t.Fatal("expected error for zero dimension, got nil")
	}
}
