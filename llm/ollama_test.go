package llm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docmind/rag-assistant/llm"
)

func newOllamaClient(t *testing.T, handler http.HandlerFunc) llm.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return llm.NewOllamaClient(llm.Options{
		Model:      "llama3",
		OllamaHost: srv.URL,
	})
}

func TestOllamaClientGenerate(t *testing.T) {
	client := newOllamaClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "The answer."},
			"done":    true,
		})
	})

	answer, err := client.Generate(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "prompt"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer != "The answer." {
		t.Fatalf("expected %q, got %q", "The answer.", answer)
	}
}

func TestOllamaClientReportsGatewayError(t *testing.T) {
	client := newOllamaClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	})

	_, err := client.Generate(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "prompt"},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "bad gateway") {
		t.Fatalf("expected error to carry the response body, got %q", err)
	}
}

func TestOllamaClientReportsModelError(t *testing.T) {
	client := newOllamaClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "model not found"})
	})

	_, err := client.Generate(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "prompt"},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected model error, got %q", err)
	}
}
