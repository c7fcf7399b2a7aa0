package store_test

import (
	"reflect"
	"testing"

	"github.com/docmind/rag-assistant/store"
)

func TestChunkIDDerivation(t *testing.T) {
	want := []string{
		"txt/a.txt_chunk_0",
		"txt/a.txt_chunk_1",
		"txt/a.txt_chunk_2",
	}

	got := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		got = append(got, store.ChunkID("txt/a.txt", i))
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestChunkIDStableAcrossRuns(t *testing.T) {
	first := store.ChunkID("md/guide.md", 7)
	second := store.ChunkID("md/guide.md", 7)
	if first != second {
		t.Fatalf("chunk ids must be deterministic: %q vs %q", first, second)
	}
}
