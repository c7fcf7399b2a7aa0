// Package chunker splits raw document text into overlapping fixed-size
// segments with separator-aware boundaries, so chunk ids derived from the
// split order stay stable across re-ingestion.
package chunker

import "strings"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators orders split points from coarsest to finest: paragraph
// break, line break, sentence boundary, word boundary, character fallback.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", " ", ""}
}

// Splitter recursively splits text on the coarsest separator that yields
// pieces within ChunkSize, carrying up to ChunkOverlap characters of trailing
// context into the next chunk. The same input and parameters always produce
// the same chunk sequence.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators(),
	}
}

// Split returns the ordered chunk sequence for text. Empty or whitespace-only
// text yields no chunks; text shorter than ChunkSize yields exactly one.
func (s Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators()
	}
	return s.split(text, seps)
}

func (s Splitter) split(text string, separators []string) []string {
	final := make([]string, 0)

	// Pick the coarsest separator present in the text; the empty string is
	// the character-level fallback and always matches.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	// Splitting on "" yields individual runes, which the merge step packs
	// back into ChunkSize windows.
	splits := strings.Split(text, separator)

	good := make([]string, 0, len(splits))
	for _, piece := range splits {
		if len(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = good[:0]
		}

		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}

	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}

	return final
}

// merge greedily packs adjacent splits into chunks of at most ChunkSize
// characters, sliding the window forward so consecutive chunks share up to
// ChunkOverlap characters of context.
func (s Splitter) merge(splits []string, separator string) []string {
	chunks := make([]string, 0)
	window := make([]string, 0)
	total := 0

	for _, piece := range splits {
		withPiece := total + len(piece)
		if len(window) > 0 {
			withPiece += len(separator)
		}

		if withPiece > s.ChunkSize && len(window) > 0 {
			if chunk := join(window, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}

			for s.shouldShrink(window, total, len(piece), len(separator)) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= len(separator)
				}
				window = window[1:]
			}
		}

		window = append(window, piece)
		total += len(piece)
		if len(window) > 1 {
			total += len(separator)
		}
	}

	if chunk := join(window, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// shouldShrink drops leading window entries until the retained tail fits the
// overlap budget and leaves room for the incoming piece.
func (s Splitter) shouldShrink(window []string, total, pieceLen, sepLen int) bool {
	if len(window) == 0 {
		return false
	}
	if len(window) < 2 {
		sepLen = 0
	}
	return total > s.ChunkOverlap ||
		(total+pieceLen+sepLen > s.ChunkSize && total > 0)
}

func join(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}
