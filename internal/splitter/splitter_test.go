package splitter

import (
	"strings"
	"testing"

	"rag-chatbot/internal/models"
)

func TestSplitDeterministic(t *testing.T) {
	s := New(100, 10)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)

	first, err := s.Split(text)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	second, err := s.Split(text)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("expected identical chunk counts, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs:\n%q\n%q", i, first[i], second[i])
		}
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := New(500, 50)
	text := "The mitochondria is the powerhouse of the cell."

	chunks, err := s.Split(text)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for short text, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "powerhouse of the cell") {
		t.Fatalf("chunk lost content: %q", chunks[0])
	}
}

func TestSplitRespectsSizeBudget(t *testing.T) {
	s := New(100, 10)
	text := strings.Repeat("Paragraph one has some words.\n\nParagraph two has more words. ", 30)

	chunks, err := s.Split(text)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected the text to be split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 100 {
			t.Fatalf("chunk %d exceeds size budget: %d runes", i, n)
		}
	}
}

func TestSplitChunksAreSubstrings(t *testing.T) {
	s := New(80, 10)
	text := "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu. " +
		"Nu xi omicron pi. Rho sigma tau upsilon. Phi chi psi omega."

	chunks, err := s.Split(text)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for i, chunk := range chunks {
		if !strings.Contains(text, chunk) {
			t.Fatalf("chunk %d is not a substring of the input: %q", i, chunk)
		}
	}
	if !strings.HasPrefix(chunks[0], "Alpha") {
		t.Fatalf("first chunk does not start at the beginning: %q", chunks[0])
	}
	last := chunks[len(chunks)-1]
	if !strings.Contains(last, "omega") {
		t.Fatalf("last chunk does not reach the end: %q", last)
	}
}

func TestSplitPageTagsChunks(t *testing.T) {
	s := New(60, 5)
	page := models.Page{
		Number: 7,
		Text:   strings.Repeat("Some sentence about a topic. ", 10),
	}

	chunks, err := s.SplitPage(page)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.PageNumber != 7 {
			t.Fatalf("chunk %d has page %d, want 7", i, chunk.PageNumber)
		}
		if chunk.ChunkID != i+1 {
			t.Fatalf("chunk %d has id %d, want %d", i, chunk.ChunkID, i+1)
		}
	}
}
