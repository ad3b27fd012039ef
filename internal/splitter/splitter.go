package splitter

import (
	"github.com/tmc/langchaingo/textsplitter"

	"rag-chatbot/internal/models"
)

// Splitter cuts page text into overlapping chunks using a recursive character
// splitter: separators are tried most- to least-specific and small adjacent
// pieces are merged back up to the size budget. Splitting is deterministic.
type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

func New(chunkSize, chunkOverlap int) Splitter {
	return Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(models.ChunkSeparators),
		),
	}
}

// Split returns the chunk texts for one string.
func (s Splitter) Split(text string) ([]string, error) {
	return s.inner.SplitText(text)
}

// SplitPage splits one page and tags each chunk with the page number and a
// 1-based chunk id.
func (s Splitter) SplitPage(page models.Page) ([]models.Chunk, error) {
	pieces, err := s.inner.SplitText(page.Text)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			Content:    piece,
			PageNumber: page.Number,
			ChunkID:    i + 1,
		})
	}
	return chunks, nil
}
