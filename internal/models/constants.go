package models

const (
	// EmbeddingDimensions must match the configured embedding model.
	// all-minilm produces 384-element vectors.
	EmbeddingDimensions = 384

	// DefaultChapterTitle is a placeholder, chapter detection is not implemented.
	DefaultChapterTitle = "General"

	// NoContextAnswer is returned when retrieval finds no chunks at all.
	NoContextAnswer = "I could not find any relevant information."

	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultTopK         = 5
)

// ChunkSeparators are tried most- to least-specific; the empty string means
// a hard character split.
var ChunkSeparators = []string{"\n\n", "\n", ".", " ", ""}

const SystemPrompt = `You are an intelligent academic assistant.
Answer the user's question strictly based on the provided Context.
If the answer is not in the context, say "Please ask a question that is related to the uploaded documents.".`

const (
	UserPromptTemplate   = "Context:\n%s\n\nQuestion:\n%s"
	ContextBlockTemplate = "Source: %s (Page %d)\nContent: %s\n\n"
)
