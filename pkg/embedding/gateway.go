package embedding

import (
	"strings"

	"github.com/on-par/vemorable-sub000/internal/apperr"
)

// ErrEmptyInput is returned when there is no text to embed.
var ErrEmptyInput = apperr.NewValidation("embedding input is empty")

// EmbeddingResult carries the generated vector plus its token usage.
// Tokens falls back to a length-based estimate when the provider does
// not report usage.
type EmbeddingResult struct {
	Values []float32
	Tokens int
}

// Gateway wraps an EmbeddingProvider with input composition and the
// storage codec for vector literals. It holds no local state.
type Gateway struct {
	provider EmbeddingProvider
	name     string
	taskType string
}

func NewGateway(provider EmbeddingProvider, name string) *Gateway {
	if name == "" {
		name = "embedding"
	}
	return &Gateway{
		provider: provider,
		name:     name,
		taskType: "RETRIEVAL_DOCUMENT",
	}
}

// GenerateEmbedding embeds a single text blob. Blank input fails fast;
// provider failures are wrapped, not retried.
func (g *Gateway) GenerateEmbedding(text string) (*EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	res, err := g.provider.Generate(text, g.taskType)
	if err != nil {
		return nil, apperr.NewProvider(g.name, err)
	}

	tokens := res.TokenCount
	if tokens == 0 {
		tokens = estimateTokens(text)
	}

	return &EmbeddingResult{
		Values: res.Embedding.Values,
		Tokens: tokens,
	}, nil
}

// GenerateQueryEmbedding embeds a search query. Same contract as
// GenerateEmbedding but flags the provider task type accordingly.
func (g *Gateway) GenerateQueryEmbedding(text string) (*EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	res, err := g.provider.Generate(text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, apperr.NewProvider(g.name, err)
	}

	tokens := res.TokenCount
	if tokens == 0 {
		tokens = estimateTokens(text)
	}

	return &EmbeddingResult{
		Values: res.Embedding.Values,
		Tokens: tokens,
	}, nil
}

// GenerateNoteEmbedding composes the note fields into one labeled blob
// and embeds it. Sections that are blank are skipped entirely; if every
// section is blank the call fails with ErrEmptyInput.
func (g *Gateway) GenerateNoteEmbedding(title, content string, tags []string) (*EmbeddingResult, error) {
	blob := ComposeNoteText(title, content, tags)
	if blob == "" {
		return nil, ErrEmptyInput
	}
	return g.GenerateEmbedding(blob)
}

// ComposeNoteText builds the canonical "Title/Content/Tags" document used
// for note embeddings. Empty sections are omitted.
func ComposeNoteText(title, content string, tags []string) string {
	var sections []string

	if s := strings.TrimSpace(title); s != "" {
		sections = append(sections, "Title: "+s)
	}
	if s := strings.TrimSpace(content); s != "" {
		sections = append(sections, "Content: "+s)
	}

	var cleaned []string
	for _, t := range tags {
		if s := strings.TrimSpace(t); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) > 0 {
		sections = append(sections, "Tags: "+strings.Join(cleaned, ", "))
	}

	return strings.Join(sections, "\n")
}

// Rough heuristic: four characters per token, matching what embedding
// providers average for English prose.
func estimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
