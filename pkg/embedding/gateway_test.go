package embedding

import (
	"errors"
	"testing"

	"github.com/on-par/vemorable-sub000/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	values   []float32
	tokens   int
	err      error
	calls    int
	lastText string
	lastTask string
}

func (f *fakeProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	f.calls++
	f.lastText = text
	f.lastTask = taskType
	if f.err != nil {
		return nil, f.err
	}
	return &EmbeddingResponse{
		Embedding:  EmbeddingResponseEmbedding{Values: f.values},
		TokenCount: f.tokens,
	}, nil
}

func TestGenerateEmbedding(t *testing.T) {
	t.Run("returns provider vector", func(t *testing.T) {
		provider := &fakeProvider{values: []float32{0.1, 0.2, 0.3}, tokens: 7}
		gw := NewGateway(provider, "fake")

		res, err := gw.GenerateEmbedding("hello world")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, res.Values)
		assert.Equal(t, 7, res.Tokens)
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("rejects blank input without calling provider", func(t *testing.T) {
		provider := &fakeProvider{values: []float32{1}}
		gw := NewGateway(provider, "fake")

		for _, input := range []string{"", "   ", "\n\t"} {
			res, err := gw.GenerateEmbedding(input)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrEmptyInput)
		}
		assert.Equal(t, 0, provider.calls)
	})

	t.Run("wraps provider failure", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("connection refused")}
		gw := NewGateway(provider, "gemini")

		res, err := gw.GenerateEmbedding("some text")
		assert.Nil(t, res)

		var provErr *apperr.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "gemini", provErr.Provider)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("estimates tokens when provider reports none", func(t *testing.T) {
		provider := &fakeProvider{values: []float32{1}}
		gw := NewGateway(provider, "fake")

		res, err := gw.GenerateEmbedding("abcdefgh") // 8 chars -> 2 tokens
		require.NoError(t, err)
		assert.Equal(t, 2, res.Tokens)

		res, err = gw.GenerateEmbedding("abc") // below one token, floor at 1
		require.NoError(t, err)
		assert.Equal(t, 1, res.Tokens)
	})
}

func TestGenerateQueryEmbedding(t *testing.T) {
	provider := &fakeProvider{values: []float32{0.5}}
	gw := NewGateway(provider, "fake")

	_, err := gw.GenerateQueryEmbedding("find my notes")
	require.NoError(t, err)
	assert.Equal(t, "RETRIEVAL_QUERY", provider.lastTask)

	_, err = gw.GenerateEmbedding("store this")
	require.NoError(t, err)
	assert.Equal(t, "RETRIEVAL_DOCUMENT", provider.lastTask)
}

func TestGenerateNoteEmbedding(t *testing.T) {
	t.Run("composes fields into one call", func(t *testing.T) {
		provider := &fakeProvider{values: []float32{1}}
		gw := NewGateway(provider, "fake")

		_, err := gw.GenerateNoteEmbedding("Groceries", "buy milk", []string{"errands", "home"})
		require.NoError(t, err)
		assert.Equal(t, 1, provider.calls)
		assert.Equal(t, "Title: Groceries\nContent: buy milk\nTags: errands, home", provider.lastText)
	})

	t.Run("all sections blank fails fast", func(t *testing.T) {
		provider := &fakeProvider{values: []float32{1}}
		gw := NewGateway(provider, "fake")

		_, err := gw.GenerateNoteEmbedding("  ", "", []string{" ", ""})
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Equal(t, 0, provider.calls)
	})
}

func TestComposeNoteText(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		tags    []string
		want    string
	}{
		{
			name:    "all sections",
			title:   "Trip",
			content: "pack bags",
			tags:    []string{"travel"},
			want:    "Title: Trip\nContent: pack bags\nTags: travel",
		},
		{
			name:    "title omitted when blank",
			title:   "  ",
			content: "body only",
			want:    "Content: body only",
		},
		{
			name:    "tags omitted when all blank",
			title:   "T",
			content: "C",
			tags:    []string{"", "  "},
			want:    "Title: T\nContent: C",
		},
		{
			name:    "blank tags filtered, rest kept",
			content: "c",
			tags:    []string{"a", "", " b "},
			want:    "Content: c\nTags: a, b",
		},
		{
			name: "everything blank",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeNoteText(tt.title, tt.content, tt.tags))
		})
	}
}
