package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

func TestPrepareText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"collapses whitespace", "a\n\n b\t\tc", "a b c"},
		{"drops non ascii", "café 🎉 time", "caf time"},
		{"drops control", "x\x00y\x07z", "xyz"},
		{"empty", "", EmptyCommentPlaceholder},
		{"only emoji", "🎉🎉", EmptyCommentPlaceholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrepareText(tt.input))
		})
	}
}

func TestPrepareText_Truncates(t *testing.T) {
	out := PrepareText(strings.Repeat("a", MaxEmbedChars+50))

	assert.Len(t, out, MaxEmbedChars)
}

func TestPrepareQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "what do people think?", "what do people think?"},
		{"japanese", "この動画の評判は？", "この動画の評判は？"},
		{"accents", " ¿Qué opinan\n del café? ", "¿Qué opinan del café?"},
		{"drops control", "x\x00y\x07z", "xyz"},
		{"blank", " \t\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrepareQuery(tt.input))
		})
	}
}

func TestPrepareQuery_TruncatesRunes(t *testing.T) {
	out := PrepareQuery(strings.Repeat("é", MaxEmbedChars+50))

	assert.Equal(t, MaxEmbedChars, utf8.RuneCountInString(out))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	index := &domain.EmbeddingIndex{Vectors: [][]float32{
		{0, 1},
		{1, 0},
		{0.7, 0.7},
	}}

	hits := Search(index, []float32{1, 0.1}, 2)

	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, 2, hits[1].Position)
	assert.GreaterOrEqual(t, hits[0].Similarity, hits[1].Similarity)
}

func TestSearch_TiesByPosition(t *testing.T) {
	index := &domain.EmbeddingIndex{Vectors: [][]float32{
		{1, 0},
		{0, 1},
		{1, 0},
		{1, 0},
	}}

	hits := Search(index, []float32{1, 0}, 3)

	require.Len(t, hits, 3)
	assert.Equal(t, []int{0, 2, 3}, []int{hits[0].Position, hits[1].Position, hits[2].Position})
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	index := &domain.EmbeddingIndex{Vectors: [][]float32{{1, 0}, {0, 1}}}

	hits := Search(index, []float32{1, 0}, 10)

	assert.Len(t, hits, 2)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Position, 0)
		assert.Less(t, h.Position, 2)
	}
}

func TestSearch_EmptyInputs(t *testing.T) {
	assert.Nil(t, Search(nil, []float32{1}, 3))
	assert.Nil(t, Search(&domain.EmbeddingIndex{}, []float32{1}, 3))
	assert.Nil(t, Search(&domain.EmbeddingIndex{Vectors: [][]float32{{1}}}, []float32{1}, 0))
}

func TestIndexer_Build_OneVectorPerComment(t *testing.T) {
	embedder := &mockEmbeddingService{}
	ix := NewIndexer(embedder, 0)
	comments := append(testComments(), domain.Comment{Text: "🎉"})

	index, err := ix.Build(context.Background(), comments)

	require.NoError(t, err)
	assert.Equal(t, len(comments), index.Len())
	assert.Equal(t, "mock-embed", index.Model)
	assert.Equal(t, 4, index.Dimensions)
	assert.Equal(t, 1, embedder.batchCalls)
}

func TestIndexer_Build_Batches(t *testing.T) {
	embedder := &mockEmbeddingService{}
	ix := NewIndexer(embedder, 2)
	comments := make([]domain.Comment, 5)
	for i := range comments {
		comments[i] = domain.Comment{Text: strings.Repeat("w", i+1)}
	}

	index, err := ix.Build(context.Background(), comments)

	require.NoError(t, err)
	assert.Equal(t, 5, index.Len())
	assert.Equal(t, []int{2, 2, 1}, embedder.batchSizes)
	for i, c := range comments {
		assert.Equal(t, embedder.vectorFor(PrepareText(c.Text)), index.Vectors[i], "vector %d out of order", i)
	}
}

func TestIndexer_Build_Empty(t *testing.T) {
	embedder := &mockEmbeddingService{}
	ix := NewIndexer(embedder, 0)

	index, err := ix.Build(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
	assert.Equal(t, 4, index.Dimensions)
	assert.Equal(t, 0, embedder.batchCalls)
}

func TestIndexer_Build_Errors(t *testing.T) {
	t.Run("embed failure", func(t *testing.T) {
		ix := NewIndexer(&mockEmbeddingService{batchErr: errors.New("429")}, 0)
		_, err := ix.Build(context.Background(), testComments())
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("count mismatch", func(t *testing.T) {
		ix := NewIndexer(&mockEmbeddingService{short: true}, 0)
		_, err := ix.Build(context.Background(), testComments())
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("empty vector", func(t *testing.T) {
		embedder := &mockEmbeddingService{vectors: map[string][]float32{"cats": {}}}
		ix := NewIndexer(embedder, 0)
		_, err := ix.Build(context.Background(), testComments())
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("no embedder", func(t *testing.T) {
		ix := NewIndexer(nil, 0)
		_, err := ix.Build(context.Background(), testComments())
		assert.ErrorIs(t, err, domain.ErrEmbedding)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
