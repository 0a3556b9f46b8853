package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// Embedding input limits.
const (
	// MaxEmbedChars truncates each comment before embedding.
	MaxEmbedChars = 10000

	// DefaultEmbedBatchSize is the number of texts per embedding request.
	DefaultEmbedBatchSize = 256

	// EmptyCommentPlaceholder stands in for comments with no embeddable text,
	// so every comment keeps its vector.
	EmptyCommentPlaceholder = "(empty comment)"
)

// PrepareText reduces a comment to printable ASCII within MaxEmbedChars.
// It never returns an empty string.
func PrepareText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if len(out) > MaxEmbedChars {
		out = out[:MaxEmbedChars]
	}
	if out == "" {
		return EmptyCommentPlaceholder
	}
	return out
}

// PrepareQuery cleans a search query for embedding. Unlike PrepareText it
// keeps non-ASCII letters: questions are short and often not in English.
// Control characters are dropped, whitespace is collapsed and the result is
// capped at MaxEmbedChars runes.
func PrepareQuery(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), r == utf8.RuneError:
			return -1
		default:
			return r
		}
	}, text)
	out := strings.Join(strings.Fields(cleaned), " ")
	if utf8.RuneCountInString(out) > MaxEmbedChars {
		out = string([]rune(out)[:MaxEmbedChars])
	}
	return out
}

// Indexer builds the per-session embedding index.
type Indexer struct {
	embedder  driven.EmbeddingService
	batchSize int
}

// NewIndexer creates an indexer. A batchSize of zero takes the default.
func NewIndexer(embedder driven.EmbeddingService, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &Indexer{embedder: embedder, batchSize: batchSize}
}

// Build embeds every comment in order. The returned index holds exactly one
// vector per comment. Any failure returns domain.ErrEmbedding.
func (ix *Indexer) Build(ctx context.Context, comments []domain.Comment) (*domain.EmbeddingIndex, error) {
	if ix.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}

	texts := make([]string, len(comments))
	for i := range comments {
		texts[i] = PrepareText(comments[i].Text)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += ix.batchSize {
		end := min(start+ix.batchSize, len(texts))
		logger.Debug("Embedding comments %d-%d of %d", start+1, end, len(texts))

		batch, err := ix.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %w", domain.ErrEmbedding, start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: batch %d-%d returned %d vectors",
				domain.ErrEmbedding, start, end, len(batch))
		}
		for i, v := range batch {
			if len(v) == 0 {
				return nil, fmt.Errorf("%w: empty vector for comment %d", domain.ErrEmbedding, start+i)
			}
		}
		vectors = append(vectors, batch...)
	}

	dims := ix.embedder.Dimensions()
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}

	return &domain.EmbeddingIndex{
		Model:      ix.embedder.ModelName(),
		Dimensions: dims,
		Vectors:    vectors,
	}, nil
}

// Hit is a position in the index with its similarity to a query.
type Hit struct {
	Position   int
	Similarity float64
}

// Search ranks every vector in the index by cosine similarity to query and
// returns the top k. Ties are ordered by position. Every returned position
// is within the index.
func Search(index *domain.EmbeddingIndex, query []float32, k int) []Hit {
	if k <= 0 || index.Len() == 0 {
		return nil
	}

	hits := make([]Hit, len(index.Vectors))
	for i, v := range index.Vectors {
		hits[i] = Hit{Position: i, Similarity: CosineSimilarity(query, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero-norm vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
