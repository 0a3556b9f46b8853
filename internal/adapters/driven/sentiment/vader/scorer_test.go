package vader

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "great video", "great video"},
		{"emphasis", "I *really* love this", "I really love this"},
		{"link keeps text", "see [my channel](https://example.com/c) please", "see my channel please"},
		{"bare url removed", "watch https://youtu.be/abc12345678 now", "watch now"},
		{"entities unescaped", "cats & dogs", "cats & dogs"},
		{"whitespace", "  a\n\n  b  ", "a b"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalise(tt.input))
		})
	}
}

func TestScorer_Score_Polarity(t *testing.T) {
	s := NewScorer()

	pos := s.Score("This is the best video ever, I love it!")
	neg := s.Score("This is terrible, awful and boring. I hate it.")
	neu := s.Score("The video is twelve minutes long.")

	assert.Equal(t, domain.SentimentPositive, pos.Label())
	assert.Equal(t, domain.SentimentNegative, neg.Label())
	assert.Equal(t, domain.SentimentNeutral, neu.Label())
	assert.InDelta(t, 1.0, pos.Positive+pos.Negative+pos.Neutral, 0.01)
}

func TestScorer_Score_Empty(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, domain.NeutralSentiment(), s.Score(""))
	assert.Equal(t, domain.NeutralSentiment(), s.Score(" \n\t"))
	assert.Equal(t, domain.NeutralSentiment(), s.Score("https://example.com"))
}

func TestScorer_Score_Deterministic(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, s.Score("pretty good overall"), s.Score("pretty good overall"))
}

func TestScorer_Score_Concurrent(t *testing.T) {
	s := NewScorer()
	want := s.Score("I love this so much")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, s.Score("I love this so much"))
		}()
	}
	wg.Wait()
}
