package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL + "/v1/"
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	tests := []struct {
		model string
		dims  int
		want  int
	}{
		{"", 0, 1536},
		{"text-embedding-3-large", 0, 3072},
		{"custom-model", 0, 1536},
		{"text-embedding-3-large", 256, 256},
	}
	for _, tt := range tests {
		svc, err := NewEmbeddingService(Config{APIKey: "k", Model: tt.model, Dimensions: tt.dims})
		require.NoError(t, err)
		assert.Equal(t, tt.want, svc.Dimensions(), tt.model)
	}
}

func TestEmbeddingService_EmbedBatch_OrdersByIndex(t *testing.T) {
	var got struct {
		Model      string   `json:"model"`
		Input      []string `json:"input"`
		Dimensions *int     `json:"dimensions"`
	}
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		]}`))
	})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, []string{"first", "second"}, got.Input)
	assert.Nil(t, got.Dimensions)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
}

func TestEmbeddingService_SendsDimensions(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, Config{Model: "text-embedding-3-large", Dimensions: 256}, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5]}]}`))
	})

	vec, err := svc.Embed(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vec)
	assert.EqualValues(t, 256, got["dimensions"])
}

func TestEmbeddingService_Errors(t *testing.T) {
	t.Run("count mismatch", func(t *testing.T) {
		svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
		})
		_, err := svc.EmbedBatch(context.Background(), []string{"a"})
		assert.Error(t, err)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
		})
		_, err := svc.EmbedBatch(context.Background(), []string{"a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("empty input", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1/"})
		require.NoError(t, err)
		vectors, err := svc.EmbedBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, vectors)
	})
}
