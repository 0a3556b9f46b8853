package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

func TestHistoryService_NilStore(t *testing.T) {
	service := NewHistoryService(nil)

	records, err := service.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = service.Latest(context.Background(), "abc12345678")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryService_Recent(t *testing.T) {
	store := &mockHistoryStore{}
	ctx := context.Background()
	for _, id := range []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "aaaaaaaaaaa"} {
		_, err := store.Save(ctx, &domain.AnalysisRecord{VideoID: id})
		require.NoError(t, err)
	}
	service := NewHistoryService(store)

	records, err := service.Recent(ctx, 2)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(3), records[0].ID)
	assert.Equal(t, int64(2), records[1].ID)
}

func TestHistoryService_Recent_DefaultLimit(t *testing.T) {
	store := &mockHistoryStore{}
	ctx := context.Background()
	for i := 0; i < DefaultHistoryLimit+5; i++ {
		_, _ = store.Save(ctx, &domain.AnalysisRecord{VideoID: "aaaaaaaaaaa"})
	}

	records, err := NewHistoryService(store).Recent(ctx, 0)

	require.NoError(t, err)
	assert.Len(t, records, DefaultHistoryLimit)
}

func TestHistoryService_Recent_StoreError(t *testing.T) {
	store := &mockHistoryStore{listErr: errors.New("database is locked")}

	_, err := NewHistoryService(store).Recent(context.Background(), 5)

	assert.Error(t, err)
}

func TestHistoryService_Latest(t *testing.T) {
	store := &mockHistoryStore{}
	ctx := context.Background()
	_, _ = store.Save(ctx, &domain.AnalysisRecord{VideoID: "aaaaaaaaaaa", Summary: "old"})
	_, _ = store.Save(ctx, &domain.AnalysisRecord{VideoID: "aaaaaaaaaaa", Summary: "new"})
	service := NewHistoryService(store)

	rec, err := service.Latest(ctx, "aaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "new", rec.Summary)

	_, err = service.Latest(ctx, "zzzzzzzzzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
