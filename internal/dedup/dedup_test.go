package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/storage"
)

type failingStore struct {
	storage.Store
}

func (failingStore) MarkEventProcessed(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}

func TestFirstDelivery(t *testing.T) {
	store := storage.NewMemoryStore()
	d, err := New(context.Background(), store, time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	assert.True(t, d.FirstDelivery(ctx, "wamid.1"))
	assert.False(t, d.FirstDelivery(ctx, "wamid.1"))
	assert.True(t, d.FirstDelivery(ctx, "wamid.2"))
	assert.True(t, d.FirstDelivery(ctx, ""))
	assert.True(t, d.FirstDelivery(ctx, ""))
}

func TestFirstDelivery_SurvivesRestart(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first, err := New(ctx, store, time.Hour, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, first.FirstDelivery(ctx, "wamid.1"))
	require.NoError(t, first.Close())

	second, err := New(ctx, store, time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()
	assert.False(t, second.FirstDelivery(ctx, "wamid.1"), "the table remembers ids the new cache does not")
}

func TestFirstDelivery_StoreErrorLetsMessageThrough(t *testing.T) {
	d, err := New(context.Background(), failingStore{}, time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer d.Close()

	assert.True(t, d.FirstDelivery(context.Background(), "wamid.1"))
}
