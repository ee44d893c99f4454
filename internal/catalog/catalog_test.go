package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/storage"
)

func newTestCatalog(t *testing.T) (*Catalog, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.UpsertProduct(context.Background(), &models.Product{
		ID: "collar-girasol-radiant-01", Name: "Collar Girasol", BasePrice: 69, Active: true,
	}))
	require.NoError(t, store.UpsertProduct(context.Background(), &models.Product{
		ID: "pulsera-luna", Name: "Pulsera Luna", BasePrice: 39, Active: false,
	}))
	cat := New(store, []config.ProductKeywords{
		{ProductID: "collar-girasol-radiant-01", Keywords: []string{"Girasol", "cambia de color"}},
		{ProductID: "pulsera-luna", Keywords: []string{"luna"}},
		{ProductID: "anillo-sol", Keywords: []string{"anillo"}},
	})
	return cat, store
}

func TestLookup(t *testing.T) {
	cat, _ := newTestCatalog(t)
	ctx := context.Background()

	product, err := cat.Lookup(ctx, "Hola, vi el collar GIRASOL en Instagram")
	require.NoError(t, err)
	assert.Equal(t, "collar-girasol-radiant-01", product.ID)

	product, err = cat.Lookup(ctx, "¿es el que cambia de color?")
	require.NoError(t, err)
	assert.Equal(t, "collar-girasol-radiant-01", product.ID)

	_, err = cat.Lookup(ctx, "hola")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestLookup_InactiveOrMissing(t *testing.T) {
	cat, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := cat.Lookup(ctx, "quiero la pulsera luna")
	assert.ErrorIs(t, err, ErrNoMatch, "inactive products are not offered")

	_, err = cat.Lookup(ctx, "un anillo")
	assert.ErrorIs(t, err, ErrNoMatch, "keyword for a product not in storage")
}

func TestMatches(t *testing.T) {
	cat, _ := newTestCatalog(t)
	assert.True(t, cat.Matches("girasol"))
	assert.True(t, cat.Matches("luna"), "keyword match does not check stock")
	assert.False(t, cat.Matches("buenas tardes"))
	assert.False(t, cat.Matches(""))
}

func TestGet(t *testing.T) {
	cat, store := newTestCatalog(t)
	ctx := context.Background()

	_, err := cat.Get(ctx, "collar-girasol-radiant-01")
	require.NoError(t, err)

	store.DeleteProduct("collar-girasol-radiant-01")
	_, err = cat.Get(ctx, "collar-girasol-radiant-01")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = cat.Get(ctx, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestParseAndSeed(t *testing.T) {
	data := []byte(`
products:
  - id: collar-girasol-radiant-01
    name: Collar Mágico Girasol Radiant
    base_price: 69
    active: true
    upsell_active: true
    upsell_price: 99
`)
	products, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].HasUpsell())

	store := storage.NewMemoryStore()
	n, err := Seed(context.Background(), store, products)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetProduct(context.Background(), "collar-girasol-radiant-01")
	require.NoError(t, err)
	assert.Equal(t, 69.0, got.BasePrice)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("products:\n  - name: sin id\n    base_price: 10\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("products:\n  - id: x\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products:\n  - id: x\n    base_price: 10\n"), 0o644))

	products, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
