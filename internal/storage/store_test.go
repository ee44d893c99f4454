package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/daaqui/joyas-bot/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

// forEachStore runs the same checks against both implementations.
func forEachStore(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("database", func(t *testing.T) {
		fn(t, NewDatabaseStore(openTestDB(t)))
	})
}

func TestStore_SessionLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		_, err := store.GetSession(ctx, "51987654321")
		assert.ErrorIs(t, err, ErrNotFound)

		session := &models.Session{
			PhoneNumber:  "51987654321",
			State:        "awaiting_occasion_response",
			ProductID:    "collar-girasol-radiant-01",
			ProductName:  "Collar Girasol Radiant",
			ProductPrice: 69,
			OrderKey:     "key-1",
		}
		require.NoError(t, store.SaveSession(ctx, session))

		got, err := store.GetSession(ctx, "51987654321")
		require.NoError(t, err)
		assert.Equal(t, "awaiting_occasion_response", got.State)
		assert.Equal(t, 69.0, got.ProductPrice)
		assert.False(t, got.IsUpsell)

		got.State = "awaiting_location"
		got.IsUpsell = true
		got.ProductPrice = 99
		require.NoError(t, store.SaveSession(ctx, got))

		got, err = store.GetSession(ctx, "51987654321")
		require.NoError(t, err)
		assert.Equal(t, "awaiting_location", got.State)
		assert.True(t, got.IsUpsell)
		assert.Equal(t, "key-1", got.OrderKey)

		count, err := store.CountSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, store.DeleteSession(ctx, "51987654321"))
		_, err = store.GetSession(ctx, "51987654321")
		assert.ErrorIs(t, err, ErrNotFound)

		// deleting twice is not an error
		assert.NoError(t, store.DeleteSession(ctx, "51987654321"))
	})
}

func TestStore_DeleteStaleSessions(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.SaveSession(ctx, &models.Session{PhoneNumber: "1", State: "awaiting_location"}))

		deleted, err := store.DeleteStaleSessions(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, deleted)

		deleted, err = store.DeleteStaleSessions(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		count, err := store.CountSessions(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestStore_Products(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		_, err := store.GetProduct(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		product := &models.Product{ID: "p1", Name: "Collar", BasePrice: 69, Active: true}
		require.NoError(t, store.UpsertProduct(ctx, product))

		product.BasePrice = 79
		require.NoError(t, store.UpsertProduct(ctx, product))

		got, err := store.GetProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 79.0, got.BasePrice)
		assert.True(t, got.Active)
	})
}

func TestStore_CreateSaleRejectsDuplicateOrderKey(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		first := &models.Sale{ID: "s1", OrderKey: "order-1", CustomerID: "519", Price: 69, Status: models.SaleStatusAdvancePaid}
		require.NoError(t, store.CreateSale(ctx, first))

		second := &models.Sale{ID: "s2", OrderKey: "order-1", CustomerID: "519", Price: 69, Status: models.SaleStatusAdvancePaid}
		assert.ErrorIs(t, store.CreateSale(ctx, second), ErrDuplicateSale)

		got, err := store.GetSaleByOrderKey(ctx, "order-1")
		require.NoError(t, err)
		assert.Equal(t, "s1", got.ID)
	})
}

func TestStore_PendingSales(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		require.NoError(t, store.CreateSale(ctx, &models.Sale{ID: "s1", OrderKey: "k1", CustomerID: "519", Status: models.SaleStatusAdvancePaid, CreatedAt: base}))
		require.NoError(t, store.CreateSale(ctx, &models.Sale{ID: "s2", OrderKey: "k2", CustomerID: "519", Status: models.SaleStatusAdvancePaid, CreatedAt: base.Add(time.Minute)}))
		require.NoError(t, store.CreateSale(ctx, &models.Sale{ID: "s3", OrderKey: "k3", CustomerID: "519", Status: models.SaleStatusKeySent, CreatedAt: base}))
		require.NoError(t, store.CreateSale(ctx, &models.Sale{ID: "s4", OrderKey: "k4", CustomerID: "520", Status: models.SaleStatusAdvancePaid, CreatedAt: base}))

		pending, err := store.GetPendingSalesByCustomer(ctx, "519")
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "s1", pending[0].ID)
		assert.Equal(t, "s2", pending[1].ID)

		require.NoError(t, store.UpdateSaleStatus(ctx, "s1", models.SaleStatusKeySent))
		pending, err = store.GetPendingSalesByCustomer(ctx, "519")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "s2", pending[0].ID)

		assert.ErrorIs(t, store.UpdateSaleStatus(ctx, "nope", models.SaleStatusKeySent), ErrNotFound)
	})
}

func TestStore_RecordPurchaseIncrements(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		_, err := store.GetCustomer(ctx, "519")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.RecordPurchase(ctx, &models.Customer{ID: "519", ProfileName: "Ana", LastDistrict: "Miraflores"}))
		require.NoError(t, store.RecordPurchase(ctx, &models.Customer{ID: "519", ProfileName: "Ana", LastDistrict: "Surco"}))

		got, err := store.GetCustomer(ctx, "519")
		require.NoError(t, err)
		assert.Equal(t, 2, got.TotalPurchases)
		assert.Equal(t, "Surco", got.LastDistrict)
		assert.NotNil(t, got.LastPurchaseAt)
	})
}

func TestStore_ProcessedEvents(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		fresh, err := store.MarkEventProcessed(ctx, "wamid.1")
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = store.MarkEventProcessed(ctx, "wamid.1")
		require.NoError(t, err)
		assert.False(t, fresh)

		purged, err := store.PurgeProcessedEvents(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		fresh, err = store.MarkEventProcessed(ctx, "wamid.1")
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}

func TestStore_Ping(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		assert.NoError(t, store.Ping(context.Background()))
	})
}
