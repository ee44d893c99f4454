package storage

import (
	"context"
	"errors"
	"time"

	"github.com/daaqui/joyas-bot/internal/models"
)

var (
	// ErrNotFound is returned when a keyed record does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicateSale is returned when a sale with the same order key exists.
	ErrDuplicateSale = errors.New("storage: duplicate sale")
)

// Store defines the interface for storage operations
type Store interface {
	// Session operations. SaveSession is an upsert: the last writer wins.
	GetSession(ctx context.Context, phone string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, phone string) error
	DeleteStaleSessions(ctx context.Context, idleSince time.Time) (int64, error)
	CountSessions(ctx context.Context) (int64, error)

	// Catalog operations
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpsertProduct(ctx context.Context, product *models.Product) error

	// Sale operations
	CreateSale(ctx context.Context, sale *models.Sale) error
	GetSaleByOrderKey(ctx context.Context, orderKey string) (*models.Sale, error)
	GetPendingSalesByCustomer(ctx context.Context, customerID string) ([]*models.Sale, error)
	UpdateSaleStatus(ctx context.Context, id string, status string) error

	// Customer operations
	RecordPurchase(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)

	// Webhook dedup. MarkEventProcessed reports false if the id was seen before.
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
	PurgeProcessedEvents(ctx context.Context, before time.Time) (int64, error)

	Ping(ctx context.Context) error
}
