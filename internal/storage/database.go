package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/daaqui/joyas-bot/internal/models"
)

// DatabaseStore implements Store on top of GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open GORM connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// AllModels returns every table the bot owns, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.Session{},
		&models.Product{},
		&models.Sale{},
		&models.Customer{},
		&models.ProcessedEvent{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("storage: auto-migrate: %w", err)
	}
	return nil
}

// Session operations

func (d *DatabaseStore) GetSession(ctx context.Context, phone string) (*models.Session, error) {
	var session models.Session
	err := d.db.WithContext(ctx).Where("phone_number = ?", phone).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get session: %w", err)
	}
	return &session, nil
}

func (d *DatabaseStore) SaveSession(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		UpdateAll: true,
	}).Create(session).Error
	if err != nil {
		return fmt.Errorf("storage: save session: %w", err)
	}
	return nil
}

func (d *DatabaseStore) DeleteSession(ctx context.Context, phone string) error {
	err := d.db.WithContext(ctx).Where("phone_number = ?", phone).Delete(&models.Session{}).Error
	if err != nil {
		return fmt.Errorf("storage: delete session: %w", err)
	}
	return nil
}

func (d *DatabaseStore) DeleteStaleSessions(ctx context.Context, idleSince time.Time) (int64, error) {
	result := d.db.WithContext(ctx).Where("updated_at < ?", idleSince).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("storage: delete stale sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (d *DatabaseStore) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.Session{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("storage: count sessions: %w", err)
	}
	return count, nil
}

// Catalog operations

func (d *DatabaseStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get product: %w", err)
	}
	return &product, nil
}

func (d *DatabaseStore) UpsertProduct(ctx context.Context, product *models.Product) error {
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(product).Error
	if err != nil {
		return fmt.Errorf("storage: upsert product %q: %w", product.ID, err)
	}
	return nil
}

// Sale operations

func (d *DatabaseStore) CreateSale(ctx context.Context, sale *models.Sale) error {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_key"}},
		DoNothing: true,
	}).Create(sale)
	if result.Error != nil {
		return fmt.Errorf("storage: create sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDuplicateSale
	}
	return nil
}

func (d *DatabaseStore) GetSaleByOrderKey(ctx context.Context, orderKey string) (*models.Sale, error) {
	var sale models.Sale
	err := d.db.WithContext(ctx).Where("order_key = ?", orderKey).First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get sale: %w", err)
	}
	return &sale, nil
}

func (d *DatabaseStore) GetPendingSalesByCustomer(ctx context.Context, customerID string) ([]*models.Sale, error) {
	var sales []*models.Sale
	err := d.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, models.SaleStatusAdvancePaid).
		Order("created_at ASC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("storage: pending sales: %w", err)
	}
	return sales, nil
}

func (d *DatabaseStore) UpdateSaleStatus(ctx context.Context, id string, status string) error {
	result := d.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("storage: update sale status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Customer operations

func (d *DatabaseStore) RecordPurchase(ctx context.Context, customer *models.Customer) error {
	now := time.Now()
	customer.TotalPurchases = 1
	customer.LastPurchaseAt = &now

	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"profile_name":     customer.ProfileName,
			"last_province":    customer.LastProvince,
			"last_district":    customer.LastDistrict,
			"last_details":     customer.LastDetails,
			"total_purchases":  gorm.Expr("total_purchases + 1"),
			"last_purchase_at": now,
			"updated_at":       now,
		}),
	}).Create(customer).Error
	if err != nil {
		return fmt.Errorf("storage: record purchase for %s: %w", customer.ID, err)
	}
	return nil
}

func (d *DatabaseStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get customer: %w", err)
	}
	return &customer, nil
}

// Webhook dedup

func (d *DatabaseStore) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEvent{ID: eventID, ProcessedAt: time.Now()})
	if result.Error != nil {
		return false, fmt.Errorf("storage: mark event %s: %w", eventID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (d *DatabaseStore) PurgeProcessedEvents(ctx context.Context, before time.Time) (int64, error) {
	result := d.db.WithContext(ctx).Where("processed_at < ?", before).Delete(&models.ProcessedEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("storage: purge processed events: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (d *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("storage: ping: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
