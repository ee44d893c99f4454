package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/daaqui/joyas-bot/internal/models"
)

// MemoryStore holds all data in memory, for tests and local runs
type MemoryStore struct {
	sessions  map[string]models.Session
	products  map[string]models.Product
	sales     map[string]models.Sale // keyed by order key
	customers map[string]models.Customer
	events    map[string]time.Time

	mu sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]models.Session),
		products:  make(map[string]models.Product),
		sales:     make(map[string]models.Sale),
		customers: make(map[string]models.Customer),
		events:    make(map[string]time.Time),
	}
}

// Session operations

func (m *MemoryStore) GetSession(_ context.Context, phone string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[phone]
	if !exists {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.sessions[session.PhoneNumber]; ok {
		session.CreatedAt = existing.CreatedAt
	} else if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	m.sessions[session.PhoneNumber] = *session
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, phone)
	return nil
}

func (m *MemoryStore) DeleteStaleSessions(_ context.Context, idleSince time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for phone, session := range m.sessions {
		if session.UpdatedAt.Before(idleSince) {
			delete(m.sessions, phone)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStore) CountSessions(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.sessions)), nil
}

// Catalog operations

func (m *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, exists := m.products[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (m *MemoryStore) UpsertProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	m.products[product.ID] = *product
	return nil
}

// DeleteProduct removes a product; used to simulate catalog changes.
func (m *MemoryStore) DeleteProduct(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
}

// Sale operations

func (m *MemoryStore) CreateSale(_ context.Context, sale *models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sales[sale.OrderKey]; exists {
		return ErrDuplicateSale
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	m.sales[sale.OrderKey] = *sale
	return nil
}

func (m *MemoryStore) GetSaleByOrderKey(_ context.Context, orderKey string) (*models.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sale, exists := m.sales[orderKey]
	if !exists {
		return nil, ErrNotFound
	}
	return &sale, nil
}

func (m *MemoryStore) GetPendingSalesByCustomer(_ context.Context, customerID string) ([]*models.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sales []*models.Sale
	for _, sale := range m.sales {
		if sale.CustomerID == customerID && sale.Status == models.SaleStatusAdvancePaid {
			s := sale
			sales = append(sales, &s)
		}
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].CreatedAt.Before(sales[j].CreatedAt)
	})
	return sales, nil
}

func (m *MemoryStore) UpdateSaleStatus(_ context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, sale := range m.sales {
		if sale.ID == id {
			sale.Status = status
			m.sales[key] = sale
			return nil
		}
	}
	return ErrNotFound
}

// SaleCount returns the number of stored sales.
func (m *MemoryStore) SaleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sales)
}

// Customer operations

func (m *MemoryStore) RecordPurchase(_ context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	existing, ok := m.customers[customer.ID]
	if !ok {
		existing = models.Customer{ID: customer.ID, CreatedAt: now}
	}
	existing.ProfileName = customer.ProfileName
	existing.LastProvince = customer.LastProvince
	existing.LastDistrict = customer.LastDistrict
	existing.LastDetails = customer.LastDetails
	existing.TotalPurchases++
	existing.LastPurchaseAt = &now
	existing.UpdatedAt = now

	m.customers[customer.ID] = existing
	*customer = existing
	return nil
}

func (m *MemoryStore) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	customer, exists := m.customers[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &customer, nil
}

// Webhook dedup

func (m *MemoryStore) MarkEventProcessed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.events[eventID]; seen {
		return false, nil
	}
	m.events[eventID] = time.Now()
	return true, nil
}

func (m *MemoryStore) PurgeProcessedEvents(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged int64
	for id, at := range m.events {
		if at.Before(before) {
			delete(m.events, id)
			purged++
		}
	}
	return purged, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
