// Package orders turns a paid conversation into a recorded sale.
package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/logging"
	"github.com/daaqui/joyas-bot/internal/models"
	"github.com/daaqui/joyas-bot/internal/services"
	"github.com/daaqui/joyas-bot/internal/storage"
)

// ErrAlreadyFinalized is returned when the session's order was recorded before.
var ErrAlreadyFinalized = errors.New("orders: order already finalized")

// Finalizer records sales and tells the admin about them.
type Finalizer struct {
	store    storage.Store
	sheet    services.OrderSheet // optional
	notifier services.Notifier   // optional
	log      *zap.Logger
	newID    func() string
}

// NewFinalizer creates a finalizer; sheet and notifier may be nil.
func NewFinalizer(store storage.Store, sheet services.OrderSheet, notifier services.Notifier, log *zap.Logger) *Finalizer {
	return &Finalizer{
		store:    store,
		sheet:    sheet,
		notifier: notifier,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Balance is what the customer still owes after the advance. Never negative.
func Balance(price, advance float64) float64 {
	return math.Max(price-advance, 0)
}

// Finalize writes the sale for session and updates the customer record.
// Once the sale is stored, customer, spreadsheet and admin failures are
// logged, not returned. A second call
// for the same order returns the stored sale with ErrAlreadyFinalized.
func (f *Finalizer) Finalize(ctx context.Context, session *models.Session) (*models.Sale, error) {
	orderKey := session.OrderKey
	if orderKey == "" {
		// sessions saved before order keys existed
		orderKey = f.newID()
	}

	sale := &models.Sale{
		ID:              f.newID(),
		OrderKey:        orderKey,
		ProductID:       session.ProductID,
		ProductName:     session.ProductName,
		Price:           session.ProductPrice,
		ShippingType:    session.ShippingType,
		PaymentMethod:   session.PaymentMethod,
		Province:        session.Province,
		District:        session.District,
		ClientDetails:   session.ClientDetails,
		CustomerID:      session.PhoneNumber,
		Status:          models.SaleStatusAdvancePaid,
		AdvanceReceived: session.Advance,
		Balance:         Balance(session.ProductPrice, session.Advance),
		CreatedAt:       time.Now(),
	}

	if err := f.store.CreateSale(ctx, sale); err != nil {
		if errors.Is(err, storage.ErrDuplicateSale) {
			existing, getErr := f.store.GetSaleByOrderKey(ctx, orderKey)
			if getErr != nil {
				return nil, fmt.Errorf("orders: load finalized order: %w", getErr)
			}
			return existing, ErrAlreadyFinalized
		}
		return nil, fmt.Errorf("orders: save sale: %w", err)
	}
	f.log.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("customer", logging.MaskPhone(sale.CustomerID)),
		zap.Float64("price", sale.Price),
		zap.Float64("balance", sale.Balance))

	customer := &models.Customer{
		ID:           session.PhoneNumber,
		ProfileName:  session.UserName,
		LastProvince: session.Province,
		LastDistrict: session.District,
		LastDetails:  session.ClientDetails,
	}
	if err := f.store.RecordPurchase(ctx, customer); err != nil {
		f.log.Error("failed to record customer purchase", zap.String("sale_id", sale.ID), zap.Error(err))
	}

	if f.sheet != nil {
		if err := f.sheet.AppendSale(ctx, sale); err != nil {
			f.log.Error("failed to append sale to sheet", zap.String("sale_id", sale.ID), zap.Error(err))
		}
	}

	if f.notifier != nil {
		if err := f.notifier.Notify(ctx, AdminSummary(sale)); err != nil {
			f.log.Error("failed to notify admin", zap.String("sale_id", sale.ID), zap.Error(err))
		}
	}

	return sale, nil
}

// AdminSummary is the sale announcement sent to the admin channels.
func AdminSummary(sale *models.Sale) string {
	return fmt.Sprintf("🎉 ¡Nueva Venta Confirmada! 🎉\n\n"+
		"Producto: %s\n"+
		"Tipo: %s\n"+
		"Cliente WA ID: %s\n"+
		"Detalles:\n%s",
		sale.ProductName, sale.ShippingType, sale.CustomerID, sale.ClientDetails)
}
