package models

import "time"

// Sale is a completed order. Sales are append-only apart from Status.
type Sale struct {
	ID       string `json:"id" gorm:"primaryKey;size:64"`
	OrderKey string `json:"order_key" gorm:"size:64;uniqueIndex"`

	ProductID   string  `json:"product_id" gorm:"size:128"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`

	ShippingType  string `json:"shipping_type"`
	PaymentMethod string `json:"payment_method"`
	Province      string `json:"province"`
	District      string `json:"district"`
	ClientDetails string `json:"client_details"`

	CustomerID string `json:"customer_id" gorm:"size:32;index"`
	Status     string `json:"status" gorm:"size:32;index"`

	AdvanceReceived float64 `json:"advance_received"`
	Balance         float64 `json:"balance"`

	CreatedAt time.Time `json:"created_at"`
}

// Sale status constants
const (
	SaleStatusAdvancePaid = "Adelanto Pagado"
	SaleStatusKeySent     = "Clave Enviada"
)
