package models

import "time"

// Session stores the conversation state of one WhatsApp customer
type Session struct {
	PhoneNumber string `json:"phone_number" gorm:"primaryKey;size:32"`
	State       string `json:"state" gorm:"size:64;index"`

	// Product snapshot taken when the customer picked the offer
	ProductID    string  `json:"product_id" gorm:"size:128"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
	IsUpsell     bool    `json:"is_upsell"`

	UserName string `json:"user_name"`

	// Shipping and payment, collected turn by turn
	ShippingType  string  `json:"shipping_type" gorm:"size:64"`
	PaymentMethod string  `json:"payment_method"`
	Province      string  `json:"province"`
	District      string  `json:"district"`
	ClientDetails string  `json:"client_details"`
	Advance       float64 `json:"advance"`

	// OrderKey identifies the order this conversation will produce
	OrderKey string `json:"order_key" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// Shipping types
const (
	ShippingLimaDelivery   = "Lima Contra Entrega"
	ShippingLimaShalom     = "Lima Shalom"
	ShippingProvinceShalom = "Provincia Shalom"
)

// Payment methods
const (
	PaymentCashOnDelivery = "Contra Entrega (Efectivo/Yape/Plin)"
	PaymentAdvanceBalance = "Adelanto y Saldo (Yape/Plin)"
)

// IsLimaDelivery reports whether the order is paid on delivery in Lima.
func (s *Session) IsLimaDelivery() bool {
	return s.ShippingType == ShippingLimaDelivery
}

// ShippingDestination is the place shown in the order summary.
func (s *Session) ShippingDestination() string {
	if s.District != "" {
		return s.District
	}
	return s.Province
}
