package models

import "time"

// Customer aggregates purchases by WhatsApp number
type Customer struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	ProfileName    string     `json:"profile_name"`
	LastProvince   string     `json:"last_province"`
	LastDistrict   string     `json:"last_district"`
	LastDetails    string     `json:"last_details"`
	TotalPurchases int        `json:"total_purchases"`
	LastPurchaseAt *time.Time `json:"last_purchase_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
