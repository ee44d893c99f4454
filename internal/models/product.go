package models

import "time"

// Product is a catalog entry. The bot only reads products; the seed command
// writes them.
type Product struct {
	ID               string  `json:"id" yaml:"id" gorm:"primaryKey;size:128"`
	Name             string  `json:"name" yaml:"name"`
	ShortDescription string  `json:"short_description" yaml:"short_description"`
	BasePrice        float64 `json:"base_price" yaml:"base_price"`
	Active           bool    `json:"active" yaml:"active"`

	// Images
	ImageMain      string `json:"image_main" yaml:"image_main"`
	ImagePackaging string `json:"image_packaging" yaml:"image_packaging"`
	ImageUpsell    string `json:"image_upsell" yaml:"image_upsell"`

	// Details
	Material  string `json:"material" yaml:"material"`
	Packaging string `json:"packaging" yaml:"packaging"`

	// Upsell offer
	UpsellActive bool    `json:"upsell_active" yaml:"upsell_active"`
	UpsellName   string  `json:"upsell_name" yaml:"upsell_name"`
	UpsellPrice  float64 `json:"upsell_price" yaml:"upsell_price"`

	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// HasUpsell reports whether the product carries an active upsell offer.
func (p *Product) HasUpsell() bool {
	return p.UpsellActive && p.UpsellPrice > 0
}
