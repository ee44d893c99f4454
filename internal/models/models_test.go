package models

import "testing"

func TestSession_IsLimaDelivery(t *testing.T) {
	s := &Session{ShippingType: ShippingLimaDelivery}
	if !s.IsLimaDelivery() {
		t.Error("Lima Contra Entrega should be a Lima delivery")
	}
	s.ShippingType = ShippingLimaShalom
	if s.IsLimaDelivery() {
		t.Error("Lima Shalom should not be a Lima delivery")
	}
}

func TestSession_ShippingDestination(t *testing.T) {
	s := &Session{Province: "Lima"}
	if got := s.ShippingDestination(); got != "Lima" {
		t.Errorf("destination = %q, want Lima", got)
	}
	s.District = "Miraflores"
	if got := s.ShippingDestination(); got != "Miraflores" {
		t.Errorf("destination = %q, want Miraflores", got)
	}
}

func TestProduct_HasUpsell(t *testing.T) {
	p := &Product{UpsellActive: true, UpsellPrice: 99}
	if !p.HasUpsell() {
		t.Error("active upsell with price should be offered")
	}
	p.UpsellPrice = 0
	if p.HasUpsell() {
		t.Error("upsell without price should not be offered")
	}
}
