package service

import (
	"math"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

const (
	TaxRate            = 0.10
	DefaultDeliveryFee = 40.0
)

type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotals prices a cart. The delivery fee only applies to a non-empty
// subtotal.
func ComputeTotals(items []models.CartItem, deliveryFee float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	subtotal = round2(subtotal)

	t := Totals{Subtotal: subtotal}
	if subtotal > 0 {
		t.Tax = round2(TaxRate * subtotal)
		t.DeliveryFee = deliveryFee
	}
	t.Total = round2(t.Subtotal + t.Tax + t.DeliveryFee)
	return t
}
