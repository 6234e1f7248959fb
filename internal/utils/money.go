package utils

import "math"

// TaxRate is the flat tax applied to every order subtotal.
const TaxRate = 0.18

// Round2 rounds to 2 decimal places with round-half-up semantics.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// PriceBreakdown holds the computed monetary fields of an order.
// Every stage is rounded to 2 decimals before the next one is derived.
type PriceBreakdown struct {
	Subtotal float64
	Tax      float64
	Discount float64
	Total    float64
}

// CalculateTotal computes subtotal + tax for a set of line amounts,
// then applies a percentage discount on the taxed total.
func CalculateTotal(lineAmounts []float64, discountPercent float64) PriceBreakdown {
	var subtotal float64
	for _, amount := range lineAmounts {
		subtotal += amount
	}
	subtotal = Round2(subtotal)

	tax := Round2(subtotal * TaxRate)
	total := Round2(subtotal + tax)

	discount := Round2(total * discountPercent / 100)
	final := Round2(total - discount)

	return PriceBreakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    final,
	}
}
