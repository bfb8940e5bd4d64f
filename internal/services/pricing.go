package services

import (
	"github.com/shopspring/decimal"
)

// PriceLine is one (unit price, quantity) pair entering the totals
// computation. Unit prices must come from the catalog record, never from
// client input.
type PriceLine struct {
	UnitPrice float64
	Quantity  int
}

// Adjustments are the order-level amounts applied on top of the line total.
type Adjustments struct {
	Discount        float64
	ShippingCharges float64
	TaxAmount       float64
}

// Totals is the result of the pricing computation.
type Totals struct {
	TotalAmount float64
	FinalAmount float64
}

// ComputeTotals computes TotalAmount = sum(price*quantity) and
// FinalAmount = TotalAmount - Discount + ShippingCharges + TaxAmount.
// All arithmetic runs on decimals and rounds to two places, so float
// accumulation error never reaches an order record.
//
// An empty line list, a non-positive quantity, a negative price or
// adjustment, and a negative final amount are all rejected.
func ComputeTotals(lines []PriceLine, adj Adjustments) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, newValidationError("order must contain at least one item")
	}
	if adj.Discount < 0 || adj.ShippingCharges < 0 || adj.TaxAmount < 0 {
		return Totals{}, newValidationError("discount, shipping charges and tax must be non-negative")
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return Totals{}, newValidationError("item quantity must be at least 1")
		}
		if line.UnitPrice < 0 {
			return Totals{}, newValidationError("item price must be non-negative")
		}
		price := decimal.NewFromFloat(line.UnitPrice)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total = total.Round(2)

	final := total.
		Sub(decimal.NewFromFloat(adj.Discount)).
		Add(decimal.NewFromFloat(adj.ShippingCharges)).
		Add(decimal.NewFromFloat(adj.TaxAmount)).
		Round(2)

	if final.IsNegative() {
		return Totals{}, newValidationError("discount exceeds order total")
	}

	return Totals{
		TotalAmount: total.InexactFloat64(),
		FinalAmount: final.InexactFloat64(),
	}, nil
}
