// Package pricing turns verified line items and a pre-computed discount into
// a final order total: tiered shipping, gross-price VAT decomposition, and the
// gross total the customer is charged.
//
// Everything here is pure arithmetic on decimal values. Prices are gross
// (VAT-inclusive) integer HUF amounts; weights are kilograms. The calculator
// never touches client-submitted prices; callers pass catalog-verified items.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Item is a single verified cart line for pricing purposes.
type Item struct {
	UnitPrice  decimal.Decimal
	UnitWeight decimal.Decimal
	Quantity   int
}

// Result is the full price breakdown of one checkout attempt. It is derived
// state: recomputed on every request, never cached beyond it.
type Result struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	TotalWeight decimal.Decimal
	ShippingFee decimal.Decimal
	VATAmount   decimal.Decimal
	NetTotal    decimal.Decimal
	Total       decimal.Decimal
}

// ShippingPolicy is the injected shipping fee table: a flat base rate, a
// per-kg surcharge above a weight threshold, and a free-shipping subtotal
// threshold. The resulting fee is non-increasing in subtotal, non-decreasing
// in weight, and never negative.
type ShippingPolicy struct {
	BaseRate              decimal.Decimal
	WeightThresholdKg     decimal.Decimal
	SurchargePerKg        decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// Fee returns the shipping fee for the given accumulated weight and
// post-discount subtotal.
func (p ShippingPolicy) Fee(totalWeight, discountedSubtotal decimal.Decimal) decimal.Decimal {
	if discountedSubtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}

	fee := p.BaseRate
	if totalWeight.GreaterThan(p.WeightThresholdKg) {
		extraKg := totalWeight.Sub(p.WeightThresholdKg).Ceil()
		fee = fee.Add(extraKg.Mul(p.SurchargePerKg))
	}
	return fee
}

// Calculator combines the shipping policy with the single configured VAT rate
// (e.g. 0.27 for the one operating jurisdiction).
type Calculator struct {
	Shipping ShippingPolicy
	VATRate  decimal.Decimal
}

// Price computes the full breakdown for the given verified items and
// already-clamped discount.
//
// VAT is decomposed from the gross total, not added on top: netTotal is the
// rounded total/(1+rate) and vatAmount is the exact remainder, so
// netTotal + vatAmount == total always holds.
//
// Contract violations (discount exceeding the subtotal, a negative shipping
// fee) fail closed with an error rather than clamping.
func (c Calculator) Price(items []Item, discount decimal.Decimal) (Result, error) {
	subtotal := decimal.Zero
	totalWeight := decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(it.UnitPrice.Mul(qty))
		totalWeight = totalWeight.Add(it.UnitWeight.Mul(qty))
	}

	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return Result{}, errors.Errorf("discount %s out of range for subtotal %s", discount, subtotal)
	}

	discountedSubtotal := subtotal.Sub(discount)

	fee := c.Shipping.Fee(totalWeight, discountedSubtotal)
	if fee.IsNegative() {
		return Result{}, errors.Errorf("shipping policy produced negative fee %s", fee)
	}

	// A fully discounted cart still owes shipping, and VAT on the
	// shipping-inclusive gross total.
	total := discountedSubtotal.Add(fee)

	netTotal := total.Div(one.Add(c.VATRate)).Round(0)
	vatAmount := total.Sub(netTotal)

	return Result{
		Subtotal:    subtotal,
		Discount:    discount,
		TotalWeight: totalWeight,
		ShippingFee: fee,
		VATAmount:   vatAmount,
		NetTotal:    netTotal,
		Total:       total,
	}, nil
}
