// Package payment abstracts the hosted-checkout payment gateway consumed by
// the card flow: a session creation call and a one-time discount object call.
package payment

import "context"

// LineItem is one display line on the hosted payment page. UnitAmount is in
// integer currency units (the store currency is zero-decimal).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// DiscountParams creates a single-use discount object scoped to one checkout.
type DiscountParams struct {
	AmountOff int64
	Currency  string
	Name      string
}

// Discount is a created gateway discount object.
type Discount struct {
	ID string
}

// SessionParams describes a hosted checkout session. Metadata links the
// session back to the persisted order so webhooks and success-page lookups
// can find it even if the browser never returns.
type SessionParams struct {
	Currency   string
	Locale     string
	LineItems  []LineItem
	DiscountID string
	Metadata   map[string]string
	ReturnURL  string
}

// Session is a created hosted checkout session.
type Session struct {
	ID           string
	ClientSecret string
}

// Gateway is the payment provider contract.
type Gateway interface {
	CreateDiscount(ctx context.Context, params DiscountParams) (*Discount, error)
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
}
