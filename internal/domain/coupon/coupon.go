// Package coupon validates discount codes against their activation window,
// usage cap, and minimum-order rule, and computes a bounded discount.
//
// Evaluation is strictly read-only: consuming a use (incrementing UsedCount)
// belongs to the payment-confirmation process, not to checkout, so abandoned
// checkouts never burn coupon uses.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the subtotal, optionally
	// capped by MaxDiscount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts a fixed amount.
	DiscountFixed DiscountType = "fixed"
)

// ErrNotFound is returned by Repository.FindByCode when no coupon matches.
var ErrNotFound = errors.New("coupon not found")

// Coupon is a store-managed discount rule. Zero values of MaxDiscount,
// MinOrderValue, and MaxUses mean the constraint is unset.
type Coupon struct {
	Code          string
	IsActive      bool
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MaxDiscount   decimal.Decimal
	MinOrderValue decimal.Decimal
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	MaxUses       int
	UsedCount     int
}

// Repository provides case-insensitive exact-match coupon lookup.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// InvalidReason identifies which validation rule rejected a coupon.
type InvalidReason string

const (
	ReasonNotFound     InvalidReason = "not_found"
	ReasonInactive     InvalidReason = "inactive"
	ReasonNotStarted   InvalidReason = "not_started"
	ReasonExpired      InvalidReason = "expired"
	ReasonUsageLimit   InvalidReason = "usage_limit_reached"
	ReasonBelowMinimum InvalidReason = "below_minimum_order"
)

// Result is the outcome of evaluating a coupon code against a subtotal.
// An invalid coupon always carries a zero discount and the first failing
// rule's reason; there are no partial discounts.
type Result struct {
	Valid    bool
	Discount decimal.Decimal
	Reason   InvalidReason
}
