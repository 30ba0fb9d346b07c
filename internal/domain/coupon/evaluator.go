package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluator checks a coupon code against the pre-discount subtotal and
// computes the resulting discount.
type Evaluator struct {
	repo Repository
	now  func() time.Time
}

// NewEvaluator creates an Evaluator backed by the given Repository.
func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo, now: time.Now}
}

func invalid(reason InvalidReason) Result {
	return Result{Valid: false, Discount: decimal.Zero, Reason: reason}
}

// Evaluate validates the code and computes its discount for the given
// subtotal. Rules short-circuit in a fixed order; the first failure yields
// {Valid: false, Discount: 0}. A repository failure (as opposed to a plain
// miss) is returned as an error so callers fail the whole checkout rather
// than silently pricing without the coupon.
func (e *Evaluator) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (Result, error) {
	c, err := e.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid(ReasonNotFound), nil
		}
		return Result{}, errors.Wrap(err, "lookup coupon")
	}

	if !c.IsActive {
		return invalid(ReasonInactive), nil
	}

	now := e.now()
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return invalid(ReasonNotStarted), nil
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return invalid(ReasonExpired), nil
	}

	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return invalid(ReasonUsageLimit), nil
	}

	if c.MinOrderValue.IsPositive() && subtotal.LessThan(c.MinOrderValue) {
		return invalid(ReasonBelowMinimum), nil
	}

	discount, err := e.discountFor(c, subtotal)
	if err != nil {
		return Result{}, err
	}

	return Result{Valid: true, Discount: discount}, nil
}

// discountFor computes the bounded discount for a coupon that passed all
// validity rules. Amounts are integer currency units; percentage discounts
// round half-up.
func (e *Evaluator) discountFor(c *Coupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(hundred).Round(0)
		if c.MaxDiscount.IsPositive() {
			discount = decimal.Min(discount, c.MaxDiscount)
		}
	case DiscountFixed:
		discount = c.DiscountValue
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type %q", c.DiscountType)
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	// A coupon can never make the order negative.
	return decimal.Min(discount, subtotal), nil
}
