package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	coupon *Coupon
	err    error
}

func (m *mockRepo) FindByCode(context.Context, string) (*Coupon, error) {
	return m.coupon, m.err
}

func newTestEvaluator(repo Repository, now time.Time) *Evaluator {
	e := NewEvaluator(repo)
	e.now = func() time.Time { return now }
	return e
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestEvaluator_Evaluate(t *testing.T) {
	fixedNow := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := fixedNow.Add(-24 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name         string
		coupon       *Coupon
		repoErr      error
		subtotal     int64
		wantValid    bool
		wantDiscount int64
		wantReason   InvalidReason
	}{
		{
			name: "active percentage coupon",
			coupon: &Coupon{
				Code: "SAVE10", IsActive: true,
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:     10000,
			wantValid:    true,
			wantDiscount: 1000,
		},
		{
			name:       "unknown code",
			repoErr:    ErrNotFound,
			subtotal:   10000,
			wantReason: ReasonNotFound,
		},
		{
			name: "inactive coupon",
			coupon: &Coupon{
				Code: "OLD", IsActive: false,
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:   10000,
			wantReason: ReasonInactive,
		},
		{
			name: "not yet started",
			coupon: &Coupon{
				Code: "SOON", IsActive: true, ValidFrom: &future,
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:   10000,
			wantReason: ReasonNotStarted,
		},
		{
			name: "expired",
			coupon: &Coupon{
				Code: "LATE", IsActive: true, ValidUntil: &past,
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:   10000,
			wantReason: ReasonExpired,
		},
		{
			name: "usage limit reached",
			coupon: &Coupon{
				Code: "BURNT", IsActive: true, MaxUses: 100, UsedCount: 100,
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:   10000,
			wantReason: ReasonUsageLimit,
		},
		{
			name: "one use left is still valid",
			coupon: &Coupon{
				Code: "LAST", IsActive: true, MaxUses: 100, UsedCount: 99,
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:     10000,
			wantValid:    true,
			wantDiscount: 1000,
		},
		{
			name: "below minimum order",
			coupon: &Coupon{
				Code: "BIG", IsActive: true, MinOrderValue: d(5000),
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:   4999,
			wantReason: ReasonBelowMinimum,
		},
		{
			name: "exactly at minimum order",
			coupon: &Coupon{
				Code: "BIG", IsActive: true, MinOrderValue: d(5000),
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:     5000,
			wantValid:    true,
			wantDiscount: 500,
		},
		{
			name: "percentage clamped by max discount",
			coupon: &Coupon{
				Code: "CAP", IsActive: true, MaxDiscount: d(1500),
				DiscountType: DiscountPercentage, DiscountValue: d(20),
			},
			subtotal:     10000,
			wantValid:    true,
			wantDiscount: 1500,
		},
		{
			name: "percentage rounds half up",
			coupon: &Coupon{
				Code: "ODD", IsActive: true,
				DiscountType: DiscountPercentage, DiscountValue: d(15),
			},
			subtotal:     333, // 49.95 rounds to 50
			wantValid:    true,
			wantDiscount: 50,
		},
		{
			name: "fixed discount",
			coupon: &Coupon{
				Code: "MINUS2K", IsActive: true,
				DiscountType: DiscountFixed, DiscountValue: d(2000),
			},
			subtotal:     10000,
			wantValid:    true,
			wantDiscount: 2000,
		},
		{
			name: "fixed discount clamped to subtotal",
			coupon: &Coupon{
				Code: "MINUS2K", IsActive: true,
				DiscountType: DiscountFixed, DiscountValue: d(2000),
			},
			subtotal:     1500,
			wantValid:    true,
			wantDiscount: 1500,
		},
		{
			name: "inactive wins over expiry",
			coupon: &Coupon{
				Code: "BOTH", IsActive: false, ValidUntil: &past,
				DiscountType: DiscountPercentage, DiscountValue: d(10),
			},
			subtotal:   10000,
			wantReason: ReasonInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvaluator(&mockRepo{coupon: tt.coupon, err: tt.repoErr}, fixedNow)

			res, err := e.Evaluate(context.Background(), "CODE", d(tt.subtotal))
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, res.Valid)
			assert.True(t, res.Discount.Equal(d(tt.wantDiscount)),
				"discount %s, want %d", res.Discount, tt.wantDiscount)
			if !tt.wantValid {
				assert.Equal(t, tt.wantReason, res.Reason)
				assert.True(t, res.Discount.IsZero())
			}
		})
	}
}

func TestEvaluator_RepositoryFailure(t *testing.T) {
	repoErr := errors.New("store unreachable")
	e := newTestEvaluator(&mockRepo{err: repoErr}, time.Now())

	_, err := e.Evaluate(context.Background(), "SAVE10", d(10000))
	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr)
}

func TestEvaluator_UnsupportedDiscountType(t *testing.T) {
	e := newTestEvaluator(&mockRepo{coupon: &Coupon{
		Code: "WEIRD", IsActive: true, DiscountType: "bogo",
	}}, time.Now())

	_, err := e.Evaluate(context.Background(), "WEIRD", d(10000))
	require.Error(t, err)
}
