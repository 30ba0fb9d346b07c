package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cszshop/checkout-api/internal/domain/coupon"
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository over the document store.
// Case-insensitive code matching is done by the store's query engine.
type CouponRepository struct {
	c *Client
}

// NewCouponRepository returns a CouponRepository using the given client.
func NewCouponRepository(c *Client) *CouponRepository {
	return &CouponRepository{c: c}
}

type couponRecord struct {
	Code          string          `json:"code"`
	IsActive      bool            `json:"isActive"`
	DiscountType  string          `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	MaxDiscount   decimal.Decimal `json:"maxDiscount"`
	MinOrderValue decimal.Decimal `json:"minOrderValue"`
	ValidFrom     *time.Time      `json:"validFrom"`
	ValidUntil    *time.Time      `json:"validUntil"`
	MaxUses       int             `json:"maxUses"`
	UsedCount     int             `json:"usedCount"`
}

// FindByCode looks up the zero-or-one coupon matching the code and returns
// coupon.ErrNotFound on a miss.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	query := url.Values{"code": {code}}
	var out dataEnvelope[[]couponRecord]
	if err := r.c.do(ctx, http.MethodGet, "/coupons", query, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, coupon.ErrNotFound
	}

	rec := out.Data[0]
	return &coupon.Coupon{
		Code:          rec.Code,
		IsActive:      rec.IsActive,
		DiscountType:  coupon.DiscountType(rec.DiscountType),
		DiscountValue: rec.DiscountValue,
		MaxDiscount:   rec.MaxDiscount,
		MinOrderValue: rec.MinOrderValue,
		ValidFrom:     rec.ValidFrom,
		ValidUntil:    rec.ValidUntil,
		MaxUses:       rec.MaxUses,
		UsedCount:     rec.UsedCount,
	}, nil
}
