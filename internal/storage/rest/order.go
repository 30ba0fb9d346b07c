package rest

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/cszshop/checkout-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository over the document store. The
// store is the system of record for order lifecycle; this repository only
// creates records and patches the payment session reference.
type OrderRepository struct {
	c *Client
}

// NewOrderRepository returns an OrderRepository using the given client.
func NewOrderRepository(c *Client) *OrderRepository {
	return &OrderRepository{c: c}
}

type orderPayload struct {
	OrderNumber     string           `json:"orderNumber"`
	Status          string           `json:"status"`
	UserID          string           `json:"userId"`
	PaymentMethod   string           `json:"paymentMethod"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Discount        decimal.Decimal  `json:"discount"`
	ShippingFee     decimal.Decimal  `json:"shippingFee"`
	VATAmount       decimal.Decimal  `json:"vatAmount"`
	Total           decimal.Decimal  `json:"total"`
	ShippingAddress order.Address    `json:"shippingAddress"`
	BillingAddress  order.Address    `json:"billingAddress"`
	LineItems       []order.LineItem `json:"lineItems"`
	CouponCode      string           `json:"couponCode,omitempty"`
	CouponDiscount  decimal.Decimal  `json:"couponDiscount"`
	POReference     string           `json:"poReference,omitempty"`
}

type orderCreated struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
}

// Create persists a new order and assigns the store-generated id onto o.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	payload := orderPayload{
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		UserID:          o.UserID,
		PaymentMethod:   string(o.PaymentMethod),
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		ShippingFee:     o.ShippingFee,
		VATAmount:       o.VATAmount,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		LineItems:       o.LineItems,
		CouponCode:      o.CouponCode,
		CouponDiscount:  o.CouponDiscount,
		POReference:     o.POReference,
	}

	var out dataEnvelope[orderCreated]
	if err := r.c.do(ctx, http.MethodPost, "/orders", nil, dataEnvelope[orderPayload]{Data: payload}, &out); err != nil {
		return errors.Wrapf(err, "create order %s", o.OrderNumber)
	}
	if out.Data.ID == "" {
		return errors.Errorf("store returned no id for order %s", o.OrderNumber)
	}

	o.ID = out.Data.ID
	return nil
}

// SetPaymentSessionRef patches the single session-reference field; it never
// touches price-bearing fields.
func (r *OrderRepository) SetPaymentSessionRef(ctx context.Context, orderID, sessionRef string) error {
	patch := dataEnvelope[map[string]string]{Data: map[string]string{"paymentSessionRef": sessionRef}}
	if err := r.c.do(ctx, http.MethodPut, "/orders/"+orderID, nil, patch, nil); err != nil {
		return errors.Wrapf(err, "patch order %s", orderID)
	}
	return nil
}
