// Package order defines the persisted order record and its store contract.
//
// Checkout only ever creates an order (in pending status) and, on the card
// path, patches the payment session reference onto it afterwards. All later
// status transitions belong to the webhook/reconciliation process and the
// order store itself.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Checkout only produces StatusPending;
// the remaining states are documented for readers of persisted records.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// PaymentMethod selects one of the two checkout flows.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// Address is captured verbatim from the request; it is not validated against
// any postal database.
type Address struct {
	RecipientName string `json:"recipientName"`
	Street        string `json:"street"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	Phone         string `json:"phone,omitempty"`
	CompanyName   string `json:"companyName,omitempty"`
	VATNumber     string `json:"vatNumber,omitempty"`
}

// LineItem is a verified cart line: the unit price is catalog-authoritative
// and LineTotal = UnitPrice * Quantity. Immutable once produced.
type LineItem struct {
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId,omitempty"`
	Name        string          `json:"name"`
	VariantName string          `json:"variantName,omitempty"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"total"`
}

// Order is one checkout attempt's persisted record.
type Order struct {
	ID                string
	OrderNumber       string
	Status            Status
	UserID            string
	PaymentMethod     PaymentMethod
	Subtotal          decimal.Decimal
	Discount          decimal.Decimal
	ShippingFee       decimal.Decimal
	VATAmount         decimal.Decimal
	Total             decimal.Decimal
	ShippingAddress   Address
	BillingAddress    Address
	LineItems         []LineItem
	CouponCode        string
	CouponDiscount    decimal.Decimal
	POReference       string
	PaymentSessionRef string
	CreatedAt         time.Time
}

// Repository is the order store contract. Create assigns the store-side ID
// onto the passed order; SetPaymentSessionRef patches exactly one field and
// never touches price-bearing data.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	SetPaymentSessionRef(ctx context.Context, orderID, sessionRef string) error
}
