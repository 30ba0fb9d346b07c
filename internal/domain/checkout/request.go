package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cszshop/checkout-api/internal/domain/catalog"
	"github.com/cszshop/checkout-api/internal/domain/order"
)

// LineItemRequest is one client-submitted cart line. ClientName, ClientSKU,
// ClientVariantName, and ClientPrice are display hints carried onto the order
// record; pricing always comes from the catalog, never from ClientPrice.
type LineItemRequest struct {
	ProductID         string
	VariantID         string
	Quantity          int
	ClientName        string
	ClientVariantName string
	ClientSKU         string
	ClientPrice       decimal.Decimal
}

// ref returns the catalog pricing key for this line.
func (li LineItemRequest) ref() catalog.Ref {
	return catalog.Ref{ProductID: li.ProductID, VariantID: li.VariantID}
}

// display names the line for error messages, preferring the client-supplied
// display name over the raw identifier.
func (li LineItemRequest) display() string {
	if li.ClientName != "" {
		return li.ClientName
	}
	return li.ref().Key()
}

// Request is one checkout attempt's input, shared by both payment flows.
// AttemptID is the duplicate-session idempotency token; the handler fills it
// from the X-Idempotency-Key header or generates one.
type Request struct {
	LineItems       []LineItemRequest
	ShippingAddress order.Address
	BillingAddress  *order.Address
	CouponCode      string
	POReference     string
	UserID          string
	AttemptID       string
}

// CalculateRequest is the input of the totals preview endpoint. Nothing is
// persisted; the shipping country is checked because the store only ships
// domestically.
type CalculateRequest struct {
	LineItems       []LineItemRequest
	CouponCode      string
	ShippingCountry string
}

func validateLineItems(items []LineItemRequest) error {
	if len(items) == 0 {
		return &ValidationError{Field: "lineItems", Message: "cart is empty"}
	}
	for _, li := range items {
		if li.ref().Key() == "" {
			return &ValidationError{Field: "lineItems", Message: "line item is missing a product identifier"}
		}
		if li.Quantity <= 0 {
			return &ValidationError{
				Field:   "lineItems",
				Message: "quantity must be greater than 0 for " + li.display(),
			}
		}
	}
	return nil
}

func (r *Request) validate() error {
	if err := validateLineItems(r.LineItems); err != nil {
		return err
	}
	if r.ShippingAddress == (order.Address{}) {
		return &ValidationError{Field: "shippingAddress", Message: "shipping address is required"}
	}
	if r.UserID == "" {
		return &ValidationError{Field: "userId", Message: "user id is required"}
	}
	return nil
}

// billing returns the billing address, defaulting to the shipping address
// when none was supplied.
func (r *Request) billing() order.Address {
	if r.BillingAddress != nil {
		return *r.BillingAddress
	}
	return r.ShippingAddress
}

// validShippingCountry accepts the store's single shipping destination in the
// spellings customers actually type.
func validShippingCountry(country string) bool {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "hu", "hungary", "magyarorszag", "magyarország":
		return true
	}
	return false
}
