package handler

import (
	"github.com/shopspring/decimal"

	"github.com/cszshop/checkout-api/internal/domain/checkout"
	"github.com/cszshop/checkout-api/internal/domain/order"
)

// lineItemDTO mirrors the cart line the storefront sends. Name, variantName,
// sku, and price are display hints; the server re-prices every line from the
// catalog.
type lineItemDTO struct {
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId"`
	Quantity    int             `json:"quantity"`
	Name        string          `json:"name"`
	VariantName string          `json:"variantName"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
}

func toDomainItems(items []lineItemDTO) []checkout.LineItemRequest {
	out := make([]checkout.LineItemRequest, len(items))
	for i, li := range items {
		out[i] = checkout.LineItemRequest{
			ProductID:         li.ProductID,
			VariantID:         li.VariantID,
			Quantity:          li.Quantity,
			ClientName:        li.Name,
			ClientVariantName: li.VariantName,
			ClientSKU:         li.SKU,
			ClientPrice:       li.Price,
		}
	}
	return out
}

type checkoutRequestDTO struct {
	LineItems       []lineItemDTO  `json:"lineItems"`
	ShippingAddress *order.Address `json:"shippingAddress"`
	BillingAddress  *order.Address `json:"billingAddress"`
	CouponCode      string         `json:"couponCode"`
	POReference     string         `json:"poReference"`
	UserID          string         `json:"userId"`
}

func (d *checkoutRequestDTO) toDomain(attemptID string) *checkout.Request {
	req := &checkout.Request{
		LineItems:      toDomainItems(d.LineItems),
		BillingAddress: d.BillingAddress,
		CouponCode:     d.CouponCode,
		POReference:    d.POReference,
		UserID:         d.UserID,
		AttemptID:      attemptID,
	}
	if d.ShippingAddress != nil {
		req.ShippingAddress = *d.ShippingAddress
	}
	return req
}

type calculateRequestDTO struct {
	LineItems       []lineItemDTO `json:"lineItems"`
	CouponCode      string        `json:"couponCode"`
	ShippingCountry string        `json:"shippingCountry"`
}

type createSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
}

type bankTransferResponse struct {
	OrderID          string               `json:"orderId"`
	OrderNumber      string               `json:"orderNumber"`
	Total            int64                `json:"total"`
	BankAccount      checkout.BankAccount `json:"bankAccount"`
	PaymentReference string               `json:"paymentReference"`
}

// Amounts are integer HUF, so IntPart is exact.
type calculateResponse struct {
	Subtotal              int64  `json:"subtotal"`
	Discount              int64  `json:"discount"`
	Shipping              int64  `json:"shipping"`
	NetTotal              int64  `json:"netTotal"`
	VATAmount             int64  `json:"vatAmount"`
	Total                 int64  `json:"total"`
	FreeShippingThreshold int64  `json:"freeShippingThreshold"`
	CouponApplied         bool   `json:"couponApplied"`
	CouponError           string `json:"couponError,omitempty"`
}

func toCalculateResponse(res *checkout.CalculateResult) calculateResponse {
	return calculateResponse{
		Subtotal:              res.Pricing.Subtotal.IntPart(),
		Discount:              res.Pricing.Discount.IntPart(),
		Shipping:              res.Pricing.ShippingFee.IntPart(),
		NetTotal:              res.Pricing.NetTotal.IntPart(),
		VATAmount:             res.Pricing.VATAmount.IntPart(),
		Total:                 res.Pricing.Total.IntPart(),
		FreeShippingThreshold: res.FreeShippingThreshold.IntPart(),
		CouponApplied:         res.CouponApplied,
		CouponError:           res.CouponError,
	}
}
