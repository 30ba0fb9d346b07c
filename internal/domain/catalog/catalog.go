// Package catalog resolves authoritative prices and weights for cart lines
// from the commerce document store. Client-submitted prices never enter the
// resolution path.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceInfo is the catalog-authoritative price (gross, integer currency
// units) and unit weight (kg) of a product or variant.
type PriceInfo struct {
	Price  decimal.Decimal
	Weight decimal.Decimal
}

// Ref identifies one cart line for pricing. When VariantID is set it takes
// precedence over ProductID as the pricing key.
type Ref struct {
	ProductID string
	VariantID string
}

// Key returns the identifier the line is priced by.
func (r Ref) Key() string {
	if r.VariantID != "" {
		return r.VariantID
	}
	return r.ProductID
}

// Store provides batched read-only price lookups against the catalog.
// Identifiers with no matching entry are absent from the returned map.
type Store interface {
	ProductPrices(ctx context.Context, ids []string) (map[string]PriceInfo, error)
	VariantPrices(ctx context.Context, ids []string) (map[string]PriceInfo, error)
}
