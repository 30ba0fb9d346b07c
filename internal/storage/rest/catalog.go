package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cszshop/checkout-api/internal/domain/catalog"
)

var _ catalog.Store = (*CatalogStore)(nil)

// CatalogStore implements catalog.Store over the document store's batched
// price endpoints.
type CatalogStore struct {
	c *Client
}

// NewCatalogStore returns a CatalogStore using the given client.
func NewCatalogStore(c *Client) *CatalogStore {
	return &CatalogStore{c: c}
}

type priceRecord struct {
	ID     string          `json:"id"`
	Price  decimal.Decimal `json:"price"`
	Weight decimal.Decimal `json:"weight"`
}

// ProductPrices fetches price and weight for plain products in one request.
func (s *CatalogStore) ProductPrices(ctx context.Context, ids []string) (map[string]catalog.PriceInfo, error) {
	return s.fetch(ctx, "/products", ids)
}

// VariantPrices fetches price and weight for product variants in one request.
func (s *CatalogStore) VariantPrices(ctx context.Context, ids []string) (map[string]catalog.PriceInfo, error) {
	return s.fetch(ctx, "/variants", ids)
}

func (s *CatalogStore) fetch(ctx context.Context, path string, ids []string) (map[string]catalog.PriceInfo, error) {
	if len(ids) == 0 {
		return map[string]catalog.PriceInfo{}, nil
	}

	query := url.Values{
		"ids":    {strings.Join(ids, ",")},
		"fields": {"price,weight"},
	}
	var out dataEnvelope[[]priceRecord]
	if err := s.c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}

	infos := make(map[string]catalog.PriceInfo, len(out.Data))
	for _, rec := range out.Data {
		infos[rec.ID] = catalog.PriceInfo{Price: rec.Price, Weight: rec.Weight}
	}
	return infos, nil
}
