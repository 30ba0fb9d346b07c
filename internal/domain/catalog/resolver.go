package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// Resolver batches price lookups for a set of cart line refs.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver over the given Store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve partitions refs into plain products and variants (variant wins when
// both are present on a line), fetches each partition in one batched lookup,
// and merges the results into a single key → PriceInfo map.
//
// The two lookups are independent reads and run concurrently. An empty ref
// list returns an empty map without touching the store. Refs the catalog does
// not know are simply absent from the result; deciding that a miss is fatal
// is the caller's job.
func (r *Resolver) Resolve(ctx context.Context, refs []Ref) (map[string]PriceInfo, error) {
	if len(refs) == 0 {
		return map[string]PriceInfo{}, nil
	}

	productIDs := make([]string, 0, len(refs))
	variantIDs := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		key := ref.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if ref.VariantID != "" {
			variantIDs = append(variantIDs, ref.VariantID)
		} else {
			productIDs = append(productIDs, ref.ProductID)
		}
	}

	var products, variants map[string]PriceInfo
	g, gctx := errgroup.WithContext(ctx)
	if len(productIDs) > 0 {
		g.Go(func() error {
			var err error
			products, err = r.store.ProductPrices(gctx, productIDs)
			if err != nil {
				return errors.Wrap(err, "fetch product prices")
			}
			return nil
		})
	}
	if len(variantIDs) > 0 {
		g.Go(func() error {
			var err error
			variants, err = r.store.VariantPrices(gctx, variantIDs)
			if err != nil {
				return errors.Wrap(err, "fetch variant prices")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]PriceInfo, len(products)+len(variants))
	for id, info := range products {
		merged[id] = info
	}
	for id, info := range variants {
		merged[id] = info
	}
	return merged, nil
}
