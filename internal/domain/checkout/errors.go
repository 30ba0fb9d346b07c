package checkout

import "fmt"

// ValidationError reports a request that failed input validation. It names
// the violated field so the client can surface a specific message; it is
// always a 400-class failure and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProductNotFoundError reports a cart line whose identifier has no catalog
// entry. The whole checkout aborts; there are no partial orders. Item names
// the line by its display name, falling back to the pricing identifier.
type ProductNotFoundError struct {
	Item string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.Item)
}
