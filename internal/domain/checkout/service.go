// Package checkout orchestrates the two checkout flows: price a cart from
// authoritative catalog data, persist a pending order, and on the card path
// create a hosted payment-gateway session tied to that order.
//
// The security-relevant invariant of the whole core lives here: every amount
// is computed server-side from the catalog on every attempt, and nothing ever
// branches on a client-submitted price or total.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cszshop/checkout-api/internal/domain/catalog"
	"github.com/cszshop/checkout-api/internal/domain/coupon"
	"github.com/cszshop/checkout-api/internal/domain/order"
	"github.com/cszshop/checkout-api/internal/domain/payment"
	"github.com/cszshop/checkout-api/internal/domain/pricing"
)

// Display names shown on the hosted payment page for synthetic lines; the
// store serves Hungarian customers.
const (
	shippingLineName     = "Szállítási díj"
	fallbackDiscountName = "Kedvezmény"
)

// BankAccount is the static destination account for bank-transfer orders.
type BankAccount struct {
	AccountHolder string `json:"accountHolder"`
	BankName      string `json:"bankName"`
	IBAN          string `json:"iban"`
	BIC           string `json:"bic"`
}

// Config holds checkout parameters that do not vary per request.
type Config struct {
	// Currency and Locale of hosted payment sessions (single-currency store).
	Currency string
	Locale   string
	// ReturnURL the gateway redirects to; may contain the gateway's session
	// id placeholder.
	ReturnURL string
	// Bank is returned verbatim on bank-transfer orders.
	Bank BankAccount
}

// CardSessionResult is the client-facing outcome of the card flow. It is also
// the value memoized per checkout attempt by the duplicate-session guard.
type CardSessionResult struct {
	SessionID    string `json:"sessionId"`
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
}

// BankTransferResult is the outcome of the bank-transfer flow: the pending
// order plus everything the customer needs for a manual transfer.
type BankTransferResult struct {
	OrderID          string
	OrderNumber      string
	Total            decimal.Decimal
	BankAccount      BankAccount
	PaymentReference string
}

// CalculateResult is the totals preview for a cart that is not (yet) being
// ordered.
type CalculateResult struct {
	Pricing               pricing.Result
	FreeShippingThreshold decimal.Decimal
	CouponApplied         bool
	CouponError           string
}

// Service runs the shared pricing pipeline and the per-flow orchestration on
// top of it. It owns order creation but no later lifecycle transition.
type Service struct {
	catalog  *catalog.Resolver
	coupons  *coupon.Evaluator
	calc     pricing.Calculator
	orders   order.Repository
	gateway  payment.Gateway
	attempts AttemptStore
	cfg      Config
	now      func() time.Time

	// inflight coalesces concurrent card-session calls for the same checkout
	// attempt within this process; attempts covers completed calls and other
	// instances.
	inflight singleflight.Group
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	cfg Config,
	resolver *catalog.Resolver,
	coupons *coupon.Evaluator,
	calc pricing.Calculator,
	orders order.Repository,
	gateway payment.Gateway,
	attempts AttemptStore,
) *Service {
	return &Service{
		catalog:  resolver,
		coupons:  coupons,
		calc:     calc,
		orders:   orders,
		gateway:  gateway,
		attempts: attempts,
		cfg:      cfg,
		now:      time.Now,
	}
}

// pricedCart is the output of the shared pipeline: verified lines plus the
// full price breakdown for one attempt.
type pricedCart struct {
	lines      []order.LineItem
	result     pricing.Result
	couponCode string
	coupon     coupon.Result
}

// priceCart resolves authoritative prices, evaluates the optional coupon, and
// prices the cart. Any catalog miss aborts the whole checkout.
func (s *Service) priceCart(ctx context.Context, items []LineItemRequest, couponCode string) (*pricedCart, error) {
	refs := make([]catalog.Ref, len(items))
	for i, li := range items {
		refs[i] = li.ref()
	}

	prices, err := s.catalog.Resolve(ctx, refs)
	if err != nil {
		return nil, err
	}

	lines := make([]order.LineItem, len(items))
	pitems := make([]pricing.Item, len(items))
	subtotal := decimal.Zero
	for i, li := range items {
		info, ok := prices[li.ref().Key()]
		if !ok {
			return nil, &ProductNotFoundError{Item: li.display()}
		}

		lineTotal := info.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
		lines[i] = order.LineItem{
			ProductID:   li.ProductID,
			VariantID:   li.VariantID,
			Name:        li.ClientName,
			VariantName: li.ClientVariantName,
			SKU:         li.ClientSKU,
			UnitPrice:   info.Price,
			Quantity:    li.Quantity,
			LineTotal:   lineTotal,
		}
		pitems[i] = pricing.Item{UnitPrice: info.Price, UnitWeight: info.Weight, Quantity: li.Quantity}
		subtotal = subtotal.Add(lineTotal)
	}

	var cres coupon.Result
	if couponCode != "" {
		cres, err = s.coupons.Evaluate(ctx, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.calc.Price(pitems, cres.Discount)
	if err != nil {
		return nil, err
	}

	return &pricedCart{lines: lines, result: result, couponCode: couponCode, coupon: cres}, nil
}

func (s *Service) buildOrder(req *Request, cart *pricedCart, method order.PaymentMethod, number string, now time.Time) *order.Order {
	o := &order.Order{
		OrderNumber:     number,
		Status:          order.StatusPending,
		UserID:          req.UserID,
		PaymentMethod:   method,
		Subtotal:        cart.result.Subtotal,
		Discount:        cart.result.Discount,
		ShippingFee:     cart.result.ShippingFee,
		VATAmount:       cart.result.VATAmount,
		Total:           cart.result.Total,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.billing(),
		LineItems:       cart.lines,
		POReference:     req.POReference,
		CreatedAt:       now,
	}
	if cart.result.Discount.IsPositive() {
		o.CouponCode = cart.couponCode
		o.CouponDiscount = cart.result.Discount
	}
	return o
}

// CreateBankTransferOrder runs the bank-transfer flow: price, persist a
// pending order, and return the static bank details with the order number as
// payment reference. No gateway is involved; the order awaits manual
// reconciliation.
func (s *Service) CreateBankTransferOrder(ctx context.Context, req *Request) (*BankTransferResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// Once past validation the pipeline must finish even if the client
	// disconnects, or we risk invisible half-created orders.
	ctx = context.WithoutCancel(ctx)

	cart, err := s.priceCart(ctx, req.LineItems, req.CouponCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := s.buildOrder(req, cart, order.PaymentBankTransfer, bankOrderNumber(now), now)
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &BankTransferResult{
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		Total:            o.Total,
		BankAccount:      s.cfg.Bank,
		PaymentReference: o.OrderNumber,
	}, nil
}

// CreateCardSession runs the card flow behind the duplicate-session guard:
// concurrent or repeated invocations for the same checkout attempt receive
// the same session instead of creating a second gateway session (and a second
// discount object) for one order.
func (s *Service) CreateCardSession(ctx context.Context, req *Request) (*CardSessionResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	attemptID := req.AttemptID
	if attemptID == "" {
		// No client token: the attempt is still deduplicated against itself,
		// just not across retries.
		attemptID = uuid.New().String()
	}

	if res, err := s.attempts.Get(ctx, attemptID); err != nil {
		zctx.From(ctx).Warn("attempt store lookup failed, duplicate-session guard degraded",
			zap.String("attempt_id", attemptID), zap.Error(err))
	} else if res != nil {
		return res, nil
	}

	// Same disconnect rule as the bank flow, and doubly important here: an
	// abandoned request must not orphan an already-charged session.
	dctx := context.WithoutCancel(ctx)

	v, err, _ := s.inflight.Do(attemptID, func() (any, error) {
		res, err := s.createCardSession(dctx, req)
		if err != nil {
			return nil, err
		}
		if perr := s.attempts.Put(dctx, attemptID, res); perr != nil {
			zctx.From(dctx).Warn("attempt store write failed",
				zap.String("attempt_id", attemptID), zap.Error(perr))
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CardSessionResult), nil
}

func (s *Service) createCardSession(ctx context.Context, req *Request) (*CardSessionResult, error) {
	cart, err := s.priceCart(ctx, req.LineItems, req.CouponCode)
	if err != nil {
		return nil, err
	}

	// The order must exist before the gateway call so a webhook or
	// success-page lookup can find it by session id even if the browser
	// never returns.
	now := s.now()
	o := s.buildOrder(req, cart, order.PaymentCard, cardOrderNumber(now), now)
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	session, err := s.createGatewaySession(ctx, o, cart)
	if err != nil {
		// The pending order intentionally stays behind as a recoverable
		// orphan: deleting it and retrying could double-book stock
		// reservations tracked elsewhere.
		return nil, errors.Wrapf(err, "create payment session for order %s", o.OrderNumber)
	}

	if err := s.orders.SetPaymentSessionRef(ctx, o.ID, session.ID); err != nil {
		return nil, errors.Wrapf(err, "attach session %s to order %s", session.ID, o.OrderNumber)
	}

	return &CardSessionResult{
		SessionID:    session.ID,
		ClientSecret: session.ClientSecret,
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
	}, nil
}

// createGatewaySession builds the hosted-checkout payload from verified data:
// one line per cart line, one synthetic line for a non-zero shipping fee, and
// a one-time discount object when a discount applies.
func (s *Service) createGatewaySession(ctx context.Context, o *order.Order, cart *pricedCart) (*payment.Session, error) {
	lines := make([]payment.LineItem, 0, len(cart.lines)+1)
	for _, li := range cart.lines {
		name := li.Name
		if li.VariantName != "" {
			name = li.Name + " - " + li.VariantName
		}
		lines = append(lines, payment.LineItem{
			Name:       name,
			UnitAmount: li.UnitPrice.IntPart(),
			Quantity:   li.Quantity,
		})
	}
	if cart.result.ShippingFee.IsPositive() {
		lines = append(lines, payment.LineItem{
			Name:       shippingLineName,
			UnitAmount: cart.result.ShippingFee.IntPart(),
			Quantity:   1,
		})
	}

	discountID := ""
	if cart.result.Discount.IsPositive() {
		name := cart.couponCode
		if name == "" {
			name = fallbackDiscountName
		}
		d, err := s.gateway.CreateDiscount(ctx, payment.DiscountParams{
			AmountOff: cart.result.Discount.IntPart(),
			Currency:  s.cfg.Currency,
			Name:      name,
		})
		if err != nil {
			return nil, errors.Wrap(err, "create discount object")
		}
		discountID = d.ID
	}

	session, err := s.gateway.CreateSession(ctx, payment.SessionParams{
		Currency:   s.cfg.Currency,
		Locale:     s.cfg.Locale,
		LineItems:  lines,
		DiscountID: discountID,
		Metadata: map[string]string{
			"order_id":     o.ID,
			"order_number": o.OrderNumber,
			"po_reference": o.POReference,
		},
		ReturnURL: s.cfg.ReturnURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create session")
	}
	return session, nil
}

// CalculateTotals prices a cart without persisting anything. Coupon problems
// are reported as data, not errors, so the cart page can show why a code was
// rejected while still rendering totals.
func (s *Service) CalculateTotals(ctx context.Context, req *CalculateRequest) (*CalculateResult, error) {
	if err := validateLineItems(req.LineItems); err != nil {
		return nil, err
	}
	if !validShippingCountry(req.ShippingCountry) {
		return nil, &ValidationError{Field: "shippingCountry", Message: "shipping is only available within Hungary"}
	}

	cart, err := s.priceCart(ctx, req.LineItems, req.CouponCode)
	if err != nil {
		return nil, err
	}

	res := &CalculateResult{
		Pricing:               cart.result,
		FreeShippingThreshold: s.calc.Shipping.FreeShippingThreshold,
	}
	if req.CouponCode != "" {
		if cart.coupon.Valid {
			res.CouponApplied = true
		} else {
			res.CouponError = couponReasonMessage(cart.coupon.Reason)
		}
	}
	return res, nil
}

func couponReasonMessage(r coupon.InvalidReason) string {
	switch r {
	case coupon.ReasonNotFound:
		return "unknown coupon code"
	case coupon.ReasonInactive:
		return "coupon is not active"
	case coupon.ReasonNotStarted:
		return "coupon is not yet valid"
	case coupon.ReasonExpired:
		return "coupon has expired"
	case coupon.ReasonUsageLimit:
		return "coupon usage limit reached"
	case coupon.ReasonBelowMinimum:
		return "order total does not reach the coupon minimum"
	default:
		return "invalid coupon code"
	}
}
