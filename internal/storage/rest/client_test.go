package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cszshop/checkout-api/internal/domain/coupon"
	"github.com/cszshop/checkout-api/internal/domain/order"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", WithHTTPClient(srv.Client()))
}

func TestCatalogStore(t *testing.T) {
	t.Run("batched product lookup", func(t *testing.T) {
		var gotPath, gotIDs, gotFields, gotAuth string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotIDs = r.URL.Query().Get("ids")
			gotFields = r.URL.Query().Get("fields")
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"data":[
				{"id":"p1","price":5000,"weight":0.5},
				{"id":"p2","price":12000,"weight":4}
			]}`))
		})

		got, err := NewCatalogStore(c).ProductPrices(context.Background(), []string{"p1", "p2"})
		require.NoError(t, err)

		assert.Equal(t, "/products", gotPath)
		assert.Equal(t, "p1,p2", gotIDs)
		assert.Equal(t, "price,weight", gotFields)
		assert.Equal(t, "Bearer test-token", gotAuth)

		require.Len(t, got, 2)
		assert.True(t, got["p1"].Price.Equal(decimal.NewFromInt(5000)))
		assert.True(t, got["p2"].Weight.Equal(decimal.NewFromInt(4)))
	})

	t.Run("variant lookup hits the variants path", func(t *testing.T) {
		var gotPath string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"data":[]}`))
		})

		got, err := NewCatalogStore(c).VariantPrices(context.Background(), []string{"v1"})
		require.NoError(t, err)
		assert.Equal(t, "/variants", gotPath)
		assert.Empty(t, got)
	})

	t.Run("empty id list skips the request", func(t *testing.T) {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

		got, err := NewCatalogStore(c).ProductPrices(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.False(t, called)
	})

	t.Run("server errors surface with status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		_, err := NewCatalogStore(c).ProductPrices(context.Background(), []string{"p1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestCouponRepository(t *testing.T) {
	t.Run("found coupon maps all fields", func(t *testing.T) {
		var gotCode string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotCode = r.URL.Query().Get("code")
			_, _ = w.Write([]byte(`{"data":[{
				"code":"SAVE10","isActive":true,
				"discountType":"percentage","discountValue":10,
				"maxDiscount":1500,"minOrderValue":5000,
				"validUntil":"2026-12-31T23:59:59Z",
				"maxUses":100,"usedCount":7
			}]}`))
		})

		got, err := NewCouponRepository(c).FindByCode(context.Background(), "save10")
		require.NoError(t, err)

		assert.Equal(t, "save10", gotCode)
		assert.Equal(t, "SAVE10", got.Code)
		assert.True(t, got.IsActive)
		assert.Equal(t, coupon.DiscountPercentage, got.DiscountType)
		assert.True(t, got.MaxDiscount.Equal(decimal.NewFromInt(1500)))
		require.NotNil(t, got.ValidUntil)
		assert.Equal(t, 2026, got.ValidUntil.Year())
		assert.Nil(t, got.ValidFrom)
		assert.Equal(t, 100, got.MaxUses)
		assert.Equal(t, 7, got.UsedCount)
	})

	t.Run("empty result is ErrNotFound", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		})

		_, err := NewCouponRepository(c).FindByCode(context.Background(), "BOGUS")
		assert.ErrorIs(t, err, coupon.ErrNotFound)
	})

	t.Run("transport failure is not ErrNotFound", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		})

		_, err := NewCouponRepository(c).FindByCode(context.Background(), "SAVE10")
		require.Error(t, err)
		assert.NotErrorIs(t, err, coupon.ErrNotFound)
	})
}

func TestOrderRepository(t *testing.T) {
	sampleOrder := func() *order.Order {
		return &order.Order{
			OrderNumber:   "CSZ-202609-ABC123",
			Status:        order.StatusPending,
			UserID:        "user-1",
			PaymentMethod: order.PaymentBankTransfer,
			Subtotal:      decimal.NewFromInt(10000),
			Total:         decimal.NewFromInt(11990),
			ShippingFee:   decimal.NewFromInt(1990),
			ShippingAddress: order.Address{
				RecipientName: "Kiss Anna", Street: "Fő utca 1.", City: "Budapest",
				PostalCode: "1011", Country: "HU",
			},
			LineItems: []order.LineItem{{
				ProductID: "p1", Name: "Porral oltó", SKU: "EXT-01",
				UnitPrice: decimal.NewFromInt(5000), Quantity: 2,
				LineTotal: decimal.NewFromInt(10000),
			}},
			CreatedAt: time.Now(),
		}
	}

	t.Run("create assigns the store id", func(t *testing.T) {
		var body map[string]json.RawMessage
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/orders", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"data":{"id":"ord_42","orderNumber":"CSZ-202609-ABC123"}}`))
		})

		o := sampleOrder()
		require.NoError(t, NewOrderRepository(c).Create(context.Background(), o))
		assert.Equal(t, "ord_42", o.ID)

		// Payload rides inside the data envelope.
		var data map[string]any
		require.NoError(t, json.Unmarshal(body["data"], &data))
		assert.Equal(t, "CSZ-202609-ABC123", data["orderNumber"])
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, "bank_transfer", data["paymentMethod"])
	})

	t.Run("missing id in response is an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{}}`))
		})

		err := NewOrderRepository(c).Create(context.Background(), sampleOrder())
		require.Error(t, err)
	})

	t.Run("session ref patch targets one order", func(t *testing.T) {
		var gotMethod, gotPath string
		var body map[string]map[string]string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusOK)
		})

		err := NewOrderRepository(c).SetPaymentSessionRef(context.Background(), "ord_42", "cs_1")
		require.NoError(t, err)

		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "/orders/ord_42", gotPath)
		assert.Equal(t, "cs_1", body["data"]["paymentSessionRef"])
	})
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	require.NoError(t, c.Ping(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	require.Error(t, down.Ping(context.Background()))
}
