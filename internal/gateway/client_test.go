package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cszshop/checkout-api/internal/domain/payment"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "sk_test", WithHTTPClient(srv.Client()))
}

func TestCreateDiscount(t *testing.T) {
	t.Run("posts a one-time discount", func(t *testing.T) {
		var gotPath, gotAuth string
		var body map[string]any
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"id":"disc_1"}`))
		})

		d, err := c.CreateDiscount(context.Background(), payment.DiscountParams{
			AmountOff: 1000, Currency: "huf", Name: "SAVE10",
		})
		require.NoError(t, err)

		assert.Equal(t, "disc_1", d.ID)
		assert.Equal(t, "/discount-objects", gotPath)
		assert.Equal(t, "Bearer sk_test", gotAuth)
		assert.EqualValues(t, 1000, body["amountOff"])
		assert.Equal(t, "once", body["duration"])
		assert.Equal(t, "SAVE10", body["name"])
	})

	t.Run("missing id is an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := c.CreateDiscount(context.Background(), payment.DiscountParams{AmountOff: 1})
		require.Error(t, err)
	})
}

func TestCreateSession(t *testing.T) {
	t.Run("posts the full session payload", func(t *testing.T) {
		var body map[string]any
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/checkout-sessions", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"id":"cs_1","clientSecret":"secret"}`))
		})

		s, err := c.CreateSession(context.Background(), payment.SessionParams{
			Currency: "huf",
			Locale:   "hu",
			LineItems: []payment.LineItem{
				{Name: "Porral oltó 2kg", UnitAmount: 5000, Quantity: 2},
				{Name: "Szállítási díj", UnitAmount: 1990, Quantity: 1},
			},
			DiscountID: "disc_1",
			Metadata:   map[string]string{"order_id": "ord_1"},
			ReturnURL:  "https://shop.example/success",
		})
		require.NoError(t, err)

		assert.Equal(t, "cs_1", s.ID)
		assert.Equal(t, "secret", s.ClientSecret)

		assert.Equal(t, "huf", body["currency"])
		assert.Equal(t, []any{"disc_1"}, body["discounts"])
		lines, ok := body["lineItems"].([]any)
		require.True(t, ok)
		require.Len(t, lines, 2)
		meta, ok := body["metadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ord_1", meta["order_id"])
	})

	t.Run("no discount omits the discounts field", func(t *testing.T) {
		var body map[string]any
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"id":"cs_1","clientSecret":"secret"}`))
		})

		_, err := c.CreateSession(context.Background(), payment.SessionParams{Currency: "huf"})
		require.NoError(t, err)
		_, present := body["discounts"]
		assert.False(t, present)
	})

	t.Run("incomplete session response is an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"cs_1"}`))
		})

		_, err := c.CreateSession(context.Background(), payment.SessionParams{Currency: "huf"})
		require.Error(t, err)
	})

	t.Run("gateway rejection surfaces status and body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid currency"}`, http.StatusUnprocessableEntity)
		})

		_, err := c.CreateSession(context.Background(), payment.SessionParams{Currency: "xxx"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "422")
		assert.Contains(t, err.Error(), "invalid currency")
	})
}
