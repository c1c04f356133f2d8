package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"poster_shop/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test_secret"

func sign(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func completedEvent(t *testing.T, metadata map[string]string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":     "evt_1",
		"object": "event",
		"type":   "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "cs_test_1",
				"object":         "checkout.session",
				"payment_intent": "pi_123",
				"payment_status": "paid",
				"customer_email": "kate@example.com",
				"amount_total":   37800,
				"currency":       "usd",
				"metadata":       metadata,
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestParseEvent_Completed(t *testing.T) {
	g := newStripeGateway(nil, "sk_test", testSecret)
	md := map[string]string{"order_id": "PS-20261201-ABCDEF12", "tier": "print"}
	payload := completedEvent(t, md)

	evt, err := g.ParseEvent(payload, sign(t, payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, evt.Type)
	require.NotNil(t, evt.Session)
	assert.Equal(t, "cs_test_1", evt.Session.ID)
	assert.Equal(t, "pi_123", evt.Session.PaymentIntentID)
	assert.Equal(t, "paid", evt.Session.PaymentStatus)
	assert.Equal(t, "kate@example.com", evt.Session.CustomerEmail)
	assert.Equal(t, int64(37800), evt.Session.AmountTotal)
	assert.Equal(t, "usd", evt.Session.Currency)
	assert.Equal(t, md, evt.Session.Metadata)
}

func TestParseEvent_OtherTypeHasNoSession(t *testing.T) {
	g := newStripeGateway(nil, "sk_test", testSecret)
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1"}}}`)

	evt, err := g.ParseEvent(payload, sign(t, payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", evt.Type)
	assert.Nil(t, evt.Session)
}

func TestParseEvent_Rejects(t *testing.T) {
	g := newStripeGateway(nil, "sk_test", testSecret)
	payload := completedEvent(t, map[string]string{"order_id": "o"})

	tests := []struct {
		name      string
		payload   []byte
		signature string
		want      error
	}{
		{"missing signature", payload, "", apperr.ErrAuthentication},
		{"wrong secret", payload, sign(t, payload, "whsec_other"), apperr.ErrAuthentication},
		{"garbage header", payload, "not-a-signature", apperr.ErrAuthentication},
		{"tampered body", append([]byte(" "), payload...), sign(t, payload, testSecret), apperr.ErrAuthentication},
		{"not json", []byte("hello"), sign(t, []byte("hello"), testSecret), apperr.ErrMalformedEvent},
		{"no type", []byte(`{"id":"evt_3"}`), sign(t, []byte(`{"id":"evt_3"}`), testSecret), apperr.ErrMalformedEvent},
		{
			"completed without session id",
			[]byte(`{"id":"evt_4","type":"checkout.session.completed","data":{"object":{"object":"checkout.session"}}}`),
			sign(t, []byte(`{"id":"evt_4","type":"checkout.session.completed","data":{"object":{"object":"checkout.session"}}}`), testSecret),
			apperr.ErrMalformedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.ParseEvent(tt.payload, tt.signature)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_9","object":"checkout.session","url":"https://checkout.stripe.test/pay/cs_test_9"}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	g := newStripeGateway(backend, "sk_test", testSecret)

	s, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{
		OrderID:         "PS-20261201-ABCDEF12",
		ProductName:     "Home Alone Poster - Print",
		Currency:        "usd",
		UnitAmount:      18900,
		Quantity:        2,
		CustomerEmail:   "kate@example.com",
		CollectShipping: true,
		SuccessURL:      "https://shop.test/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       "https://shop.test/cancel",
		Metadata:        map[string]string{"order_id": "PS-20261201-ABCDEF12"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", s.ID)
	assert.Equal(t, "https://checkout.stripe.test/pay/cs_test_9", s.URL)

	assert.Equal(t, []string{"payment"}, form["mode"])
	assert.Equal(t, []string{"18900"}, form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, []string{"2"}, form["line_items[0][quantity]"])
	assert.Equal(t, []string{"PS-20261201-ABCDEF12"}, form["metadata[order_id]"])
	assert.Equal(t, []string{"US"}, form["shipping_address_collection[allowed_countries][0]"])
}
