package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"poster_shop/internal/pkg/config"
	"poster_shop/pkg/apperr"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// 允许收货的国家
var shippingCountries = []string{"US", "CA"}

type StripeGateway struct {
	sessions      *session.Client
	webhookSecret string
}

func NewStripeGateway(cfg config.StripeConfig) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key missing")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret missing")
	}
	return newStripeGateway(stripe.GetBackend(stripe.APIBackend), cfg.SecretKey, cfg.WebhookSecret), nil
}

func newStripeGateway(backend stripe.Backend, key, webhookSecret string) *StripeGateway {
	return &StripeGateway{
		sessions:      &session.Client{B: backend, Key: key},
		webhookSecret: webhookSecret,
	}
}

// CreateCheckoutSession 创建 Stripe Checkout 会话
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.ProductName),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.OrderID),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(req.Currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(req.Quantity),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.CollectShipping {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(shippingCountries),
		}
	}
	params.Context = ctx
	params.Metadata = req.Metadata

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// ParseEvent 校验 Stripe-Signature 并解析事件
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	if signature == "" {
		return nil, apperr.Authentication(webhook.ErrNotSigned)
	}

	if err := webhook.ValidatePayload(payload, signature, g.webhookSecret); err != nil {
		return nil, apperr.Authentication(err)
	}

	var raw stripe.Event
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, apperr.MalformedEvent("event body is not valid json", err)
	}
	if raw.Type == "" {
		return nil, apperr.MalformedEvent("event type missing", nil)
	}

	evt := &Event{ID: raw.ID, Type: string(raw.Type)}
	if evt.Type != EventCheckoutSessionCompleted {
		return evt, nil
	}

	if raw.Data == nil || len(raw.Data.Raw) == 0 {
		return nil, apperr.MalformedEvent("event data missing", nil)
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(raw.Data.Raw, &cs); err != nil {
		return nil, apperr.MalformedEvent("checkout session payload invalid", err)
	}
	if cs.ID == "" {
		return nil, apperr.MalformedEvent("checkout session id missing", nil)
	}

	completed := &CompletedSession{
		ID:            cs.ID,
		PaymentStatus: string(cs.PaymentStatus),
		CustomerEmail: cs.CustomerEmail,
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}
	if cs.PaymentIntent != nil {
		completed.PaymentIntentID = cs.PaymentIntent.ID
	}
	if completed.CustomerEmail == "" && cs.CustomerDetails != nil {
		completed.CustomerEmail = cs.CustomerDetails.Email
	}
	evt.Session = completed
	return evt, nil
}

// PaymentStatus 查询会话支付状态 (paid / unpaid / no_payment_required)
func (g *StripeGateway) PaymentStatus(ctx context.Context, sessionID string) (string, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.sessions.Get(sessionID, params)
	if err != nil {
		return "", err
	}
	return string(s.PaymentStatus), nil
}

var _ PaymentGateway = (*StripeGateway)(nil)
