package service

import (
	"context"
	"time"

	"poster_shop/internal/domain/order/gateway"
	"poster_shop/internal/domain/order/model"
	"poster_shop/internal/domain/order/notifier"
	"poster_shop/internal/domain/order/repository"
	"poster_shop/pkg/logger"
	"poster_shop/pkg/metrics"
	"poster_shop/pkg/apperr"
	baseModel "poster_shop/pkg/model"

	"go.uber.org/zap"
)

// WebhookResult 一次回调的处理结果
type WebhookResult struct {
	EventID   string
	EventType string
	Outcome   string // metrics.Outcome*
	OrderID   string
}

// WebhookService 处理支付渠道的回调事件。
// 同一会话的事件可能重复到达，订单只会创建一次，通知也只发送一次
type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
}

type webhookService struct {
	gateway  gateway.PaymentGateway
	repo     repository.OrderRepository
	notifier notifier.Notifier
	currency string
	metrics  *metrics.MetricsCollector
	now      func() time.Time
}

func NewWebhookService(gw gateway.PaymentGateway, repo repository.OrderRepository, n notifier.Notifier, currency string, m *metrics.MetricsCollector) WebhookService {
	return &webhookService{
		gateway:  gw,
		repo:     repo,
		notifier: n,
		currency: currency,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	res, err := s.handle(ctx, payload, signature)
	if s.metrics != nil {
		eventType, outcome := "", metrics.OutcomeRejected
		if res != nil {
			eventType, outcome = res.EventType, res.Outcome
		}
		s.metrics.RecordWebhookEvent(eventType, outcome)
	}
	return res, err
}

func (s *webhookService) handle(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	evt, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		logger.Log.Warn("webhook rejected", zap.Error(err))
		return nil, err
	}

	res := &WebhookResult{EventID: evt.ID, EventType: evt.Type}
	if evt.Type != gateway.EventCheckoutSessionCompleted || evt.Session == nil {
		res.Outcome = metrics.OutcomeIgnored
		logger.Log.Debug("webhook ignored", zap.String("event_id", evt.ID), zap.String("type", evt.Type))
		return res, nil
	}

	order, err := s.buildOrder(evt.Session)
	if err != nil {
		logger.Log.Warn("webhook metadata invalid",
			zap.String("event_id", evt.ID),
			zap.String("session_id", evt.Session.ID),
			zap.Error(err),
		)
		return nil, err
	}
	res.OrderID = order.ID

	created, err := s.repo.Append(ctx, order)
	if err != nil {
		res.Outcome = metrics.OutcomeFailed
		logger.Log.Error("persist order failed",
			zap.String("order_id", order.ID),
			zap.String("session_id", order.SessionID),
			zap.Error(err),
		)
		return res, err
	}
	if !created {
		res.Outcome = metrics.OutcomeDuplicate
		logger.Log.Info("duplicate checkout completion",
			zap.String("event_id", evt.ID),
			zap.String("session_id", order.SessionID),
		)
		return res, nil
	}

	res.Outcome = metrics.OutcomeCreated
	logger.Log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("session_id", order.SessionID),
		zap.Int64("amount", order.Amount),
	)
	if s.metrics != nil {
		s.metrics.RecordOrderCreated(order.Tier, order.Theme)
	}
	s.notifier.NotifyOrderCreated(ctx, order)
	return res, nil
}

func (s *webhookService) buildOrder(cs *gateway.CompletedSession) (*model.Order, error) {
	pending, err := model.ParseMetadata(cs.Metadata)
	if err != nil {
		return nil, err
	}

	amount := cs.AmountTotal
	if amount <= 0 {
		amount = pending.Amount
	}
	currency := cs.Currency
	if currency == "" {
		currency = s.currency
	}
	email := pending.Intent.CustomerEmail
	if email == "" {
		email = cs.CustomerEmail
	}
	if email == "" {
		return nil, apperr.MalformedEvent("customer email missing", nil)
	}

	now := s.now().UTC()
	in := pending.Intent
	return &model.Order{
		BaseModel:       baseModel.BaseModel{ID: pending.OrderID, CreatedAt: now, UpdatedAt: now},
		SessionID:       cs.ID,
		PaymentIntentID: cs.PaymentIntentID,
		Theme:           in.Theme,
		Tier:            in.Tier,
		Quantity:        in.Quantity,
		UploadID:        in.UploadID,
		CustomerName:    in.CustomerName,
		CustomerEmail:   email,
		CustomerPhone:   in.CustomerPhone,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
		Amount:          amount,
		Currency:        currency,
		Status:          model.StatusPending,
	}, nil
}
