package service

import (
	"context"
	"time"

	"poster_shop/internal/domain/order/gateway"
	"poster_shop/internal/domain/order/model"
	"poster_shop/internal/domain/order/notifier"
	"poster_shop/internal/domain/order/repository"
	"poster_shop/pkg/apperr"
	"poster_shop/pkg/cache"
	"poster_shop/pkg/logger"
	"poster_shop/pkg/metrics"
	"poster_shop/pkg/utils"

	"go.uber.org/zap"
)

// PaymentStatusUnknown 支付渠道查询失败时返回
const PaymentStatusUnknown = "unknown"

const paymentStatusTTL = 30 * time.Second

// SessionOrder 成功页查询结果
type SessionOrder struct {
	Order         *model.Order `json:"order"`
	PaymentStatus string       `json:"paymentStatus"`
}

// OrderService 订单查询与状态流转
type OrderService interface {
	GetBySession(ctx context.Context, sessionID string) (*SessionOrder, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	Page(ctx context.Context, p utils.Pagination) (*utils.PageResult, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Order, error)
}

type orderService struct {
	repo     repository.OrderRepository
	gateway  gateway.PaymentGateway
	notifier notifier.Notifier
	cache    cache.CacheService
	metrics  *metrics.MetricsCollector
	now      func() time.Time
}

// NewOrderService cache 可为 nil
func NewOrderService(repo repository.OrderRepository, gw gateway.PaymentGateway, n notifier.Notifier, c cache.CacheService, m *metrics.MetricsCollector) OrderService {
	return &orderService{
		repo:     repo,
		gateway:  gw,
		notifier: n,
		cache:    c,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *orderService) GetBySession(ctx context.Context, sessionID string) (*SessionOrder, error) {
	if sessionID == "" {
		return nil, apperr.Validation("sessionId", "required")
	}
	order, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionOrder{Order: order, PaymentStatus: s.paymentStatus(ctx, sessionID)}, nil
}

func (s *orderService) paymentStatus(ctx context.Context, sessionID string) string {
	key := "payment_status:" + sessionID
	if s.cache != nil {
		var status string
		if err := s.cache.Get(ctx, key, &status); err == nil {
			return status
		}
	}

	status, err := s.gateway.PaymentStatus(ctx, sessionID)
	if err != nil {
		logger.Log.Warn("query payment status failed", zap.String("session_id", sessionID), zap.Error(err))
		return PaymentStatusUnknown
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, status, paymentStatusTTL); err != nil {
			logger.Log.Warn("cache payment status failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return status
}

func (s *orderService) Get(ctx context.Context, id string) (*model.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	return s.repo.List(ctx)
}

func (s *orderService) Page(ctx context.Context, p utils.Pagination) (*utils.PageResult, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	offset, limit := p.GetPageOffset()
	total := len(orders)
	if offset < 0 || offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &utils.PageResult{
		List:  orders[offset:end],
		Total: int64(total),
		Page:  p.Page,
		Limit: p.Limit,
	}, nil
}

// UpdateStatus 任意状态之间都可以切换，包括回退
func (s *orderService) UpdateStatus(ctx context.Context, id, status string) (*model.Order, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("status", "unknown status "+status)
	}

	order, err := s.repo.UpdateStatus(ctx, id, st, s.now().UTC())
	if err != nil {
		return nil, err
	}

	logger.Log.Info("order status updated", zap.String("order_id", id), zap.String("status", status))
	if s.metrics != nil {
		s.metrics.RecordStatusUpdate(status)
	}
	s.notifier.NotifyStatusChanged(ctx, order)
	return order, nil
}
