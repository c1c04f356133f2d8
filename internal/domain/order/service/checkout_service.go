package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"poster_shop/internal/domain/catalog"
	"poster_shop/internal/domain/order/gateway"
	"poster_shop/internal/domain/order/model"
	"poster_shop/pkg/apperr"
	"poster_shop/pkg/logger"
	"poster_shop/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadLookup 下单时校验上传编号
type UploadLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CheckoutConfig 支付会话参数
type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// CheckoutResult 发起支付的结果，前端跳转到 URL
type CheckoutResult struct {
	OrderID   string `json:"orderId"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// CheckoutService 校验下单意图并创建支付会话。此时不落库
type CheckoutService interface {
	Initiate(ctx context.Context, intent model.CheckoutIntent) (*CheckoutResult, error)
}

type checkoutService struct {
	gateway gateway.PaymentGateway
	catalog *catalog.Catalog
	uploads UploadLookup
	cfg     CheckoutConfig
	metrics *metrics.MetricsCollector
	now     func() time.Time
}

func NewCheckoutService(gw gateway.PaymentGateway, c *catalog.Catalog, uploads UploadLookup, cfg CheckoutConfig, m *metrics.MetricsCollector) CheckoutService {
	return &checkoutService{
		gateway: gw,
		catalog: c,
		uploads: uploads,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
	}
}

// NewOrderID 生成订单号，格式 PS-YYYYMMDD-XXXXXXXX
func NewOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("PS-%s-%s", now.UTC().Format("20060102"), suffix)
}

func (s *checkoutService) Initiate(ctx context.Context, intent model.CheckoutIntent) (*CheckoutResult, error) {
	res, err := s.initiate(ctx, intent)
	if s.metrics != nil {
		result := "ok"
		if err != nil {
			result = "rejected"
			if errors.Is(err, apperr.ErrUpstream) {
				result = "upstream_error"
			}
		}
		s.metrics.RecordCheckout(result)
	}
	return res, err
}

func (s *checkoutService) initiate(ctx context.Context, intent model.CheckoutIntent) (*CheckoutResult, error) {
	intent.Normalize()
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	price, err := s.catalog.PriceOf(intent.Tier)
	if err != nil {
		return nil, apperr.ValidationWrap("tier", err)
	}
	shipping, _ := s.catalog.RequiresShipping(intent.Tier)
	product, err := s.catalog.ProductLabel(intent.Theme, intent.Tier)
	if err != nil {
		return nil, apperr.ValidationWrap("theme", err)
	}

	ok, err := s.uploads.Exists(ctx, intent.UploadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validation("uploadId", "upload not found")
	}

	amount := price * int64(intent.Quantity)
	orderID := NewOrderID(s.now())
	md := intent.Metadata(orderID, amount)
	for _, f := range metadataFields {
		if len(md[f.key]) > model.MaxMetadataValue {
			return nil, apperr.Validation(f.field, fmt.Sprintf("must be at most %d characters", model.MaxMetadataValue))
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutRequest{
		OrderID:         orderID,
		ProductName:     product,
		Description:     fmt.Sprintf("Order %s", orderID),
		Currency:        s.cfg.Currency,
		UnitAmount:      price,
		Quantity:        int64(intent.Quantity),
		CustomerEmail:   intent.CustomerEmail,
		CollectShipping: shipping,
		SuccessURL:      s.cfg.SuccessURL,
		CancelURL:       s.cfg.CancelURL,
		Metadata:        md,
	})
	if err != nil {
		logger.Log.Error("create checkout session failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, apperr.Upstream("create checkout session", err)
	}

	logger.Log.Info("checkout session created",
		zap.String("order_id", orderID),
		zap.String("session_id", session.ID),
		zap.Int64("amount", amount),
	)
	return &CheckoutResult{
		OrderID:   orderID,
		SessionID: session.ID,
		URL:       session.URL,
		Amount:    amount,
		Currency:  s.cfg.Currency,
	}, nil
}

func validateIntent(i model.CheckoutIntent) error {
	switch {
	case i.Theme == "":
		return apperr.Validation("theme", "required")
	case i.Tier == "":
		return apperr.Validation("tier", "required")
	case i.Quantity <= 0:
		return apperr.Validation("quantity", "must be a positive integer")
	case i.Quantity > model.MaxQuantity:
		return apperr.Validation("quantity", fmt.Sprintf("must be at most %d", model.MaxQuantity))
	case i.UploadID == "":
		return apperr.Validation("uploadId", "required")
	case i.CustomerName == "":
		return apperr.Validation("customerName", "required")
	case i.CustomerEmail == "":
		return apperr.Validation("customerEmail", "required")
	}
	if _, err := mail.ParseAddress(i.CustomerEmail); err != nil {
		return apperr.Validation("customerEmail", "invalid email address")
	}
	return nil
}

// 需要检查长度的 metadata 键及其对应的请求字段名
var metadataFields = []struct{ key, field string }{
	{model.MetaTheme, "theme"},
	{model.MetaTier, "tier"},
	{model.MetaUploadID, "uploadId"},
	{model.MetaCustomerName, "customerName"},
	{model.MetaCustomerEmail, "customerEmail"},
	{model.MetaCustomerPhone, "customerPhone"},
	{model.MetaShippingAddress, "shippingAddress"},
	{model.MetaNotes, "notes"},
}
