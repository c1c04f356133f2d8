package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"poster_shop/internal/domain/order/model"
	"poster_shop/internal/domain/order/service"
	"poster_shop/pkg/logger"
	"poster_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody Stripe 事件体上限
const maxWebhookBody = 64 << 10

// OrderHandler 面向顾客的下单、支付回调和订单查询
type OrderHandler struct {
	checkout service.CheckoutService
	webhook  service.WebhookService
	orders   service.OrderService
}

func NewOrderHandler(c service.CheckoutService, w service.WebhookService, o service.OrderService) *OrderHandler {
	return &OrderHandler{checkout: c, webhook: w, orders: o}
}

// Checkout 发起支付
// @Summary 发起支付
// @Tags Order
// @Accept json
// @Produce json
// @Param input body model.CheckoutIntent true "Checkout"
// @Success 200 {object} response.Response{data=service.CheckoutResult}
// @Router /api/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var intent model.CheckoutIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid request body")
		return
	}

	res, err := h.checkout.Initiate(c.Request.Context(), intent)
	if err != nil {
		_ = c.Error(err)
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

// StripeWebhook 支付回调。需要原始请求体验签
// @Summary Stripe 回调
// @Tags Order
// @Router /api/webhook/stripe [post]
func (h *OrderHandler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			response.Error(c, http.StatusRequestEntityTooLarge, response.ErrMalformedEvent, "payload too large")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrMalformedEvent, "cannot read body")
		return
	}

	res, err := h.webhook.HandleEvent(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		_ = c.Error(err)
		response.FromError(c, err)
		return
	}

	logger.Log.Debug("webhook handled",
		zap.String("event_id", res.EventID),
		zap.String("type", res.EventType),
		zap.String("outcome", res.Outcome),
	)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetBySession 成功页查询订单
// @Summary 按支付会话查询订单
// @Tags Order
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Response{data=service.SessionOrder}
// @Router /api/orders/session/{sessionId} [get]
func (h *OrderHandler) GetBySession(c *gin.Context) {
	view, err := h.orders.GetBySession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, view)
}
