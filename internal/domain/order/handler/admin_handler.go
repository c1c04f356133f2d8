package handler

import (
	"net/http"

	"poster_shop/internal/domain/order/service"
	"poster_shop/pkg/response"
	"poster_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminOrderHandler 店员后台订单管理
type AdminOrderHandler struct {
	orders service.OrderService
}

func NewAdminOrderHandler(o service.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orders: o}
}

// List 订单列表，按创建时间倒序。带 page 参数时分页
// @Summary 订单列表
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Router /api/admin/orders [get]
func (h *AdminOrderHandler) List(c *gin.Context) {
	if c.Query("page") == "" {
		orders, err := h.orders.List(c.Request.Context())
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, orders)
		return
	}

	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid pagination")
		return
	}
	page, err := h.orders.Page(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, page)
}

// Get 订单详情
// @Summary 订单详情
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Router /api/admin/orders/{id} [get]
func (h *AdminOrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, order)
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 修改订单状态并通知顾客
// @Summary 修改订单状态
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Param id path string true "Order ID"
// @Param input body UpdateStatusInput true "Status"
// @Router /api/admin/orders/{id}/status [patch]
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "status is required")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		_ = c.Error(err)
		response.FromError(c, err)
		return
	}
	response.Success(c, order)
}
