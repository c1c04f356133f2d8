package handler

import (
	"errors"
	"net/http"

	"poster_shop/internal/domain/admin/service"
	"poster_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// LoginInput 登录输入
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 管理员登录
// @Summary 管理员登录
// @Tags Admin
// @Accept json
// @Produce json
// @Param input body LoginInput true "Credentials"
// @Success 200 {object} response.Response{data=service.Token}
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "username and password are required")
		return
	}

	token, err := h.service.Login(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, token)
}

// Me 当前登录的管理员
// @Summary 当前管理员
// @Tags Admin
// @Security BearerAuth
// @Router /api/admin/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, gin.H{"username": c.GetString("adminUser")})
}
