package handler

import (
	"errors"
	"net/http"
	"strings"

	"poster_shop/internal/domain/upload/service"
	"poster_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

// UploadHandler 上传处理器
type UploadHandler struct {
	service  service.UploadService
	maxBytes int64
}

func NewUploadHandler(s service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: s, maxBytes: maxBytes}
}

// Upload 上传海报照片
// @Summary 上传图片
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 200 {object} response.Response{data=model.Upload}
// @Router /api/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		// 预留 1MB 给 multipart 边界和其他字段
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			response.Error(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge, "file too large")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "image file is required")
		return
	}

	src, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "cannot read uploaded file")
		return
	}
	defer src.Close()

	record, err := h.service.Upload(c.Request.Context(), service.UploadInput{
		OriginalName: fh.Filename,
		Size:         fh.Size,
		Body:         src,
	})
	if err != nil {
		_ = c.Error(err)
		response.FromError(c, err)
		return
	}

	response.Success(c, record)
}

// Get 查询上传记录
// @Summary 查询上传记录
// @Tags Upload
// @Produce json
// @Param id path string true "Upload ID"
// @Router /api/uploads/{id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, record)
}
