package uploader

import (
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"poster_shop/pkg/apperr"
)

// Uploader 图片存储后端
type Uploader interface {
	// Save 保存对象并返回可访问的 URL
	Save(ctx context.Context, name string, src io.Reader, size int64, contentType string) (string, error)
	// Delete 删除已保存的对象，对象不存在时不报错
	Delete(ctx context.Context, name string) error
}

var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
	"image/heic",
	"image/heif",
}

// DetectImage 嗅探内容类型，非图片返回 InvalidFileType。调用方负责回到文件开头。
func DetectImage(src io.Reader) (*mimetype.MIME, error) {
	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, err
	}
	for _, allowed := range allowedTypes {
		if mt.Is(allowed) {
			return mt, nil
		}
	}
	return nil, apperr.InvalidFileType(mt.String())
}
