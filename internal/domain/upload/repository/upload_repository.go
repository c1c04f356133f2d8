package repository

import (
	"context"
	"errors"
	"fmt"

	"poster_shop/internal/domain/upload/model"
	"poster_shop/internal/pkg/filestore"
	"poster_shop/internal/pkg/registry"
	"poster_shop/pkg/apperr"

	"gorm.io/gorm"
)

// UploadRepository 上传记录仓库
type UploadRepository interface {
	Create(ctx context.Context, upload *model.Upload) error
	GetByID(ctx context.Context, id string) (*model.Upload, error)
}

// New 根据存储驱动选择实现
func New(ctx *registry.ModuleContext) (UploadRepository, error) {
	switch {
	case ctx.DB != nil:
		return NewUploadRepository(ctx.DB), nil
	case ctx.File != nil:
		return NewFileUploadRepository(ctx.File), nil
	default:
		return nil, errors.New("no store configured")
	}
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *uploadRepository) GetByID(ctx context.Context, id string) (*model.Upload, error) {
	var upload model.Upload
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&upload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("upload", id)
		}
		return nil, err
	}
	return &upload, nil
}

// fileUploadRepository 基于 JSON 文件的 uploads 集合
type fileUploadRepository struct {
	uploads *filestore.Collection[model.Upload]
}

func NewFileUploadRepository(store *filestore.Store) UploadRepository {
	return &fileUploadRepository{uploads: filestore.NewCollection[model.Upload](store, "uploads")}
}

func (r *fileUploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	upload.EnsureID()
	return r.uploads.Update(func(items []model.Upload) ([]model.Upload, bool, error) {
		for _, it := range items {
			if it.ID == upload.ID {
				return nil, false, fmt.Errorf("upload %s already exists", upload.ID)
			}
		}
		return append(items, *upload), true, nil
	})
}

func (r *fileUploadRepository) GetByID(ctx context.Context, id string) (*model.Upload, error) {
	var found *model.Upload
	err := r.uploads.Read(func(items []model.Upload) error {
		for i := range items {
			if items[i].ID == id {
				u := items[i]
				found = &u
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, apperr.NotFound("upload", id)
	}
	return found, nil
}
