package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"poster_shop/internal/domain/upload/model"
	"poster_shop/internal/domain/upload/repository"
	"poster_shop/internal/pkg/uploader"
	"poster_shop/pkg/apperr"
	"poster_shop/pkg/logger"
	"poster_shop/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadInput 一个待保存的文件
type UploadInput struct {
	OriginalName string
	Size         int64
	Body         io.ReadSeeker
}

// UploadService 上传登记服务
type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*model.Upload, error)
	Get(ctx context.Context, id string) (*model.Upload, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type uploadService struct {
	repo     repository.UploadRepository
	storage  uploader.Uploader
	maxBytes int64
	metrics  *metrics.MetricsCollector
}

func NewUploadService(repo repository.UploadRepository, storage uploader.Uploader, maxBytes int64, m *metrics.MetricsCollector) UploadService {
	return &uploadService{
		repo:     repo,
		storage:  storage,
		maxBytes: maxBytes,
		metrics:  m,
	}
}

func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*model.Upload, error) {
	record, err := s.upload(ctx, in)
	if s.metrics != nil {
		s.metrics.RecordUpload(in.Size, err)
	}
	return record, err
}

func (s *uploadService) upload(ctx context.Context, in UploadInput) (*model.Upload, error) {
	if in.Body == nil || in.Size <= 0 {
		return nil, apperr.Validation("image", "file is empty")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, apperr.Validation("image", fmt.Sprintf("file exceeds %d MB", s.maxBytes>>20))
	}

	// 1. 嗅探内容类型
	mt, err := uploader.DetectImage(in.Body)
	if err != nil {
		return nil, err
	}
	if _, err := in.Body.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	// 2. 生成存储文件名 uuid.ext
	id := uuid.New().String()
	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(in.OriginalName))
	}
	filename := id + ext

	// 3. 写入存储后端
	url, err := s.storage.Save(ctx, filename, in.Body, in.Size, mt.String())
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	// 4. 登记
	record := &model.Upload{
		Filename:     filename,
		OriginalName: filepath.Base(in.OriginalName),
		Size:         in.Size,
		ContentType:  mt.String(),
		URL:          url,
	}
	record.ID = id
	if err := s.repo.Create(ctx, record); err != nil {
		// 未登记的文件不能留在存储里
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), filename); delErr != nil {
			logger.Log.Warn("orphaned upload",
				zap.String("filename", filename),
				zap.Error(delErr),
			)
		}
		return nil, err
	}
	return record, nil
}

func (s *uploadService) Get(ctx context.Context, id string) (*model.Upload, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *uploadService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
