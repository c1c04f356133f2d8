package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"poster_shop/internal/domain/upload/model"
	"poster_shop/pkg/apperr"
	"poster_shop/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUploadRepository is a mock of UploadRepository
type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *MockUploadRepository) GetByID(ctx context.Context, id string) (*model.Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Upload), args.Error(1)
}

// MockUploader is a mock of uploader.Uploader
type MockUploader struct {
	mock.Mock
	saved []byte
}

func (m *MockUploader) Save(ctx context.Context, name string, src io.Reader, size int64, contentType string) (string, error) {
	data, _ := io.ReadAll(src)
	m.saved = data
	args := m.Called(ctx, name, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockUploader) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}, make([]byte, 64)...)

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores png and registers record", func(t *testing.T) {
		repo := new(MockUploadRepository)
		store := new(MockUploader)
		svc := NewUploadService(repo, store, 25<<20, metrics.NewMetricsCollector())

		store.On("Save", ctx, mock.MatchedBy(func(name string) bool { return strings.HasSuffix(name, ".png") }), int64(len(pngBytes)), "image/png").
			Return("http://localhost/uploads/x.png", nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Upload")).Return(nil)

		rec, err := svc.Upload(ctx, UploadInput{OriginalName: "../family photo.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)})
		require.NoError(t, err)

		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, rec.ID+".png", rec.Filename)
		assert.Equal(t, "family photo.png", rec.OriginalName)
		assert.Equal(t, "image/png", rec.ContentType)
		assert.Equal(t, pngBytes, store.saved, "body must be rewound after sniffing")
		repo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("rejects non image", func(t *testing.T) {
		repo := new(MockUploadRepository)
		store := new(MockUploader)
		svc := NewUploadService(repo, store, 25<<20, nil)

		body := []byte("#!/bin/sh\necho not a poster\n")
		_, err := svc.Upload(ctx, UploadInput{OriginalName: "evil.png", Size: int64(len(body)), Body: bytes.NewReader(body)})
		assert.True(t, errors.Is(err, apperr.ErrInvalidFileType))
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects oversize", func(t *testing.T) {
		svc := NewUploadService(new(MockUploadRepository), new(MockUploader), 10, nil)
		_, err := svc.Upload(ctx, UploadInput{OriginalName: "big.png", Size: 11, Body: bytes.NewReader(pngBytes)})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
		assert.Equal(t, "image", apperr.FieldOf(err))
	})

	t.Run("rejects empty", func(t *testing.T) {
		svc := NewUploadService(new(MockUploadRepository), new(MockUploader), 10, nil)
		_, err := svc.Upload(ctx, UploadInput{OriginalName: "none.png"})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("storage failure is not registered", func(t *testing.T) {
		repo := new(MockUploadRepository)
		store := new(MockUploader)
		svc := NewUploadService(repo, store, 25<<20, nil)

		store.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("disk full"))

		_, err := svc.Upload(ctx, UploadInput{OriginalName: "a.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)})
		assert.ErrorContains(t, err, "disk full")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("registry failure removes stored file", func(t *testing.T) {
		repo := new(MockUploadRepository)
		store := new(MockUploader)
		svc := NewUploadService(repo, store, 25<<20, nil)

		var stored string
		store.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { stored = args.String(1) }).
			Return("http://localhost/uploads/x.png", nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
		store.On("Delete", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Upload(ctx, UploadInput{OriginalName: "a.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)})
		assert.ErrorContains(t, err, "db down")
		store.AssertCalled(t, "Delete", mock.Anything, stored)
	})

	t.Run("cleanup failure still returns registry error", func(t *testing.T) {
		repo := new(MockUploadRepository)
		store := new(MockUploader)
		svc := NewUploadService(repo, store, 25<<20, nil)

		store.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return("http://localhost/uploads/x.png", nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
		store.On("Delete", mock.Anything, mock.Anything).Return(errors.New("permission denied"))

		_, err := svc.Upload(ctx, UploadInput{OriginalName: "a.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)})
		assert.ErrorContains(t, err, "db down")
		store.AssertNumberOfCalls(t, "Delete", 1)
	})
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUploadRepository)
	svc := NewUploadService(repo, new(MockUploader), 0, nil)

	repo.On("GetByID", ctx, "u-1").Return(&model.Upload{Filename: "u-1.png"}, nil)
	repo.On("GetByID", ctx, "u-2").Return(nil, apperr.NotFound("upload", "u-2"))
	repo.On("GetByID", ctx, "u-3").Return(nil, errors.New("io error"))

	ok, err := svc.Exists(ctx, "u-1")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, "u-2")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Exists(ctx, "u-3")
	assert.Error(t, err)
}
