package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"poster_shop/internal/domain/upload/model"
	"poster_shop/internal/pkg/filestore"
	"poster_shop/pkg/apperr"
	baseModel "poster_shop/pkg/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newFileRepo(t *testing.T) UploadRepository {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return NewFileUploadRepository(store)
}

func TestFileUploadRepository(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	u := &model.Upload{Filename: "a.png", OriginalName: "tree.png", Size: 1024, ContentType: "image/png"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tree.png", got.OriginalName)
	assert.Equal(t, int64(1024), got.Size)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	dup := &model.Upload{BaseModel: baseModel.BaseModel{ID: u.ID}, Filename: "b.png"}
	assert.Error(t, repo.Create(ctx, dup))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestGormUploadRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewUploadRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "uploads"`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		u := &model.Upload{Filename: "a.png", OriginalName: "tree.png", Size: 10}
		require.NoError(t, repo.Create(ctx, u))
		assert.NotEmpty(t, u.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get found", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewUploadRepository(gdb)

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "filename", "original_name", "size", "content_type", "url"}).
			AddRow("u-1", now, now, "u-1.png", "tree.png", 2048, "image/png", "http://x/uploads/u-1.png")
		mock.ExpectQuery(`SELECT \* FROM "uploads" WHERE id = \$1`).WillReturnRows(rows)

		got, err := repo.GetByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "tree.png", got.OriginalName)
		assert.Equal(t, int64(2048), got.Size)
	})

	t.Run("get not found", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewUploadRepository(gdb)

		mock.ExpectQuery(`SELECT \* FROM "uploads" WHERE id = \$1`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, "nope")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}
