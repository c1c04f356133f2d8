package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"poster_shop/internal/domain/order/model"
	"poster_shop/internal/pkg/filestore"
	"poster_shop/pkg/apperr"
	baseModel "poster_shop/pkg/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newOrder(id, session string, created time.Time) *model.Order {
	return &model.Order{
		BaseModel:     baseModel.BaseModel{ID: id, CreatedAt: created, UpdatedAt: created},
		SessionID:     session,
		Theme:         "elf",
		Tier:          "digital",
		Quantity:      1,
		UploadID:      "up-1",
		CustomerName:  "Buddy",
		CustomerEmail: "buddy@example.com",
		Amount:        4900,
		Currency:      "usd",
		Status:        model.StatusPending,
	}
}

func openFileRepo(t *testing.T, path string) OrderRepository {
	t.Helper()
	store, err := filestore.Open(path)
	require.NoError(t, err)
	return NewFileOrderRepository(store)
}

func TestFileOrderRepository_AppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := openFileRepo(t, filepath.Join(t.TempDir(), "db.json"))
	now := time.Now().UTC()

	created, err := repo.Append(ctx, newOrder("PS-1", "cs_1", now))
	require.NoError(t, err)
	assert.True(t, created)

	// 同一会话再次到达，不覆盖已有订单
	again := newOrder("PS-1-retry", "cs_1", now.Add(time.Minute))
	again.Amount = 1
	created, err = repo.Append(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.GetBySessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "PS-1", got.ID)
	assert.Equal(t, int64(4900), got.Amount)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileOrderRepository_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	repo := openFileRepo(t, filepath.Join(t.TempDir(), "db.json"))
	now := time.Now().UTC()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := repo.Append(ctx, newOrder(fmt.Sprintf("PS-%d", i), "cs_same", now))
			assert.NoError(t, err)
			if created {
				mu.Lock()
				creates++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, creates)
	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileOrderRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := openFileRepo(t, filepath.Join(t.TempDir(), "db.json"))
	base := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Append(ctx, newOrder("PS-b", "cs_b", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.Append(ctx, newOrder("PS-a", "cs_a", base))
	require.NoError(t, err)
	_, err = repo.Append(ctx, newOrder("PS-c", "cs_c", base.Add(2*time.Hour)))
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "PS-c", list[0].ID)
	assert.Equal(t, "PS-b", list[1].ID)
	assert.Equal(t, "PS-a", list[2].ID)
}

func TestFileOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	repo := openFileRepo(t, path)
	created := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Append(ctx, newOrder("PS-1", "cs_1", created))
	require.NoError(t, err)

	at := created.Add(time.Hour)
	o, err := repo.UpdateStatus(ctx, "PS-1", model.StatusPrinting, at)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPrinting, o.Status)
	assert.True(t, o.UpdatedAt.Equal(at))

	// 回退也允许
	o, err = repo.UpdateStatus(ctx, "PS-1", model.StatusPending, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, o.Status)

	_, err = repo.UpdateStatus(ctx, "missing", model.StatusShipped, at)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// 重新打开文件，状态已持久化
	reopened := openFileRepo(t, path)
	got, err := reopened.GetByID(ctx, "PS-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestFileOrderRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := openFileRepo(t, filepath.Join(t.TempDir(), "db.json"))

	_, err := repo.GetByID(ctx, "nope")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = repo.GetBySessionID(ctx, "cs_nope")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
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

func TestGormOrderRepository_Append(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("created", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewOrderRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT ("session_id") DO NOTHING`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		created, err := repo.Append(ctx, newOrder("PS-1", "cs_1", now))
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewOrderRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		created, err := repo.Append(ctx, newOrder("PS-2", "cs_1", now))
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_GetBySessionID(t *testing.T) {
	ctx := context.Background()
	gdb, mock := newMockDB(t)
	repo := NewOrderRepository(gdb)

	rows := sqlmock.NewRows([]string{"id", "session_id", "tier", "amount", "status"}).
		AddRow("PS-1", "cs_1", "print", 37800, "pending")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE session_id = $1`)).
		WillReturnRows(rows)

	o, err := repo.GetBySessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "PS-1", o.ID)
	assert.Equal(t, int64(37800), o.Amount)
	assert.Equal(t, model.StatusPending, o.Status)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE session_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.GetBySessionID(ctx, "cs_missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_UpdateStatusNotFound(t *testing.T) {
	ctx := context.Background()
	gdb, mock := newMockDB(t)
	repo := NewOrderRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.UpdateStatus(ctx, "missing", model.StatusShipped, time.Now())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
