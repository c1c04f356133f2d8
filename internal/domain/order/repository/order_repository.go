package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"poster_shop/internal/domain/order/model"
	"poster_shop/internal/pkg/filestore"
	"poster_shop/internal/pkg/registry"
	"poster_shop/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单仓库。订单只追加，不删除
type OrderRepository interface {
	// Append 按 session_id 原子地插入；已存在时返回 created=false 且不修改任何数据
	Append(ctx context.Context, order *model.Order) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	// List 按创建时间倒序返回全部订单
	List(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.Status, at time.Time) (*model.Order, error)
}

// New 根据存储驱动选择实现
func New(ctx *registry.ModuleContext) (OrderRepository, error) {
	switch {
	case ctx.DB != nil:
		return NewOrderRepository(ctx.DB), nil
	case ctx.File != nil:
		return NewFileOrderRepository(ctx.File), nil
	default:
		return nil, errors.New("no store configured")
	}
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Append(ctx context.Context, order *model.Order) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(order)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.first(ctx, "order", id, "id = ?")
}

func (r *orderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	return r.first(ctx, "order for session", sessionID, "session_id = ?")
}

func (r *orderRepository) first(ctx context.Context, what, key, cond string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where(cond, key).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(what, key)
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.Status, at time.Time) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": status, "updated_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("order", id)
		}
		return tx.Where("id = ?", id).First(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// fileOrderRepository 基于 JSON 文件的 orders 集合
type fileOrderRepository struct {
	orders *filestore.Collection[model.Order]
}

func NewFileOrderRepository(store *filestore.Store) OrderRepository {
	return &fileOrderRepository{orders: filestore.NewCollection[model.Order](store, "orders")}
}

func (r *fileOrderRepository) Append(ctx context.Context, order *model.Order) (bool, error) {
	order.EnsureID()
	created := false
	err := r.orders.Update(func(items []model.Order) ([]model.Order, bool, error) {
		for _, it := range items {
			if it.SessionID == order.SessionID {
				return nil, false, nil
			}
			if it.ID == order.ID {
				return nil, false, fmt.Errorf("order %s already exists for session %s", it.ID, it.SessionID)
			}
		}
		created = true
		return append(items, *order), true, nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *fileOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	o, err := r.find(func(o *model.Order) bool { return o.ID == id })
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("order", id)
	}
	return o, nil
}

func (r *fileOrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	o, err := r.find(func(o *model.Order) bool { return o.SessionID == sessionID })
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("order for session", sessionID)
	}
	return o, nil
}

func (r *fileOrderRepository) find(match func(*model.Order) bool) (*model.Order, error) {
	var found *model.Order
	err := r.orders.Read(func(items []model.Order) error {
		for i := range items {
			if match(&items[i]) {
				o := items[i]
				found = &o
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *fileOrderRepository) List(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := r.orders.Read(func(items []model.Order) error {
		// 同一时刻创建的订单，后追加的排在前面
		out = make([]model.Order, 0, len(items))
		for i := len(items) - 1; i >= 0; i-- {
			out = append(out, items[i])
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}

func (r *fileOrderRepository) UpdateStatus(ctx context.Context, id string, status model.Status, at time.Time) (*model.Order, error) {
	var updated *model.Order
	err := r.orders.Update(func(items []model.Order) ([]model.Order, bool, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Status = status
				items[i].UpdatedAt = at
				o := items[i]
				updated = &o
				return items, true, nil
			}
		}
		return nil, false, apperr.NotFound("order", id)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
