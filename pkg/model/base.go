package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 基础模型，字符串主键；记录只追加，不做软删除
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 钩子：未指定 ID 时生成 UUID
func (b *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	b.EnsureID()
	return
}

// EnsureID fills ID and timestamps for stores that bypass gorm hooks.
func (b *BaseModel) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
}
