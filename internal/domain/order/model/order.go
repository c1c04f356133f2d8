package model

import (
	baseModel "poster_shop/pkg/model"
)

// Status 订单状态。状态之间不做转换约束，店员可以任意调整（包括回退）。
type Status string

const (
	StatusPending    Status = "pending"
	StatusDesigning  Status = "designing"
	StatusProofReady Status = "proof_ready"
	StatusApproved   Status = "approved"
	StatusPrinting   Status = "printing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status label in workflow order.
var Statuses = []Status{
	StatusPending,
	StatusDesigning,
	StatusProofReady,
	StatusApproved,
	StatusPrinting,
	StatusShipped,
	StatusCompleted,
}

var statusDescriptions = map[Status]string{
	StatusPending:    "We received your payment and your order is in the queue.",
	StatusDesigning:  "Our designers are working on your poster.",
	StatusProofReady: "Your proof is ready for review.",
	StatusApproved:   "You approved the proof. We are preparing it for production.",
	StatusPrinting:   "Your poster is being printed.",
	StatusShipped:    "Your poster is on its way.",
	StatusCompleted:  "Your order is complete. Thank you!",
}

// ParseStatus 校验状态标签
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusDescriptions[st]
	return st, ok
}

// Description 面向顾客的状态说明
func (s Status) Description() string {
	return statusDescriptions[s]
}

// Order 订单，仅在支付确认后由回调创建，只追加不删除
type Order struct {
	baseModel.BaseModel
	SessionID       string `gorm:"type:varchar(255);uniqueIndex;not null" json:"sessionId"`
	PaymentIntentID string `json:"paymentIntentId"`
	Theme           string `gorm:"type:varchar(32);not null" json:"theme"`
	Tier            string `gorm:"type:varchar(32);not null" json:"tier"`
	Quantity        int    `gorm:"not null" json:"quantity"`
	UploadID        string `json:"uploadId"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `gorm:"index" json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Amount          int64  `gorm:"not null" json:"amount"` // 最小货币单位
	Currency        string `gorm:"type:varchar(8)" json:"currency"`
	Status          Status `gorm:"type:varchar(32);not null;index" json:"status"`
}
