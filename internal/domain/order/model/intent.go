package model

import (
	"fmt"
	"strconv"
	"strings"

	"poster_shop/pkg/apperr"
)

// 支付会话 metadata 键
const (
	MetaOrderID         = "order_id"
	MetaTheme           = "theme"
	MetaTier            = "tier"
	MetaQuantity        = "quantity"
	MetaUploadID        = "upload_id"
	MetaCustomerName    = "customer_name"
	MetaCustomerEmail   = "customer_email"
	MetaCustomerPhone   = "customer_phone"
	MetaShippingAddress = "shipping_address"
	MetaNotes           = "notes"
	MetaAmount          = "amount"
)

// MaxMetadataValue is the processor's per-value metadata limit.
const MaxMetadataValue = 500

// MaxQuantity 单笔订单的数量上限，保证金额不会溢出
const MaxQuantity = 999

// CheckoutIntent 下单意图；支付完成前只存在于支付会话的 metadata 中
type CheckoutIntent struct {
	Theme           string `json:"theme"`
	Tier            string `json:"tier"`
	Quantity        int    `json:"quantity"`
	UploadID        string `json:"uploadId"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Normalize trims surrounding whitespace from every text field.
func (i *CheckoutIntent) Normalize() {
	i.Theme = strings.TrimSpace(i.Theme)
	i.Tier = strings.TrimSpace(i.Tier)
	i.UploadID = strings.TrimSpace(i.UploadID)
	i.CustomerName = strings.TrimSpace(i.CustomerName)
	i.CustomerEmail = strings.TrimSpace(i.CustomerEmail)
	i.CustomerPhone = strings.TrimSpace(i.CustomerPhone)
	i.ShippingAddress = strings.TrimSpace(i.ShippingAddress)
	i.Notes = strings.TrimSpace(i.Notes)
}

// Metadata 编码为支付会话 metadata，空的可选字段不写入
func (i CheckoutIntent) Metadata(orderID string, amount int64) map[string]string {
	md := map[string]string{
		MetaOrderID:       orderID,
		MetaTheme:         i.Theme,
		MetaTier:          i.Tier,
		MetaQuantity:      strconv.Itoa(i.Quantity),
		MetaUploadID:      i.UploadID,
		MetaCustomerName:  i.CustomerName,
		MetaCustomerEmail: i.CustomerEmail,
		MetaAmount:        strconv.FormatInt(amount, 10),
	}
	if i.CustomerPhone != "" {
		md[MetaCustomerPhone] = i.CustomerPhone
	}
	if i.ShippingAddress != "" {
		md[MetaShippingAddress] = i.ShippingAddress
	}
	if i.Notes != "" {
		md[MetaNotes] = i.Notes
	}
	return md
}

// PendingOrder 从 metadata 还原出的待落库信息
type PendingOrder struct {
	OrderID string
	Intent  CheckoutIntent
	Amount  int64
}

// ParseMetadata 还原 metadata；缺字段或格式错误返回 MalformedEvent。
// customer_email 可缺省，由调用方用会话上的邮箱补齐
func ParseMetadata(md map[string]string) (*PendingOrder, error) {
	for _, key := range []string{MetaOrderID, MetaTheme, MetaTier, MetaQuantity, MetaUploadID} {
		if strings.TrimSpace(md[key]) == "" {
			return nil, apperr.MalformedEvent(fmt.Sprintf("metadata %s missing", key), nil)
		}
	}

	qty, err := strconv.Atoi(md[MetaQuantity])
	if err != nil || qty <= 0 || qty > MaxQuantity {
		return nil, apperr.MalformedEvent("metadata quantity invalid", err)
	}

	var amount int64
	if raw := md[MetaAmount]; raw != "" {
		amount, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperr.MalformedEvent("metadata amount invalid", err)
		}
	}

	return &PendingOrder{
		OrderID: md[MetaOrderID],
		Amount:  amount,
		Intent: CheckoutIntent{
			Theme:           md[MetaTheme],
			Tier:            md[MetaTier],
			Quantity:        qty,
			UploadID:        md[MetaUploadID],
			CustomerName:    md[MetaCustomerName],
			CustomerEmail:   md[MetaCustomerEmail],
			CustomerPhone:   md[MetaCustomerPhone],
			ShippingAddress: md[MetaShippingAddress],
			Notes:           md[MetaNotes],
		},
	}, nil
}
