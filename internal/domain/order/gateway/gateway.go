package gateway

import "context"

// EventCheckoutSessionCompleted 唯一会触发建单的事件类型
const EventCheckoutSessionCompleted = "checkout.session.completed"

// CheckoutRequest 发起托管支付会话所需参数，金额均为最小货币单位
type CheckoutRequest struct {
	OrderID         string
	ProductName     string
	Description     string
	ImageURL        string
	Currency        string
	UnitAmount      int64
	Quantity        int64
	CustomerEmail   string
	CollectShipping bool
	SuccessURL      string
	CancelURL       string
	Metadata        map[string]string
}

// Session 已创建的支付会话
type Session struct {
	ID  string
	URL string
}

// CompletedSession 支付完成事件携带的会话快照
type CompletedSession struct {
	ID              string
	PaymentIntentID string
	PaymentStatus   string
	CustomerEmail   string
	AmountTotal     int64
	Currency        string
	Metadata        map[string]string
}

// Event 已验签的支付事件；Session 仅在 checkout.session.completed 时非空
type Event struct {
	ID      string
	Type    string
	Session *CompletedSession
}

// PaymentGateway 支付渠道
type PaymentGateway interface {
	// CreateCheckoutSession 创建托管支付会话
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)

	// ParseEvent 校验签名并解析事件。签名失败返回 Authentication 错误，
	// 内容无法解析返回 MalformedEvent 错误
	ParseEvent(payload []byte, signature string) (*Event, error)

	// PaymentStatus 查询会话当前的支付状态
	PaymentStatus(ctx context.Context, sessionID string) (string, error)
}
