package notifier

import (
	"context"
	"fmt"
	"strings"

	"poster_shop/internal/domain/catalog"
	"poster_shop/internal/domain/order/model"
	"poster_shop/internal/pkg/mailer"
	"poster_shop/internal/pkg/push"
	"poster_shop/internal/pkg/worker"
	"poster_shop/pkg/metrics"

	"go.uber.org/zap"
)

// 通知类型，用于日志和指标
const (
	KindCustomerConfirmation = "customer_confirmation"
	KindStaffAlert           = "staff_alert"
	KindStaffPush            = "staff_push"
	KindStatusUpdate         = "status_update"
)

// Notifier 订单通知。发送失败只记录日志，不向调用方返回错误
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, order *model.Order)
	NotifyStatusChanged(ctx context.Context, order *model.Order)
}

// Options 通知目标
type Options struct {
	StaffAddress string
	StaffAccount string
	// UploadURL 根据上传编号返回可访问的地址，可为空
	UploadURL func(ctx context.Context, uploadID string) string
	// Dispatcher 不为空时异步发送并按池的策略重试
	Dispatcher Dispatcher
}

// Dispatcher 异步任务入口，*worker.Pool 实现了该接口
type Dispatcher interface {
	Submit(task worker.Task) bool
}

type notifier struct {
	mailer  mailer.Mailer
	push    push.PushService
	catalog *catalog.Catalog
	opts    Options
	log     *zap.Logger
	metrics *metrics.MetricsCollector
}

// New push 可为 nil
func New(m mailer.Mailer, p push.PushService, c *catalog.Catalog, opts Options, log *zap.Logger, mc *metrics.MetricsCollector) Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &notifier{mailer: m, push: p, catalog: c, opts: opts, log: log, metrics: mc}
}

type orderView struct {
	Order       *model.Order
	Product     string
	Total       string
	UploadURL   string
	StatusLabel string
}

func (n *notifier) view(ctx context.Context, order *model.Order) orderView {
	product, err := n.catalog.ProductLabel(order.Theme, order.Tier)
	if err != nil {
		product = fmt.Sprintf("%s / %s", order.Theme, order.Tier)
	}
	v := orderView{
		Order:       order,
		Product:     product,
		Total:       FormatAmount(order.Amount, order.Currency),
		StatusLabel: StatusLabel(order.Status),
	}
	if n.opts.UploadURL != nil && order.UploadID != "" {
		v.UploadURL = n.opts.UploadURL(ctx, order.UploadID)
	}
	return v
}

func (n *notifier) NotifyOrderCreated(ctx context.Context, order *model.Order) {
	v := n.view(ctx, order)

	n.send(ctx, KindCustomerConfirmation, order, order.CustomerEmail,
		fmt.Sprintf("Order %s confirmed", order.ID), customerCreated, v)

	if n.opts.StaffAddress != "" {
		n.send(ctx, KindStaffAlert, order, n.opts.StaffAddress,
			fmt.Sprintf("New order %s: %s x%d", order.ID, v.Product, order.Quantity), staffCreated, v)
	}

	if n.push != nil && n.opts.StaffAccount != "" {
		body := fmt.Sprintf("%s x%d (%s)", v.Product, order.Quantity, v.Total)
		n.dispatch(ctx, KindStaffPush, order, func(ctx context.Context) error {
			return n.push.PushToAccount(n.opts.StaffAccount, "New poster order", body,
				map[string]string{"orderId": order.ID})
		})
	}
}

func (n *notifier) NotifyStatusChanged(ctx context.Context, order *model.Order) {
	v := n.view(ctx, order)
	n.send(ctx, KindStatusUpdate, order, order.CustomerEmail,
		fmt.Sprintf("Order %s: %s", order.ID, v.StatusLabel), statusChanged, v)
}

func (n *notifier) send(ctx context.Context, kind string, order *model.Order, to, subject string, tpl templatePair, v orderView) {
	if to == "" {
		n.record(kind, order, fmt.Errorf("no recipient"))
		return
	}
	html, text, err := tpl.render(v)
	if err != nil {
		n.record(kind, order, err)
		return
	}
	msg := mailer.Message{To: to, Subject: subject, HTML: html, Text: text}
	n.dispatch(ctx, kind, order, func(ctx context.Context) error {
		return n.mailer.Send(ctx, msg)
	})
}

// dispatch 优先交给 Dispatcher；没有或队列已满时同步执行一次
func (n *notifier) dispatch(ctx context.Context, kind string, order *model.Order, run func(ctx context.Context) error) {
	if n.opts.Dispatcher != nil {
		ok := n.opts.Dispatcher.Submit(worker.Task{
			Name: kind + ":" + order.ID,
			Run:  run,
			Done: func(err error) { n.record(kind, order, err) },
		})
		if ok {
			return
		}
	}
	n.record(kind, order, run(context.WithoutCancel(ctx)))
}

func (n *notifier) record(kind string, order *model.Order, err error) {
	if n.metrics != nil {
		n.metrics.RecordNotification(kind, err)
	}
	if err != nil {
		n.log.Warn("notification failed",
			zap.String("kind", kind),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		return
	}
	n.log.Debug("notification sent", zap.String("kind", kind), zap.String("order_id", order.ID))
}

// FormatAmount 以主货币单位展示金额，例如 "USD 378.00"
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s %s%d.%02d", strings.ToUpper(currency), sign, amount/100, amount%100)
}

// StatusLabel 状态的展示名，例如 proof_ready -> "Proof Ready"
func StatusLabel(s model.Status) string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
