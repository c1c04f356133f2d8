package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"poster_shop/internal/domain/order/gateway"
	"poster_shop/internal/domain/order/model"
	"poster_shop/internal/domain/order/repository"
	"poster_shop/internal/pkg/config"
	"poster_shop/internal/pkg/filestore"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_service_test"

// fakeGateway 验签与解析走真实的 Stripe 实现，创建会话和查询状态在本地完成
type fakeGateway struct {
	*gateway.StripeGateway

	mu          sync.Mutex
	requests    []gateway.CheckoutRequest
	createErr   error
	status      string
	statusErr   error
	statusCalls int
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	sg, err := gateway.NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: testWebhookSecret})
	require.NoError(t, err)
	return &fakeGateway{StripeGateway: sg, status: "paid"}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutRequest) (*gateway.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.requests = append(g.requests, req)
	id := "cs_test_" + req.OrderID
	return &gateway.Session{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (g *fakeGateway) PaymentStatus(ctx context.Context, sessionID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	return g.status, g.statusErr
}

func (g *fakeGateway) lastRequest() gateway.CheckoutRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

type fakeUploads map[string]bool

func (u fakeUploads) Exists(ctx context.Context, id string) (bool, error) {
	return u[id], nil
}

// countingNotifier 记录通知次数
type countingNotifier struct {
	mu      sync.Mutex
	created []string
	changed []model.Status
}

func (n *countingNotifier) NotifyOrderCreated(ctx context.Context, order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, order.ID)
}

func (n *countingNotifier) NotifyStatusChanged(ctx context.Context, order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, order.Status)
}

func newFileOrders(t *testing.T) repository.OrderRepository {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return repository.NewFileOrderRepository(store)
}

// completedPayload 构造 checkout.session.completed 事件并签名
func completedPayload(t *testing.T, sessionID string, amount int64, metadata map[string]string) ([]byte, string) {
	return completedPayloadWith(t, sessionID, amount, metadata, nil)
}

// completedPayloadWith 允许在 session 对象上追加字段，如 customer_details
func completedPayloadWith(t *testing.T, sessionID string, amount int64, metadata map[string]string, extra map[string]interface{}) ([]byte, string) {
	t.Helper()
	session := map[string]interface{}{
		"id":             sessionID,
		"object":         "checkout.session",
		"payment_intent": "pi_" + sessionID,
		"payment_status": "paid",
		"amount_total":   amount,
		"currency":       "usd",
		"metadata":       metadata,
	}
	for k, v := range extra {
		session[k] = v
	}
	body, err := json.Marshal(map[string]interface{}{
		"id":     "evt_" + sessionID,
		"object": "event",
		"type":   "checkout.session.completed",
		"data":   map[string]interface{}{"object": session},
	})
	require.NoError(t, err)
	return body, signPayload(body, testWebhookSecret)
}

func signPayload(body []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   body,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func printIntent() model.CheckoutIntent {
	return model.CheckoutIntent{
		Theme:         "homeAlone",
		Tier:          "print",
		Quantity:      2,
		UploadID:      "up-1",
		CustomerName:  "Kate McCallister",
		CustomerEmail: "kate@example.com",
	}
}
