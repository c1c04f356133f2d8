package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76/webhook"
)

// 压测 webhook 幂等：同一个 checkout.session.completed 事件并发投递 N 次，
// 期望全部返回 200 且只生成一个订单
var (
	baseURL     = flag.String("base", "http://localhost:8080", "server base url")
	secret      = flag.String("secret", os.Getenv("STRIPE_WEBHOOK_SECRET"), "webhook signing secret")
	deliveries  = flag.Int("n", 500, "concurrent deliveries of the same event")
	uploadID    = flag.String("upload", "stress-upload", "upload id written into metadata")
	amountTotal = flag.Int64("amount", 37800, "amount_total in minor units")
)

var httpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 1000
	t.MaxIdleConnsPerHost = 1000
	t.MaxConnsPerHost = 1000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

func main() {
	flag.Parse()
	if *secret == "" {
		fmt.Println("缺少 -secret 或 STRIPE_WEBHOOK_SECRET")
		os.Exit(2)
	}

	sessionID := "cs_stress_" + uuid.NewString()[:8]
	orderID := fmt.Sprintf("PS-%s-STRESS%02d", time.Now().UTC().Format("20060102"), time.Now().Second())
	payload := buildEvent(sessionID, orderID)

	fmt.Printf("开始压测：同一事件并发投递 %d 次 (session: %s)...\n", *deliveries, sessionID)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		codes     = make(map[int]int)
		latencies = make([]time.Duration, 0, *deliveries)
	)

	start := time.Now()
	for i := 0; i < *deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, took := deliver(payload)
			mu.Lock()
			codes[code]++
			latencies = append(latencies, took)
			mu.Unlock()
		}()
	}
	wg.Wait()
	duration := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*deliveries)/duration.Seconds())
	fmt.Printf("P50: %v  P99: %v\n", percentile(latencies, 0.50), percentile(latencies, 0.99))
	for code, n := range codes {
		fmt.Printf("HTTP %d: %d\n", code, n)
	}

	id, ok := lookupOrder(sessionID)
	switch {
	case !ok:
		fmt.Println("订单查询失败")
	case id != orderID:
		fmt.Printf("订单号不符: %s (预期: %s)\n", id, orderID)
	default:
		fmt.Printf("订单已创建: %s\n", id)
	}
	fmt.Println("--------------------------------------------------")

	if codes[http.StatusOK] != *deliveries || id != orderID {
		os.Exit(1)
	}
}

func buildEvent(sessionID, orderID string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"id":     "evt_" + sessionID,
		"object": "event",
		"type":   "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             sessionID,
				"object":         "checkout.session",
				"payment_intent": "pi_" + sessionID,
				"payment_status": "paid",
				"amount_total":   *amountTotal,
				"currency":       "usd",
				"metadata": map[string]string{
					"order_id":       orderID,
					"theme":          "homeAlone",
					"tier":           "print",
					"quantity":       "2",
					"upload_id":      *uploadID,
					"customer_name":  "Stress Test",
					"customer_email": "stress@example.com",
				},
			},
		},
	})
	return body
}

func deliver(payload []byte) (int, time.Duration) {
	// 每次投递单独签名，与真实重试一致
	sig := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    *secret,
		Timestamp: time.Now(),
	}).Header

	req, err := http.NewRequest(http.MethodPost, *baseURL+"/api/webhook/stripe", bytes.NewReader(payload))
	if err != nil {
		return 0, 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", sig)

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, time.Since(start)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, time.Since(start)
}

func lookupOrder(sessionID string) (string, bool) {
	resp, err := httpClient.Get(*baseURL + "/api/orders/session/" + sessionID)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var result struct {
		Code int `json:"code"`
		Data struct {
			Order struct {
				ID string `json:"id"`
			} `json:"order"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false
	}
	return result.Data.Order.ID, result.Code == 0
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
