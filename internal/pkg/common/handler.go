package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Check 单项健康检查
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health 并发执行所有检查，任一失败返回 503
// @Summary 健康检查
// @Tags Common
// @Produce json
// @Router /health [get]
func Health(timeout time.Duration, checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		// 结果数组，预分配大小
		results := make([]checkResult, len(checks))
		var wg sync.WaitGroup
		for i, chk := range checks {
			wg.Add(1)
			go func(i int, chk Check) {
				defer wg.Done()
				if err := chk.Fn(ctx); err != nil {
					results[i] = checkResult{Status: "down", Error: err.Error()}
					return
				}
				results[i] = checkResult{Status: "up"}
			}(i, chk)
		}
		wg.Wait()

		code, status := http.StatusOK, "ok"
		out := make(map[string]checkResult, len(checks))
		for i, chk := range checks {
			out[chk.Name] = results[i]
			if results[i].Status != "up" {
				code, status = http.StatusServiceUnavailable, "degraded"
			}
		}
		c.JSON(code, gin.H{"status": status, "checks": out})
	}
}
