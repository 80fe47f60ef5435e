package ginserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
)

func TestRateLimiterPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2, nil)
	current := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	router := gin.New()
	router.Use(limiter.Handle)
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	steps := []struct {
		ip      string
		advance time.Duration
		want    int
	}{
		{ip: "10.0.0.1", want: http.StatusNoContent},
		{ip: "10.0.0.1", want: http.StatusNoContent},
		{ip: "10.0.0.1", want: http.StatusTooManyRequests},
		{ip: "10.0.0.2", want: http.StatusNoContent},
		{ip: "10.0.0.1", advance: time.Second, want: http.StatusNoContent},
	}
	for i, step := range steps {
		current = current.Add(step.advance)
		if got := hit(step.ip); got != step.want {
			t.Fatalf("step %d (%s): expected %d, got %d", i, step.ip, step.want, got)
		}
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(5, 5, nil)
	current := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.allow("10.0.0.1")
	current = current.Add(limiterIdleTTL + time.Minute)
	limiter.allow("10.0.0.2")
	if _, ok := limiter.clients["10.0.0.1"]; ok {
		t.Fatalf("idle client should be swept")
	}
	if NewRateLimiter(0, 10, nil) != nil {
		t.Fatalf("non-positive rate must disable limiting")
	}
}
