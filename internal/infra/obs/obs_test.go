package obs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want {
			t.Fatalf("%q: expected %v, got %v", raw, want, got)
		}
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	m := Middleware{Logger: newLogger("prod", "info", &buf)}
	r := gin.New()
	r.Use(m.RequestID(), m.AccessLog())
	r.GET("/ping", func(c *gin.Context) {
		if RequestIDFromContext(c.Request.Context()) != "req-1" {
			t.Errorf("request id missing from context")
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) != "req-1" {
		t.Fatalf("request id not echoed")
	}
	if !strings.Contains(buf.String(), `"request_id":"req-1"`) || !strings.Contains(buf.String(), `"status":204`) {
		t.Fatalf("unexpected access log %s", buf.String())
	}
}

func TestReadyzReportsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := HealthHandlers{Checks: map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"mongo":    func(context.Context) error { return errors.New("down") },
	}}
	r := gin.New()
	r.GET("/readyz", h.Readyz)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("expected 503 naming mongo, got %d %s", rec.Code, rec.Body.String())
	}
}
