package obs

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandlers exposes endpoints for liveness and readiness checks.
type HealthHandlers struct {
	Checks  map[string]Check
	Timeout time.Duration
	Now     func() time.Time
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if failures := h.run(c.Request.Context()); len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failures": failures})
		return
	}
	c.Status(http.StatusOK)
}

// API answers the public health route with the standard envelope.
func (h HealthHandlers) API(c *gin.Context) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Rento API is running",
		"timestamp": now().UTC().Format(time.RFC3339),
	})
}

func (h HealthHandlers) run(ctx context.Context) map[string]string {
	if len(h.Checks) == 0 {
		return nil
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	failures := make(map[string]string)
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}
