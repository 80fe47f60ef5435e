package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rento/internal/domain/shared/fault"
)

// envelope is the response body shared by every /api route.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

var errInvalidBody = fault.New(fault.Validation, "Invalid request body")

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	c.JSON(http.StatusOK, envelope{Success: true, Data: items, Count: &count})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: true, Message: message})
}

// statusOverride remaps a fault kind to a different status at one call site.
type statusOverride map[fault.Kind]int

func respondError(c *gin.Context, logger *slog.Logger, err error, overrides ...statusOverride) {
	kind := fault.KindOf(err)
	status := statusFor(kind)
	for _, o := range overrides {
		if s, ok := o[kind]; ok {
			status = s
		}
	}
	if kind == fault.Internal {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: fault.Message(err)})
}

func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.Validation:
		return http.StatusBadRequest
	case fault.NotFound:
		return http.StatusNotFound
	case fault.Forbidden:
		return http.StatusForbidden
	case fault.Conflict:
		return http.StatusConflict
	case fault.Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func notFoundRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, envelope{Success: false, Message: "API endpoint not found"})
}
