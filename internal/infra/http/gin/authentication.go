package ginserver

import (
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rento/internal/app/services/auth"
	domainauth "rento/internal/domain/auth"
)

const (
	principalContextKey = "rento.principal"
	authErrorContextKey = "rento.auth_error"
)

// AuthMiddleware resolves bearer tokens into principals. Resolve never rejects a request;
// RequireAuth does.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Resolve(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	p, err := m.Service.Resolve(c.Request.Context(), token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token rejected", "error", err)
		}
		c.Set(authErrorContextKey, err)
		c.Next()
		return
	}
	c.Set(principalContextKey, p)
	c.Next()
}

// RequireAuth aborts with 401 unless Resolve attached a principal.
func (m AuthMiddleware) RequireAuth(c *gin.Context) {
	if _, ok := currentPrincipal(c); ok {
		c.Next()
		return
	}
	if v, ok := c.Get(authErrorContextKey); ok {
		if err, ok := v.(error); ok {
			respondError(c, m.Logger, err)
			return
		}
	}
	respondError(c, m.Logger, domainauth.ErrTokenRequired)
}

func currentPrincipal(c *gin.Context) (auth.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := val.(auth.Principal)
	return p, ok
}

// viewerID is empty for anonymous callers.
func viewerID(c *gin.Context) string {
	p, _ := currentPrincipal(c)
	return p.UserID
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
