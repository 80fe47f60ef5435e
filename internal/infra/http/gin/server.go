package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rento/internal/infra/config"
	"rento/internal/infra/obs"
)

type Handlers struct {
	Booking      BookingHandler
	Listing      ListingHandler
	HostListing  HostListingHandler
	Availability AvailabilityHandler
	Reviews      ReviewsHandler
	Auth         AuthHandler
	Me           MeHandler
	Middleware   AuthMiddleware
	RateLimiter  *RateLimiter
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(obsMW.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	if h.RateLimiter != nil {
		api.Use(h.RateLimiter.Handle)
	}
	api.Use(h.Middleware.Resolve)
	api.GET("/health", health.API)

	authed := h.Middleware.RequireAuth

	bookings := api.Group("/bookings", authed)
	bookings.POST("", h.Booking.Create)
	bookings.GET("", h.Booking.List)
	bookings.GET("/:id", h.Booking.Get)
	bookings.PUT("/:id/cancel", h.Booking.Cancel)
	bookings.PUT("/:id/confirm", h.Booking.Confirm)

	apartments := api.Group("/apartments")
	apartments.GET("", h.Listing.Catalog)
	apartments.GET("/:id", h.Listing.Overview)
	apartments.GET("/:id/availability", h.Availability.Calendar)
	apartments.GET("/:id/quote", h.Availability.Quote)
	apartments.POST("", authed, h.HostListing.Create)
	apartments.PUT("/:id", authed, h.HostListing.Update)
	apartments.DELETE("/:id", authed, h.HostListing.Delete)
	apartments.POST("/:id/image", authed, h.HostListing.UploadImage)

	users := api.Group("/users")
	users.POST("/register", h.Auth.Register)
	users.POST("/login", h.Auth.Login)
	users.POST("/logout", authed, h.Auth.Logout)
	users.GET("/profile", authed, h.Me.Profile)
	users.PUT("/profile", authed, h.Me.UpdateProfile)
	users.GET("/apartments", authed, h.HostListing.Mine)
	users.GET("/favorites", authed, h.Me.Favorites)
	users.POST("/favorites/:apartmentId", authed, h.Me.AddFavorite)
	users.DELETE("/favorites/:apartmentId", authed, h.Me.RemoveFavorite)

	reviews := api.Group("/reviews")
	reviews.GET("/apartment/:apartmentId", h.Reviews.ForListing)
	reviews.GET("/user", authed, h.Reviews.Mine)
	reviews.POST("", authed, h.Reviews.Submit)
	reviews.PUT("/:id", authed, h.Reviews.Update)
	reviews.DELETE("/:id", authed, h.Reviews.Delete)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFoundRoute(c)
			return
		}
		c.Status(http.StatusNotFound)
	})
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", obs.RequestIDHeader, "Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
