// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/config"
	"github.com/iliyamo/cowork-booking/internal/handler"
	"github.com/iliyamo/cowork-booking/internal/middleware"
	"github.com/iliyamo/cowork-booking/internal/session"
)

// Deps carries everything Register needs.  Redis may be nil, which turns
// rate limiting and the response cache into pass-throughs.
type Deps struct {
	Health    *handler.HealthHandler
	Browse    *handler.BrowseHandler
	Hold      *handler.HoldHandler
	Otp       *handler.OtpHandler
	Sessions  *session.Registry
	JWTSecret string
	Secure    bool
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       *logrus.Entry
}

// Register mounts the companion API.
//
//	GET    /healthz
//	GET    /v1/workspaces
//	GET    /v1/locations
//	GET    /v1/workspaces/:id/slots
//	POST   /v1/otp                       (rate limited)
//	GET    /v1/otp
//	POST   /v1/holds
//	GET    /v1/holds/current
//	POST   /v1/holds/current/restore
//	DELETE /v1/holds/current
//	POST   /v1/holds/current/payment
//	POST   /v1/holds/current/restart
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health.Health)

	v1 := e.Group("/v1", middleware.Identity(d.JWTSecret), middleware.Session(d.Sessions, d.Secure))

	v1.GET("/workspaces", d.Browse.ListWorkspaces)
	v1.GET("/locations", d.Browse.ListLocations)
	v1.GET("/workspaces/:id/slots", d.Browse.ListSlots, middleware.ResponseCache(d.Cache, d.Redis))

	v1.POST("/otp", d.Otp.Request, middleware.RateLimit(d.RateLimit, d.Redis, d.Log))
	v1.GET("/otp", d.Otp.State)

	holds := v1.Group("/holds")
	holds.POST("", d.Hold.Attempt)
	holds.GET("/current", d.Hold.Current)
	holds.POST("/current/restore", d.Hold.Restore)
	holds.DELETE("/current", d.Hold.Cancel)
	holds.POST("/current/payment", d.Hold.Payment)
	holds.POST("/current/restart", d.Hold.Restart)
}
