// Package router wires gin middleware and route registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers routes on an API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages middleware and route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string

	public     []RouteRegistrar
	tenant     []RouteRegistrar
	webhook    []RouteRegistrar
	webhookTok string
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithWebhookToken sets the shared token required on webhook routes
func WithWebhookToken(token string) RouterOption {
	return func(r *Router) {
		r.webhookTok = token
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UseDefaults installs the standard middleware chain
func (r *Router) UseDefaults(log *zap.Logger, httpCfg config.HTTPConfig, telemetryCfg config.TelemetryConfig) *Router {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(logger.GinMiddleware(log))
	r.engine.Use(logger.Recovery(log))
	if telemetryCfg.Enabled {
		r.engine.Use(middleware.Tracing(middleware.TracingConfig{
			ServiceName: telemetryCfg.ServiceName,
			Enabled:     true,
		}))
	}
	if httpCfg.MaxBodySize > 0 {
		r.engine.Use(middleware.BodyLimit(httpCfg.MaxBodySize))
	}
	return r
}

// Register adds a registrar to the public API group
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.public = append(r.public, registrar)
	return r
}

// RegisterTenant adds a registrar behind the tenant header requirement
func (r *Router) RegisterTenant(registrar RouteRegistrar) *Router {
	r.tenant = append(r.tenant, registrar)
	return r
}

// RegisterWebhook adds a registrar behind webhook token authentication
func (r *Router) RegisterWebhook(registrar RouteRegistrar) *Router {
	r.webhook = append(r.webhook, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.public {
		registrar.RegisterRoutes(api)
	}

	if len(r.tenant) > 0 {
		tenantGroup := api.Group("")
		tenantGroup.Use(middleware.Tenant(true))
		for _, registrar := range r.tenant {
			registrar.RegisterRoutes(tenantGroup)
		}
	}

	if len(r.webhook) > 0 {
		webhookGroup := api.Group("")
		webhookGroup.Use(middleware.WebhookAuth(r.webhookTok))
		for _, registrar := range r.webhook {
			registrar.RegisterRoutes(webhookGroup)
		}
	}
}
