// Package router 提供 HTTP 路由配置
package router

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"email-draft-ai-api/internal/config"
	"email-draft-ai-api/internal/interfaces/http/handler"
	"email-draft-ai-api/internal/interfaces/http/middleware"
	"email-draft-ai-api/pkg/logger"
)

// Dependencies 路由所需的处理器与基础设施
type Dependencies struct {
	Drafts  *handler.DraftHandler
	Health  *handler.HealthHandler
	Limiter middleware.RateLimiter
}

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
	deps   Dependencies
}

// New 创建新的路由器
func New(cfg *config.Config, deps Dependencies) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
		deps:   deps,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	// 限流按客户端 IP 计数，只有受信代理的 X-Forwarded-For 才被采纳
	if err := r.engine.SetTrustedProxies(r.cfg.Security.TrustedProxies); err != nil {
		logger.Warn(context.Background(), "invalid trusted proxies, trusting none", "error", err.Error())
		_ = r.engine.SetTrustedProxies(nil)
	}

	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.BodyLimit(r.cfg.Server.HTTP.MaxBodyBytes))
}

func (r *Router) setupRoutes() {
	health := r.deps.Health
	if health == nil {
		health = handler.NewHealthHandler(r.cfg.App.Version, nil)
	}
	r.engine.GET("/health", health.Health)
	r.engine.GET("/ready", health.Ready)
	r.engine.GET("/live", health.Live)

	// 指标未单独开端口时挂在主端口上
	metricsCfg := r.cfg.Observability.Metrics
	if metricsCfg.Enabled && metricsCfg.Port == 0 {
		r.engine.GET(metricsCfg.Path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerWindow: r.cfg.Security.RateLimit.RequestsPerWindow,
		Window:            r.cfg.Security.RateLimit.Window,
	}, r.deps.Limiter))
	if r.deps.Drafts != nil {
		api.POST("/generate-email", r.deps.Drafts.GenerateEmail)
		api.POST("/test-llm", r.deps.Drafts.TestLLM)
	}
}
