package wire

import (
	"context"

	"github.com/gin-gonic/gin"

	"email-draft-ai-api/internal/application/draft"
	"email-draft-ai-api/internal/config"
	"email-draft-ai-api/internal/infrastructure/llm"
	"email-draft-ai-api/internal/infrastructure/persistence/redis"
	"email-draft-ai-api/internal/interfaces/http/handler"
	"email-draft-ai-api/internal/interfaces/http/middleware"
	"email-draft-ai-api/internal/interfaces/http/router"
	"email-draft-ai-api/pkg/logger"
)

// App 组装完成的应用
type App struct {
	Router *router.Router
	Redis  *redis.Client
}

// Engine 返回 Gin Engine
func (a *App) Engine() *gin.Engine {
	return a.Router.Engine()
}

// ProvideLLMClient 凭据缺失时启动失败
func ProvideLLMClient(cfg *config.Config) (*llm.Client, error) {
	return llm.NewClient(&cfg.LLM)
}

// ProvideDraftLimits 从配置读取输入限制
func ProvideDraftLimits(cfg *config.Config) draft.Limits {
	return draft.Limits{
		MaxContextRunes: cfg.Drafts.MaxContextRunes,
		MaxToneRunes:    cfg.Drafts.MaxToneRunes,
		MaxWordCount:    cfg.Drafts.MaxWordCount,
	}
}

// ProvideRedisClient 仅在启用时连接 Redis
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, &cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error(context.Background(), "failed to close redis", err)
		}
	}
	return client, cleanup, nil
}

// ProvideRateLimiter Redis 未启用时返回 nil 接口，限流中间件随之关闭
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideHealthHandler 就绪检查仅在启用 Redis 时探测它
func ProvideHealthHandler(cfg *config.Config, client *redis.Client) *handler.HealthHandler {
	if client == nil {
		return handler.NewHealthHandler(cfg.App.Version, nil)
	}
	return handler.NewHealthHandler(cfg.App.Version, client)
}
