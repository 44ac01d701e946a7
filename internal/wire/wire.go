//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"email-draft-ai-api/internal/application/draft"
	"email-draft-ai-api/internal/config"
	"email-draft-ai-api/internal/infrastructure/llm"
	"email-draft-ai-api/internal/interfaces/http/handler"
	"email-draft-ai-api/internal/interfaces/http/router"
	workflowprompt "email-draft-ai-api/internal/workflow/prompt"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		LLMSet,
		DraftSet,
		RedisSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// LLMSet 模型客户端提供者集合
var LLMSet = wire.NewSet(
	ProvideLLMClient,
	wire.Bind(new(draft.ChatCompleter), new(*llm.Client)),
)

// DraftSet 草稿生成提供者集合
var DraftSet = wire.NewSet(
	workflowprompt.NewRegistry,
	ProvideDraftLimits,
	draft.NewGenerator,
	wire.Bind(new(handler.DraftService), new(*draft.Generator)),
)

// RedisSet Redis 提供者集合，未启用时各提供者返回 nil
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideRateLimiter,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewDraftHandler,
	ProvideHealthHandler,
	wire.Struct(new(router.Dependencies), "*"),
	router.New,
)
