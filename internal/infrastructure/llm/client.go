// Package llm 封装 OpenAI 兼容的对话补全接口（默认接入 Groq）
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"email-draft-ai-api/internal/config"
	"email-draft-ai-api/pkg/metrics"
	"email-draft-ai-api/pkg/tracer"
)

var (
	// ErrMissingAPIKey 缺少凭据，构造期即失败
	ErrMissingAPIKey = errors.New("llm: api key is required")
	// ErrNoChoices 上游未返回任何候选
	ErrNoChoices = errors.New("llm: no choices in response")
	// ErrEmptyContent 上游返回了空消息
	ErrEmptyContent = errors.New("llm: empty message content")
)

// CallOptions 单次调用参数
type CallOptions struct {
	// Workflow 仅用于指标与追踪标签
	Workflow    string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completion 一次补全的结果
type Completion struct {
	Content          string
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
	Raw              string
}

// Client 对话补全客户端，显式构造后注入使用
type Client struct {
	api      openai.Client
	provider string
}

// NewClient 创建客户端；凭据缺失时返回 ErrMissingAPIKey。
// SDK 自带的重试被关闭，每次 Complete 只发出一次请求。
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("llm: config is nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}

	return &Client{
		api:      openai.NewClient(opts...),
		provider: provider,
	}, nil
}

// Complete 发送一次对话补全请求，不做重试
func (c *Client) Complete(ctx context.Context, msgs []*schema.Message, opts CallOptions) (*Completion, error) {
	if c == nil {
		return nil, errors.New("llm: client not configured")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("llm: model is required")
	}

	ctx, span := tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.provider", c.provider),
		attribute.String("llm.model", opts.Model),
		attribute.String("llm.workflow", opts.Workflow),
	))
	defer span.End()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(opts.Model),
		Messages: toOpenAIMessages(msgs),
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	metrics.LLMCallDuration.WithLabelValues(opts.Workflow, opts.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(opts.Workflow, opts.Model, "error").Inc()
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("llm: chat completion: %w", err)
	}

	metrics.LLMTokensUsed.WithLabelValues(opts.Workflow, opts.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(opts.Workflow, opts.Model, "completion").Add(float64(resp.Usage.CompletionTokens))
	span.SetAttributes(
		attribute.Int64("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int64("llm.completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 {
		metrics.LLMCallTotal.WithLabelValues(opts.Workflow, opts.Model, "empty").Inc()
		tracer.RecordError(span, ErrNoChoices)
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	// 只拒绝空串；纯空白回复交给解析器，得到三份空草稿
	if choice.Message.Content == "" {
		metrics.LLMCallTotal.WithLabelValues(opts.Workflow, opts.Model, "empty").Inc()
		tracer.RecordError(span, ErrEmptyContent)
		return nil, ErrEmptyContent
	}

	metrics.LLMCallTotal.WithLabelValues(opts.Workflow, opts.Model, "success").Inc()
	return &Completion{
		Content:          choice.Message.Content,
		Model:            resp.Model,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		Raw:              resp.RawJSON(),
	}, nil
}

// StatusCode 返回上游 API 错误中的 HTTP 状态码，无法获取时返回 0
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ErrorMessage 返回最适合展示给调用方的错误信息，优先使用上游 API 的 message 字段
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return err.Error()
}

func toOpenAIMessages(msgs []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.Assistant:
			out = append(out, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
