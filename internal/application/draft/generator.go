// Package draft 邮件草稿生成：提示词构造、单次模型调用与回复解析
package draft

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"email-draft-ai-api/internal/domain/entity"
	"email-draft-ai-api/internal/infrastructure/llm"
	einoobs "email-draft-ai-api/internal/observability/eino"
	workflowprompt "email-draft-ai-api/internal/workflow/prompt"
	apperrors "email-draft-ai-api/pkg/errors"
	"email-draft-ai-api/pkg/logger"
	"email-draft-ai-api/pkg/metrics"
	"email-draft-ai-api/pkg/tracer"
)

// 生成参数固定，不随请求变化
const (
	GenerationModel       = "llama3-8b-8192"
	GenerationTemperature = 0.8
	GenerationMaxTokens   = 1500

	ProbeTemperature = 0.5
	ProbeMaxTokens   = 500

	workflowGenerate = "email_drafts_generate"
	workflowProbe    = "llm_probe"
)

// ChatCompleter 对话补全端口，由 llm.Client 实现
type ChatCompleter interface {
	Complete(ctx context.Context, msgs []*schema.Message, opts llm.CallOptions) (*llm.Completion, error)
}

// Limits 输入长度限制，零值表示不限制
type Limits struct {
	MaxContextRunes int
	MaxToneRunes    int
	MaxWordCount    int
}

// GenerateOutput 一次生成的结果
type GenerateOutput struct {
	Drafts   entity.DraftSet
	Strategy Strategy
	Meta     UsageMeta
}

// UsageMeta 调用元数据
type UsageMeta struct {
	Model            string
	Temperature      float64
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}

// ProbeOutput 连通性探测结果
type ProbeOutput struct {
	Result string
	Raw    string
}

// Generator 草稿生成器
type Generator struct {
	completer ChatCompleter
	prompts   *workflowprompt.Registry
	limits    Limits
}

// NewGenerator 创建生成器；prompts 为空时使用内置模板
func NewGenerator(completer ChatCompleter, prompts *workflowprompt.Registry, limits Limits) *Generator {
	if prompts == nil {
		prompts = workflowprompt.NewRegistry()
	}
	return &Generator{
		completer: completer,
		prompts:   prompts,
		limits:    limits,
	}
}

// Validate 校验请求，失败时返回 CodeInvalidParam
func (g *Generator) Validate(req *entity.GenerationRequest) error {
	if req == nil || strings.TrimSpace(req.Context) == "" || strings.TrimSpace(string(req.Tone)) == "" {
		return apperrors.New(apperrors.CodeInvalidParam, "Missing required fields")
	}
	if g.limits.MaxContextRunes > 0 && utf8.RuneCountInString(req.Context) > g.limits.MaxContextRunes {
		return apperrors.New(apperrors.CodeInvalidParam, "Context is too long").
			WithDetail(fmt.Sprintf("max %d characters", g.limits.MaxContextRunes))
	}
	if g.limits.MaxToneRunes > 0 && utf8.RuneCountInString(string(req.Tone)) > g.limits.MaxToneRunes {
		return apperrors.New(apperrors.CodeInvalidParam, "Tone is too long").
			WithDetail(fmt.Sprintf("max %d characters", g.limits.MaxToneRunes))
	}
	if g.limits.MaxWordCount > 0 && req.WordCount > g.limits.MaxWordCount {
		return apperrors.New(apperrors.CodeInvalidParam, "Word count is too large").
			WithDetail(fmt.Sprintf("max %d words", g.limits.MaxWordCount))
	}
	return nil
}

// BuildMessages 渲染 system + user 两条消息
func (g *Generator) BuildMessages(ctx context.Context, req *entity.GenerationRequest) ([]*schema.Message, error) {
	tpl, err := g.prompts.ChatTemplate(workflowprompt.PromptEmailDraftsV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"variations":         strconv.Itoa(entity.DraftCount),
		"tone":               strings.TrimSpace(string(req.Tone)),
		"context":            strings.TrimSpace(req.Context),
		"length_instruction": lengthInstruction(req.WordCount),
	}
	return tpl.Format(ctx, vars)
}

// lengthInstruction 末尾保留空格，模板中紧接下一句
func lengthInstruction(wordCount int) string {
	if wordCount <= 0 {
		return ""
	}
	return fmt.Sprintf("Each email should be approximately %d words in length. ", wordCount)
}

// Generate 校验 -> 渲染提示词 -> 单次模型调用 -> 解析为三份草稿
func (g *Generator) Generate(ctx context.Context, req *entity.GenerationRequest) (*GenerateOutput, error) {
	if g == nil || g.completer == nil {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "llm client not configured")
	}
	if err := g.Validate(req); err != nil {
		return nil, err
	}

	toneLabel := req.Tone.MetricLabel()
	ctx = einoobs.WithWorkflow(ctx, workflowGenerate)
	ctx, span := tracer.Start(ctx, "drafts.generate", trace.WithAttributes(
		attribute.String("drafts.tone", toneLabel),
		attribute.Int("drafts.word_count", req.WordCount),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.DraftGenerationDuration.WithLabelValues(toneLabel).Observe(time.Since(start).Seconds())
	}()

	msgs, err := g.BuildMessages(ctx, req)
	if err != nil {
		metrics.DraftGenerationTotal.WithLabelValues(toneLabel, "error").Inc()
		tracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to build prompt")
	}

	out, err := g.completer.Complete(ctx, msgs, llm.CallOptions{
		Workflow:    workflowGenerate,
		Model:       GenerationModel,
		Temperature: GenerationTemperature,
		MaxTokens:   GenerationMaxTokens,
	})
	if err != nil {
		metrics.DraftGenerationTotal.WithLabelValues(toneLabel, "error").Inc()
		tracer.RecordError(span, err)
		appErr := mapCompletionError(err)
		logger.Error(ctx, "draft generation failed", err,
			"tone", toneLabel,
			"status", appErr.HTTPStatus,
		)
		return nil, appErr
	}

	parsed := ParseDraftsDetailed(out.Content)
	metrics.DraftParseTotal.WithLabelValues(string(parsed.Strategy)).Inc()
	span.SetAttributes(
		attribute.String("drafts.strategy", string(parsed.Strategy)),
		attribute.Int("drafts.fragments", parsed.Fragments),
	)
	if parsed.Strategy != StrategyMarkers {
		logger.Warn(ctx, "model reply did not contain exactly three marked drafts",
			"strategy", string(parsed.Strategy),
			"fragments", parsed.Fragments,
		)
	}

	metrics.DraftGenerationTotal.WithLabelValues(toneLabel, "success").Inc()
	return &GenerateOutput{
		Drafts:   parsed.Drafts,
		Strategy: parsed.Strategy,
		Meta: UsageMeta{
			Model:            GenerationModel,
			Temperature:      GenerationTemperature,
			PromptTokens:     out.PromptTokens,
			CompletionTokens: out.CompletionTokens,
			GeneratedAt:      time.Now().UTC(),
		},
	}, nil
}

// Probe 发送一条固定问候，验证上游凭据与连通性
func (g *Generator) Probe(ctx context.Context) (*ProbeOutput, error) {
	if g == nil || g.completer == nil {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "llm client not configured")
	}
	ctx = einoobs.WithWorkflow(ctx, workflowProbe)
	tpl, err := g.prompts.ChatTemplate(workflowprompt.PromptLLMProbeV1)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to build prompt")
	}
	msgs, err := tpl.Format(ctx, map[string]any{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to build prompt")
	}

	out, err := g.completer.Complete(ctx, msgs, llm.CallOptions{
		Workflow:    workflowProbe,
		Model:       GenerationModel,
		Temperature: ProbeTemperature,
		MaxTokens:   ProbeMaxTokens,
	})
	if err != nil {
		logger.Error(ctx, "llm probe failed", err)
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "Failed to connect to Groq API").
			WithDetail(llm.ErrorMessage(err))
	}
	return &ProbeOutput{Result: out.Content, Raw: out.Raw}, nil
}

// mapCompletionError 空回复归为生成失败，其余透传上游状态码
func mapCompletionError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, llm.ErrNoChoices):
		return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "No response from LLM API")
	case errors.Is(err, llm.ErrEmptyContent):
		return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "Empty response from LLM API")
	}
	return apperrors.Wrap(err, apperrors.CodeLLMProviderError, llm.ErrorMessage(err)).
		WithStatus(llm.StatusCode(err))
}
