package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"email-draft-ai-api/pkg/metrics"
)

// startTimeKey 在 Context 中存储渲染开始时间
type startTimeKey struct{}

// newPromptCallbackHandler 提示词模板渲染回调：计数、耗时与追踪
func newPromptCallbackHandler() *cbtemplate.PromptCallbackHandler {
	return &cbtemplate.PromptCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *prompt.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			attrs := []attribute.KeyValue{
				attribute.String("eino.workflow", WorkflowFromContext(ctx)),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}
			if input != nil {
				attrs = append(attrs, attribute.Int("prompt.variables", len(input.Variables)))
			}

			ctx, _ = otel.Tracer("eino").Start(ctx, "prompt.format", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			workflow := WorkflowFromContext(ctx)
			metrics.PromptRenderTotal.WithLabelValues(workflow, "success").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.PromptRenderDuration.WithLabelValues(workflow).Observe(d)
			}

			span := trace.SpanFromContext(ctx)
			if output != nil {
				span.SetAttributes(attribute.Int("prompt.messages", len(output.Result)))
			}
			span.End()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			workflow := WorkflowFromContext(ctx)
			metrics.PromptRenderTotal.WithLabelValues(workflow, "error").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.PromptRenderDuration.WithLabelValues(workflow).Observe(d)
			}

			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return ctx
		},
	}
}

// elapsedSeconds 计算 OnStart 以来的耗时，取不到开始时间时返回 0
func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}
