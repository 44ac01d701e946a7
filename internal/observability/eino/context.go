package eino

import "context"

type workflowKey struct{}

// WithWorkflow 标记当前调用所属的工作流，供回调打标签
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return context.WithValue(ctx, workflowKey{}, workflow)
}

// WorkflowFromContext 未标记时返回 unknown
func WorkflowFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(workflowKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
