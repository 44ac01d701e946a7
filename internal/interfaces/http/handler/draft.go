package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"email-draft-ai-api/internal/application/draft"
	"email-draft-ai-api/internal/domain/entity"
	"email-draft-ai-api/internal/interfaces/http/dto"
	apperrors "email-draft-ai-api/pkg/errors"
)

// DraftService 草稿生成用例
type DraftService interface {
	Generate(ctx context.Context, req *entity.GenerationRequest) (*draft.GenerateOutput, error)
	Probe(ctx context.Context) (*draft.ProbeOutput, error)
}

// DraftHandler 邮件草稿处理器
type DraftHandler struct {
	service DraftService
}

// NewDraftHandler 创建邮件草稿处理器
func NewDraftHandler(service DraftService) *DraftHandler {
	return &DraftHandler{service: service}
}

// GenerateEmail 生成三份邮件草稿
// @Summary 生成邮件草稿
// @Tags Drafts
// @Accept json
// @Produce json
// @Param body body dto.GenerateEmailRequest true "生成参数"
// @Success 200 {object} dto.GenerateEmailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/generate-email [post]
func (h *DraftHandler) GenerateEmail(c *gin.Context) {
	var req dto.GenerateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FromError(c, apperrors.Wrap(err, apperrors.CodeInvalidParam, "Invalid request body").WithDetail(err.Error()))
		return
	}

	out, err := h.service.Generate(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.NewGenerateEmailResponse(out.Drafts))
}

// TestLLM 向模型发送固定问候，检查凭据与连通性
// @Summary 模型连通性探测
// @Tags Drafts
// @Produce json
// @Success 200 {object} dto.ProbeResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/test-llm [post]
func (h *DraftHandler) TestLLM(c *gin.Context) {
	out, err := h.service.Probe(c.Request.Context())
	if err != nil {
		// 探测失败一律 500，不透传上游状态码
		dto.FromError(c, apperrors.AsAppError(err).WithStatus(http.StatusInternalServerError))
		return
	}
	dto.Success(c, dto.NewProbeResponse(out.Result, out.Raw))
}
