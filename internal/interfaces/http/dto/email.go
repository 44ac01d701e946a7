package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"email-draft-ai-api/internal/domain/entity"
)

// GenerateEmailRequest 生成邮件草稿请求
type GenerateEmailRequest struct {
	Context   string       `json:"context"`
	Tone      string       `json:"tone"`
	WordCount LenientCount `json:"wordCount,omitempty"`
	// NumVariations 仅为兼容旧客户端保留，任意取值均被忽略，始终生成三份
	NumVariations json.RawMessage `json:"numVariations,omitempty"`
}

// ToEntity 转换为领域请求，文本统一为 NFC（OCR 与语音输入常带组合字符）
func (r *GenerateEmailRequest) ToEntity() *entity.GenerationRequest {
	return &entity.GenerationRequest{
		Context:   norm.NFC.String(r.Context),
		Tone:      entity.Tone(norm.NFC.String(r.Tone)),
		WordCount: int(r.WordCount),
	}
}

// GenerateEmailResponse 生成结果；email 为第一份草稿，供旧客户端使用
type GenerateEmailResponse struct {
	Emails []string `json:"emails"`
	Email  string   `json:"email"`
}

// NewGenerateEmailResponse 由草稿集合构造响应
func NewGenerateEmailResponse(drafts entity.DraftSet) *GenerateEmailResponse {
	return &GenerateEmailResponse{
		Emails: drafts.Slice(),
		Email:  drafts.Primary(),
	}
}

// ProbeResponse 连通性探测响应
type ProbeResponse struct {
	Result string `json:"result"`
}

// NewProbeResponse 拼接模型回复与格式化后的原始响应
func NewProbeResponse(content, raw string) *ProbeResponse {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(raw), "", "  "); err == nil {
		raw = pretty.String()
	}
	return &ProbeResponse{
		Result: "API Key Test Result:\n\n" + content + "\n\nAPI Response:\n" + raw,
	}
}

// LenientCount 接受 JSON 数字或数字字符串；无法解析或非正数时视为未提供，
// 超出 int32 的值截为 math.MaxInt32，交由字数上限校验拒绝
type LenientCount int

// UnmarshalJSON 实现 json.Unmarshaler，从不返回解析错误
func (n *LenientCount) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) || f < 1 {
		return nil
	}
	*n = LenientCount(math.Min(f, math.MaxInt32))
	return nil
}
