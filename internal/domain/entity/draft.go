package entity

import "strings"

// Tone 邮件语气，开放字符串；下列为前端提供的预置选项
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
)

// KnownTones 前端预置的语气选项
var KnownTones = []Tone{ToneProfessional, ToneFriendly, ToneFormal, ToneCasual}

// IsKnown 是否为预置语气（仅用于指标标签归一，不做校验）
func (t Tone) IsKnown() bool {
	for _, k := range KnownTones {
		if strings.EqualFold(string(t), string(k)) {
			return true
		}
	}
	return false
}

// MetricLabel 返回低基数的指标标签
func (t Tone) MetricLabel() string {
	if t.IsKnown() {
		return strings.ToLower(string(t))
	}
	return "custom"
}

// DraftCount 每次生成返回的草稿数量
const DraftCount = 3

// GenerationRequest 单次草稿生成请求，请求结束即丢弃
type GenerationRequest struct {
	Context string
	Tone    Tone
	// WordCount 目标字数，0 表示未指定
	WordCount int
}

// DraftSet 固定三份草稿，按模型回复中的出现顺序排列
type DraftSet [DraftCount]string

// Primary 返回第一份草稿
func (s DraftSet) Primary() string {
	return s[0]
}

// Slice 以切片形式返回草稿，便于 JSON 序列化
func (s DraftSet) Slice() []string {
	out := make([]string, DraftCount)
	copy(out, s[:])
	return out
}
