package draft

import (
	"regexp"
	"strconv"
	"strings"

	"email-draft-ai-api/internal/domain/entity"
)

// markerPattern 匹配 "VERSION <n>:"，大小写不敏感，允许空白缺省（如 "version2:"）。
// 空白包含 Unicode 空格（如不换行空格），RE2 的 \s 只覆盖 ASCII
var markerPattern = regexp.MustCompile(`(?i)VERSION` + markerSpace + `(\d+)` + markerSpace + `:`)

const markerSpace = `[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]*`

// blankSeparator 无版本标记时的兜底分隔符
const blankSeparator = "\n\n\n"

// Strategy 记录回复被规整为三份草稿时走的路径
type Strategy string

const (
	// StrategyMarkers 恰好三段带标记的内容
	StrategyMarkers Strategy = "markers"
	// StrategyTruncated 多于三段，保留前三段
	StrategyTruncated Strategy = "truncated"
	// StrategyPadded 少于三段，用最后一段补齐
	StrategyPadded Strategy = "padded"
	// StrategyBlankSplit 无标记，按三连换行切分
	StrategyBlankSplit Strategy = "blank_split"
	// StrategyWholeReply 无标记且切分不足三段，整段回复重复三次
	StrategyWholeReply Strategy = "whole_reply"
)

// Marker 回复中一个版本标记的位置
type Marker struct {
	Start  int
	End    int
	Number int
}

// ParseResult 解析结果
type ParseResult struct {
	Drafts    entity.DraftSet
	Strategy  Strategy
	Fragments int
}

// FindMarkers 按出现顺序返回所有版本标记
func FindMarkers(raw string) []Marker {
	locs := markerPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}
	markers := make([]Marker, 0, len(locs))
	for _, loc := range locs {
		n, err := strconv.Atoi(raw[loc[2]:loc[3]])
		if err != nil {
			n = -1
		}
		markers = append(markers, Marker{Start: loc[0], End: loc[1], Number: n})
	}
	return markers
}

// SplitAtMarkers 在标记边界处切分文本，返回去空白后的非空片段。
// 第一个标记之前的文本同样算作一个片段。
func SplitAtMarkers(raw string, markers []Marker) []string {
	fragments := make([]string, 0, len(markers)+1)
	prev := 0
	for _, m := range markers {
		fragments = appendFragment(fragments, raw[prev:m.Start])
		prev = m.End
	}
	return appendFragment(fragments, raw[prev:])
}

func appendFragment(fragments []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fragments
	}
	return append(fragments, s)
}

// Reconcile 将任意数量的片段规整为恰好三份草稿。
// 不足三段时重复最后一段；片段为空时返回三个空串。
func Reconcile(fragments []string) (entity.DraftSet, Strategy) {
	var out entity.DraftSet
	switch {
	case len(fragments) > entity.DraftCount:
		copy(out[:], fragments[:entity.DraftCount])
		return out, StrategyTruncated
	case len(fragments) == entity.DraftCount:
		copy(out[:], fragments)
		return out, StrategyMarkers
	}

	last := ""
	if len(fragments) > 0 {
		last = fragments[len(fragments)-1]
	}
	n := copy(out[:], fragments)
	for i := n; i < entity.DraftCount; i++ {
		out[i] = last
	}
	return out, StrategyPadded
}

// StripMarkers 去除草稿内残留的版本标记并去首尾空白
func StripMarkers(s string) string {
	return strings.TrimSpace(markerPattern.ReplaceAllString(s, ""))
}

// ParseDrafts 将模型原始回复解析为三份草稿
func ParseDrafts(raw string) entity.DraftSet {
	return ParseDraftsDetailed(raw).Drafts
}

// ParseDraftsDetailed 同 ParseDrafts，并返回规整路径
func ParseDraftsDetailed(raw string) ParseResult {
	var res ParseResult

	if markers := FindMarkers(raw); len(markers) > 0 {
		fragments := SplitAtMarkers(raw, markers)
		res.Fragments = len(fragments)
		res.Drafts, res.Strategy = Reconcile(fragments)
	} else {
		parts := strings.Split(raw, blankSeparator)
		res.Fragments = len(parts)
		if len(parts) >= entity.DraftCount {
			copy(res.Drafts[:], parts[:entity.DraftCount])
			res.Strategy = StrategyBlankSplit
		} else {
			res.Drafts = entity.DraftSet{raw, raw, raw}
			res.Strategy = StrategyWholeReply
		}
	}

	for i := range res.Drafts {
		res.Drafts[i] = StripMarkers(res.Drafts[i])
	}
	return res
}
