// Package wakeword 提供唤醒词匹配功能
package wakeword

import (
	"fmt"
	"regexp"
	"strings"

	"ai_wake_server/internal/config"
	"ai_wake_server/internal/models"
)

// 匹配层级标识，仅用于诊断日志
const (
	ReasonExact       = "exact"
	ReasonAlternative = "alternative"
	ReasonFuzzy       = "fuzzy"
)

// Matcher 唤醒词匹配器。无内部可变状态，可被多个会话并发调用。
type Matcher struct {
	primary      string
	alternatives []string
	fuzzy        *regexp.Regexp
}

// New 创建新的匹配器实例，预编译模糊匹配正则
func New(cfg config.WakeWordConfig) (*Matcher, error) {
	fuzzy, err := regexp.Compile("(?i)" + cfg.FuzzyPattern)
	if err != nil {
		return nil, fmt.Errorf("编译模糊匹配正则失败: %v", err)
	}

	return &Matcher{
		primary:      strings.ToLower(cfg.Primary),
		alternatives: cfg.Alternatives,
		fuzzy:        fuzzy,
	}, nil
}

// Match 判断文本中是否出现唤醒词。
// 按精确、备选、模糊三层依次匹配，命中即返回，范围逐层放宽。
func (m *Matcher) Match(text string) models.MatchResult {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return models.MatchResult{}
	}

	// 第一层：主唤醒词精确包含
	if strings.Contains(text, m.primary) {
		return models.MatchResult{Matched: true, Reason: ReasonExact}
	}

	// 第二层：备选唤醒词，按声明顺序
	for _, alt := range m.alternatives {
		if strings.Contains(text, strings.ToLower(alt)) {
			return models.MatchResult{Matched: true, Reason: ReasonAlternative + ":" + alt}
		}
	}

	// 第三层：模糊匹配，覆盖引擎对目标名称的近音误识别
	if m.fuzzy.MatchString(text) {
		return models.MatchResult{Matched: true, Reason: ReasonFuzzy}
	}

	return models.MatchResult{}
}
