// Package models 定义基本类型和服务接口
package models

// TranscriptEvent 一次解码产生的识别结果
type TranscriptEvent struct {
	Text  string // 归一化后的小写文本，可能为空
	Final bool   // true表示一段话已结束，false表示中间结果
}

// SessionState 会话状态
type SessionState int

// 会话状态常量，状态只能单向推进
const (
	StateActive SessionState = iota
	StateClosing
	StateClosed
)

// String 返回状态名称
func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// MatchResult 唤醒词匹配结果
type MatchResult struct {
	Matched bool   // 是否命中
	Reason  string // 命中层级，仅用于诊断日志
}
