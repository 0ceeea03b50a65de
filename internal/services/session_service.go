// Package services 提供核心业务服务
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"ai_wake_server/internal/config"
	"ai_wake_server/internal/models"
	"ai_wake_server/internal/services/wakeword"
)

// Session 一条连接对应的解码会话。
// 独占一个解码器句柄，音频和控制消息按到达顺序串行处理。
// 状态只能单向推进，会话对象不可复用。
type Session struct {
	id      string
	decoder models.Decoder
	matcher *wakeword.Matcher

	mu    sync.Mutex
	state models.SessionState
}

// NewSession 创建新的会话实例并分配解码器。
// 分配失败返回models.ErrEngineUnavailable，调用方应告知客户端后直接断开。
func NewSession(id string, engine models.ASREngine, matcher *wakeword.Matcher) (*Session, error) {
	decoder, err := engine.Open(config.FixedSampleRate)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:      id,
		decoder: decoder,
		matcher: matcher,
		state:   models.StateActive,
	}, nil
}

// ID 返回会话标识
func (s *Session) ID() string {
	return s.id
}

// State 返回当前会话状态
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleAudio 处理一块音频，返回需要下发给客户端的消息（0到2条）。
// 返回错误表示解码链路出现故障，调用方应关闭会话。
func (s *Session) HandleAudio(chunk []byte) ([]interface{}, error) {
	if s.State() != models.StateActive {
		return nil, fmt.Errorf("会话已关闭: %s", s.id)
	}

	final, err := s.decoder.Submit(chunk)
	if err != nil {
		return nil, fmt.Errorf("提交音频失败: %v", err)
	}

	ev, err := s.decoder.Transcript(final)
	if err != nil {
		return nil, fmt.Errorf("获取识别结果失败: %v", err)
	}

	// 空文本不产生任何消息
	if ev.Text == "" {
		return nil, nil
	}

	messages := []interface{}{models.TranscriptMessage{Transcript: ev.Text}}

	if result := s.matcher.Match(ev.Text); result.Matched {
		log.Printf("检测到唤醒词: session=%s text=%q reason=%s", s.id, ev.Text, result.Reason)
		messages = append(messages, models.WakeWordMessage{WakeWordDetected: true})
	}

	return messages, nil
}

// HandleControl 处理控制消息。
// 当前未定义任何字段，合法JSON仅记录日志；格式错误同样只记录，不中断会话。
func (s *Session) HandleControl(raw []byte) {
	var msg map[string]interface{}
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("控制消息格式错误: session=%s err=%v", s.id, err)
		return
	}
	log.Printf("收到控制消息: session=%s fields=%d", s.id, len(msg))
}

// Close 关闭会话并释放解码器，可重复调用。
// 解码器关闭失败只记录日志，不向上传播。
func (s *Session) Close() {
	s.mu.Lock()
	if s.state != models.StateActive {
		s.mu.Unlock()
		return
	}
	s.state = models.StateClosing
	s.mu.Unlock()

	if err := s.decoder.Close(); err != nil {
		log.Printf("关闭解码器失败: session=%s err=%v", s.id, err)
	}

	s.mu.Lock()
	s.state = models.StateClosed
	s.mu.Unlock()
}
