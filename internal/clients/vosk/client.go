// Package vosk 提供vosk-server兼容识别引擎的WebSocket客户端
package vosk

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"ai_wake_server/internal/config"
	"ai_wake_server/internal/models"

	"github.com/gorilla/websocket"
)

// Engine 识别引擎工厂，每次Open建立一条独立的引擎连接
type Engine struct {
	config config.EngineConfig
}

// NewEngine 创建新的引擎实例
func NewEngine(cfg config.EngineConfig) *Engine {
	return &Engine{config: cfg}
}

// Ping 探测引擎可用性，启动时调用。
// 引擎连不上说明模型没有加载成功，进程不应继续提供服务。
func (e *Engine) Ping() error {
	conn, err := e.dial()
	if err != nil {
		return fmt.Errorf("引擎探测失败: %v", err)
	}
	return conn.Close()
}

// Open 按指定采样率分配一个解码器
func (e *Engine) Open(sampleRate int) (models.Decoder, error) {
	conn, err := e.dial()
	if err != nil {
		log.Printf("分配解码器失败: %v", err)
		return nil, fmt.Errorf("%w: %v", models.ErrEngineUnavailable, err)
	}

	// 首帧声明采样率
	var frame configFrame
	frame.Config.SampleRate = sampleRate
	if err := conn.WriteJSON(frame); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", models.ErrEngineUnavailable, err)
	}

	return &Decoder{conn: conn}, nil
}

// dial 建立引擎连接
func (e *Engine) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: e.config.ConnectTimeout,
	}
	conn, _, err := dialer.Dial(e.config.ServerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("连接识别引擎失败: %v", err)
	}
	return conn, nil
}

// Decoder 单个会话的解码器句柄。
// 持有引擎内部的语句状态，方法调用必须串行。
type Decoder struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	last   models.TranscriptEvent // 最近一次识别结果
}

// Submit 提交一块音频，返回当前一段话是否已结束
func (d *Decoder) Submit(chunk []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, fmt.Errorf("解码器已关闭")
	}

	if err := d.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return false, fmt.Errorf("发送音频失败: %v", err)
	}

	_, message, err := d.conn.ReadMessage()
	if err != nil {
		return false, fmt.Errorf("读取识别结果失败: %v", err)
	}

	var frame resultFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return false, fmt.Errorf("解析识别结果失败: %v", err)
	}

	// text字段出现表示引擎检测到端点，一段话结束
	if frame.Text != nil {
		d.last = models.TranscriptEvent{Text: strings.ToLower(*frame.Text), Final: true}
		return true, nil
	}
	if frame.Partial != nil {
		d.last = models.TranscriptEvent{Text: strings.ToLower(*frame.Partial), Final: false}
	} else {
		// 无语音内容的应答，返回空文本而不是错误
		d.last = models.TranscriptEvent{}
	}
	return false, nil
}

// Transcript 获取当前识别结果。
// final为true时返回最终结果并清空缓存，引擎在端点处已自行重置语句状态。
func (d *Decoder) Transcript(final bool) (models.TranscriptEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ev := d.last
	ev.Final = final
	if final {
		d.last = models.TranscriptEvent{}
	}
	return ev, nil
}

// Close 释放引擎资源，可重复调用
func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	// 尽力通知引擎结束会话，失败不影响关闭
	if err := d.conn.WriteJSON(eofFrame{EOF: 1}); err != nil {
		log.Printf("发送结束帧失败: %v", err)
	}
	return d.conn.Close()
}
