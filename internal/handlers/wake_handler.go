// Package handlers 提供HTTP和WebSocket处理器
package handlers

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"ai_wake_server/internal/config"
	"ai_wake_server/internal/models"
	"ai_wake_server/internal/services"
	"ai_wake_server/internal/services/wakeword"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WakeHandler WebSocket唤醒词检测处理器。
// 每条连接对应一个独立会话，单条连接内消息按到达顺序串行处理，
// 连接之间互不影响。
type WakeHandler struct {
	config   *config.Config
	engine   models.ASREngine
	matcher  *wakeword.Matcher
	upgrader websocket.Upgrader

	mu           sync.Mutex
	sessions     map[*websocket.Conn]*services.Session
	lastActivity map[*websocket.Conn]time.Time

	counter uint64 // 会话ID计数
}

// NewWakeHandler 创建新的处理器实例
func NewWakeHandler(cfg *config.Config, engine models.ASREngine, matcher *wakeword.Matcher) *WakeHandler {
	if cfg == nil {
		cfg = config.GetConfig()
	}

	handler := &WakeHandler{
		config:  cfg,
		engine:  engine,
		matcher: matcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   cfg.WebSocket.ReadBufferSize,
			WriteBufferSize:  cfg.WebSocket.WriteBufferSize,
		},
		sessions:     make(map[*websocket.Conn]*services.Session),
		lastActivity: make(map[*websocket.Conn]time.Time),
	}

	// 启动心跳检查
	go handler.heartbeatChecker()

	return handler
}

// heartbeatChecker 定期检查连接活跃状态，超时的连接直接关闭，
// 读循环随之退出并完成会话清理
func (h *WakeHandler) heartbeatChecker() {
	ticker := time.NewTicker(h.config.WebSocket.PingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		now := time.Now()
		for conn, lastActivity := range h.lastActivity {
			if now.Sub(lastActivity) > h.config.WebSocket.PongWait {
				log.Printf("连接超时，关闭连接: %s", conn.RemoteAddr().String())
				conn.Close()
			}
		}
		h.mu.Unlock()
	}
}

// updateActivity 更新连接的最后活动时间
func (h *WakeHandler) updateActivity(conn *websocket.Conn) {
	h.mu.Lock()
	h.lastActivity[conn] = time.Now()
	h.mu.Unlock()
}

// SessionCount 返回当前活跃会话数
func (h *WakeHandler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// HandleWebSocket 处理WebSocket连接
func (h *WakeHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("升级WebSocket连接失败: %v", err)
		return
	}
	defer conn.Close()

	// 连接建立后立即应答
	if err := conn.WriteJSON(models.StatusMessage{Status: "connected"}); err != nil {
		log.Printf("发送连接应答失败: %v", err)
		return
	}

	// 生成会话ID
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = newSessionID(atomic.AddUint64(&h.counter, 1))
	}

	// 分配解码会话，失败属于会话级错误，告知客户端后断开
	session, err := services.NewSession(sessionID, h.engine, h.matcher)
	if err != nil {
		log.Printf("创建会话失败: session=%s err=%v", sessionID, err)
		conn.WriteJSON(models.StatusMessage{Status: "engine_unavailable"})
		return
	}

	// 注册会话
	h.mu.Lock()
	h.sessions[conn] = session
	h.lastActivity[conn] = time.Now()
	h.mu.Unlock()

	log.Printf("会话开始: session=%s remote=%s", sessionID, conn.RemoteAddr().String())

	// 连接结束时注销并释放解码器
	defer func() {
		h.mu.Lock()
		delete(h.sessions, conn)
		delete(h.lastActivity, conn)
		h.mu.Unlock()
		session.Close()
		log.Printf("会话结束: session=%s", sessionID)
	}()

	// 设置连接属性
	conn.SetReadLimit(1024 * 1024)
	conn.SetReadDeadline(time.Now().Add(h.config.WebSocket.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.config.WebSocket.PongWait))
		h.updateActivity(conn)
		return nil
	})

	// 读循环，单条连接内严格串行
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("读取WebSocket消息失败: session=%s err=%v", sessionID, err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(h.config.WebSocket.PongWait))
		h.updateActivity(conn)

		if err := h.handleMessage(conn, session, messageType, message); err != nil {
			log.Printf("处理消息失败: session=%s err=%v", sessionID, err)
			return
		}
	}
}

// handleMessage 按消息类型分发
func (h *WakeHandler) handleMessage(conn *websocket.Conn, session *services.Session, messageType int, message []byte) error {
	switch messageType {
	case websocket.BinaryMessage:
		// 二进制消息为一块原始PCM音频
		messages, err := session.HandleAudio(message)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}

	case websocket.TextMessage:
		// 文本消息为自由格式的控制消息，解析失败不中断会话
		session.HandleControl(message)
	}

	return nil
}
