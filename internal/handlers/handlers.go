package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// newSessionID 生成会话标识
func newSessionID(n uint64) string {
	return fmt.Sprintf("session-%d", n)
}

// RegisterHandlers 注册所有路由
func RegisterHandlers(r *gin.Engine, wakeHandler *WakeHandler) {
	// 根路由，存活探测
	r.GET("/", func(c *gin.Context) {
		c.String(200, "AI Wake Server Running")
	})

	// 健康检查路由
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "ok",
			"service":  "ai_wake_server",
			"sessions": wakeHandler.SessionCount(),
		})
	})

	// WebSocket唤醒词检测路由
	r.GET("/ws/wake", wakeHandler.HandleWebSocket)
}
