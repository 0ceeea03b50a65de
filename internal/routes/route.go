// Package routes 提供路由注册
package routes

import (
	"ai_wake_server/internal/config"
	"ai_wake_server/internal/handlers"
	"ai_wake_server/internal/models"
	"ai_wake_server/internal/services/wakeword"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, cfg *config.Config, engine models.ASREngine, matcher *wakeword.Matcher) *handlers.WakeHandler {
	wakeHandler := handlers.NewWakeHandler(cfg, engine, matcher)
	handlers.RegisterHandlers(r, wakeHandler)
	return wakeHandler
}
