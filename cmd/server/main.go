package main

import (
	"fmt"
	"log"

	"ai_wake_server/internal/clients/vosk"
	"ai_wake_server/internal/config"
	"ai_wake_server/internal/middleware"
	"ai_wake_server/internal/routes"
	"ai_wake_server/internal/services/wakeword"

	"github.com/gin-gonic/gin"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("唤醒词检测服务启动中...")

	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 探测识别引擎，模型未加载成功则进程退出
	engine := vosk.NewEngine(cfg.Engine)
	if err := engine.Ping(); err != nil {
		log.Fatalf("识别引擎不可用: %v", err)
	}

	// 创建唤醒词匹配器
	matcher, err := wakeword.New(cfg.WakeWord)
	if err != nil {
		log.Fatalf("创建唤醒词匹配器失败: %v", err)
	}

	// 创建HTTP服务器
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	middleware.Setup(r)
	routes.RegisterRoutes(r, cfg, engine, matcher)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("服务监听地址: %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("HTTP服务器错误: %v", err)
	}
}
