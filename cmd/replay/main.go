// 离线回放工具：从抓包文件或原始PCM文件提取音频，
// 按近实时节奏推送到唤醒词服务并打印收到的事件。
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"ai_wake_server/internal/utils"

	"github.com/gorilla/websocket"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime)

	server := flag.String("server", "ws://127.0.0.1:2700/ws/wake", "唤醒词服务地址")
	pcapFile := flag.String("pcap", "", "抓包文件路径")
	pcmFile := flag.String("pcm", "", "原始PCM文件路径(16kHz 16bit 单声道)")
	chunkSize := flag.Int("chunk", 3200, "PCM文件分块大小(字节)")
	interval := flag.Duration("interval", 100*time.Millisecond, "发送间隔")
	flag.Parse()

	chunks, err := loadChunks(*pcapFile, *pcmFile, *chunkSize)
	if err != nil {
		log.Fatalf("加载音频失败: %v", err)
	}
	log.Printf("共加载 %d 块音频", len(chunks))

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.Dial(*server, nil)
	if err != nil {
		log.Fatalf("连接服务失败: %v", err)
	}
	defer conn.Close()

	// 接收事件并打印
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			log.Printf("收到事件: %s", string(message))
		}
	}()

	// 按节奏推送音频
	for i, chunk := range chunks {
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			log.Fatalf("发送音频失败: 第%d块 %v", i+1, err)
		}
		time.Sleep(*interval)
	}

	log.Println("回放完成")
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
	}
}

// loadChunks 从抓包文件或PCM文件加载音频块
func loadChunks(pcapFile, pcmFile string, chunkSize int) ([][]byte, error) {
	if pcapFile != "" {
		reader, err := utils.NewPCAPReader(pcapFile)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return reader.ReadAudioChunks()
	}

	data, err := os.ReadFile(pcmFile)
	if err != nil {
		return nil, err
	}

	var chunks [][]byte
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks, nil
}
