package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ai_wake_server/internal/config"
	"ai_wake_server/internal/models"
	"ai_wake_server/internal/services/wakeword"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// fakeDecoder 按脚本返回识别结果的解码器
type fakeDecoder struct {
	mu         sync.Mutex
	events     []models.TranscriptEvent
	idx        int
	current    models.TranscriptEvent
	closeCount int
}

func (d *fakeDecoder) Submit(chunk []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idx < len(d.events) {
		d.current = d.events[d.idx]
		d.idx++
	} else {
		d.current = models.TranscriptEvent{}
	}
	return d.current.Final, nil
}

func (d *fakeDecoder) Transcript(final bool) (models.TranscriptEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ev := d.current
	ev.Final = final
	return ev, nil
}

func (d *fakeDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCount++
	return nil
}

func (d *fakeDecoder) closed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCount
}

type fakeEngine struct {
	decoder *fakeDecoder
	openErr error
}

func (e *fakeEngine) Open(sampleRate int) (models.Decoder, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return e.decoder, nil
}

func testServerConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 2700},
		WakeWord: config.WakeWordConfig{
			Primary:      "hey roomi",
			Alternatives: []string{"hey roomie", "hey rumi"},
			FuzzyPattern: `\b(hey|hi|hello)\s+r\w*m\w*`,
		},
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}

// newTestServer 搭建带唤醒词处理器的测试服务器
func newTestServer(t *testing.T, engine models.ASREngine) (*httptest.Server, *WakeHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testServerConfig()
	matcher, err := wakeword.New(cfg.WakeWord)
	assert.NoError(t, err)

	handler := NewWakeHandler(cfg, engine, matcher)
	r := gin.New()
	RegisterHandlers(r, handler)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, handler
}

// dialWS 连接测试服务器的WebSocket端点
func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/wake"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	return conn
}

// readJSON 读取一条JSON消息
func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, message, err := conn.ReadMessage()
	assert.NoError(t, err)

	var msg map[string]interface{}
	assert.NoError(t, json.Unmarshal(message, &msg))
	return msg
}

func TestWebSocketWakeWordFlow(t *testing.T) {
	decoder := &fakeDecoder{
		events: []models.TranscriptEvent{
			{Text: "hey roomie can you"},
			{Text: "turn off the lights"},
			{Text: "turn off the lights now", Final: true},
		},
	}
	server, _ := newTestServer(t, &fakeEngine{decoder: decoder})

	conn := dialWS(t, server)
	defer conn.Close()

	// 连接应答
	msg := readJSON(t, conn)
	assert.Equal(t, "connected", msg["status"])

	// 第一块音频：识别结果加唤醒事件
	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	msg = readJSON(t, conn)
	assert.Equal(t, "hey roomie can you", msg["transcript"])
	msg = readJSON(t, conn)
	assert.Equal(t, true, msg["wakeWordDetected"])

	// 格式错误的控制消息不影响后续音频
	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{broken`)))

	// 第二块音频：只有识别结果，没有唤醒事件
	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	msg = readJSON(t, conn)
	assert.Equal(t, "turn off the lights", msg["transcript"])

	// 第三块音频：最终结果，仍然只有识别结果
	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	msg = readJSON(t, conn)
	assert.Equal(t, "turn off the lights now", msg["transcript"])
}

func TestWebSocketDecoderReleasedOnDisconnect(t *testing.T) {
	decoder := &fakeDecoder{}
	server, handler := newTestServer(t, &fakeEngine{decoder: decoder})

	conn := dialWS(t, server)
	msg := readJSON(t, conn)
	assert.Equal(t, "connected", msg["status"])

	conn.Close()

	// 断开后解码器必须被释放，且只释放一次
	assert.Eventually(t, func() bool {
		return decoder.closed() == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, handler.SessionCount())
}

func TestWebSocketEngineUnavailable(t *testing.T) {
	server, handler := newTestServer(t, &fakeEngine{openErr: models.ErrEngineUnavailable})

	conn := dialWS(t, server)
	defer conn.Close()

	msg := readJSON(t, conn)
	assert.Equal(t, "connected", msg["status"])

	// 解码器分配失败，告知客户端后断开
	msg = readJSON(t, conn)
	assert.Equal(t, "engine_unavailable", msg["status"])

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, handler.SessionCount())
}

func TestWebSocketSessionsIndependent(t *testing.T) {
	// 两条连接各自独占解码器，一条断开不影响另一条
	d1 := &fakeDecoder{events: []models.TranscriptEvent{{Text: "hey rumi"}}}
	d2 := &fakeDecoder{events: []models.TranscriptEvent{{Text: "hey rumi"}}}

	var mu sync.Mutex
	decoders := []*fakeDecoder{d1, d2}
	engine := &switchEngine{decoders: decoders, mu: &mu}

	server, _ := newTestServer(t, engine)

	conn1 := dialWS(t, server)
	defer conn1.Close()
	assert.Equal(t, "connected", readJSON(t, conn1)["status"])

	conn2 := dialWS(t, server)
	defer conn2.Close()
	assert.Equal(t, "connected", readJSON(t, conn2)["status"])

	conn1.Close()
	assert.Eventually(t, func() bool {
		return d1.closed()+d2.closed() == 1
	}, 3*time.Second, 10*time.Millisecond)

	// 另一条连接仍可正常识别
	assert.NoError(t, conn2.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	msg := readJSON(t, conn2)
	assert.Equal(t, "hey rumi", msg["transcript"])
	msg = readJSON(t, conn2)
	assert.Equal(t, true, msg["wakeWordDetected"])
}

// switchEngine 每次Open返回下一个解码器
type switchEngine struct {
	decoders []*fakeDecoder
	idx      int
	mu       *sync.Mutex
}

func (e *switchEngine) Open(sampleRate int) (models.Decoder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.decoders[e.idx%len(e.decoders)]
	e.idx++
	return d, nil
}

func TestLivenessAndHealth(t *testing.T) {
	server, _ := newTestServer(t, &fakeEngine{decoder: &fakeDecoder{}})

	resp, err := http.Get(server.URL + "/")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(server.URL + "/health")
	assert.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	var health map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp2.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
}
