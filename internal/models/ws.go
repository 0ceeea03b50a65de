package models

// StatusMessage 连接建立后的应答消息
type StatusMessage struct {
	Status string `json:"status"`
}

// TranscriptMessage 识别结果消息，中间结果和最终结果共用同一结构
type TranscriptMessage struct {
	Transcript string `json:"transcript"`
}

// WakeWordMessage 唤醒事件消息
type WakeWordMessage struct {
	WakeWordDetected bool `json:"wakeWordDetected"`
}
