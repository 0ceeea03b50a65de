package vosk

// configFrame 会话首帧，向引擎声明采样率
type configFrame struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
	} `json:"config"`
}

// resultFrame 引擎返回的识别帧。
// 中间结果携带partial字段，一段话结束时携带text字段。
type resultFrame struct {
	Text    *string `json:"text"`
	Partial *string `json:"partial"`
}

// eofFrame 结束帧，通知引擎释放会话资源
type eofFrame struct {
	EOF int `json:"eof"`
}
