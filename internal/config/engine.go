package config

import "time"

// 识别引擎固定采样率，解码端按16kHz单声道PCM处理
const FixedSampleRate = 16000

// EngineConfig 语音识别引擎配置
type EngineConfig struct {
	ServerURL      string        `yaml:"server_url"`      // 引擎WebSocket地址
	SampleRate     int           `yaml:"sample_rate"`     // 采样率
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // 连接超时时间
}

// setDefaults 设置引擎缺省配置
func (c *EngineConfig) setDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = "ws://127.0.0.1:2800"
	}
	if c.SampleRate == 0 {
		c.SampleRate = FixedSampleRate
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
}

// Validate 验证引擎配置
func (c *EngineConfig) Validate() error {
	if c.ServerURL == "" {
		return ErrEmptyEngineURL
	}
	if c.SampleRate != FixedSampleRate {
		return ErrBadSampleRate
	}
	return nil
}
