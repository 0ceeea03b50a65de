package models

import "errors"

// ErrEngineUnavailable 识别引擎不可用（资源耗尽或连接失败），属于会话级可恢复错误
var ErrEngineUnavailable = errors.New("识别引擎不可用")

// ASREngine 语音识别引擎接口
type ASREngine interface {
	// Open 按指定采样率分配一个解码器，每个会话独占一个
	Open(sampleRate int) (Decoder, error)
}

// Decoder 单个会话的解码器句柄，调用必须严格串行
type Decoder interface {
	// Submit 提交一块16位小端PCM单声道音频，返回当前一段话是否已结束
	Submit(chunk []byte) (bool, error)

	// Transcript 获取当前识别结果；final为true时返回最终结果并重置内部状态，
	// 否则返回中间结果。无语音时返回空文本而不是错误。
	Transcript(final bool) (TranscriptEvent, error)

	// Close 释放引擎资源，可重复调用
	Close() error
}
