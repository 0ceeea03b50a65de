package config

import "errors"

// 配置相关错误
var (
	ErrEmptyEngineURL  = errors.New("识别引擎地址不能为空")
	ErrBadSampleRate   = errors.New("采样率必须为16000")
	ErrEmptyPrimary    = errors.New("主唤醒词不能为空")
	ErrBadFuzzyPattern = errors.New("模糊匹配正则无效")
)
