package config

import "regexp"

// WakeWordConfig 唤醒词配置，进程启动后只读
type WakeWordConfig struct {
	Primary      string   `yaml:"primary"`       // 主唤醒词
	Alternatives []string `yaml:"alternatives"`  // 备选唤醒词，按声明顺序匹配
	FuzzyPattern string   `yaml:"fuzzy_pattern"` // 模糊匹配正则
}

// setDefaults 设置唤醒词缺省配置
func (c *WakeWordConfig) setDefaults() {
	if c.Primary == "" {
		c.Primary = "hey roomi"
	}
	if len(c.Alternatives) == 0 {
		c.Alternatives = []string{"hey roomie", "hey rumi", "hey roomy", "hey room e"}
	}
	if c.FuzzyPattern == "" {
		c.FuzzyPattern = `\b(hey|hi|hello)\s+r\w*m\w*`
	}
}

// Validate 验证唤醒词配置
func (c *WakeWordConfig) Validate() error {
	if c.Primary == "" {
		return ErrEmptyPrimary
	}
	if _, err := regexp.Compile(c.FuzzyPattern); err != nil {
		return ErrBadFuzzyPattern
	}
	return nil
}
