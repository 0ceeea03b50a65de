package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildRTPPacket 构造一个RTP包
func buildRTPPacket(payloadType byte, payload []byte) []byte {
	header := make([]byte, 12)
	header[0] = 0x80 // 版本2
	header[1] = payloadType
	return append(header, payload...)
}

func TestDecodeRTP(t *testing.T) {
	payload := []byte{0xFF, 0x7F, 0x00}
	pcm, ok := decodeRTP(buildRTPPacket(payloadTypePCMU, payload))
	assert.True(t, ok)
	// 每个G.711样本解码为2字节并复制一次上采样
	assert.Len(t, pcm, len(payload)*4)
}

func TestDecodeRTPRejectsNonRTP(t *testing.T) {
	// 头部过短
	_, ok := decodeRTP([]byte{0x80, 0x00})
	assert.False(t, ok)

	// 版本不是2
	_, ok = decodeRTP(buildRTPPacket(payloadTypePCMU, []byte{0xFF})[1:])
	assert.False(t, ok)

	// 不支持的负载类型
	_, ok = decodeRTP(buildRTPPacket(96, []byte{0xFF}))
	assert.False(t, ok)
}

func TestMulawToPCM(t *testing.T) {
	// 0xFF和0x7F都对应静音
	assert.Equal(t, int16(0), mulawToPCM(0xFF))
	assert.Equal(t, int16(0), mulawToPCM(0x7F))

	// 符号位区分正负，0x00和0x80为两端的最大幅值
	assert.True(t, mulawToPCM(0x00) < 0)
	assert.True(t, mulawToPCM(0x80) > 0)
}

func TestAlawToPCM(t *testing.T) {
	// 0xD5是A-law静音附近的编码
	assert.Equal(t, int16(-8), alawToPCM(0xD5))
	assert.Equal(t, int16(8), alawToPCM(0x55))
}

func TestNewPCAPReaderMissingFile(t *testing.T) {
	reader, err := NewPCAPReader("/nonexistent.pcap")
	assert.Error(t, err)
	assert.Nil(t, reader)
}
