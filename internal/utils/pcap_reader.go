// Package utils 提供辅助工具
package utils

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// RTP负载类型
const (
	payloadTypePCMU = 0 // G.711 µ-law
	payloadTypePCMA = 8 // G.711 A-law
)

// PCAPReader 用于从抓包文件中提取通话音频，供离线回放使用
type PCAPReader struct {
	filename string
	handle   *pcap.Handle
}

// NewPCAPReader 创建新的PCAP读取器
func NewPCAPReader(filename string) (*PCAPReader, error) {
	handle, err := pcap.OpenOffline(filename)
	if err != nil {
		return nil, fmt.Errorf("打开PCAP文件失败: %v", err)
	}

	return &PCAPReader{
		filename: filename,
		handle:   handle,
	}, nil
}

// Close 关闭PCAP读取器
func (r *PCAPReader) Close() {
	if r.handle != nil {
		r.handle.Close()
	}
}

// ReadAudioChunks 提取RTP负载并解码为16位小端PCM音频块。
// G.711为8kHz，这里按样本复制上采样到16kHz以匹配引擎。
func (r *PCAPReader) ReadAudioChunks() ([][]byte, error) {
	var chunks [][]byte

	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range packetSource.Packets() {
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}

		udp, ok := udpLayer.(*layers.UDP)
		if !ok || len(udp.Payload) == 0 {
			continue
		}

		pcm, ok := decodeRTP(udp.Payload)
		if !ok {
			continue
		}

		chunks = append(chunks, pcm)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("抓包文件中没有可用的RTP音频: %s", r.filename)
	}

	return chunks, nil
}

// decodeRTP 解析一个RTP包并解码G.711负载
func decodeRTP(data []byte) ([]byte, bool) {
	// RTP固定头12字节，版本必须为2
	if len(data) <= 12 || data[0]>>6 != 2 {
		return nil, false
	}

	payloadType := data[1] & 0x7F
	payload := data[12:]

	var decode func(byte) int16
	switch payloadType {
	case payloadTypePCMU:
		decode = mulawToPCM
	case payloadTypePCMA:
		decode = alawToPCM
	default:
		return nil, false
	}

	// 每个G.711样本复制一次，8kHz上采样到16kHz
	pcm := make([]byte, 0, len(payload)*4)
	var buf [2]byte
	for _, b := range payload {
		binary.LittleEndian.PutUint16(buf[:], uint16(decode(b)))
		pcm = append(pcm, buf[0], buf[1], buf[0], buf[1])
	}
	return pcm, true
}

// mulawToPCM 解码G.711 µ-law样本
func mulawToPCM(b byte) int16 {
	b = ^b
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := b & 0x0F

	sample := (int16(mantissa)<<3 + 0x84) << exponent
	sample -= 0x84
	if sign != 0 {
		return -sample
	}
	return sample
}

// alawToPCM 解码G.711 A-law样本
func alawToPCM(b byte) int16 {
	b ^= 0x55
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := int16(b & 0x0F)

	var sample int16
	if exponent == 0 {
		sample = mantissa<<4 + 8
	} else {
		sample = (mantissa<<4 + 0x108) << (exponent - 1)
	}
	if sign != 0 {
		return -sample
	}
	return sample
}
