// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM data, clips and sample conversion helpers
package audio

import "time"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// PCM holds decoded interleaved audio
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []int32 // int32 left-justified in 24-bit range
}

// Frames returns the number of sample frames
func (p *PCM) Frames() int {
	if p == nil || p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the playback length at the native sample rate
func (p *PCM) Duration() time.Duration {
	if p == nil || p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(p.Frames()) * time.Second / time.Duration(p.SampleRate)
}

// BufferID identifies a backend buffer. Zero means no buffer.
type BufferID uint32

// Clip is a loaded sound asset bound to a backend buffer
type Clip struct {
	Name     string
	Buffer   BufferID
	Duration time.Duration
	Channels int
}

// IsMono reports whether the clip has a single channel
func (c *Clip) IsMono() bool {
	return c.Channels == 1
}

// Supports3D reports whether the clip can be spatialized.
// Only mono sources can be positioned.
func (c *Clip) Supports3D() bool {
	return c.IsMono()
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// SampleToFloat converts int32 sample to the [-1, 1] range
func SampleToFloat(sample int32) float64 {
	return float64(sample) / float64(Max24Bit+1)
}

// SampleFromFloat converts a [-1, 1] sample to int32, clipping out-of-range input
func SampleFromFloat(sample float64) int32 {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	v := int64(sample * float64(Max24Bit+1))
	if v > Max24Bit {
		v = Max24Bit
	}
	return int32(v)
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	// Take lower 24 bits, pack little-endian
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	// Reconstruct 24-bit value and sign-extend to 32-bit
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF // Set upper 8 bits to 1 for negative values
	}
	return val
}
