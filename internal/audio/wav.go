// Package audio turns generated pronunciations into playable WAV files.
package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// Format of generated speech
const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
)

// ErrOddLength is returned for PCM data that is not whole 16-bit samples
var ErrOddLength = errors.New("pcm data has an odd number of bytes")

// DecodePCM decodes base64 encoded little-endian 16-bit PCM
func DecodePCM(encoded string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	if len(pcm)%2 != 0 {
		return nil, ErrOddLength
	}
	return pcm, nil
}

// Samples converts little-endian PCM bytes to samples
func Samples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// EncodeWAV wraps raw PCM in a RIFF/WAVE container
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	blockAlign := channels * BitsPerSample / 8
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	writeUint32(&buf, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeUint32(&buf, 16)
	writeUint16(&buf, 1) // PCM
	writeUint16(&buf, uint16(channels))
	writeUint32(&buf, uint32(sampleRate))
	writeUint32(&buf, uint32(sampleRate*blockAlign))
	writeUint16(&buf, uint16(blockAlign))
	writeUint16(&buf, BitsPerSample)

	buf.WriteString("data")
	writeUint32(&buf, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// Duration returns the length of PCM audio in seconds
func Duration(pcm []byte, sampleRate, channels int) float64 {
	return float64(len(pcm)) / float64(sampleRate*channels*BitsPerSample/8)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
