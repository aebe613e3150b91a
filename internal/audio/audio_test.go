package audio

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePCM(t *testing.T) {
	pcm, err := DecodePCM(base64.StdEncoding.EncodeToString([]byte{0x01, 0x00, 0xff, 0xff}))
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -1}, Samples(pcm))

	_, err = DecodePCM(base64.StdEncoding.EncodeToString([]byte{0x01}))
	assert.ErrorIs(t, err, ErrOddLength)

	_, err = DecodePCM("%%%")
	assert.Error(t, err)
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 48000)
	wav := EncodeWAV(pcm, SampleRate, Channels)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.InDelta(t, 1.0, Duration(pcm, SampleRate, Channels), 0.0001)
}

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) PronunciationAudio(_ context.Context, _ string, _ models.Language) (string, error) {
	s.calls++
	return base64.StdEncoding.EncodeToString([]byte{0, 0, 1, 0}), s.err
}

func TestPronouncerCaches(t *testing.T) {
	src := &countingSource{}
	p := NewPronouncer(src)

	first, err := p.Pronounce(context.Background(), "Ephemeral", models.English)
	require.NoError(t, err)
	second, err := p.Pronounce(context.Background(), " ephemeral", models.English)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)

	p.Reset()
	_, err = p.Pronounce(context.Background(), "Ephemeral", models.English)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestPronouncerDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	p := NewPronouncer(src)

	_, err := p.Pronounce(context.Background(), "Ephemeral", models.English)
	assert.Error(t, err)
	_, err = p.Pronounce(context.Background(), "Ephemeral", models.English)
	assert.Error(t, err)
	assert.Equal(t, 2, src.calls)
}
