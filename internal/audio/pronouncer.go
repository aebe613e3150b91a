package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/example/verbadiem/pkg/models"
)

// Source produces base64 encoded PCM for a word
type Source interface {
	PronunciationAudio(ctx context.Context, word string, target models.Language) (string, error)
}

// Pronouncer fetches pronunciations and caches them by word for the
// lifetime of the session
type Pronouncer struct {
	source Source

	mu    sync.Mutex
	cache map[string][]byte
}

// NewPronouncer creates a pronouncer with an empty cache
func NewPronouncer(source Source) *Pronouncer {
	return &Pronouncer{
		source: source,
		cache:  make(map[string][]byte),
	}
}

// Pronounce returns a WAV file with the pronunciation of word
func (p *Pronouncer) Pronounce(ctx context.Context, word string, target models.Language) ([]byte, error) {
	key := string(target) + ":" + strings.ToLower(strings.TrimSpace(word))

	p.mu.Lock()
	cached, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	encoded, err := p.source.PronunciationAudio(ctx, word, target)
	if err != nil {
		return nil, err
	}
	pcm, err := DecodePCM(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pronunciation of %q: %w", word, err)
	}
	wav := EncodeWAV(pcm, SampleRate, Channels)

	p.mu.Lock()
	p.cache[key] = wav
	p.mu.Unlock()
	return wav, nil
}

// Reset drops every cached pronunciation
func (p *Pronouncer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string][]byte)
}
