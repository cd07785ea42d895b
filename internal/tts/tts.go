// Package tts speaks assistant replies aloud.
package tts

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"aiden/internal/voice"
)

const chunkPause = 300 * time.Millisecond

type Speaker interface {
	Speak(ctx context.Context, text string, p voice.Profile) error
}

// speakChunks splits text by the profile's chunk size and says each piece
// with a short pause in between.
func speakChunks(ctx context.Context, text string, p voice.Profile, say func(context.Context, string) error) error {
	chunks := voice.Chunk(text, p.ChunkSize)
	for i, c := range chunks {
		if err := say(ctx, c); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(chunkPause):
			}
		}
	}
	return nil
}

// Fallback tries the primary speaker and, on failure, the alternate exactly once.
type Fallback struct {
	primary   Speaker
	alternate Speaker
}

func NewFallback(primary, alternate Speaker) *Fallback {
	return &Fallback{primary: primary, alternate: alternate}
}

func (f *Fallback) Speak(ctx context.Context, text string, p voice.Profile) error {
	err := f.primary.Speak(ctx, text, p)
	if err == nil || f.alternate == nil {
		return err
	}
	log.WithError(err).Warn("⚠️ primary speech synthesis failed, trying alternate")
	if err2 := f.alternate.Speak(ctx, text, p); err2 != nil {
		return fmt.Errorf("speech synthesis failed: %v; alternate: %w", err, err2)
	}
	return nil
}

type NoOp struct{}

func (NoOp) Speak(context.Context, string, voice.Profile) error { return nil }
