package audio

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

type fakeFrames struct {
	levels []float32
	i      int
}

func (f *fakeFrames) ReadFrame() ([]float32, error) {
	if f.i >= len(f.levels) {
		return nil, errors.New("eof")
	}
	frame := make([]float32, frameSize)
	for j := range frame {
		frame[j] = f.levels[f.i]
	}
	f.i++
	return frame, nil
}

func levels(parts ...any) []float32 {
	var out []float32
	for i := 0; i < len(parts); i += 2 {
		n := parts[i].(int)
		v := float32(parts[i+1].(float64))
		for j := 0; j < n; j++ {
			out = append(out, v)
		}
	}
	return out
}

func TestCapture_RecordsUntilSilence(t *testing.T) {
	// 50 calibration frames of noise, 10 quiet, 20 speech, 40 silence
	src := &fakeFrames{levels: levels(50, 0.001, 10, 0.001, 20, 0.5, 40, 0.0)}
	out, err := capture(context.Background(), src, time.Second, 10*time.Second, 15*time.Second)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	// speech frames plus trailing silence window (600ms = 30 frames)
	if got := len(out) / frameSize; got != 20+30 {
		t.Fatalf("recorded %d frames", got)
	}
}

func TestCapture_TimeoutWithoutSpeech(t *testing.T) {
	src := &fakeFrames{levels: levels(50, 0.001, 600, 0.001)}
	_, err := capture(context.Background(), src, time.Second, time.Second, 15*time.Second)
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestCapture_PhraseLimit(t *testing.T) {
	src := &fakeFrames{levels: levels(1000, 0.5)}
	out, err := capture(context.Background(), src, 0, time.Second, time.Second)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got := len(out) / frameSize; got != 50 {
		t.Fatalf("recorded %d frames, want 50", got)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 0.25, -1}
	path, err := WriteTempWAV(samples, SampleRate)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	got, rate, err := DecodeWAV(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rate != SampleRate || len(got) != len(samples) {
		t.Fatalf("rate=%d len=%d", rate, len(got))
	}
	for i := range samples {
		if d := got[i] - samples[i]; d > 0.001 || d < -0.001 {
			t.Fatalf("sample %d: got %v want %v", i, got[i], samples[i])
		}
	}
}
