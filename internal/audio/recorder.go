// Package audio captures microphone input with portaudio and encodes it as WAV.
package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 16000
	frameSize  = 320 // 20ms

	minThreshold    = 0.015
	silenceDuration = 600 * time.Millisecond
)

// ErrNoSpeech means nothing louder than the ambient level arrived before the timeout.
var ErrNoSpeech = errors.New("no speech detected")

type frameReader interface {
	ReadFrame() ([]float32, error)
}

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Capture calibrates against ambient noise, waits up to timeout for speech
// and records until trailing silence or phraseLimit.
func (r *Recorder) Capture(ctx context.Context, calibration, timeout, phraseLimit time.Duration) ([]float32, error) {
	buf := make([]float32, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	return capture(ctx, &streamReader{stream: stream, buf: buf}, calibration, timeout, phraseLimit)
}

type streamReader struct {
	stream *portaudio.Stream
	buf    []float32
}

func (s *streamReader) ReadFrame() ([]float32, error) {
	if err := s.stream.Read(); err != nil {
		return nil, err
	}
	return s.buf, nil
}

func capture(ctx context.Context, src frameReader, calibration, timeout, phraseLimit time.Duration) ([]float32, error) {
	const frameDur = time.Second * frameSize / SampleRate

	frames := func(d time.Duration) int { return int(d / frameDur) }

	var ambient float64
	calFrames := frames(calibration)
	for i := 0; i < calFrames; i++ {
		f, err := src.ReadFrame()
		if err != nil {
			return nil, err
		}
		ambient += frameRMS(f)
	}
	threshold := minThreshold
	if calFrames > 0 {
		threshold = math.Max(minThreshold, 1.5*ambient/float64(calFrames))
	}

	waitFrames := frames(timeout)
	maxFrames := frames(phraseLimit)
	silenceFrames := frames(silenceDuration)

	out := make([]float32, 0, SampleRate*3)
	speaking := false
	silent := 0
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := src.ReadFrame()
		if err != nil {
			return nil, err
		}
		loud := frameRMS(f) > threshold
		if !speaking {
			if !loud {
				if i >= waitFrames {
					return nil, ErrNoSpeech
				}
				continue
			}
			speaking = true
		}
		out = append(out, f...)
		if loud {
			silent = 0
		} else if silent++; silent >= silenceFrames {
			break
		}
		if len(out)/frameSize >= maxFrames {
			break
		}
	}
	return out, nil
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
