// Package stt turns microphone input into text.
package stt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"aiden/internal/audio"
)

var (
	ErrTimeout      = errors.New("listen timeout")
	ErrUnrecognized = errors.New("speech not recognized")
	ErrService      = errors.New("speech service error")
)

type Transcript struct {
	Text       string
	Confidence float64
}

type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (Transcript, error)
}

type capturer interface {
	Capture(ctx context.Context, calibration, timeout, phraseLimit time.Duration) ([]float32, error)
}

type transcriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Whisper records an utterance and sends it to an OpenAI-compatible
// transcription endpoint.
type Whisper struct {
	mic         capturer
	api         transcriber
	model       string
	language    string
	calibration time.Duration
}

func NewWhisper(mic *audio.Recorder, apiKey, baseURL, model, language string, calibration time.Duration) *Whisper {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return newWhisper(mic, openai.NewClientWithConfig(cfg), model, language, calibration)
}

func newWhisper(mic capturer, api transcriber, model, language string, calibration time.Duration) *Whisper {
	if model == "" {
		model = openai.Whisper1
	}
	lang := strings.ToLower(language)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return &Whisper{mic: mic, api: api, model: model, language: lang, calibration: calibration}
}

func (w *Whisper) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (Transcript, error) {
	samples, err := w.mic.Capture(ctx, w.calibration, timeout, phraseLimit)
	if errors.Is(err, audio.ErrNoSpeech) {
		return Transcript{}, ErrTimeout
	}
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: capture: %v", ErrService, err)
	}
	path, err := audio.WriteTempWAV(samples, audio.SampleRate)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer os.Remove(path)

	resp, err := w.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Language: w.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Transcript{}, ErrUnrecognized
	}
	return Transcript{Text: text, Confidence: confidence(resp)}, nil
}

// confidence is the exponent of the mean segment log-probability.
func confidence(resp openai.AudioResponse) float64 {
	if len(resp.Segments) == 0 {
		return 1
	}
	var sum float64
	for _, s := range resp.Segments {
		sum += s.AvgLogprob
	}
	return math.Exp(sum / float64(len(resp.Segments)))
}

