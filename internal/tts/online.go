package tts

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"aiden/internal/voice"
)

// Online fetches mp3 speech from a translate_tts style endpoint and plays it.
type Online struct {
	baseURL string
	client  *http.Client
	play    func(ctx context.Context, r io.ReadCloser, volume float64) error
}

func NewOnline(baseURL string, client *http.Client) *Online {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Online{baseURL: baseURL, client: client, play: playMP3}
}

func (o *Online) Speak(ctx context.Context, text string, p voice.Profile) error {
	if o.baseURL == "" {
		return fmt.Errorf("online tts: no endpoint configured")
	}
	lang := strings.ToLower(p.Language)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return speakChunks(ctx, text, p, func(ctx context.Context, chunk string) error {
		body, err := o.fetch(ctx, chunk, lang)
		if err != nil {
			return err
		}
		return o.play(ctx, body, p.Volume)
	})
}

func (o *Online) fetch(ctx context.Context, text, lang string) (io.ReadCloser, error) {
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("online tts: bad url: %w", err)
	}
	q := u.Query()
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("online tts: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("online tts: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func playMP3(ctx context.Context, r io.ReadCloser, volume float64) error {
	streamer, format, err := mp3.Decode(r)
	if err != nil {
		r.Close()
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	speakerOnce.Do(func() {
		speakerRate = format.SampleRate
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("init speaker: %w", speakerErr)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != speakerRate {
		s = beep.Resample(4, format.SampleRate, speakerRate, s)
	}
	if volume > 0 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume)}
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() { close(done) })))
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
