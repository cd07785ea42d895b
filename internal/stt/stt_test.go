package stt

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"aiden/internal/audio"
)

type fakeMic struct {
	samples []float32
	err     error
}

func (m fakeMic) Capture(context.Context, time.Duration, time.Duration, time.Duration) ([]float32, error) {
	return m.samples, m.err
}

type fakeAPI struct {
	resp     openai.AudioResponse
	err      error
	lastReq  openai.AudioRequest
	fileSeen bool
}

func (a *fakeAPI) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	a.lastReq = req
	_, statErr := os.Stat(req.FilePath)
	a.fileSeen = statErr == nil
	return a.resp, a.err
}

func TestWhisper_Transcribes(t *testing.T) {
	api := &fakeAPI{resp: openai.AudioResponse{Text: "  status do sistema "}}
	w := newWhisper(fakeMic{samples: make([]float32, 1600)}, api, "", "pt-BR", time.Second)

	tr, err := w.Listen(context.Background(), time.Second, time.Second)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if tr.Text != "status do sistema" || tr.Confidence != 1 {
		t.Fatalf("unexpected transcript %+v", tr)
	}
	if api.lastReq.Language != "pt" || api.lastReq.Model != openai.Whisper1 || !api.fileSeen {
		t.Fatalf("unexpected request %+v", api.lastReq)
	}
	if _, err := os.Stat(api.lastReq.FilePath); !os.IsNotExist(err) {
		t.Fatal("temporary wav should be removed")
	}
}

func TestWhisper_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		mic  fakeMic
		api  *fakeAPI
		want error
	}{
		{"timeout", fakeMic{err: audio.ErrNoSpeech}, &fakeAPI{}, ErrTimeout},
		{"device", fakeMic{err: errors.New("no device")}, &fakeAPI{}, ErrService},
		{"api", fakeMic{samples: []float32{0}}, &fakeAPI{err: errors.New("401")}, ErrService},
		{"empty", fakeMic{samples: []float32{0}}, &fakeAPI{}, ErrUnrecognized},
	}
	for _, c := range cases {
		_, err := newWhisper(c.mic, c.api, "whisper-1", "en", 0).Listen(context.Background(), time.Second, time.Second)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
	}
}

