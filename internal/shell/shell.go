// Package shell runs the interactive console session, voice first with text fallback.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"aiden/internal/assistant"
	"aiden/internal/stt"
	"aiden/internal/tts"
	"aiden/internal/voice"
)

// maxVoiceFailures consecutive service errors switch the shell to text only.
const maxVoiceFailures = 3

type Options struct {
	In            io.Reader
	Out           io.Writer
	Listener      stt.Listener
	Speaker       tts.Speaker
	Voices        voice.Repository
	ListenTimeout time.Duration
	PhraseLimit   time.Duration
}

type Shell struct {
	a            *assistant.Assistant
	opts         Options
	lines        chan lineResult
	voiceOn      bool
	voiceFailure int
}

type lineResult struct {
	text string
	err  error
}

func New(a *assistant.Assistant, opts Options) *Shell {
	if opts.Speaker == nil {
		opts.Speaker = tts.NoOp{}
	}
	return &Shell{a: a, opts: opts, voiceOn: opts.Listener != nil}
}

// Run drives the session until it terminates and returns the process exit
// code: 0 on graceful shutdown, 1 when the loop crashed.
func (s *Shell) Run(ctx context.Context) (code int) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("❌ Critical error in main loop: %v", r)
			reply := s.a.EmergencyShutdown(r)
			fmt.Fprintf(s.opts.Out, "\n🤖 %s: %s\n", s.a.Persona().AssistantName, reply.Text)
			code = 1
		}
	}()

	s.startReader()
	s.say(ctx, s.a.Greet())

	for {
		input, err := s.readInput(ctx)
		if err != nil {
			// canceled or closed stdin both end the session gracefully
			if ctx.Err() != nil {
				fmt.Fprintf(s.opts.Out, "\nShutdown initiated by user interrupt, %s.\n", s.a.Persona().UserName)
			}
			input = "sair"
		}
		reply, err := s.a.Process(ctx, input)
		if errors.Is(err, assistant.ErrTerminated) {
			return 0
		}
		s.say(context.WithoutCancel(ctx), reply.Text)
		if reply.Terminal {
			return 0
		}
	}
}

func (s *Shell) say(ctx context.Context, text string) {
	fmt.Fprintf(s.opts.Out, "\n🤖 %s: %s\n", s.a.Persona().AssistantName, text)
	p := voice.DefaultProfile()
	if s.opts.Voices != nil {
		if cur, err := s.opts.Voices.Current(s.a.Persona().UserName); err == nil {
			p = cur
		}
	}
	if err := s.opts.Speaker.Speak(ctx, text, p); err != nil {
		log.WithError(err).Warn("⚠️ speech output failed")
	}
}

func (s *Shell) startReader() {
	if s.opts.In == nil {
		return
	}
	s.lines = make(chan lineResult)
	go func() {
		sc := bufio.NewScanner(s.opts.In)
		for sc.Scan() {
			s.lines <- lineResult{text: sc.Text()}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		s.lines <- lineResult{err: err}
		close(s.lines)
	}()
}

func (s *Shell) readInput(ctx context.Context) (string, error) {
	if s.voiceOn {
		text, err := s.listen(ctx)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return s.readLine(ctx)
}

func (s *Shell) listen(ctx context.Context) (string, error) {
	fmt.Fprintln(s.opts.Out, "\n🎤 Listening...")
	tr, err := s.opts.Listener.Listen(ctx, s.opts.ListenTimeout, s.opts.PhraseLimit)
	switch {
	case err == nil:
		s.voiceFailure = 0
		fmt.Fprintf(s.opts.Out, "👤 You (voice, %.0f%%): %s\n", tr.Confidence*100, tr.Text)
		return tr.Text, nil
	case errors.Is(err, stt.ErrTimeout):
		fmt.Fprintln(s.opts.Out, "⏱️ No speech detected, type your command instead.")
	case errors.Is(err, stt.ErrUnrecognized):
		fmt.Fprintln(s.opts.Out, "❓ I couldn't understand that, please type your command.")
	default:
		s.voiceFailure++
		log.WithError(err).Warn("⚠️ speech recognition failed")
		fmt.Fprintln(s.opts.Out, "⚠️ Voice input unavailable, please type your command.")
		if s.voiceFailure >= maxVoiceFailures {
			log.Warn("⚠️ too many speech failures, switching to text input")
			s.voiceOn = false
		}
	}
	return "", err
}

func (s *Shell) readLine(ctx context.Context) (string, error) {
	if s.lines == nil {
		return "", io.EOF
	}
	fmt.Fprint(s.opts.Out, "\n👤 You: ")
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(l.text), l.err
	}
}
