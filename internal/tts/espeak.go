package tts

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"aiden/internal/voice"
)

// Espeak drives the espeak-ng binary offline.
type Espeak struct {
	path string
	run  func(ctx context.Context, name string, args ...string) error
}

func NewEspeak(path string) *Espeak {
	if path == "" {
		path = "espeak-ng"
	}
	return &Espeak{path: path, run: runCommand}
}

// Available reports whether the binary can be found.
func (e *Espeak) Available() bool {
	_, err := exec.LookPath(e.path)
	return err == nil
}

func (e *Espeak) Speak(ctx context.Context, text string, p voice.Profile) error {
	args := espeakArgs(p)
	return speakChunks(ctx, text, p, func(ctx context.Context, chunk string) error {
		return e.run(ctx, e.path, append(args, chunk)...)
	})
}

// espeakArgs maps volume 0..1 onto amplitude 0..200 and pitch 0..1.2 onto 0..60.
func espeakArgs(p voice.Profile) []string {
	lang := strings.ToLower(p.Language)
	if lang == "" {
		lang = voice.DefaultLanguage
	}
	return []string{
		"-v", lang,
		"-s", strconv.Itoa(p.Rate),
		"-a", strconv.Itoa(int(math.Round(p.Volume * 200))),
		"-p", strconv.Itoa(int(math.Round(p.Pitch * 50))),
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
