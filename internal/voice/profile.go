// Package voice keeps per-user speech settings and adapts them to spoken feedback.
package voice

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultRate      = 220
	DefaultVolume    = 0.9
	DefaultPitch     = 0.8
	DefaultLanguage  = "pt-br"
	DefaultChunkSize = 200

	RateStep  = 20
	MinRate   = 120
	MaxRate   = 280
	LevelStep = 0.1
	MinVolume = 0.1
	MaxVolume = 1.0
	MinPitch  = 0.4
	MaxPitch  = 1.2
)

type Profile struct {
	Rate        int       `json:"rate"`
	Volume      float64   `json:"volume"`
	Pitch       float64   `json:"pitch"`
	Language    string    `json:"language"`
	ChunkSize   int       `json:"chunk_size"`
	LastAdapted time.Time `json:"last_adapted"`
}

func DefaultProfile() Profile {
	return Profile{
		Rate:      DefaultRate,
		Volume:    DefaultVolume,
		Pitch:     DefaultPitch,
		Language:  DefaultLanguage,
		ChunkSize: DefaultChunkSize,
	}
}

type adjustment int

const (
	slower adjustment = iota
	faster
	louder
	quieter
	deeper
	higher
)

// cues are matched as substrings of the lower-cased feedback.
var cues = []struct {
	adj     adjustment
	phrases []string
}{
	{slower, []string{"devagar", "mais lento", "mais lenta", "slower", "slow down"}},
	{faster, []string{"mais rápido", "mais rapido", "mais rápida", "acelera", "faster", "speed up"}},
	{louder, []string{"mais alto", "aumentar volume", "aumente o volume", "aumentar o volume", "louder", "volume up"}},
	{quieter, []string{"mais baixo", "diminuir volume", "diminua o volume", "diminuir o volume", "quieter", "softer", "volume down"}},
	{deeper, []string{"mais grave", "grave", "deeper", "lower pitch"}},
	{higher, []string{"mais agudo", "agudo", "higher pitch"}},
}

// Adapt applies every cue found in feedback and returns the new profile with
// a description of what changed. Values are clamped to their ranges.
func Adapt(p Profile, feedback string, now time.Time) (Profile, []string) {
	lower := strings.ToLower(feedback)
	var changes []string
	for _, c := range cues {
		if !containsAny(lower, c.phrases) {
			continue
		}
		switch c.adj {
		case slower:
			p.Rate = clampInt(p.Rate-RateStep, MinRate, MaxRate)
			changes = append(changes, fmt.Sprintf("velocidade=%d", p.Rate))
		case faster:
			p.Rate = clampInt(p.Rate+RateStep, MinRate, MaxRate)
			changes = append(changes, fmt.Sprintf("velocidade=%d", p.Rate))
		case louder:
			p.Volume = clampLevel(p.Volume+LevelStep, MinVolume, MaxVolume)
			changes = append(changes, fmt.Sprintf("volume=%.1f", p.Volume))
		case quieter:
			p.Volume = clampLevel(p.Volume-LevelStep, MinVolume, MaxVolume)
			changes = append(changes, fmt.Sprintf("volume=%.1f", p.Volume))
		case deeper:
			p.Pitch = clampLevel(p.Pitch-LevelStep, MinPitch, MaxPitch)
			changes = append(changes, fmt.Sprintf("tom=%.1f", p.Pitch))
		case higher:
			p.Pitch = clampLevel(p.Pitch+LevelStep, MinPitch, MaxPitch)
			changes = append(changes, fmt.Sprintf("tom=%.1f", p.Pitch))
		}
	}
	if len(changes) > 0 {
		p.LastAdapted = now
	}
	return p, changes
}

func containsAny(s string, phrases []string) bool {
	for _, ph := range phrases {
		if strings.Contains(s, ph) {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// clampLevel also rounds to one decimal so repeated steps do not drift.
func clampLevel(v, lo, hi float64) float64 {
	v = math.Round(v*10) / 10
	return math.Max(lo, math.Min(hi, v))
}
