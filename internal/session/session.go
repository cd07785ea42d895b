// Package session keeps the ordered record of one assistant session and
// writes it to disk when the session ends.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"aiden/internal/storage"
)

type Interaction struct {
	Timestamp         time.Time `json:"timestamp"`
	UserInput         string    `json:"user_input"`
	AssistantResponse string    `json:"assistant_response"`
	Category          string    `json:"category,omitempty"`
}

type Summary struct {
	SessionID    string
	Start        time.Time
	Duration     time.Duration
	Interactions int
	Path         string
	Err          error
}

type Logger struct {
	mu           sync.Mutex
	id           string
	userName     string
	start        time.Time
	dir          string
	store        storage.Store
	interactions []Interaction
	summary      *Summary
}

// NewLogger starts a session. store may be nil.
func NewLogger(dir, userName string, store storage.Store, start time.Time) *Logger {
	return &Logger{
		id:       uuid.NewString(),
		userName: userName,
		start:    start,
		dir:      dir,
		store:    store,
	}
}

func (l *Logger) ID() string { return l.id }

// Record appends the interaction in call order and copies it to the
// conversations collection. A store failure is logged and dropped.
func (l *Logger) Record(ctx context.Context, in Interaction) {
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	l.mu.Lock()
	l.interactions = append(l.interactions, in)
	l.mu.Unlock()

	if l.store == nil {
		return
	}
	err := l.store.Save(ctx, storage.CollectionConversations, storage.Record{
		UserInput:         in.UserInput,
		AssistantResponse: in.AssistantResponse,
		Source:            in.Category,
		SessionID:         l.id,
		Timestamp:         in.Timestamp,
	})
	if err != nil {
		log.WithError(err).Warn("⚠️ failed to store conversation turn")
	}
}

func (l *Logger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.interactions)
}

// Interactions returns a copy in recorded order.
func (l *Logger) Interactions() []Interaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Interaction, len(l.interactions))
	copy(out, l.interactions)
	return out
}

type sessionFile struct {
	SessionID       string        `json:"session_id"`
	SessionStart    time.Time     `json:"session_start"`
	SessionDuration string        `json:"session_duration"`
	UserName        string        `json:"user_name"`
	Capabilities    any           `json:"capabilities"`
	Interactions    []Interaction `json:"interactions"`
}

// Finalize writes the session document once. Later calls return the first summary.
// A write failure is reported in Summary.Err and nothing else.
func (l *Logger) Finalize(now time.Time, capabilities any) Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.summary != nil {
		return *l.summary
	}
	sum := Summary{
		SessionID:    l.id,
		Start:        l.start,
		Duration:     now.Sub(l.start).Round(time.Second),
		Interactions: len(l.interactions),
	}
	doc := sessionFile{
		SessionID:       l.id,
		SessionStart:    l.start,
		SessionDuration: sum.Duration.String(),
		UserName:        l.userName,
		Capabilities:    capabilities,
		Interactions:    l.interactions,
	}
	if doc.Interactions == nil {
		doc.Interactions = []Interaction{}
	}
	sum.Path, sum.Err = writeJSON(l.dir, fileName(now, l.id), doc)
	l.summary = &sum
	return sum
}

// fileName carries the leading ID characters so sessions ending in the same
// second get distinct files.
func fileName(now time.Time, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("aiden_session_%s_%s.json", now.Format("20060102_150405"), short)
}

func writeJSON(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure session dir: %w", err)
	}
	path := filepath.Join(dir, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write session: %w", err)
	}
	return path, nil
}
