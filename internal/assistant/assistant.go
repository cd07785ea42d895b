// Package assistant owns one session: it classifies input, runs the matching
// handler, composes the reply and records the turn.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"aiden/internal/analytics"
	"aiden/internal/handler"
	"aiden/internal/intent"
	"aiden/internal/persona"
	"aiden/internal/session"
)

// ErrTerminated is returned for input that arrives after shutdown.
var ErrTerminated = errors.New("session terminated")

type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

type Reply struct {
	Text     string
	Category intent.Category
	// Terminal is set on the reply that ended the session.
	Terminal bool
}

type Assistant struct {
	persona  persona.Persona
	handlers *handler.Handlers
	logger   *session.Logger
	caps     Capabilities
	now      func() time.Time

	mu    sync.Mutex
	state State
}

func New(p persona.Persona, h *handler.Handlers, logger *session.Logger, caps Capabilities, now func() time.Time) *Assistant {
	if now == nil {
		now = time.Now
	}
	return &Assistant{persona: p, handlers: h, logger: logger, caps: caps, now: now}
}

func (a *Assistant) Persona() persona.Persona { return a.persona }

func (a *Assistant) Capabilities() Capabilities { return a.caps }

func (a *Assistant) SessionID() string { return a.logger.ID() }

func (a *Assistant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Greet is the session banner: salutation, capability report and hints.
func (a *Assistant) Greet() string {
	var b strings.Builder
	b.WriteString(a.persona.Greeting(a.now()))
	b.WriteString("\n\n")
	b.WriteString(a.caps.Report())
	if !a.caps.AdvancedAI {
		b.WriteString("\n\n[Note] Advanced AI features require an API key. Set GOOGLE_API_KEY (or configure LLM_PROVIDER) for enhanced capabilities.")
	}
	if a.caps.VoiceRecognition {
		b.WriteString("\n\n🎤 Voice input is ready! I'll prioritize listening to you speak.")
	}
	fmt.Fprintf(&b, "\n\nI am %s, ready to assist you, %s. How may I help you today?", a.persona.AssistantName, a.persona.UserName)
	return b.String()
}

// Process handles one utterance. Exit phrases end the session without being
// counted as an interaction.
func (a *Assistant) Process(ctx context.Context, input string) (Reply, error) {
	if a.State() == Terminated {
		return Reply{}, ErrTerminated
	}
	if intent.IsExit(input) {
		return a.Shutdown(), nil
	}
	cat := intent.Classify(input, a.handlers.AIAvailable())
	if cat == intent.Shutdown {
		return a.Shutdown(), nil
	}

	out := a.handlers.Handle(ctx, cat, input)
	text := a.persona.Compose(out.Title, out.Body)
	a.logger.Record(ctx, session.Interaction{
		Timestamp:         a.now(),
		UserInput:         input,
		AssistantResponse: text,
		Category:          cat.Label(),
	})
	log.WithFields(log.Fields{"category": cat.Label(), "session": a.logger.ID()}).Debug("handled input")
	return Reply{Text: text, Category: cat}, nil
}

// Shutdown finalizes the session and returns the summary. Later calls
// return the same summary text.
func (a *Assistant) Shutdown() Reply {
	return Reply{Text: a.terminate(""), Category: intent.Shutdown, Terminal: true}
}

// EmergencyShutdown is used when the input loop crashed.
func (a *Assistant) EmergencyShutdown(cause any) Reply {
	return Reply{Text: a.terminate(fmt.Sprint(cause)), Category: intent.Shutdown, Terminal: true}
}

func (a *Assistant) terminate(emergency string) string {
	a.mu.Lock()
	a.state = Terminated
	a.mu.Unlock()

	sum := a.logger.Finalize(a.now(), a.caps)
	name := a.persona.UserName

	var b strings.Builder
	if emergency != "" {
		fmt.Fprintf(&b, "\n⚠️ Emergency shutdown initiated: %s\n", emergency)
	}
	fmt.Fprintf(&b, "\nInitiating shutdown sequence, %s.\n\n", name)
	b.WriteString("Session Summary:\n")
	fmt.Fprintf(&b, "• Duration: %s\n", sum.Duration)
	fmt.Fprintf(&b, "• Interactions: %d\n", sum.Interactions)
	if counts := analytics.Breakdown(a.logger.Interactions()); len(counts) > 0 {
		b.WriteString("• By category:\n")
		b.WriteString(analytics.FormatBreakdown(counts))
	}
	if sum.Err != nil {
		fmt.Fprintf(&b, "• Session log: Unable to save (%v)\n", sum.Err)
	} else {
		fmt.Fprintf(&b, "• Session log saved: %s\n", sum.Path)
	}
	fmt.Fprintf(&b, "\nAll systems nominal. %s offline.\n", a.persona.AssistantName)
	fmt.Fprintf(&b, "Thank you for using %s, %s. Have a great day!", a.persona.AssistantName, name)
	return b.String()
}
