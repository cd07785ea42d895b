// Package persona holds the assistant's identity and formats every reply
// with the same salutation and section markers.
package persona

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const DefaultSystemPrompt = `You are AIDEN (Advanced Interactive Digital Enhancement Network), an intelligent AI assistant.
Respond in a helpful, professional, and friendly manner.
Address the user naturally and provide detailed, accurate responses when appropriate.
Be conversational yet informative.`

type Persona struct {
	UserName      string `yaml:"user_name"`
	AssistantName string `yaml:"assistant_name"`
	Language      string `yaml:"language"`
	SystemPrompt  string `yaml:"system_prompt"`
}

func Default(userName, language string) Persona {
	if userName == "" {
		userName = "User"
	}
	if language == "" {
		language = "pt-BR"
	}
	return Persona{
		UserName:      userName,
		AssistantName: "AIDEN",
		Language:      language,
		SystemPrompt:  DefaultSystemPrompt,
	}
}

// Load applies YAML overrides and an optional plain-text system prompt on top
// of base. Missing files are not an error.
func Load(base Persona, yamlPath, promptPath string) (Persona, error) {
	p := base
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return base, fmt.Errorf("read persona file: %w", err)
		default:
			var over Persona
			if err := yaml.Unmarshal(data, &over); err != nil {
				return base, fmt.Errorf("parse persona file %s: %w", yamlPath, err)
			}
			if over.UserName != "" {
				p.UserName = over.UserName
			}
			if over.AssistantName != "" {
				p.AssistantName = over.AssistantName
			}
			if over.Language != "" {
				p.Language = over.Language
			}
			if over.SystemPrompt != "" {
				p.SystemPrompt = over.SystemPrompt
			}
		}
	}
	if promptPath != "" {
		if data, err := os.ReadFile(promptPath); err == nil {
			if s := strings.TrimSpace(string(data)); s != "" {
				p.SystemPrompt = s
			}
		}
	}
	return p, nil
}

// Portuguese reports whether replies should use the Portuguese register.
func (p Persona) Portuguese() bool {
	return strings.HasPrefix(strings.ToLower(p.Language), "pt")
}

// Compose wraps handler output with the salutation, a section header and a
// closing marker. Output is kept verbatim.
func (p Persona) Compose(title, output string) string {
	var b strings.Builder
	if p.Portuguese() {
		fmt.Fprintf(&b, "Certo, %s.\n\n", p.UserName)
	} else {
		fmt.Fprintf(&b, "Very well, %s.\n\n", p.UserName)
	}
	if title != "" {
		fmt.Fprintf(&b, "━━ %s ━━\n", title)
	}
	b.WriteString(output)
	if !strings.HasSuffix(output, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "━━ %s ━━", p.AssistantName)
	return b.String()
}

// Greeting returns the time-of-day salutation followed by the user's name.
func (p Persona) Greeting(now time.Time) string {
	h := now.Hour()
	var pt, en string
	switch {
	case h < 12:
		pt, en = "Bom dia", "Good morning"
	case h < 18:
		pt, en = "Boa tarde", "Good afternoon"
	default:
		pt, en = "Boa noite", "Good evening"
	}
	if p.Portuguese() {
		return fmt.Sprintf("%s, %s. Eu sou %s, seu assistente.", pt, p.UserName, p.AssistantName)
	}
	return fmt.Sprintf("%s, %s. I am %s, your assistant.", en, p.UserName, p.AssistantName)
}
