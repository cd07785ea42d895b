package handler

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"

	"aiden/internal/intent"
	"aiden/internal/llm"
	"aiden/internal/storage"
)

// Conversational sends the persona prompt, related stored context, recent
// chat memory and the query to the AI model.
func (h *Handlers) Conversational(ctx context.Context, input string) Output {
	if h.d.LLM == nil {
		return h.Fallback(ctx, input)
	}
	prev := h.related(ctx, input, 2)

	system := h.d.Persona.SystemPrompt
	if len(prev) > 0 {
		var b strings.Builder
		b.WriteString("\n\nRelevant previous information from database:\n")
		for i, r := range prev {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, r.Query, excerpt(r.Result, 200))
		}
		system += b.String()
	}
	speaker := h.name()
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	msgs = append(msgs, h.d.History.Get(speaker)...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: "User query: " + input})

	resp, err := h.d.LLM.Generate(ctx, msgs)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		if err == nil {
			err = fmt.Errorf("empty completion")
		}
		log.WithError(err).Warn("⚠️ conversational AI failed")
		return Output{Title: "💬 Conversation", Body: h.apology(input)}
	}
	answer := strings.TrimSpace(resp.Content)
	h.d.History.AppendUser(speaker, input)
	h.d.History.AppendAssistant(speaker, answer)
	h.persist(ctx, storage.Record{Query: input, Result: answer, Source: storage.SourceAIConversation})
	return Output{Title: "💬 Conversation", Body: answer}
}

func (h *Handlers) apology(input string) string {
	fallback := intent.English
	if h.d.Persona.Portuguese() {
		fallback = intent.Portuguese
	}
	if intent.DetectLanguage(input, fallback) == intent.Portuguese {
		return fmt.Sprintf("Peço desculpas, %s, mas estou com dificuldades nos meus sistemas avançados de processamento. Tente novamente em instantes.", h.name())
	}
	return fmt.Sprintf("I apologize, %s, but I'm experiencing difficulties with my advanced processing systems. Please try again shortly.", h.name())
}

type bucket struct {
	words []string
	reply string
}

// fallbackBuckets are checked in order; the default reply follows them.
var fallbackBuckets = []bucket{
	{[]string{"olá", " oi ", "hello", " hi ", "bom dia", "boa tarde", "boa noite"},
		"Hello, %s. I am AIDEN, your Advanced Interactive Digital Enhancement Network. How may I assist you today?"},
	{[]string{"como", "what", "how", "why", "quando", "where"},
		"That's an interesting question, %s. While I don't have access to my full AI capabilities at the moment, I can help with system operations, file management, and diagnostics."},
	{[]string{"fazer", "criar", " do ", "create", "make", "execute"},
		"I understand you'd like me to perform a task, %s. I can assist with system monitoring, file management, and diagnostic functions. Please specify what you'd like me to do."},
	{[]string{"saber", "conhecer", "learn", "know", "ensinar", "teach"},
		"Knowledge is important, %s. I maintain operational knowledge about system administration and diagnostics, and I can search our conversation history for relevant information."},
}

const defaultReply = "I acknowledge your request, %s. I'm ready to help with system operations, diagnostics, file management, and can search our previous conversations for relevant information."

// Fallback answers deterministically when no AI model is available.
func (h *Handlers) Fallback(ctx context.Context, input string) Output {
	reply := fallbackReply(input)
	body := fmt.Sprintf(reply, h.name())
	if prev := h.related(ctx, input, 1); len(prev) > 0 {
		body += "\n\nI found some related information from our previous conversations:\n"
		body += fmt.Sprintf("• %s: %s\n", prev[0].Query, excerpt(prev[0].Result, 150))
	}
	return Output{Title: "💬 AIDEN", Body: body}
}

// fallbackReply picks a bucket by keyword substring. The input is padded with
// spaces so short keywords written with spaces only match standalone words.
func fallbackReply(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	padded := " " + strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return ' '
		}
		return r
	}, lower) + " "
	has := func(list []string) bool {
		for _, kw := range list {
			if strings.Contains(padded, kw) {
				return true
			}
		}
		return false
	}
	if has(fallbackBuckets[0].words) {
		return fallbackBuckets[0].reply
	}
	if strings.HasSuffix(lower, "?") || has(fallbackBuckets[1].words) {
		return fallbackBuckets[1].reply
	}
	for _, b := range fallbackBuckets[2:] {
		if has(b.words) {
			return b.reply
		}
	}
	return defaultReply
}
