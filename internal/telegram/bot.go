// Package telegram exposes the assistant to allowlisted Telegram users. Each
// chat gets its own assistant session.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"aiden/internal/assistant"
	"aiden/internal/auth"
	"aiden/internal/persona"
)

const (
	approvePrefix = "approve:"
	denyPrefix    = "deny:"
	resetCmd      = "reset_session"

	// maxMessageLen is the Telegram limit for a single text message.
	maxMessageLen = 4096
)

// SessionFactory starts an assistant session for one chat.
type SessionFactory interface {
	NewSession(p persona.Persona) *assistant.Assistant
}

type Bot struct {
	s       sender
	u       updater
	allow   *auth.Allowlist
	kit     SessionFactory
	persona persona.Persona
	adminID int64

	mu       sync.Mutex
	sessions map[int64]*assistant.Assistant
	pending  map[int64]auth.User
}

func New(botToken string, allow *auth.Allowlist, kit SessionFactory, base persona.Persona, adminID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Infof("✅ Authorized on Telegram account @%s", api.Self.UserName)
	return newBot(api, api, allow, kit, base, adminID), nil
}

func newBot(s sender, u updater, allow *auth.Allowlist, kit SessionFactory, base persona.Persona, adminID int64) *Bot {
	return &Bot{
		s:        s,
		u:        u,
		allow:    allow,
		kit:      kit,
		persona:  base,
		adminID:  adminID,
		sessions: make(map[int64]*assistant.Assistant),
		pending:  make(map[int64]auth.User),
	}
}

// Start consumes updates until ctx is canceled, then finalizes every open
// session.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.u.GetUpdatesChan(u)
	log.Info("🚀 Telegram frontend started")

	defer b.closeSessions()
	for {
		select {
		case <-ctx.Done():
			b.u.StopReceivingUpdates()
			log.Info("🛑 Telegram frontend stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			switch {
			case update.Message != nil:
				b.handleIncomingMessage(ctx, update.Message)
			case update.CallbackQuery != nil:
				b.handleCallback(update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.allow.IsAllowed(msg.From.ID) {
		b.requestAccess(msg)
		return
	}
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	log.WithFields(log.Fields{"user": msg.From.ID, "chat": msg.Chat.ID}).Infof("📨 Incoming message: %q", text)

	a := b.session(msg.Chat.ID, msg.From)
	reply, err := a.Process(ctx, text)
	if err != nil {
		// session ended concurrently; start over on the next message
		b.dropSession(msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, "Session closed. Send a new message to start again.")
		return
	}
	if reply.Terminal {
		b.dropSession(msg.Chat.ID)
	}
	b.sendReply(msg.Chat.ID, reply.Text, !reply.Terminal)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.closeSession(chatID)
		b.sendReply(chatID, b.session(chatID, msg.From).Greet(), true)
		return
	case "reset":
		b.closeSession(chatID)
		b.sendMessage(chatID, "Session reset.")
		return
	}

	if msg.From.ID != b.adminID {
		b.sendMessage(chatID, "Unknown command. Just write what you need.")
		return
	}
	switch msg.Command() {
	case "allowlist":
		var bld strings.Builder
		bld.WriteString("Allowlist:\n")
		for _, u := range b.allow.List() {
			fmt.Fprintf(&bld, "- id=%d @%s %s\n", u.ID, u.Username, u.FirstName)
		}
		b.sendMessage(chatID, bld.String())
	case "pending":
		var bld strings.Builder
		bld.WriteString("Pending requests:\n")
		b.mu.Lock()
		for _, u := range b.pending {
			fmt.Fprintf(&bld, "- id=%d @%s %s\n", u.ID, u.Username, u.FirstName)
		}
		b.mu.Unlock()
		b.sendMessage(chatID, bld.String())
	case "approve", "deny", "remove":
		args := strings.Fields(msg.CommandArguments())
		if len(args) != 1 {
			b.sendMessage(chatID, fmt.Sprintf("Usage: /%s <user_id>", msg.Command()))
			return
		}
		uid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendMessage(chatID, "Invalid user_id")
			return
		}
		switch msg.Command() {
		case "approve":
			b.approveUser(uid)
		case "deny":
			b.denyUser(uid)
		default:
			if err := b.allow.Revoke(uid); err != nil {
				b.sendMessage(chatID, fmt.Sprintf("Failed to remove: %v", err))
				return
			}
			b.sendMessage(chatID, fmt.Sprintf("User %d removed from allowlist", uid))
		}
	}
}

func (b *Bot) requestAccess(msg *tgbotapi.Message) {
	log.WithField("user", msg.From.ID).Warnf("⚠️ Unauthorized access attempt by @%s", msg.From.UserName)
	b.mu.Lock()
	_, seen := b.pending[msg.From.ID]
	if !seen {
		b.pending[msg.From.ID] = auth.User{ID: msg.From.ID, Username: msg.From.UserName, FirstName: msg.From.FirstName}
	}
	b.mu.Unlock()
	if seen {
		b.sendMessage(msg.Chat.ID, "Your access request is already waiting for the administrator.")
		return
	}
	b.sendMessage(msg.Chat.ID, "Access request sent to the administrator. You will be notified once approved.")
	b.notifyAdminRequest(msg.From.ID, msg.From.UserName)
}

func (b *Bot) notifyAdminRequest(userID int64, username string) {
	if b.adminID == 0 {
		return
	}
	id := strconv.FormatInt(userID, 10)
	out := tgbotapi.NewMessage(b.adminID, fmt.Sprintf("User @%s (id %d) wants to use the assistant", username, userID))
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("approve", approvePrefix+id),
			tgbotapi.NewInlineKeyboardButtonData("deny", denyPrefix+id),
		),
	)
	if _, err := b.s.Send(out); err != nil {
		log.WithError(err).Error("❌ failed to notify admin")
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil {
		return
	}
	switch {
	case cb.Data == resetCmd && cb.Message != nil:
		b.closeSession(cb.Message.Chat.ID)
		b.sendMessage(cb.Message.Chat.ID, "Session reset.")
	case strings.HasPrefix(cb.Data, approvePrefix) && cb.From.ID == b.adminID:
		if id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, approvePrefix), 10, 64); err == nil {
			b.approveUser(id)
		}
	case strings.HasPrefix(cb.Data, denyPrefix) && cb.From.ID == b.adminID:
		if id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, denyPrefix), 10, 64); err == nil {
			b.denyUser(id)
		}
	}
}

func (b *Bot) approveUser(id int64) {
	b.mu.Lock()
	u, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()
	if !ok {
		u = auth.User{ID: id}
	}
	if err := b.allow.Grant(u); err != nil {
		log.WithError(err).Error("❌ failed to persist allowlist")
	}
	b.sendMessage(b.adminID, fmt.Sprintf("User %d approved", id))
	b.sendMessage(id, "Access granted. Send /start to begin.")
}

func (b *Bot) denyUser(id int64) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
	b.sendMessage(b.adminID, fmt.Sprintf("User %d denied", id))
	b.sendMessage(id, "Access denied.")
}

func (b *Bot) session(chatID int64, from *tgbotapi.User) *assistant.Assistant {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.sessions[chatID]; ok {
		return a
	}
	p := b.persona
	if from != nil {
		if name := (auth.User{Username: from.UserName, FirstName: from.FirstName}).DisplayName(); name != "" {
			p.UserName = name
		}
	}
	a := b.kit.NewSession(p)
	b.sessions[chatID] = a
	log.WithFields(log.Fields{"chat": chatID, "session": a.SessionID()}).Info("🆕 Session started")
	return a
}

func (b *Bot) dropSession(chatID int64) {
	b.mu.Lock()
	delete(b.sessions, chatID)
	b.mu.Unlock()
}

// closeSession finalizes the chat session, writing its log.
func (b *Bot) closeSession(chatID int64) {
	b.mu.Lock()
	a, ok := b.sessions[chatID]
	delete(b.sessions, chatID)
	b.mu.Unlock()
	if ok {
		a.Shutdown()
	}
}

func (b *Bot) closeSessions() {
	b.mu.Lock()
	open := b.sessions
	b.sessions = make(map[int64]*assistant.Assistant)
	b.mu.Unlock()
	for _, a := range open {
		a.Shutdown()
	}
}

func (b *Bot) sendReply(chatID int64, text string, withReset bool) {
	parts := splitMessage(text, maxMessageLen)
	for i, part := range parts {
		out := tgbotapi.NewMessage(chatID, part)
		if withReset && i == len(parts)-1 {
			out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Reset session", resetCmd)),
			)
		}
		if _, err := b.s.Send(out); err != nil {
			log.WithError(err).Error("❌ failed to send message")
			return
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if chatID == 0 {
		return
	}
	if _, err := b.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.WithError(err).Error("❌ failed to send message")
	}
}

// splitMessage cuts text into parts of at most limit runes, preferring line
// boundaries.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			r := []rune(line)
			parts = append(parts, string(r[:limit]))
			line = string(r[limit:])
			n -= limit
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return parts
}
