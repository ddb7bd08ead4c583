// Package telegram adapts incoming bot updates to the conversation engine
// and admin command surface, and renders responses back through the bot API.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
	"github.com/z89kdf9k4p-code/crewbot/internal/kb"
	"github.com/z89kdf9k4p-code/crewbot/internal/store"
)

// Router wires updates to handlers and owns the volatile session store.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	store    *store.Store
	search   kb.Searcher
	sessions *sessions
	admins   map[int64]struct{}
}

// NewRouter creates a Router. adminIDs is fixed at process start.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, st *store.Store, search kb.Searcher, adminIDs []int64) *Router {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Router{
		bot:      bot,
		log:      log,
		store:    st,
		search:   search,
		sessions: newSessions(),
		admins:   admins,
	}
}

func (r *Router) isAdmin(id int64) bool {
	_, ok := r.admins[id]
	return ok
}

// langOf returns the user's stored language, defaulting to English.
func (r *Router) langOf(userID int64) string {
	if u, ok := r.store.GetUser(userID); ok && u.Lang != "" {
		return u.Lang
	}
	return "EN"
}

// msg is a localization shortcut bound to a user.
func (r *Router) msg(userID int64, key string) string {
	return msgText(r.langOf(userID), key)
}

// HandleUpdate routes one update. Any panic below this point is caught,
// logged with full detail, and answered with a generic failure message; a
// single bad event must never take the process down.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	m := upd.Message
	if m == nil || m.From == nil {
		return
	}
	userID := m.From.ID
	chatID := m.Chat.ID

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("update handler panic",
				zap.Any("panic", rec),
				zap.Int64("userID", userID),
				zap.Stack("stack"))
			r.sendText(chatID, r.msg(userID, "generic_error"))
		}
	}()

	if r.store.IsBanned(userID) {
		r.sendText(chatID, r.msg(userID, "banned"))
		return
	}

	if m.IsCommand() {
		switch cmd := m.Command(); {
		case cmd == "start":
			r.handleStart(ctx, m)
		case isAdminCommand(cmd):
			r.handleAdminCommand(ctx, m)
		default:
			// Unknown command: ignore.
		}
		return
	}

	r.dispatch(ctx, m)
}

// dispatch handles a non-command message: pending input states first, then
// the registration guard, then menu buttons and topic titles.
func (r *Router) dispatch(ctx context.Context, m *tgbotapi.Message) {
	userID := m.From.ID
	sess := r.sessions.get(userID)
	text := strings.TrimSpace(m.Text)

	switch sess.state {
	case stateLanguage:
		r.inputLanguage(ctx, m, sess, text)
		return
	case statePhone:
		r.inputPhone(ctx, m, sess)
		return
	case stateRole:
		r.inputRole(ctx, m, sess, text)
		return
	case stateShop:
		r.inputShop(ctx, m, sess, text)
		return
	case stateFeedback:
		r.inputFeedback(ctx, m, sess, text)
		return
	case stateSearch:
		r.inputSearch(ctx, m, sess, text)
		return
	case stateReminderMinutes, stateReminderText:
		r.inputReminder(ctx, m, sess, text)
		return
	case stateArticleID, stateArticleTitle, stateArticleBody, stateArticleTags:
		r.inputArticleFlow(ctx, m, sess, text)
		return
	}

	// A user mid-registration gets their next prompt whatever they typed.
	u, ok := r.store.GetUser(userID)
	if stage := domain.RegistrationStage(u, ok); stage != domain.StageMain {
		r.promptStage(ctx, m, sess, stage)
		return
	}

	if key, ok := buttonKey(text); ok {
		r.handleButton(ctx, m, sess, key)
		return
	}

	if a, ok := r.articleByTitle(text); ok {
		body := a.Body
		if body == "" {
			body = r.msg(userID, "body_missing")
		}
		r.sendText(m.Chat.ID, body)
		return
	}

	// Unrecognized input: re-render the current screen.
	r.render(ctx, m, sess, sess.top())
}

// articleByTitle finds an article whose title exactly matches text.
func (r *Router) articleByTitle(text string) (domain.Article, bool) {
	if text == "" {
		return domain.Article{}, false
	}
	for _, a := range r.store.Articles() {
		if strings.TrimSpace(a.Title) == text {
			return a, true
		}
	}
	return domain.Article{}, false
}

// --- outbound primitives ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// SendReminder delivers a due reminder. Implements scheduler.Sender.
func (r *Router) SendReminder(userID int64, text string) error {
	body := fmt.Sprintf(msgText(r.langOf(userID), "reminder_push"), text)
	_, err := r.bot.Send(tgbotapi.NewMessage(userID, body))
	return err
}

// SendDigest delivers the daily digest. Implements scheduler.Sender.
func (r *Router) SendDigest(userID int64, text string) error {
	body := fmt.Sprintf(msgText(r.langOf(userID), "digest_push"), text)
	_, err := r.bot.Send(tgbotapi.NewMessage(userID, body))
	return err
}
