package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

const materialsButtonLimit = 24

// handleStart re-derives the registration stage from the stored profile and
// prompts for the next missing field, or lands on the main menu.
func (r *Router) handleStart(ctx context.Context, m *tgbotapi.Message) {
	sess := r.sessions.get(m.From.ID)
	sess.home()
	u, ok := r.store.GetUser(m.From.ID)
	r.promptStage(ctx, m, sess, domain.RegistrationStage(u, ok))
}

// promptStage shows the prompt and keyboard for one registration stage and
// arms the matching input state.
func (r *Router) promptStage(_ context.Context, m *tgbotapi.Message, sess *session, stage domain.Stage) {
	userID := m.From.ID
	chatID := m.Chat.ID
	lang := r.langOf(userID)

	switch stage {
	case domain.StageLanguage:
		sess.state = stateLanguage
		r.sendWithKeyboard(chatID, r.msg(userID, "welcome"), langKeyboard())
	case domain.StagePhone:
		sess.state = statePhone
		r.sendWithKeyboard(chatID, r.msg(userID, "phone_prompt"), phoneKeyboard(lang))
	case domain.StageRole:
		sess.state = stateRole
		r.sendWithKeyboard(chatID, r.msg(userID, "role_prompt"), roleKeyboard(lang))
	case domain.StageShop:
		sess.state = stateShop
		r.sendWithKeyboard(chatID, r.msg(userID, "choose_shop"), shopKeyboard(lang))
	default:
		sess.home()
		r.sendWithKeyboard(chatID, r.msg(userID, "main_menu"), mainKeyboard(lang))
	}
}

// advance persists the profile and moves to the next registration stage.
func (r *Router) advance(ctx context.Context, m *tgbotapi.Message, sess *session, u domain.UserProfile) {
	if err := r.store.SaveUser(ctx, u); err != nil {
		r.log.Error("save user failed", zap.Error(err), zap.Int64("userID", u.ID))
		r.sendText(m.Chat.ID, r.msg(u.ID, "storage_error"))
		return
	}
	next, ok := r.store.GetUser(u.ID)
	r.promptStage(ctx, m, sess, domain.RegistrationStage(next, ok))
}

// --- registration inputs ---

func (r *Router) inputLanguage(ctx context.Context, m *tgbotapi.Message, sess *session, text string) {
	code := strings.ToUpper(text)
	if !domain.ValidLang(code) {
		r.sendWithKeyboard(m.Chat.ID, r.msg(m.From.ID, "choose_language"), langKeyboard())
		return
	}

	u, _ := r.store.GetUser(m.From.ID)
	u.ID = m.From.ID
	u.Username = m.From.UserName
	u.Lang = code
	sess.resetInput()
	r.advance(ctx, m, sess, u)
}

// inputPhone accepts only a Telegram contact payload owned by the sender.
// Typed text and forwarded contacts of other people are rejected.
func (r *Router) inputPhone(ctx context.Context, m *tgbotapi.Message, sess *session) {
	contact := m.Contact
	if contact == nil || contact.UserID != m.From.ID {
		r.sendWithKeyboard(m.Chat.ID, r.msg(m.From.ID, "phone_invalid"), phoneKeyboard(r.langOf(m.From.ID)))
		return
	}

	u, _ := r.store.GetUser(m.From.ID)
	u.ID = m.From.ID
	u.Username = m.From.UserName
	u.Phone = contact.PhoneNumber
	sess.resetInput()
	r.sendText(m.Chat.ID, r.msg(m.From.ID, "phone_saved"))
	r.advance(ctx, m, sess, u)
}

func (r *Router) inputRole(ctx context.Context, m *tgbotapi.Message, sess *session, text string) {
	role, ok := roleFromLabel(text)
	if !ok {
		r.sendWithKeyboard(m.Chat.ID, r.msg(m.From.ID, "role_prompt"), roleKeyboard(r.langOf(m.From.ID)))
		return
	}

	u, _ := r.store.GetUser(m.From.ID)
	u.ID = m.From.ID
	u.Username = m.From.UserName
	u.Role = role
	sess.resetInput()
	r.sendText(m.Chat.ID, fmt.Sprintf(r.msg(m.From.ID, "role_confirm"), text))
	r.advance(ctx, m, sess, u)
}

func (r *Router) inputShop(ctx context.Context, m *tgbotapi.Message, sess *session, text string) {
	shop, ok := shopFromLabel(text)
	if !ok {
		r.sendWithKeyboard(m.Chat.ID, r.msg(m.From.ID, "choose_shop"), shopKeyboard(r.langOf(m.From.ID)))
		return
	}

	u, _ := r.store.GetUser(m.From.ID)
	u.ID = m.From.ID
	u.Username = m.From.UserName
	u.Shop = shop
	sess.resetInput()
	r.advance(ctx, m, sess, u)
}

// --- menu buttons ---

func (r *Router) handleButton(ctx context.Context, m *tgbotapi.Message, sess *session, key string) {
	switch key {
	case "back":
		r.render(ctx, m, sess, sess.back())
	case "home":
		sess.home()
		r.render(ctx, m, sess, screenMain)
	case "training":
		sess.push(screenKnowledge)
		r.render(ctx, m, sess, screenKnowledge)
	case "search":
		sess.push(screenSearch)
		r.render(ctx, m, sess, screenSearch)
	case "reminders":
		sess.push(screenReminders)
		r.render(ctx, m, sess, screenReminders)
	case "feedback":
		sess.push(screenFeedback)
		r.render(ctx, m, sess, screenFeedback)
	case "links":
		sess.push(screenLinks)
		r.render(ctx, m, sess, screenLinks)
	case "contacts":
		sess.push(screenContacts)
		r.render(ctx, m, sess, screenContacts)
	case "change_lang":
		sess.resetInput()
		sess.state = stateLanguage
		r.sendWithKeyboard(m.Chat.ID, r.msg(m.From.ID, "choose_language"), langKeyboard())
	case "rem_add":
		sess.state = stateReminderMinutes
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "reminder_ask_minutes"))
	case "daily_on":
		r.toggleDigest(ctx, m, true)
	case "daily_off":
		r.toggleDigest(ctx, m, false)
	case "admin_list", "admin_add", "admin_edit", "admin_del":
		r.handleAdminButton(ctx, m, sess, key)
	}
}

// render reproduces a screen's original prompt and keyboard. Back relies on
// this to restore whatever the popped-to screen looked like.
func (r *Router) render(_ context.Context, m *tgbotapi.Message, sess *session, sc screen) {
	userID := m.From.ID
	chatID := m.Chat.ID
	lang := r.langOf(userID)

	switch sc {
	case screenKnowledge:
		u, _ := r.store.GetUser(userID)
		materials := r.search.MaterialsForRole(u.Role, materialsButtonLimit)
		r.sendWithKeyboard(chatID, r.msg(userID, "kb_menu"),
			knowledgeKeyboard(lang, materials, r.isAdmin(userID)))
	case screenSearch:
		sess.state = stateSearch
		r.sendText(chatID, r.msg(userID, "kb_search_prompt"))
	case screenReminders:
		r.sendWithKeyboard(chatID, r.msg(userID, "reminders_menu"), remindersKeyboard(lang))
	case screenFeedback:
		sess.state = stateFeedback
		r.sendText(chatID, r.msg(userID, "feedback_prompt"))
	case screenLinks:
		u, _ := r.store.GetUser(userID)
		text := linksText(u.Shop)
		if text == "" {
			text = r.msg(userID, "links_none")
		}
		r.sendText(chatID, text)
	case screenContacts:
		u, _ := r.store.GetUser(userID)
		r.sendText(chatID, contactsText(u.Shop))
	default:
		r.sendWithKeyboard(chatID, r.msg(userID, "main_menu"), mainKeyboard(lang))
	}
}

// --- user flows ---

func (r *Router) inputFeedback(ctx context.Context, m *tgbotapi.Message, sess *session, text string) {
	if text == "" {
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "feedback_prompt"))
		return
	}
	if err := r.store.AppendFeedback(ctx, m.From.ID, text); err != nil {
		r.log.Error("append feedback failed", zap.Error(err), zap.Int64("userID", m.From.ID))
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "storage_error"))
		return
	}
	sess.home()
	r.sendText(m.Chat.ID, r.msg(m.From.ID, "feedback_thanks"))
	r.render(ctx, m, sess, screenMain)
}

func (r *Router) inputSearch(ctx context.Context, m *tgbotapi.Message, sess *session, text string) {
	results := r.search.Search(text, 0)
	sess.resetInput()

	if len(results) == 0 {
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "kb_not_found"))
		r.render(ctx, m, sess, sess.back())
		return
	}

	var b strings.Builder
	b.WriteString(r.msg(m.From.ID, "kb_found_header"))
	for _, a := range results {
		b.WriteString("\n• ")
		b.WriteString(a.Title)
	}
	r.sendText(m.Chat.ID, b.String())
	r.render(ctx, m, sess, sess.back())
}

func (r *Router) inputReminder(ctx context.Context, m *tgbotapi.Message, sess *session, text string) {
	if sess.state == stateReminderMinutes {
		minutes, err := strconv.Atoi(text)
		if err != nil || minutes <= 0 {
			r.sendText(m.Chat.ID, r.msg(m.From.ID, "reminder_ask_minutes"))
			return
		}
		sess.reminderMinutes = minutes
		sess.state = stateReminderText
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "reminder_ask_text"))
		return
	}

	if text == "" || sess.reminderMinutes <= 0 {
		sess.state = stateReminderMinutes
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "reminder_ask_minutes"))
		return
	}
	fireAt := time.Now().UTC().Add(time.Duration(sess.reminderMinutes) * time.Minute)
	if err := r.store.AddReminder(ctx, m.From.ID, fireAt, text); err != nil {
		r.log.Error("add reminder failed", zap.Error(err), zap.Int64("userID", m.From.ID))
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "storage_error"))
		return
	}
	sess.resetInput()
	r.sendText(m.Chat.ID, r.msg(m.From.ID, "reminder_set"))
}

func (r *Router) toggleDigest(ctx context.Context, m *tgbotapi.Message, enabled bool) {
	if err := r.store.SetDigestEnabled(ctx, m.From.ID, enabled); err != nil {
		r.log.Error("set digest failed", zap.Error(err), zap.Int64("userID", m.From.ID))
		r.sendText(m.Chat.ID, r.msg(m.From.ID, "storage_error"))
		return
	}
	key := "daily_on"
	if !enabled {
		key = "daily_off"
	}
	r.sendText(m.Chat.ID, r.msg(m.From.ID, key))
}
