package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const adminHelp = `/stats - usage counters
/users - list registered users
/edit_user <id> <role|shop|lang|phone> <value>
/broadcast <text> - send to everyone except banned
/cleanup - purge all feedback
/ban <id> | /unban <id>
/set_digest <text> - replace the daily digest message
/articles - list knowledge articles
/article_add <title> || <body> || <tags>
/article_del <id>
/article_edit <id> || <title> || <body> || <tags> (empty part keeps current)`

var adminCommands = map[string]struct{}{
	"admin": {}, "stats": {}, "users": {}, "edit_user": {}, "broadcast": {},
	"cleanup": {}, "ban": {}, "unban": {}, "set_digest": {}, "articles": {},
	"article_add": {}, "article_del": {}, "article_edit": {},
}

func isAdminCommand(cmd string) bool {
	_, ok := adminCommands[cmd]
	return ok
}

// handleAdminCommand runs the slash-command mutation surface. Everything
// here is admin-gated.
func (r *Router) handleAdminCommand(ctx context.Context, m *tgbotapi.Message) {
	userID := m.From.ID
	chatID := m.Chat.ID
	if !r.isAdmin(userID) {
		r.sendText(chatID, fmt.Sprintf(r.msg(userID, "admin_no_access"), userID))
		return
	}
	args := strings.TrimSpace(m.CommandArguments())

	switch m.Command() {
	case "admin":
		r.sendText(chatID, adminHelp)

	case "stats":
		users, feedback, banned := r.store.Stats()
		r.sendText(chatID, fmt.Sprintf("👥 Users: %d\n📩 Feedback: %d\n⛔ Banned: %d\n⏰ Pending reminders: %d",
			users, feedback, banned, r.store.PendingReminders()))

	case "users":
		r.adminListUsers(chatID)

	case "edit_user":
		r.adminEditUser(ctx, chatID, userID, args)

	case "broadcast":
		if args == "" {
			r.sendText(chatID, "Usage: /broadcast <text>")
			return
		}
		sent := r.broadcast(args)
		r.sendText(chatID, fmt.Sprintf("Sent to %d users ✅", sent))

	case "cleanup":
		if err := r.store.PurgeAllFeedback(ctx); err != nil {
			r.log.Error("purge feedback failed", zap.Error(err))
			r.sendText(chatID, r.msg(userID, "storage_error"))
			return
		}
		r.sendText(chatID, "Feedback cleared ✅")

	case "ban", "unban":
		target, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			r.sendText(chatID, fmt.Sprintf("Usage: /%s <id>", m.Command()))
			return
		}
		if err := r.store.SetBanned(ctx, target, m.Command() == "ban"); err != nil {
			r.log.Error("set banned failed", zap.Error(err), zap.Int64("target", target))
			r.sendText(chatID, r.msg(userID, "storage_error"))
			return
		}
		r.sendText(chatID, "Done ✅")

	case "set_digest":
		if args == "" {
			r.sendText(chatID, "Usage: /set_digest <text>")
			return
		}
		if err := r.store.SetDigestMessage(ctx, args); err != nil {
			r.log.Error("set digest message failed", zap.Error(err))
			r.sendText(chatID, r.msg(userID, "storage_error"))
			return
		}
		r.sendText(chatID, "Digest message updated ✅")

	case "articles":
		r.adminListArticles(chatID, userID)

	case "article_add":
		r.adminArticleAdd(ctx, chatID, userID, args)

	case "article_del":
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			r.sendText(chatID, "Usage: /article_del <id>")
			return
		}
		deleted, err := r.store.DeleteArticle(ctx, id)
		if err != nil {
			r.log.Error("delete article failed", zap.Error(err), zap.Int64("articleID", id))
			r.sendText(chatID, r.msg(userID, "storage_error"))
			return
		}
		if !deleted {
			r.sendText(chatID, r.msg(userID, "not_found"))
			return
		}
		r.sendText(chatID, r.msg(userID, "article_deleted"))

	case "article_edit":
		r.adminArticleEdit(ctx, chatID, userID, args)

	default:
		r.sendText(chatID, adminHelp)
	}
}

func (r *Router) adminListUsers(chatID int64) {
	users := r.store.ListUsers()
	if len(users) == 0 {
		r.sendText(chatID, "No users yet.")
		return
	}
	if len(users) > 50 {
		users = users[:50]
	}
	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, fmt.Sprintf("%d | @%s | %s | %s | %s | %s",
			u.ID, dash(u.Username), dash(u.Role), dash(u.Shop), dash(u.Lang), dash(u.Phone)))
	}
	r.sendText(chatID, strings.Join(lines, "\n"))
}

func (r *Router) adminEditUser(ctx context.Context, chatID, adminID int64, args string) {
	parts := strings.SplitN(args, " ", 3)
	if len(parts) < 3 {
		r.sendText(chatID, "Usage: /edit_user <id> <role|shop|lang|phone> <value>")
		return
	}
	target, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		r.sendText(chatID, "Usage: /edit_user <id> <role|shop|lang|phone> <value>")
		return
	}
	u, ok := r.store.GetUser(target)
	if !ok {
		r.sendText(chatID, r.msg(adminID, "not_found"))
		return
	}

	field := strings.ToLower(parts[1])
	value := strings.TrimSpace(parts[2])
	switch field {
	case "role":
		u.Role = value
	case "shop":
		u.Shop = value
	case "lang":
		u.Lang = strings.ToUpper(value)
	case "phone":
		u.Phone = value
	default:
		r.sendText(chatID, "Field must be one of: role, shop, lang, phone")
		return
	}

	if err := r.store.SaveUser(ctx, u); err != nil {
		r.log.Error("edit user failed", zap.Error(err), zap.Int64("target", target))
		r.sendText(chatID, r.msg(adminID, "storage_error"))
		return
	}
	r.sendText(chatID, "User updated ✅")
}

// broadcast fans text out to every non-banned user. Per-recipient delivery
// failures are swallowed; the returned count includes successes only.
func (r *Router) broadcast(text string) int {
	sent := 0
	for _, u := range r.store.ListUsers() {
		if r.store.IsBanned(u.ID) {
			continue
		}
		if _, err := r.bot.Send(tgbotapi.NewMessage(u.ID, text)); err != nil {
			r.log.Warn("broadcast delivery failed", zap.Error(err), zap.Int64("userID", u.ID))
			continue
		}
		sent++
	}
	return sent
}

func (r *Router) adminListArticles(chatID, adminID int64) {
	articles := r.store.ListArticles(200)
	if len(articles) == 0 {
		r.sendText(chatID, r.msg(adminID, "kb_no_materials"))
		return
	}
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("%d. %s", a.ID, a.Title))
	}
	r.sendText(chatID, strings.Join(lines, "\n"))
}

func (r *Router) adminArticleAdd(ctx context.Context, chatID, adminID int64, args string) {
	parts := splitArticleArgs(args)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		r.sendText(chatID, "Usage: /article_add <title> || <body> || <tags>")
		return
	}
	id, err := r.store.AddArticle(ctx, parts[0], parts[1], parts[2])
	if err != nil {
		r.log.Error("add article failed", zap.Error(err))
		r.sendText(chatID, r.msg(adminID, "storage_error"))
		return
	}
	r.sendText(chatID, fmt.Sprintf(r.msg(adminID, "article_added"), id))
}

func (r *Router) adminArticleEdit(ctx context.Context, chatID, adminID int64, args string) {
	parts := splitArticleArgs(args)
	if len(parts) == 0 {
		r.sendText(chatID, "Usage: /article_edit <id> || <title> || <body> || <tags>")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		r.sendText(chatID, "Usage: /article_edit <id> || <title> || <body> || <tags>")
		return
	}

	// Empty segments keep the stored value.
	var title, body, tags *string
	if len(parts) > 1 && parts[1] != "" {
		title = &parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		body = &parts[2]
	}
	if len(parts) > 3 && parts[3] != "" {
		tags = &parts[3]
	}

	updated, err := r.store.EditArticle(ctx, id, title, body, tags)
	if err != nil {
		r.log.Error("edit article failed", zap.Error(err), zap.Int64("articleID", id))
		r.sendText(chatID, r.msg(adminID, "storage_error"))
		return
	}
	if !updated {
		r.sendText(chatID, r.msg(adminID, "not_found"))
		return
	}
	r.sendText(chatID, r.msg(adminID, "article_updated"))
}

func splitArticleArgs(args string) []string {
	if args == "" {
		return nil
	}
	parts := strings.Split(args, "||")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// --- button-driven article flows ---

// handleAdminButton starts an article sub-flow. Each flow gets its own
// tagged variant so the shared field states below cannot mix flows up.
func (r *Router) handleAdminButton(_ context.Context, m *tgbotapi.Message, sess *session, key string) {
	userID := m.From.ID
	if !r.isAdmin(userID) {
		r.sendText(m.Chat.ID, fmt.Sprintf(r.msg(userID, "admin_no_access"), userID))
		return
	}

	switch key {
	case "admin_list":
		r.adminListArticles(m.Chat.ID, userID)
	case "admin_add":
		sess.resetInput()
		sess.flow = &addFlow{}
		sess.state = stateArticleTitle
		r.sendText(m.Chat.ID, r.msg(userID, "article_ask_title"))
	case "admin_edit":
		sess.resetInput()
		sess.flow = &editFlow{}
		sess.state = stateArticleID
		r.sendText(m.Chat.ID, r.msg(userID, "article_ask_id"))
	case "admin_del":
		sess.resetInput()
		sess.flow = &deleteFlow{}
		sess.state = stateArticleID
		r.sendText(m.Chat.ID, r.msg(userID, "article_ask_id"))
	}
}

// inputArticleFlow walks the shared id/title/body/tags states. The concrete
// flow variant decides what each input means.
func (r *Router) inputArticleFlow(ctx context.Context, m *tgbotapi.Message, sess *session, text string) {
	userID := m.From.ID
	chatID := m.Chat.ID
	if !r.isAdmin(userID) {
		sess.resetInput()
		return
	}

	switch sess.state {
	case stateArticleID:
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			r.sendText(chatID, r.msg(userID, "article_ask_id"))
			return
		}
		switch f := sess.flow.(type) {
		case *deleteFlow:
			deleted, err := r.store.DeleteArticle(ctx, id)
			sess.resetInput()
			if err != nil {
				r.log.Error("delete article failed", zap.Error(err), zap.Int64("articleID", id))
				r.sendText(chatID, r.msg(userID, "storage_error"))
				return
			}
			if !deleted {
				r.sendText(chatID, r.msg(userID, "not_found"))
				return
			}
			r.sendText(chatID, r.msg(userID, "article_deleted"))
		case *editFlow:
			a, ok := r.store.GetArticle(id)
			if !ok {
				r.sendText(chatID, r.msg(userID, "not_found"))
				return
			}
			f.id = id
			sess.state = stateArticleTitle
			r.sendText(chatID, fmt.Sprintf("Current title: %s\n%s", a.Title, r.msg(userID, "article_ask_new_title")))
		default:
			sess.resetInput()
		}

	case stateArticleTitle:
		switch f := sess.flow.(type) {
		case *addFlow:
			if text == "" {
				r.sendText(chatID, r.msg(userID, "article_ask_title"))
				return
			}
			f.title = text
			sess.state = stateArticleBody
			r.sendText(chatID, r.msg(userID, "article_ask_body"))
		case *editFlow:
			if text != "-" {
				f.title = &text
			}
			sess.state = stateArticleBody
			r.sendText(chatID, r.msg(userID, "article_ask_new_body"))
		default:
			sess.resetInput()
		}

	case stateArticleBody:
		switch f := sess.flow.(type) {
		case *addFlow:
			if text == "" {
				r.sendText(chatID, r.msg(userID, "article_ask_body"))
				return
			}
			f.body = text
			sess.state = stateArticleTags
			r.sendText(chatID, r.msg(userID, "article_ask_tags"))
		case *editFlow:
			if text != "-" {
				f.body = &text
			}
			sess.state = stateArticleTags
			r.sendText(chatID, r.msg(userID, "article_ask_new_tags"))
		default:
			sess.resetInput()
		}

	case stateArticleTags:
		switch f := sess.flow.(type) {
		case *addFlow:
			tags := text
			if tags == "-" {
				tags = ""
			}
			id, err := r.store.AddArticle(ctx, f.title, f.body, tags)
			sess.resetInput()
			if err != nil {
				r.log.Error("add article failed", zap.Error(err))
				r.sendText(chatID, r.msg(userID, "storage_error"))
				return
			}
			r.sendText(chatID, fmt.Sprintf(r.msg(userID, "article_added"), id))
		case *editFlow:
			var tags *string
			if text != "-" {
				tags = &text
			}
			updated, err := r.store.EditArticle(ctx, f.id, f.title, f.body, tags)
			sess.resetInput()
			if err != nil {
				r.log.Error("edit article failed", zap.Error(err), zap.Int64("articleID", f.id))
				r.sendText(chatID, r.msg(userID, "storage_error"))
				return
			}
			if !updated {
				r.sendText(chatID, r.msg(userID, "not_found"))
				return
			}
			r.sendText(chatID, r.msg(userID, "article_updated"))
		default:
			sess.resetInput()
		}
	}
}
