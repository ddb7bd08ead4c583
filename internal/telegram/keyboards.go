package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

func langKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("RU"),
			tgbotapi.NewKeyboardButton("EN"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("UZ"),
			tgbotapi.NewKeyboardButton("TJ"),
			tgbotapi.NewKeyboardButton("KG"),
		),
	)
}

func phoneKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(btnLabel(lang, "share_phone")),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func roleKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	labels := roleLabels[lang]
	if labels == nil {
		labels = roleLabels["EN"]
	}
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labels[domain.RoleCourier]),
			tgbotapi.NewKeyboardButton(labels[domain.RolePicker]),
		),
	)
}

func shopKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	labels := shopLabels[lang]
	if labels == nil {
		labels = shopLabels["EN"]
	}
	row := make([]tgbotapi.KeyboardButton, 0, len(domain.Shops))
	for _, shop := range domain.Shops {
		row = append(row, tgbotapi.NewKeyboardButton(labels[shop]))
	}
	return tgbotapi.NewReplyKeyboard(row)
}

func mainKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "training"))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "reminders"))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "links"))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "contacts"))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "feedback"))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "change_lang"))),
	)
}

func remindersKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "rem_add"))),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLabel(lang, "daily_on")),
			tgbotapi.NewKeyboardButton(btnLabel(lang, "daily_off")),
		),
		navRow(lang),
	)
}

// knowledgeKeyboard lists role-filtered topic buttons two per row, the
// search button, admin actions when applicable, and navigation.
func knowledgeKeyboard(lang string, materials []domain.Article, isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton

	var buf []tgbotapi.KeyboardButton
	for _, m := range materials {
		if m.Title == "" {
			continue
		}
		buf = append(buf, tgbotapi.NewKeyboardButton(m.Title))
		if len(buf) == 2 {
			rows = append(rows, buf)
			buf = nil
		}
	}
	if len(buf) > 0 {
		rows = append(rows, buf)
	}

	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnLabel(lang, "search"))))

	if isAdmin {
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "admin_list"))),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(btnLabel(lang, "admin_add")),
				tgbotapi.NewKeyboardButton(btnLabel(lang, "admin_edit")),
			),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLabel(lang, "admin_del"))),
		)
	}

	rows = append(rows, navRow(lang))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func navRow(lang string) []tgbotapi.KeyboardButton {
	return tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnLabel(lang, "back")),
		tgbotapi.NewKeyboardButton(btnLabel(lang, "home")),
	)
}
