package telegram

import (
	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

// Button labels per language. These are matched literally against incoming
// text, so every language variant of a key maps back to the same action.
var buttons = map[string]map[string]string{
	"training": {
		"RU": "📚 Обучалки / FAQ",
		"EN": "📚 Training / FAQ",
		"UZ": "📚 O‘quv / FAQ",
		"TJ": "📚 Омӯзиш / FAQ",
		"KG": "📚 Окутуу / FAQ",
	},
	"reminders": {
		"RU": "⏰ Напоминания",
		"EN": "⏰ Reminders",
		"UZ": "⏰ Eslatmalar",
		"TJ": "⏰ Ёдраскуниҳо",
		"KG": "⏰ Эскертмелер",
	},
	"links": {
		"RU": "🔗 Ссылки",
		"EN": "🔗 Links",
		"UZ": "🔗 Havolalar",
		"TJ": "🔗 Пайвандҳо",
		"KG": "🔗 Шилтемелер",
	},
	"contacts": {
		"RU": "📞 Контакты супервайзера",
		"EN": "📞 Supervisor contacts",
		"UZ": "📞 Supervayzer kontaktlari",
		"TJ": "📞 Тамосҳои супервайзер",
		"KG": "📞 Супервайзер байланыштары",
	},
	"feedback": {
		"RU": "📩 Обратная связь",
		"EN": "📩 Feedback",
		"UZ": "📩 Fikr-mulohaza",
		"TJ": "📩 Фикру мулоҳиза",
		"KG": "📩 Кайтарым байланыш",
	},
	"change_lang": {
		"RU": "🌐 Сменить язык",
		"EN": "🌐 Change language",
		"UZ": "🌐 Tilni o‘zgartirish",
		"TJ": "🌐 Забонро иваз кардан",
		"KG": "🌐 Тилди өзгөртүү",
	},
	"back": {
		"RU": "⬅️ Назад",
		"EN": "⬅️ Back",
		"UZ": "⬅️ Orqaga",
		"TJ": "⬅️ Бозгашт",
		"KG": "⬅️ Артка",
	},
	"home": {
		"RU": "🏠 В меню",
		"EN": "🏠 Home",
		"UZ": "🏠 Bosh menyu",
		"TJ": "🏠 Меню",
		"KG": "🏠 Башкы меню",
	},
	"search": {
		"RU": "🔎 Поиск",
		"EN": "🔎 Search",
		"UZ": "🔎 Qidirish",
		"TJ": "🔎 Ҷустуҷӯ",
		"KG": "🔎 Издөө",
	},
	"rem_add": {
		"RU": "➕ Создать напоминание",
		"EN": "➕ New reminder",
		"UZ": "➕ Eslatma qo‘shish",
		"TJ": "➕ Ёдраскунии нав",
		"KG": "➕ Эскертме түзүү",
	},
	"daily_on": {
		"RU": "📅 Включить дайджест",
		"EN": "📅 Enable digest",
		"UZ": "📅 Dayjest yoqish",
		"TJ": "📅 Дайджестро фаъол кардан",
		"KG": "📅 Дайджестти күйгүзүү",
	},
	"daily_off": {
		"RU": "❌ Выключить дайджест",
		"EN": "❌ Disable digest",
		"UZ": "❌ Dayjest o‘chirish",
		"TJ": "❌ Дайджестро хомӯш кардан",
		"KG": "❌ Дайджестти өчүрүү",
	},
	"share_phone": {
		"RU": "📱 Отправить номер телефона",
		"EN": "📱 Share phone number",
		"UZ": "📱 Telefon raqamini yuborish",
		"TJ": "📱 Рақами телефонро фиристед",
		"KG": "📱 Телефон номерин жөнөтүү",
	},
	"admin_list": {
		"RU": "📋 Список материалов",
		"EN": "📋 Materials list",
	},
	"admin_add": {
		"RU": "➕ Добавить материал",
		"EN": "➕ Add material",
	},
	"admin_edit": {
		"RU": "✏️ Редактировать материал",
		"EN": "✏️ Edit material",
	},
	"admin_del": {
		"RU": "🗑 Удалить материал",
		"EN": "🗑 Delete material",
	},
}

// btnLabel returns a button's label for lang, falling back to English.
func btnLabel(lang, key string) string {
	if m, ok := buttons[key]; ok {
		if l, ok := m[lang]; ok {
			return l
		}
		return m["EN"]
	}
	return key
}

// buttonKey maps an incoming text to a button key, across all languages.
func buttonKey(text string) (string, bool) {
	for key, langs := range buttons {
		for _, label := range langs {
			if label == text {
				return key, true
			}
		}
	}
	return "", false
}

// roleLabels maps language to canonical role token to localized label.
var roleLabels = map[string]map[string]string{
	"RU": {domain.RoleCourier: "Курьер", domain.RolePicker: "Сборщик"},
	"EN": {domain.RoleCourier: "Courier", domain.RolePicker: "Picker"},
	"UZ": {domain.RoleCourier: "Kuryer", domain.RolePicker: "Yig‘uvchi"},
	"TJ": {domain.RoleCourier: "Курьер", domain.RolePicker: "Ҷамъоварӣ"},
	"KG": {domain.RoleCourier: "Курьер", domain.RolePicker: "Терүүчү"},
}

// shopLabels maps language to canonical shop id to localized label.
var shopLabels = map[string]map[string]string{
	"RU": {"Sheremetyevskaya": "Шереметьевская", "Tallinskoye": "Таллинское"},
	"EN": {"Sheremetyevskaya": "Sheremetyevskaya", "Tallinskoye": "Tallinskoye"},
	"UZ": {"Sheremetyevskaya": "Sheremetyevskaya", "Tallinskoye": "Tallinskoye"},
	"TJ": {"Sheremetyevskaya": "Шереметьевская", "Tallinskoye": "Таллинское"},
	"KG": {"Sheremetyevskaya": "Шереметьевская", "Tallinskoye": "Таллинское"},
}

// roleFromLabel resolves a localized role button text to its canonical token.
// Free text that matches no offered label is rejected.
func roleFromLabel(text string) (string, bool) {
	for _, labels := range roleLabels {
		for canon, label := range labels {
			if label == text {
				return canon, true
			}
		}
	}
	return "", false
}

// shopFromLabel resolves a localized shop button text to its canonical id.
func shopFromLabel(text string) (string, bool) {
	for _, labels := range shopLabels {
		for canon, label := range labels {
			if label == text {
				return canon, true
			}
		}
	}
	return "", false
}

// Message catalog. EN and RU only; other languages fall back to EN. The full
// catalog lives with the product team and is out of scope here.
var messages = map[string]map[string]string{
	"welcome": {
		"EN": "Hi! I'm the shop crew assistant.\n\nChoose a language 👇",
		"RU": "Привет! Я помощник для сотрудников точки.\n\nВыберите язык 👇",
	},
	"choose_language": {
		"EN": "Choose a language:",
		"RU": "Выберите язык:",
	},
	"phone_prompt": {
		"EN": "To register, share your phone number using the button below 👇",
		"RU": "Для регистрации отправьте номер телефона кнопкой ниже 👇",
	},
	"phone_saved": {
		"EN": "✅ Phone number saved.",
		"RU": "✅ Номер сохранён.",
	},
	"phone_invalid": {
		"EN": "Please share your phone using the button.",
		"RU": "Пожалуйста, отправьте номер через кнопку.",
	},
	"role_prompt": {
		"EN": "Choose your role:",
		"RU": "Выберите вашу роль:",
	},
	"role_confirm": {
		"EN": "Your role is confirmed: %s",
		"RU": "Ваша роль подтверждена: %s",
	},
	"choose_shop": {
		"EN": "Select your shop:",
		"RU": "Выберите вашу торговую точку:",
	},
	"main_menu": {
		"EN": "Choose an action in the menu 👇",
		"RU": "Выберите действие в меню 👇",
	},
	"banned": {
		"EN": "⛔ You don't have access. Contact an admin.",
		"RU": "⛔ Вам недоступен бот. Свяжитесь с администратором.",
	},
	"generic_error": {
		"EN": "Something went wrong. Please try again later.",
		"RU": "Что-то пошло не так. Попробуйте позже.",
	},
	"kb_menu": {
		"EN": "📚 Training / FAQ\n\nPick a topic below or press “🔎 Search”.",
		"RU": "📚 Обучалки / FAQ\n\nВыберите тему кнопкой ниже или нажмите «🔎 Поиск».",
	},
	"kb_search_prompt": {
		"EN": "Type your query to search the materials:",
		"RU": "Введите запрос для поиска по материалам:",
	},
	"kb_not_found": {
		"EN": "Nothing found. Try different words.",
		"RU": "Ничего не найдено. Попробуйте другие слова.",
	},
	"kb_found_header": {
		"EN": "Found materials:",
		"RU": "Найденные материалы:",
	},
	"kb_no_materials": {
		"EN": "No materials yet.",
		"RU": "Материалов пока нет.",
	},
	"feedback_prompt": {
		"EN": "Send your feedback in one message:",
		"RU": "Отправьте ваш отзыв одним сообщением:",
	},
	"feedback_thanks": {
		"EN": "Thanks! Feedback saved ✅",
		"RU": "Спасибо! Отзыв записан ✅",
	},
	"reminders_menu": {
		"EN": "⏰ Reminders\n\nCreate a one-shot reminder or manage the daily digest.",
		"RU": "⏰ Напоминания\n\nСоздайте напоминание или управляйте дайджестом.",
	},
	"reminder_ask_minutes": {
		"EN": "In how many minutes should I remind you? Send a number.",
		"RU": "Через сколько минут напомнить? Отправьте число.",
	},
	"reminder_ask_text": {
		"EN": "What should the reminder say?",
		"RU": "Что написать в напоминании?",
	},
	"reminder_set": {
		"EN": "Reminder set ⏰",
		"RU": "Напоминание создано ⏰",
	},
	"reminder_push": {
		"EN": "⏰ Reminder:\n%s",
		"RU": "⏰ Напоминание:\n%s",
	},
	"digest_push": {
		"EN": "🗞 %s",
		"RU": "🗞 %s",
	},
	"daily_on": {
		"EN": "Daily digest enabled 📅",
		"RU": "Дайджест включён 📅",
	},
	"daily_off": {
		"EN": "Daily digest disabled ❌",
		"RU": "Дайджест выключен ❌",
	},
	"lang_updated": {
		"EN": "Language updated!",
		"RU": "Язык успешно обновлён!",
	},
	"admin_no_access": {
		"EN": "Admin access required. Your id: %d",
		"RU": "Нужны права администратора. Ваш id: %d",
	},
	"storage_error": {
		"EN": "Could not save that. Please try again later.",
		"RU": "Не удалось сохранить. Попробуйте позже.",
	},
	"not_found": {
		"EN": "Not found.",
		"RU": "Не найдено.",
	},
	"article_ask_title": {
		"EN": "Send the article title:",
		"RU": "Отправьте заголовок материала:",
	},
	"article_ask_body": {
		"EN": "Send the article body:",
		"RU": "Отправьте текст материала:",
	},
	"article_ask_tags": {
		"EN": "Send tags, comma-separated (or \"-\" for none):",
		"RU": "Отправьте теги через запятую (или \"-\" если без тегов):",
	},
	"article_ask_id": {
		"EN": "Send the article id (a number):",
		"RU": "Отправьте id материала (число):",
	},
	"article_ask_new_title": {
		"EN": "Send a new title, or \"-\" to keep the current one:",
		"RU": "Отправьте новый заголовок или \"-\", чтобы оставить текущий:",
	},
	"article_ask_new_body": {
		"EN": "Send a new body, or \"-\" to keep the current one:",
		"RU": "Отправьте новый текст или \"-\", чтобы оставить текущий:",
	},
	"article_ask_new_tags": {
		"EN": "Send new tags, or \"-\" to keep the current ones:",
		"RU": "Отправьте новые теги или \"-\", чтобы оставить текущие:",
	},
	"article_added": {
		"EN": "Article added, id %d ✅",
		"RU": "Материал добавлен, id %d ✅",
	},
	"article_deleted": {
		"EN": "Article deleted ✅",
		"RU": "Материал удалён ✅",
	},
	"article_updated": {
		"EN": "Article updated ✅",
		"RU": "Материал обновлён ✅",
	},
	"body_missing": {
		"EN": "This material is still being prepared.",
		"RU": "Материал пока готовится.",
	},
	"links_none": {
		"EN": "Register a shop to get its links.",
		"RU": "Выберите точку при регистрации, чтобы получить ссылки.",
	},
}

// msgText returns the message for key in lang, falling back to English.
func msgText(lang, key string) string {
	m, ok := messages[key]
	if !ok {
		return key
	}
	if t, ok := m[lang]; ok {
		return t
	}
	return m["EN"]
}

// linksText returns the per-shop link sheet shown under the Links screen.
func linksText(shop string) string {
	switch shop {
	case "Sheremetyevskaya":
		return "Crew chat: https://t.me/+crew_sher\n" +
			"News channel: https://t.me/+shop_news\n" +
			"Pickup chat: https://t.me/+pickup_sher\n" +
			"Partner hotline: +7 800 000-00-00\n" +
			"Partner portal: https://partner.example.com/"
	case "Tallinskoye":
		return "Crew chat: https://t.me/+crew_tal\n" +
			"News channel: https://t.me/+shop_news\n" +
			"Pickup chat: https://t.me/+pickup_tal\n" +
			"Partner hotline: +7 800 000-00-00\n" +
			"Partner portal: https://partner.example.com/"
	default:
		return ""
	}
}

// contactsText returns the supervisor contact card for a shop. Tallinskoye
// additionally lists the shift lead.
func contactsText(shop string) string {
	base := "Supervisor:\nE. Petrova\nTelegram: @supervisor_ep\nPhone: +7 900 000-00-01\nDays off: Saturday and Sunday"
	if shop == "Tallinskoye" {
		return base + "\n\nShift lead:\nM. Kostrova\nTelegram: @shiftlead_mk"
	}
	return base
}
