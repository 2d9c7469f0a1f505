package handlers

import (
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"lingopost-bot/internal/database/models"
	"lingopost-bot/internal/locales"
)

const (
	subscriptionURL     = "https://t.me/lingopost_billing"
	developerContactURL = "https://t.me/lingopost_support"
)

func label(localizer *i18n.Localizer, key string) string {
	return locales.GetMessage(localizer, key, nil, nil)
}

func registerKeyboard(localizer *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnRegister")).WithCallbackData(string(CallbackRegisterUser)),
		),
	)
}

// contactKeyboard is the only reply keyboard the bot uses: a one-time
// request-contact prompt.
func contactKeyboard(localizer *i18n.Localizer) *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(
		tu.KeyboardRow(
			tu.KeyboardButton(label(localizer, "BtnSharePhone")).WithRequestContact(),
		),
	).WithResizeKeyboard().WithOneTimeKeyboard()
}

func becomeAdminKeyboard(localizer *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnBecomeAdmin")).WithCallbackData(string(CallbackBecomeAdmin)),
		),
	)
}

func subscriptionKeyboard(localizer *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnSubscribe")).WithURL(subscriptionURL),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnContactDeveloper")).WithURL(developerContactURL),
		),
	)
}

func mainMenuKeyboard(localizer *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnAdminPanel")).WithCallbackData(string(CallbackAdminPanel)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnAboutBot")).WithCallbackData(string(CallbackAboutBot)),
		),
	)
}

func adminPanelKeyboard(localizer *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnAddChannel")).WithCallbackData(string(CallbackAddChannel)),
			tu.InlineKeyboardButton(label(localizer, "BtnDeleteChannel")).WithCallbackData(string(CallbackDeleteChannel)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnListChannels")).WithCallbackData(string(CallbackListChannels)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnSettings")).WithCallbackData(string(CallbackSettings)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnBack")).WithCallbackData(string(CallbackGoBack)),
		),
	)
}

func settingsKeyboard(localizer *i18n.Localizer, mainChannelName string, autoTranslateOn bool) *telego.InlineKeyboardMarkup {
	mainLabel := locales.GetMessage(localizer, "BtnMainChannel", map[string]interface{}{
		"Name": mainChannelName,
	}, nil)

	toggleKey := "BtnAutoTranslateOff"
	if autoTranslateOn {
		toggleKey = "BtnAutoTranslateOn"
	}

	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(mainLabel).WithCallbackData(string(CallbackSelectMainChannel)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, toggleKey)).WithCallbackData(string(CallbackToggleAutoTranslate)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnStatistics")).WithCallbackData(string(CallbackStatistics)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnBack")).WithCallbackData(string(CallbackAdminPanel)),
		),
	)
}

// channelPickKeyboard lists the user's channels one per row, each producing a
// suffixed callback, with a back button to the given menu.
func channelPickKeyboard(localizer *i18n.Localizer, channels []models.Channel, action CallbackAction, back CallbackAction) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(ch.Name).WithCallbackData(CallbackData(action, ch.ChatID)),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(label(localizer, "BtnBack")).WithCallbackData(string(back)),
	))
	return tu.InlineKeyboard(rows...)
}

func confirmDeleteKeyboard(localizer *i18n.Localizer, chatID int64) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnConfirmDelete")).WithCallbackData(CallbackData(CallbackDelete, chatID)),
			tu.InlineKeyboardButton(label(localizer, "BtnBack")).WithCallbackData(string(CallbackDeleteChannel)),
		),
	)
}

func backKeyboard(localizer *i18n.Localizer, back CallbackAction) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnBack")).WithCallbackData(string(back)),
		),
	)
}
