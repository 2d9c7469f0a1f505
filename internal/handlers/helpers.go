package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"lingopost-bot/internal/database"
	"lingopost-bot/internal/locales"
	telegoapi "lingopost-bot/pkg/telegoapi"
)

// sendError logs the original error and shows the user a generic localized
// message. The original error is returned for the update loop to report.
func (h *MessageHandler) sendError(ctx context.Context, bot telegoapi.BotAPI, chatID int64, originalErr error) error {
	log.Printf("Error for user in chat %d: %v", chatID, originalErr)

	localizer := locales.NewLocalizer(locales.DefaultLanguage)
	errMsg := locales.GetMessage(localizer, "MsgErrorGeneral", nil, nil)

	_, sendErr := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), errMsg))
	if sendErr != nil {
		log.Printf("Error sending generic error message to chat %d: %v", chatID, sendErr)
	}
	return originalErr
}

// getLocalizer picks a localizer from the user's Telegram language code.
func (h *MessageHandler) getLocalizer(user *telego.User) *i18n.Localizer {
	lang := locales.DefaultLanguage
	if user != nil && user.LanguageCode != "" {
		lang = user.LanguageCode
	}
	return locales.NewLocalizer(lang)
}

// isRegistered reports whether the user has completed registration.
func (h *MessageHandler) isRegistered(ctx context.Context, userID int64) (bool, error) {
	_, err := h.userRepo.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// sendMenu sends a new HTML message, optionally with a keyboard.
func (h *MessageHandler) sendMenu(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string, markup telego.ReplyMarkup) error {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if markup != nil {
		params.ReplyMarkup = markup
	}
	_, err := bot.SendMessage(ctx, params)
	return err
}

// editMenu replaces the text and keyboard of the message a callback button
// lives on. When the message is inaccessible, or the edit is rejected, a
// fresh message is sent instead.
func (h *MessageHandler) editMenu(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, text string, markup *telego.InlineKeyboardMarkup) error {
	message, ok := query.Message.(*telego.Message)
	if !ok || message == nil {
		var fallback telego.ReplyMarkup
		if markup != nil {
			fallback = markup
		}
		return h.sendMenu(ctx, bot, query.From.ID, text, fallback)
	}

	_, err := bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:      tu.ID(message.Chat.ID),
		MessageID:   message.MessageID,
		Text:        text,
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.Printf("Error editing menu message %d in chat %d: %v", message.MessageID, message.Chat.ID, err)
		var fallback telego.ReplyMarkup
		if markup != nil {
			fallback = markup
		}
		return h.sendMenu(ctx, bot, message.Chat.ID, text, fallback)
	}
	return nil
}
