package handlers

import (
	"context"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"lingopost-bot/internal/locales"
	telegoapi "lingopost-bot/pkg/telegoapi"
)

// HandleStart greets the user. A registered user gets the main menu; an
// unregistered one gets the welcome message with a register button. The user
// row is never re-created on a repeated /start.
func (h *MessageHandler) HandleStart(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	if message.From == nil {
		return nil
	}

	registered, err := h.isRegistered(ctx, message.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, chatID, err)
	}

	if registered {
		h.clearFlow(message.From.ID)
		text := locales.GetMessage(localizer, "MsgAlreadyRegistered", nil, nil)
		return h.sendMenu(ctx, bot, chatID, text, mainMenuKeyboard(localizer))
	}

	text := locales.GetMessage(localizer, "MsgWelcome", nil, nil)
	return h.sendMenu(ctx, bot, chatID, text, registerKeyboard(localizer))
}

// HandleAdmin opens the admin panel for configured or promoted admins.
func (h *MessageHandler) HandleAdmin(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	if message.From == nil {
		return nil
	}

	isAdmin, err := h.adminGate.IsAdmin(ctx, message.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, chatID, err)
	}
	if !isAdmin {
		text := locales.GetMessage(localizer, "MsgErrorRequiresAdmin", nil, nil)
		_, err = bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
		return err
	}

	text := locales.GetMessage(localizer, "MsgAdminPanel", nil, nil)
	return h.sendMenu(ctx, bot, chatID, text, adminPanelKeyboard(localizer))
}
