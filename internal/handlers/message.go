package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"lingopost-bot/internal/database"
	"lingopost-bot/internal/database/models"
	"lingopost-bot/internal/locales"
	"lingopost-bot/internal/translate"
	telegoapi "lingopost-bot/pkg/telegoapi"
)

// HandleMessage routes a non-command private message through the user's
// dialog state: contact sharing during registration, the forwarded channel
// message and the language code during channel registration.
func (h *MessageHandler) HandleMessage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if message.From == nil {
		return nil
	}
	localizer := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	flow := h.flow(message.From.ID)
	if flow == nil {
		text := locales.GetMessage(localizer, "MsgErrorUnknownCommand", nil, nil)
		return h.sendMenu(ctx, bot, chatID, text, nil)
	}

	switch flow.state {
	case stateAwaitingContact:
		return h.handleContactStep(ctx, bot, message)
	case stateAwaitingForward:
		return h.handleForwardStep(ctx, bot, message, flow)
	case stateAwaitingLanguage:
		return h.handleLanguageStep(ctx, bot, message, flow)
	default:
		h.clearFlow(message.From.ID)
		return nil
	}
}

func (h *MessageHandler) handleContactStep(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	if message.Contact == nil {
		text := locales.GetMessage(localizer, "MsgSharePhonePrompt", nil, nil)
		params := tu.Message(tu.ID(chatID), text)
		params.ReplyMarkup = contactKeyboard(localizer)
		_, err := bot.SendMessage(ctx, params)
		return err
	}

	user := &models.User{
		UserID:      message.From.ID,
		Username:    message.From.Username,
		PhoneNumber: message.Contact.PhoneNumber,
	}
	if err := h.userRepo.CreateUser(ctx, user); err != nil {
		return h.sendError(ctx, bot, chatID, err)
	}
	h.clearFlow(message.From.ID)

	text := locales.GetMessage(localizer, "MsgRegistered", map[string]interface{}{
		"PhoneNumber": message.Contact.PhoneNumber,
	}, nil)
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	params.ReplyMarkup = &telego.ReplyKeyboardRemove{RemoveKeyboard: true}
	if _, err := bot.SendMessage(ctx, params); err != nil {
		return err
	}

	prompt := locales.GetMessage(localizer, "MsgBecomeAdminPrompt", nil, nil)
	return h.sendMenu(ctx, bot, chatID, prompt, becomeAdminKeyboard(localizer))
}

func (h *MessageHandler) handleForwardStep(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, flow *pendingFlow) error {
	localizer := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	if message.ForwardOrigin == nil {
		text := locales.GetMessage(localizer, "MsgErrorNotForwarded", nil, nil)
		return h.sendMenu(ctx, bot, chatID, text, nil)
	}
	origin, ok := message.ForwardOrigin.(*telego.MessageOriginChannel)
	if !ok {
		text := locales.GetMessage(localizer, "MsgErrorNotChannel", nil, nil)
		return h.sendMenu(ctx, bot, chatID, text, nil)
	}

	flow.state = stateAwaitingLanguage
	flow.chatID = origin.Chat.ID
	flow.name = origin.Chat.Title
	h.setFlow(message.From.ID, flow)

	text := locales.GetMessage(localizer, "MsgChannelFound", map[string]interface{}{
		"Name":      flow.name,
		"ChatID":    flow.chatID,
		"Languages": translate.SupportedLanguageList(),
	}, nil)
	return h.sendMenu(ctx, bot, chatID, text, nil)
}

func (h *MessageHandler) handleLanguageStep(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, flow *pendingFlow) error {
	localizer := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	lang := strings.ToUpper(strings.TrimSpace(message.Text))
	if !translate.IsSupported(lang) {
		text := locales.GetMessage(localizer, "MsgErrorBadLanguage", map[string]interface{}{
			"Languages": translate.SupportedLanguageList(),
		}, nil)
		return h.sendMenu(ctx, bot, chatID, text, nil)
	}

	channel := &models.Channel{
		UserID:   message.From.ID,
		Name:     flow.name,
		ChatID:   flow.chatID,
		Language: lang,
	}
	err := h.channelRepo.AddChannel(ctx, channel)
	if errors.Is(err, database.ErrDuplicateChannel) {
		h.clearFlow(message.From.ID)
		text := locales.GetMessage(localizer, "MsgErrorChannelDuplicate", nil, nil)
		return h.sendMenu(ctx, bot, chatID, text, nil)
	}
	if err != nil {
		return h.sendError(ctx, bot, chatID, err)
	}
	h.clearFlow(message.From.ID)

	text := locales.GetMessage(localizer, "MsgChannelAdded", map[string]interface{}{
		"Name":     channel.Name,
		"ChatID":   channel.ChatID,
		"Language": channel.Language,
	}, nil)
	return h.sendMenu(ctx, bot, chatID, text, backKeyboard(localizer, CallbackAdminPanel))
}
