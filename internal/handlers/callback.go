package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"lingopost-bot/internal/database"
	"lingopost-bot/internal/database/models"
	"lingopost-bot/internal/locales"
	telegoapi "lingopost-bot/pkg/telegoapi"
)

// HandleCallbackQuery acknowledges the callback and routes it to the matching
// menu action.
func (h *MessageHandler) HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	ack := &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID}
	if err := bot.AnswerCallbackQuery(ctx, ack); err != nil {
		log.Printf("Error answering callback query %s: %v", query.ID, err)
	}

	localizer := h.getLocalizer(&query.From)

	callback, err := ParseCallback(query.Data)
	if err != nil {
		log.Printf("Callback query %s not processed. Data: %s, error: %v", query.ID, query.Data, err)
		text := locales.GetMessage(localizer, "MsgCallbackNotHandled", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackGoBack))
	}

	switch callback.Action {
	case CallbackRegisterUser:
		return h.handleRegisterUser(ctx, bot, query, localizer)
	case CallbackBecomeAdmin:
		return h.handleBecomeAdmin(ctx, bot, query, localizer)
	case CallbackAdminPanel:
		return h.handleAdminPanel(ctx, bot, query, localizer)
	case CallbackGoBack:
		text := locales.GetMessage(localizer, "MsgMainMenu", nil, nil)
		return h.editMenu(ctx, bot, query, text, mainMenuKeyboard(localizer))
	case CallbackAboutBot:
		text := locales.GetMessage(localizer, "MsgAboutBot", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackGoBack))
	case CallbackSettings:
		return h.showSettings(ctx, bot, query, localizer)
	case CallbackToggleAutoTranslate:
		return h.handleToggleAutoTranslate(ctx, bot, query, localizer)
	case CallbackStatistics:
		return h.handleStatistics(ctx, bot, query, localizer)
	case CallbackSelectMainChannel:
		return h.handleSelectMainChannel(ctx, bot, query, localizer)
	case CallbackSetMain:
		return h.handleSetMain(ctx, bot, query, localizer, callback.Arg)
	case CallbackAddChannel:
		return h.handleAddChannel(ctx, bot, query, localizer)
	case CallbackDeleteChannel:
		return h.handleDeleteChannel(ctx, bot, query, localizer)
	case CallbackConfirmDelete:
		return h.handleConfirmDelete(ctx, bot, query, localizer, callback.Arg)
	case CallbackDelete:
		return h.handleDelete(ctx, bot, query, localizer, callback.Arg)
	case CallbackListChannels:
		return h.handleListChannels(ctx, bot, query, localizer)
	default:
		text := locales.GetMessage(localizer, "MsgCallbackNotHandled", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackGoBack))
	}
}

// requireAdmin gates an action on admin membership. It returns false after
// informing the user when the gate fails.
func (h *MessageHandler) requireAdmin(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) (bool, error) {
	isAdmin, err := h.adminGate.IsAdmin(ctx, query.From.ID)
	if err != nil {
		return false, h.sendError(ctx, bot, query.From.ID, err)
	}
	if !isAdmin {
		text := locales.GetMessage(localizer, "MsgErrorRequiresAdmin", nil, nil)
		return false, h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackGoBack))
	}
	return true, nil
}

func (h *MessageHandler) handleRegisterUser(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	registered, err := h.isRegistered(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if registered {
		text := locales.GetMessage(localizer, "MsgAlreadyRegistered", nil, nil)
		return h.editMenu(ctx, bot, query, text, mainMenuKeyboard(localizer))
	}

	h.setFlow(query.From.ID, &pendingFlow{state: stateAwaitingContact})

	// The contact prompt needs a reply keyboard, which cannot be attached
	// through an edit.
	text := locales.GetMessage(localizer, "MsgSharePhonePrompt", nil, nil)
	params := tu.Message(tu.ID(query.From.ID), text)
	params.ReplyMarkup = contactKeyboard(localizer)
	_, err = bot.SendMessage(ctx, params)
	return err
}

func (h *MessageHandler) handleBecomeAdmin(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	registered, err := h.isRegistered(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if !registered {
		text := locales.GetMessage(localizer, "MsgErrorNotRegistered", nil, nil)
		return h.editMenu(ctx, bot, query, text, registerKeyboard(localizer))
	}

	free, err := h.adminGate.HasFreeSeat(ctx)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if !free {
		text := locales.GetMessage(localizer, "MsgAdminSeatsFull", nil, nil)
		return h.editMenu(ctx, bot, query, text, subscriptionKeyboard(localizer))
	}

	if err := h.userRepo.SetAdmin(ctx, query.From.ID); err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	text := locales.GetMessage(localizer, "MsgAdminGranted", nil, nil)
	return h.editMenu(ctx, bot, query, text, mainMenuKeyboard(localizer))
}

func (h *MessageHandler) handleAdminPanel(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}
	text := locales.GetMessage(localizer, "MsgAdminPanel", nil, nil)
	return h.editMenu(ctx, bot, query, text, adminPanelKeyboard(localizer))
}

// mainChannelName resolves the display name of the user's main channel.
func (h *MessageHandler) mainChannelName(ctx context.Context, userID int64, localizer *i18n.Localizer) (string, error) {
	unset := locales.GetMessage(localizer, "BtnMainChannelUnset", nil, nil)

	value, err := h.settingRepo.Get(ctx, userID, models.SettingMainChannelID)
	if errors.Is(err, database.ErrNotFound) || (err == nil && value == "") {
		return unset, nil
	}
	if err != nil {
		return "", err
	}
	mainID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return unset, nil
	}

	channels, err := h.channelRepo.ListChannels(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.ChatID == mainID {
			return ch.Name, nil
		}
	}
	return unset, nil
}

func (h *MessageHandler) showSettings(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	mainName, err := h.mainChannelName(ctx, query.From.ID, localizer)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}

	autoOn := false
	value, err := h.settingRepo.Get(ctx, query.From.ID, models.SettingAutoTranslate)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if err == nil {
		autoOn = value == "1"
	}

	text := locales.GetMessage(localizer, "MsgSettings", map[string]interface{}{
		"MainChannel": mainName,
	}, nil)
	return h.editMenu(ctx, bot, query, text, settingsKeyboard(localizer, mainName, autoOn))
}

func (h *MessageHandler) handleToggleAutoTranslate(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	current := "0"
	value, err := h.settingRepo.Get(ctx, query.From.ID, models.SettingAutoTranslate)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if err == nil {
		current = value
	}

	next := "1"
	confirmKey := "MsgAutoTranslateEnabled"
	if current == "1" {
		next = "0"
		confirmKey = "MsgAutoTranslateDisabled"
	}
	if err := h.settingRepo.Set(ctx, query.From.ID, models.SettingAutoTranslate, next); err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}

	mainName, err := h.mainChannelName(ctx, query.From.ID, localizer)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	text := locales.GetMessage(localizer, confirmKey, nil, nil)
	return h.editMenu(ctx, bot, query, text, settingsKeyboard(localizer, mainName, next == "1"))
}

// statisticsOwner decides whose counters the caller sees: the owner of the
// caller's main channel when one is set, otherwise the caller.
func (h *MessageHandler) statisticsOwner(ctx context.Context, userID int64) (int64, error) {
	value, err := h.settingRepo.Get(ctx, userID, models.SettingMainChannelID)
	if errors.Is(err, database.ErrNotFound) || (err == nil && value == "") {
		return userID, nil
	}
	if err != nil {
		return 0, err
	}
	mainID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return userID, nil
	}
	owner, err := h.channelRepo.FindOwner(ctx, mainID)
	if errors.Is(err, database.ErrNotFound) {
		return userID, nil
	}
	if err != nil {
		return 0, err
	}
	return owner, nil
}

func (h *MessageHandler) handleStatistics(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	owner, err := h.statisticsOwner(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	stats, err := h.statsRepo.Get(ctx, owner)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}

	if stats.MessagesSent == 0 && stats.WordsTranslated == 0 && stats.CharactersTranslated == 0 {
		text := locales.GetMessage(localizer, "MsgStatsOwnerOnly", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackSettings))
	}

	text := locales.GetMessage(localizer, "MsgStatistics", map[string]interface{}{
		"Messages":   stats.MessagesSent,
		"Words":      stats.WordsTranslated,
		"Characters": stats.CharactersTranslated,
	}, nil)
	return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackSettings))
}

func (h *MessageHandler) handleSelectMainChannel(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	channels, err := h.channelRepo.ListChannels(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if len(channels) == 0 {
		text := locales.GetMessage(localizer, "MsgNoChannels", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackSettings))
	}

	text := locales.GetMessage(localizer, "MsgSelectMainChannel", nil, nil)
	return h.editMenu(ctx, bot, query, text, channelPickKeyboard(localizer, channels, CallbackSetMain, CallbackSettings))
}

func (h *MessageHandler) handleSetMain(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer, chatID int64) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	channels, err := h.channelRepo.ListChannels(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	var name string
	for _, ch := range channels {
		if ch.ChatID == chatID {
			name = ch.Name
			break
		}
	}
	if name == "" {
		text := locales.GetMessage(localizer, "MsgErrorChannelNotFound", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackSettings))
	}

	value := strconv.FormatInt(chatID, 10)
	if err := h.settingRepo.Set(ctx, query.From.ID, models.SettingMainChannelID, value); err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}

	text := locales.GetMessage(localizer, "MsgMainChannelSet", map[string]interface{}{
		"Name": name,
	}, nil)
	return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackSettings))
}

func (h *MessageHandler) handleAddChannel(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}
	registered, err := h.isRegistered(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if !registered {
		text := locales.GetMessage(localizer, "MsgErrorNotRegistered", nil, nil)
		return h.editMenu(ctx, bot, query, text, registerKeyboard(localizer))
	}

	h.setFlow(query.From.ID, &pendingFlow{state: stateAwaitingForward})
	text := locales.GetMessage(localizer, "MsgForwardChannelPrompt", nil, nil)
	return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackAdminPanel))
}

func (h *MessageHandler) handleDeleteChannel(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	channels, err := h.channelRepo.ListChannels(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if len(channels) == 0 {
		text := locales.GetMessage(localizer, "MsgNoChannels", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackAdminPanel))
	}

	text := locales.GetMessage(localizer, "MsgSelectDeleteChannel", nil, nil)
	return h.editMenu(ctx, bot, query, text, channelPickKeyboard(localizer, channels, CallbackConfirmDelete, CallbackAdminPanel))
}

func (h *MessageHandler) handleConfirmDelete(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer, chatID int64) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	channels, err := h.channelRepo.ListChannels(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	var name string
	for _, ch := range channels {
		if ch.ChatID == chatID {
			name = ch.Name
			break
		}
	}
	if name == "" {
		text := locales.GetMessage(localizer, "MsgErrorChannelNotFound", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackDeleteChannel))
	}

	text := locales.GetMessage(localizer, "MsgConfirmDelete", map[string]interface{}{
		"Name": name,
	}, nil)
	return h.editMenu(ctx, bot, query, text, confirmDeleteKeyboard(localizer, chatID))
}

func (h *MessageHandler) handleDelete(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer, chatID int64) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	err = h.channelRepo.DeleteChannel(ctx, query.From.ID, chatID)
	if errors.Is(err, database.ErrNotFound) {
		text := locales.GetMessage(localizer, "MsgErrorChannelNotFound", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackAdminPanel))
	}
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}

	remaining, err := h.channelRepo.ListChannels(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	deleted := locales.GetMessage(localizer, "MsgChannelDeleted", nil, nil)
	if len(remaining) == 0 {
		text := deleted + "\n\n" + locales.GetMessage(localizer, "MsgNoChannelsLeft", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackAdminPanel))
	}
	text := deleted + "\n\n" + locales.GetMessage(localizer, "MsgSelectDeleteChannel", nil, nil)
	return h.editMenu(ctx, bot, query, text, channelPickKeyboard(localizer, remaining, CallbackConfirmDelete, CallbackAdminPanel))
}

func (h *MessageHandler) handleListChannels(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery, localizer *i18n.Localizer) error {
	ok, err := h.requireAdmin(ctx, bot, query, localizer)
	if !ok {
		return err
	}

	channels, err := h.channelRepo.ListChannels(ctx, query.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, query.From.ID, err)
	}
	if len(channels) == 0 {
		text := locales.GetMessage(localizer, "MsgNoChannels", nil, nil)
		return h.editMenu(ctx, bot, query, text, backKeyboard(localizer, CallbackAdminPanel))
	}

	var mainID int64
	if value, err := h.settingRepo.Get(ctx, query.From.ID, models.SettingMainChannelID); err == nil {
		mainID, _ = strconv.ParseInt(value, 10, 64)
	}

	var b strings.Builder
	b.WriteString(locales.GetMessage(localizer, "MsgChannelList", nil, nil))
	b.WriteString("\n")
	for _, ch := range channels {
		marker := "•"
		if ch.ChatID == mainID {
			marker = "👑"
		}
		fmt.Fprintf(&b, "\n%s %s (%s)", marker, ch.Name, ch.Language)
	}
	return h.editMenu(ctx, bot, query, b.String(), backKeyboard(localizer, CallbackAdminPanel))
}
