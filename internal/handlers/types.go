package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/mymmrac/telego"

	"lingopost-bot/internal/database"
	telegoapi "lingopost-bot/pkg/telegoapi"
)

// userState marks where a user currently is in a multi-step dialog.
type userState int

const (
	stateIdle userState = iota
	// stateAwaitingContact: registration started, waiting for the shared
	// phone number.
	stateAwaitingContact
	// stateAwaitingForward: add-channel started, waiting for a forwarded
	// channel message.
	stateAwaitingForward
	// stateAwaitingLanguage: channel identified, waiting for its language
	// code.
	stateAwaitingLanguage
)

// pendingFlow carries the dialog state plus the channel captured between the
// forward and language steps.
type pendingFlow struct {
	state  userState
	chatID int64
	name   string
}

// AdminGate combines admin membership and free-seat checks.
type AdminGate interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	HasFreeSeat(ctx context.Context) (bool, error)
}

// Command maps a bot command string to its description key and handler.
type Command struct {
	Command     string
	Description string
	Handler     func(context.Context, telegoapi.BotAPI, telego.Message) error
}

// MessageHandler handles incoming Telegram messages and callback queries:
// registration, admin promotion, channel management, settings and statistics.
type MessageHandler struct {
	userRepo    database.UserRepository
	channelRepo database.ChannelRepository
	settingRepo database.SettingRepository
	statsRepo   database.StatsRepository
	adminGate   AdminGate

	// flows stores the per-user dialog state.
	// Key: userID (int64), Value: *pendingFlow
	flows sync.Map

	commands []Command
}

// NewMessageHandler creates and initializes a new MessageHandler instance.
func NewMessageHandler(
	userRepo database.UserRepository,
	channelRepo database.ChannelRepository,
	settingRepo database.SettingRepository,
	statsRepo database.StatsRepository,
	adminGate AdminGate,
) *MessageHandler {
	if adminGate == nil {
		log.Fatal("MessageHandler: admin gate dependency is nil")
	}
	h := &MessageHandler{
		userRepo:    userRepo,
		channelRepo: channelRepo,
		settingRepo: settingRepo,
		statsRepo:   statsRepo,
		adminGate:   adminGate,
	}
	h.commands = []Command{
		{Command: "start", Description: "CmdStartDesc", Handler: h.HandleStart},
		{Command: "admin", Description: "CmdAdminDesc", Handler: h.HandleAdmin},
	}
	return h
}

// Commands returns the list of bot commands for command-menu registration.
func (h *MessageHandler) Commands() []Command {
	return h.commands
}

// GetCommandHandler retrieves the handler for a command string (e.g. "start").
// It returns nil if the command is not found.
func (h *MessageHandler) GetCommandHandler(command string) func(context.Context, telegoapi.BotAPI, telego.Message) error {
	for _, cmd := range h.commands {
		if cmd.Command == command {
			return cmd.Handler
		}
	}
	return nil
}

func (h *MessageHandler) flow(userID int64) *pendingFlow {
	if val, ok := h.flows.Load(userID); ok {
		if flow, okType := val.(*pendingFlow); okType {
			return flow
		}
	}
	return nil
}

func (h *MessageHandler) setFlow(userID int64, flow *pendingFlow) {
	h.flows.Store(userID, flow)
}

func (h *MessageHandler) clearFlow(userID int64) {
	h.flows.Delete(userID)
}
