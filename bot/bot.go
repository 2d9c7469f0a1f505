// Package bot wires the telego update stream to the message handlers and the
// channel fan-out dispatcher.
package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/ratelimit"

	"lingopost-bot/internal/fanout"
	"lingopost-bot/internal/handlers"
	"lingopost-bot/internal/locales"
	telegoapi "lingopost-bot/pkg/telegoapi"
)

// Bot manages the update loop: it routes channel posts to the fan-out
// dispatcher and private messages and callbacks to the message handler.
type Bot struct {
	bot         telegoapi.BotAPI
	updatesChan <-chan telego.Update
	debug       bool
	dispatcher  *fanout.Dispatcher
	handler     *handlers.MessageHandler
	ratelimiter ratelimit.Limiter
}

// BotDeps holds the dependencies required by the Bot.
type BotDeps struct {
	Bot         telegoapi.BotAPI
	UpdatesChan <-chan telego.Update
	Debug       bool
	Dispatcher  *fanout.Dispatcher
	Handler     *handlers.MessageHandler
}

// New creates a new Bot instance from its dependencies.
func New(deps BotDeps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("fan-out dispatcher cannot be nil")
	}
	if deps.Handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	return &Bot{
		bot:         deps.Bot,
		updatesChan: deps.UpdatesChan,
		debug:       deps.Debug,
		dispatcher:  deps.Dispatcher,
		handler:     deps.Handler,
		ratelimiter: ratelimit.New(20),
	}, nil
}

// handleChannelPost forwards a channel post to the fan-out dispatcher.
func (b *Bot) handleChannelPost(ctx context.Context, post telego.Message) {
	logPrefix := fmt.Sprintf("[ChannelPost Chat:%d Msg:%d]", post.Chat.ID, post.MessageID)
	if b.debug {
		log.Printf("%s Dispatching", logPrefix)
	}
	if err := b.dispatcher.HandleChannelPost(ctx, post); err != nil {
		log.Printf("%s Dispatcher error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s dispatcher error: %w", logPrefix, err))
	}
}

// handleCommandUpdate processes a message identified as a command.
func (b *Bot) handleCommandUpdate(ctx context.Context, message telego.Message) {
	command := "unknown"
	if len(message.Text) > 1 && strings.HasPrefix(message.Text, "/") {
		command = strings.Split(message.Text, " ")[0][1:]
	}
	logPrefix := fmt.Sprintf("[Cmd:%s User:%d]", command, message.From.ID)

	handlerFunc := b.handler.GetCommandHandler(command)
	if handlerFunc == nil {
		log.Printf("%s No handler found", logPrefix)
		localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
		unknownCmdMsg := locales.GetMessage(localizer, "MsgErrorUnknownCommand", nil, nil)
		if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), unknownCmdMsg)); err != nil {
			log.Printf("%s Failed to send unknown command message: %v", logPrefix, err)
		}
		return
	}

	if b.debug {
		log.Printf("%s Executing handler", logPrefix)
	}
	if err := handlerFunc(ctx, b.bot, message); err != nil {
		log.Printf("%s Handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s handler error: %w", logPrefix, err))
	}
}

// handleMessageUpdate processes a non-command private message through the
// dialog state machine.
func (b *Bot) handleMessageUpdate(ctx context.Context, message telego.Message) {
	logPrefix := fmt.Sprintf("[Msg User:%d Msg:%d]", message.From.ID, message.MessageID)
	if err := b.handler.HandleMessage(ctx, b.bot, message); err != nil {
		log.Printf("%s Handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s message handler error: %w", logPrefix, err))
	}
}

// handleCallbackQuery processes an incoming callback query.
func (b *Bot) handleCallbackQuery(ctx context.Context, query telego.CallbackQuery) {
	logPrefix := fmt.Sprintf("[Callback User:%d QueryID:%s]", query.From.ID, query.ID)
	if b.debug {
		log.Printf("%s Received callback query with data: %q", logPrefix, query.Data)
	}
	if err := b.handler.HandleCallbackQuery(ctx, b.bot, query); err != nil {
		log.Printf("%s Callback handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s callback handler error: %w", logPrefix, err))
	}
}

// processUpdate routes incoming updates to the appropriate handlers.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in processUpdate: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
			sentry.Flush(time.Second * 2)
		}
	}()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch {
	case update.ChannelPost != nil:
		b.handleChannelPost(processingCtx, *update.ChannelPost)

	case update.Message != nil:
		message := *update.Message
		if message.From == nil {
			log.Printf("Ignoring message %d from chat %d without sender", message.MessageID, message.Chat.ID)
			return
		}
		if strings.HasPrefix(message.Text, "/") {
			b.handleCommandUpdate(processingCtx, message)
		} else {
			b.handleMessageUpdate(processingCtx, message)
		}

	case update.CallbackQuery != nil:
		b.handleCallbackQuery(processingCtx, *update.CallbackQuery)

	default:
		if b.debug {
			log.Printf("Ignoring unhandled update type: %+v", update)
		}
	}
}

// Start begins the bot's update processing loop. Each update runs in its own
// goroutine; Start returns after the context is done and all in-flight
// updates finished.
func (b *Bot) Start(ctx context.Context) {
	if me, err := b.bot.GetMe(ctx); err != nil {
		log.Printf("Error fetching bot identity: %v", err)
		sentry.CaptureException(fmt.Errorf("get me: %w", err))
	} else {
		log.Printf("Authorized as @%s (ID: %d)", me.Username, me.ID)
	}
	if err := b.setupCommands(ctx); err != nil {
		log.Printf("Error setting bot commands: %v", err)
		sentry.CaptureException(fmt.Errorf("setup commands: %w", err))
	}
	log.Println("Listening for updates...")

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Println("Context done, stopping update processing...")
			wg.Wait()
			log.Println("All update processing finished.")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Updates channel closed.")
				wg.Wait()
				return
			}
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

func (b *Bot) setupCommands(ctx context.Context) error {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	commands := b.handler.Commands()
	cmds := make([]telego.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		cmds = append(cmds, telego.BotCommand{
			Command:     cmd.Command,
			Description: locales.GetMessage(localizer, cmd.Description, nil, nil),
		})
	}

	if err := b.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: cmds}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	log.Println("Bot commands successfully set.")
	return nil
}
