// Package fanout mirrors posts from a user's main channel to their other
// registered channels, translating text and keyboard labels per destination.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"lingopost-bot/internal/database"
	"lingopost-bot/internal/database/models"
	"lingopost-bot/internal/mediagroups"
	"lingopost-bot/pkg/telegoapi"
)

// Translator produces the target-language rendition of a text. Failures are
// folded into a sentinel string rather than an error.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) string
}

// Directory answers routing questions for the dispatcher.
type Directory interface {
	ResolveOwner(ctx context.Context, chatID int64) (int64, error)
	MainChannelID(ctx context.Context, userID int64) (int64, error)
	AutoTranslateEnabled(ctx context.Context, userID int64) (bool, error)
	ListDestinations(ctx context.Context, userID int64, excludeChatID int64) ([]models.Channel, error)
}

// StatsRecorder records translation activity for an owner.
type StatsRecorder interface {
	Increment(ctx context.Context, userID int64, messages, words, chars int64) error
}

// Dispatcher routes channel posts from a main channel to its destinations.
type Dispatcher struct {
	bot         telegoapi.BotAPI
	directory   Directory
	translator  Translator
	stats       StatsRecorder
	mediaGroups *mediagroups.Manager
	albumDelay  time.Duration
}

// NewDispatcher creates a Dispatcher with the default album window.
func NewDispatcher(
	bot telegoapi.BotAPI,
	directory Directory,
	translator Translator,
	stats StatsRecorder,
	mediaGroups *mediagroups.Manager,
) *Dispatcher {
	return &Dispatcher{
		bot:         bot,
		directory:   directory,
		translator:  translator,
		stats:       stats,
		mediaGroups: mediaGroups,
		albumDelay:  mediagroups.DefaultProcessDelay,
	}
}

// HandleChannelPost mirrors a single channel post. Posts from chats that are
// not a configured main channel, or whose owner has mirroring disabled, are
// ignored silently.
func (d *Dispatcher) HandleChannelPost(ctx context.Context, post telego.Message) error {
	ownerID, err := d.directory.ResolveOwner(ctx, post.Chat.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resolving owner of chat %d: %w", post.Chat.ID, err)
	}

	mainID, err := d.directory.MainChannelID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reading main channel for user %d: %w", ownerID, err)
	}
	if mainID != post.Chat.ID {
		return nil
	}

	enabled, err := d.directory.AutoTranslateEnabled(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("reading auto-translate flag for user %d: %w", ownerID, err)
	}
	if !enabled {
		return nil
	}

	destinations, err := d.directory.ListDestinations(ctx, ownerID, post.Chat.ID)
	if err != nil {
		return fmt.Errorf("listing destinations for user %d: %w", ownerID, err)
	}
	if len(destinations) == 0 {
		return nil
	}

	// Counters move before any send and count intent, not delivery.
	d.recordStats(ctx, ownerID, postBody(&post))

	if post.MediaGroupID != "" {
		return d.mediaGroups.HandleMessage(ctx, post, func(groupCtx context.Context, groupID string, fragments []telego.Message) error {
			d.sendAlbum(groupCtx, ownerID, destinations, fragments)
			return nil
		}, d.albumDelay, mediagroups.DefaultMaxGroupSize)
	}

	renders := d.renderAll(ctx, destinations, postBody(&post), KeyboardFromMessage(&post))
	for _, r := range renders {
		if err := d.sendSingle(ctx, &post, r); err != nil {
			log.Printf("[Fanout User:%d Dest:%d] Error sending post %d: %v", ownerID, r.dest.ChatID, post.MessageID, err)
			sentry.CaptureException(fmt.Errorf("fanout send to %d failed: %w", r.dest.ChatID, err))
		}
	}
	return nil
}

// rendered is one destination's translated view of a post.
type rendered struct {
	dest     models.Channel
	text     string
	keyboard Keyboard
}

// renderAll translates the body and keyboard for every destination
// concurrently. All translations complete before the caller sends anything,
// and results keep the directory listing order.
func (d *Dispatcher) renderAll(ctx context.Context, destinations []models.Channel, body string, keyboard Keyboard) []rendered {
	results := make([]rendered, len(destinations))
	var wg sync.WaitGroup
	for i, dest := range destinations {
		wg.Add(1)
		go func(i int, dest models.Channel) {
			defer wg.Done()
			r := rendered{dest: dest}
			if body != "" {
				r.text = d.translator.Translate(ctx, body, dest.Language)
			}
			if !keyboard.IsZero() {
				r.keyboard = keyboard.Translated(ctx, d.translator, dest.Language)
			}
			results[i] = r
		}(i, dest)
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) recordStats(ctx context.Context, userID int64, body string) {
	words := int64(len(strings.Fields(body)))
	chars := int64(utf8.RuneCountInString(body))
	if err := d.stats.Increment(ctx, userID, 1, words, chars); err != nil {
		log.Printf("[Fanout User:%d] Error updating statistics: %v", userID, err)
		sentry.CaptureException(fmt.Errorf("statistics update for user %d failed: %w", userID, err))
	}
}

// postBody returns the translatable text of a post, preferring Text over
// Caption.
func postBody(post *telego.Message) string {
	if post.Text != "" {
		return post.Text
	}
	return post.Caption
}

// sendSingle delivers one post to one destination, branching on media kind.
func (d *Dispatcher) sendSingle(ctx context.Context, post *telego.Message, r rendered) error {
	chatID := tu.ID(r.dest.ChatID)

	switch {
	case len(post.Photo) > 0:
		largest := post.Photo[len(post.Photo)-1]
		_, err := d.bot.SendPhoto(ctx, &telego.SendPhotoParams{
			ChatID:      chatID,
			Photo:       telego.InputFile{FileID: largest.FileID},
			Caption:     r.text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: r.keyboard.Markup(),
		})
		return err
	case post.Video != nil:
		_, err := d.bot.SendVideo(ctx, &telego.SendVideoParams{
			ChatID:      chatID,
			Video:       telego.InputFile{FileID: post.Video.FileID},
			Caption:     r.text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: r.keyboard.Markup(),
		})
		return err
	case post.Document != nil:
		_, err := d.bot.SendDocument(ctx, &telego.SendDocumentParams{
			ChatID:      chatID,
			Document:    telego.InputFile{FileID: post.Document.FileID},
			Caption:     r.text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: r.keyboard.Markup(),
		})
		return err
	case post.Audio != nil:
		_, err := d.bot.SendAudio(ctx, &telego.SendAudioParams{
			ChatID:      chatID,
			Audio:       telego.InputFile{FileID: post.Audio.FileID},
			Caption:     r.text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: r.keyboard.Markup(),
		})
		return err
	case post.Voice != nil:
		_, err := d.bot.SendVoice(ctx, &telego.SendVoiceParams{
			ChatID:      chatID,
			Voice:       telego.InputFile{FileID: post.Voice.FileID},
			Caption:     r.text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: r.keyboard.Markup(),
		})
		return err
	case post.VideoNote != nil:
		// Video notes carry no caption, relay as-is.
		_, err := d.bot.SendVideoNote(ctx, &telego.SendVideoNoteParams{
			ChatID:    chatID,
			VideoNote: telego.InputFile{FileID: post.VideoNote.FileID},
		})
		return err
	case post.Sticker != nil:
		_, err := d.bot.SendSticker(ctx, &telego.SendStickerParams{
			ChatID:  chatID,
			Sticker: telego.InputFile{FileID: post.Sticker.FileID},
		})
		return err
	case post.Poll != nil:
		// Polls are relayed verbatim with anonymity and answer mode intact.
		options := make([]telego.InputPollOption, len(post.Poll.Options))
		for i, opt := range post.Poll.Options {
			options[i] = telego.InputPollOption{Text: opt.Text}
		}
		isAnonymous := post.Poll.IsAnonymous
		_, err := d.bot.SendPoll(ctx, &telego.SendPollParams{
			ChatID:                chatID,
			Question:              post.Poll.Question,
			Options:               options,
			IsAnonymous:           &isAnonymous,
			AllowsMultipleAnswers: post.Poll.AllowsMultipleAnswers,
		})
		return err
	default:
		params := tu.Message(chatID, r.text).WithParseMode(telego.ModeHTML)
		if markup := r.keyboard.Markup(); markup != nil {
			params.ReplyMarkup = markup
		}
		if strings.Contains(post.Text, "http") {
			params.LinkPreviewOptions = &telego.LinkPreviewOptions{IsDisabled: true}
		}
		_, err := d.bot.SendMessage(ctx, params)
		return err
	}
}

// sendAlbum delivers a released album to every destination: the first
// fragment goes out as a caption-bearing typed message carrying the
// translated markup, the remaining fragments follow uncaptioned in one
// media group.
func (d *Dispatcher) sendAlbum(ctx context.Context, ownerID int64, destinations []models.Channel, fragments []telego.Message) {
	if len(fragments) == 0 {
		return
	}

	first := fragments[0]
	caption := albumCaption(fragments)
	renders := d.renderAll(ctx, destinations, caption, KeyboardFromMessage(&first))

	rest := fragments[1:]

	for _, r := range renders {
		if err := d.sendSingle(ctx, &first, r); err != nil {
			log.Printf("[Fanout User:%d Dest:%d] Error sending album head %d: %v", ownerID, r.dest.ChatID, first.MessageID, err)
			sentry.CaptureException(fmt.Errorf("fanout album head to %d failed: %w", r.dest.ChatID, err))
			continue
		}
		if len(rest) == 0 {
			continue
		}
		media := make([]telego.InputMedia, 0, len(rest))
		for _, fragment := range rest {
			if input := albumInputMedia(&fragment); input != nil {
				media = append(media, input)
			}
		}
		if len(media) == 0 {
			continue
		}
		_, err := d.bot.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
			ChatID: tu.ID(r.dest.ChatID),
			Media:  media,
		})
		if err != nil {
			log.Printf("[Fanout User:%d Dest:%d] Error sending album tail: %v", ownerID, r.dest.ChatID, err)
			sentry.CaptureException(fmt.Errorf("fanout album tail to %d failed: %w", r.dest.ChatID, err))
		}
	}
}

// albumCaption returns the first non-empty caption among the sorted
// fragments.
func albumCaption(fragments []telego.Message) string {
	for _, fragment := range fragments {
		if fragment.Caption != "" {
			return fragment.Caption
		}
	}
	return ""
}

// albumInputMedia converts a fragment into uncaptioned media-group input.
// Unsupported kinds yield nil.
func albumInputMedia(fragment *telego.Message) telego.InputMedia {
	switch {
	case len(fragment.Photo) > 0:
		largest := fragment.Photo[len(fragment.Photo)-1]
		return &telego.InputMediaPhoto{
			Type:  telego.MediaTypePhoto,
			Media: telego.InputFile{FileID: largest.FileID},
		}
	case fragment.Video != nil:
		return &telego.InputMediaVideo{
			Type:  telego.MediaTypeVideo,
			Media: telego.InputFile{FileID: fragment.Video.FileID},
		}
	case fragment.Document != nil:
		return &telego.InputMediaDocument{
			Type:  telego.MediaTypeDocument,
			Media: telego.InputFile{FileID: fragment.Document.FileID},
		}
	case fragment.Audio != nil:
		return &telego.InputMediaAudio{
			Type:  telego.MediaTypeAudio,
			Media: telego.InputFile{FileID: fragment.Audio.FileID},
		}
	default:
		return nil
	}
}
