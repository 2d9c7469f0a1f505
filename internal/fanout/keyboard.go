package fanout

import (
	"context"

	"github.com/mymmrac/telego"
)

// Keyboard is a tagged variant over the two markup shapes a mirrored post can
// carry: inline action buttons and reply prompt buttons. Translation applies
// to button labels only; URLs, callback data and request flags pass through
// verbatim.
type Keyboard struct {
	Inline *telego.InlineKeyboardMarkup
	Reply  *telego.ReplyKeyboardMarkup
}

// KeyboardFromMessage extracts the keyboard attached to a post. Channel posts
// only ever carry inline markup.
func KeyboardFromMessage(message *telego.Message) Keyboard {
	return Keyboard{Inline: message.ReplyMarkup}
}

// IsZero reports whether no keyboard is present.
func (k Keyboard) IsZero() bool {
	return k.Inline == nil && k.Reply == nil
}

// Translated returns a copy of the keyboard with every button label rendered
// in the target language.
func (k Keyboard) Translated(ctx context.Context, tr Translator, targetLang string) Keyboard {
	switch {
	case k.Inline != nil:
		rows := make([][]telego.InlineKeyboardButton, len(k.Inline.InlineKeyboard))
		for i, row := range k.Inline.InlineKeyboard {
			rows[i] = make([]telego.InlineKeyboardButton, len(row))
			for j, button := range row {
				translated := button
				translated.Text = tr.Translate(ctx, button.Text, targetLang)
				rows[i][j] = translated
			}
		}
		return Keyboard{Inline: &telego.InlineKeyboardMarkup{InlineKeyboard: rows}}
	case k.Reply != nil:
		rows := make([][]telego.KeyboardButton, len(k.Reply.Keyboard))
		for i, row := range k.Reply.Keyboard {
			rows[i] = make([]telego.KeyboardButton, len(row))
			for j, button := range row {
				translated := button
				translated.Text = tr.Translate(ctx, button.Text, targetLang)
				rows[i][j] = translated
			}
		}
		markup := *k.Reply
		markup.Keyboard = rows
		return Keyboard{Reply: &markup}
	default:
		return Keyboard{}
	}
}

// Markup returns the telego markup value for send parameters, or nil when no
// keyboard is present.
func (k Keyboard) Markup() telego.ReplyMarkup {
	switch {
	case k.Inline != nil:
		return k.Inline
	case k.Reply != nil:
		return k.Reply
	default:
		return nil
	}
}
