package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CallbackAction identifies an inline button action.
type CallbackAction string

const (
	CallbackRegisterUser        CallbackAction = "register_user"
	CallbackBecomeAdmin         CallbackAction = "become_admin"
	CallbackAdminPanel          CallbackAction = "admin_panel"
	CallbackSettings            CallbackAction = "settings"
	CallbackToggleAutoTranslate CallbackAction = "toggle_auto_translate"
	CallbackStatistics          CallbackAction = "statistics"
	CallbackSelectMainChannel   CallbackAction = "select_main_channel"
	CallbackAddChannel          CallbackAction = "add_channel"
	CallbackDeleteChannel       CallbackAction = "delete_channel"
	CallbackListChannels        CallbackAction = "admin_list_channels"
	CallbackAboutBot            CallbackAction = "about_bot"
	CallbackGoBack              CallbackAction = "go_back"

	// Suffixed actions carry a chat ID argument.
	CallbackSetMain       CallbackAction = "set_main"
	CallbackConfirmDelete CallbackAction = "confirm_delete"
	CallbackDelete        CallbackAction = "delete"
)

var (
	// ErrUnknownCallback is returned for payloads no button of ours produces.
	ErrUnknownCallback = errors.New("handlers: unknown callback action")
	// ErrBadCallbackArg is returned when a suffixed payload does not carry a
	// valid chat ID.
	ErrBadCallbackArg = errors.New("handlers: malformed callback argument")
)

// Callback is a parsed callback-query payload.
type Callback struct {
	Action CallbackAction
	Arg    int64
}

var plainActions = map[string]CallbackAction{
	"register_user":         CallbackRegisterUser,
	"become_admin":          CallbackBecomeAdmin,
	"admin_panel":           CallbackAdminPanel,
	"settings":              CallbackSettings,
	"toggle_auto_translate": CallbackToggleAutoTranslate,
	"statistics":            CallbackStatistics,
	"select_main_channel":   CallbackSelectMainChannel,
	"add_channel":           CallbackAddChannel,
	"delete_channel":        CallbackDeleteChannel,
	"admin_list_channels":   CallbackListChannels,
	"about_bot":             CallbackAboutBot,
	"go_back":               CallbackGoBack,
}

// suffixedActions is ordered so that longer prefixes win ("confirm_delete_"
// before "delete_").
var suffixedActions = []struct {
	prefix string
	action CallbackAction
}{
	{"set_main_", CallbackSetMain},
	{"confirm_delete_", CallbackConfirmDelete},
	{"delete_", CallbackDelete},
}

// ParseCallback turns a raw callback payload into a typed action. Plain
// actions match exactly; suffixed actions require an int64 chat ID after the
// prefix.
func ParseCallback(data string) (Callback, error) {
	if action, ok := plainActions[data]; ok {
		return Callback{Action: action}, nil
	}
	for _, s := range suffixedActions {
		if !strings.HasPrefix(data, s.prefix) {
			continue
		}
		arg, err := strconv.ParseInt(strings.TrimPrefix(data, s.prefix), 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("%w: %q", ErrBadCallbackArg, data)
		}
		return Callback{Action: s.action, Arg: arg}, nil
	}
	return Callback{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}

// CallbackData renders the payload for a suffixed action button.
func CallbackData(action CallbackAction, arg int64) string {
	return fmt.Sprintf("%s_%d", action, arg)
}
