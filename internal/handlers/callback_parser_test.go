package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	t.Run("PlainActions", func(t *testing.T) {
		cases := map[string]CallbackAction{
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
		for data, want := range cases {
			cb, err := ParseCallback(data)
			require.NoError(t, err, data)
			assert.Equal(t, want, cb.Action, data)
			assert.Zero(t, cb.Arg, data)
		}
	})

	t.Run("SuffixedActions", func(t *testing.T) {
		cb, err := ParseCallback("set_main_-1001234567890")
		require.NoError(t, err)
		assert.Equal(t, CallbackSetMain, cb.Action)
		assert.Equal(t, int64(-1001234567890), cb.Arg)

		cb, err = ParseCallback("confirm_delete_42")
		require.NoError(t, err)
		assert.Equal(t, CallbackConfirmDelete, cb.Action)
		assert.Equal(t, int64(42), cb.Arg)

		cb, err = ParseCallback("delete_-100500")
		require.NoError(t, err)
		assert.Equal(t, CallbackDelete, cb.Action)
		assert.Equal(t, int64(-100500), cb.Arg)
	})

	t.Run("DeleteChannelIsNotSuffixed", func(t *testing.T) {
		// "delete_channel" must not be read as delete with arg "channel".
		cb, err := ParseCallback("delete_channel")
		require.NoError(t, err)
		assert.Equal(t, CallbackDeleteChannel, cb.Action)
	})

	t.Run("MalformedArgument", func(t *testing.T) {
		for _, data := range []string{"set_main_abc", "delete_", "confirm_delete_12x3"} {
			_, err := ParseCallback(data)
			assert.ErrorIs(t, err, ErrBadCallbackArg, data)
		}
	})

	t.Run("UnknownAction", func(t *testing.T) {
		for _, data := range []string{"", "unknown", "settings_extra"} {
			_, err := ParseCallback(data)
			assert.ErrorIs(t, err, ErrUnknownCallback, data)
		}
	})
}

func TestCallbackData_RoundTrip(t *testing.T) {
	data := CallbackData(CallbackSetMain, -1001234567890)
	assert.Equal(t, "set_main_-1001234567890", data)

	cb, err := ParseCallback(data)
	require.NoError(t, err)
	assert.Equal(t, CallbackSetMain, cb.Action)
	assert.Equal(t, int64(-1001234567890), cb.Arg)
}
