package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lingopost-bot/internal/database"
	"lingopost-bot/internal/database/models"
	"lingopost-bot/internal/locales"
)

// --- Mocks ---

// MockBot is a mock implementing the telegoapi.BotAPI interface
type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendVideo(ctx context.Context, params *telego.SendVideoParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendDocument(ctx context.Context, params *telego.SendDocumentParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendAudio(ctx context.Context, params *telego.SendAudioParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendVoice(ctx context.Context, params *telego.SendVoiceParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendVideoNote(ctx context.Context, params *telego.SendVideoNoteParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendSticker(ctx context.Context, params *telego.SendStickerParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendPoll(ctx context.Context, params *telego.SendPollParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendMediaGroup(ctx context.Context, params *telego.SendMediaGroupParams) ([]telego.Message, error) {
	args := m.Called(ctx, params)
	if msgs, ok := args.Get(0).([]telego.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) GetMe(ctx context.Context) (*telego.User, error) {
	args := m.Called(ctx)
	if user, ok := args.Get(0).(*telego.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserRepository is a mock for database.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) CountAdmins(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettingRepository is a mock for database.SettingRepository
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) Get(ctx context.Context, userID int64, key string) (string, error) {
	args := m.Called(ctx, userID, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingRepository) Set(ctx context.Context, userID int64, key, value string) error {
	args := m.Called(ctx, userID, key, value)
	return args.Error(0)
}

// MockStatsRepository is a mock for database.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Get(ctx context.Context, userID int64) (*models.Statistic, error) {
	args := m.Called(ctx, userID)
	if stats, ok := args.Get(0).(*models.Statistic); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatsRepository) Increment(ctx context.Context, userID int64, messages, words, chars int64) error {
	args := m.Called(ctx, userID, messages, words, chars)
	return args.Error(0)
}

// MockAdminGate is a mock implementing AdminGate
type MockAdminGate struct {
	mock.Mock
}

func (m *MockAdminGate) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminGate) HasFreeSeat(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// memChannelRepository keeps channels in memory, enforcing the unique
// (user, chat) pair the way the database layer does.
type memChannelRepository struct {
	channels []models.Channel
	nextID   uint
}

func (r *memChannelRepository) AddChannel(ctx context.Context, channel *models.Channel) error {
	for _, ch := range r.channels {
		if ch.UserID == channel.UserID && ch.ChatID == channel.ChatID {
			return database.ErrDuplicateChannel
		}
	}
	r.nextID++
	channel.ID = r.nextID
	r.channels = append(r.channels, *channel)
	return nil
}

func (r *memChannelRepository) DeleteChannel(ctx context.Context, userID, chatID int64) error {
	for i, ch := range r.channels {
		if ch.UserID == userID && ch.ChatID == chatID {
			r.channels = append(r.channels[:i], r.channels[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (r *memChannelRepository) ListChannels(ctx context.Context, userID int64) ([]models.Channel, error) {
	var out []models.Channel
	for _, ch := range r.channels {
		if ch.UserID == userID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (r *memChannelRepository) FindOwner(ctx context.Context, chatID int64) (int64, error) {
	for _, ch := range r.channels {
		if ch.ChatID == chatID {
			return ch.UserID, nil
		}
	}
	return 0, database.ErrNotFound
}

// --- Test Suite Setup ---

const (
	testUserID = int64(98765)
	testChatID = int64(98765)
)

type handlerSuite struct {
	t               *testing.T
	mockBot         *MockBot
	mockUserRepo    *MockUserRepository
	mockSettingRepo *MockSettingRepository
	mockStatsRepo   *MockStatsRepository
	mockAdminGate   *MockAdminGate
	channelRepo     *memChannelRepository
	handler         *MessageHandler
}

func setupHandlerSuite(t *testing.T) *handlerSuite {
	t.Helper()
	locales.Init("en")

	mockBot := new(MockBot)
	mockUserRepo := new(MockUserRepository)
	mockSettingRepo := new(MockSettingRepository)
	mockStatsRepo := new(MockStatsRepository)
	mockAdminGate := new(MockAdminGate)
	channelRepo := &memChannelRepository{}

	handler := NewMessageHandler(mockUserRepo, channelRepo, mockSettingRepo, mockStatsRepo, mockAdminGate)

	return &handlerSuite{
		t:               t,
		mockBot:         mockBot,
		mockUserRepo:    mockUserRepo,
		mockSettingRepo: mockSettingRepo,
		mockStatsRepo:   mockStatsRepo,
		mockAdminGate:   mockAdminGate,
		channelRepo:     channelRepo,
		handler:         handler,
	}
}

func privateMessage(text string) telego.Message {
	return telego.Message{
		MessageID: 100,
		From: &telego.User{
			ID:           testUserID,
			Username:     "testuser",
			LanguageCode: "en",
		},
		Chat: telego.Chat{ID: testChatID, Type: telego.ChatTypePrivate},
		Date: int64(time.Now().Unix()),
		Text: text,
	}
}

func callbackQuery(data string) telego.CallbackQuery {
	return telego.CallbackQuery{
		ID:   "cbq-1",
		From: telego.User{ID: testUserID, Username: "testuser", LanguageCode: "en"},
		Message: &telego.Message{
			MessageID: 55,
			Chat:      telego.Chat{ID: testChatID, Type: telego.ChatTypePrivate},
		},
		Data: data,
	}
}

func captureSendMessage(m *MockBot, dst **telego.SendMessageParams) *mock.Call {
	return m.On("SendMessage", mock.Anything, mock.AnythingOfType("*telego.SendMessageParams")).
		Run(func(args mock.Arguments) {
			if params, ok := args.Get(1).(*telego.SendMessageParams); ok {
				*dst = params
			}
		}).
		Return(&telego.Message{}, nil)
}

func captureEditMessage(m *MockBot, dst **telego.EditMessageTextParams) *mock.Call {
	return m.On("EditMessageText", mock.Anything, mock.AnythingOfType("*telego.EditMessageTextParams")).
		Run(func(args mock.Arguments) {
			if params, ok := args.Get(1).(*telego.EditMessageTextParams); ok {
				*dst = params
			}
		}).
		Return(&telego.Message{}, nil)
}

// --- Test Functions ---

func TestHandleStart(t *testing.T) {
	ctx := context.Background()

	t.Run("UnregisteredUserGetsWelcome", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockUserRepo.On("GetUser", ctx, testUserID).Return(nil, database.ErrNotFound).Once()

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleStart(ctx, s.mockBot, privateMessage("/start"))

		assert.NoError(t, err)
		s.mockBot.AssertExpectations(t)
		require.NotNil(t, captured)
		assert.Equal(t, telegoutil.ID(testChatID), captured.ChatID)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgWelcome", nil, nil)
		assert.Equal(t, expected, captured.Text)
		markup, ok := captured.ReplyMarkup.(*telego.InlineKeyboardMarkup)
		require.True(t, ok)
		assert.Equal(t, string(CallbackRegisterUser), markup.InlineKeyboard[0][0].CallbackData)
	})

	t.Run("RegisteredUserGetsMenuWithoutRecreation", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockUserRepo.On("GetUser", ctx, testUserID).
			Return(&models.User{UserID: testUserID, PhoneNumber: "+100"}, nil).Once()

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleStart(ctx, s.mockBot, privateMessage("/start"))

		assert.NoError(t, err)
		s.mockUserRepo.AssertExpectations(t)
		s.mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgAlreadyRegistered", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})
}

func TestHandleAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("NonAdminRejected", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockAdminGate.On("IsAdmin", ctx, testUserID).Return(false, nil).Once()

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleAdmin(ctx, s.mockBot, privateMessage("/admin"))

		assert.NoError(t, err)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgErrorRequiresAdmin", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})

	t.Run("AdminGetsPanel", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockAdminGate.On("IsAdmin", ctx, testUserID).Return(true, nil).Once()

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleAdmin(ctx, s.mockBot, privateMessage("/admin"))

		assert.NoError(t, err)
		require.NotNil(t, captured)
		markup, ok := captured.ReplyMarkup.(*telego.InlineKeyboardMarkup)
		require.True(t, ok)
		assert.Equal(t, string(CallbackAddChannel), markup.InlineKeyboard[0][0].CallbackData)
	})
}

func TestRegistrationFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("RegisterCallbackAsksForContact", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockBot.On("AnswerCallbackQuery", ctx, mock.AnythingOfType("*telego.AnswerCallbackQueryParams")).Return(nil).Once()
		s.mockUserRepo.On("GetUser", ctx, testUserID).Return(nil, database.ErrNotFound).Once()

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("register_user"))

		assert.NoError(t, err)
		require.NotNil(t, captured)
		markup, ok := captured.ReplyMarkup.(*telego.ReplyKeyboardMarkup)
		require.True(t, ok)
		assert.True(t, markup.Keyboard[0][0].RequestContact)
	})

	t.Run("ContactCompletesRegistration", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.handler.setFlow(testUserID, &pendingFlow{state: stateAwaitingContact})

		var created *models.User
		s.mockUserRepo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) {
				if user, ok := args.Get(1).(*models.User); ok {
					created = user
				}
			}).
			Return(nil).Once()
		s.mockBot.On("SendMessage", ctx, mock.AnythingOfType("*telego.SendMessageParams")).
			Return(&telego.Message{}, nil).Twice()

		message := privateMessage("")
		message.Contact = &telego.Contact{PhoneNumber: "+1234567", UserID: testUserID}

		err := s.handler.HandleMessage(ctx, s.mockBot, message)

		assert.NoError(t, err)
		s.mockUserRepo.AssertExpectations(t)
		require.NotNil(t, created)
		assert.Equal(t, testUserID, created.UserID)
		assert.Equal(t, "+1234567", created.PhoneNumber)
		assert.Nil(t, s.handler.flow(testUserID), "flow should be cleared")
	})

	t.Run("TextInsteadOfContactReprompts", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.handler.setFlow(testUserID, &pendingFlow{state: stateAwaitingContact})

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleMessage(ctx, s.mockBot, privateMessage("my number is 5"))

		assert.NoError(t, err)
		s.mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgSharePhonePrompt", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})
}

func TestBecomeAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("FreeSeatPromotes", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockBot.On("AnswerCallbackQuery", ctx, mock.Anything).Return(nil).Once()
		s.mockUserRepo.On("GetUser", ctx, testUserID).Return(&models.User{UserID: testUserID}, nil).Once()
		s.mockAdminGate.On("HasFreeSeat", ctx).Return(true, nil).Once()
		s.mockUserRepo.On("SetAdmin", ctx, testUserID).Return(nil).Once()

		var captured *telego.EditMessageTextParams
		captureEditMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("become_admin"))

		assert.NoError(t, err)
		s.mockUserRepo.AssertExpectations(t)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgAdminGranted", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})

	t.Run("FullSeatsOfferSubscription", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockBot.On("AnswerCallbackQuery", ctx, mock.Anything).Return(nil).Once()
		s.mockUserRepo.On("GetUser", ctx, testUserID).Return(&models.User{UserID: testUserID}, nil).Once()
		s.mockAdminGate.On("HasFreeSeat", ctx).Return(false, nil).Once()

		var captured *telego.EditMessageTextParams
		captureEditMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("become_admin"))

		assert.NoError(t, err)
		s.mockUserRepo.AssertNotCalled(t, "SetAdmin", mock.Anything, mock.Anything)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgAdminSeatsFull", nil, nil)
		assert.Equal(t, expected, captured.Text)
		// Subscription offer carries URL buttons, not callbacks.
		assert.NotEmpty(t, captured.ReplyMarkup.InlineKeyboard[0][0].URL)
	})

	t.Run("UnregisteredUserRedirected", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockBot.On("AnswerCallbackQuery", ctx, mock.Anything).Return(nil).Once()
		s.mockUserRepo.On("GetUser", ctx, testUserID).Return(nil, database.ErrNotFound).Once()

		var captured *telego.EditMessageTextParams
		captureEditMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("become_admin"))

		assert.NoError(t, err)
		s.mockAdminGate.AssertNotCalled(t, "HasFreeSeat", mock.Anything)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgErrorNotRegistered", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})
}

func TestAddChannelFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("NonForwardRejected", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.handler.setFlow(testUserID, &pendingFlow{state: stateAwaitingForward})

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleMessage(ctx, s.mockBot, privateMessage("hello"))

		assert.NoError(t, err)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgErrorNotForwarded", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})

	t.Run("NonChannelOriginRejected", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.handler.setFlow(testUserID, &pendingFlow{state: stateAwaitingForward})

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		message := privateMessage("fwd")
		message.ForwardOrigin = &telego.MessageOriginUser{
			Type:       telego.OriginTypeUser,
			SenderUser: telego.User{ID: 1},
		}

		err := s.handler.HandleMessage(ctx, s.mockBot, message)

		assert.NoError(t, err)
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgErrorNotChannel", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})

	t.Run("ChannelForwardThenLanguageAdds", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.handler.setFlow(testUserID, &pendingFlow{state: stateAwaitingForward})
		s.mockBot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

		message := privateMessage("fwd")
		message.ForwardOrigin = &telego.MessageOriginChannel{
			Type: telego.OriginTypeChannel,
			Chat: telego.Chat{ID: -100999, Type: telego.ChatTypeChannel, Title: "News DE"},
		}
		require.NoError(t, s.handler.HandleMessage(ctx, s.mockBot, message))

		flow := s.handler.flow(testUserID)
		require.NotNil(t, flow)
		assert.Equal(t, stateAwaitingLanguage, flow.state)
		assert.Equal(t, int64(-100999), flow.chatID)

		require.NoError(t, s.handler.HandleMessage(ctx, s.mockBot, privateMessage("de")))

		channels, _ := s.channelRepo.ListChannels(ctx, testUserID)
		require.Len(t, channels, 1)
		assert.Equal(t, "News DE", channels[0].Name)
		assert.Equal(t, "DE", channels[0].Language, "language is stored upper-cased")
		assert.Nil(t, s.handler.flow(testUserID))
	})

	t.Run("UnsupportedLanguageRejected", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.handler.setFlow(testUserID, &pendingFlow{state: stateAwaitingLanguage, chatID: -100999, name: "News"})

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleMessage(ctx, s.mockBot, privateMessage("xx"))

		assert.NoError(t, err)
		channels, _ := s.channelRepo.ListChannels(ctx, testUserID)
		assert.Empty(t, channels)
		// The flow stays open for another attempt.
		require.NotNil(t, s.handler.flow(testUserID))
	})

	t.Run("DuplicateChannelRejected", func(t *testing.T) {
		s := setupHandlerSuite(t)
		require.NoError(t, s.channelRepo.AddChannel(ctx, &models.Channel{
			UserID: testUserID, ChatID: -100999, Name: "News", Language: "DE",
		}))
		s.handler.setFlow(testUserID, &pendingFlow{state: stateAwaitingLanguage, chatID: -100999, name: "News"})

		var captured *telego.SendMessageParams
		captureSendMessage(s.mockBot, &captured).Once()

		err := s.handler.HandleMessage(ctx, s.mockBot, privateMessage("de"))

		assert.NoError(t, err)
		channels, _ := s.channelRepo.ListChannels(ctx, testUserID)
		assert.Len(t, channels, 1, "duplicate registration must not add a row")
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgErrorChannelDuplicate", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})
}

func TestDeleteChannelFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmThenDelete", func(t *testing.T) {
		s := setupHandlerSuite(t)
		require.NoError(t, s.channelRepo.AddChannel(ctx, &models.Channel{
			UserID: testUserID, ChatID: -100111, Name: "Old", Language: "FR",
		}))
		s.mockAdminGate.On("IsAdmin", mock.Anything, testUserID).Return(true, nil)
		s.mockBot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)
		s.mockSettingRepo.On("Get", mock.Anything, testUserID, models.SettingMainChannelID).
			Return("", database.ErrNotFound).Maybe()

		var captured *telego.EditMessageTextParams
		captureEditMessage(s.mockBot, &captured)

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("confirm_delete_-100111")))
		require.NotNil(t, captured)
		confirm := captured.ReplyMarkup.InlineKeyboard[0][0]
		assert.Equal(t, "delete_-100111", confirm.CallbackData)

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("delete_-100111")))

		channels, _ := s.channelRepo.ListChannels(ctx, testUserID)
		assert.Empty(t, channels)
	})

	t.Run("UnknownChannelReported", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockAdminGate.On("IsAdmin", mock.Anything, testUserID).Return(true, nil)
		s.mockBot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)

		var captured *telego.EditMessageTextParams
		captureEditMessage(s.mockBot, &captured)

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("delete_-100404")))
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgErrorChannelNotFound", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})
}

func TestStatisticsView(t *testing.T) {
	ctx := context.Background()

	t.Run("AllZeroCountersShowOwnerOnly", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.mockAdminGate.On("IsAdmin", mock.Anything, testUserID).Return(true, nil)
		s.mockBot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)
		s.mockSettingRepo.On("Get", mock.Anything, testUserID, models.SettingMainChannelID).
			Return("", database.ErrNotFound).Once()
		s.mockStatsRepo.On("Get", mock.Anything, testUserID).
			Return(&models.Statistic{UserID: testUserID}, nil).Once()

		var captured *telego.EditMessageTextParams
		captureEditMessage(s.mockBot, &captured)

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("statistics")))
		require.NotNil(t, captured)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgStatsOwnerOnly", nil, nil)
		assert.Equal(t, expected, captured.Text)
	})

	t.Run("CountersResolveMainChannelOwner", func(t *testing.T) {
		s := setupHandlerSuite(t)
		ownerID := int64(555)
		require.NoError(t, s.channelRepo.AddChannel(ctx, &models.Channel{
			UserID: ownerID, ChatID: -100777, Name: "Main", Language: "EN",
		}))
		s.mockAdminGate.On("IsAdmin", mock.Anything, testUserID).Return(true, nil)
		s.mockBot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)
		s.mockSettingRepo.On("Get", mock.Anything, testUserID, models.SettingMainChannelID).
			Return("-100777", nil).Once()
		s.mockStatsRepo.On("Get", mock.Anything, ownerID).
			Return(&models.Statistic{UserID: ownerID, MessagesSent: 3, WordsTranslated: 40, CharactersTranslated: 200}, nil).Once()

		var captured *telego.EditMessageTextParams
		captureEditMessage(s.mockBot, &captured)

		require.NoError(t, s.handler.HandleCallbackQuery(ctx, s.mockBot, callbackQuery("statistics")))
		s.mockStatsRepo.AssertExpectations(t)
		require.NotNil(t, captured)
		assert.Contains(t, captured.Text, "3")
		assert.Contains(t, captured.Text, "40")
		assert.Contains(t, captured.Text, "200")
	})
}
