package bot

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/notify"
	"github.com/mtrev/fossawatch/test/mocks"
)

func TestStart(t *testing.T) {
	t.Parallel()

	mockBot := mocks.NewAPI(t)
	mockBot.On("Start").Once()

	logger := slog.Default()
	testBot := Bot{bot: mockBot, log: logger}

	testBot.Start()

	mockBot.AssertExpectations(t)
}

func TestStop(t *testing.T) {
	t.Parallel()

	mockBot := mocks.NewAPI(t)
	mockBot.On("Stop").Once()

	logger := slog.Default()
	testBot := Bot{bot: mockBot, log: logger}

	testBot.Stop()

	mockBot.AssertExpectations(t)
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	mockBot := mocks.NewAPI(t)

	mockBot.On("Handle", "/start", mock.AnythingOfType("telebot.HandlerFunc")).Once()
	mockBot.On("Handle", "/stop", mock.AnythingOfType("telebot.HandlerFunc")).Once()
	mockBot.On("Handle", "/quiet", mock.AnythingOfType("telebot.HandlerFunc")).Once()
	mockBot.On("Handle", "/test", mock.AnythingOfType("telebot.HandlerFunc")).Once()

	logger := slog.Default()
	testBot := Bot{bot: mockBot, log: logger}

	testBot.registerRoutes()

	mockBot.AssertExpectations(t)
}

func TestBroadcast(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	changes := &models.ChangeSet{
		Critical: []models.ChangeRecord{{Kind: models.KindAdded, JobID: "W-103", StoreName: "New Mart"}},
		Summary:  models.Summary{Added: 1},
	}

	t.Run("delivers to every subscriber", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(mocks.SubscriptionRepository)
		mockRepo.On("ListSubscribers", mock.Anything).Return([]models.Preferences{
			models.DefaultPreferences(1),
			models.DefaultPreferences(2),
		}, nil).Once()

		mockBot := mocks.NewAPI(t)
		mockBot.On("Send", telebot.ChatID(1), mock.AnythingOfType("string")).Return(&telebot.Message{}, nil).Once()
		mockBot.On("Send", telebot.ChatID(2), mock.AnythingOfType("string")).Return(&telebot.Message{}, nil).Once()

		testBot := Bot{bot: mockBot, log: logger, repo: mockRepo, composer: notify.NewComposer(logger)}

		require.NoError(t, testBot.Broadcast(context.Background(), changes))
		mockRepo.AssertExpectations(t)
	})

	t.Run("one failing chat does not block the rest", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(mocks.SubscriptionRepository)
		mockRepo.On("ListSubscribers", mock.Anything).Return([]models.Preferences{
			models.DefaultPreferences(1),
			models.DefaultPreferences(2),
		}, nil).Once()

		mockBot := mocks.NewAPI(t)
		mockBot.On("Send", telebot.ChatID(1), mock.AnythingOfType("string")).
			Return(nil, errors.New("blocked by user")).Once()
		mockBot.On("Send", telebot.ChatID(2), mock.AnythingOfType("string")).Return(&telebot.Message{}, nil).Once()

		testBot := Bot{bot: mockBot, log: logger, repo: mockRepo, composer: notify.NewComposer(logger)}

		require.NoError(t, testBot.Broadcast(context.Background(), changes))
	})

	t.Run("subscriber listing failure is returned", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(mocks.SubscriptionRepository)
		mockRepo.On("ListSubscribers", mock.Anything).Return(nil, errors.New("db gone")).Once()

		mockBot := mocks.NewAPI(t)

		testBot := Bot{bot: mockBot, log: logger, repo: mockRepo, composer: notify.NewComposer(logger)}

		require.Error(t, testBot.Broadcast(context.Background(), changes))
	})
}
