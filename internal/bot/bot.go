package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/telebot.v4"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/notify"
	"github.com/mtrev/fossawatch/internal/repository/sqlite"
)

// Bot contains the bot API instance and the collaborators needed to manage
// subscriptions and deliver composed notifications.
type Bot struct {
	bot      API
	log      *slog.Logger
	repo     sqlite.SubscriptionRepository
	composer *notify.Composer
}

func NewBot(
	log *slog.Logger,
	token string,
	poller time.Duration,
	repo sqlite.SubscriptionRepository,
	composer *notify.Composer,
) (*Bot, error) {
	tgBot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on acount", "account", tgBot.Me.Username)

	botInstance := &Bot{bot: tgBot, log: log, repo: repo, composer: composer}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	// Public routes.
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/stop", b.stopHandler)
	b.bot.Handle("/quiet", b.quietHandler)
	b.bot.Handle("/test", b.testHandler)
}

// Broadcast composes and delivers the change set to every subscriber.
// Per-chat failures are logged and skipped; one broken chat must not block
// the rest.
func (b *Bot) Broadcast(ctx context.Context, changes *models.ChangeSet) error {
	const opn = "bot.Broadcast"

	subscribers, err := b.repo.ListSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to list subscribers: %w", opn, err)
	}

	for _, prefs := range subscribers {
		payloads := b.composer.Compose(changes, prefs, false)
		for _, payload := range payloads {
			if payload.Channel != models.ChannelPush {
				// Only the push channel is wired to Telegram; email payloads
				// belong to an external dispatcher.
				continue
			}
			message := payload.Subject + "\n\n" + payload.Body
			if _, serr := b.bot.Send(telebot.ChatID(payload.ChatID), message); serr != nil {
				b.log.WarnContext(ctx, "failed to deliver notification",
					"chat_id", payload.ChatID, "error", serr)
			}
		}
	}

	return nil
}
