package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/telebot.v4"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/repository"
)

// startHandler processes command /start: subscribes the chat with default
// preferences.
func (b *Bot) startHandler(tctx telebot.Context) error {
	b.log.Info("User started the bot", "username", tctx.Sender().Username)

	prefs := models.DefaultPreferences(tctx.Chat().ID)
	if err := b.repo.SavePreferences(context.Background(), prefs); err != nil {
		b.log.Error("failed to subscribe chat", "chat_id", tctx.Chat().ID, "error", err)
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	if err := tctx.Send("Subscribed. You will be notified when the work-order schedule changes."); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// stopHandler processes command /stop: removes the chat's subscription.
func (b *Bot) stopHandler(tctx telebot.Context) error {
	if err := b.repo.Unsubscribe(context.Background(), tctx.Chat().ID); err != nil {
		b.log.Error("failed to unsubscribe chat", "chat_id", tctx.Chat().ID, "error", err)
		return fmt.Errorf("failed to remove subscription: %w", err)
	}

	if err := tctx.Send("Unsubscribed. No further schedule notifications."); err != nil {
		return fmt.Errorf("failed to send farewell message: %w", err)
	}

	return nil
}

// quietHandler toggles suppression of completed-only notifications.
func (b *Bot) quietHandler(tctx telebot.Context) error {
	ctx := context.Background()

	prefs, err := b.repo.GetPreferences(ctx, tctx.Chat().ID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return tctx.Send("You are not subscribed yet. Use /start first.")
		}
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	prefs.SuppressLowOnly = !prefs.SuppressLowOnly
	if err = b.repo.SavePreferences(ctx, prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	reply := "Completed-only updates will be delivered."
	if prefs.SuppressLowOnly {
		reply = "Completed-only updates will be skipped."
	}
	return tctx.Send(reply)
}

// testHandler sends a sample notification rendered with every field shown,
// so a subscriber can verify delivery end to end.
func (b *Bot) testHandler(tctx telebot.Context) error {
	prefs, err := b.repo.GetPreferences(context.Background(), tctx.Chat().ID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return tctx.Send("You are not subscribed yet. Use /start first.")
		}
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	payloads := b.composer.Compose(sampleChangeSet(), prefs, true)
	for _, payload := range payloads {
		if payload.Channel != models.ChannelPush {
			continue
		}
		if err = tctx.Send(payload.Subject + "\n\n" + payload.Body); err != nil {
			return fmt.Errorf("failed to send test notification: %w", err)
		}
	}

	return nil
}

// sampleChangeSet builds a small synthetic set covering the main change
// kinds for the /test self-check.
func sampleChangeSet() *models.ChangeSet {
	day := func(offset int) *time.Time {
		t := time.Now().AddDate(0, 0, offset)
		return &t
	}

	return &models.ChangeSet{
		Critical: []models.ChangeRecord{{
			Kind:           models.KindAdded,
			JobID:          "W-90001",
			StoreName:      "Sample Fuel Stop",
			StoreNumber:    "1234",
			Location:       "Springfield, IL",
			Date:           day(3),
			EquipmentCount: 4,
		}},
		High: []models.ChangeRecord{{
			Kind:           models.KindDateChanged,
			JobID:          "W-90002",
			StoreName:      "Demo Travel Center",
			StoreNumber:    "5678",
			Location:       "Peoria, IL",
			OldDate:        day(1),
			NewDate:        day(5),
			EquipmentCount: 2,
		}},
		Low: []models.ChangeRecord{{
			Kind:           models.KindCompleted,
			JobID:          "W-90003",
			StoreName:      "Example Mart",
			StoreNumber:    "9012",
			Location:       "Decatur, IL",
			Date:           day(-1),
			EquipmentCount: 1,
		}},
		Summary: models.Summary{Added: 1, DateChanged: 1, Completed: 1},
	}
}
