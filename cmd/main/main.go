package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mtrev/fossawatch/internal/bot"
	"github.com/mtrev/fossawatch/internal/config"
	"github.com/mtrev/fossawatch/internal/diff"
	"github.com/mtrev/fossawatch/internal/ledger"
	"github.com/mtrev/fossawatch/internal/notify"
	"github.com/mtrev/fossawatch/internal/repository/sqlite"
	"github.com/mtrev/fossawatch/internal/scraper"
	"github.com/mtrev/fossawatch/internal/services/checker"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	repo, err := sqlite.NewRepository(ctx, logger, cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to init repository: %v", err)
	}
	defer repo.Close()

	composer := notify.NewComposer(logger)

	fossaBot, err := bot.NewBot(logger, cfg.Tg.Token, cfg.Tg.Timeout, repo, composer)
	if err != nil {
		log.Fatalf("Failed to init bot: %v", err)
	}

	portal := scraper.NewScraper(logger, cfg.PortalURL)
	ledgerSvc := ledger.NewService(logger, repo)
	comparator := diff.NewComparator(logger, ledgerSvc)
	updateChecker := checker.NewChecker(logger, portal, repo, comparator)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow main to run the poll loop.
	go fossaBot.Start()

	// The poll loop owns the schedule checking cadence: one ticker, one
	// explicit exit path, no free-floating timers.
	runPollLoop(ctx, logger, updateChecker, fossaBot, cfg.PollInterval)

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the bot gracefully.
	fossaBot.Stop()

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// runPollLoop checks the portal on the configured interval and broadcasts
// any detected changes. It returns when the context is cancelled. Check
// failures are logged and the loop keeps going; a transient portal outage
// must not kill the watcher.
func runPollLoop(
	ctx context.Context,
	logger *slog.Logger,
	updateChecker checker.Interface,
	dispatcher *bot.Bot,
	interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changes, err := updateChecker.CheckForUpdates(ctx, time.Now())
			if err != nil {
				logger.ErrorContext(ctx, "Schedule check failed", "error", err)
				continue
			}
			if changes.Empty() {
				continue
			}
			if err = dispatcher.Broadcast(ctx, changes); err != nil {
				logger.ErrorContext(ctx, "Broadcast failed", "error", err)
			}
		}
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
