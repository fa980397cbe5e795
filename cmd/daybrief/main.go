// Package main is the daybrief entrypoint: one gated Todoist → Telegram
// digest run per invocation. The whole interface is environment in, exit
// code out, logs on stderr.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antigravity-dev/daybrief/internal/config"
	"github.com/antigravity-dev/daybrief/internal/gate"
	"github.com/antigravity-dev/daybrief/internal/run"
	"github.com/antigravity-dev/daybrief/internal/telegram"
	"github.com/antigravity-dev/daybrief/internal/todoist"
)

// Exit statuses the invoking scheduler distinguishes. A skipped run is a
// success: the window was simply closed.
const (
	exitOK          = 0
	exitConfigError = 1
	exitRunFailed   = 2
)

func configureLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func main() {
	runID := uuid.NewString()
	logger := configureLogger("").With("run_id", runID)
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		var missing *config.MissingEnvError
		if errors.As(err, &missing) {
			logger.Error("missing required environment", "variables", strings.Join(missing.Variables, ", "))
		} else {
			logger.Error("failed to load config", "error", err)
		}
		os.Exit(exitConfigError)
	}

	logger = configureLogger(cfg.LogLevel).With("run_id", runID)
	slog.SetDefault(logger)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	runner := &run.Runner{
		Gate:     gate.New(cfg.Timezone, cfg.SendHour),
		Fetcher:  todoist.NewClient(httpClient, cfg.TodoistToken, cfg.TodoistBaseURL),
		Notifier: telegram.NewClient(httpClient, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramBaseURL),
	}

	logger.Info("daybrief starting",
		"timezone", cfg.Timezone.String(),
		"send_hour", cfg.SendHour,
	)

	result, err := runner.Execute(context.Background())
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(exitRunFailed)
	}

	switch result.Outcome {
	case run.OutcomeSkipped:
		logger.Info("run skipped",
			"reason", result.Decision.Reason.String(),
			"detail", result.Decision.Describe(),
			"local_time", result.Decision.LocalTime.Format(time.RFC3339),
		)
	case run.OutcomeSent:
		logger.Info("digest sent",
			"tasks", result.TaskCount,
			"local_time", result.Decision.LocalTime.Format(time.RFC3339),
			"ack", result.Ack.String(),
		)
	}
	os.Exit(exitOK)
}
