package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(name string) string {
		return values[name]
	}
}

func fullEnv() map[string]string {
	return map[string]string{
		EnvTodoistToken:     "todoist-token",
		EnvTelegramBotToken: "bot-token",
		EnvTelegramChatID:   "12345",
	}
}

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daybrief.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(envFrom(fullEnv()))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TodoistToken != "todoist-token" {
		t.Fatalf("TodoistToken = %q, want todoist-token", cfg.TodoistToken)
	}
	if cfg.TelegramBotToken != "bot-token" {
		t.Fatalf("TelegramBotToken = %q, want bot-token", cfg.TelegramBotToken)
	}
	if cfg.TelegramChatID != "12345" {
		t.Fatalf("TelegramChatID = %q, want 12345", cfg.TelegramChatID)
	}
	if got, want := cfg.Timezone.String(), "Europe/Paris"; got != want {
		t.Fatalf("Timezone = %q, want %q", got, want)
	}
	if cfg.SendHour != 7 {
		t.Fatalf("SendHour = %d, want 7", cfg.SendHour)
	}
	if cfg.RequestTimeout != 20*time.Second {
		t.Fatalf("RequestTimeout = %s, want 20s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.TodoistBaseURL != "" || cfg.TelegramBaseURL != "" {
		t.Fatalf("base URLs = %q/%q, want empty (client defaults)", cfg.TodoistBaseURL, cfg.TelegramBaseURL)
	}
}

func TestLoadMissingEnv(t *testing.T) {
	env := fullEnv()
	delete(env, EnvTelegramBotToken)

	_, err := Load(envFrom(env))
	var missing *MissingEnvError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingEnvError, got %v", err)
	}
	if len(missing.Variables) != 1 || missing.Variables[0] != EnvTelegramBotToken {
		t.Fatalf("missing variables = %v, want [%s]", missing.Variables, EnvTelegramBotToken)
	}
}

func TestLoadBlankEnvCountsAsMissing(t *testing.T) {
	env := fullEnv()
	env[EnvTodoistToken] = "   "

	_, err := Load(envFrom(env))
	var missing *MissingEnvError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingEnvError for blank value, got %v", err)
	}
	if len(missing.Variables) != 1 || missing.Variables[0] != EnvTodoistToken {
		t.Fatalf("missing variables = %v, want [%s]", missing.Variables, EnvTodoistToken)
	}
}

func TestLoadReportsAllMissingVariables(t *testing.T) {
	_, err := Load(envFrom(nil))
	var missing *MissingEnvError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingEnvError, got %v", err)
	}
	if len(missing.Variables) != 3 {
		t.Fatalf("missing variables = %v, want all three", missing.Variables)
	}
	for _, name := range []string{EnvTodoistToken, EnvTelegramBotToken, EnvTelegramChatID} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q does not name %s", err, name)
		}
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	path := writeSettings(t, `
[schedule]
timezone = "UTC"
send_hour = 9

[api]
todoist_base_url = "http://todoist.local/rest/v2"
telegram_base_url = "http://telegram.local"
request_timeout = "5s"

[log]
level = "debug"
`)
	env := fullEnv()
	env[EnvSettingsPath] = path

	cfg, err := Load(envFrom(env))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got, want := cfg.Timezone.String(), "UTC"; got != want {
		t.Fatalf("Timezone = %q, want %q", got, want)
	}
	if cfg.SendHour != 9 {
		t.Fatalf("SendHour = %d, want 9", cfg.SendHour)
	}
	if cfg.TodoistBaseURL != "http://todoist.local/rest/v2" {
		t.Fatalf("TodoistBaseURL = %q", cfg.TodoistBaseURL)
	}
	if cfg.TelegramBaseURL != "http://telegram.local" {
		t.Fatalf("TelegramBaseURL = %q", cfg.TelegramBaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("RequestTimeout = %s, want 5s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadSettingsFileUnreadable(t *testing.T) {
	env := fullEnv()
	env[EnvSettingsPath] = filepath.Join(t.TempDir(), "absent.toml")

	if _, err := Load(envFrom(env)); err == nil {
		t.Fatal("expected error for unreadable settings file")
	}
}

func TestLoadRejectsBadSettings(t *testing.T) {
	cases := map[string]string{
		"send_hour_out_of_range": "[schedule]\nsend_hour = 24\n",
		"negative_send_hour":     "[schedule]\nsend_hour = -1\n",
		"unknown_timezone":       "[schedule]\ntimezone = \"Mars/Olympus\"\n",
		"bad_duration":           "[api]\nrequest_timeout = \"soon\"\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			env := fullEnv()
			env[EnvSettingsPath] = writeSettings(t, body)
			if _, err := Load(envFrom(env)); err == nil {
				t.Fatal("expected settings validation error")
			}
		})
	}
}

func TestLoadTrimsCredentials(t *testing.T) {
	env := fullEnv()
	env[EnvTodoistToken] = "  todoist-token \n"

	cfg, err := Load(envFrom(env))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TodoistToken != "todoist-token" {
		t.Fatalf("TodoistToken = %q, want trimmed value", cfg.TodoistToken)
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Fatalf("duration = %s, want 90s", d.Duration)
	}
	if err := d.UnmarshalText([]byte("ninety")); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}
