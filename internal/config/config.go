// Package config assembles and validates the daybrief runtime configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables required for every run. Credentials are read from
// the environment only, never from the settings file.
const (
	EnvTodoistToken     = "TODOIST_TOKEN"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"

	// EnvSettingsPath optionally names a TOML settings file with
	// operational overrides. Absent in the common case.
	EnvSettingsPath = "DAYBRIEF_CONFIG"
)

const (
	defaultTimezone       = "Europe/Paris"
	defaultSendHour       = 7
	defaultRequestTimeout = 20 * time.Second
	defaultLogLevel       = "info"
)

// MissingEnvError reports required environment variables that are unset or
// blank. It is the signal main uses to exit with the configuration status.
type MissingEnvError struct {
	Variables []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("required environment variables not set: %s", strings.Join(e.Variables, ", "))
}

// Duration is a time.Duration that unmarshals from TOML strings like "20s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Settings mirrors the optional TOML settings file. Every field has a
// default; the file exists only to override them.
type Settings struct {
	Schedule Schedule `toml:"schedule"`
	API      API      `toml:"api"`
	Log      Log      `toml:"log"`
}

type Schedule struct {
	Timezone string `toml:"timezone"`
	SendHour int    `toml:"send_hour"` // 1..23; 0 selects the default hour
}

type API struct {
	// Base URL overrides for tests and proxies. Empty means the client's
	// production endpoint.
	TodoistBaseURL  string   `toml:"todoist_base_url"`
	TelegramBaseURL string   `toml:"telegram_base_url"`
	RequestTimeout  Duration `toml:"request_timeout"`
}

type Log struct {
	Level string `toml:"level"`
}

// Config is the resolved runtime configuration. main builds it once and
// hands it (or fields of it) to components; nothing mutates it afterwards.
type Config struct {
	TodoistToken     string
	TelegramBotToken string
	TelegramChatID   string

	Timezone        *time.Location
	SendHour        int
	TodoistBaseURL  string
	TelegramBaseURL string
	RequestTimeout  time.Duration
	LogLevel        string
}

// Load resolves configuration from the environment and the optional settings
// file named by DAYBRIEF_CONFIG. The lookup function is injected so tests can
// supply an environment without mutating the process; pass os.Getenv in main.
func Load(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var missing []string
	for _, name := range []string{EnvTodoistToken, EnvTelegramBotToken, EnvTelegramChatID} {
		if strings.TrimSpace(getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingEnvError{Variables: missing}
	}

	var settings Settings
	if path := strings.TrimSpace(getenv(EnvSettingsPath)); path != "" {
		loaded, err := loadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = *loaded
	}

	applyDefaults(&settings)

	if err := validate(&settings); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}

	loc, err := time.LoadLocation(settings.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", settings.Schedule.Timezone, err)
	}

	return &Config{
		TodoistToken:     strings.TrimSpace(getenv(EnvTodoistToken)),
		TelegramBotToken: strings.TrimSpace(getenv(EnvTelegramBotToken)),
		TelegramChatID:   strings.TrimSpace(getenv(EnvTelegramChatID)),
		Timezone:         loc,
		SendHour:         settings.Schedule.SendHour,
		TodoistBaseURL:   strings.TrimSpace(settings.API.TodoistBaseURL),
		TelegramBaseURL:  strings.TrimSpace(settings.API.TelegramBaseURL),
		RequestTimeout:   settings.API.RequestTimeout.Duration,
		LogLevel:         settings.Log.Level,
	}, nil
}

func loadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return &s, nil
}

func applyDefaults(s *Settings) {
	if strings.TrimSpace(s.Schedule.Timezone) == "" {
		s.Schedule.Timezone = defaultTimezone
	}
	if s.Schedule.SendHour == 0 {
		s.Schedule.SendHour = defaultSendHour
	}
	if s.API.RequestTimeout.Duration == 0 {
		s.API.RequestTimeout.Duration = defaultRequestTimeout
	}
	if strings.TrimSpace(s.Log.Level) == "" {
		s.Log.Level = defaultLogLevel
	}
}

func validate(s *Settings) error {
	if s.Schedule.SendHour < 0 || s.Schedule.SendHour > 23 {
		return fmt.Errorf("send_hour %d out of range 0..23", s.Schedule.SendHour)
	}
	if s.API.RequestTimeout.Duration < 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", s.API.RequestTimeout.Duration)
	}
	return nil
}
