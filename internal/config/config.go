package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings courier needs to reach the marketplace API.
type Config struct {
	APIBase  string
	APIToken string

	OrderID string
	RiderID string
	UserID  string

	OrderPoll  time.Duration
	WalletPoll time.Duration
	ChatPoll   time.Duration

	LogFile  string
	LogLevel string
}

const (
	defaultConfigPath = "~/.config/courier/config.toml"
	defaultLogFile    = "~/.local/state/courier/courier.log"
	defaultAPIBase    = "http://127.0.0.1:8088"
	defaultLogLevel   = "info"
	defaultOrderPoll  = 5 * time.Second
	defaultWalletPoll = 10 * time.Second
	defaultChatPoll   = 10 * time.Second
	minPollInterval   = time.Second
	envConfigPath     = "COURIER_CONFIG"
	envAPIToken       = "COURIER_API_TOKEN"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:    defaultAPIBase,
		OrderPoll:  defaultOrderPoll,
		WalletPoll: defaultWalletPoll,
		ChatPoll:   defaultChatPoll,
		LogFile:    mustExpand(defaultLogFile),
		LogLevel:   defaultLogLevel,
	}
}

// Load locates and parses the courier config, falling back to defaults when
// missing. COURIER_CONFIG overrides an empty path; COURIER_API_TOKEN fills an
// empty token.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.APIToken = strings.TrimSpace(os.Getenv(envAPIToken))
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase           string `toml:"api_base"`
		APIToken          string `toml:"api_token"`
		OrderID           string `toml:"order_id"`
		RiderID           string `toml:"rider_id"`
		UserID            string `toml:"user_id"`
		OrderPollSeconds  int    `toml:"order_poll_seconds"`
		WalletPollSeconds int    `toml:"wallet_poll_seconds"`
		ChatPollSeconds   int    `toml:"chat_poll_seconds"`
		LogFile           string `toml:"log_file"`
		LogLevel          string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	cfg.APIToken = strings.TrimSpace(raw.APIToken)
	if cfg.APIToken == "" {
		cfg.APIToken = strings.TrimSpace(os.Getenv(envAPIToken))
	}
	cfg.OrderID = strings.TrimSpace(raw.OrderID)
	cfg.RiderID = strings.TrimSpace(raw.RiderID)
	cfg.UserID = strings.TrimSpace(raw.UserID)

	cfg.OrderPoll = pollInterval(raw.OrderPollSeconds, defaultOrderPoll)
	cfg.WalletPoll = pollInterval(raw.WalletPollSeconds, defaultWalletPoll)
	cfg.ChatPoll = pollInterval(raw.ChatPollSeconds, defaultChatPoll)

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Validate reports settings that would keep a screen from polling.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIBase) == "" {
		errs = append(errs, errors.New("api_base is empty"))
	}
	polls := []struct {
		name string
		d    time.Duration
	}{
		{"order_poll_seconds", c.OrderPoll},
		{"wallet_poll_seconds", c.WalletPoll},
		{"chat_poll_seconds", c.ChatPoll},
	}
	for _, p := range polls {
		if p.d < minPollInterval {
			errs = append(errs, fmt.Errorf("%s must be at least 1", p.name))
		}
	}
	return errors.Join(errs...)
}

// Path returns the config path Load would read for path.
func Path(path string) (string, error) {
	return resolvePath(path)
}

func pollInterval(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		if env := strings.TrimSpace(os.Getenv(envConfigPath)); env != "" {
			return expandPath(env)
		}
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
