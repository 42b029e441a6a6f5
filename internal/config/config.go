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

// Config captures everything the client needs to reach the API and pace
// its background refreshes.
type Config struct {
	APIBaseURL       string
	SessionPath      string
	PrefsPath        string
	LogPath          string
	LogLevel         string
	LogFormat        string
	PageSize         int
	DefaultSort      string
	ChatListInterval time.Duration
	ThreadInterval   time.Duration
	RequestTimeout   time.Duration
}

const (
	defaultConfigPath       = "~/.config/rentme/config.toml"
	defaultSessionPath      = "~/.config/rentme/session.toml"
	defaultPrefsPath        = "~/.config/rentme/prefs.toml"
	defaultLogPath          = "~/.local/share/rentme/rentme.log"
	defaultAPIBaseURL       = "http://127.0.0.1:8080/api/v1"
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultPageSize         = 20
	defaultSort             = "price_asc"
	defaultChatListInterval = 8 * time.Second
	defaultThreadInterval   = 7 * time.Second
	defaultRequestTimeout   = 15 * time.Second

	// EnvAPIBaseURL overrides api_base_url when set.
	EnvAPIBaseURL = "RENTME_API_BASE_URL"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:       defaultAPIBaseURL,
		SessionPath:      MustExpand(defaultSessionPath),
		PrefsPath:        MustExpand(defaultPrefsPath),
		LogPath:          MustExpand(defaultLogPath),
		LogLevel:         defaultLogLevel,
		LogFormat:        defaultLogFormat,
		PageSize:         defaultPageSize,
		DefaultSort:      defaultSort,
		ChatListInterval: defaultChatListInterval,
		ThreadInterval:   defaultThreadInterval,
		RequestTimeout:   defaultRequestTimeout,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBaseURL         string `toml:"api_base_url"`
		SessionPath        string `toml:"session_path"`
		PrefsPath          string `toml:"prefs_path"`
		LogPath            string `toml:"log_path"`
		LogLevel           string `toml:"log_level"`
		LogFormat          string `toml:"log_format"`
		PageSize           int    `toml:"page_size"`
		DefaultSort        string `toml:"default_sort"`
		ChatListIntervalMS int    `toml:"chat_list_interval_ms"`
		ThreadIntervalMS   int    `toml:"thread_interval_ms"`
		RequestTimeoutMS   int    `toml:"request_timeout_ms"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(raw.SessionPath); v != "" {
		cfg.SessionPath = MustExpand(v)
	}
	if v := strings.TrimSpace(raw.PrefsPath); v != "" {
		cfg.PrefsPath = MustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = MustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		cfg.LogFormat = v
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.DefaultSort); v != "" {
		cfg.DefaultSort = v
	}
	if raw.ChatListIntervalMS > 0 {
		cfg.ChatListInterval = time.Duration(raw.ChatListIntervalMS) * time.Millisecond
	}
	if raw.ThreadIntervalMS > 0 {
		cfg.ThreadInterval = time.Duration(raw.ThreadIntervalMS) * time.Millisecond
	}
	if raw.RequestTimeoutMS > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutMS) * time.Millisecond
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		cfg.APIBaseURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

// MustExpand is ExpandPath that returns path unchanged on failure.
func MustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading "~" and returns an absolute path.
func ExpandPath(path string) (string, error) {
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
