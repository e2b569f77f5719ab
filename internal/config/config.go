package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/benbeisheim/clonechess-backend/internal/obslog"
	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	Server ServerConfig  `yaml:"server"`
	Rules  RulesConfig   `yaml:"rules"`
	Games  GamesConfig   `yaml:"games"`
	Redis  RedisConfig   `yaml:"redis"`
	Log    obslog.Config `yaml:"log"`
}

type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	WSReadBufferSize  int      `yaml:"ws_read_buffer_size"`
	WSWriteBufferSize int      `yaml:"ws_write_buffer_size"`
}

type RulesConfig struct {
	EnforceTurn    bool `yaml:"enforce_turn"`
	HaltOnTerminal bool `yaml:"halt_on_terminal"`
}

type GamesConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// RedisConfig enables move event publishing when URL is set.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:              ":3000",
			AllowedOrigins:    []string{"http://localhost:5173"},
			WSReadBufferSize:  1024,
			WSWriteBufferSize: 1024,
		},
		Rules: RulesConfig{
			EnforceTurn:    false,
			HaltOnTerminal: true,
		},
		Games: GamesConfig{MaxConcurrent: 200},
		Redis: RedisConfig{Channel: "clonechess:events"},
		Log:   obslog.Config{Level: "info", Format: "console"},
	}
}

// Load returns defaults, overlaid by the YAML file at path (if any), overlaid
// by environment variables.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(raw []byte, cfg *AppConfig) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyEnv(cfg *AppConfig) error {
	if v := strings.TrimSpace(os.Getenv("CLONECHESS_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("CLONECHESS_ALLOWED_ORIGINS")); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Redis.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_CHANNEL")); v != "" {
		cfg.Redis.Channel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
		cfg.Log.File = v
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CONCURRENT_GAMES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_CONCURRENT_GAMES: %w", err)
		}
		cfg.Games.MaxConcurrent = n
	}
	if v := strings.TrimSpace(os.Getenv("RULES_ENFORCE_TURN")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RULES_ENFORCE_TURN: %w", err)
		}
		cfg.Rules.EnforceTurn = b
	}
	if v := strings.TrimSpace(os.Getenv("RULES_HALT_ON_TERMINAL")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RULES_HALT_ON_TERMINAL: %w", err)
		}
		cfg.Rules.HaltOnTerminal = b
	}
	return nil
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return errors.New("server.allowed_origins must not be empty")
	}
	if c.Games.MaxConcurrent <= 0 {
		return fmt.Errorf("games.max_concurrent must be positive, got %d", c.Games.MaxConcurrent)
	}
	if c.Redis.URL != "" && strings.TrimSpace(c.Redis.Channel) == "" {
		return errors.New("redis.channel is required when redis.url is set")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
