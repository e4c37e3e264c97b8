package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port" toml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	ReadOnly        bool          `yaml:"read_only" toml:"read_only"`
	CORSOrigin      string        `yaml:"cors_origin" toml:"cors_origin"`
}

type StoreConfig struct {
	Driver  string        `yaml:"driver" toml:"driver"` // memory|sqlite|postgres
	DSN     string        `yaml:"dsn" toml:"dsn"`
	Latency time.Duration `yaml:"latency" toml:"latency"`
	Seed    *bool         `yaml:"seed" toml:"seed"`
}

type AIConfig struct {
	APIKey  string        `yaml:"api_key" toml:"api_key"`
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Model   string        `yaml:"model" toml:"model"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	DryRun  bool          `yaml:"dry_run" toml:"dry_run"`
}

type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr" toml:"redis_addr"`
	Prefix    string        `yaml:"prefix" toml:"prefix"`
	TTL       time.Duration `yaml:"ttl" toml:"ttl"`
}

type UIConfig struct {
	ToastWindow time.Duration `yaml:"toast_window" toml:"toast_window"`
	Locale      string        `yaml:"locale" toml:"locale"`
	FontPath    string        `yaml:"font_path" toml:"font_path"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" toml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port" toml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user" toml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password" toml:"smtp_password"`
	FromEmail    string `yaml:"from_email" toml:"from_email"`
	ToEmail      string `yaml:"to_email" toml:"to_email"`
}

type TelegramConfig struct {
	Token  string `yaml:"token" toml:"token"`
	ChatID int64  `yaml:"chat_id" toml:"chat_id"`
}

type DigestConfig struct {
	Time string `yaml:"time" toml:"time"` // HH:MM, empty disables
}

type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Store    StoreConfig    `yaml:"store" toml:"store"`
	AI       AIConfig       `yaml:"ai" toml:"ai"`
	Cache    CacheConfig    `yaml:"cache" toml:"cache"`
	UI       UIConfig       `yaml:"ui" toml:"ui"`
	Email    EmailConfig    `yaml:"email" toml:"email"`
	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
	Digest   DigestConfig   `yaml:"digest" toml:"digest"`
}

// LoadConfig reads the file named by TODOBOARD_CONFIG (or config/config.yaml).
// A missing file is not an error: defaults and env overrides still apply.
func LoadConfig() *Config {
	path := strings.TrimSpace(os.Getenv("TODOBOARD_CONFIG"))
	if path == "" {
		path = defaultPath
	}
	cfg, err := Load(path)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TODOBOARD_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("TODOBOARD_STORE_DRIVER")); v != "" {
		cfg.Store.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("TODOBOARD_STORE_DSN")); v != "" {
		cfg.Store.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("TODOBOARD_REDIS_ADDR")); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" && cfg.Telegram.Token == "" {
		cfg.Telegram.Token = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = "*"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.Driver == "sqlite" && cfg.Store.DSN == "" {
		cfg.Store.DSN = "data/todoboard.db"
	}
	if cfg.Store.Latency < 0 {
		cfg.Store.Latency = 0
	}
	if cfg.Store.Seed == nil {
		seed := cfg.Store.Driver == "memory"
		cfg.Store.Seed = &seed
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-5-nano"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "todoboard:suggest:"
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.UI.ToastWindow <= 0 {
		cfg.UI.ToastWindow = 4 * time.Second
	}
	if cfg.UI.Locale == "" {
		cfg.UI.Locale = "en"
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	return nil
}

// SeedEnabled reports whether demo tasks should be loaded into the store.
func (c *Config) SeedEnabled() bool {
	return c.Store.Seed != nil && *c.Store.Seed
}
