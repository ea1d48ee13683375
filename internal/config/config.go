// Package config loads runtime settings from .env, an optional YAML file and
// MODHUB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	// Driver is one of "file", "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
}

type UploadConfig struct {
	Dir          string `mapstructure:"dir"`
	MaxSize      int64  `mapstructure:"max_size"`
	PublicPrefix string `mapstructure:"public_prefix"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Enabled reports whether a Redis relay should be started.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type AlertsConfig struct {
	Language string `mapstructure:"language"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type DiscordConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
}

// Load reads .env (if present), configs/config.yaml (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")

	v.SetEnvPrefix("MODHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations that cannot be caught by defaults alone.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the file driver")
		}
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s driver", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	// Без секрету сервер генерує тимчасовий, але в release він обов'язковий.
	if c.Server.Mode == ReleaseMode && len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes in release mode", MinJWTSecretLength)
	}
	if c.Upload.MaxSize <= 0 || c.Upload.MaxSize > MaxUploadSize {
		return fmt.Errorf("upload.max_size must be between 1 and %d", MaxUploadSize)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data/store.json")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 72*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "")

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", MaxUploadSize)
	v.SetDefault("upload.public_prefix", "/uploads")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "modhub:events")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("alerts.language", "pt")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("discord.bot_token", "")
	v.SetDefault("discord.channel_id", "")
}
