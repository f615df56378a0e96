package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	QR       *QRConfig       `mapstructure:"qr"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	LogLevel           string        `mapstructure:"log_level"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host             string        `mapstructure:"host"`
	Port             string        `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DB               string        `mapstructure:"db"`
	SSLMode          string        `mapstructure:"sslmode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
	if c.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}
	return dsn
}

type RedisConfig struct {
	URL             string        `mapstructure:"url"`
	ValidationLimit int64         `mapstructure:"validation_limit"`
	Window          time.Duration `mapstructure:"window"`
}

type QRConfig struct {
	Size          int    `mapstructure:"size"`
	RecoveryLevel string `mapstructure:"recovery_level"`
}

// Load reads the YAML file at path. Any key can be overridden from the
// environment by upper-casing it and replacing dots with underscores, e.g.
// POSTGRES_HOST or API_JWT_SIGNING_KEY.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// Watch calls onChange with the reloaded config each time the file at path
// changes. Reload errors are passed to onError and the old config stays.
func Watch(path string, onChange func(*AppConfig), onError func(error)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	v.OnConfigChange(func(fsnotify.Event) {
		conf, err := decode(v)
		if err != nil {
			onError(err)
			return
		}
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.environment", EnvDevelopment)
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.jwt_ttl", 24*time.Hour)
	v.SetDefault("api.shutdown_timeout", 10*time.Second)
	v.SetDefault("gin.mode", "release")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 25)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.lock_timeout", 5*time.Second)
	v.SetDefault("redis.validation_limit", 60)
	v.SetDefault("redis.window", time.Minute)
	v.SetDefault("qr.size", 300)
	v.SetDefault("qr.recovery_level", "medium")

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return conf, nil
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Gin, validation.Required),
		validation.Field(&c.Postgres, validation.Required),
		validation.Field(&c.Redis, validation.Required),
		validation.Field(&c.QR, validation.Required),
	)
}

func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Environment, validation.Required, validation.In(EnvDevelopment, EnvProduction)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.JWTSigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.JWTTTL, validation.Required),
	)
}

func (c *GinConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Mode, validation.In("debug", "release", "test")),
	)
}

func (c *PostgresConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.LockTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxOpenConns, validation.Min(1)),
	)
}

func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.ValidationLimit, validation.Min(int64(1))),
		validation.Field(&c.Window, validation.Min(time.Second)),
	)
}

func (c *QRConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Size, validation.Min(64), validation.Max(2048)),
		validation.Field(&c.RecoveryLevel, validation.In("low", "medium", "high", "highest")),
	)
}
