package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Admin    AdminConfig
	Orders   OrdersConfig
	Storage  StorageConfig
	Log      LogConfig
}

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the driver: "postgres" uses the host settings,
// "sqlite3" uses Path.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	Path         string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	TokenTTL     time.Duration // hard upper bound on a signed token
	CookieSecure bool
	LoginRate    float64 // attempts per second per client IP
	LoginBurst   int
}

// AdminConfig is the account ensured at startup. Empty email disables it.
type AdminConfig struct {
	Email    string
	Password string
}

type OrdersConfig struct {
	StatusPolicy string // forward, free
}

type StorageConfig struct {
	Driver         string // local, s3
	Dir            string
	PublicPrefix   string
	MaxUploadBytes int64
	S3             S3Config
}

type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PublicURL    string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load reads configuration. Priority (highest to lowest):
// 1. Environment variables with SHOP_ prefix (e.g. SHOP_DATABASE_PASSWORD), also from .env
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "toy-wholesale")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.request_timeout", 15*time.Second)
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "toys")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "toys.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.session_ttl", 30*time.Minute)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.login_rate", 0.2)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("orders.status_policy", "forward")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.public_prefix", "/uploads/")
	v.SetDefault("storage.max_upload_bytes", 5<<20)
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.use_path_style", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// FromViper builds the config struct from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:            v.GetString("app.name"),
			Env:             v.GetString("app.env"),
			Port:            v.GetString("app.port"),
			RequestTimeout:  v.GetDuration("app.request_timeout"),
			ShutdownTimeout: v.GetDuration("app.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("database.driver"),
			Host:         v.GetString("database.host"),
			Port:         v.GetInt("database.port"),
			User:         v.GetString("database.user"),
			Password:     v.GetString("database.password"),
			DBName:       v.GetString("database.dbname"),
			SSLMode:      v.GetString("database.sslmode"),
			Path:         v.GetString("database.path"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret:    v.GetString("auth.jwt_secret"),
			SessionTTL:   v.GetDuration("auth.session_ttl"),
			TokenTTL:     v.GetDuration("auth.token_ttl"),
			CookieSecure: v.GetBool("auth.cookie_secure"),
			LoginRate:    v.GetFloat64("auth.login_rate"),
			LoginBurst:   v.GetInt("auth.login_burst"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
		Orders: OrdersConfig{
			StatusPolicy: v.GetString("orders.status_policy"),
		},
		Storage: StorageConfig{
			Driver:         v.GetString("storage.driver"),
			Dir:            v.GetString("storage.dir"),
			PublicPrefix:   v.GetString("storage.public_prefix"),
			MaxUploadBytes: v.GetInt64("storage.max_upload_bytes"),
			S3: S3Config{
				Endpoint:     v.GetString("storage.s3.endpoint"),
				Region:       v.GetString("storage.s3.region"),
				Bucket:       v.GetString("storage.s3.bucket"),
				AccessKey:    v.GetString("storage.s3.access_key"),
				SecretKey:    v.GetString("storage.s3.secret_key"),
				UsePathStyle: v.GetBool("storage.s3.use_path_style"),
				PublicURL:    v.GetString("storage.s3.public_url"),
			},
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	switch strings.ToLower(c.Orders.StatusPolicy) {
	case "", "forward", "free":
	default:
		return fmt.Errorf("unsupported orders.status_policy %q", c.Orders.StatusPolicy)
	}
	if c.Admin.Email != "" && len(c.Admin.Password) < 6 {
		return errors.New("admin.password must be at least 6 characters")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite3" {
		return fmt.Sprintf("file:%s?_foreign_keys=on", d.Path)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
