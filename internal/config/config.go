package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration of the service.
type Config struct {
	AppEnv   string
	AppPort  string
	LogLevel string

	DBDriver      string // sqlite | postgres | mongo
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string

	OTPStore      string // db | redis
	RedisAddr     string
	RedisPassword string

	OTPDemoCode string
	JWTSecret   string
	SessionTTL  time.Duration

	RabbitMQURL string

	CORSOrigins      string
	ProductListLimit int
	CartMaxAttempts  int
	SeedOnStart      bool
}

// Load reads configuration from the environment, overlaid on an optional
// config.yaml in the working directory.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads configuration through v. Tests pass a viper instance with
// values already set.
func LoadWith(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		AppEnv:           v.GetString("APP_ENV"),
		AppPort:          v.GetString("APP_PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		MongoURI:         v.GetString("MONGO_URI"),
		MongoDatabase:    v.GetString("MONGO_DATABASE"),
		OTPStore:         strings.ToLower(v.GetString("OTP_STORE")),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		OTPDemoCode:      v.GetString("OTP_DEMO_CODE"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		SessionTTL:       v.GetDuration("SESSION_TTL"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		CORSOrigins:      v.GetString("CORS_ORIGINS"),
		ProductListLimit: v.GetInt("PRODUCT_LIST_LIMIT"),
		CartMaxAttempts:  v.GetInt("CART_MAX_RETRIES"),
		SeedOnStart:      v.GetBool("SEED_ON_START"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "dropzone")
	v.SetDefault("OTP_STORE", "db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("OTP_DEMO_CODE", "123456")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("PRODUCT_LIST_LIMIT", 60)
	v.SetDefault("CART_MAX_RETRIES", 5)
	v.SetDefault("SEED_ON_START", false)
}

// Validate rejects unknown driver names.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mongo)", c.DBDriver)
	}
	switch c.OTPStore {
	case "db", "redis":
	default:
		return fmt.Errorf("unsupported OTP_STORE %q (supported: db, redis)", c.OTPStore)
	}
	return nil
}

// DSN returns DatabaseDSN or the driver's local default.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	switch c.DBDriver {
	case "postgres":
		return "host=127.0.0.1 user=postgres password=postgres dbname=dropzone port=5432 sslmode=disable"
	default:
		return "dropzone.db"
	}
}
