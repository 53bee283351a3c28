package config

import (
	"log"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Prefix namespaces every key (PETPAL_PORT); the bare names (PORT) are
// accepted too because envconfig falls back to the tag name.
const Prefix = "petpal"

const devSecret = "petpal-dev-secret"

type Config struct {
	AppEnv    string        `envconfig:"app_env" default:"development"`
	Port      string        `envconfig:"port" default:"5000"`
	JWTSecret string        `envconfig:"jwt_secret_key"`
	TokenTTL  time.Duration `envconfig:"token_ttl" default:"24h"`

	DBDriver          string        `envconfig:"db_driver" default:"sqlite"`
	DBDSN             string        `envconfig:"db_dsn" default:"app.db"`
	DBMaxOpenConns    int           `envconfig:"db_max_open_conns" default:"25"`
	DBMaxIdleConns    int           `envconfig:"db_max_idle_conns" default:"5"`
	DBConnMaxLifetime time.Duration `envconfig:"db_conn_max_lifetime" default:"30m"`

	RedisURL     string `envconfig:"redis_url"`
	KafkaBrokers string `envconfig:"kafka_brokers"`
	KafkaTopic   string `envconfig:"kafka_topic" default:"conversation.messages.created"`

	OTELEndpoint    string `envconfig:"otel_exporter_otlp_endpoint"`
	OTELServiceName string `envconfig:"otel_service_name" default:"petpal-messaging"`

	LogLevel  string `envconfig:"log_level" default:"info"`
	LogFormat string `envconfig:"log_format" default:"json"`

	CORSOrigins []string `envconfig:"cors_origins" default:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"`

	RateLimitWindow   time.Duration `envconfig:"rate_limit_window" default:"10s"`
	RateLimitCapacity uint          `envconfig:"rate_limit_capacity" default:"20"`

	WSReadLimit    int64         `envconfig:"ws_read_limit" default:"65536"`
	WSPingInterval time.Duration `envconfig:"ws_ping_interval" default:"25s"`
	WSPongWait     time.Duration `envconfig:"ws_pong_wait" default:"60s"`
	WSSendBuffer   int           `envconfig:"ws_send_buffer" default:"64"`
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// Load reads .env outside production and then the process environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" && os.Getenv("PETPAL_APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("[config] couldn't load .env: %v", err)
		}
	}

	c := &Config{}
	if err := envconfig.Process(Prefix, c); err != nil {
		return nil, errors.Wrap(err, "process env")
	}
	if c.JWTSecret == "" && !c.IsProduction() {
		log.Printf("[config] JWT_SECRET_KEY unset, using the development secret")
		c.JWTSecret = devSecret
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if !slices.Contains([]string{"development", "staging", "production"}, c.AppEnv) {
		return errors.Errorf("APP_ENV must be development, staging or production, got %q", c.AppEnv)
	}
	if !slices.Contains([]string{"sqlite", "mysql", "postgres"}, c.DBDriver) {
		return errors.Errorf("DB_DRIVER must be sqlite, mysql or postgres, got %q", c.DBDriver)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.WSSendBuffer <= 0 {
		return errors.New("WS_SEND_BUFFER must be positive")
	}
	return nil
}
