package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"3000"`
	APIURL       string        `env:"API_URL"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type DatabaseConfig struct {
	Driver         string `env:"DRIVER" envDefault:"sqlite"`
	DSN            string `env:"DSN" envDefault:"file:app.db?cache=shared"`
	ConnectRetries int    `env:"CONNECT_RETRIES" envDefault:"5"`
}

// RedisConfig enables the user cache when Addr is set.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Enabled bool        `env:"ENABLED" envDefault:"false"`
	Brokers []string    `env:"BROKERS" envDefault:"localhost:9092" envSeparator:","`
	GroupID string      `env:"GROUP_ID" envDefault:"user-events-tail"`
	Topics  TopicConfig `envPrefix:"TOPIC_"`
	// PublishTimeout bounds each publish so a down broker cannot stall a request.
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"2s"`
}

type TopicConfig struct {
	UserCreated string `env:"CREATED" envDefault:"users.created"`
	UserUpdated string `env:"UPDATED" envDefault:"users.updated"`
	UserDeleted string `env:"DELETED" envDefault:"users.deleted"`
}

func (t TopicConfig) All() []string {
	return []string{t.UserCreated, t.UserUpdated, t.UserDeleted}
}

type LogConfig struct {
	Dir string `env:"DIR" envDefault:"logs"`
}

// LoadEnvFile loads .env into the process environment. The returned error only
// says the file could not be read; callers treat that as a warning.
func LoadEnvFile(filenames ...string) error {
	return godotenv.Load(filenames...)
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Server.APIURL == "" {
		cfg.Server.APIURL = fmt.Sprintf("http://localhost:%s", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.Database.ConnectRetries < 1 {
		cfg.Database.ConnectRetries = 1
	}

	return cfg, nil
}
