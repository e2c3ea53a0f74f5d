package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds everything the process reads from the environment. Defaults
// match a local single-node Cassandra.
type Config struct {
	CassandraHost     string `env:"CASSANDRA_HOST" envDefault:"localhost"`
	CassandraPort     int    `env:"CASSANDRA_PORT" envDefault:"9042"`
	CassandraKeyspace string `env:"CASSANDRA_KEYSPACE" envDefault:"messenger"`

	// MaxRetries bounds the startup connection loop; 0 retries forever.
	MaxRetries uint `env:"CASSANDRA_MAX_RETRIES" envDefault:"30"`
	// RetryDelaySeconds is the fixed pause between connection attempts.
	RetryDelaySeconds int `env:"CASSANDRA_RETRY_DELAY" envDefault:"5"`

	QueryTimeout time.Duration `env:"CASSANDRA_QUERY_TIMEOUT" envDefault:"10s"`

	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	Env            string   `env:"ENV" envDefault:"development"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RetryDelay returns the connection retry pause as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}
