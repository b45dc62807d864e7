package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Match  MatchConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URI          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type MatchConfig struct {
	// MaxMessageLen bounds relayed chat messages, in runes, after trimming
	MaxMessageLen int

	// Per-IP budget for the synchronous match endpoint
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

var (
	configInstance *Config
	once           sync.Once
)

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("PAIRCHAT_HOST", "")
		viper.SetDefault("PAIRCHAT_PORT", "8080")
		viper.SetDefault("PAIRCHAT_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("PAIRCHAT_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("PAIRCHAT_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("PAIRCHAT_MAX_MESSAGE_LEN", 500)
		viper.SetDefault("PAIRCHAT_RATE_LIMIT_REQUESTS", 10)
		viper.SetDefault("PAIRCHAT_RATE_LIMIT_WINDOW", 15*time.Minute)
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.AutomaticEnv()

		configInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("PAIRCHAT_HOST"),
				Port:         viper.GetString("PAIRCHAT_PORT"),
				ReadTimeout:  viper.GetDuration("PAIRCHAT_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("PAIRCHAT_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("PAIRCHAT_IDLE_TIMEOUT"),
			},
			Redis: RedisConfig{
				URI:          viper.GetString("REDIS_URL"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			Match: MatchConfig{
				MaxMessageLen:     viper.GetInt("PAIRCHAT_MAX_MESSAGE_LEN"),
				RateLimitRequests: viper.GetInt("PAIRCHAT_RATE_LIMIT_REQUESTS"),
				RateLimitWindow:   viper.GetDuration("PAIRCHAT_RATE_LIMIT_WINDOW"),
			},
		}
	})

	return configInstance, nil
}
