package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis     `yaml:"redis"`
	Countdown  Countdown `yaml:"countdown"`
	NATS       NATS      `yaml:"nats"`
	CORS       CORS      `yaml:"cors"`
}

type Redis struct {
	Host string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL  time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"1h"`
}

// Countdown - per-turn timer. A disabled countdown gives every player unlimited time.
type Countdown struct {
	Disabled     bool          `yaml:"disabled" env:"COUNTDOWN_DISABLED" env-default:"false"`
	Ticks        int           `yaml:"ticks" env:"COUNTDOWN_TICKS" env-default:"3"`
	TickInterval time.Duration `yaml:"tick-interval" env:"COUNTDOWN_TICK_INTERVAL" env-default:"1s"`
}

// NATS - game events are published only when the url is set, ticks never are.
type NATS struct {
	URL           string `yaml:"url" env:"NATS_URL" env-default:""`
	SubjectPrefix string `yaml:"subject-prefix" env:"NATS_SUBJECT_PREFIX" env-default:"blindtictactoe"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed-origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// MustLoad - load all configurations in config.yml file, variables from an optional .env file take part too.
func MustLoad(path string) *Config {
	// .env is optional, a missing file is not an error
	_ = godotenv.Load()

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Countdown) Enabled() bool {
	return !that.Disabled && that.Ticks > 0
}
