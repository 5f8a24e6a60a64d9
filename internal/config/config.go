package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Rooms      Rooms  `yaml:"rooms"`
	Bot        Bot    `yaml:"bot"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Rooms - lobby tuning. Retention is how long a room stays listable after
// creation; RefreshInterval is the polling period that propagates room state
// between sessions.
type Rooms struct {
	Retention       time.Duration `env:"ROOM_RETENTION" env-default:"1h"`
	RefreshInterval time.Duration `env:"ROOM_REFRESH_INTERVAL" env-default:"5s"`
}

// Bot - the artificial pause before the opponent answers, pacing only.
type Bot struct {
	TurnDelay time.Duration `env:"BOT_TURN_DELAY" env-default:"800ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
