package config

import (
	"fmt"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

const DefaultAPIBaseURL = "http://localhost:8080"

type Config struct {
	APIBaseURL  string        `koanf:"api_base_url"`
	APIToken    string        `koanf:"api_token"`
	Timeout     time.Duration `koanf:"timeout"`
	LogFile     string        `koanf:"log_file"`
	MetricsFile string        `koanf:"metrics_file"`
	Debug       bool          `koanf:"debug"`
}

func Default() Config {
	return Config{
		APIBaseURL: DefaultAPIBaseURL,
		Timeout:    20 * time.Second,
		LogFile:    "./milkdesk.log",
		Debug:      false,
	}
}

func New() (Config, error) {
	cfg := Default()

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}
