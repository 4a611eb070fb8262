package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// cliConfig holds the resolved settings for the CLI process: the
// database path and the engine's tunable parameters. Resolution order
// (highest wins): environment variables (OPENMEM_*), the config file
// (--config, else ~/.openmem/config.yaml), built-in defaults. No
// command-line flag overrides these settings.
type cliConfig struct {
	DBPath      string  `mapstructure:"db_path"`
	MaxHops     int     `mapstructure:"max_hops"`
	DecayPerHop float64 `mapstructure:"decay_per_hop"`
	LogLevel    string  `mapstructure:"log_level"`
	LogFormat   string  `mapstructure:"log_format"`
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./openmem.db"
	}
	return filepath.Join(home, ".openmem", "memories.db")
}

func loadConfig(configFile string) (*cliConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".openmem"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("openmem")
	v.AutomaticEnv()

	// db_path's env var is OPENMEM_DB (spec'd), not the AutomaticEnv-derived
	// OPENMEM_DB_PATH, so it needs an explicit binding.
	v.BindEnv("db_path", "OPENMEM_DB")

	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("max_hops", 2)
	v.SetDefault("decay_per_hop", 0.5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &cliConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
