package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings are user preferences for the CLI, separate from chain files.
type Settings struct {
	DataDir  string  `mapstructure:"data_dir"`
	LogLevel string  `mapstructure:"log_level"`
	FPS      float64 `mapstructure:"fps"`
	Theme    string  `mapstructure:"theme"`
}

// LoadSettings reads settings from file and env. Env var overrides use prefix KINCHAIN_.
func LoadSettings() (Settings, error) {
	v := viper.New()

	v.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "kinchain", "runs"))
	v.SetDefault("log_level", "info")
	v.SetDefault("fps", 30.0)
	v.SetDefault("theme", "default")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("KINCHAIN_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "kinchain"))
		v.SetConfigName("settings")
	}

	v.SetEnvPrefix("KINCHAIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// settings file is optional
	_ = v.ReadInConfig()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if s.FPS <= 0 {
		s.FPS = 30
	}
	return s, nil
}
