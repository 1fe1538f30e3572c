// Package config loads isobox settings from defaults, an optional YAML
// file and ISOBOX_ environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tyrese/isobox/format/mp4/mp4io"
	"github.com/tyrese/isobox/internal/logger"
)

const EnvPrefix = "ISOBOX"

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type WalkConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
	Workers  int `mapstructure:"workers"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type Config struct {
	Log     logger.Config `mapstructure:"log"`
	Walk    WalkConfig    `mapstructure:"walk"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.log_path", "")
	v.SetDefault("log.max_size", 64)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("walk.max_depth", mp4io.DefaultMaxDepth)
	v.SetDefault("walk.workers", 4)
	v.SetDefault("output.format", FormatText)
	v.SetDefault("metrics.textfile", "")
}

// New returns a viper instance with defaults and environment binding in
// place. file may be empty.
func New(file string) (v *viper.Viper, err error) {
	v = viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config %s: %w", file, err)
			v = nil
			return
		}
	}
	return
}

func Unmarshal(v *viper.Viper) (cfg *Config, err error) {
	cfg = &Config{}
	if err = v.Unmarshal(cfg); err != nil {
		cfg = nil
		err = fmt.Errorf("decode config: %w", err)
		return
	}
	if err = cfg.Validate(); err != nil {
		cfg = nil
	}
	return
}

func Load(file string) (cfg *Config, err error) {
	var v *viper.Viper
	if v, err = New(file); err != nil {
		return
	}
	return Unmarshal(v)
}

var ErrInvalid = errors.New("config: invalid value")

func (self *Config) Validate() error {
	switch self.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: output.format %q", ErrInvalid, self.Output.Format)
	}
	if self.Walk.MaxDepth <= 0 {
		return fmt.Errorf("%w: walk.max_depth %d", ErrInvalid, self.Walk.MaxDepth)
	}
	if self.Walk.Workers <= 0 {
		return fmt.Errorf("%w: walk.workers %d", ErrInvalid, self.Walk.Workers)
	}
	return nil
}
