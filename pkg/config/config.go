package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	// DataFile is the bolt journal. Empty keeps facts in memory only.
	DataFile     string `mapstructure:"data_file"`
	StrictLexing bool   `mapstructure:"strict_lexing"`
	StrictArity  bool   `mapstructure:"strict_arity"`
	HistoryFile  string `mapstructure:"history_file"`
	Listen       string `mapstructure:"listen"`
	URL          string `mapstructure:"url"`
	LogLevel     string `mapstructure:"log_level"`
}

const EnvPrefix = "FACTLOG"

func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_file", "")
	v.SetDefault("strict_lexing", false)
	v.SetDefault("strict_arity", false)
	v.SetDefault("history_file", "/tmp/.factlog-history")
	v.SetDefault("listen", "0.0.0.0:9000")
	v.SetDefault("url", "")
	v.SetDefault("log_level", "warn")
}

// New returns a viper instance with defaults and FACTLOG_* environment
// variables wired up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads an optional TOML config file, applies flags on top, and
// unmarshals the result.
func Load(v *viper.Viper, configFile string, flags *pflag.FlagSet) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", configFile)
		}
	}
	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &cfg, nil
}

// bindFlags maps --strict-arity to strict_arity and so on.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(flag *pflag.Flag) {
		if bindErr != nil || flag.Name == "config" {
			return
		}
		key := strings.ReplaceAll(flag.Name, "-", "_")
		if err := v.BindPFlag(key, flag); err != nil {
			bindErr = errors.Wrapf(err, "binding flag %s", flag.Name)
		}
	})
	return bindErr
}
