// Package config loads tour configuration from defaults, flags, env and
// an optional config file, in increasing priority.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Adapter AdapterConfig `mapstructure:"adapter"`
	Log     LogConfig     `mapstructure:"log"`
}

type AdapterConfig struct {
	// Name selects the first adapter whose name or vendor contains this
	// substring. Empty lets the power preference decide.
	Name          string `mapstructure:"name"`
	Power         string `mapstructure:"power"` // auto|high|low
	ForceFallback bool   `mapstructure:"force_fallback"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Adapter: AdapterConfig{
			Name:          "",
			Power:         "high",
			ForceFallback: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("adapter-name", defaults.Adapter.Name, "Select the adapter whose name or vendor contains this substring")
	fs.String("adapter-power", defaults.Adapter.Power, "Adapter power preference: auto|high|low")
	fs.Bool("adapter-force-fallback", defaults.Adapter.ForceFallback, "Accept a software fallback adapter")
	fs.String("log-level", defaults.Log.Level, "Log level: debug|info|warn|error")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("GPUTOUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("gputour")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("adapter.name", c.Adapter.Name)
	v.SetDefault("adapter.power", c.Adapter.Power)
	v.SetDefault("adapter.force_fallback", c.Adapter.ForceFallback)
	v.SetDefault("log.level", c.Log.Level)
}

// bindFlags ties each dotted config key to its flag. An unchanged flag
// contributes only its default, so file and env values still win over
// it; a flag set on the command line wins over everything.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	keys := map[string]string{
		"adapter.name":           "adapter-name",
		"adapter.power":          "adapter-power",
		"adapter.force_fallback": "adapter-force-fallback",
		"log.level":              "log-level",
	}
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag %q not registered", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

func validate(c Config) error {
	switch strings.ToLower(c.Adapter.Power) {
	case "auto", "high", "low":
	default:
		return fmt.Errorf("invalid adapter power %q (expected auto|high|low)", c.Adapter.Power)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level string to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}
