package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "PATENTNORM"

// newViper builds a Viper instance with YAML file type, the PATENTNORM_ env
// prefix, and a key replacer mapping "." to "_" so that "kafka.group_id"
// resolves to PATENTNORM_KAFKA_GROUP_ID.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setViperDefaults(v)
	return v
}

// Load reads the YAML file at configPath, merges PATENTNORM_* environment
// overrides, applies defaults and validates the result.  An empty path
// behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from PATENTNORM_* environment variables and
// defaults, with no config file.
//
//	PATENTNORM_<SECTION>_<FIELD>   e.g.  PATENTNORM_NORMALIZE_WORKERS
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the reparsed Config
// and the triggering file event whenever the file changes.  Callers apply
// only the safe subset at runtime (the log level).  A change that fails to
// parse or validate is passed to onError, if set, and onChange is skipped.
//
// Watch is non-blocking; viper owns the watcher goroutine.
func Watch(configPath string, onChange func(*Config, fsnotify.Event), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg, e)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on any error.  Intended for main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
