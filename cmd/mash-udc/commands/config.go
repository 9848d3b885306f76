package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mash-protocol/mash-udc/pkg/discovery"
	"github.com/mash-protocol/mash-udc/pkg/transport"
	"github.com/mash-protocol/mash-udc/pkg/udc"
	"github.com/spf13/viper"
)

const (
	configName = "mash-udc"
	configType = "yaml"
	envPrefix  = "MASH_UDC"
)

// Config keys.
const (
	keyListen         = "listen"
	keyInterface      = "interface"
	keyLogLevel       = "log_level"
	keyProtocolLog    = "protocol_log"
	keyMaxClients     = "max_clients"
	keyClientTimeout  = "client_timeout"
	keyEvictOldest    = "evict_oldest"
	keyReaperInterval = "reaper_interval"
	keyResolveTimeout = "resolve_timeout"
	keyAutoApprove    = "auto_approve"
	keyInteractive    = "interactive"
)

// Config is the effective mash-udc configuration.
type Config struct {
	Listen         string        `mapstructure:"listen"`
	Interface      string        `mapstructure:"interface"`
	LogLevel       string        `mapstructure:"log_level"`
	ProtocolLog    string        `mapstructure:"protocol_log"`
	MaxClients     int           `mapstructure:"max_clients"`
	ClientTimeout  time.Duration `mapstructure:"client_timeout"`
	EvictOldest    bool          `mapstructure:"evict_oldest"`
	ReaperInterval time.Duration `mapstructure:"reaper_interval"`
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
	AutoApprove    bool          `mapstructure:"auto_approve"`
	Interactive    bool          `mapstructure:"interactive"`
}

// configYAML is the YAML rendering of Config with readable durations.
type configYAML struct {
	Listen         string `yaml:"listen"`
	Interface      string `yaml:"interface,omitempty"`
	LogLevel       string `yaml:"log_level"`
	ProtocolLog    string `yaml:"protocol_log,omitempty"`
	MaxClients     int    `yaml:"max_clients"`
	ClientTimeout  string `yaml:"client_timeout"`
	EvictOldest    bool   `yaml:"evict_oldest"`
	ReaperInterval string `yaml:"reaper_interval"`
	ResolveTimeout string `yaml:"resolve_timeout"`
	AutoApprove    bool   `yaml:"auto_approve"`
	Interactive    bool   `yaml:"interactive"`
}

// MarshalYAML renders durations as strings.
func (c Config) MarshalYAML() (any, error) {
	return configYAML{
		Listen:         c.Listen,
		Interface:      c.Interface,
		LogLevel:       c.LogLevel,
		ProtocolLog:    c.ProtocolLog,
		MaxClients:     c.MaxClients,
		ClientTimeout:  c.ClientTimeout.String(),
		EvictOldest:    c.EvictOldest,
		ReaperInterval: c.ReaperInterval.String(),
		ResolveTimeout: c.ResolveTimeout.String(),
		AutoApprove:    c.AutoApprove,
		Interactive:    c.Interactive,
	}, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MaxClients <= 0 {
		errs = append(errs, fmt.Errorf("max_clients must be positive, got %d", c.MaxClients))
	}
	if c.ClientTimeout <= 0 {
		errs = append(errs, fmt.Errorf("client_timeout must be positive, got %s", c.ClientTimeout))
	}
	if c.ReaperInterval <= 0 {
		errs = append(errs, fmt.Errorf("reaper_interval must be positive, got %s", c.ReaperInterval))
	}
	if c.ResolveTimeout <= 0 {
		errs = append(errs, fmt.Errorf("resolve_timeout must be positive, got %s", c.ResolveTimeout))
	}
	if c.AutoApprove && c.Interactive {
		errs = append(errs, errors.New("auto_approve and interactive are mutually exclusive"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyListen, fmt.Sprintf(":%d", transport.DefaultPort))
	v.SetDefault(keyInterface, "")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyProtocolLog, "")
	v.SetDefault(keyMaxClients, udc.DefaultMaxClients)
	v.SetDefault(keyClientTimeout, udc.DefaultClientTimeout)
	v.SetDefault(keyEvictOldest, false)
	v.SetDefault(keyReaperInterval, 10*time.Second)
	v.SetDefault(keyResolveTimeout, discovery.ResolveTimeout)
	v.SetDefault(keyAutoApprove, false)
	v.SetDefault(keyInteractive, false)
}

// loadConfig layers defaults, the config file, MASH_UDC_* environment
// variables and any flags already bound to v.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
