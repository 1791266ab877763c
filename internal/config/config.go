// Package config loads intent-mcp settings from defaults, an optional YAML
// file, INTENT_MCP_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/intent-mcp/internal/cloud"
	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/HendryAvila/intent-mcp/internal/logging"
	"github.com/HendryAvila/intent-mcp/internal/updater"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. INTENT_MCP_API_KEY.
const EnvPrefix = "INTENT_MCP"

// Modes select where intents come from.
const (
	ModeLocal = "local"
	ModeCloud = "cloud"
)

// Config is the complete intent-mcp configuration.
type Config struct {
	// Mode is "local" (read .intents from disk) or "cloud" (intents API).
	Mode string `mapstructure:"mode"`
	// Dir is the local intents directory.
	Dir string `mapstructure:"dir"`
	// Workspace is used when a tool call does not name one.
	Workspace string        `mapstructure:"workspace"`
	API       APIConfig     `mapstructure:"api"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
	Log       LogConfig     `mapstructure:"log"`
	Update    UpdateConfig  `mapstructure:"update"`
}

// APIConfig holds the cloud connection settings.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BreakerConfig tunes the circuit breaker in front of the intents API.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
	MinRequests      uint32        `mapstructure:"min_requests"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UpdateConfig controls the background release check.
type UpdateConfig struct {
	Check bool `mapstructure:"check"`
	// Repo is the GitHub owner/name whose releases are checked.
	Repo string `mapstructure:"repo"`
}

// Default returns the built-in configuration.
func Default() Config {
	bc := cloud.DefaultBreakerConfig()
	return Config{
		Mode: ModeLocal,
		Dir:  intents.DefaultDir,
		API: APIConfig{
			Timeout: cloud.DefaultTimeout,
		},
		Breaker: BreakerConfig{
			MaxRequests:      bc.MaxRequests,
			Interval:         bc.Interval,
			Timeout:          bc.Timeout,
			FailureThreshold: bc.FailureThreshold,
			MinRequests:      bc.MinRequests,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Update: UpdateConfig{Check: true, Repo: updater.DefaultRepo},
	}
}

// DefaultWorkspace returns the workspace used when a call names none.
// Local mode falls back to the root workspace; cloud mode has no implicit
// workspace.
func (c Config) DefaultWorkspace() string {
	if c.Workspace != "" {
		return c.Workspace
	}
	if c.Mode == ModeLocal {
		return intents.DefaultWorkspace
	}
	return ""
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "path to a YAML config file")
	fs.String("mode", d.Mode, "intent source: local or cloud")
	fs.String("dir", d.Dir, "local intents directory")
	fs.String("workspace", "", "default workspace")
	fs.String("api-url", "", "intents API base URL (cloud mode)")
	fs.String("api-key", "", "intents API key (cloud mode)")
	fs.Duration("api-timeout", d.API.Timeout, "intents API request timeout")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	fs.String("log-format", d.Log.Format, "log format: console or json")
	fs.Bool("no-update-check", false, "skip the background release check")
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"mode":        "mode",
	"dir":         "dir",
	"workspace":   "workspace",
	"api-url":     "api.url",
	"api-key":     "api.key",
	"api-timeout": "api.timeout",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

// Load resolves the configuration. fs may be nil; when given, only flags
// the user actually set override file and environment values.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("no-update-check"); f != nil && f.Changed && f.Value.String() == "true" {
			v.Set("update.check", false)
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))

	if errs := cfg.Validate(); len(errs) > 0 {
		return Config{}, errs
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("dir", d.Dir)
	v.SetDefault("workspace", d.Workspace)
	v.SetDefault("api.url", d.API.URL)
	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("breaker.max_requests", d.Breaker.MaxRequests)
	v.SetDefault("breaker.interval", d.Breaker.Interval)
	v.SetDefault("breaker.timeout", d.Breaker.Timeout)
	v.SetDefault("breaker.failure_threshold", d.Breaker.FailureThreshold)
	v.SetDefault("breaker.min_requests", d.Breaker.MinRequests)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("update.check", d.Update.Check)
	v.SetDefault("update.repo", d.Update.Repo)
}

// readConfigFile loads an explicit --config / INTENT_MCP_CONFIG file, or
// .intent-mcp.yaml from the working directory when present.
func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	path := v.GetString("config")
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			path = f.Value.String()
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(".intent-mcp")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}
