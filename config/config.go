package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const appName = "maintenance-tui"

// Config is the top-level configuration.
type Config struct {
	Log     LogConfig               `toml:"log"`
	Servers map[string]ServerConfig `toml:"servers" validate:"dive"`
}

// LogConfig controls where and how verbosely the console logs.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Path  string `toml:"path"`
}

// ServerConfig holds connection details for one maintenance backend.
type ServerConfig struct {
	APIURL             string        `toml:"api_url" validate:"required,url"`
	Email              string        `toml:"email" validate:"omitempty,email"`
	Password           string        `toml:"password"`
	Token              string        `toml:"token"`
	InsecureSkipVerify bool          `toml:"insecure_skip_verify"`
	StaleTTL           Duration      `toml:"stale_ttl" validate:"gte=0"`
	Stream             StreamConfig  `toml:"stream"`
	Refresh            RefreshConfig `toml:"refresh"`
}

// StreamConfig tunes the push connection. An empty URL is derived from
// the API URL.
type StreamConfig struct {
	URL                  string   `toml:"url" validate:"omitempty,url"`
	ReconnectDelay       Duration `toml:"reconnect_delay" validate:"gt=0"`
	MaxReconnectAttempts int      `toml:"max_reconnect_attempts" validate:"gte=1"`
	BackoffMultiplier    float64  `toml:"backoff_multiplier" validate:"gte=1"`
	MaxReconnectDelay    Duration `toml:"max_reconnect_delay" validate:"gtefield=ReconnectDelay"`
	HeartbeatInterval    Duration `toml:"heartbeat_interval" validate:"gte=0"`
	HeartbeatTimeout     Duration `toml:"heartbeat_timeout" validate:"gte=0"`
	AuthHeader           string   `toml:"auth_header"`
	ClientIDHeader       string   `toml:"client_id_header"`
}

// RefreshConfig sets the dashboard polling intervals.
type RefreshConfig struct {
	Stats  Duration `toml:"stats" validate:"gt=0"`
	Alerts Duration `toml:"alerts" validate:"gt=0"`
	Full   Duration `toml:"full" validate:"gt=0"`
}

// Duration is a time.Duration written as a string such as "5s" in TOML.
type Duration time.Duration

// D returns d as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults applied to every profile after decoding.
const (
	DefaultReconnectDelay       = Duration(5 * time.Second)
	DefaultMaxReconnectAttempts = 5
	DefaultMaxReconnectDelay    = Duration(30 * time.Second)
	DefaultHeartbeatInterval    = Duration(30 * time.Second)
	DefaultHeartbeatTimeout     = Duration(10 * time.Second)
	DefaultStatsInterval        = Duration(300 * time.Second)
	DefaultAlertsInterval       = Duration(150 * time.Second)
	DefaultFullInterval         = Duration(3000 * time.Second)
	DefaultStaleTTL             = Duration(30 * time.Second)
	DefaultLogLevel             = "info"
)

// Env holds overrides read from the environment. They apply to whichever
// profile is selected.
type Env struct {
	Token    string `envconfig:"MAINTENANCE_TUI_TOKEN"`
	Email    string `envconfig:"MAINTENANCE_TUI_EMAIL"`
	Password string `envconfig:"MAINTENANCE_TUI_PASSWORD"`
	LogLevel string `envconfig:"MAINTENANCE_TUI_LOG_LEVEL"`
}

// DefaultPath returns the default config file path using XDG conventions.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, appName, "config.toml")
}

// DefaultLogPath returns the default log file path using XDG conventions.
func DefaultLogPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(dir, appName, "console.log")
}

// LoadFrom reads and parses the config file at the given path, applies
// defaults and environment overrides, and validates the result.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("config has no servers defined")
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv(env)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Path == "" {
		c.Log.Path = DefaultLogPath()
	}
	c.Log.Path = expandPath(c.Log.Path)

	for name, server := range c.Servers {
		server.APIURL = strings.TrimRight(server.APIURL, "/")
		if server.StaleTTL == 0 {
			server.StaleTTL = DefaultStaleTTL
		}

		s := &server.Stream
		if s.ReconnectDelay == 0 {
			s.ReconnectDelay = DefaultReconnectDelay
		}
		if s.MaxReconnectAttempts == 0 {
			s.MaxReconnectAttempts = DefaultMaxReconnectAttempts
		}
		if s.BackoffMultiplier == 0 {
			s.BackoffMultiplier = 1
		}
		if s.MaxReconnectDelay == 0 {
			s.MaxReconnectDelay = max(DefaultMaxReconnectDelay, s.ReconnectDelay)
		}
		if s.HeartbeatInterval == 0 {
			s.HeartbeatInterval = DefaultHeartbeatInterval
		}
		if s.HeartbeatTimeout == 0 {
			s.HeartbeatTimeout = DefaultHeartbeatTimeout
		}

		r := &server.Refresh
		if r.Stats == 0 {
			r.Stats = DefaultStatsInterval
		}
		if r.Alerts == 0 {
			r.Alerts = DefaultAlertsInterval
		}
		if r.Full == 0 {
			r.Full = DefaultFullInterval
		}

		c.Servers[name] = server
	}
}

func (c *Config) applyEnv(env Env) {
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	for name, server := range c.Servers {
		if env.Token != "" {
			server.Token = env.Token
		}
		if env.Email != "" {
			server.Email = env.Email
		}
		if env.Password != "" {
			server.Password = env.Password
		}
		c.Servers[name] = server
	}
}

// Validate checks the struct constraints and that every profile has a way
// to authenticate.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	for _, name := range c.ServerNames() {
		s := c.Servers[name]
		if s.Token == "" && (s.Email == "" || s.Password == "") {
			return fmt.Errorf("server %q: either token or email and password are required", name)
		}
	}
	return nil
}

// expandPath expands ~ to $HOME and then expands all environment variables.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = "$HOME" + path[1:]
	}
	return os.ExpandEnv(path)
}

// ServerNames returns the sorted list of server profile names.
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
