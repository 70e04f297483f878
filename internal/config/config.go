// Package config loads taskdeck settings from defaults, an optional YAML
// file and TASKDECK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TASKDECK"

// DefaultJWTSecret is only suitable for local development
const DefaultJWTSecret = "taskdeck-dev-secret"

// Config is the merged configuration for both the client and the
// reference backend.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	DB      DBConfig      `mapstructure:"db" yaml:"db"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
}

// ServerConfig is where the client finds the backend
type ServerConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type UIConfig struct {
	PageSize    int `mapstructure:"page_size" yaml:"page_size"`
	RecentLimit int `mapstructure:"recent_limit" yaml:"recent_limit"`
}

// DBConfig locates the client's local settings database
type DBConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// BackendConfig configures `taskdeck serve`
type BackendConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	DBPath         string   `mapstructure:"db_path" yaml:"db_path"`
	JWTSecret      string   `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:     "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		UI: UIConfig{
			PageSize:    10,
			RecentLimit: 5,
		},
		DB: DBConfig{
			Path: filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "taskdeck", "taskdeck.db"),
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(xdgDir("XDG_STATE_HOME", ".local", "state"), "taskdeck", "taskdeck.log"),
		},
		Backend: BackendConfig{
			Addr:           ":8080",
			DBPath:         "taskdeck-server.db",
			JWTSecret:      DefaultJWTSecret,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// DefaultPath is the config file used when none is given
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "taskdeck", "config.yaml")
}

// Load merges defaults, the YAML file at path and the environment. An
// empty path means DefaultPath, which may be absent. An explicit path
// must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(envPrefix + "_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the program cannot run with
func (c Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url must be set")
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be positive, got %d", c.UI.PageSize)
	}
	if c.UI.RecentLimit <= 0 {
		return fmt.Errorf("ui.recent_limit must be positive, got %d", c.UI.RecentLimit)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.url", d.Server.URL)
	v.SetDefault("server.timeout", d.Server.Timeout)
	v.SetDefault("ui.page_size", d.UI.PageSize)
	v.SetDefault("ui.recent_limit", d.UI.RecentLimit)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("backend.addr", d.Backend.Addr)
	v.SetDefault("backend.db_path", d.Backend.DBPath)
	v.SetDefault("backend.jwt_secret", d.Backend.JWTSecret)
	v.SetDefault("backend.allowed_origins", d.Backend.AllowedOrigins)
}

// Marshal renders c as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := Default().Marshal()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content := "# taskdeck configuration\n" + string(data)
	return os.WriteFile(path, []byte(content), 0o644)
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}
