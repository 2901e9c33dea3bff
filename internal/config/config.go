package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Rhymond/go-money"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds all allot configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
}

// GeneralConfig selects where portfolios are kept.
type GeneralConfig struct {
	Store     string `toml:"store"`
	DataDir   string `toml:"data_dir,omitempty"`
	RecordKey string `toml:"record_key"`
}

// DisplayConfig holds formatting and theme settings.
type DisplayConfig struct {
	Currency string `toml:"currency"`
	Theme    string `toml:"theme"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// ServerConfig holds settings for `allot serve`.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Store:     StoreFile,
			RecordKey: "investment-portfolio-data",
		},
		Display: DisplayConfig{
			Currency: "USD",
			Theme:    "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:7433",
			EventsBuffer: 256,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "allot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "allot")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir resolves the portfolio data directory: ALLOT_DATA_DIR, then the
// config value, then $XDG_DATA_HOME/allot.
func DataDir(cfg Config) string {
	if dir := os.Getenv("ALLOT_DATA_DIR"); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return expandHome(cfg.General.DataDir)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "allot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "allot")
}

func expandHome(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path. Keys missing from the file keep their
// defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.General.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("general.store: unknown backend %q (want %s or %s)", c.General.Store, StoreFile, StoreSQLite)
	}
	if strings.TrimSpace(c.General.RecordKey) == "" {
		return fmt.Errorf("general.record_key: must not be empty")
	}
	if money.GetCurrency(strings.ToUpper(c.Display.Currency)) == nil {
		return fmt.Errorf("display.currency: unknown currency code %q", c.Display.Currency)
	}
	if c.Server.EventsBuffer < 0 {
		return fmt.Errorf("server.events_buffer: must not be negative")
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path, creating its directory.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
