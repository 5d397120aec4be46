package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/ragchat/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// Configer reads and writes config.toml inside a resolved .ragchat/ directory.
type Configer struct {
	path string
}

// Entry is one key of the effective configuration.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewConfiger resolves the config file location. The file itself need not
// exist yet.
func NewConfiger(override string) (*Configer, error) {
	path, err := dotdir.NewManager().File(override, configFile)
	if err != nil {
		return nil, err
	}
	return &Configer{path: path}, nil
}

// Path returns the config.toml location.
func (c *Configer) Path() string {
	return c.path
}

// ValidConfigKeys returns every supported key in TOML section order.
func ValidConfigKeys() []string {
	keys := make([]string, len(configKeys))
	for i, k := range configKeys {
		keys[i] = k.name
	}
	return keys
}

// IsValidConfigKey reports whether key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := lookupKey(key)
	return ok
}

// LoadConfig returns the file's values with defaults filled in for anything
// the file leaves unset. A missing file yields NewDefaultConfig().
func (c *Configer) LoadConfig() (*Config, error) {
	cfg, err := c.read()
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// read parses the file as written, without defaults.
func (c *Configer) read() (*Config, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfigTOML(data)
}

func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	for _, k := range configKeys {
		if k.get(cfg) != "" {
			continue
		}
		if def := k.get(defaults); def != "" {
			// Defaults always parse.
			_ = k.set(cfg, def)
		}
	}
}

// SaveConfig writes cfg to config.toml.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SetConfigValue validates value for key and stores it, leaving every other
// key in the file as written.
func (c *Configer) SetConfigValue(key, value string) error {
	return c.update(key, value)
}

// UnsetConfigValue removes key from the file so its default applies again.
func (c *Configer) UnsetConfigValue(key string) error {
	return c.update(key, "")
}

func (c *Configer) update(key, value string) error {
	k, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.read()
	if err != nil {
		return err
	}

	if err := k.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue returns the effective value of key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	k, ok := lookupKey(key)
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return k.get(cfg), nil
}

// Entries returns the effective value of every key in section order.
func (c *Configer) Entries() ([]Entry, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(configKeys))
	for i, k := range configKeys {
		entries[i] = Entry{Key: k.name, Value: k.get(cfg)}
	}
	return entries, nil
}

// ParseConfigTOML parses raw TOML bytes into a Config, rejecting versions
// other than CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
