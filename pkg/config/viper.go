package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/ragchat/pkg/dotdir"
)

// EnvPrefix is prepended to every environment variable viper reads,
// e.g. RAGCHAT_CLIENT_API_TARGET.
const EnvPrefix = "RAGCHAT"

// InitViper returns a viper instance layered as, highest first:
//
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. RAGCHAT_* environment variables
//  3. config.toml in the resolved .ragchat/ directory
//  4. NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	path, err := dotdir.NewManager().File(configDir, configFile)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, k := range configKeys {
		v.SetDefault(k.name, k.value(d))
	}
}
