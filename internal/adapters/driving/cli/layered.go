package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/services"
)

// EnvPrefix prefixes environment overrides, e.g. K3SS_SERVER_ADDR.
const EnvPrefix = "K3SS"

// flagKeys binds command flags to configuration keys. A flag only
// overrides the key when it was given on the command line.
var flagKeys = map[string]string{
	"any-path": services.KeyAllowUndiscovered,
	"addr":     services.KeyServerAddr,
}

// newViper layers the config file, the environment and the flags of cmd.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configStore != nil {
		v.SetConfigFile(configStore.Path())
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", configStore.Path(), err)
		}
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}
	return v, nil
}

// loadSettings returns the effective settings for cmd.
func loadSettings(cmd *cobra.Command) (domain.Settings, error) {
	v, err := newViper(cmd)
	if err != nil {
		return domain.DefaultSettings(), err
	}
	return services.LoadSettings(v)
}

// loadDotEnv reads .env from the working directory if present.
// Variables already in the environment win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
