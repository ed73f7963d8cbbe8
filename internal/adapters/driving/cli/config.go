package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/services"
)

var noServicesAnnotation = map[string]string{annotationNoServices: "true"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the settings stored in ~/.k3ss-search/config.toml.

Every key can also be set for one run through the environment, for example
K3SS_SEARCH_DEEP_FILE_BYTES=1048576.`,
	Annotations: noServicesAnnotation,
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show effective settings",
	Args:        cobra.NoArgs,
	Annotations: noServicesAnnotation,
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it. List values are comma-delimited.

Run "k3ss-search config show" to list the keys.`,
	Example:     `  k3ss-search config set search.deep_file_bytes 67108864`,
	Args:        cobra.ExactArgs(2),
	Annotations: noServicesAnnotation,
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Args:        cobra.NoArgs,
	Annotations: noServicesAnnotation,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		cmd.Println(configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	current, err := loadSettings(cmd)
	if err != nil {
		cmd.Printf("Warning: %v\n\n", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	values := settingValues(current)
	section := ""
	for _, key := range services.SettingKeys() {
		if s, _, _ := strings.Cut(key, "."); s != section {
			if section != "" {
				cmd.Println()
			}
			section = s
			cmd.Printf("[%s]\n", section)
		}
		cmd.Printf("  %s = %s\n", key, formatValue(values[key]))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	key, raw := strings.ToLower(args[0]), args[1]

	value, err := parseSetting(key, raw)
	if err != nil {
		return err
	}
	if err := validateSetting(key, value); err != nil {
		return err
	}
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, formatValue(value))
	return nil
}

// parseSetting converts raw to the type of key's default value.
func parseSetting(key, raw string) (any, error) {
	if !slices.Contains(services.SettingKeys(), key) {
		return nil, fmt.Errorf("unknown key %q: %w", key, domain.ErrInvalidInput)
	}

	switch settingValues(domain.DefaultSettings())[key].(type) {
	case int, int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", key, domain.ErrInvalidInput)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false: %w", key, domain.ErrInvalidInput)
		}
		return b, nil
	case []string:
		return domain.NormaliseTerms(strings.Split(raw, ",")), nil
	default:
		return raw, nil
	}
}

// validateSetting checks the saved settings stay valid with key set to value.
func validateSetting(key string, value any) error {
	v := viper.New()
	v.SetConfigFile(configStore.Path())
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", configStore.Path(), err)
	}
	v.Set(key, value)
	_, err := services.LoadSettings(v)
	return err
}

func settingValues(s domain.Settings) map[string]any {
	return map[string]any{
		services.KeyShallowContentBytes: s.Search.ShallowContentBytes,
		services.KeyDeepFileBytes:       s.Search.DeepFileBytes,
		services.KeyDeepRunBytes:        s.Search.DeepRunBytes,
		services.KeyPreviewChars:        s.Search.PreviewChars,
		services.KeySkipHidden:          s.Search.SkipHidden,
		services.KeyFollowSymlinks:      s.Search.FollowSymlinks,
		services.KeyRespectGitignore:    s.Search.RespectGitignore,
		services.KeyExcludeDirs:         s.Search.ExcludeDirs,
		services.KeyReadsPerSecond:      s.Search.ReadsPerSecond,
		services.KeyAllowUndiscovered:   s.Search.AllowUndiscovered,
		services.KeyMaxChars:            s.Format.MaxChars,
		services.KeyMaxFileChars:        s.Format.MaxFileChars,
		services.KeyTokenizerModel:      s.Format.TokenizerModel,
		services.KeyServerAddr:          s.Server.Addr,
		services.KeyAllowedOrigins:      s.Server.AllowedOrigins,
		services.KeyLogLevel:            s.Log.Level,
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case string:
		if val == "" {
			return "(not set)"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}
