package services

import (
	"fmt"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyShallowContentBytes = "search.shallow_content_bytes"
	KeyDeepFileBytes       = "search.deep_file_bytes"
	KeyDeepRunBytes        = "search.deep_run_bytes"
	KeyPreviewChars        = "search.preview_chars"
	KeySkipHidden          = "search.skip_hidden"
	KeyFollowSymlinks      = "search.follow_symlinks"
	KeyRespectGitignore    = "search.respect_gitignore"
	KeyExcludeDirs         = "search.exclude_dirs"
	KeyReadsPerSecond      = "search.reads_per_second"
	KeyAllowUndiscovered   = "search.allow_undiscovered"
	KeyMaxChars            = "format.max_chars"
	KeyMaxFileChars        = "format.max_file_chars"
	KeyTokenizerModel      = "format.tokenizer_model"
	KeyServerAddr          = "server.addr"
	KeyAllowedOrigins      = "server.allowed_origins"
	KeyLogLevel            = "log.level"
)

// SettingKeys returns every recognised key in display order.
func SettingKeys() []string {
	return []string{
		KeyShallowContentBytes,
		KeyDeepFileBytes,
		KeyDeepRunBytes,
		KeyPreviewChars,
		KeySkipHidden,
		KeyFollowSymlinks,
		KeyRespectGitignore,
		KeyExcludeDirs,
		KeyReadsPerSecond,
		KeyAllowUndiscovered,
		KeyMaxChars,
		KeyMaxFileChars,
		KeyTokenizerModel,
		KeyServerAddr,
		KeyAllowedOrigins,
		KeyLogLevel,
	}
}

// LoadSettings overlays configured keys onto the defaults and validates
// the result. Keys that are not set keep their default.
func LoadSettings(cfg driven.ConfigReader) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if cfg == nil {
		return s, nil
	}

	setInt64(cfg, KeyShallowContentBytes, &s.Search.ShallowContentBytes)
	setInt64(cfg, KeyDeepFileBytes, &s.Search.DeepFileBytes)
	setInt64(cfg, KeyDeepRunBytes, &s.Search.DeepRunBytes)
	setInt(cfg, KeyPreviewChars, &s.Search.PreviewChars)
	setBool(cfg, KeySkipHidden, &s.Search.SkipHidden)
	setBool(cfg, KeyFollowSymlinks, &s.Search.FollowSymlinks)
	setBool(cfg, KeyRespectGitignore, &s.Search.RespectGitignore)
	setStrings(cfg, KeyExcludeDirs, &s.Search.ExcludeDirs)
	setInt(cfg, KeyReadsPerSecond, &s.Search.ReadsPerSecond)
	setBool(cfg, KeyAllowUndiscovered, &s.Search.AllowUndiscovered)

	setInt(cfg, KeyMaxChars, &s.Format.MaxChars)
	setInt(cfg, KeyMaxFileChars, &s.Format.MaxFileChars)
	setString(cfg, KeyTokenizerModel, &s.Format.TokenizerModel)

	setString(cfg, KeyServerAddr, &s.Server.Addr)
	setStrings(cfg, KeyAllowedOrigins, &s.Server.AllowedOrigins)

	setString(cfg, KeyLogLevel, &s.Log.Level)

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("loading settings: %w", err)
	}
	return s, nil
}

func setInt64(cfg driven.ConfigReader, key string, dst *int64) {
	if cfg.IsSet(key) {
		*dst = int64(cfg.GetInt(key))
	}
}

func setInt(cfg driven.ConfigReader, key string, dst *int) {
	if cfg.IsSet(key) {
		*dst = cfg.GetInt(key)
	}
}

func setBool(cfg driven.ConfigReader, key string, dst *bool) {
	if cfg.IsSet(key) {
		*dst = cfg.GetBool(key)
	}
}

func setString(cfg driven.ConfigReader, key string, dst *string) {
	if cfg.IsSet(key) {
		*dst = cfg.GetString(key)
	}
}

func setStrings(cfg driven.ConfigReader, key string, dst *[]string) {
	if cfg.IsSet(key) {
		*dst = cfg.GetStringSlice(key)
	}
}
