package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// mockConfig implements driven.ConfigReader for testing.
type mockConfig map[string]any

func (m mockConfig) IsSet(key string) bool {
	_, ok := m[key]
	return ok
}

func (m mockConfig) GetString(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m mockConfig) GetInt(key string) int {
	i, _ := m[key].(int)
	return i
}

func (m mockConfig) GetBool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (m mockConfig) GetStringSlice(key string) []string {
	s, _ := m[key].([]string)
	return s
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(mockConfig{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)

	s, err = LoadSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)
}

func TestLoadSettings_Overrides(t *testing.T) {
	cfg := mockConfig{
		KeyShallowContentBytes: 1024,
		KeyDeepFileBytes:       4096,
		KeyPreviewChars:        80,
		KeySkipHidden:          false,
		KeyExcludeDirs:         []string{"vendor"},
		KeyReadsPerSecond:      50,
		KeyAllowUndiscovered:   true,
		KeyMaxChars:            1000,
		KeyTokenizerModel:      "gpt-4",
		KeyServerAddr:          "127.0.0.1:9000",
		KeyAllowedOrigins:      []string{"http://localhost:3000"},
		KeyLogLevel:            "debug",
	}

	s, err := LoadSettings(cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(1024), s.Search.ShallowContentBytes)
	assert.Equal(t, int64(4096), s.Search.DeepFileBytes)
	assert.Equal(t, domain.DefaultSettings().Search.DeepRunBytes, s.Search.DeepRunBytes)
	assert.Equal(t, 80, s.Search.PreviewChars)
	assert.False(t, s.Search.SkipHidden)
	assert.Equal(t, []string{"vendor"}, s.Search.ExcludeDirs)
	assert.Equal(t, 50, s.Search.ReadsPerSecond)
	assert.True(t, s.Search.AllowUndiscovered)
	assert.Equal(t, 1000, s.Format.MaxChars)
	assert.Equal(t, "gpt-4", s.Format.TokenizerModel)
	assert.Equal(t, "127.0.0.1:9000", s.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, s.Server.AllowedOrigins)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoadSettings_Invalid(t *testing.T) {
	_, err := LoadSettings(mockConfig{KeyDeepFileBytes: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, KeyDeepFileBytes)
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	assert.Len(t, keys, 16)
	assert.Contains(t, keys, KeyAllowUndiscovered)
}
