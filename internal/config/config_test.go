package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err, "a missing config file should fall back to defaults")

	assert.Equal(t, "https://api.twitter.com/oauth2/token", cfg.TokenURL)
	assert.Equal(t, "from:PascalChorus 💡", cfg.Query)
	assert.Equal(t, "201501010000", cfg.FromDate)
	assert.Equal(t, 100, cfg.MaxResults)
	assert.Equal(t, "src/assets/tweets.json", cfg.OutputPath)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "TWEETS_QUERY: \"from:someone\"\nTWEETS_MAX_RESULTS: 10\nHTTP_TIMEOUT: 5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("TWITTER_API_KEY", "key")
	t.Setenv("TWITTER_API_SECRET_KEY", "secret")
	t.Setenv("TWEETS_MAX_RESULTS", "25")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from:someone", cfg.Query)
	assert.Equal(t, 25, cfg.MaxResults, "environment overrides the file")
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "key", cfg.TwitterAPIKey)
	assert.Equal(t, "secret", cfg.TwitterAPISecretKey)
	assert.NoError(t, cfg.RequireCredentials())
}

func TestLoadConfig_InvalidMaxResults(t *testing.T) {
	t.Setenv("TWEETS_MAX_RESULTS", "0")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("TWEETS_QUERY: [unclosed"), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestRequireCredentials(t *testing.T) {
	err := Config{TwitterAPIKey: "k"}.RequireCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWITTER_API_SECRET_KEY")
	assert.NotContains(t, err.Error(), "TWITTER_API_KEY,")

	err = Config{}.RequireCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWITTER_API_KEY, TWITTER_API_SECRET_KEY")
}
