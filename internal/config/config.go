package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for tweetfeed.
// Values are read by viper from a config file or environment variables.
type Config struct {
	TwitterAPIKey       string `mapstructure:"TWITTER_API_KEY"`
	TwitterAPISecretKey string `mapstructure:"TWITTER_API_SECRET_KEY"`

	TokenURL  string `mapstructure:"TWITTER_TOKEN_URL"`
	SearchURL string `mapstructure:"TWITTER_SEARCH_URL"`

	Query      string `mapstructure:"TWEETS_QUERY"`
	FromDate   string `mapstructure:"TWEETS_FROM_DATE"`
	MaxResults int    `mapstructure:"TWEETS_MAX_RESULTS"`

	// OutputPath is the snapshot file written by fetch and read by load.
	OutputPath   string        `mapstructure:"TWEETS_OUTPUT_PATH"`
	BadgerDBPath string        `mapstructure:"BADGERDB_PATH"`
	HTTPTimeout  time.Duration `mapstructure:"HTTP_TIMEOUT"`
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"TWITTER_API_KEY":        "",
	"TWITTER_API_SECRET_KEY": "",
	"TWITTER_TOKEN_URL":      "https://api.twitter.com/oauth2/token",
	"TWITTER_SEARCH_URL":     "https://api.twitter.com/1.1/tweets/search/fullarchive/prod.json",
	"TWEETS_QUERY":           "from:PascalChorus 💡",
	"TWEETS_FROM_DATE":       "201501010000",
	"TWEETS_MAX_RESULTS":     100,
	"TWEETS_OUTPUT_PATH":     "src/assets/tweets.json",
	"BADGERDB_PATH":          "./badger_data",
	"HTTP_TIMEOUT":           30 * time.Second,
	"LOG_LEVEL":              "info",
}

// LoadConfig reads config.yaml from path, then applies environment overrides.
// A missing config file is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults also register every key so AutomaticEnv is consulted on Unmarshal.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if cfg.MaxResults <= 0 {
		return Config{}, fmt.Errorf("TWEETS_MAX_RESULTS must be positive, got %d", cfg.MaxResults)
	}
	if cfg.OutputPath == "" {
		return Config{}, errors.New("TWEETS_OUTPUT_PATH is not set")
	}

	return cfg, nil
}

// RequireCredentials reports an error unless both API credentials are set.
// Only the fetch step needs them.
func (c Config) RequireCredentials() error {
	var missing []string
	if c.TwitterAPIKey == "" {
		missing = append(missing, "TWITTER_API_KEY")
	}
	if c.TwitterAPISecretKey == "" {
		missing = append(missing, "TWITTER_API_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s not set", strings.Join(missing, ", "))
	}
	return nil
}
