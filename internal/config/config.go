// Package config loads docshelf settings from defaults, an optional YAML
// file, a .env file, DOCSHELF_* environment variables and CLI overrides, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

const (
	EnvPrefix         = "DOCSHELF"
	DefaultConfigName = "docshelf"
	DefaultEnvFile    = ".env"
)

type Config struct {
	InputDirectory   string     `mapstructure:"input_directory" validate:"required"`
	SearchQuery      string     `mapstructure:"search_query"`
	Categories       []Category `mapstructure:"categories" validate:"min=1,dive"`
	FallbackCategory string     `mapstructure:"fallback_category" validate:"required"`
	KeywordPolicy    string     `mapstructure:"keyword_policy" validate:"oneof=last first most-hits"`
	TitleKeyLength   int        `mapstructure:"title_key_length" validate:"gt=0"`
	LogLevel         string     `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`

	Classifier ClassifierConfig `mapstructure:"classifier"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Drive      DriveConfig      `mapstructure:"drive"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type Category struct {
	Name     string   `mapstructure:"name" validate:"required"`
	Keywords []string `mapstructure:"keywords"`
}

type ClassifierConfig struct {
	Mode  string  `mapstructure:"mode" validate:"oneof=self leave-one-out"`
	Alpha float64 `mapstructure:"alpha" validate:"gt=0"`
}

type UploadConfig struct {
	Sink          string        `mapstructure:"sink" validate:"oneof=drive local none"`
	MirrorDir     string        `mapstructure:"mirror_dir" validate:"required_if=Sink local"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RatePerSecond float64       `mapstructure:"rate_per_second" validate:"gte=0"`
	Burst         int           `mapstructure:"burst" validate:"gte=0"`
	Retry         RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Attempts       int           `mapstructure:"attempts" validate:"gte=0"`
	Backoff        time.Duration `mapstructure:"backoff" validate:"gte=0"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff" validate:"gte=0"`
	BreakerEnabled bool          `mapstructure:"breaker_enabled"`
}

type DriveConfig struct {
	Auth              string `mapstructure:"auth" validate:"oneof=oauth service-account"`
	ClientSecretsFile string `mapstructure:"client_secrets_file"`
	TokenFile         string `mapstructure:"token_file"`
	CredentialsFile   string `mapstructure:"credentials_file"`
	CallbackAddr      string `mapstructure:"callback_addr"`
	FolderID          string `mapstructure:"folder_id"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Instance       string `mapstructure:"instance"`
}

type LoadOptions struct {
	// ConfigFile must exist when set. Otherwise ./docshelf.yaml is read if
	// present.
	ConfigFile string
	EnvFile    string
	// Overrides are applied last, keyed by the mapstructure path
	// (e.g. "input_directory").
	Overrides map[string]any
}

func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load env file "+envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "read config "+opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, domain.WrapError(domain.ErrInvalidInput, "read config", err)
			}
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode config", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate config", err)
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		if _, ok := seen[cat.Name]; ok {
			return domain.WrapError(domain.ErrInvalidInput, "validate config", fmt.Errorf("duplicate category %q", cat.Name))
		}
		seen[cat.Name] = struct{}{}
	}
	return nil
}

// Rules converts the configured categories, in order, to classifier rules.
func (c *Config) Rules() []domain.CategoryRule {
	out := make([]domain.CategoryRule, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, domain.CategoryRule{
			Name:     domain.Category(cat.Name),
			Keywords: append([]string(nil), cat.Keywords...),
		})
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input_directory", "docs")
	v.SetDefault("search_query", "data")
	v.SetDefault("categories", []map[string]any{
		{"name": "edu", "keywords": []string{"school", "univ", "study"}},
		{"name": "med", "keywords": []string{"health", "doctor"}},
		{"name": "tech", "keywords": []string{"code", "prog"}},
	})
	v.SetDefault("fallback_category", string(domain.CategoryMisc))
	v.SetDefault("keyword_policy", string(domain.KeywordPolicyLast))
	v.SetDefault("title_key_length", 30)
	v.SetDefault("log_level", "info")

	v.SetDefault("classifier.mode", string(domain.ClassifierModeSelf))
	v.SetDefault("classifier.alpha", 1.0)

	v.SetDefault("upload.sink", "drive")
	v.SetDefault("upload.mirror_dir", "./data/uploads")
	v.SetDefault("upload.timeout", time.Duration(0))
	v.SetDefault("upload.rate_per_second", 0.0)
	v.SetDefault("upload.burst", 1)
	v.SetDefault("upload.retry.enabled", false)
	v.SetDefault("upload.retry.attempts", 4)
	v.SetDefault("upload.retry.backoff", 500*time.Millisecond)
	v.SetDefault("upload.retry.max_backoff", 8*time.Second)
	v.SetDefault("upload.retry.breaker_enabled", true)

	v.SetDefault("drive.auth", "oauth")
	v.SetDefault("drive.client_secrets_file", "client_secrets.json")
	v.SetDefault("drive.token_file", ".docshelf/token.json")
	v.SetDefault("drive.credentials_file", "")
	v.SetDefault("drive.callback_addr", "127.0.0.1:8085")
	v.SetDefault("drive.folder_id", "")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "docshelf.documents.uploaded")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.instance", "")
}
