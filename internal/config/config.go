package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"                validate:"required,gte=1,lte=65535"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"    validate:"gte=0"`
	// RateLimit is requests per second per caller; 0 turns limiting off.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"gte=0"`
}

type ProvidersConfig struct {
	Ark         ProviderConfig `mapstructure:"ark"`
	SiliconFlow ProviderConfig `mapstructure:"siliconflow"`
	// Timeout bounds the whole outbound HTTP exchange.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
}

type SecretsConfig struct {
	SSMPrefix string `mapstructure:"ssm_prefix"`
	Region    string `mapstructure:"region"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// envAliases are the short environment names accepted next to the
// dotted-key form (PROVIDERS_ARK_API_KEY and so on).
var envAliases = map[string][]string{
	"server.port":                    {"PORT"},
	"providers.ark.api_key":          {"ARK_API_KEY"},
	"providers.ark.base_url":         {"ARK_BASE_URL"},
	"providers.siliconflow.api_key":  {"SILICONFLOW_API_KEY"},
	"providers.siliconflow.base_url": {"SILICONFLOW_BASE_URL"},
	"secrets.ssm_prefix":             {"SSM_PREFIX"},
	"secrets.region":                 {"AWS_REGION"},
	"log.level":                      {"LOG_LEVEL"},
}

// Load reads configuration from an optional .env file, an optional YAML
// file and the environment, in increasing order of precedence, then validates it.
// An empty path searches ./configs and . for config.yaml.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("config")
		vip.AddConfigPath("./configs")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(vip)

	for key, aliases := range envAliases {
		names := append([]string{key}, aliases...)
		if err := vip.BindEnv(names...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", 8080)
	vip.SetDefault("server.read_header_timeout", "10s")
	vip.SetDefault("server.shutdown_timeout", "15s")
	vip.SetDefault("server.rate_limit", 0)
	vip.SetDefault("server.rate_burst", 10)

	vip.SetDefault("providers.ark.base_url", "https://ark.cn-beijing.volces.com/api/v3")
	vip.SetDefault("providers.ark.api_key", "")
	vip.SetDefault("providers.siliconflow.base_url", "https://api.siliconflow.cn/v1")
	vip.SetDefault("providers.siliconflow.api_key", "")
	vip.SetDefault("providers.timeout", "120s")

	vip.SetDefault("secrets.ssm_prefix", "")
	vip.SetDefault("secrets.region", "")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "json")
}

// SlogLevel maps the configured level onto slog.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
