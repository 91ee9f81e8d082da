package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// ScanConfig controls the scan coordinator and the per-scan provider deadline
type ScanConfig struct {
	ResultTTL        time.Duration `mapstructure:"result_ttl"`
	ProviderDeadline time.Duration `mapstructure:"provider_deadline"`
	MaxBatchSize     int           `mapstructure:"max_batch_size"`
}

// ProvidersConfig is the static provider table supplied at startup.
// Weights are documented constants; they must sum to <= 1.0 across
// enabled providers (the remainder weights the heuristic portion).
type ProvidersConfig struct {
	Reputation   ProviderConfig `mapstructure:"reputation"`
	SafeBrowsing ProviderConfig `mapstructure:"safebrowsing"`
	AIAnalyst    ProviderConfig `mapstructure:"ai_analyst"`
	DomainAge    ProviderConfig `mapstructure:"domain_age"`
}

type ProviderConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Weight  float64       `mapstructure:"weight"`
	Timeout time.Duration `mapstructure:"timeout"`
	APIURL  string        `mapstructure:"api_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/securiguard")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("SECURIGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.host", "SECURIGUARD_REDIS_HOST")
	v.BindEnv("redis.port", "SECURIGUARD_REDIS_PORT")
	v.BindEnv("redis.password", "SECURIGUARD_REDIS_PASSWORD")
	v.BindEnv("providers.ai_analyst.api_key", "SECURIGUARD_PROVIDERS_AI_ANALYST_API_KEY")
	v.BindEnv("providers.safebrowsing.api_key", "SECURIGUARD_PROVIDERS_SAFEBROWSING_API_KEY")
	v.BindEnv("providers.reputation.api_key", "SECURIGUARD_PROVIDERS_REPUTATION_API_KEY")
	v.BindEnv("app.environment", "SECURIGUARD_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env cover a dev setup
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// Validate checks invariants that would otherwise surface as bad scores
func (c *Config) Validate() error {
	var sum float64
	for _, p := range []ProviderConfig{
		c.Providers.Reputation,
		c.Providers.SafeBrowsing,
		c.Providers.AIAnalyst,
		c.Providers.DomainAge,
	} {
		if p.Enabled {
			if p.Weight < 0 {
				return fmt.Errorf("provider weight must be non-negative, got %f", p.Weight)
			}
			sum += p.Weight
		}
	}
	if sum > 1.0+1e-9 {
		return fmt.Errorf("enabled provider weights sum to %.3f, must be <= 1.0", sum)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "securiguard")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "securiguard:")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("scan.result_ttl", "5m")
	v.SetDefault("scan.provider_deadline", "10s")
	v.SetDefault("scan.max_batch_size", 100)

	// Provider weights are documented constants: reputation and the
	// safe-browsing list carry most of the external signal, the AI
	// analyst and domain profiler the rest. They sum to 1.0.
	v.SetDefault("providers.reputation.enabled", true)
	v.SetDefault("providers.reputation.weight", 0.4)
	v.SetDefault("providers.reputation.timeout", "5s")
	v.SetDefault("providers.safebrowsing.enabled", true)
	v.SetDefault("providers.safebrowsing.weight", 0.3)
	v.SetDefault("providers.safebrowsing.timeout", "5s")
	v.SetDefault("providers.ai_analyst.enabled", true)
	v.SetDefault("providers.ai_analyst.weight", 0.2)
	v.SetDefault("providers.ai_analyst.timeout", "20s")
	v.SetDefault("providers.domain_age.enabled", true)
	v.SetDefault("providers.domain_age.weight", 0.1)
	v.SetDefault("providers.domain_age.timeout", "5s")
}
