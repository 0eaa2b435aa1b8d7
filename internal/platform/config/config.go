package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Domains   DomainsConfig   `mapstructure:"domains"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Company   CompanyConfig   `mapstructure:"company"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TrustProxy   bool          `mapstructure:"trust_proxy"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	PublicPerMinute   int `mapstructure:"public_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type StorageConfig struct {
	BasePath      string        `mapstructure:"base_path"`
	SigningSecret string        `mapstructure:"signing_secret"`
	URLTTL        time.Duration `mapstructure:"url_ttl"`
	MaxUploadMB   int64         `mapstructure:"max_upload_mb"`
}

type DomainsConfig struct {
	AppURL string `mapstructure:"app_url"`
	APIURL string `mapstructure:"api_url"`
}

type BillingConfig struct {
	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	WebhookSecret       string `mapstructure:"webhook_secret"`
	StarterPriceID      string `mapstructure:"starter_price_id"`
	ProfessionalPriceID string `mapstructure:"professional_price_id"`
	Currency            string `mapstructure:"currency"`
}

// Validate refuses a payment setup that could accept unsigned webhook deliveries.
func (c BillingConfig) Validate() error {
	if c.StripeSecretKey != "" && c.WebhookSecret == "" {
		return errors.New("billing.webhook_secret is required when billing.stripe_secret_key is set")
	}
	return nil
}

type CompanyConfig struct {
	TrialDays int `mapstructure:"trial_days"`
}

type WorkerConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func Load(path string) (*Config, error) {
	// .env is optional; real environment variables still win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("database.url", "file:./data/complyhr.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("jwt.access_token_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_ttl", 30*24*time.Hour)
	v.SetDefault("rate_limit.public_per_minute", 60)
	v.SetDefault("rate_limit.api_write_per_minute", 300)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("storage.base_path", "./data/documents")
	v.SetDefault("storage.url_ttl", time.Hour)
	v.SetDefault("storage.max_upload_mb", 10)
	v.SetDefault("billing.currency", "gbp")
	v.SetDefault("company.trial_days", 14)
	v.SetDefault("worker.sweep_interval", time.Hour)
}
