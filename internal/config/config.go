package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	perrors "github.com/example/kdcpay-gateway/pkg/errors"
)

const envPrefix = "KDCPAY"

type Config struct {
	HTTPAddr     string `mapstructure:"http_addr" yaml:"http_addr"`
	GRPCAddr     string `mapstructure:"grpc_addr" yaml:"grpc_addr"`
	CallbackPath string `mapstructure:"callback_path" yaml:"callback_path"`
	// FallbackURL receives requests the gateway adapter does not own.
	FallbackURL    string   `mapstructure:"fallback_url" yaml:"fallback_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	Merchant Merchant `mapstructure:"merchant" yaml:"merchant"`
	Event    Event    `mapstructure:"event" yaml:"event"`

	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"`
	Kafka       Kafka  `mapstructure:"kafka" yaml:"kafka"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

type Merchant struct {
	ID      string `mapstructure:"id" yaml:"id"`
	Key     string `mapstructure:"key" yaml:"key"`
	Sandbox bool   `mapstructure:"sandbox" yaml:"sandbox"`
}

type Event struct {
	Name       string `mapstructure:"name" yaml:"name"`
	Currency   string `mapstructure:"currency" yaml:"currency"`
	TicketsURL string `mapstructure:"tickets_url" yaml:"tickets_url"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
	Group   string   `mapstructure:"group" yaml:"group"`
}

func (c *Config) Credentials() kdcpay.Credentials {
	return kdcpay.Credentials{MerchantID: c.Merchant.ID, Secret: c.Merchant.Key, Sandbox: c.Merchant.Sandbox}
}

// Redacted returns a copy safe to print, with the merchant key masked.
func (c Config) Redacted() Config {
	if c.Merchant.Key != "" {
		c.Merchant.Key = "********"
	}
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("grpc_addr", ":9090")
	v.SetDefault("callback_path", "/tickets/")
	v.SetDefault("fallback_url", "")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("merchant.id", "")
	v.SetDefault("merchant.key", "")
	v.SetDefault("merchant.sandbox", true)
	v.SetDefault("event.name", "")
	v.SetDefault("event.currency", "INR")
	v.SetDefault("event.tickets_url", "")
	v.SetDefault("database_url", "")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "kdcpay.outcomes")
	v.SetDefault("kafka.group", "kdcpay-outcomes")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Load reads .env (if present), then file (if set), then KDCPAY_* variables,
// later sources winning. KDCPAY_MERCHANT_KEY sets merchant.key.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(viper.New(), file)
}

func load(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)
	cfg.Event.Currency = strings.ToUpper(strings.TrimSpace(cfg.Event.Currency))
	return &cfg, nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate reports every setting the service cannot run without.
func (c *Config) Validate() error {
	var problems []string
	if c.Merchant.ID == "" {
		problems = append(problems, "merchant.id is required")
	}
	if c.Merchant.Key == "" {
		problems = append(problems, "merchant.key is required")
	}
	if c.Event.Name == "" {
		problems = append(problems, "event.name is required")
	}
	if u, err := url.Parse(c.Event.TicketsURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, "event.tickets_url must be an absolute url")
	}
	if !strings.HasPrefix(c.CallbackPath, "/") {
		problems = append(problems, "callback_path must start with /")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		problems = append(problems, "kafka.topic is required when brokers are set")
	}
	if len(problems) > 0 {
		return perrors.Wrap(perrors.CodeInvalidConfig, strings.Join(problems, "; "), nil)
	}
	return nil
}
