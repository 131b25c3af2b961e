package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FeesConfig carries the externally configured percentages. They are
// passed into the fee calculator as explicit parameters; nothing reads
// them at call time from the environment.
type FeesConfig struct {
	DepositPercentage  decimal.Decimal `yaml:"deposit_percentage"`
	ReferralPercentage decimal.Decimal `yaml:"referral_percentage"`
}

type RateLimitConfig struct {
	Limit         int `yaml:"limit"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the configured window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Kafka struct {
		BootstrapServers   string `yaml:"bootstrap_servers"`
		NotificationsTopic string `yaml:"notifications_topic"`
	} `yaml:"kafka"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	OTLP struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otlp"`
	OIDC struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"client_id"`
	} `yaml:"oidc"`
	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`
	Gateway struct {
		// SMSURL is the outbound SMS/WhatsApp gateway endpoint used by the
		// notifier worker. Delivery is best-effort.
		SMSURL string `yaml:"sms_url"`
	} `yaml:"gateway"`
	Vetting struct {
		ExpiryDays int `yaml:"expiry_days"`
	} `yaml:"vetting"`
	Fees      FeesConfig      `yaml:"fees"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

func Load(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Substitute environment variables into the raw YAML before parsing.
	expandedFile := os.ExpandEnv(string(file))

	if err := yaml.Unmarshal([]byte(expandedFile), config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}
