package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	defaultAddress        = ":4001"
	defaultDriver         = "mysql"
	defaultCurrency       = "usd"
	defaultRatePerMinute  = 30
	defaultPackageTTL     = 10 * time.Minute
	defaultSchedulerHour  = 9
	defaultMailBaseURL    = "https://api.resend.com"
	defaultSchedulerRunTO = 5 * time.Minute
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr       string        `yaml:"addr"`
		Password   string        `yaml:"password"`
		DB         int           `yaml:"db"`
		PackageTTL time.Duration `yaml:"package_ttl"`
	} `yaml:"redis"`
	Mail struct {
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		From     string `yaml:"from"`
		FromName string `yaml:"from_name"`
	} `yaml:"mail"`
	Storage struct {
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"storage"`
	Payments struct {
		Currency         string `yaml:"currency"`
		RatePerMinute    int    `yaml:"rate_per_minute"`
		DisableRateLimit bool   `yaml:"disable_rate_limit"`
	} `yaml:"payments"`
	Scheduler struct {
		Hour       int           `yaml:"hour"`
		Minute     int           `yaml:"minute"`
		Timezone   string        `yaml:"timezone"`
		RunOnStart bool          `yaml:"run_on_start"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"scheduler"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	App struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"app"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// LoadConfig reads the yaml file at path, applies environment overrides and
// defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using defaults and environment", path)
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Scheduler.Hour < 0 || c.Scheduler.Hour > 23 {
		return fmt.Errorf("scheduler.hour must be within 0..23, got %d", c.Scheduler.Hour)
	}
	if c.Scheduler.Minute < 0 || c.Scheduler.Minute > 59 {
		return fmt.Errorf("scheduler.minute must be within 0..59, got %d", c.Scheduler.Minute)
	}
	if c.Payments.RatePerMinute < 0 {
		return fmt.Errorf("payments.rate_per_minute must not be negative")
	}
	return nil
}

// Location resolves the scheduler time zone, falling back to the process local zone.
func (c Config) Location() *time.Location {
	tz := strings.TrimSpace(c.Scheduler.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("scheduler: failed to load location %s: %v", tz, err)
		return time.Local
	}
	return loc
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Address = ":" + strings.TrimPrefix(port, ":")
	}
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Mail.APIKey, "MAIL_API_KEY")
	setString(&cfg.Mail.From, "MAIL_FROM")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.App.BaseURL, "BASE_URL")
	setString(&cfg.Storage.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "S3_SECRET_KEY")
	if v := os.Getenv("SCHEDULER_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.Hour = h
		} else {
			log.Printf("ignoring SCHEDULER_HOUR=%q: %v", v, err)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaultDriver
	}
	if cfg.Redis.PackageTTL <= 0 {
		cfg.Redis.PackageTTL = defaultPackageTTL
	}
	if cfg.Mail.BaseURL == "" {
		cfg.Mail.BaseURL = defaultMailBaseURL
	}
	if cfg.Payments.Currency == "" {
		cfg.Payments.Currency = defaultCurrency
	}
	if cfg.Payments.RatePerMinute == 0 {
		cfg.Payments.RatePerMinute = defaultRatePerMinute
	}
	if cfg.Scheduler.Hour == 0 && cfg.Scheduler.Minute == 0 {
		cfg.Scheduler.Hour = defaultSchedulerHour
	}
	if cfg.Scheduler.Timeout <= 0 {
		cfg.Scheduler.Timeout = defaultSchedulerRunTO
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}
