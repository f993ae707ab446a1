package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultInternalToken    = "change-me-internal-token"
	defaultRevealTTL        = "24h"
	defaultReviewEditWindow = "24h"
	defaultRequestTimeout   = "10s"
	defaultRevealRate       = "10"
	defaultRevealBurst      = "5"
	defaultSMTPPort         = "587"

	minEncryptionKeyLen = 32
)

// Config is the runtime configuration of the service.
type Config struct {
	AppEnv      string `yaml:"app_env"`
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`

	JWTSecret        string `yaml:"jwt_secret"`
	JWTIssuer        string `yaml:"jwt_issuer"` // matched against the iss claim when set
	InternalAPIToken string `yaml:"internal_api_token"`
	// EncryptionKey is never logged or serialised back out.
	EncryptionKey string `yaml:"encryption_key"`

	PhoneRevealTTL      time.Duration `yaml:"-"`
	ReviewEditWindow    time.Duration `yaml:"-"`
	RequestTimeout      time.Duration `yaml:"-"`
	RevealRatePerMinute int           `yaml:"reveal_rate_per_minute"`
	RevealRateBurst     int           `yaml:"reveal_rate_burst"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	SMTP SMTPConfig `yaml:"smtp"`

	// raw duration strings from the YAML file, parsed together with env overrides
	RawPhoneRevealTTL   string `yaml:"phone_reveal_ttl"`
	RawReviewEditWindow string `yaml:"review_edit_window"`
	RawRequestTimeout   string `yaml:"request_timeout"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// Load reads the optional YAML file named by CONFIG_FILE and applies environment overrides on top.
func Load() (*Config, error) {
	cfg := &Config{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.AppEnv = strings.ToLower(pick("APP_ENV", cfg.AppEnv, "dev"))
	cfg.HTTPAddr = pick("HTTP_ADDR", cfg.HTTPAddr, defaultHTTPAddr)
	cfg.DatabaseURL = pick("DATABASE_URL", cfg.DatabaseURL, "")
	cfg.JWTSecret = pick("JWT_SECRET", cfg.JWTSecret, defaultJWTSecret)
	cfg.JWTIssuer = pick("JWT_ISSUER", cfg.JWTIssuer, "")
	cfg.InternalAPIToken = pick("INTERNAL_API_TOKEN", cfg.InternalAPIToken, defaultInternalToken)
	cfg.EncryptionKey = pick("ENCRYPTION_KEY", cfg.EncryptionKey, "")

	var err error
	if cfg.PhoneRevealTTL, err = parseDuration("PHONE_REVEAL_TTL", cfg.RawPhoneRevealTTL, defaultRevealTTL); err != nil {
		return nil, err
	}
	if cfg.ReviewEditWindow, err = parseDuration("REVIEW_EDIT_WINDOW", cfg.RawReviewEditWindow, defaultReviewEditWindow); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", cfg.RawRequestTimeout, defaultRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.RevealRatePerMinute, err = parseInt("REVEAL_RATE_PER_MINUTE", cfg.RevealRatePerMinute, defaultRevealRate); err != nil {
		return nil, err
	}
	if cfg.RevealRateBurst, err = parseInt("REVEAL_RATE_BURST", cfg.RevealRateBurst, defaultRevealBurst); err != nil {
		return nil, err
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		cfg.CORSAllowedOrigins = nil
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	cfg.SMTP.Host = pick("SMTP_HOST", cfg.SMTP.Host, "")
	cfg.SMTP.Username = pick("SMTP_USERNAME", cfg.SMTP.Username, "")
	cfg.SMTP.Password = pick("SMTP_PASSWORD", cfg.SMTP.Password, "")
	cfg.SMTP.From = pick("SMTP_FROM", cfg.SMTP.From, "")
	if cfg.SMTP.Port, err = parseInt("SMTP_PORT", cfg.SMTP.Port, defaultSMTPPort); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if len(cfg.EncryptionKey) < minEncryptionKeyLen {
		return fmt.Errorf("ENCRYPTION_KEY must be set and at least %d characters", minEncryptionKeyLen)
	}
	if cfg.PhoneRevealTTL <= 0 {
		return errors.New("PHONE_REVEAL_TTL must be > 0")
	}
	if cfg.ReviewEditWindow <= 0 {
		return errors.New("REVIEW_EDIT_WINDOW must be > 0")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.RevealRatePerMinute <= 0 || cfg.RevealRateBurst <= 0 {
		return errors.New("REVEAL_RATE_PER_MINUTE and REVEAL_RATE_BURST must be > 0")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return errors.New("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.InternalAPIToken, defaultInternalToken) {
			return errors.New("in prod/release INTERNAL_API_TOKEN must be set and not default")
		}
	}
	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

// pick returns the env value, then the file value, then the fallback.
func pick(name, fileValue, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

func parseDuration(name, fileValue, fallback string) (time.Duration, error) {
	value := pick(name, fileValue, fallback)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt(name string, fileValue int, fallback string) (int, error) {
	fv := ""
	if fileValue != 0 {
		fv = strconv.Itoa(fileValue)
	}
	value := pick(name, fv, fallback)
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}
