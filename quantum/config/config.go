package config

import (
	"time"

	"github.com/krew-solutions/quantum-go/quantum/captcha"
	"github.com/krew-solutions/quantum-go/quantum/cookie"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDocstore = "docstore"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Captcha  CaptchaConfig  `yaml:"captcha"`
	Cookie   CookieConfig   `yaml:"cookie"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig selects the engine behind models. Dir is the docstore data
// directory; an empty Dir keeps documents in memory.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres docstore"`
	DSN    string `yaml:"dsn" validate:"required_unless=Driver docstore"`
	Dir    string `yaml:"dir"`
}

type CaptchaConfig struct {
	Adapter   string        `yaml:"adapter" validate:"omitempty,oneof=hcaptcha recaptcha"`
	Type      string        `yaml:"type" validate:"oneof=visible invisible"`
	SiteKey   string        `yaml:"site_key" validate:"required_with=Adapter"`
	SecretKey string        `yaml:"secret_key" validate:"required_with=Adapter"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
}

func (c CaptchaConfig) Config() captcha.Config {
	return captcha.Config{
		SiteKey:   c.SiteKey,
		SecretKey: c.SecretKey,
		Type:      captcha.Type(c.Type),
	}
}

type CookieConfig struct {
	Path     string `yaml:"path"`
	Domain   string `yaml:"domain"`
	Secure   bool   `yaml:"secure"`
	HTTPOnly bool   `yaml:"http_only"`
	MaxAge   int    `yaml:"max_age" validate:"gte=0"`
	SameSite string `yaml:"same_site" validate:"omitempty,oneof=lax strict none"`
}

// Attributes are the defaults every cookie.Cookie.Set starts from.
func (c CookieConfig) Attributes() cookie.Attributes {
	return cookie.Attributes{
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   c.MaxAge,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: cookie.ParseSameSite(c.SameSite),
	}
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
	Caller bool   `yaml:"caller"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"required_if=Enabled true"`
}

func ApplyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.DSN == "" {
		cfg.Database.DSN = ":memory:"
	}
	if cfg.Captcha.Type == "" {
		cfg.Captcha.Type = string(captcha.Visible)
	}
	if cfg.Captcha.Timeout == 0 {
		cfg.Captcha.Timeout = 10 * time.Second
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = "/"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "quantum"
	}
}
