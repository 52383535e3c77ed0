package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const envPrefix = "QT_"

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads the YAML file at path, or starts from an empty config when path
// is "". A .env file next to it (or in the working directory) is loaded into
// the environment first without replacing variables that are already set.
// QT_<SECTION>_<FIELD> variables override file values; defaults fill what is
// still empty.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %q", path)
		}
		if err := Parse(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %q", path)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes YAML into cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func loadDotEnv(path string) error {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithStack(err)
	}
	return errors.Wrapf(godotenv.Load(envFile), "load %q", envFile)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every invalid field, named by its YAML path.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}
	var result *multierror.Error
	for _, fe := range fieldErrs {
		path := strings.TrimPrefix(fe.Namespace(), "Config.")
		result = multierror.Append(result, errors.Wrapf(ErrInvalidConfig, "%s failed %q (value %v)", path, fe.Tag(), fe.Value()))
	}
	return result.ErrorOrNil()
}

func applyEnvOverrides(cfg *Config) error {
	var result *multierror.Error
	str := func(name string, dst *string) {
		if val, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = val
		}
	}
	boolean := func(name string, dst *bool) {
		if val, ok := os.LookupEnv(envPrefix + name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "%s%s", envPrefix, name))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if val, ok := os.LookupEnv(envPrefix + name); ok {
			i, err := strconv.Atoi(val)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "%s%s", envPrefix, name))
				return
			}
			*dst = i
		}
	}
	duration := func(name string, dst *time.Duration) {
		if val, ok := os.LookupEnv(envPrefix + name); ok {
			d, err := time.ParseDuration(val)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "%s%s", envPrefix, name))
				return
			}
			*dst = d
		}
	}

	str("DATABASE_DRIVER", &cfg.Database.Driver)
	str("DATABASE_DSN", &cfg.Database.DSN)
	str("DATABASE_DIR", &cfg.Database.Dir)

	str("CAPTCHA_ADAPTER", &cfg.Captcha.Adapter)
	str("CAPTCHA_TYPE", &cfg.Captcha.Type)
	str("CAPTCHA_SITE_KEY", &cfg.Captcha.SiteKey)
	str("CAPTCHA_SECRET_KEY", &cfg.Captcha.SecretKey)
	duration("CAPTCHA_TIMEOUT", &cfg.Captcha.Timeout)

	str("COOKIE_PATH", &cfg.Cookie.Path)
	str("COOKIE_DOMAIN", &cfg.Cookie.Domain)
	boolean("COOKIE_SECURE", &cfg.Cookie.Secure)
	boolean("COOKIE_HTTP_ONLY", &cfg.Cookie.HTTPOnly)
	integer("COOKIE_MAX_AGE", &cfg.Cookie.MaxAge)
	str("COOKIE_SAME_SITE", &cfg.Cookie.SameSite)

	str("LOGGING_LEVEL", &cfg.Logging.Level)
	str("LOGGING_FORMAT", &cfg.Logging.Format)
	boolean("LOGGING_CALLER", &cfg.Logging.Caller)

	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	str("METRICS_NAMESPACE", &cfg.Metrics.Namespace)

	return result.ErrorOrNil()
}
