// Package config holds the settings of the gqlvalidate commands. Values are
// read from GQLVALIDATE_* environment variables first; command-line flags
// registered with RegisterFlags override them.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GQLVALIDATE_"

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// SchemaFiles are the SDL files merged into one schema.
	SchemaFiles []string `env:"SCHEMA" envSeparator:","`
	// RulesFile is an optional YAML rule file.
	RulesFile string `env:"RULES"`

	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr          string        `env:"GRPC_ADDR"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"10s" validate:"gte=0"`
	Pretty            bool          `env:"PRETTY"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES" envDefault:"1048576" validate:"gte=0"`
	CORSOrigins       []string      `env:"CORS_ORIGINS" envSeparator:","`
	MetadataHeaders   []string      `env:"METADATA_HEADERS" envSeparator:","`
	GraphiQL          bool          `env:"GRAPHIQL" envDefault:"true"`
	DocumentCacheSize int           `env:"DOCUMENT_CACHE_SIZE" envDefault:"256" validate:"gte=0"`
	Introspection     bool          `env:"INTROSPECTION" envDefault:"true"`
	Concurrency       int           `env:"CONCURRENCY" validate:"gte=0"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info" validate:"loglevel"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelService  string `env:"OTEL_SERVICE" envDefault:"gqlvalidate"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom reads environ instead of the process environment. Keys include
// the prefix.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := new(Config)
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := zerolog.ParseLevel(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks the struct's validate tags. Commands check the settings
// they need themselves, such as SchemaFiles.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	errs := make([]error, len(fieldErrs))
	for i, fe := range fieldErrs {
		errs[i] = fmt.Errorf("%s: failed %q check, got %v", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
