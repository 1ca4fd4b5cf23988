// Package config assembles runtime configuration from defaults, an optional
// .env file, and environment variables, in that precedence order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"lampery.dev/storefront/internal/commerce"
	"lampery.dev/storefront/internal/customizer"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultProductFile  = "config/product.yaml"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Preview  PreviewConfig
	Log      LogConfig

	// ProductFile points at the YAML product definition (size tiers,
	// colors, variant mapping, font files).
	ProductFile string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// UpstreamConfig points at the commerce backend. An empty BaseURL switches
// the commerce client into its canned offline mode.
type UpstreamConfig struct {
	BaseURL string
	Routes  commerce.Routes
}

// PreviewConfig controls the preview renderer.
type PreviewConfig struct {
	MaxWidth int
	MaxDPR   float64
}

// LogConfig selects logger behaviour.
type LogConfig struct {
	Level       string
	Development bool
}

// ValidationError is returned when configuration fields are invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects an explicit key/value map taking precedence over the
// system environment. Useful in tests.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv disables os.LookupEnv, relying only on the env map and
// the .env file.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load combines defaults, .env overrides and environment variables. A
// missing .env file is not an error.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv := map[string]string{}
	if options.envFile != "" {
		if parsed, err := godotenv.Read(options.envFile); err == nil {
			dotEnv = parsed
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", options.envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotEnv[key]
		return v, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "STOREFRONT_PORT", portDefault()),
			ReadTimeout:  durationWithDefault(lookup, "STOREFRONT_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "STOREFRONT_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "STOREFRONT_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Upstream: UpstreamConfig{
			BaseURL: stringWithDefault(lookup, "STOREFRONT_UPSTREAM_URL", ""),
			Routes: commerce.Routes{
				CartAddPath:    stringWithDefault(lookup, "STOREFRONT_CART_ADD_PATH", ""),
				CartChangePath: stringWithDefault(lookup, "STOREFRONT_CART_CHANGE_PATH", ""),
				CartPath:       stringWithDefault(lookup, "STOREFRONT_CART_PATH", ""),
			},
		},
		Preview: PreviewConfig{
			MaxWidth: intWithDefault(lookup, "STOREFRONT_PREVIEW_MAX_WIDTH", 1600),
			MaxDPR:   floatWithDefault(lookup, "STOREFRONT_PREVIEW_MAX_DPR", 3),
		},
		Log: LogConfig{
			Level:       stringWithDefault(lookup, "STOREFRONT_LOG_LEVEL", "info"),
			Development: boolValue(lookup, "STOREFRONT_DEV"),
		},
		ProductFile: stringWithDefault(lookup, "STOREFRONT_PRODUCT_FILE", defaultProductFile),
	}

	var invalid []string
	if cfg.Preview.MaxWidth <= 0 {
		invalid = append(invalid, "Preview.MaxWidth")
	}
	if cfg.Preview.MaxDPR <= 0 {
		invalid = append(invalid, "Preview.MaxDPR")
	}
	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

// Product is the YAML product definition backing the customizer and the
// preview renderer.
type Product struct {
	Customizer customizer.Config `yaml:"customizer"`
	// Fonts maps font family names to TTF file paths.
	Fonts map[string]string `yaml:"fonts"`
}

// LoadProduct reads and validates the product definition file.
func LoadProduct(path string) (Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Product{}, fmt.Errorf("config: read product file: %w", err)
	}
	var p Product
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Product{}, fmt.Errorf("config: parse product file: %w", err)
	}
	var invalid []string
	if len(p.Customizer.Sizes) == 0 {
		invalid = append(invalid, "customizer.sizes")
	}
	if len(p.Customizer.Colors) == 0 {
		invalid = append(invalid, "customizer.colors")
	}
	for _, size := range p.Customizer.Sizes {
		if size.Price <= 0 {
			invalid = append(invalid, fmt.Sprintf("customizer.sizes[%s].price", size.Label))
		}
	}
	if len(invalid) > 0 {
		return Product{}, &ValidationError{fields: invalid}
	}
	return p, nil
}

// portDefault prefers the platform-provided PORT before the baked-in one.
func portDefault() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return defaultPort
}

type lookupFunc func(key string) (string, bool)

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) time.Duration {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup lookupFunc, key string, fallback int) int {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func floatWithDefault(lookup lookupFunc, key string, fallback float64) float64 {
	if v, ok := lookup(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolValue(lookup lookupFunc, key string) bool {
	v, ok := lookup(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
