package go_akrypt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds library-wide settings. Values come from AKRYPT_* environment variables and
// can be overridden by an akrypt.* key file.
type Config struct {
	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `env:"AKRYPT_LOG_LEVEL" envDefault:"error"`
	// ContextManagerSize is the initial number of table slots.
	ContextManagerSize int `env:"AKRYPT_CONTEXT_MANAGER_SIZE" envDefault:"4"`
	// KeyGenerator selects the generator minting handle tags: xorshift or lcg.
	KeyGenerator string `env:"AKRYPT_KEY_GENERATOR" envDefault:"xorshift"`
	// HashRandomDefault is the hash behind NewHashRandomHandle when none is named.
	HashRandomDefault string `env:"AKRYPT_HASHRNG_DEFAULT" envDefault:"sha512"`
	// RandomFile is the file read by the "file" generator.
	RandomFile string `env:"AKRYPT_RANDOM_FILE" envDefault:"/dev/urandom"`
	// Metrics is one of none, memory, prometheus.
	Metrics string `env:"AKRYPT_METRICS" envDefault:"none"`
}

// DefaultConfig returns the built-in configuration, identical to parsing an empty
// environment.
func DefaultConfig() Config {
	return Config{
		LogLevel:           "error",
		ContextManagerSize: CONTEXT_MANAGER_DEFAULT_SIZE,
		KeyGenerator:       "xorshift",
		HashRandomDefault:  "sha512",
		RandomFile:         "/dev/urandom",
		Metrics:            "none",
	}
}

// LoadConfigFromEnv parses the AKRYPT_* environment. Malformed values are logged and the
// defaults are returned instead.
func LoadConfigFromEnv() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		Warning("Ignoring malformed AKRYPT_* environment: %v", err)
		return DefaultConfig()
	}
	return cfg
}

// LoadConfigFile applies the akrypt.* keys of a key=value; file on top of the
// environment configuration. A missing file leaves the environment values in place.
func LoadConfigFile(path string) (Config, error) {
	cfg := LoadConfigFromEnv()
	var parseErr error
	ParseConfig(path, func(key, value string) {
		if parseErr != nil {
			return
		}
		parseErr = cfg.set(key, strings.TrimSpace(value))
	})
	if parseErr != nil {
		return cfg, parseErr
	}
	return cfg, cfg.Validate()
}

func (c *Config) set(key, value string) error {
	switch key {
	case "akrypt.log_level":
		c.LogLevel = value
	case "akrypt.context_manager_size":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("akrypt.context_manager_size: %w", err)
		}
		c.ContextManagerSize = size
	case "akrypt.key_generator":
		c.KeyGenerator = value
	case "akrypt.hashrng_default":
		c.HashRandomDefault = value
	case "akrypt.random_file":
		c.RandomFile = value
	case "akrypt.metrics":
		c.Metrics = value
	default:
		Debug("Skipping unknown config key '%s'", key)
	}
	return nil
}

// Validate rejects unknown names and non-positive sizes.
func (c Config) Validate() error {
	if _, err := c.logLevel(); err != nil {
		return err
	}
	if c.ContextManagerSize <= 0 || c.ContextManagerSize > HANDLE_MAX_SLOTS {
		return fmt.Errorf("%w: context manager size %d", ErrWrongLength, c.ContextManagerSize)
	}
	switch c.KeyGenerator {
	case "xorshift", "lcg":
	default:
		return fmt.Errorf("%w: key generator %q", ErrUnknownAlgorithm, c.KeyGenerator)
	}
	if _, err := LookupHashFunction(c.HashRandomDefault); err != nil {
		return err
	}
	if c.RandomFile == "" {
		return fmt.Errorf("%w: empty random file path", ErrNullArgument)
	}
	switch c.Metrics {
	case "none", "memory", "prometheus":
	default:
		return fmt.Errorf("%w: metrics backend %q", ErrUnknownAlgorithm, c.Metrics)
	}
	return nil
}

// logLevel maps LogLevel to the DEBUG..FATAL constants.
func (c Config) logLevel() (int, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARNING, nil
	case "error", "":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return 0, fmt.Errorf("%w: log level %q", ErrUnknownAlgorithm, c.LogLevel)
}

// newKeyGenerator builds the generator that mints handle tags, seeded from OS entropy.
func (c Config) newKeyGenerator() (NextGenerator, error) {
	if c.KeyGenerator == "lcg" {
		return NewLCGRandom()
	}
	return NewXorShiftRandom()
}
