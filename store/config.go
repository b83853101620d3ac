package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxLimit is the page-size ceiling when MAX_LIMIT is not set.
	DefaultMaxLimit = 100

	// DefaultMaxBatchRetries bounds retries of unprocessed batch keys.
	DefaultMaxBatchRetries = 3
)

// Config holds configuration for the DAO.
type Config struct {
	// TableName is the single table every request targets.
	TableName string `yaml:"table_name" validate:"required"`

	// Region is the AWS region. Empty lets the SDK resolve it.
	Region string `yaml:"region"`

	// Endpoint replaces the managed endpoint, e.g. "http://localhost:8000".
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`

	// Local marks Endpoint as a local store that accepts placeholder credentials.
	Local bool `yaml:"local"`

	// MaxLimit caps the page size of every query.
	// Default: 100 (env MAX_LIMIT)
	MaxLimit int32 `yaml:"max_limit" validate:"gte=1"`

	// MaxBatchRetries bounds how often unprocessed batch-get keys are resent.
	// Default: 3
	MaxBatchRetries int `yaml:"max_batch_retries" validate:"gte=0"`

	// Schemas is the shared system attribute set.
	// Default: NewSystemSchemas()
	Schemas *SystemSchemas `yaml:"-" validate:"-"`
}

// DefaultConfig returns defaults for tableName.
func DefaultConfig(tableName string) Config {
	return Config{
		TableName:       tableName,
		MaxLimit:        DefaultMaxLimit,
		MaxBatchRetries: DefaultMaxBatchRetries,
	}
}

// LoadConfig reads configuration from the environment.
func LoadConfig() Config {
	cfg := DefaultConfig(getEnv("DYNAMO_TABLE", ""))
	cfg.applyEnv()
	return cfg
}

// LoadConfigFile reads a YAML file and applies environment overrides on top.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig("")

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, &ConfigurationError{Message: fmt.Sprintf("read %s", path), Err: err}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigurationError{Message: fmt.Sprintf("parse %s", path), Err: err}
	}

	if v := os.Getenv("DYNAMO_TABLE"); v != "" {
		cfg.TableName = v
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Region = getEnv("DYNAMO_REGION", c.Region)
	if endpoint := os.Getenv("DYNAMO_ENDPOINT"); endpoint != "" {
		c.Endpoint = endpoint
		c.Local = getEnvBool("DYNAMO_LOCAL", true)
	}
	legacy := getEnvInt32("DYNAMO_MAX_LIMIT_RESULT", c.MaxLimit)
	c.MaxLimit = getEnvInt32("MAX_LIMIT", legacy)
	if c.MaxLimit < 1 {
		c.MaxLimit = DefaultMaxLimit
	}
}

// EnableLocal points the client at a local store. Empty host and zero port
// default to localhost:8000.
func (c *Config) EnableLocal(host string, port int) {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 8000
	}
	c.Endpoint = fmt.Sprintf("http://%s:%d", host, port)
	c.Local = true
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &ConfigurationError{Message: "invalid configuration", Err: err}
	}
	return nil
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.MaxLimit < 1 {
		c.MaxLimit = DefaultMaxLimit
	}
	if c.MaxBatchRetries < 0 {
		c.MaxBatchRetries = 0
	}
	if c.Schemas == nil {
		c.Schemas = NewSystemSchemas()
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt32 saturates out-of-range values at the int32 bounds.
func getEnvInt32(key string, defaultValue int32) int32 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.ParseInt(value, 10, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return defaultValue
	}
	return int32(intVal)
}
