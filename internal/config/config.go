package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rzbill/cuidd/internal/kinds"
	"github.com/rzbill/cuidd/pkg/cuid"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Kinds restricts which entity kinds may be minted. Empty allows any valid name.
	Kinds []string `json:"kinds" yaml:"kinds" env:"KINDS" envSeparator:","`
	// MaxBatch caps the number of identifiers per mint request.
	MaxBatch int `json:"maxBatch" yaml:"maxBatch" env:"MAX_BATCH"`
	// MaxListLimit caps a single list page.
	MaxListLimit int `json:"maxListLimit" yaml:"maxListLimit" env:"MAX_LIST_LIMIT"`
	// DuplicateRetries is how often a colliding batch is regenerated.
	DuplicateRetries int `json:"duplicateRetries" yaml:"duplicateRetries" env:"DUPLICATE_RETRIES"`
	// Fingerprint pins the host segment instead of hashing the hostname.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint" env:"FINGERPRINT"`
	// AuditRetentionHours bounds the age of audit events. Zero keeps them forever.
	AuditRetentionHours int `json:"auditRetentionHours" yaml:"auditRetentionHours" env:"AUDIT_RETENTION_HOURS"`
	// SlowStoreMs is the storage latency above which an operation is logged.
	// Zero disables the warning.
	SlowStoreMs int `json:"slowStoreMs" yaml:"slowStoreMs" env:"SLOW_STORE_MS"`
	// TraceStdout exports spans to stdout.
	TraceStdout bool `json:"traceStdout" yaml:"traceStdout" env:"TRACE_STDOUT"`

	LogLevel  string `json:"logLevel" yaml:"logLevel" env:"LOG_LEVEL"`
	LogFormat string `json:"logFormat" yaml:"logFormat" env:"LOG_FORMAT"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Kinds:            kinds.Defaults(),
		MaxBatch:         1000,
		MaxListLimit:     1000,
		DuplicateRetries: 3,
		SlowStoreMs:      250,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads configuration from a JSON or YAML file (by extension) on top of
// the defaults. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", path)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", path)
		}
	}
	return cfg, nil
}

// AuditRetention returns AuditRetentionHours as a duration.
func (c Config) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionHours) * time.Hour
}

// SlowStore returns SlowStoreMs as a duration.
func (c Config) SlowStore() time.Duration {
	return time.Duration(c.SlowStoreMs) * time.Millisecond
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.MaxBatch <= 0 {
		return errors.Errorf("maxBatch must be positive, got %d", c.MaxBatch)
	}
	if c.MaxListLimit <= 0 {
		return errors.Errorf("maxListLimit must be positive, got %d", c.MaxListLimit)
	}
	if c.AuditRetentionHours < 0 {
		return errors.Errorf("auditRetentionHours must not be negative, got %d", c.AuditRetentionHours)
	}
	if c.DuplicateRetries < 0 {
		return errors.Errorf("duplicateRetries must not be negative, got %d", c.DuplicateRetries)
	}
	if c.SlowStoreMs < 0 {
		return errors.Errorf("slowStoreMs must not be negative, got %d", c.SlowStoreMs)
	}
	for _, k := range c.Kinds {
		if err := kinds.Validate(k); err != nil {
			return errors.Wrap(err, "kinds")
		}
	}
	if c.Fingerprint != "" && !cuid.ValidFingerprint(c.Fingerprint) {
		return errors.Errorf("fingerprint must be 4 characters of [0-9a-z], got %q", c.Fingerprint)
	}
	return nil
}
