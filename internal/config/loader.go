// Package config loads .devloop/config.yaml with environment overrides.
//
// Precedence, highest first: DEVLOOP_* environment variables, the YAML
// file, hardcoded defaults. A missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Default values for Config.
const (
	DefaultChecklistItems = 20
	DefaultErrorRecords   = 10
	DefaultSectionBytes   = 8000
	DefaultContractBytes  = 0 // whole file
	DefaultMaxRetries     = 5
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
)

// envPrefix namespaces the environment overrides.
const envPrefix = "DEVLOOP_"

// maxConfigFileSize rejects runaway config files.
const maxConfigFileSize = 1 << 20

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Context: ContextBudget{
			ChecklistItems: DefaultChecklistItems,
			ErrorRecords:   DefaultErrorRecords,
			SectionBytes:   DefaultSectionBytes,
			ContractBytes:  DefaultContractBytes,
		},
		Sync: SyncConfig{MaxRetries: DefaultMaxRetries},
		Log:  LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Load reads the config file at the given path, applies DEVLOOP_*
// environment overrides, and validates the result. A missing file
// yields the defaults plus any environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if len(data) > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
		}
		if err := k.Load(rawbytes.Provider(data), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// DEVLOOP_CONTEXT_ERROR_RECORDS -> context.error_records: the first
	// underscore separates the section, the rest stays a field name.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all config values are valid.
func Validate(cfg *Config) error {
	if cfg.Context.ChecklistItems <= 0 {
		return ValidationError{Field: "context.checklist_items", Message: "must be positive"}
	}
	if cfg.Context.ErrorRecords <= 0 {
		return ValidationError{Field: "context.error_records", Message: "must be positive"}
	}
	if cfg.Context.SectionBytes <= 0 {
		return ValidationError{Field: "context.section_bytes", Message: "must be positive"}
	}
	if cfg.Context.ContractBytes < 0 {
		return ValidationError{Field: "context.contract_bytes", Message: "must be zero or positive"}
	}
	if cfg.Sync.MaxRetries <= 0 {
		return ValidationError{Field: "sync.max_retries", Message: "must be positive"}
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ValidationError{Field: "log.level", Message: "must be one of debug, info, warn, error"}
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return ValidationError{Field: "log.format", Message: "must be console or json"}
	}
	return nil
}
