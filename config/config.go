// Package config loads and validates rotation tuning parameters from YAML.
//
// The configuration covers the externally sourced knobs of the lifecycle
// controller: policy selection and thresholds, circuit breaker tuning and
// drain timing. Validation happens once at load time; an invalid value is a
// fatal core.ConfigurationError so misconfiguration never reaches the
// rotation path.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/sessionkit/breaker"
	"github.com/hupe1980/sessionkit/core"
	"github.com/hupe1980/sessionkit/drain"
	"github.com/hupe1980/sessionkit/policy"
)

// Config carries every externally sourced rotation parameter.
type Config struct {
	// Policy selects the rotation policy: "token", "time" or "message".
	Policy string `yaml:"policy"`

	// TokensBudget is the per-generation token budget (token policy).
	TokensBudget int `yaml:"tokens_budget"`

	// MaxDurationSeconds bounds a generation's wall-clock age (time policy).
	MaxDurationSeconds int `yaml:"max_duration_seconds"`

	// MaxMessages bounds a generation's message count (message policy).
	MaxMessages int `yaml:"max_messages"`

	// EarlyRotationThreshold is the utilization at which summarization is
	// advised.
	EarlyRotationThreshold float64 `yaml:"early_rotation_threshold"`

	// ForceRotationThreshold is the utilization at which rotation becomes
	// mandatory.
	ForceRotationThreshold float64 `yaml:"force_rotation_threshold"`

	// FailureThreshold is the consecutive rotation failures that open the
	// circuit.
	FailureThreshold int `yaml:"failure_threshold"`

	// RecoveryTimeoutSeconds is the open-circuit dwell time before a trial.
	RecoveryTimeoutSeconds int `yaml:"recovery_timeout_seconds"`

	// HalfOpenMaxCalls bounds concurrent half-open trials.
	HalfOpenMaxCalls int `yaml:"half_open_max_calls"`

	// OperationPollMs is the drain poll interval in milliseconds.
	OperationPollMs int `yaml:"operation_poll_ms"`

	// RotationTimeoutSeconds bounds how long a rotation waits for in-flight
	// operations to drain.
	RotationTimeoutSeconds int `yaml:"rotation_timeout_seconds"`
}

// Default returns the baseline configuration: token policy, 0.60/0.70
// thresholds and the breaker/drain defaults.
func Default() Config {
	return Config{
		Policy:                 "token",
		TokensBudget:           200000,
		EarlyRotationThreshold: policy.DefaultEarlyThreshold,
		ForceRotationThreshold: policy.DefaultForceThreshold,
		FailureThreshold:       breaker.DefaultFailureThreshold,
		RecoveryTimeoutSeconds: int(breaker.DefaultRecoveryTimeout.Seconds()),
		HalfOpenMaxCalls:       breaker.DefaultHalfOpenMaxCalls,
		OperationPollMs:        int(drain.DefaultPollInterval.Milliseconds()),
		RotationTimeoutSeconds: int(drain.DefaultTimeout.Seconds()),
	}
}

// Parse decodes a YAML document over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks every field, returning a core.ConfigurationError on the
// first violation.
func (c Config) Validate() error {
	switch c.Policy {
	case "token":
		if c.TokensBudget <= 0 {
			return core.NewConfigurationError("tokens_budget", "must be positive")
		}
	case "time":
		if c.MaxDurationSeconds <= 0 {
			return core.NewConfigurationError("max_duration_seconds", "must be positive")
		}
	case "message":
		if c.MaxMessages <= 0 {
			return core.NewConfigurationError("max_messages", "must be positive")
		}
	default:
		return core.NewConfigurationError("policy", fmt.Sprintf("unknown policy %q", c.Policy))
	}
	if c.EarlyRotationThreshold <= 0 || c.EarlyRotationThreshold > 1 {
		return core.NewConfigurationError("early_rotation_threshold", "must be within (0,1]")
	}
	if c.ForceRotationThreshold <= 0 || c.ForceRotationThreshold > 1 {
		return core.NewConfigurationError("force_rotation_threshold", "must be within (0,1]")
	}
	if c.EarlyRotationThreshold > c.ForceRotationThreshold {
		return core.NewConfigurationError("early_rotation_threshold", "must not exceed force_rotation_threshold")
	}
	if c.FailureThreshold < 1 {
		return core.NewConfigurationError("failure_threshold", "must be at least 1")
	}
	if c.RecoveryTimeoutSeconds <= 0 {
		return core.NewConfigurationError("recovery_timeout_seconds", "must be positive")
	}
	if c.HalfOpenMaxCalls < 1 {
		return core.NewConfigurationError("half_open_max_calls", "must be at least 1")
	}
	if c.OperationPollMs <= 0 {
		return core.NewConfigurationError("operation_poll_ms", "must be positive")
	}
	if c.RotationTimeoutSeconds <= 0 {
		return core.NewConfigurationError("rotation_timeout_seconds", "must be positive")
	}
	return nil
}

// BuildPolicy constructs the RotationPolicy the config selects.
func (c Config) BuildPolicy() (core.RotationPolicy, error) {
	switch c.Policy {
	case "token":
		return policy.NewTokenPolicy(c.TokensBudget, c.EarlyRotationThreshold, c.ForceRotationThreshold)
	case "time":
		return policy.NewTimePolicy(c.MaxDuration(), c.EarlyRotationThreshold, c.ForceRotationThreshold)
	case "message":
		return policy.NewMessagePolicy(c.MaxMessages, c.EarlyRotationThreshold, c.ForceRotationThreshold)
	default:
		return nil, core.NewConfigurationError("policy", fmt.Sprintf("unknown policy %q", c.Policy))
	}
}

// RecoveryTimeout returns the breaker recovery timeout as a duration.
func (c Config) RecoveryTimeout() time.Duration {
	return time.Duration(c.RecoveryTimeoutSeconds) * time.Second
}

// RotationTimeout returns the drain timeout as a duration.
func (c Config) RotationTimeout() time.Duration {
	return time.Duration(c.RotationTimeoutSeconds) * time.Second
}

// PollInterval returns the drain poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.OperationPollMs) * time.Millisecond
}

// MaxDuration returns the time policy bound as a duration.
func (c Config) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationSeconds) * time.Second
}
