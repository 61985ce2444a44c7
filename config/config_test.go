package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/sessionkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "token", cfg.Policy)
	assert.InDelta(t, 0.60, cfg.EarlyRotationThreshold, 1e-9)
	assert.InDelta(t, 0.70, cfg.ForceRotationThreshold, 1e-9)
	assert.Equal(t, 3, cfg.FailureThreshold)
	assert.Equal(t, 30, cfg.RecoveryTimeoutSeconds)
	assert.Equal(t, 100, cfg.OperationPollMs)
	assert.Equal(t, 30, cfg.RotationTimeoutSeconds)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
policy: token
tokens_budget: 100000
early_rotation_threshold: 0.5
force_rotation_threshold: 0.8
failure_threshold: 5
`))
	require.NoError(t, err)
	assert.Equal(t, 100000, cfg.TokensBudget)
	assert.InDelta(t, 0.5, cfg.EarlyRotationThreshold, 1e-9)
	assert.InDelta(t, 0.8, cfg.ForceRotationThreshold, 1e-9)
	assert.Equal(t, 5, cfg.FailureThreshold)
	// Untouched fields keep defaults.
	assert.Equal(t, 30, cfg.RecoveryTimeoutSeconds)
}

func TestParse_InvalidValues(t *testing.T) {
	var cfgErr *core.ConfigurationError

	_, err := Parse([]byte("tokens_budget: -1"))
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = Parse([]byte("force_rotation_threshold: 1.5"))
	assert.Error(t, err)

	_, err = Parse([]byte("early_rotation_threshold: 0.9"))
	assert.Error(t, err)

	_, err = Parse([]byte("policy: quantum"))
	assert.Error(t, err)

	_, err = Parse([]byte("policy: time"))
	assert.Error(t, err, "time policy requires max_duration_seconds")

	_, err = Parse([]byte(":::not yaml"))
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
policy: message
max_messages: 50
operation_poll_ms: 25
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "message", cfg.Policy)
	assert.Equal(t, 50, cfg.MaxMessages)
	assert.Equal(t, 25, cfg.OperationPollMs)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildPolicy(t *testing.T) {
	cfg := Default()
	p, err := cfg.BuildPolicy()
	require.NoError(t, err)
	assert.Equal(t, "token", p.Name())

	cfg.Policy = "time"
	cfg.MaxDurationSeconds = 3600
	p, err = cfg.BuildPolicy()
	require.NoError(t, err)
	assert.Equal(t, "time", p.Name())

	cfg.Policy = "message"
	cfg.MaxMessages = 200
	p, err = cfg.BuildPolicy()
	require.NoError(t, err)
	assert.Equal(t, "message", p.Name())
}
