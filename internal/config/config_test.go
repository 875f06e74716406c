package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Resilience.CallTimeout)
	assert.Equal(t, uint64(3), cfg.Resilience.MaxRetries)
	assert.Equal(t, time.Second, cfg.Resilience.InitialDelay)
	assert.Equal(t, 2.0, cfg.Resilience.BackoffFactor)
	assert.Equal(t, uint32(3), cfg.Resilience.FailureThreshold)
	assert.Equal(t, time.Minute, cfg.Resilience.RecoveryTimeout)
	assert.Equal(t, int64(25<<20), cfg.Intake.MaxUploadBytes())
	assert.True(t, cfg.Pipeline.ExtendedMetrics)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("BREAKER_RECOVERY_TIMEOUT", "5s")
	t.Setenv("USE_MOCK_LLM", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, uint64(5), cfg.Resilience.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Resilience.RecoveryTimeout)
	assert.True(t, cfg.Generation.UseMock)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Speech.APIKey = ""
	cfg.Speech.UseMock = false
	assert.ErrorContains(t, cfg.Validate(), "OPENAI_API_KEY")

	cfg.Speech.UseMock = true
	cfg.Generation.UseMock = true
	assert.NoError(t, cfg.Validate())

	cfg.Resilience.BackoffFactor = 0.5
	assert.Error(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
