package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vending-agent/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	APIKey  string        `envconfig:"API_KEY" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Retries int           `envconfig:"RETRIES" default:"3"`
}

func TestNew_ReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_API_KEY", "secret")
	t.Setenv("SAMPLE_RETRIES", "5")

	conf, err := config.New[sample]("SAMPLE")
	require.NoError(t, err)
	assert.Equal(t, "secret", conf.APIKey)
	assert.Equal(t, 5, conf.Retries)
	assert.Equal(t, 30*time.Second, conf.Timeout)
}

func TestNew_MissingRequired(t *testing.T) {
	t.Setenv("MISSING_API_KEY", "")
	os.Unsetenv("MISSING_API_KEY")

	_, err := config.New[sample]("MISSING")
	assert.Error(t, err)
}

func TestNew_LoadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FILE_API_KEY=from-file\nFILE_TIMEOUT=2s\n"), 0o600))
	t.Setenv(config.EnvFileVar, path)
	t.Setenv("FILE_API_KEY", "")
	os.Unsetenv("FILE_API_KEY")
	t.Setenv("FILE_TIMEOUT", "")
	os.Unsetenv("FILE_TIMEOUT")

	conf, err := config.New[sample]("FILE")
	require.NoError(t, err)
	assert.Equal(t, "from-file", conf.APIKey)
	assert.Equal(t, 2*time.Second, conf.Timeout)
}
