package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nestedConfig struct {
	Region  string        `env:"TEST_REGION" yaml:"region" default:"us-central1"`
	Timeout time.Duration `env:"TEST_TIMEOUT" yaml:"timeout" default:"30s"`
}

type testConfig struct {
	APIKey  string       `env:"TEST_API_KEY" yaml:"api_key" required:"true"`
	Port    int          `env:"TEST_PORT" yaml:"port" default:"8080"`
	Debug   bool         `env:"TEST_DEBUG" yaml:"debug" default:"false"`
	Verbose bool         `env:"TEST_VERBOSE" yaml:"verbose" default:"true"`
	Origins []string     `env:"TEST_ORIGINS" yaml:"origins"`
	Nested  nestedConfig `yaml:"nested,inline"`
}

type validatedConfig struct {
	Port int `env:"TEST_VALIDATED_PORT" yaml:"port" default:"8080"`
}

func (c validatedConfig) Validate() error {
	if c.Port > 65535 {
		return errors.New("port out of range")
	}
	return nil
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestGetConfigFromEnvVars(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
		want    testConfig
		wantErr bool
	}{
		{
			name:    "defaults with required field set",
			envVars: map[string]string{"TEST_API_KEY": "key"},
			want: testConfig{
				APIKey:  "key",
				Port:    8080,
				Verbose: true,
				Nested:  nestedConfig{Region: "us-central1", Timeout: 30 * time.Second},
			},
		},
		{
			name: "environment overrides defaults",
			envVars: map[string]string{
				"TEST_API_KEY": "env-key",
				"TEST_PORT":    "3000",
				"TEST_DEBUG":   "true",
				"TEST_VERBOSE": "false",
				"TEST_ORIGINS": "https://a.example, https://b.example",
				"TEST_REGION":  "europe-west1",
				"TEST_TIMEOUT": "5s",
			},
			want: testConfig{
				APIKey:  "env-key",
				Port:    3000,
				Debug:   true,
				Verbose: false,
				Origins: []string{"https://a.example", "https://b.example"},
				Nested:  nestedConfig{Region: "europe-west1", Timeout: 5 * time.Second},
			},
		},
		{
			name:    "missing required field",
			envVars: map[string]string{},
			wantErr: true,
		},
		{
			name: "unparsable int",
			envVars: map[string]string{
				"TEST_API_KEY": "key",
				"TEST_PORT":    "not-a-number",
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.envVars)

			var cfg testConfig
			err := GetConfigFromEnvVars(&cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestGetConfigFromEnvVarsResetsOnError(t *testing.T) {
	t.Setenv("TEST_PORT", "not-a-number")

	cfg := testConfig{APIKey: "stale"}
	err := GetConfigFromEnvVars(&cfg)
	assert.Error(t, err)
	assert.Equal(t, testConfig{}, cfg)
}

func TestValidatorIsInvoked(t *testing.T) {
	t.Setenv("TEST_VALIDATED_PORT", "99999")

	var cfg validatedConfig
	err := GetConfigFromEnvVars(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGetConfigWithYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: from-file\nport: 9000\n"), 0o600))

	// env wins over file
	t.Setenv("TEST_PORT", "9100")

	var cfg testConfig
	require.NoError(t, GetConfig(&cfg, path, false))
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, 9100, cfg.Port)
}

func TestGetConfigYAMLFalseSurvivesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: key\nverbose: false\nport: 0\n"), 0o600))

	var cfg testConfig
	require.NoError(t, GetConfig(&cfg, path, false))
	assert.False(t, cfg.Verbose, "explicit false in the file must not be re-defaulted to true")
	assert.Zero(t, cfg.Port, "explicit zero in the file must not be re-defaulted")
}

func TestGetConfigMissingFile(t *testing.T) {
	t.Setenv("TEST_API_KEY", "key")

	var cfg testConfig
	assert.Error(t, GetConfig(&cfg, "/does/not/exist.yaml", false))

	var cfg2 testConfig
	require.NoError(t, GetConfig(&cfg2, "/does/not/exist.yaml", true))
	assert.Equal(t, "key", cfg2.APIKey)
}
