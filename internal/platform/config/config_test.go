package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults use the offline model and placeholder documents", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "")
		t.Setenv("CLAIMSIGHT_CONFIG", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, ProviderFake, cfg.LLM.Provider)
		assert.Equal(t, DocumentsPlaceholder, cfg.Documents.Backend)
		assert.Equal(t, 4, cfg.Workflow.MaxConcurrentChecks)
	})

	t.Run("environment overrides the YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "claimsight.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
llm:
  timeout: 5s
workflow:
  max_concurrent_checks: 2
`), 0o600))
		t.Setenv("CLAIMSIGHT_CONFIG", path)
		t.Setenv("WORKFLOW_MAX_CONCURRENCY", "8")
		t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Server.Addr)
		assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
		assert.Equal(t, 8, cfg.Workflow.MaxConcurrentChecks)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("gemini without an API key is rejected", func(t *testing.T) {
		t.Setenv("CLAIMSIGHT_CONFIG", "")
		t.Setenv("LLM_PROVIDER", "gemini")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("malformed duration is reported", func(t *testing.T) {
		t.Setenv("CLAIMSIGHT_CONFIG", "")
		t.Setenv("LLM_TIMEOUT", "soon")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_TIMEOUT")
	})
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Documents.Backend = DocumentsS3
	cfg.Documents.Endpoint = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCUMENT_S3_ENDPOINT")
}

func TestValidateRequiredAuth(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Required = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")

	cfg.Auth.JWTSecret = "secret"
	require.NoError(t, cfg.Validate())
}

func TestValidateTrustedProxies(t *testing.T) {
	cfg := Defaults()
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "not-an-ip"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-ip")

	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.7"}
	require.NoError(t, cfg.Validate())
}
