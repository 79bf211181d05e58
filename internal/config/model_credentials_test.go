package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModelCredentialConfig(t *testing.T) {
	t.Run("parses named sets", func(t *testing.T) {
		cfg, err := ParseModelCredentialConfig([]byte(`
credentials:
  standard:
    api_key: app-standard
  artist-saxophone-ab01:
    api_key: app-sax
    base_url: https://sax.example.com/v1
`))
		require.NoError(t, err)

		std, ok := cfg.Standard()
		require.True(t, ok)
		require.Equal(t, "app-standard", std.APIKey)

		sax, ok := cfg.Resolve("artist-saxophone-ab01")
		require.True(t, ok)
		require.Equal(t, "app-sax", sax.APIKey)
		require.Equal(t, "https://sax.example.com/v1", sax.BaseURL)

		_, ok = cfg.Resolve("artist-flute-ef03")
		require.False(t, ok)
	})

	t.Run("expands env vars with defaults", func(t *testing.T) {
		t.Setenv("TEST_SAX_KEY", "from-env")

		cfg, err := ParseModelCredentialConfig([]byte(`
credentials:
  standard:
    api_key: ${TEST_STANDARD_KEY:-fallback-key}
  artist-saxophone-ab01:
    api_key: ${TEST_SAX_KEY}
`))
		require.NoError(t, err)

		std, _ := cfg.Standard()
		require.Equal(t, "fallback-key", std.APIKey)

		sax, ok := cfg.Resolve("artist-saxophone-ab01")
		require.True(t, ok)
		require.Equal(t, "from-env", sax.APIKey)
	})

	t.Run("expands every occurrence in one value", func(t *testing.T) {
		t.Setenv("TEST_PROVIDER_HOST", "sax.example.com")

		cfg, err := ParseModelCredentialConfig([]byte(`
credentials:
  standard:
    api_key: ${TEST_UNSET_PREFIX:-app}-${TEST_UNSET_SUFFIX:-standard}
    base_url: https://${TEST_PROVIDER_HOST:-localhost}/${TEST_UNSET_VERSION:-v1}
`))
		require.NoError(t, err)

		std, _ := cfg.Standard()
		require.Equal(t, "app-standard", std.APIKey)
		require.Equal(t, "https://sax.example.com/v1", std.BaseURL)
	})

	t.Run("sets without a key are left undefined", func(t *testing.T) {
		cfg, err := ParseModelCredentialConfig([]byte(`
credentials:
  standard:
    api_key: app-standard
  artist-trumpet-cd02:
    api_key: ${TEST_UNSET_TRUMPET_KEY}
`))
		require.NoError(t, err)

		_, ok := cfg.Resolve("artist-trumpet-cd02")
		require.False(t, ok)
	})

	t.Run("missing standard set is an error", func(t *testing.T) {
		_, err := ParseModelCredentialConfig([]byte(`
credentials:
  artist-saxophone-ab01:
    api_key: app-sax
`))
		require.Error(t, err)
	})

	t.Run("empty document is an error", func(t *testing.T) {
		_, err := ParseModelCredentialConfig([]byte("credentials: {}"))
		require.Error(t, err)
	})
}
