package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("reads token and API URL from the environment", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "test-token")
		t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "test-token", cfg.GithubToken)
		assert.Equal(t, "https://ghe.example.com/api/v3", cfg.APIBaseURL)
	})

	t.Run("missing token is not an error", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.GithubToken)
	})
}
