package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-dashboard/src/pkg/config"
	"erp-dashboard/src/pkg/dashboard"
	echomw "erp-dashboard/src/pkg/echo-middleware"
	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/llm"
	"erp-dashboard/src/pkg/openai"
)

func resetConfigs(t *testing.T) {
	t.Cleanup(func() {
		llm.Cfg = llm.DefaultValueConfig()
		erp.Cfg = erp.DefaultValueConfig()
		echomw.Cfg = echomw.DefaultValueConfig()
		dashboard.Cfg = dashboard.DefaultValueConfig()
		require.Nil(t, config.LoadBytes("empty.json", nil))
	})
}

func TestInitializeConfigFromYAML(t *testing.T) {
	resetConfigs(t)
	t.Setenv(erp.EnvURL, "")
	t.Setenv(erp.EnvURLLegacy, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "llm:\n  provider: openai\necho_middleware:\n  port: 9000\nerp:\n  url: https://erp.example.com\ndashboard:\n  refresh_minutes: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	InitializeConfig(path)

	assert.Equal(t, llm.ProviderOpenAI, llm.Cfg.Provider)
	assert.Equal(t, 60000, llm.Cfg.MaxContextBytes, "defaults fill missing fields")
	assert.Equal(t, 9000, echomw.Cfg.Port)
	assert.Equal(t, "auth_session", echomw.Cfg.SessionCookieName)
	assert.Equal(t, "https://erp.example.com", erp.Cfg.URL)
	assert.Equal(t, 10, dashboard.Cfg.RefreshMinutes)
}

func TestValidate(t *testing.T) {
	resetConfigs(t)
	t.Setenv(erp.EnvAPIKey, "")
	t.Setenv(erp.EnvAPISecret, "")
	t.Setenv(erp.EnvAPISecretOld, "")
	t.Setenv("GEMINI_API_KEY", "")

	llm.Cfg.Provider = llm.ProviderGemini
	assert.Equal(t, []string{
		"GEMINI_API_KEY environment variable is not set",
		"ERP_API_KEY environment variable is not set",
		"ERP_API_SECRET environment variable is not set",
	}, Validate())

	t.Setenv(erp.EnvAPIKey, "key")
	t.Setenv(erp.EnvAPISecretOld, "secret")
	t.Setenv("GEMINI_API_KEY", "g")
	assert.Empty(t, Validate())

	llm.Cfg.Provider = "mistral"
	assert.Equal(t, []string{"Unknown LLM provider 'mistral'"}, Validate())
}

func TestNewWithoutKeys(t *testing.T) {
	resetConfigs(t)
	t.Setenv(openai.EnvAPIKey, "")
	llm.Cfg.Provider = llm.ProviderOpenAI

	a, e := New(context.Background())
	require.Nil(t, e)
	assert.Nil(t, a.Provider)
	assert.NotNil(t, a.Insights)
	assert.NotNil(t, a.Dashboard)
	assert.Contains(t, a.Problems, "OPENAI_API_KEY environment variable is not set")
}

func TestNewProviderOpenAI(t *testing.T) {
	resetConfigs(t)
	t.Setenv(openai.EnvAPIKey, "sk-test")
	llm.Cfg.Provider = llm.ProviderOpenAI

	provider, e := NewProvider(context.Background())
	require.Nil(t, e)
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())

	llm.Cfg.Provider = "nope"
	_, e = NewProvider(context.Background())
	assert.NotNil(t, e)
}
