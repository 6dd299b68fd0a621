package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "+14155238886")
}

// clearOptional pins optional variables so a developer's .env cannot leak in.
func clearOptional(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "WEBHOOK_PATH", "LOG_LEVEL", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	clearOptional(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "/api/whatsapp", cfg.Server.WebhookPath)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Empty(t, cfg.OpenAI.BaseURL)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "AC123", cfg.Twilio.AccountSID)
	assert.Equal(t, "+14155238886", cfg.Twilio.WhatsAppNumber)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	clearOptional(t)
	setRequired(t)
	t.Setenv("PORT", "3000")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("SERVER_WRITE_TIMEOUT", "45s")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Address())
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Chdir(t.TempDir())
	clearOptional(t)
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "   ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_ACCOUNT_SID")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "TWILIO_WHATSAPP_NUMBER")
	assert.NotContains(t, err.Error(), "TWILIO_AUTH_TOKEN")
}

func TestValidateWebhookPath(t *testing.T) {
	t.Chdir(t.TempDir())
	clearOptional(t)
	setRequired(t)
	t.Setenv("WEBHOOK_PATH", "api/whatsapp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBHOOK_PATH")
}
