package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

smtp:
  host: "relay.example.com"
  port: 2525
  username: "mailer@example.com"
  password: "secret"
  from_name: "HR Team"
  timeout_seconds: 45

database:
  url: "postgres://localhost/mailtrace?sslmode=disable"

tracking:
  base_url: "https://track.example.com"
  destination_url: "https://www.example.com/candidate-portal"

campaign:
  subject: "Application Received"
  recipients:
    - "a@example.com"
    - "b@example.com"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "relay.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "mailer@example.com", cfg.SMTP.Username)
	assert.Equal(t, "secret", cfg.SMTP.Password)
	assert.Equal(t, 45, cfg.SMTP.TimeoutSeconds)
	require.NoError(t, cfg.SMTP.Validate())

	assert.Equal(t, "postgres://localhost/mailtrace?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "https://track.example.com", cfg.Tracking.BaseURL)
	assert.Equal(t, "https://www.example.com/candidate-portal", cfg.Tracking.DestinationURL)
	assert.Equal(t, "Application Received", cfg.Campaign.Subject)
	assert.Len(t, cfg.Campaign.Recipients, 2)
}

func TestLoadDefaults(t *testing.T) {
	configPath := writeConfig(t, `
smtp:
  host: "relay.example.com"
  username: "u"
  password: "p"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 30, cfg.SMTP.TimeoutSeconds)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "http://localhost:5001", cfg.Tracking.BaseURL)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.True(t, cfg.Logging.RedactEnabled())
}

func TestSMTPValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SMTPConfig
		wantErr bool
	}{
		{"complete", SMTPConfig{Host: "h", Port: 587, Username: "u", Password: "p"}, false},
		{"missing host", SMTPConfig{Port: 587, Username: "u", Password: "p"}, true},
		{"missing port", SMTPConfig{Host: "h", Username: "u", Password: "p"}, true},
		{"missing username", SMTPConfig{Host: "h", Port: 587, Password: "p"}, true},
		{"missing password", SMTPConfig{Host: "h", Port: 587, Username: "u"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := writeConfig(t, `
smtp:
  host: "file-relay.example.com"
  username: "file-user"
  password: "file-pass"
`)

	t.Setenv("SMTP_HOST", "env-relay.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRACKING_BASE_URL", "https://env.example.com")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-relay.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "file-user", cfg.SMTP.Username)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "https://env.example.com", cfg.Tracking.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
