package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"TTI_SERVER_URL", "TTI_MODEL", "TTI_TIMEOUT_SECONDS", "PORT", "GALLERY_PER_PAGE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultServerURL, cfg.ServerURL)
	require.Equal(t, DefaultModel, cfg.Model)
	require.Equal(t, ":5000", cfg.Addr)
	require.Equal(t, 12, cfg.PerPage)
	require.Equal(t, 120*time.Second, cfg.Timeout)
	require.Equal(t, 1000, cfg.MaxPromptLength)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TTI_SERVER_URL", "https://images.example.com")
	t.Setenv("TTI_TIMEOUT_SECONDS", "30")
	t.Setenv("PORT", "8080")
	t.Setenv("GALLERY_PER_PAGE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://images.example.com", cfg.ServerURL)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, 12, cfg.PerPage)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "bad url", mutate: func(c *Config) { c.ServerURL = "localhost:5000" }, wantErr: true},
		{name: "zero per page", mutate: func(c *Config) { c.PerPage = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ServerURL: DefaultServerURL, PerPage: 12, Timeout: time.Second}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
