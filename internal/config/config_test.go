package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PicassoPreem-86/subletly-sub000/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://localhost/subletly_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load("api")
	require.NoError(t, err)
	assert.Equal(t, "api", cfg.RunMode)
	assert.Equal(t, "8080", cfg.ApiPort)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, time.Minute, cfg.AuthRateWindow)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv registered the restore; unset to exercise the missing case.
	os.Unsetenv("DATABASE_DSN")

	_, err := config.Load("api")
	assert.ErrorContains(t, err, "DATABASE_DSN")
}

func TestLoad_SubSecondRateWindowClamped(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_RATE_WINDOW", "250ms")

	cfg, err := config.Load("api")
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.AuthRateWindow, "window floors at one second")
}

func TestLoad_InvalidRateWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_RATE_WINDOW", "soon")

	_, err := config.Load("api")
	assert.Error(t, err)
}
