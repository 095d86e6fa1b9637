package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", "no-existe.env")
	t.Setenv("JWT_SECRET", "s3cr3t")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "log", cfg.Notifier.Kind)
	assert.Equal(t, 5*time.Second, cfg.PDF.ImageTimeout)
	assert.Equal(t, 4, cfg.Tasks.Workers)
}

func TestLoad_EnvVars(t *testing.T) {
	t.Setenv("ENV_FILE", "no-existe.env")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PDF_IMAGE_TIMEOUT", "2s")
	t.Setenv("TASKS_TIMEOUT", "10")
	t.Setenv("NOTIFIER", "SMTP")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 2*time.Second, cfg.PDF.ImageTimeout)
	assert.Equal(t, 10*time.Second, cfg.Tasks.Timeout)
	assert.Equal(t, "smtp", cfg.Notifier.Kind)
}

func TestLoad_SNSRequiereTopic(t *testing.T) {
	t.Setenv("ENV_FILE", "no-existe.env")
	t.Setenv("NOTIFIER", "sns")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProductionSinSecret(t *testing.T) {
	t.Setenv("ENV_FILE", "no-existe.env")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "catalogo", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/catalogo?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
